package models

import "time"

// Connection statuses. Pending is the only initial state; accepted and
// rejected are terminal.
const (
	ConnectionPending  = "pending"
	ConnectionAccepted = "accepted"
	ConnectionRejected = "rejected"
)

// Connection is a directed request between two users. Sender and receiver
// are recorded as-is, but at most one row exists per unordered user pair.
// AIMatchScore is computed once at creation and never recalculated.
type Connection struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	SenderID     uint      `json:"sender_id" gorm:"index"`
	ReceiverID   uint      `json:"receiver_id" gorm:"index"`
	Status       string    `json:"status" gorm:"type:varchar(20);default:'pending'"`
	AIMatchScore int       `json:"ai_match_score"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateConnectionRequest defines the request body for sending a connection request
type CreateConnectionRequest struct {
	ReceiverID uint `json:"receiver_id" validate:"required"`
}

// UpdateConnectionRequest defines the request body for accepting/rejecting a connection
type UpdateConnectionRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected"`
}
