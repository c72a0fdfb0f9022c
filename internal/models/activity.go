package models

import "time"

// Activity types. The Data payload shape depends on the type.
const (
	ActivityConnectionRequest  = "connection_request"  // {connection_id, sender_id}
	ActivityConnectionAccepted = "connection_accepted" // {connection_id, receiver_id}
	ActivityAchievementEarned  = "achievement_earned"  // {achievement_id}
	ActivityMessageReceived    = "message_received"    // {message_id, sender_id}
)

// ActivityData is the small structured payload attached to an activity.
type ActivityData map[string]any

// Activity is an append-only notification record surfaced to a user about
// events concerning them. Activities are never mutated.
type Activity struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	UserID    uint         `json:"user_id" gorm:"index"`
	Type      string       `json:"type" gorm:"size:30;index"`
	Data      ActivityData `json:"data" gorm:"serializer:json"`
	CreatedAt time.Time    `json:"created_at" gorm:"index"`
}
