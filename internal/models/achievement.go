package models

import "time"

// Achievement is an entry in the static achievement catalog. The catalog is
// seeded at startup and is not mutable through the normal API flow.
type Achievement struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"uniqueIndex;size:50"`
	Description string `json:"description"`
	Icon        string `json:"icon" gorm:"size:50"`
	Points      int    `json:"points"`
	Category    string `json:"category" gorm:"size:30"`
}

// UserAchievement records that a user earned an achievement. A given
// (user, achievement) pair is granted at most once.
type UserAchievement struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_achievement"`
	AchievementID uint      `json:"achievement_id" gorm:"uniqueIndex:idx_user_achievement"`
	EarnedAt      time.Time `json:"earned_at"`
}
