package storage

import "github.com/stayx/backend/internal/models"

// defaultAchievements is the static achievement catalog. The in-memory store
// seeds it in its constructor; the Postgres store seeds it idempotently at
// startup via SeedAchievements.
var defaultAchievements = []models.Achievement{
	{
		Name:        "Early Adopter",
		Description: "Joined StayX in its early days",
		Icon:        "ri-rocket-line",
		Points:      150,
		Category:    "profile",
	},
	{
		Name:        "Network Starter",
		Description: "Made your first connection",
		Icon:        "ri-user-add-line",
		Points:      50,
		Category:    "social",
	},
	{
		Name:        "Crypto Enthusiast",
		Description: "Added crypto-related interests to your profile",
		Icon:        "ri-bitcoin-line",
		Points:      100,
		Category:    "crypto",
	},
}
