package models

import "time"

// Favorite links a user to a recipe they bookmarked.
// The (UserID, RecipeID) pair is unique.
type Favorite struct {
	ID        string
	UserID    string
	RecipeID  string
	CreatedAt time.Time
}
