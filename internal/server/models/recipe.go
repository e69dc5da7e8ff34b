package models

import (
	"math"
	"time"
)

// Recipe is a published recipe. PostedBy is the owning user and never changes.
// Thumbnail is an opaque asset reference, empty when the recipe has none.
type Recipe struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Instructions string    `json:"instructions"`
	Ingredients  []string  `json:"ingredients"`
	Thumbnail    string    `json:"thumbnail,omitempty"`
	PostedBy     string    `json:"postedBy"`
	PostedByName string    `json:"postedByName,omitempty"`
	PostedAt     time.Time `json:"postedAt"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RecipeSummary is returned after a recipe is created.
type RecipeSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	PostedBy string `json:"postedBy"`
}

// RecipeFilter selects a slice of the catalog. An empty Search matches every
// recipe; a non-empty PostedBy restricts the result to one owner.
type RecipeFilter struct {
	Search   string
	PostedBy string
	Page     int
	Limit    int
}

// Offset is the number of rows skipped before the requested page. It
// saturates instead of overflowing for absurd page numbers.
func (f RecipeFilter) Offset() int {
	if f.Page < 1 || f.Limit < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.Limit {
		return math.MaxInt
	}
	return (f.Page - 1) * f.Limit
}

// RecipePage is one page of recipes plus the size of the whole filtered set.
type RecipePage struct {
	Recipes []*Recipe `json:"recipes"`
	Total   int       `json:"total"`
	Page    int       `json:"page"`
	Limit   int       `json:"limit"`
}
