// Package models defines the shapes the CLI receives from the RecipeBox API.
package models

import (
	"fmt"
	"strings"
	"time"
)

// User is the public view of an account.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Recipe is either a list summary (id, name, postedBy) or a full detail.
// Detail-only fields stay zero in summaries.
type Recipe struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Instructions string    `json:"instructions,omitempty"`
	Ingredients  []string  `json:"ingredients,omitempty"`
	Thumbnail    string    `json:"thumbnail,omitempty"`
	PostedBy     string    `json:"postedBy"`
	PostedByName string    `json:"postedByName,omitempty"`
	PostedAt     time.Time `json:"postedAt,omitempty"`
}

// IsDetailed reports whether r came from the detail endpoint.
func (r Recipe) IsDetailed() bool {
	return r.Instructions != "" || len(r.Ingredients) > 0
}

func (r Recipe) String() string {
	author := r.PostedByName
	if author == "" {
		author = r.PostedBy
	}
	return fmt.Sprintf("%s  %s  (by %s)", r.ID, r.Name, author)
}

// Details renders the full recipe for the terminal.
func (r Recipe) Details() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", r.Name)
	fmt.Fprintf(&b, "by %s", r.PostedByName)
	if !r.PostedAt.IsZero() {
		fmt.Fprintf(&b, " on %s", r.PostedAt.Local().Format("2006-01-02 15:04"))
	}
	b.WriteString("\n\nIngredients:\n")
	for _, ing := range r.Ingredients {
		fmt.Fprintf(&b, "  - %s\n", ing)
	}
	b.WriteString("\nInstructions:\n")
	b.WriteString(r.Instructions)
	b.WriteString("\n")
	if r.Thumbnail != "" {
		fmt.Fprintf(&b, "\nThumbnail: %s\n", r.Thumbnail)
	}
	return b.String()
}

// RecipePage is one page of a recipe listing.
type RecipePage struct {
	Recipes []Recipe `json:"recipes"`
	Total   int      `json:"total"`
	Page    int      `json:"page"`
	Limit   int      `json:"limit"`
}

// NewRecipe is the input of a create call. ThumbnailPath is optional.
type NewRecipe struct {
	Name          string
	Instructions  string
	Ingredients   []string
	ThumbnailPath string
}
