package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/recipebox/internal/client/collection"
	"github.com/dmitrijs2005/recipebox/internal/client/models"
)

var getLines = GetLines
var getMultiline = GetMultiline

// List starts a new catalog result set, optionally filtered by search.
func (a *App) List(ctx context.Context, search string) error {
	return a.load(ctx, collection.Query{Mode: collection.ModeAll, Search: search})
}

// Mine starts a new result set with the caller's own recipes.
func (a *App) Mine(ctx context.Context) error {
	return a.load(ctx, collection.Query{Mode: collection.ModeMine})
}

func (a *App) load(ctx context.Context, q collection.Query) error {
	if err := a.recipes.Load(ctx, q); err != nil {
		return err
	}
	items := a.recipes.Items()
	_, total, _ := a.recipes.Counts()
	if total == 0 {
		a.println("No recipes found")
		return nil
	}
	a.println(fmt.Sprintf("%d recipes found", total))
	a.printRecipes(items)
	a.printMoreHint()
	return nil
}

// More appends the next page of the current result set.
func (a *App) More(ctx context.Context) error {
	before, _, _ := a.recipes.Counts()
	if _, err := a.recipes.LoadMore(ctx); err != nil {
		return err
	}
	items := a.recipes.Items()
	a.printRecipes(items[before:])
	a.printMoreHint()
	return nil
}

func (a *App) printRecipes(items []models.Recipe) {
	for _, r := range items {
		a.println(r.String())
	}
}

func (a *App) printMoreHint() {
	if a.recipes.HasMore() {
		loaded, total, _ := a.recipes.Counts()
		a.println(fmt.Sprintf("showing %d of %d, type 'more' for the next page", loaded, total))
	}
}

func (a *App) Show(ctx context.Context, id string) error {
	r, err := a.api.GetRecipe(ctx, id)
	if err != nil {
		return err
	}
	a.recipes.Upsert(*r)
	a.println(r.Details())
	return nil
}

// Add prompts for a new recipe and posts it.
func (a *App) Add(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Recipe name", a.out)
	if err != nil {
		return err
	}
	ingredients, err := getLines(a.reader, "Ingredients, one per line", a.out)
	if err != nil {
		return err
	}
	instructions, err := getMultiline(a.reader, "Instructions", a.out)
	if err != nil {
		return err
	}
	thumbnail, err := getSimpleText(a.reader, "Thumbnail image path (empty for none)", a.out)
	if err != nil {
		return err
	}

	r, err := a.api.CreateRecipe(ctx, models.NewRecipe{
		Name:          name,
		Instructions:  instructions,
		Ingredients:   ingredients,
		ThumbnailPath: strings.TrimSpace(thumbnail),
	})
	if err != nil {
		return err
	}

	a.println("Recipe created:", r.ID)
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.api.DeleteRecipe(ctx, id); err != nil {
		return err
	}
	a.recipes.Remove(id)
	a.println("Recipe deleted")
	return nil
}
