package cli

import "context"

func (a *App) Favorite(ctx context.Context, id string) error {
	if _, err := a.api.AddFavorite(ctx, id); err != nil {
		return err
	}
	a.println("Added to favorites")
	return nil
}

func (a *App) Unfavorite(ctx context.Context, id string) error {
	if err := a.api.RemoveFavorite(ctx, id); err != nil {
		return err
	}
	a.println("Removed from favorites")
	return nil
}

func (a *App) Favorites(ctx context.Context) error {
	recipes, err := a.api.ListFavorites(ctx)
	if err != nil {
		return err
	}
	if len(recipes) == 0 {
		a.println("No favorites yet")
		return nil
	}
	a.printRecipes(recipes)
	return nil
}
