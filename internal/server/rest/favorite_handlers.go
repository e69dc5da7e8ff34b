package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) addFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := s.favorites.Add(r.Context(), identity(r).ID, chi.URLParam(r, "recipeId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, "Recipe added to favorites", envelope{"favoriteId": id})
}

func (s *Server) listFavorites(w http.ResponseWriter, r *http.Request) {
	recipes, err := s.favorites.List(r.Context(), identity(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "Favorites fetched successfully", envelope{"recipes": recipes})
}

func (s *Server) removeFavorite(w http.ResponseWriter, r *http.Request) {
	if err := s.favorites.Remove(r.Context(), identity(r).ID, chi.URLParam(r, "recipeId")); err != nil {
		s.writeError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "Recipe removed from favorites", nil)
}
