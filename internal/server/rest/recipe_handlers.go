package rest

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/recipebox/internal/common"
	"github.com/dmitrijs2005/recipebox/internal/server/assets"
	"github.com/dmitrijs2005/recipebox/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead is the room left for text fields next to the thumbnail.
const multipartOverhead = 1 << 20

func (s *Server) createRecipe(w http.ResponseWriter, r *http.Request) {
	in, thumbnail, cleanup, err := s.readRecipeInput(w, r)
	defer cleanup()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sum, err := s.recipes.Create(r.Context(), identity(r).ID, in, thumbnail)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, "Recipe created successfully", envelope{"recipe": sum})
}

// readRecipeInput accepts a multipart form (with an optional thumbnail file)
// or a JSON body. The returned cleanup is never nil.
func (s *Server) readRecipeInput(w http.ResponseWriter, r *http.Request) (services.CreateRecipeInput, *assets.Object, func(), error) {
	var in services.CreateRecipeInput
	noop := func() {}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := decodeJSON(w, r, &in); err != nil {
			return in, nil, noop, err
		}
		return in, nil, noop, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxThumbnailSize+multipartOverhead)
	if err := r.ParseMultipartForm(s.maxThumbnailSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return in, nil, noop, s.thumbnailTooLarge()
		}
		return in, nil, noop, fmt.Errorf("%w: invalid multipart form", common.ErrValidation)
	}
	cleanup := func() { _ = r.MultipartForm.RemoveAll() }

	in.Name = r.FormValue("name")
	in.Instructions = r.FormValue("instructions")

	ingredients := r.MultipartForm.Value["ingredients"]
	switch len(ingredients) {
	case 0:
	case 1:
		parsed, err := services.ParseIngredients(ingredients[0])
		if err != nil {
			return in, nil, cleanup, err
		}
		in.Ingredients = parsed
	default:
		in.Ingredients = ingredients
	}

	file, header, err := r.FormFile("thumbnail")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return in, nil, cleanup, nil
		}
		return in, nil, cleanup, fmt.Errorf("%w: invalid thumbnail", common.ErrValidation)
	}
	if header.Size > s.maxThumbnailSize {
		_ = file.Close()
		return in, nil, cleanup, s.thumbnailTooLarge()
	}

	obj := &assets.Object{
		Body:        file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	}
	return in, obj, func() {
		_ = file.Close()
		cleanup()
	}, nil
}

func (s *Server) thumbnailTooLarge() error {
	limit := fmt.Sprintf("%d bytes", s.maxThumbnailSize)
	if s.maxThumbnailSize >= 1<<20 {
		limit = fmt.Sprintf("%d MB", s.maxThumbnailSize>>20)
	}
	return &services.ValidationError{Fields: []services.FieldError{{
		Field:   "thumbnail",
		Message: "thumbnail must not exceed " + limit,
	}}}
}

func (s *Server) listRecipes(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	page, err := s.recipes.List(r.Context(), search, queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondPage(w, page.Recipes, page.Total, page.Page, page.Limit)
}

func (s *Server) listMyRecipes(w http.ResponseWriter, r *http.Request) {
	page, err := s.recipes.ListByOwner(r.Context(), identity(r).ID, queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondPage(w, page.Recipes, page.Total, page.Page, page.Limit)
}

func respondPage(w http.ResponseWriter, recipes any, total, page, limit int) {
	respondOK(w, http.StatusOK, "Recipes fetched successfully", envelope{
		"recipes": recipes,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

func (s *Server) getRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := s.recipes.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "Recipe fetched successfully", envelope{"recipe": recipe})
}

func (s *Server) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	if err := s.recipes.Delete(r.Context(), chi.URLParam(r, "id"), identity(r).ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "Recipe deleted successfully", nil)
}
