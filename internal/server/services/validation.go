package services

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/recipebox/internal/common"
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rejected field of an input. It matches
// common.ErrValidation with errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return common.ErrValidation }

type fieldErrors []FieldError

func (fe *fieldErrors) add(field, msg string) {
	*fe = append(*fe, FieldError{Field: field, Message: msg})
}

func (fe *fieldErrors) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		fe.add(field, field+" is required")
	}
}

func (fe fieldErrors) err() error {
	if len(fe) == 0 {
		return nil
	}
	return &ValidationError{Fields: fe}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in RegisterInput) Validate() error {
	var fe fieldErrors
	fe.required("name", in.Name)
	fe.required("email", in.Email)
	fe.required("password", in.Password)
	if strings.TrimSpace(in.Email) != "" {
		if a, err := mail.ParseAddress(in.Email); err != nil || a.Address != in.Email {
			fe.add("email", "email must be a valid address")
		}
	}
	return fe.err()
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in LoginInput) Validate() error {
	var fe fieldErrors
	fe.required("email", in.Email)
	fe.required("password", in.Password)
	return fe.err()
}

// Ingredients decodes from either a JSON array of strings or a string that
// itself holds such an array, as sent by multipart forms.
type Ingredients []string

func (i *Ingredients) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*i = list
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errInvalidIngredients
	}
	parsed, err := ParseIngredients(s)
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

var errInvalidIngredients = &ValidationError{Fields: []FieldError{{Field: "ingredients", Message: "invalid ingredients format"}}}

// ParseIngredients decodes the JSON-encoded list form of ingredients.
func ParseIngredients(raw string) (Ingredients, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, errInvalidIngredients
	}
	return list, nil
}

type CreateRecipeInput struct {
	Name         string      `json:"name"`
	Instructions string      `json:"instructions"`
	Ingredients  Ingredients `json:"ingredients"`
}

// Validate checks required fields. Blank ingredient entries are dropped
// before the emptiness check.
func (in *CreateRecipeInput) Validate() error {
	var fe fieldErrors
	fe.required("name", in.Name)
	fe.required("instructions", in.Instructions)

	cleaned := in.Ingredients[:0]
	for _, item := range in.Ingredients {
		if item = strings.TrimSpace(item); item != "" {
			cleaned = append(cleaned, item)
		}
	}
	in.Ingredients = cleaned
	if len(in.Ingredients) == 0 {
		fe.add("ingredients", "ingredients is required")
	}
	return fe.err()
}

func invalidID(field, id string) error {
	return fmt.Errorf("%w: %s %q does not exist", common.ErrNotFound, field, id)
}
