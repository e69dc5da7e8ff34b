package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/common"
	"github.com/dmitrijs2005/recipebox/internal/server/services"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.sessions.Register(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	http.SetCookie(w, s.sessionCookie(sess.Token, s.sessions.TokenValidity()))
	respondOK(w, http.StatusCreated, "User registered successfully", envelope{"user": sess.User})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.sessions.Login(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	http.SetCookie(w, s.sessionCookie(sess.Token, s.sessions.TokenValidity()))
	respondOK(w, http.StatusOK, "Logged in successfully", envelope{"user": sess.User})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	user, err := s.sessions.GetMe(r.Context(), identity(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "User fetched successfully", envelope{"user": user})
}

// logout only drops the cookie. The token itself stays valid until it
// expires; there is no server-side revocation.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, s.sessionCookie("", -1))
	respondOK(w, http.StatusOK, "Logged out successfully", nil)
}

// sessionCookie builds the token cookie. A negative ttl deletes it.
// Secure cookies are SameSite=None so a separately hosted frontend can send them.
func (s *Server) sessionCookie(token string, ttl time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if s.cookieSecure {
		c.SameSite = http.SameSiteNoneMode
	}
	if ttl < 0 {
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
	} else {
		c.MaxAge = int(ttl.Seconds())
		c.Expires = time.Now().Add(ttl)
	}
	return c
}

const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			return err
		}
		return fmt.Errorf("%w: invalid request body", common.ErrValidation)
	}
	return nil
}
