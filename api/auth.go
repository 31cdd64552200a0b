package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/Skryldev/todo-api/models"
)

type registerRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type sessionResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
}

// POST /api/v1/auth/register
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidation(w, err)
		return
	}
	switch {
	case req.Name == nil:
		writeValidation(w, errors.New("name: field required"))
		return
	case req.Email == nil:
		writeValidation(w, errors.New("email: field required"))
		return
	case req.Password == nil:
		writeValidation(w, errors.New("password: field required"))
		return
	}

	user, err := s.users.Create(r.Context(), *req.Name, *req.Email, *req.Password)
	if err != nil {
		s.fail(w, r, err, "Error creating user")
		return
	}
	s.writeSession(w, r, user, "User registered successfully")
}

// POST /api/v1/auth/login with form-encoded email and password.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeValidation(w, err)
		return
	}
	email, password := r.PostForm.Get("email"), r.PostForm.Get("password")
	switch {
	case email == "":
		writeValidation(w, errors.New("email: field required"))
		return
	case password == "":
		writeValidation(w, errors.New("password: field required"))
		return
	}

	user, err := s.users.Authenticate(r.Context(), email, password)
	if err != nil {
		s.fail(w, r, err, "Error during login")
		return
	}
	s.writeSession(w, r, user, "Login successful")
}

// POST /api/v1/auth/logout. Tokens are stateless; this only acknowledges.
func (s *Server) logout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, nil, "Logout successful")
}

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, u *models.User, message string) {
	token, _, err := s.tokens.Issue(u.ID)
	if err != nil {
		s.fail(w, r, err, "Error issuing access token")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		User:        u,
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.TTL() / time.Second),
	}, message)
}
