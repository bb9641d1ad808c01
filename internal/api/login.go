package api

import (
	"errors"
	"net/http"

	"github.com/hollis/gaffer/internal/auth"
)

type loginRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// handleLogin exchanges credentials for a bearer token. Failed logins are
// reported as not found without revealing whether the username exists.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Username == nil {
		s.writeError(w, http.StatusUnprocessableEntity, "username is required")
		return
	}
	if req.Password == nil {
		s.writeError(w, http.StatusUnprocessableEntity, "password is required")
		return
	}

	token, err := s.authn.Login(r.Context(), *req.Username, *req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.writeError(w, http.StatusNotFound, "Incorrect username or password")
			return
		}
		s.writeDomainError(w, err, "login")
		return
	}

	s.writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}
