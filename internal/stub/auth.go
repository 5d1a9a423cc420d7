package stub

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		errorJSON(w, http.StatusBadRequest, "email and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[req.Email]; exists {
		errorJSON(w, http.StatusConflict, "email already in use")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "registration failed")
		return
	}
	s.users[req.Email] = &account{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Role:         "USER",
		PasswordHash: hash,
	}
	respond(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "account created",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	acct, ok := s.users[req.Email]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(req.Password)) != nil {
		errorJSON(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	access, err := s.signToken(acct, accessTokenTTL)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "token generation failed")
		return
	}
	refresh, err := s.signToken(acct, refreshTokenTTL)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "token generation failed")
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"token":        access,
		"refreshToken": refresh,
		"success":      true,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}
	claims, err := s.parseToken(req.RefreshToken)
	if err != nil {
		errorJSON(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	s.mu.Lock()
	acct, ok := s.users[claims.Email]
	s.mu.Unlock()
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	access, err := s.signToken(acct, accessTokenTTL)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "token generation failed")
		return
	}
	respond(w, http.StatusOK, map[string]string{"token": access})
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	s.mu.Lock()
	acct, ok := s.users[claims.Email]
	s.mu.Unlock()
	if !ok {
		errorJSON(w, http.StatusNotFound, "resource not found")
		return
	}
	respond(w, http.StatusOK, map[string]string{
		"id":    acct.ID,
		"email": acct.Email,
		"name":  acct.Name,
		"role":  acct.Role,
	})
}

func (s *Server) logout(w http.ResponseWriter, _ *http.Request) {
	// Stateless tokens: nothing to revoke in the stub.
	respond(w, http.StatusNoContent, nil)
}

func (s *Server) signToken(acct *account, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": acct.ID,
		"email":   acct.Email,
		"name":    acct.Name,
		"role":    acct.Role,
		"exp":     time.Now().Add(ttl).Unix(),
		"iat":     time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtKey)
}
