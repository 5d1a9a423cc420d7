package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/mkasonde/pvc-portal/internal/api"
	"github.com/mkasonde/pvc-portal/internal/ratelimit"
	"github.com/mkasonde/pvc-portal/internal/sanitize"
	"github.com/mkasonde/pvc-portal/internal/token"
	"github.com/mkasonde/pvc-portal/internal/validate"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoSession          = errors.New("no token found")
	ErrNoRefreshToken     = errors.New("no refresh token available")
	ErrStaleSession       = errors.New("session changed during token refresh")
)

// Service exposes the authentication operations. Mock and live mode share
// the same signatures and error contract.
type Service interface {
	// Login authenticates and establishes a session. The rate limiter is
	// consulted before any network I/O; a lockout is recorded as a failed
	// attempt.
	Login(ctx context.Context, email, password string) (*User, error)

	// Signup registers a new account and immediately logs in with the same
	// credentials; registration alone does not yield a session.
	Signup(ctx context.Context, name, email, password string) (*User, error)

	// CurrentUser resolves the user for the stored session token.
	CurrentUser(ctx context.Context) (*User, error)

	// Logout notifies the server best-effort and unconditionally clears
	// the local session.
	Logout(ctx context.Context) error

	// LoginAsGuest synthesises a guest session locally; no network call.
	LoginAsGuest() *User

	// Refresh exchanges the stored refresh token for a new access token.
	Refresh(ctx context.Context) error
}

// Config selects mock or live operation and the backend contract version.
type Config struct {
	MockEnabled bool
	MockLatency time.Duration
	APIVersion  string
}

type service struct {
	client  api.Transport
	tokens  token.Store
	limiter *ratelimit.Limiter
	cfg     Config
	log     *slog.Logger
}

// NewService creates a new auth service. The token store and limiter are
// injected so tests can use fresh instances.
func NewService(client api.Transport, tokens token.Store, limiter *ratelimit.Limiter, cfg Config, log *slog.Logger) Service {
	if log == nil {
		log = slog.Default()
	}
	return &service{client: client, tokens: tokens, limiter: limiter, cfg: cfg, log: log}
}

// ── Wire shapes ───────────────────────────────────────────────────────────────

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponseV2: token only; identity comes from a follow-up profile
// fetch. The refresh token is optional on older deployments.
type loginResponseV2 struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	Success      bool   `json:"success"`
}

// authResponseV1: token and user inline.
type authResponseV1 struct {
	Token string `json:"token"`
	User  struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Role     string `json:"role"`
	} `json:"user"`
}

type registerResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type profileResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type refreshResponse struct {
	Token string `json:"token"`
}

func (r authResponseV1) user() *User {
	return &User{
		ID:    r.User.ID,
		Email: r.User.Email,
		Name:  r.User.Username,
		Role:  mapRole(r.User.Role),
	}
}

// ── Operations ────────────────────────────────────────────────────────────────

func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	email = sanitize.Email(sanitize.String(email))
	password = sanitize.String(password)
	if err := validate.First(
		validate.Email("email", email),
		validate.NonEmpty("password", password, "Password is required"),
		validate.MaxLen("password", password, 128, "Password too long"),
	); err != nil {
		return nil, err
	}

	if !s.limiter.Allow(email) {
		// The short-circuit itself counts as a failed attempt.
		s.limiter.Record(email, false)
		return nil, ratelimit.ErrTooManyAttempts
	}

	var (
		user *User
		err  error
	)
	if s.cfg.MockEnabled {
		user, err = s.mockLogin(ctx, email, password)
	} else {
		user, err = s.liveLogin(ctx, email, password)
	}
	s.limiter.Record(email, err == nil)
	return user, err
}

func (s *service) mockLogin(ctx context.Context, email, password string) (*User, error) {
	if err := s.simulateLatency(ctx); err != nil {
		return nil, err
	}
	if email == DemoAdminEmail {
		if bcrypt.CompareHashAndPassword(demoAdminHash, []byte(password)) != nil {
			return nil, ErrInvalidCredentials
		}
		s.tokens.SetTokens(mockAdminToken, "")
		return adminUser(), nil
	}
	s.tokens.SetTokens(mockVendorToken, "")
	return vendorUser(email), nil
}

func (s *service) liveLogin(ctx context.Context, email, password string) (*User, error) {
	req := loginRequest{Email: email, Password: password}

	if s.cfg.APIVersion == api.VersionV1 {
		var resp authResponseV1
		if err := s.client.Post(ctx, "/auth/login", req, &resp, api.WithoutAuth()); err != nil {
			return nil, err
		}
		if resp.Token == "" {
			return nil, ErrInvalidCredentials
		}
		s.tokens.SetTokens(resp.Token, "")
		return resp.user(), nil
	}

	var resp loginResponseV2
	if err := s.client.Post(ctx, "/auth/login", req, &resp, api.WithoutAuth()); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Token == "" {
		return nil, ErrInvalidCredentials
	}
	s.tokens.SetTokens(resp.Token, resp.RefreshToken)
	return s.fetchProfile(ctx)
}

func (s *service) Signup(ctx context.Context, name, email, password string) (*User, error) {
	name = sanitize.String(name)
	email = sanitize.Email(sanitize.String(email))
	password = sanitize.String(password)
	if err := validate.First(
		validate.NonEmpty("name", name, "Name is required"),
		validate.MaxLen("name", name, 100, "Name too long"),
		validate.Email("email", email),
		validate.Password("password", password),
	); err != nil {
		return nil, err
	}

	if s.cfg.MockEnabled {
		if err := s.simulateLatency(ctx); err != nil {
			return nil, err
		}
		s.tokens.SetTokens(mockNewUserToken, "")
		return &User{ID: uuid.NewString(), Email: email, Name: name, Role: RoleVendor}, nil
	}

	req := registerRequest{Name: name, Email: email, Password: password}

	if s.cfg.APIVersion == api.VersionV1 {
		// v1 registration returns a session inline.
		var resp authResponseV1
		if err := s.client.Post(ctx, "/auth/register", req, &resp, api.WithoutAuth()); err != nil {
			return nil, err
		}
		s.tokens.SetTokens(resp.Token, "")
		return resp.user(), nil
	}

	var resp registerResponse
	if err := s.client.Post(ctx, "/auth/register", req, &resp, api.WithoutAuth()); err != nil {
		return nil, err
	}
	if !resp.Success {
		if resp.Message != "" {
			return nil, fmt.Errorf("registration failed: %s", resp.Message)
		}
		return nil, errors.New("registration failed")
	}
	// Log in directly with the credentials the account was registered with.
	// Entity encoding is not idempotent, so going through Login would
	// re-sanitize the password and send a different string.
	user, err := s.liveLogin(ctx, email, password)
	if err == nil {
		s.limiter.Record(email, true)
	}
	return user, err
}

func (s *service) CurrentUser(ctx context.Context) (*User, error) {
	tok := s.tokens.AccessToken()
	if tok == "" {
		return nil, ErrNoSession
	}

	if s.cfg.MockEnabled {
		switch {
		case tok == mockAdminToken:
			return adminUser(), nil
		case token.IsGuest(tok):
			return guestUser(), nil
		default:
			return vendorUser("vendor@example.com"), nil
		}
	}

	if token.IsGuest(tok) {
		return guestUser(), nil
	}
	return s.fetchProfile(ctx)
}

func (s *service) Logout(ctx context.Context) error {
	if !s.cfg.MockEnabled {
		// Best effort: failing to notify the server must never prevent
		// local session teardown.
		if err := s.client.Post(ctx, "/auth/logout", nil, nil); err != nil {
			s.log.Warn("logout notification failed", "error", err)
		}
	}
	s.tokens.Clear()
	return nil
}

func (s *service) LoginAsGuest() *User {
	s.tokens.SetTokens(token.NewGuestToken(), "")
	return guestUser()
}

func (s *service) Refresh(ctx context.Context) error {
	refresh := s.tokens.RefreshToken()
	if refresh == "" {
		return ErrNoRefreshToken
	}

	// Capture the generation before the exchange so a logout that lands
	// mid-flight cannot be overwritten by the late response.
	gen := s.tokens.Generation()

	var newToken string
	if s.cfg.MockEnabled {
		if err := s.simulateLatency(ctx); err != nil {
			return err
		}
		newToken = mockRefreshedToken
	} else {
		body := struct {
			RefreshToken string `json:"refreshToken"`
		}{RefreshToken: refresh}
		var resp refreshResponse
		if err := s.client.Post(ctx, "/auth/refresh", body, &resp, api.WithoutAuth()); err != nil {
			return err
		}
		if resp.Token == "" {
			return ErrInvalidCredentials
		}
		newToken = resp.Token
	}

	if !s.tokens.SetIfCurrent(gen, newToken, "") {
		return ErrStaleSession
	}
	return nil
}

// fetchProfile assembles a User from the profile endpoint, filling fields
// the response omits from the access token's claims.
func (s *service) fetchProfile(ctx context.Context) (*User, error) {
	var resp profileResponse
	if err := s.client.Get(ctx, "/auth/profile", &resp); err != nil {
		return nil, err
	}

	claims := claimsFromToken(s.tokens.AccessToken())

	user := &User{
		ID:    resp.ID,
		Email: resp.Email,
		Name:  resp.Name,
	}
	if user.Name == "" {
		user.Name = resp.Username
	}
	role := resp.Role
	if role == "" {
		role = claims.Role
	}
	user.Role = mapRole(role)
	if user.ID == "" {
		user.ID = claims.UserID
	}
	if user.Name == "" {
		// Named fallback: derive a display name from the address. A server
		// may return a malformed email; fall back to the whole string then.
		if at := strings.IndexByte(user.Email, '@'); at > 0 {
			user.Name = user.Email[:at]
		} else {
			user.Name = user.Email
		}
	}
	return user, nil
}

type tokenClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// claimsFromToken decodes the unverified payload segment. The backend is
// the authority on the token; the client only mines it for display fields
// the profile response lacks.
func claimsFromToken(tok string) tokenClaims {
	var claims tokenClaims
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return claims
	}
	payload, err := jwt.DecodeSegment(parts[1])
	if err != nil {
		return claims
	}
	_ = json.Unmarshal(payload, &claims)
	return claims
}

func (s *service) simulateLatency(ctx context.Context) error {
	if s.cfg.MockLatency <= 0 {
		return nil
	}
	select {
	case <-time.After(s.cfg.MockLatency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
