// Package stub is an in-memory implementation of the portal backend HTTP
// contract. It exists for local development and for integration tests of
// the client; it is not the production backend.
package stub

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mkasonde/pvc-portal/internal/modules/auth"
	"github.com/mkasonde/pvc-portal/internal/modules/order"
	"github.com/mkasonde/pvc-portal/internal/modules/product"
	"golang.org/x/crypto/bcrypt"
)

// DemoVendorEmail and DemoVendorPassword are the seeded vendor account.
const (
	DemoVendorEmail    = "vendor1@example.com"
	DemoVendorPassword = "VendorDemo123!"
)

type account struct {
	ID           string
	Name         string
	Email        string
	Role         string // ADMIN or USER, backend-side names
	PasswordHash []byte
}

// Server holds the in-memory backend state. All handlers lock the one
// mutex; the dataset is small and contention is irrelevant for a stub.
type Server struct {
	mu       sync.Mutex
	jwtKey   []byte
	users    map[string]*account
	products []product.Product
	orders   []order.Order
	nextID   int
}

// New seeds a Server with the bundled demo catalog, order book, and the
// demo admin and vendor accounts.
func New(jwtKey []byte) *Server {
	s := &Server{
		jwtKey:   jwtKey,
		users:    make(map[string]*account),
		products: product.MockCatalog(),
		orders:   order.MockOrders(),
		nextID:   100,
	}
	s.seedAccount("System Administrator", auth.DemoAdminEmail, auth.DemoAdminPassword, "ADMIN")
	s.seedAccount("ABC Construction", DemoVendorEmail, DemoVendorPassword, "USER")
	return s
}

func (s *Server) seedAccount(name, email, password, role string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic("stub: hashing seed password: " + err.Error())
	}
	s.users[email] = &account{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
	}
}

// Router mounts the backend contract under /api.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)
		r.Post("/auth/refresh", s.refresh)
		r.Post("/guest/orders", s.createGuestOrder)
		r.Get("/products", s.listProducts)
		r.Get("/products/{id}", s.getProduct)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/auth/profile", s.profile)
			r.Post("/auth/logout", s.logout)
			r.Get("/orders", s.listOrders)
			r.Post("/orders", s.createOrder)
			r.Get("/orders/{id}", s.getOrder)
			r.Put("/orders/{id}", s.updateOrder)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth, s.requireAdmin)
			r.Post("/products", s.createProduct)
			r.Put("/products/{id}", s.updateProduct)
			r.Delete("/products/{id}", s.deleteProduct)
			r.Post("/products/upload", s.uploadProducts)
			r.Put("/orders/{id}/status", s.updateOrderStatus)
			r.Delete("/orders/{id}", s.deleteOrder)
		})
	})
	return r
}

// ── Auth middleware ───────────────────────────────────────────────────────────

type ctxKey int

const claimsKey ctxKey = 0

type sessionClaims struct {
	UserID string
	Email  string
	Name   string
	Role   string
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			errorJSON(w, http.StatusUnauthorized, "authentication required")
			return
		}
		claims, err := s.parseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			errorJSON(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claimsFrom(r).Role != "ADMIN" {
			errorJSON(w, http.StatusForbidden, "access denied")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) parseToken(raw string) (*sessionClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.jwtKey, nil
	})
	if err != nil || !tok.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrSignatureInvalid
	}
	return &sessionClaims{
		UserID: stringClaim(mc, "user_id"),
		Email:  stringClaim(mc, "email"),
		Name:   stringClaim(mc, "name"),
		Role:   stringClaim(mc, "role"),
	}, nil
}

func stringClaim(mc jwt.MapClaims, key string) string {
	v, _ := mc[key].(string)
	return v
}

func withClaims(ctx context.Context, c *sessionClaims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func claimsFrom(r *http.Request) *sessionClaims {
	if c, ok := r.Context().Value(claimsKey).(*sessionClaims); ok {
		return c
	}
	return &sessionClaims{}
}

// ── Response helpers ──────────────────────────────────────────────────────────

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

func errorJSON(w http.ResponseWriter, status int, message string) {
	respond(w, status, map[string]string{"message": message})
}
