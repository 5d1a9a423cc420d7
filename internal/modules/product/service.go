package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/mkasonde/pvc-portal/internal/api"
	"github.com/mkasonde/pvc-portal/internal/sanitize"
	"github.com/mkasonde/pvc-portal/internal/validate"
)

// ErrNotFound is returned when no product matches the requested id.
var ErrNotFound = errors.New("product not found")

// Named defaults for fields the compact v1 backend shape omits. These are
// deliberate placeholders, not silent zero values.
const (
	fallbackCategory = "General"
	fallbackPrice    = 0
	fallbackStock    = 0
)

// Service defines the product catalog operations.
type Service interface {
	// List returns the catalog. On a live fetch failure it degrades to the
	// bundled mock catalog and tags the result SourceFallback instead of
	// failing the caller.
	List(ctx context.Context) (*List, error)

	// Get retrieves a single product by id.
	Get(ctx context.Context, id string) (*Product, error)

	// Create adds a catalog entry (admin).
	Create(ctx context.Context, req CreateRequest) (*Product, error)

	// Update renames a catalog entry (admin).
	Update(ctx context.Context, id string, req UpdateRequest) error

	// Delete removes a catalog entry (admin).
	Delete(ctx context.Context, id string) error

	// Upload bulk-imports products from a file (admin, multipart).
	Upload(ctx context.Context, filename string, r io.Reader) error
}

// Config selects mock or live operation and the backend contract version.
type Config struct {
	MockEnabled bool
	MockLatency time.Duration
	APIVersion  string
}

type service struct {
	client api.Transport
	cfg    Config
	log    *slog.Logger
}

// NewService creates a new product service.
func NewService(client api.Transport, cfg Config, log *slog.Logger) Service {
	if log == nil {
		log = slog.Default()
	}
	return &service{client: client, cfg: cfg, log: log}
}

// backendProductV1 is the compact shape the v1 contract returns.
type backendProductV1 struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func mapBackendProductV1(bp backendProductV1) Product {
	return Product{
		ID:            strconv.Itoa(bp.ID),
		Name:          bp.Name,
		Active:        bp.Active,
		Category:      fallbackCategory,
		Price:         fallbackPrice,
		StockQuantity: fallbackStock,
	}
}

func (s *service) List(ctx context.Context) (*List, error) {
	if s.cfg.MockEnabled {
		if err := s.simulateLatency(ctx); err != nil {
			return nil, err
		}
		return &List{Products: MockCatalog(), Source: SourceMock}, nil
	}

	products, err := s.fetchAll(ctx)
	if err != nil {
		// Deliberate product choice: a catalog outage degrades to the
		// bundled catalog rather than failing the caller. The Source tag
		// keeps the degradation visible.
		s.log.Warn("live product fetch failed, serving bundled catalog", "error", err)
		return &List{Products: MockCatalog(), Source: SourceFallback}, nil
	}
	return &List{Products: products, Source: SourceLive}, nil
}

func (s *service) fetchAll(ctx context.Context) ([]Product, error) {
	if s.cfg.APIVersion == api.VersionV1 {
		var backend []backendProductV1
		if err := s.client.Get(ctx, "/products", &backend); err != nil {
			return nil, err
		}
		products := make([]Product, 0, len(backend))
		for _, bp := range backend {
			products = append(products, mapBackendProductV1(bp))
		}
		return products, nil
	}

	var products []Product
	if err := s.client.Get(ctx, "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *service) Get(ctx context.Context, id string) (*Product, error) {
	if err := validate.NonEmpty("id", id, "Product ID required"); err != nil {
		return nil, err
	}

	if s.cfg.MockEnabled {
		if err := s.simulateLatency(ctx); err != nil {
			return nil, err
		}
		for _, p := range MockCatalog() {
			if p.ID == id {
				return &p, nil
			}
		}
		return nil, ErrNotFound
	}

	if s.cfg.APIVersion == api.VersionV1 {
		var backend backendProductV1
		if err := s.client.Get(ctx, "/products/"+id, &backend); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		p := mapBackendProductV1(backend)
		return &p, nil
	}

	var p Product
	if err := s.client.Get(ctx, "/products/"+id, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return &p, nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Product, error) {
	req.Name = sanitize.String(req.Name)
	if err := validate.First(
		validate.NonEmpty("name", req.Name, "Product name is required"),
		validate.MaxLen("name", req.Name, 200, "Product name too long"),
	); err != nil {
		return nil, err
	}

	if s.cfg.MockEnabled {
		if err := s.simulateLatency(ctx); err != nil {
			return nil, err
		}
		return &Product{ID: uuid.NewString(), Name: req.Name, Active: true}, nil
	}

	if s.cfg.APIVersion == api.VersionV1 {
		var backend backendProductV1
		if err := s.client.Post(ctx, "/products", req, &backend); err != nil {
			return nil, err
		}
		p := mapBackendProductV1(backend)
		return &p, nil
	}

	var p Product
	if err := s.client.Post(ctx, "/products", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) error {
	req.Name = sanitize.String(req.Name)
	if err := validate.First(
		validate.NonEmpty("id", id, "Product ID required"),
		validate.NonEmpty("name", req.Name, "Product name is required"),
	); err != nil {
		return err
	}

	if s.cfg.MockEnabled {
		return s.simulateLatency(ctx)
	}
	return s.client.Put(ctx, "/products/"+id, req, nil)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := validate.NonEmpty("id", id, "Product ID required"); err != nil {
		return err
	}

	if s.cfg.MockEnabled {
		return s.simulateLatency(ctx)
	}
	return s.client.Delete(ctx, "/products/"+id)
}

func (s *service) Upload(ctx context.Context, filename string, r io.Reader) error {
	if err := validate.NonEmpty("filename", filename, "File name required"); err != nil {
		return err
	}

	if s.cfg.MockEnabled {
		return s.simulateLatency(ctx)
	}
	return s.client.Upload(ctx, "/products/upload", filename, r, nil)
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
