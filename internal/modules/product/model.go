package product

// Product is a catalog entry as the rest of the application sees it,
// regardless of which backend contract version produced it.
type Product struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	Category      string  `json:"category,omitempty"`
	Price         float64 `json:"price,omitempty"`
	StockQuantity int     `json:"stockQuantity,omitempty"`
	Active        bool    `json:"active"`
}

// Source tags where a product listing came from. Fallback marks the
// degraded mode where a live fetch failed and the bundled catalog was
// served instead, so callers can surface the outage rather than mistake it
// for a healthy response.
type Source string

const (
	SourceLive     Source = "live"
	SourceMock     Source = "mock"
	SourceFallback Source = "fallback"
)

// List is a catalog listing plus its provenance.
type List struct {
	Products []Product `json:"products"`
	Source   Source    `json:"source"`
}

// CreateRequest is the payload for adding a catalog entry.
type CreateRequest struct {
	Name string `json:"name"`
}

// UpdateRequest is the payload for renaming a catalog entry.
type UpdateRequest struct {
	Name string `json:"name"`
}
