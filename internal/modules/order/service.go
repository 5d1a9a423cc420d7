package order

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mkasonde/pvc-portal/internal/api"
	"github.com/mkasonde/pvc-portal/internal/sanitize"
	"github.com/mkasonde/pvc-portal/internal/validate"
)

// ErrNotFound is returned when no order matches the requested id.
var ErrNotFound = errors.New("order not found")

// Named fallbacks for fields older backend shapes omit. Explicit
// placeholders, not silent zero values.
const (
	fallbackVendorEmail = "unknown@vendor.example"
	fallbackVendorName  = "Unknown Vendor"
	fallbackItemPrice   = 0
)

// Mock-mode identity for orders placed by the current session; the mock
// dataset has no authenticated user to attribute them to.
const (
	mockVendorEmail = "current@user.com"
	mockVendorName  = "Current User"
)

const (
	maxPageSize = 100
	maxQuantity = 1000
)

// Service defines the order operations available to the application.
type Service interface {
	// List returns one page of orders, optionally filtered.
	List(ctx context.Context, page, size int, filters Filters) (*List, error)

	// Get retrieves a single order by id.
	Get(ctx context.Context, id string) (*Order, error)

	// Create places a new order for the current session.
	Create(ctx context.Context, req CreateRequest) (*Order, error)

	// Update applies a partial update to an order (admin).
	Update(ctx context.Context, id string, patch UpdateRequest) (*Order, error)

	// UpdateStatus is the restricted variant of Update: only enumerated
	// status values are accepted.
	UpdateStatus(ctx context.Context, id string, status Status) (*Order, error)

	// Cancel marks an order cancelled.
	Cancel(ctx context.Context, id string) (*Order, error)

	// Delete removes an order (admin).
	Delete(ctx context.Context, id string) error

	// CreateGuest places a one-off order without a session.
	CreateGuest(ctx context.Context, req GuestRequest) (*GuestResult, error)
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
}

// NewService creates a new order service.
func NewService(client api.Transport, cfg Config) Service {
	return &service{client: client, cfg: cfg}
}

// ── Wire shapes ───────────────────────────────────────────────────────────────

// listResponseV2 is the paginated shape of the current contract.
type listResponseV2 struct {
	Data       []Order `json:"data"`
	Pagination struct {
		Page  int `json:"page"`
		Size  int `json:"size"`
		Total int `json:"total"`
	} `json:"pagination"`
}

// backendOrderV1 is the older contract's order shape. Vendor identity and
// item prices are frequently absent and filled with named fallbacks.
type backendOrderV1 struct {
	ID          string `json:"id"`
	VendorEmail string `json:"vendorEmail"`
	VendorName  string `json:"vendorName"`
	Items       []struct {
		ProductID   string  `json:"productId"`
		ProductName string  `json:"productName"`
		Quantity    int     `json:"quantity"`
		Price       float64 `json:"price"`
	} `json:"items"`
	Status       string `json:"status"`
	OrderDate    string `json:"orderDate"`
	DeliveryDate string `json:"deliveryDate"`
	Address      string `json:"address"`
}

func adaptOrderV1(bo backendOrderV1) Order {
	o := Order{
		ID:           bo.ID,
		VendorEmail:  bo.VendorEmail,
		VendorName:   bo.VendorName,
		Status:       Status(bo.Status),
		OrderDate:    bo.OrderDate,
		DeliveryDate: bo.DeliveryDate,
		Address:      bo.Address,
	}
	if o.VendorEmail == "" {
		o.VendorEmail = fallbackVendorEmail
	}
	if o.VendorName == "" {
		o.VendorName = fallbackVendorName
	}
	o.Items = make([]Item, 0, len(bo.Items))
	for _, bi := range bo.Items {
		item := Item{
			ProductID:   bi.ProductID,
			ProductName: bi.ProductName,
			Quantity:    bi.Quantity,
			Price:       bi.Price,
		}
		if item.ProductName == "" {
			item.ProductName = "Product " + bi.ProductID
		}
		if item.Price == 0 {
			item.Price = fallbackItemPrice
		}
		o.Items = append(o.Items, item)
	}
	return o
}

// ── Operations ────────────────────────────────────────────────────────────────

func (s *service) List(ctx context.Context, page, size int, filters Filters) (*List, error) {
	if err := validate.First(
		validate.IntRange("page", page, 1, int(^uint(0)>>1), "Page must be at least 1"),
		validate.IntRange("size", size, 1, maxPageSize, "Size must be between 1 and 100"),
	); err != nil {
		return nil, err
	}

	if s.cfg.MockEnabled {
		if err := s.simulateLatency(ctx); err != nil {
			return nil, err
		}
		filtered := Filter(MockOrders(), filters)
		return &List{
			Orders: paginate(filtered, page, size),
			Page:   page,
			Size:   size,
			Total:  len(filtered),
		}, nil
	}

	if s.cfg.APIVersion == api.VersionV1 {
		// v1 has no server-side filtering or pagination; fetch everything
		// and narrow locally.
		var backend []backendOrderV1
		if err := s.client.Get(ctx, "/orders", &backend); err != nil {
			return nil, err
		}
		orders := make([]Order, 0, len(backend))
		for _, bo := range backend {
			orders = append(orders, adaptOrderV1(bo))
		}
		filtered := Filter(orders, filters)
		return &List{
			Orders: paginate(filtered, page, size),
			Page:   page,
			Size:   size,
			Total:  len(filtered),
		}, nil
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(size))
	if filters.Vendor != "" {
		params.Set("vendor", filters.Vendor)
	}
	if filters.Status != "" && filters.Status != FilterAll {
		params.Set("status", filters.Status)
	}
	if filters.DateFrom != "" {
		params.Set("dateFrom", filters.DateFrom)
	}
	if filters.DateTo != "" {
		params.Set("dateTo", filters.DateTo)
	}

	var resp listResponseV2
	if err := s.client.Get(ctx, "/orders?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	return &List{
		Orders: resp.Data,
		Page:   resp.Pagination.Page,
		Size:   resp.Pagination.Size,
		Total:  resp.Pagination.Total,
	}, nil
}

func (s *service) Get(ctx context.Context, id string) (*Order, error) {
	if err := validate.NonEmpty("id", id, "Order ID required"); err != nil {
		return nil, err
	}

	if s.cfg.MockEnabled {
		if err := s.simulateLatency(ctx); err != nil {
			return nil, err
		}
		for _, o := range MockOrders() {
			if o.ID == id {
				return &o, nil
			}
		}
		return nil, ErrNotFound
	}

	if s.cfg.APIVersion == api.VersionV1 {
		var backend backendOrderV1
		if err := s.client.Get(ctx, "/orders/"+id, &backend); err != nil {
			return nil, err
		}
		o := adaptOrderV1(backend)
		return &o, nil
	}

	var o Order
	if err := s.client.Get(ctx, "/orders/"+id, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	req = sanitizeCreateRequest(req)
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	if s.cfg.MockEnabled {
		if err := s.simulateLatency(ctx); err != nil {
			return nil, err
		}
		o := &Order{
			ID:           generateOrderID("ORD"),
			VendorEmail:  req.VendorEmail,
			VendorName:   mockVendorName,
			Status:       StatusPending,
			OrderDate:    time.Now().UTC().Format("2006-01-02"),
			DeliveryDate: req.DeliveryDate,
			Address:      req.Address,
		}
		if o.VendorEmail == "" {
			o.VendorEmail = mockVendorEmail
		}
		for _, item := range req.Items {
			o.Items = append(o.Items, Item{
				ProductID:   item.ProductID,
				ProductName: "Product " + item.ProductID,
				Quantity:    item.Quantity,
			})
		}
		return o, nil
	}

	if s.cfg.APIVersion == api.VersionV1 {
		var backend backendOrderV1
		if err := s.client.Post(ctx, "/orders", req, &backend); err != nil {
			return nil, err
		}
		o := adaptOrderV1(backend)
		return &o, nil
	}

	var o Order
	if err := s.client.Post(ctx, "/orders", req, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *service) Update(ctx context.Context, id string, patch UpdateRequest) (*Order, error) {
	if err := validate.NonEmpty("id", id, "Order ID required"); err != nil {
		return nil, err
	}
	if patch.Status != nil && !ValidStatus(*patch.Status) {
		return nil, &validate.Error{Field: "status", Message: "Invalid order status"}
	}

	if s.cfg.MockEnabled {
		if err := s.simulateLatency(ctx); err != nil {
			return nil, err
		}
		for _, o := range MockOrders() {
			if o.ID == id {
				applyPatch(&o, patch)
				return &o, nil
			}
		}
		return nil, ErrNotFound
	}

	if s.cfg.APIVersion == api.VersionV1 {
		var backend backendOrderV1
		if err := s.client.Put(ctx, "/orders/"+id, patch, &backend); err != nil {
			return nil, err
		}
		o := adaptOrderV1(backend)
		return &o, nil
	}

	var o Order
	if err := s.client.Put(ctx, "/orders/"+id, patch, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *service) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	if !ValidStatus(status) {
		return nil, &validate.Error{Field: "status", Message: "Invalid order status"}
	}
	if s.cfg.MockEnabled || s.cfg.APIVersion == api.VersionV1 {
		return s.Update(ctx, id, UpdateRequest{Status: &status})
	}

	if err := validate.NonEmpty("id", id, "Order ID required"); err != nil {
		return nil, err
	}
	var o Order
	body := struct {
		Status Status `json:"status"`
	}{Status: status}
	if err := s.client.Put(ctx, "/orders/"+id+"/status", body, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *service) Cancel(ctx context.Context, id string) (*Order, error) {
	return s.UpdateStatus(ctx, id, StatusCancelled)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := validate.NonEmpty("id", id, "Order ID required"); err != nil {
		return err
	}

	if s.cfg.MockEnabled {
		return s.simulateLatency(ctx)
	}
	return s.client.Delete(ctx, "/orders/"+id)
}

func (s *service) CreateGuest(ctx context.Context, req GuestRequest) (*GuestResult, error) {
	req = sanitizeGuestRequest(req)
	if err := validateGuestRequest(req); err != nil {
		return nil, err
	}

	if s.cfg.MockEnabled {
		if err := s.simulateLatency(ctx); err != nil {
			return nil, err
		}
		return &GuestResult{Success: true, OrderID: generateOrderID("GUEST-ORD")}, nil
	}

	if s.cfg.APIVersion == api.VersionV1 {
		// v1 has no guest endpoint: flatten the contact details into the
		// address of a regular order and submit without auth.
		create := CreateRequest{
			Items:        req.Items,
			Address:      flattenGuestContact(req),
			DeliveryDate: time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02"),
			VendorEmail:  req.Email,
		}
		var backend backendOrderV1
		if err := s.client.Post(ctx, "/orders", create, &backend, api.WithoutAuth()); err != nil {
			return nil, err
		}
		return &GuestResult{Success: true, OrderID: backend.ID}, nil
	}

	var result GuestResult
	if err := s.client.Post(ctx, "/guest/orders", req, &result, api.WithoutAuth()); err != nil {
		return nil, err
	}
	return &result, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func sanitizeCreateRequest(req CreateRequest) CreateRequest {
	req.Address = sanitize.String(req.Address)
	req.DeliveryDate = sanitize.String(req.DeliveryDate)
	req.Notes = sanitize.String(req.Notes)
	req.VendorEmail = sanitize.Email(sanitize.String(req.VendorEmail))
	for i := range req.Items {
		req.Items[i].ProductID = sanitize.String(req.Items[i].ProductID)
	}
	return req
}

func validateCreateRequest(req CreateRequest) error {
	if err := validateItems(req.Items); err != nil {
		return err
	}
	return validate.First(
		validate.MinLen("address", req.Address, 10, "Address must be at least 10 characters"),
		validate.MaxLen("address", req.Address, 500, "Address too long"),
		validate.NonEmpty("deliveryDate", req.DeliveryDate, "Delivery date required"),
		validate.MaxLen("notes", req.Notes, 1000, "Notes too long"),
		validate.OptionalEmail("vendorEmail", req.VendorEmail),
	)
}

func sanitizeGuestRequest(req GuestRequest) GuestRequest {
	req.Name = sanitize.String(req.Name)
	req.Email = sanitize.Email(sanitize.String(req.Email))
	req.Phone = sanitize.String(req.Phone)
	req.Address = sanitize.String(req.Address)
	for i := range req.Items {
		req.Items[i].ProductID = sanitize.String(req.Items[i].ProductID)
	}
	return req
}

func validateGuestRequest(req GuestRequest) error {
	if err := validate.First(
		validate.MinLen("name", req.Name, 2, "Name must be at least 2 characters"),
		validate.MaxLen("name", req.Name, 100, "Name too long"),
		validate.Email("email", req.Email),
		validate.Phone("phone", req.Phone),
		validate.MinLen("address", req.Address, 10, "Address must be at least 10 characters"),
		validate.MaxLen("address", req.Address, 500, "Address too long"),
	); err != nil {
		return err
	}
	return validateItems(req.Items)
}

func validateItems(items []ItemRequest) error {
	if len(items) == 0 {
		return &validate.Error{Field: "items", Message: "At least one item required"}
	}
	for _, item := range items {
		if err := validate.First(
			validate.NonEmpty("productId", item.ProductID, "Product ID required"),
			validate.IntRange("quantity", item.Quantity, 1, maxQuantity, "Quantity must be between 1 and 1000"),
		); err != nil {
			return err
		}
	}
	return nil
}

func applyPatch(o *Order, patch UpdateRequest) {
	if patch.VendorName != nil {
		o.VendorName = *patch.VendorName
	}
	if patch.Status != nil {
		o.Status = *patch.Status
	}
	if patch.DeliveryDate != nil {
		o.DeliveryDate = *patch.DeliveryDate
	}
	if patch.Address != nil {
		o.Address = *patch.Address
	}
}

func flattenGuestContact(req GuestRequest) string {
	return fmt.Sprintf("%s | Contact: %s <%s> %s", req.Address, req.Name, req.Email, req.Phone)
}

// generateOrderID creates a human-readable order id: PREFIX-YYYYMMDD-XXXX.
func generateOrderID(prefix string) string {
	date := time.Now().UTC().Format("20060102")
	suffix := strings.ToUpper(uuid.NewString()[:4])
	return fmt.Sprintf("%s-%s-%s", prefix, date, suffix)
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
