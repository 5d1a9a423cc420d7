package stub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mkasonde/pvc-portal/internal/modules/order"
)

// listOrders serves the paginated listing. Vendors see only their own
// orders; admins see the whole book.
func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	q := r.URL.Query()

	page := intParam(q.Get("page"), 1)
	size := intParam(q.Get("size"), 10)
	if page < 1 || size < 1 || size > 100 {
		errorJSON(w, http.StatusBadRequest, "invalid pagination parameters")
		return
	}
	filters := order.Filters{
		Vendor:   q.Get("vendor"),
		Status:   q.Get("status"),
		DateFrom: q.Get("dateFrom"),
		DateTo:   q.Get("dateTo"),
	}

	s.mu.Lock()
	visible := make([]order.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if claims.Role == "ADMIN" || o.VendorEmail == claims.Email {
			visible = append(visible, o)
		}
	}
	s.mu.Unlock()

	filtered := order.Filter(visible, filters)
	start := (page - 1) * size
	end := start + size
	if start > len(filtered) {
		start, end = len(filtered), len(filtered)
	} else if end > len(filtered) {
		end = len(filtered)
	}

	respond(w, http.StatusOK, map[string]any{
		"data": filtered[start:end],
		"pagination": map[string]int{
			"page":  page,
			"size":  size,
			"total": len(filtered),
		},
	})
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	var req order.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Items) == 0 || req.Address == "" {
		errorJSON(w, http.StatusBadRequest, "items and address are required")
		return
	}

	vendorEmail := claims.Email
	vendorName := claims.Name
	if claims.Role == "ADMIN" && req.VendorEmail != "" {
		vendorEmail = req.VendorEmail
		vendorName = vendorNameFor(req.VendorEmail)
	}

	o := order.Order{
		ID:           newOrderID("ORD"),
		VendorEmail:  vendorEmail,
		VendorName:   vendorName,
		Items:        s.resolveItems(req.Items),
		Status:       order.StatusPending,
		OrderDate:    time.Now().UTC().Format("2006-01-02"),
		DeliveryDate: req.DeliveryDate,
		Address:      req.Address,
	}

	s.mu.Lock()
	s.orders = append(s.orders, o)
	s.mu.Unlock()
	respond(w, http.StatusCreated, o)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID == id {
			if claims.Role != "ADMIN" && o.VendorEmail != claims.Email {
				errorJSON(w, http.StatusForbidden, "access denied")
				return
			}
			respond(w, http.StatusOK, o)
			return
		}
	}
	errorJSON(w, http.StatusNotFound, "order not found")
}

func (s *Server) updateOrder(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id := chi.URLParam(r, "id")
	var patch order.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if patch.Status != nil && !order.ValidStatus(*patch.Status) {
		errorJSON(w, http.StatusBadRequest, "invalid order status")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			if claims.Role != "ADMIN" && s.orders[i].VendorEmail != claims.Email {
				errorJSON(w, http.StatusForbidden, "access denied")
				return
			}
			applyOrderPatch(&s.orders[i], patch)
			respond(w, http.StatusOK, s.orders[i])
			return
		}
	}
	errorJSON(w, http.StatusNotFound, "order not found")
}

func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Status order.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !order.ValidStatus(req.Status) {
		errorJSON(w, http.StatusBadRequest, "invalid order status")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = req.Status
			respond(w, http.StatusOK, s.orders[i])
			return
		}
	}
	errorJSON(w, http.StatusNotFound, "order not found")
}

func (s *Server) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders = append(s.orders[:i], s.orders[i+1:]...)
			respond(w, http.StatusNoContent, nil)
			return
		}
	}
	errorJSON(w, http.StatusNotFound, "order not found")
}

// createGuestOrder accepts an unauthenticated order with inline contact
// details.
func (s *Server) createGuestOrder(w http.ResponseWriter, r *http.Request) {
	var req order.GuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Address == "" || len(req.Items) == 0 {
		errorJSON(w, http.StatusBadRequest, "email, address and items are required")
		return
	}

	o := order.Order{
		ID:           newOrderID("GUEST-ORD"),
		VendorEmail:  req.Email,
		VendorName:   req.Name + " (Guest)",
		Items:        s.resolveItems(req.Items),
		Status:       order.StatusPending,
		OrderDate:    time.Now().UTC().Format("2006-01-02"),
		DeliveryDate: time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02"),
		Address:      req.Address,
	}

	s.mu.Lock()
	s.orders = append(s.orders, o)
	s.mu.Unlock()
	respond(w, http.StatusCreated, map[string]any{"success": true, "orderId": o.ID})
}

// resolveItems fills in product names and prices from the catalog where the
// id matches; unknown ids keep a generic name.
func (s *Server) resolveItems(items []order.ItemRequest) []order.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]order.Item, 0, len(items))
	for _, it := range items {
		item := order.Item{
			ProductID:   it.ProductID,
			ProductName: "Product " + it.ProductID,
			Quantity:    it.Quantity,
		}
		for _, p := range s.products {
			if p.ID == it.ProductID {
				item.ProductName = p.Name
				item.Price = p.Price
				break
			}
		}
		out = append(out, item)
	}
	return out
}

func vendorNameFor(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

func applyOrderPatch(o *order.Order, patch order.UpdateRequest) {
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

func newOrderID(prefix string) string {
	date := time.Now().UTC().Format("20060102")
	return fmt.Sprintf("%s-%s-%s", prefix, date, strings.ToUpper(uuid.NewString()[:4]))
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
