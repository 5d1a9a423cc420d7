package order

// Status is the lifecycle state of an order. "placed" and "cancelled" come
// from an older backend version; the client enforces enumeration membership
// only, not transition order — any authenticated admin update may set any
// enumerated value.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusPlaced    Status = "placed"
	StatusCancelled Status = "cancelled"
)

// ValidStatus reports whether s is one of the enumerated values.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusPlaced, StatusCancelled:
		return true
	}
	return false
}

// Item is a single line item within an order.
type Item struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price,omitempty"`
}

// Order is the stable domain model every backend shape is adapted into.
// Items is never empty and every quantity is at least 1. Dates are
// YYYY-MM-DD strings, matching the wire contract.
type Order struct {
	ID           string `json:"id"`
	VendorEmail  string `json:"vendorEmail"`
	VendorName   string `json:"vendorName"`
	Items        []Item `json:"items"`
	Status       Status `json:"status"`
	OrderDate    string `json:"orderDate"`
	DeliveryDate string `json:"deliveryDate"`
	Address      string `json:"address"`
}

// Filters narrows an order listing. Status "all" (or empty) matches every
// status; date bounds are inclusive on orderDate.
type Filters struct {
	Vendor   string
	Status   string
	DateFrom string
	DateTo   string
}

// List is one page of orders.
type List struct {
	Orders []Order `json:"data"`
	Page   int     `json:"page"`
	Size   int     `json:"size"`
	Total  int     `json:"total"`
}

// ItemRequest describes one requested line item.
type ItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CreateRequest is the payload for placing an order. VendorEmail is set
// when an admin places an order on behalf of a vendor.
type CreateRequest struct {
	Items        []ItemRequest `json:"items"`
	Address      string        `json:"address"`
	DeliveryDate string        `json:"deliveryDate"`
	Notes        string        `json:"notes,omitempty"`
	VendorEmail  string        `json:"vendorEmail,omitempty"`
}

// UpdateRequest is a partial order update; nil fields are left untouched.
type UpdateRequest struct {
	VendorName   *string `json:"vendorName,omitempty"`
	Status       *Status `json:"status,omitempty"`
	DeliveryDate *string `json:"deliveryDate,omitempty"`
	Address      *string `json:"address,omitempty"`
}

// GuestRequest is an order placed without a session, carrying contact
// details inline.
type GuestRequest struct {
	Name    string        `json:"name"`
	Email   string        `json:"email"`
	Phone   string        `json:"phone"`
	Address string        `json:"address"`
	Items   []ItemRequest `json:"items"`
}

// GuestResult is the outcome of a guest order submission.
type GuestResult struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
}
