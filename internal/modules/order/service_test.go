package order_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/mkasonde/pvc-portal/internal/api"
	"github.com/mkasonde/pvc-portal/internal/mocks"
	"github.com/mkasonde/pvc-portal/internal/modules/order"
	"github.com/mkasonde/pvc-portal/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockService(t *testing.T) order.Service {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	// No transport expectations: mock mode must never touch the network.
	return order.NewService(mocks.NewMockTransport(ctrl), order.Config{MockEnabled: true})
}

func liveService(t *testing.T, version string) (order.Service, *mocks.MockTransport) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	transport := mocks.NewMockTransport(ctrl)
	return order.NewService(transport, order.Config{APIVersion: version}), transport
}

// jsonInto plays the wire: it decodes a canned response body into the out
// parameter the same way the real client would.
func jsonInto(raw string, out any) error {
	return json.Unmarshal([]byte(raw), out)
}

func validCreate() order.CreateRequest {
	return order.CreateRequest{
		Items:        []order.ItemRequest{{ProductID: "1", Quantity: 3}},
		Address:      "123 Construction Ave, City, State 12345",
		DeliveryDate: "2026-10-01",
	}
}

func validGuest() order.GuestRequest {
	return order.GuestRequest{
		Name:    "John Smith",
		Email:   "john@example.com",
		Phone:   "+1 555 123 4567",
		Address: "789 Guest Lane, City, State 12345",
		Items:   []order.ItemRequest{{ProductID: "2", Quantity: 5}},
	}
}

// ── Listing ───────────────────────────────────────────────────────────────────

func TestList_PaginationValidation(t *testing.T) {
	s := mockService(t)
	ctx := context.Background()

	_, err := s.List(ctx, 0, 10, order.Filters{})
	assert.EqualError(t, err, "Page must be at least 1")

	_, err = s.List(ctx, 1, 0, order.Filters{})
	assert.EqualError(t, err, "Size must be between 1 and 100")

	_, err = s.List(ctx, 1, 101, order.Filters{})
	assert.EqualError(t, err, "Size must be between 1 and 100")

	_, err = s.List(ctx, 1, 100, order.Filters{})
	assert.NoError(t, err)
}

func TestList_MockPagination(t *testing.T) {
	s := mockService(t)

	list, err := s.List(context.Background(), 1, 2, order.Filters{})
	require.NoError(t, err)
	assert.Len(t, list.Orders, 2)
	assert.Equal(t, 4, list.Total)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 2, list.Size)
}

func TestList_OutOfRangePageIsEmpty(t *testing.T) {
	s := mockService(t)

	list, err := s.List(context.Background(), 10, 50, order.Filters{})
	require.NoError(t, err)
	assert.Empty(t, list.Orders)
	assert.Equal(t, 4, list.Total)
}

func TestList_VendorFilterMatchesNameAndEmail(t *testing.T) {
	s := mockService(t)
	ctx := context.Background()

	byName, err := s.List(ctx, 1, 10, order.Filters{Vendor: "abc"})
	require.NoError(t, err)
	assert.Len(t, byName.Orders, 2)

	byEmail, err := s.List(ctx, 1, 10, order.Filters{Vendor: "vendor2@"})
	require.NoError(t, err)
	require.Len(t, byEmail.Orders, 1)
	assert.Equal(t, "ORD-002", byEmail.Orders[0].ID)
}

func TestList_StatusFilter(t *testing.T) {
	s := mockService(t)
	ctx := context.Background()

	pending, err := s.List(ctx, 1, 10, order.Filters{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, pending.Orders, 1)
	assert.Equal(t, order.StatusPending, pending.Orders[0].Status)

	all, err := s.List(ctx, 1, 10, order.Filters{Status: order.FilterAll})
	require.NoError(t, err)
	assert.Equal(t, 4, all.Total)
}

func TestList_DateBoundsInclusive(t *testing.T) {
	s := mockService(t)

	list, err := s.List(context.Background(), 1, 10, order.Filters{
		DateFrom: "2024-01-13",
		DateTo:   "2024-01-14",
	})
	require.NoError(t, err)
	assert.Len(t, list.Orders, 2)
	for _, o := range list.Orders {
		assert.GreaterOrEqual(t, o.OrderDate, "2024-01-13")
		assert.LessOrEqual(t, o.OrderDate, "2024-01-14")
	}
}

func TestList_V2SendsQueryParameters(t *testing.T) {
	s, transport := liveService(t, api.VersionV2)

	transport.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, path string, out any, opts ...api.CallOption) error {
			assert.Contains(t, path, "/orders?")
			assert.Contains(t, path, "page=2")
			assert.Contains(t, path, "size=25")
			assert.Contains(t, path, "status=shipped")
			assert.Contains(t, path, "vendor=ABC")
			return jsonInto(`{"data":[],"pagination":{"page":2,"size":25,"total":60}}`, out)
		})

	list, err := s.List(context.Background(), 2, 25, order.Filters{Vendor: "ABC", Status: "shipped"})
	require.NoError(t, err)
	assert.Equal(t, 60, list.Total)
}

func TestList_V1FiltersLocally(t *testing.T) {
	s, transport := liveService(t, api.VersionV1)

	transport.EXPECT().
		Get(gomock.Any(), "/orders", gomock.Any()).
		DoAndReturn(func(ctx context.Context, path string, out any, opts ...api.CallOption) error {
			// The v1 contract returns a bare array with sparse fields.
			raw := `[
				{"id":"A1","status":"pending","orderDate":"2024-02-01","items":[{"productId":"7","quantity":2}]},
				{"id":"A2","vendorName":"Delta Corp","status":"shipped","orderDate":"2024-02-02","items":[]}
			]`
			return jsonInto(raw, out)
		})

	list, err := s.List(context.Background(), 1, 10, order.Filters{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)

	got := list.Orders[0]
	assert.Equal(t, "A1", got.ID)
	assert.Equal(t, "unknown@vendor.example", got.VendorEmail)
	assert.Equal(t, "Unknown Vendor", got.VendorName)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Product 7", got.Items[0].ProductName)
}

// ── Create ────────────────────────────────────────────────────────────────────

func TestCreate_MockOrder(t *testing.T) {
	s := mockService(t)

	o, err := s.Create(context.Background(), validCreate())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(o.ID, "ORD-"), "got id %q", o.ID)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, "current@user.com", o.VendorEmail)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 3, o.Items[0].Quantity)
}

func TestCreate_Validation(t *testing.T) {
	s := mockService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*order.CreateRequest)
		message string
	}{
		{"no items", func(r *order.CreateRequest) { r.Items = nil }, "At least one item required"},
		{"zero quantity", func(r *order.CreateRequest) { r.Items[0].Quantity = 0 }, "Quantity must be between 1 and 1000"},
		{"excessive quantity", func(r *order.CreateRequest) { r.Items[0].Quantity = 1001 }, "Quantity must be between 1 and 1000"},
		{"missing product", func(r *order.CreateRequest) { r.Items[0].ProductID = "" }, "Product ID required"},
		{"short address", func(r *order.CreateRequest) { r.Address = "short" }, "Address must be at least 10 characters"},
		{"no delivery date", func(r *order.CreateRequest) { r.DeliveryDate = "" }, "Delivery date required"},
		{"bad vendor email", func(r *order.CreateRequest) { r.VendorEmail = "not-an-email" }, "Invalid email format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreate()
			tt.mutate(&req)
			_, err := s.Create(ctx, req)
			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestCreate_SanitizesAddress(t *testing.T) {
	s, transport := liveService(t, api.VersionV2)

	transport.EXPECT().
		Post(gomock.Any(), "/orders", gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, path string, body, out any, opts ...api.CallOption) error {
			req := body.(order.CreateRequest)
			assert.Equal(t, "&lt;b&gt;123 Main Street&lt;/b&gt;", req.Address)
			return nil
		})

	req := validCreate()
	req.Address = "<b>123 Main Street</b>"
	_, err := s.Create(context.Background(), req)
	require.NoError(t, err)
}

// ── Status updates ────────────────────────────────────────────────────────────

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	s := mockService(t)

	_, err := s.UpdateStatus(context.Background(), "ORD-001", order.Status("returned"))
	require.Error(t, err)
	assert.Equal(t, "Invalid order status", err.Error())

	var vErr *validate.Error
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "status", vErr.Field)
}

func TestUpdateStatus_MockAppliesChange(t *testing.T) {
	s := mockService(t)

	o, err := s.UpdateStatus(context.Background(), "ORD-001", order.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, o.Status)
}

func TestUpdateStatus_V2UsesStatusEndpoint(t *testing.T) {
	s, transport := liveService(t, api.VersionV2)

	transport.EXPECT().
		Put(gomock.Any(), "/orders/ORD-001/status", gomock.Any(), gomock.Any()).
		Return(nil)

	_, err := s.UpdateStatus(context.Background(), "ORD-001", order.StatusConfirmed)
	require.NoError(t, err)
}

func TestUpdateStatus_V1FallsBackToFullUpdate(t *testing.T) {
	s, transport := liveService(t, api.VersionV1)

	transport.EXPECT().
		Put(gomock.Any(), "/orders/ORD-001", gomock.Any(), gomock.Any()).
		Return(nil)

	_, err := s.UpdateStatus(context.Background(), "ORD-001", order.StatusConfirmed)
	require.NoError(t, err)
}

func TestCancel_SetsCancelledStatus(t *testing.T) {
	s := mockService(t)

	o, err := s.Cancel(context.Background(), "ORD-002")
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, o.Status)
}

// ── Get / Delete ──────────────────────────────────────────────────────────────

func TestGet_Mock(t *testing.T) {
	s := mockService(t)

	o, err := s.Get(context.Background(), "ORD-001")
	require.NoError(t, err)
	assert.Equal(t, "ABC Construction", o.VendorName)

	_, err = s.Get(context.Background(), "ORD-999")
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestDelete_RequiresID(t *testing.T) {
	s := mockService(t)

	err := s.Delete(context.Background(), "")
	assert.EqualError(t, err, "Order ID required")
}

// ── Guest orders ──────────────────────────────────────────────────────────────

func TestCreateGuest_Mock(t *testing.T) {
	s := mockService(t)

	result, err := s.CreateGuest(context.Background(), validGuest())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, strings.HasPrefix(result.OrderID, "GUEST-ORD-"), "got id %q", result.OrderID)
}

func TestCreateGuest_Validation(t *testing.T) {
	s := mockService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*order.GuestRequest)
		message string
	}{
		{"short name", func(r *order.GuestRequest) { r.Name = "J" }, "Name must be at least 2 characters"},
		{"bad email", func(r *order.GuestRequest) { r.Email = "nope" }, "Invalid email format"},
		{"short phone", func(r *order.GuestRequest) { r.Phone = "555" }, "Phone number must be at least 10 characters"},
		{"short address", func(r *order.GuestRequest) { r.Address = "here" }, "Address must be at least 10 characters"},
		{"no items", func(r *order.GuestRequest) { r.Items = nil }, "At least one item required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validGuest()
			tt.mutate(&req)
			_, err := s.CreateGuest(ctx, req)
			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestCreateGuest_V2PostsWithoutAuth(t *testing.T) {
	s, transport := liveService(t, api.VersionV2)

	transport.EXPECT().
		Post(gomock.Any(), "/guest/orders", gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, path string, body, out any, opts ...api.CallOption) error {
			require.Len(t, opts, 1, "guest orders must opt out of auth")
			result := out.(*order.GuestResult)
			result.Success = true
			result.OrderID = "GUEST-ORD-20260901-AB12"
			return nil
		})

	result, err := s.CreateGuest(context.Background(), validGuest())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "GUEST-ORD-20260901-AB12", result.OrderID)
}

func TestCreateGuest_V1FlattensContactIntoAddress(t *testing.T) {
	s, transport := liveService(t, api.VersionV1)

	transport.EXPECT().
		Post(gomock.Any(), "/orders", gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, path string, body, out any, opts ...api.CallOption) error {
			req := body.(order.CreateRequest)
			assert.Contains(t, req.Address, "Contact: John Smith")
			assert.Contains(t, req.Address, "john@example.com")
			assert.Equal(t, "john@example.com", req.VendorEmail)
			assert.NotEmpty(t, req.DeliveryDate)
			return jsonInto(`{"id":"V1-77","status":"placed","items":[]}`, out)
		})

	result, err := s.CreateGuest(context.Background(), validGuest())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "V1-77", result.OrderID)
}
