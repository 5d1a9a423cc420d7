package stub_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mkasonde/pvc-portal/internal/api"
	"github.com/mkasonde/pvc-portal/internal/modules/auth"
	"github.com/mkasonde/pvc-portal/internal/modules/order"
	"github.com/mkasonde/pvc-portal/internal/modules/product"
	"github.com/mkasonde/pvc-portal/internal/ratelimit"
	"github.com/mkasonde/pvc-portal/internal/stub"
	"github.com/mkasonde/pvc-portal/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// harness wires the real client stack against an in-process stub backend,
// the same way portalctl wires it against a deployed one.
type harness struct {
	auth     auth.Service
	orders   order.Service
	products product.Service
	tokens   token.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := httptest.NewServer(stub.New([]byte("test-secret")).Router())
	t.Cleanup(srv.Close)

	tokens := token.NewMemoryStore()
	client := api.New(srv.URL+"/api", tokens, 5*time.Second)
	cfg := auth.Config{APIVersion: api.VersionV2}

	return &harness{
		auth:     auth.NewService(client, tokens, ratelimit.NewLimiter(), cfg, nil),
		orders:   order.NewService(client, order.Config{APIVersion: api.VersionV2}),
		products: product.NewService(client, product.Config{APIVersion: api.VersionV2}, nil),
		tokens:   tokens,
	}
}

func (h *harness) loginVendor(t *testing.T) *auth.User {
	t.Helper()
	user, err := h.auth.Login(context.Background(), stub.DemoVendorEmail, stub.DemoVendorPassword)
	require.NoError(t, err)
	return user
}

func (h *harness) loginAdmin(t *testing.T) *auth.User {
	t.Helper()
	user, err := h.auth.Login(context.Background(), auth.DemoAdminEmail, auth.DemoAdminPassword)
	require.NoError(t, err)
	return user
}

// ── Auth flows ────────────────────────────────────────────────────────────────

func TestLogin_SeededAccounts(t *testing.T) {
	h := newHarness(t)

	vendor := h.loginVendor(t)
	assert.Equal(t, auth.RoleVendor, vendor.Role)
	assert.Equal(t, stub.DemoVendorEmail, vendor.Email)
	assert.False(t, token.IsExpired(h.tokens.AccessToken(), time.Now()))

	admin := h.loginAdmin(t)
	assert.Equal(t, auth.RoleAdmin, admin.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newHarness(t)

	_, err := h.auth.Login(context.Background(), stub.DemoVendorEmail, "WrongPassword1")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrAuthentication)
	assert.Equal(t, "invalid credentials", err.Error(), "server message preferred over generic")
}

func TestSignup_NewAccountGetsSession(t *testing.T) {
	h := newHarness(t)

	user, err := h.auth.Signup(context.Background(), "New Builder", "builder@example.com", "Builder123")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleVendor, user.Role)
	assert.Equal(t, "New Builder", user.Name)
	assert.NotEmpty(t, h.tokens.AccessToken())
}

func TestSignup_DuplicateEmail(t *testing.T) {
	h := newHarness(t)

	_, err := h.auth.Signup(context.Background(), "Imposter", stub.DemoVendorEmail, "Password1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email already in use")
}

func TestCurrentUser_AfterLogin(t *testing.T) {
	h := newHarness(t)
	h.loginVendor(t)

	user, err := h.auth.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stub.DemoVendorEmail, user.Email)
	assert.Equal(t, auth.RoleVendor, user.Role)
}

func TestRefresh_RotatesAccessToken(t *testing.T) {
	h := newHarness(t)
	h.loginVendor(t)
	old := h.tokens.AccessToken()

	// Token payloads embed iat in seconds; wait so the new one differs.
	time.Sleep(1100 * time.Millisecond)
	require.NoError(t, h.auth.Refresh(context.Background()))
	assert.NotEqual(t, old, h.tokens.AccessToken())

	_, err := h.auth.CurrentUser(context.Background())
	assert.NoError(t, err, "refreshed token must be accepted")
}

func TestLogout_EndsSession(t *testing.T) {
	h := newHarness(t)
	h.loginVendor(t)

	require.NoError(t, h.auth.Logout(context.Background()))
	_, err := h.auth.CurrentUser(context.Background())
	assert.ErrorIs(t, err, auth.ErrNoSession)
}

// ── Catalog ───────────────────────────────────────────────────────────────────

func TestProducts_PublicListing(t *testing.T) {
	h := newHarness(t)

	list, err := h.products.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, product.SourceLive, list.Source)
	assert.Len(t, list.Products, 6)

	p, err := h.products.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "PVC Pipe 4 inch - Schedule 40", p.Name)
}

func TestProducts_MutationsRequireAdmin(t *testing.T) {
	h := newHarness(t)
	h.loginVendor(t)

	_, err := h.products.Create(context.Background(), product.CreateRequest{Name: "PVC Reducer"})
	assert.ErrorIs(t, err, api.ErrAuthorization)
}

func TestProducts_AdminCRUD(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin(t)
	ctx := context.Background()

	created, err := h.products.Create(ctx, product.CreateRequest{Name: "PVC Reducer 4-2 inch"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	require.NoError(t, h.products.Update(ctx, created.ID, product.UpdateRequest{Name: "PVC Reducer 6-4 inch"}))

	fetched, err := h.products.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "PVC Reducer 6-4 inch", fetched.Name)

	require.NoError(t, h.products.Delete(ctx, created.ID))
	_, err = h.products.Get(ctx, created.ID)
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestProducts_AdminUpload(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin(t)
	ctx := context.Background()

	file := strings.NewReader("PVC Cap 2 inch\nPVC Cap 4 inch\n")
	require.NoError(t, h.products.Upload(ctx, "caps.txt", file))

	list, err := h.products.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list.Products, 8)
}

// ── Orders ────────────────────────────────────────────────────────────────────

func TestOrders_VendorSeesOnlyOwn(t *testing.T) {
	h := newHarness(t)
	h.loginVendor(t)

	list, err := h.orders.List(context.Background(), 1, 10, order.Filters{})
	require.NoError(t, err)
	require.NotEmpty(t, list.Orders)
	for _, o := range list.Orders {
		assert.Equal(t, stub.DemoVendorEmail, o.VendorEmail)
	}
}

func TestOrders_AdminSeesAll(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin(t)

	list, err := h.orders.List(context.Background(), 1, 10, order.Filters{})
	require.NoError(t, err)
	assert.Equal(t, 4, list.Total)
}

func TestOrders_ServerSideFiltering(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin(t)

	list, err := h.orders.List(context.Background(), 1, 10, order.Filters{Status: "shipped"})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, "ORD-003", list.Orders[0].ID)
}

func TestOrders_RequireAuthentication(t *testing.T) {
	h := newHarness(t)

	_, err := h.orders.List(context.Background(), 1, 10, order.Filters{})
	assert.ErrorIs(t, err, api.ErrAuthentication)
}

func TestOrders_CreateAndFetch(t *testing.T) {
	h := newHarness(t)
	h.loginVendor(t)
	ctx := context.Background()

	created, err := h.orders.Create(ctx, order.CreateRequest{
		Items:        []order.ItemRequest{{ProductID: "1", Quantity: 40}},
		Address:      "55 Site Office Road, City, State 12345",
		DeliveryDate: "2026-10-15",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.ID, "ORD-"))
	assert.Equal(t, order.StatusPending, created.Status)
	assert.Equal(t, stub.DemoVendorEmail, created.VendorEmail)
	require.Len(t, created.Items, 1)
	assert.Equal(t, "PVC Pipe 4 inch - Schedule 40", created.Items[0].ProductName, "item enriched from the catalog")

	fetched, err := h.orders.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
}

func TestOrders_VendorCannotReadOthers(t *testing.T) {
	h := newHarness(t)
	h.loginVendor(t)

	// ORD-002 belongs to vendor2.
	_, err := h.orders.Get(context.Background(), "ORD-002")
	assert.ErrorIs(t, err, api.ErrAuthorization)
}

func TestOrders_StatusUpdateIsAdminOnly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.loginVendor(t)
	_, err := h.orders.UpdateStatus(ctx, "ORD-001", order.StatusShipped)
	assert.ErrorIs(t, err, api.ErrAuthorization)

	h.loginAdmin(t)
	updated, err := h.orders.UpdateStatus(ctx, "ORD-001", order.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, updated.Status)
}

func TestOrders_InvalidStatusNeverReachesServer(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin(t)

	bad := order.Status("teleported")
	_, err := h.orders.Update(context.Background(), "ORD-001", order.UpdateRequest{Status: &bad})
	require.Error(t, err)
	assert.Equal(t, "Invalid order status", err.Error())
}

func TestOrders_AdminDelete(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin(t)
	ctx := context.Background()

	require.NoError(t, h.orders.Delete(ctx, "ORD-004"))
	_, err := h.orders.Get(ctx, "ORD-004")
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestOrders_Cancel(t *testing.T) {
	h := newHarness(t)
	h.loginAdmin(t)

	cancelled, err := h.orders.Cancel(context.Background(), "ORD-002")
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)
}

func TestGuestOrder_NoSessionNeeded(t *testing.T) {
	h := newHarness(t)

	result, err := h.orders.CreateGuest(context.Background(), order.GuestRequest{
		Name:    "Jane Walkin",
		Email:   "jane@example.com",
		Phone:   "+1 555 987 6543",
		Address: "12 Walk-in Way, City, State 12345",
		Items:   []order.ItemRequest{{ProductID: "4", Quantity: 6}},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, strings.HasPrefix(result.OrderID, "GUEST-ORD-"))
}

func TestGuestOrder_VisibleToAdmin(t *testing.T) {
	h := newHarness(t)

	result, err := h.orders.CreateGuest(context.Background(), order.GuestRequest{
		Name:    "Jane Walkin",
		Email:   "jane@example.com",
		Phone:   "+1 555 987 6543",
		Address: "12 Walk-in Way, City, State 12345",
		Items:   []order.ItemRequest{{ProductID: "4", Quantity: 6}},
	})
	require.NoError(t, err)

	h.loginAdmin(t)
	fetched, err := h.orders.Get(context.Background(), result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Walkin (Guest)", fetched.VendorName)
	assert.Equal(t, order.StatusPending, fetched.Status)
}
