package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/unicorn-emporium/internal/academy"
	"github.com/terra-clan/unicorn-emporium/internal/api"
	"github.com/terra-clan/unicorn-emporium/internal/catalog"
	"github.com/terra-clan/unicorn-emporium/internal/checkout"
	"github.com/terra-clan/unicorn-emporium/internal/config"
	"github.com/terra-clan/unicorn-emporium/internal/models"
	"github.com/terra-clan/unicorn-emporium/internal/storage"
)

var (
	_ checkout.OrderCreator  = (*Client)(nil)
	_ catalog.ProductSource = (*Client)(nil)
)

const adminKey = "sk_admin_0123456789"

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()

	repo := storage.NewMemoryRepository(
		&models.ApiClient{Name: "admin", ApiKey: adminKey, IsActive: true, Permissions: []string{"*"}},
	)
	_, err := catalog.Seed(context.Background(), repo, catalog.SampleProducts())
	require.NoError(t, err)

	srv := api.NewServer(config.ServerConfig{Port: 8080}, repo, academy.NewDefaultLoader(), nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func TestCatalog(t *testing.T) {
	ts := newBackend(t)
	c := NewClient(ts.URL+"/", "")
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	products, err := c.GetProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 9)

	rare, err := c.GetProductsByCategory(ctx, models.CategoryRare)
	require.NoError(t, err)
	assert.Len(t, rare, 2)

	p, err := c.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Sparkle Supreme", p.Name)

	_, err = c.GetProduct(ctx, 404)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "not_found", apiErr.Code)
}

func TestCreateProduct_Auth(t *testing.T) {
	ts := newBackend(t)
	ctx := context.Background()
	product := models.Product{Name: "Glitter Gale", Price: 8999, Category: models.CategoryRainbow}

	_, err := NewClient(ts.URL, "").CreateProduct(ctx, product)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	created, err := NewClient(ts.URL, adminKey).CreateProduct(ctx, product)
	require.NoError(t, err)
	assert.Equal(t, int64(10), created.ID)
}

func TestOrders(t *testing.T) {
	ts := newBackend(t)
	ctx := context.Background()
	c := NewClient(ts.URL, adminKey)

	resp, err := c.CreateOrder(ctx, models.CreateOrderRequest{
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		DeliveryAddress: "1 Rainbow Road",
		DeliveryMethod:  models.DeliveryRainbowPortal,
		Items:           []models.OrderItem{{ProductID: 3, ProductName: "Celestial Star", Quantity: 2, Price: 15999}},
		TotalAmount:     31998,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)

	order, err := c.GetOrder(ctx, resp.ID)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)

	orders, err := c.ListOrders(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	orders, err = c.GetOrdersByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	_, err = c.CreateOrder(ctx, models.CreateOrderRequest{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "validation_error", apiErr.Code)
}

func TestAcademy(t *testing.T) {
	ts := newBackend(t)
	ctx := context.Background()
	c := NewClient(ts.URL, "")

	modules, err := c.ListModules(ctx)
	require.NoError(t, err)
	assert.Len(t, modules, 10)

	m, err := c.GetModule(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Data Privacy & Confidentiality", m.Title)

	questions, err := c.GetQuiz(ctx)
	require.NoError(t, err)
	assert.Len(t, questions, 20)

	result, err := c.ScoreQuiz(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	assert.False(t, result.Passed)
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"products":[]}}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "sk_test_key",
		WithRequestIDs(func() string { return "req-1" }),
		WithTimeout(2*time.Second),
	)
	_, err := c.GetProducts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "req-1", got.Get("X-Request-ID"))
	assert.Equal(t, "Bearer sk_test_key", got.Get("Authorization"))

	_, err = NewClient(ts.URL, "").GetProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, got.Get("X-Request-ID"), 36, "default ids are uuids")
}

func TestUnreachableBackend(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := NewClient(url, "", WithHTTPClient(&http.Client{Timeout: time.Second}))
	_, err := c.CreateOrder(context.Background(), models.CreateOrderRequest{})
	assert.Error(t, err)
}
