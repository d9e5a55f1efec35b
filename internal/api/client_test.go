package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/model"
)

func newTestBackend(t *testing.T, basename string) (*Server, *Client) {
	t.Helper()
	c, err := DefaultCatalog()
	require.NoError(t, err)
	srv := NewServer(c, basename)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, NewClient(ts.URL, basename, WithHTTPClient(ts.Client()))
}

func TestClient_GetProductsPreservesOrder(t *testing.T) {
	_, client := newTestBackend(t, "")

	products, err := client.GetProducts(context.Background())
	require.NoError(t, err)

	want, _ := DefaultCatalog()
	assert.Equal(t, want.Summaries(), products)
}

func TestClient_GetProductByID(t *testing.T) {
	_, client := newTestBackend(t, "")

	p, err := client.GetProductByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Sleek Lamp", p.Name)
	assert.Equal(t, "silver", p.Color)
}

func TestClient_NotFoundIsStatusError(t *testing.T) {
	_, client := newTestBackend(t, "")

	_, err := client.GetProductByID(context.Background(), 404)
	var se *StatusError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Contains(t, err.Error(), "404 Not Found")
}

func TestClient_Checkout(t *testing.T) {
	srv, client := newTestBackend(t, "/shop")
	ctx := context.Background()
	form := model.CheckoutFormData{Name: "Ann", Phone: "0123456789", Address: "1 Main St"}
	items := []model.CartLineItem{{Name: "Practical Soap", Price: 315, Count: 2}}

	id, err := client.Checkout(ctx, form, items)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	id, err = client.Checkout(ctx, form, items)
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	orders := srv.Orders()
	require.Len(t, orders, 2)
	assert.Equal(t, form, orders[0].Form)
	assert.Equal(t, items[0], orders[0].Cart["Practical Soap"])
	assert.Equal(t, int64(630), orders[0].Total)
}

func TestClient_CheckoutEmptyCartRejected(t *testing.T) {
	_, client := newTestBackend(t, "")

	_, err := client.Checkout(context.Background(), model.CheckoutFormData{Name: "Ann"}, nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
}

func TestClient_WrongBasenameFails(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	ts := httptest.NewServer(NewServer(c, "").Handler())
	defer ts.Close()

	client := NewClient(ts.URL, "/elsewhere")
	_, err = client.GetProducts(context.Background())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestClient_ContextCancelled(t *testing.T) {
	_, client := newTestBackend(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetProducts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClient_BaseJoining(t *testing.T) {
	assert.Equal(t, "http://h/hw/store", NewClient("http://h/", "").base)
	assert.Equal(t, "http://h/shop", NewClient("http://h", "shop/").base)
	assert.Equal(t, "http://h", NewClient("http://h", "/").base)
}
