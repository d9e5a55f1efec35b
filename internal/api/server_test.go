package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_Routes(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	h := NewServer(c, "").Handler()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		code   int
	}{
		{"list", http.MethodGet, "/hw/store/api/products", "", http.StatusOK},
		{"detail", http.MethodGet, "/hw/store/api/products/2", "", http.StatusOK},
		{"missing detail", http.MethodGet, "/hw/store/api/products/42", "", http.StatusNotFound},
		{"non-numeric id", http.MethodGet, "/hw/store/api/products/abc", "", http.StatusNotFound},
		{"wrong method", http.MethodPost, "/hw/store/api/products", "", http.StatusMethodNotAllowed},
		{"bad checkout json", http.MethodPost, "/hw/store/api/checkout", "{", http.StatusBadRequest},
		{"checkout", http.MethodPost, "/hw/store/api/checkout",
			`{"form":{"name":"a","phone":"0123456789","address":"b"},"cart":{"x":{"name":"x","price":1,"count":1}}}`,
			http.StatusOK},
		{"outside basename", http.MethodGet, "/api/products", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestServer_ListBody(t *testing.T) {
	c, err := ParseCatalogYAML([]byte("products:\n  - {id: 2, name: B, price: 5}\n  - {id: 1, name: A, price: 3}\n"))
	require.NoError(t, err)
	h := NewServer(c, "/").Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `[{"id":2,"name":"B","price":5},{"id":1,"name":"A","price":3}]`, rec.Body.String())
}
