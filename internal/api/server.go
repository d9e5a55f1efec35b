package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/model"
)

// Order is a checkout the demo backend accepted.
type Order struct {
	ID    int64
	Total int64
	CheckoutRequest
}

// Server is the demo store backend. It serves a fixed catalog and keeps
// accepted orders in memory.
//
// Thread-safety: Server is safe for concurrent use.
type Server struct {
	catalog  Catalog
	basename string

	mu     sync.Mutex
	orders []Order
}

// NewServer serves c under basename ("" means DefaultBasename).
func NewServer(c Catalog, basename string) *Server {
	if basename == "" {
		basename = DefaultBasename
	}
	return &Server{catalog: c, basename: "/" + strings.Trim(basename, "/")}
}

// Handler returns the router for every store route.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the store routes on r under the basename.
func (s *Server) RegisterRoutes(r *mux.Router) {
	sub := r
	if s.basename != "/" {
		sub = r.PathPrefix(s.basename).Subrouter()
	}
	sub.HandleFunc("/api/products", s.ListProducts).Methods(http.MethodGet)
	sub.HandleFunc("/api/products/{id:[0-9]+}", s.GetProduct).Methods(http.MethodGet)
	sub.HandleFunc("/api/checkout", s.Checkout).Methods(http.MethodPost)
}

// Orders returns the accepted orders, oldest first.
func (s *Server) Orders() []Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Order(nil), s.orders...)
}

// ListProducts handles GET /api/products
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Summaries())
}

// GetProduct handles GET /api/products/{id}
func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid product id")
		return
	}
	p, ok := s.catalog.Lookup(id)
	if !ok {
		writeErr(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Checkout handles POST /api/checkout
// body: { "form": {...}, "cart": { "<name>": {name, price, count} } }
func (s *Server) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.Cart) == 0 {
		writeErr(w, http.StatusBadRequest, "cart is empty")
		return
	}

	lines := make([]model.CartLineItem, 0, len(req.Cart))
	for _, item := range req.Cart {
		lines = append(lines, item)
	}
	total := cart.Total(cart.FromItems(lines))

	s.mu.Lock()
	id := int64(len(s.orders) + 1)
	s.orders = append(s.orders, Order{ID: id, Total: total, CheckoutRequest: req})
	s.mu.Unlock()

	slog.Info("order accepted", "order_id", id, "lines", len(req.Cart), "total", total)
	writeJSON(w, http.StatusOK, CheckoutResponse{ID: id})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
