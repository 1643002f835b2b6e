package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"salchipapon-pos/service"
	"salchipapon-pos/store"
)

// Handler is the HTTP layer that talks to service.Service
type Handler struct {
	svc service.ServiceInterface
}

// NewHandler returns a Handler instance
func NewHandler(s service.ServiceInterface) *Handler {
	return &Handler{svc: s}
}

// RegisterRoutes registers all routes on the provided router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	// Products
	r.HandleFunc("/products", h.CreateProduct).Methods("POST")
	r.HandleFunc("/products/list", h.ListProducts).Methods("GET")

	// Cart
	r.HandleFunc("/cart/add", h.AddToCart).Methods("POST")
	r.HandleFunc("/cart/set", h.SetQuantity).Methods("POST")
	r.HandleFunc("/cart/remove", h.RemoveFromCart).Methods("POST")
	r.HandleFunc("/cart/list", h.ListCart).Methods("GET")

	// Sales
	r.HandleFunc("/checkout/order", h.Checkout).Methods("POST")
	r.HandleFunc("/sales/settle", h.Settle).Methods("POST")
	r.HandleFunc("/sales/list", h.ListSales).Methods("GET")

	// Expenses and reporting
	r.HandleFunc("/expenses", h.AddExpense).Methods("POST")
	r.HandleFunc("/expenses/list", h.ListExpenses).Methods("GET")
	r.HandleFunc("/summary", h.Summary).Methods("GET")

	r.HandleFunc("/healthz", h.Health).Methods("GET")
}

// --- request / response shapes ---
type createProductReq struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

type cartReq struct {
	SessionID string `json:"session_id"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity,omitempty"` // optional for remove
}

type checkoutReq struct {
	SessionID string `json:"session_id"`
	Customer  string `json:"customer,omitempty"`
}

type settleReq struct {
	SaleID         string          `json:"sale_id"`
	Method         string          `json:"method"`
	AmountTendered decimal.Decimal `json:"amount_tendered,omitempty"`
}

type expenseReq struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// --- helpers ---
func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrAlreadyCompleted):
		return http.StatusConflict
	case errors.Is(err, store.ErrInsufficientStock),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInsufficientPayment),
		errors.Is(err, service.ErrUnknownPaymentMethod):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// --- Handler ---

// CreateProduct handles POST /products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" {
		writeErr(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Price.IsNegative() {
		writeErr(w, http.StatusBadRequest, "price must be >= 0")
		return
	}
	if req.Stock < 0 {
		writeErr(w, http.StatusBadRequest, "stock must be >= 0")
		return
	}

	id, err := h.svc.CreateProduct(req.Name, req.Price, req.Stock)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// ListProducts handles GET /products/list
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.svc.ListProducts()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

// AddToCart handles POST /cart/add
// body: { "session_id": "...", "product_id": 1, "quantity": 2 }
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req cartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.SessionID == "" {
		writeErr(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if req.Quantity <= 0 {
		writeErr(w, http.StatusBadRequest, "quantity must be > 0")
		return
	}
	if err := h.svc.AddToCart(req.SessionID, req.ProductID, req.Quantity); err != nil {
		writeErr(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

// SetQuantity handles POST /cart/set
func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req cartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.SessionID == "" {
		writeErr(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if req.Quantity <= 0 {
		writeErr(w, http.StatusBadRequest, "quantity must be > 0")
		return
	}
	if err := h.svc.SetCartQuantity(req.SessionID, req.ProductID, req.Quantity); err != nil {
		writeErr(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// RemoveFromCart handles POST /cart/remove
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	var req cartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.SessionID == "" {
		writeErr(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if err := h.svc.RemoveFromCart(req.SessionID, req.ProductID); err != nil {
		writeErr(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// ListCart handles GET /cart/list?session_id=...
func (h *Handler) ListCart(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeErr(w, http.StatusBadRequest, "session_id required")
		return
	}
	lines, total, err := h.svc.GetCart(sessionID)
	if err != nil {
		writeErr(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"session_id": sessionID, "lines": lines, "total": total})
}

// Checkout handles POST /checkout/order
// body: { "session_id": "...", "customer": "..." }
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.SessionID == "" {
		writeErr(w, http.StatusBadRequest, "session_id required")
		return
	}
	sale, err := h.svc.Commit(req.SessionID, req.Customer)
	if err != nil {
		if sale.ID != "" {
			// The sale was persisted but a stock decrement failed; report
			// both so staff can reconcile.
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"error":   err.Error(),
				"sale_id": sale.ID,
			})
			return
		}
		writeErr(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}

// Settle handles POST /sales/settle
// body: { "sale_id": "...", "method": "cash", "amount_tendered": 40 }
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	var req settleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.SaleID == "" {
		writeErr(w, http.StatusBadRequest, "sale_id required")
		return
	}
	sale, change, err := h.svc.Settle(req.SaleID, req.Method, req.AmountTendered)
	if err != nil {
		writeErr(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sale": sale, "change": change})
}

// ListSales handles GET /sales/list?status=pending|completed
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	sales, err := h.svc.ListSales(status)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

// AddExpense handles POST /expenses
func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Description == "" {
		writeErr(w, http.StatusBadRequest, "description is required")
		return
	}
	if req.Amount.IsNegative() {
		writeErr(w, http.StatusBadRequest, "amount must be >= 0")
		return
	}
	id, err := h.svc.AddExpense(req.Description, req.Amount)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// ListExpenses handles GET /expenses/list
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	es, err := h.svc.ListExpenses()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, es)
}

// Summary handles GET /summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.Summary()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
