package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"salchipapon-pos/cart"
	"salchipapon-pos/model"
	"salchipapon-pos/obs"
	"salchipapon-pos/receipt"
	"salchipapon-pos/store"
)

var (
	// ErrEmptyCart returned when committing a cart with no lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInsufficientPayment returned when a cash tender is below the sale total.
	ErrInsufficientPayment = errors.New("insufficient payment")

	// ErrUnknownPaymentMethod returned for methods outside the accepted set.
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)

type Service struct {
	store    store.Store
	printer  receipt.Printer
	sessions *cart.Sessions

	// per-session mutexes so two requests for the same cashier session do
	// not race on one cart. Keys are session IDs.
	locks sync.Map // map[string]*sync.Mutex

	now func() time.Time
}

func NewService(st store.Store, p receipt.Printer) *Service {
	return &Service{
		store:    st,
		printer:  p,
		sessions: cart.NewSessions(),
		now:      time.Now,
	}
}

// helper: acquire per-session lock (process-local). Returns unlock func.
func (s *Service) lockSession(sessionID string) func() {
	if v, ok := s.locks.Load(sessionID); ok {
		m := v.(*sync.Mutex)
		m.Lock()
		return func() { m.Unlock() }
	}
	m := &sync.Mutex{}
	actual, _ := s.locks.LoadOrStore(sessionID, m)
	mtx := actual.(*sync.Mutex)
	mtx.Lock()
	return func() { mtx.Unlock() }
}

// cartFor returns the session's cart, loading the catalog snapshot on first
// use. Callers must hold the session lock.
func (s *Service) cartFor(sessionID string) (*cart.Cart, error) {
	c := s.sessions.Get(sessionID)
	if !c.HasCatalog() {
		products, err := s.store.ListProducts()
		if err != nil {
			return nil, err
		}
		c.LoadCatalog(products)
	}
	return c, nil
}

func (s *Service) AddToCart(sessionID string, productID int64, qty int) error {
	if sessionID == "" {
		return errors.New("session_id required")
	}
	unlock := s.lockSession(sessionID)
	defer unlock()

	c, err := s.cartFor(sessionID)
	if err != nil {
		return err
	}
	return c.Add(productID, qty)
}

func (s *Service) SetCartQuantity(sessionID string, productID int64, qty int) error {
	if sessionID == "" {
		return errors.New("session_id required")
	}
	unlock := s.lockSession(sessionID)
	defer unlock()

	c, err := s.cartFor(sessionID)
	if err != nil {
		return err
	}
	return c.SetQuantity(productID, qty)
}

func (s *Service) RemoveFromCart(sessionID string, productID int64) error {
	if sessionID == "" {
		return errors.New("session_id required")
	}
	unlock := s.lockSession(sessionID)
	defer unlock()

	c := s.sessions.Peek(sessionID)
	if c == nil {
		return nil
	}
	c.Remove(productID)
	return nil
}

func (s *Service) GetCart(sessionID string) ([]models.CartLine, decimal.Decimal, error) {
	if sessionID == "" {
		return nil, decimal.Zero, errors.New("session_id required")
	}
	unlock := s.lockSession(sessionID)
	defer unlock()

	c := s.sessions.Peek(sessionID)
	if c == nil {
		return []models.CartLine{}, decimal.Zero, nil
	}
	return c.Lines(), c.Total(), nil
}

// Commit turns the session's cart into a persisted pending sale and reserves
// stock with one decrement per line. The sale insert and the decrements are
// independent store calls: when a decrement fails the sale stays pending and
// stock is left as-is, and the returned error names the persisted sale.
func (s *Service) Commit(sessionID, customer string) (models.Sale, error) {
	if sessionID == "" {
		return models.Sale{}, errors.New("session_id required")
	}
	unlock := s.lockSession(sessionID)
	defer unlock()

	c := s.sessions.Peek(sessionID)
	if c == nil || c.Len() == 0 {
		return models.Sale{}, ErrEmptyCart
	}

	customer = strings.TrimSpace(customer)
	if customer == "" {
		customer = models.DefaultCustomer
	}

	lines := c.Lines()
	sale := models.Sale{
		Customer:  customer,
		Lines:     toSaleLines(lines),
		Total:     c.Total(),
		CreatedAt: s.now().UTC(),
		Status:    models.StatusPending,
	}

	id, err := s.store.CreateSale(sale)
	if err != nil {
		// Nothing was written; the cart is intact and the caller may retry.
		return models.Sale{}, err
	}
	sale.ID = id

	for _, ln := range lines {
		if err := s.store.DecrementStock(ln.ProductID, ln.Quantity); err != nil {
			obs.Logger.Error("stock_decrement_failed",
				"sale_id", id, "product_id", ln.ProductID, "quantity", ln.Quantity, "error", err)
			return sale, fmt.Errorf("sale %s created but stock for product %d not decremented: %w", id, ln.ProductID, err)
		}
	}

	c.ApplyReservation(lines)
	c.Clear()

	if s.printer != nil {
		if err := s.printer.Print(sale); err != nil {
			obs.Logger.Warn("receipt_print_failed", "sale_id", id, "error", err)
		}
	}
	return sale, nil
}

// Settle completes a pending sale. For cash the tendered amount must cover
// the total and the change is returned; other methods take no tender.
func (s *Service) Settle(saleID, method string, tendered decimal.Decimal) (models.Sale, decimal.Decimal, error) {
	if !models.ValidPaymentMethod(method) {
		return models.Sale{}, decimal.Zero, ErrUnknownPaymentMethod
	}
	sale, err := s.store.GetSale(saleID)
	if err != nil {
		return models.Sale{}, decimal.Zero, err
	}
	if sale.Status == models.StatusCompleted {
		return models.Sale{}, decimal.Zero, store.ErrAlreadyCompleted
	}

	change := decimal.Zero
	if method == models.PayCash {
		if tendered.LessThan(sale.Total) {
			return models.Sale{}, decimal.Zero, ErrInsufficientPayment
		}
		change = tendered.Sub(sale.Total)
	}

	if err := s.store.UpdateSaleStatus(saleID, models.StatusCompleted, method); err != nil {
		return models.Sale{}, decimal.Zero, err
	}
	sale.Status = models.StatusCompleted
	sale.PaymentMethod = method
	return sale, change, nil
}

func (s *Service) CreateProduct(name string, price decimal.Decimal, stock int) (int64, error) {
	if name == "" {
		return 0, errors.New("name required")
	}
	if price.IsNegative() {
		return 0, errors.New("price must be >= 0")
	}
	if stock < 0 {
		return 0, errors.New("stock must be >= 0")
	}
	return s.store.CreateProduct(name, price, stock)
}

func (s *Service) ListProducts() ([]models.Product, error) {
	return s.store.ListProducts()
}

func (s *Service) ListSales(status string) ([]models.Sale, error) {
	if status != "" && status != models.StatusPending && status != models.StatusCompleted {
		return nil, fmt.Errorf("unknown status %q", status)
	}
	return s.store.ListSales(status)
}

func (s *Service) AddExpense(description string, amount decimal.Decimal) (int64, error) {
	if description == "" {
		return 0, errors.New("description required")
	}
	if amount.IsNegative() {
		return 0, errors.New("amount must be >= 0")
	}
	return s.store.CreateExpense(description, amount)
}

func (s *Service) ListExpenses() ([]models.Expense, error) {
	return s.store.ListExpenses()
}

// Summary sums every sale total and expense amount; profit is the difference.
func (s *Service) Summary() (models.Summary, error) {
	sales, err := s.store.ListSales("")
	if err != nil {
		return models.Summary{}, err
	}
	expenses, err := s.store.ListExpenses()
	if err != nil {
		return models.Summary{}, err
	}
	sum := models.Summary{Income: decimal.Zero, Expenses: decimal.Zero}
	for _, sale := range sales {
		sum.Income = sum.Income.Add(sale.Total)
	}
	for _, e := range expenses {
		sum.Expenses = sum.Expenses.Add(e.Amount)
	}
	sum.Profit = sum.Income.Sub(sum.Expenses)
	return sum, nil
}

func toSaleLines(lines []models.CartLine) []models.SaleLine {
	out := make([]models.SaleLine, 0, len(lines))
	for _, ln := range lines {
		out = append(out, models.SaleLine{
			ProductID: ln.ProductID,
			Name:      ln.Name,
			UnitPrice: ln.UnitPrice,
			Quantity:  ln.Quantity,
			Subtotal:  ln.Subtotal,
		})
	}
	return out
}
