package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"salchipapon-pos/model"
)

// MemoryStore is an in-process Store used by tests and for running without a
// DATABASE_URL. It mimics the document-store behavior of the Postgres
// implementation, including the conditional decrement and settle guard.
type MemoryStore struct {
	mu            sync.RWMutex
	products      map[int64]models.Product
	nextProductID int64
	sales         map[string]models.Sale
	expenses      []models.Expense
	nextExpenseID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[int64]models.Product),
		sales:    make(map[string]models.Sale),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CreateProduct(name string, price decimal.Decimal, stock int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextProductID++
	id := s.nextProductID
	s.products[id] = models.Product{ID: id, Name: name, UnitPrice: price, Stock: stock}
	return id, nil
}

func (s *MemoryStore) ListProducts() ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetProduct(id int64) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) DecrementStock(productID int64, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return ErrNotFound
	}
	if p.Stock < amount {
		return ErrInsufficientStock
	}
	p.Stock -= amount
	s.products[productID] = p
	return nil
}

func (s *MemoryStore) CreateSale(sale models.Sale) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale.ID = uuid.NewString()
	sale.Lines = append([]models.SaleLine(nil), sale.Lines...)
	s.sales[sale.ID] = sale
	return sale.ID, nil
}

func (s *MemoryStore) GetSale(id string) (models.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sale, ok := s.sales[id]
	if !ok {
		return models.Sale{}, ErrNotFound
	}
	return sale, nil
}

func (s *MemoryStore) ListSales(status string) ([]models.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Sale{}
	for _, sale := range s.sales {
		if status != "" && sale.Status != status {
			continue
		}
		out = append(out, sale)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateSaleStatus(id, status, paymentMethod string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.sales[id]
	if !ok {
		return ErrNotFound
	}
	if sale.Status != models.StatusPending {
		return ErrAlreadyCompleted
	}
	sale.Status = status
	sale.PaymentMethod = paymentMethod
	s.sales[id] = sale
	return nil
}

func (s *MemoryStore) CreateExpense(description string, amount decimal.Decimal) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextExpenseID++
	e := models.Expense{ID: s.nextExpenseID, Description: description, Amount: amount, CreatedAt: time.Now().UTC()}
	s.expenses = append(s.expenses, e)
	return e.ID, nil
}

func (s *MemoryStore) ListExpenses() ([]models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Expense, len(s.expenses))
	copy(out, s.expenses)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
