package store

// POST /products – Create a new product in the backend.
// GET /products/list - For listing all products
// POST /cart/add|set|remove, GET /cart/list - cart editing (in-memory, no store calls)
// POST /checkout/order - Commit a cart: one sale insert + N stock decrements
// POST /sales/settle - Complete a pending sale with a payment method
// GET /sales/list - List sales, optional status filter
// POST /expenses, GET /expenses/list, GET /summary - expense ledger and totals

import (
	"github.com/shopspring/decimal"

	"salchipapon-pos/model"
)

// Store is the persistence contract for the catalog, the order ledger and
// the expense ledger. Each method is a single, independent store call; the
// committer issues them one by one with no cross-call transaction.
type Store interface {
	CreateProduct(name string, price decimal.Decimal, stock int) (int64, error)
	ListProducts() ([]models.Product, error)
	GetProduct(id int64) (models.Product, error)

	// DecrementStock is conditional: it only applies when the product has at
	// least amount units left, otherwise ErrInsufficientStock.
	DecrementStock(productID int64, amount int) error

	CreateSale(sale models.Sale) (string, error)
	GetSale(id string) (models.Sale, error)
	ListSales(status string) ([]models.Sale, error)

	// UpdateSaleStatus only applies to pending sales; a completed sale yields
	// ErrAlreadyCompleted, a missing one ErrNotFound.
	UpdateSaleStatus(id, status, paymentMethod string) error

	CreateExpense(description string, amount decimal.Decimal) (int64, error)
	ListExpenses() ([]models.Expense, error)

	Close() error
}
