package service

import (
	"github.com/shopspring/decimal"

	"salchipapon-pos/model"
)

type ServiceInterface interface {
	AddToCart(sessionID string, productID int64, qty int) error
	SetCartQuantity(sessionID string, productID int64, qty int) error
	RemoveFromCart(sessionID string, productID int64) error
	GetCart(sessionID string) ([]models.CartLine, decimal.Decimal, error)

	Commit(sessionID, customer string) (models.Sale, error)
	Settle(saleID, method string, tendered decimal.Decimal) (models.Sale, decimal.Decimal, error)

	CreateProduct(name string, price decimal.Decimal, stock int) (int64, error)
	ListProducts() ([]models.Product, error)
	ListSales(status string) ([]models.Sale, error)

	AddExpense(description string, amount decimal.Decimal) (int64, error)
	ListExpenses() ([]models.Expense, error)
	Summary() (models.Summary, error)
}
