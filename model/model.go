package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale status values. A sale is created pending and completed exactly once.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Payment methods accepted at settlement.
const (
	PayCash         = "cash"
	PayMobileWallet = "mobile-wallet"
	PayBankTransfer = "bank-transfer"
)

// DefaultCustomer is used when no customer name is given at checkout.
const DefaultCustomer = "walk-in customer"

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PayCash, PayMobileWallet, PayBankTransfer:
		return true
	}
	return false
}

type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Stock     int             `json:"stock"`
}

// CartLine is one entry of an in-progress sale. Name and UnitPrice are
// snapshots taken when the line was added; they do not track catalog edits.
type CartLine struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SaleLine is the immutable copy of a cart line stored with a sale.
type SaleLine struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Sale is a persisted transaction. Total is fixed at creation time and is
// never recomputed from the lines afterwards.
type Sale struct {
	ID            string          `json:"id"`
	Customer      string          `json:"customer"`
	Lines         []SaleLine      `json:"lines"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method,omitempty"`
}

type Expense struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Summary aggregates sale and expense totals for the dashboard numbers.
type Summary struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Profit   decimal.Decimal `json:"profit"`
}
