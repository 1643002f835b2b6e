// Package cart implements the in-memory cart a cashier builds up before
// committing a sale. Feasibility checks run against the catalog snapshot the
// cart was last loaded with, not against live stock.
package cart

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"salchipapon-pos/model"
	"salchipapon-pos/store"
)

// ErrInvalidQuantity returned for quantities below 1.
var ErrInvalidQuantity = errors.New("quantity must be >= 1")

type Cart struct {
	catalog map[int64]models.Product
	lines   []models.CartLine
}

func New() *Cart {
	return &Cart{}
}

// LoadCatalog replaces the cart's stock snapshot. Existing lines keep their
// snapshotted name and price.
func (c *Cart) LoadCatalog(products []models.Product) {
	c.catalog = make(map[int64]models.Product, len(products))
	for _, p := range products {
		c.catalog[p.ID] = p
	}
}

// HasCatalog reports whether a snapshot has been loaded yet.
func (c *Cart) HasCatalog() bool { return c.catalog != nil }

func (c *Cart) find(productID int64) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add appends a line, or merges with an existing one by summing quantities.
// The merged subtotal is a fresh multiplication of the snapshotted price by
// the new quantity.
func (c *Cart) Add(productID int64, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	p, ok := c.catalog[productID]
	if !ok {
		return store.ErrNotFound
	}
	i := c.find(productID)
	newQty := qty
	if i >= 0 {
		newQty += c.lines[i].Quantity
	}
	if newQty > p.Stock {
		return store.ErrInsufficientStock
	}
	if i >= 0 {
		c.lines[i].Quantity = newQty
		c.lines[i].Subtotal = c.lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(newQty)))
		return nil
	}
	c.lines = append(c.lines, models.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		Quantity:  qty,
		Subtotal:  p.UnitPrice.Mul(decimal.NewFromInt(int64(qty))),
	})
	return nil
}

// SetQuantity overwrites the quantity of an existing line.
func (c *Cart) SetQuantity(productID int64, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	i := c.find(productID)
	if i < 0 {
		return store.ErrNotFound
	}
	p, ok := c.catalog[productID]
	if !ok {
		return store.ErrNotFound
	}
	if qty > p.Stock {
		return store.ErrInsufficientStock
	}
	c.lines[i].Quantity = qty
	c.lines[i].Subtotal = c.lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
	return nil
}

// Remove drops the line for productID; removing an absent line is a no-op.
func (c *Cart) Remove(productID int64) {
	i := c.find(productID)
	if i < 0 {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// Lines returns a copy of the current lines in insertion order.
func (c *Cart) Lines() []models.CartLine {
	out := make([]models.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, ln := range c.lines {
		total = total.Add(ln.Subtotal)
	}
	return total
}

func (c *Cart) Clear() { c.lines = nil }

// ApplyReservation lowers the cached stock for the given committed lines so
// the snapshot reflects the sale without re-reading the whole catalog.
func (c *Cart) ApplyReservation(lines []models.CartLine) {
	for _, ln := range lines {
		p, ok := c.catalog[ln.ProductID]
		if !ok {
			continue
		}
		p.Stock -= ln.Quantity
		if p.Stock < 0 {
			p.Stock = 0
		}
		c.catalog[ln.ProductID] = p
	}
}

// Sessions holds one cart per cashier session. Carts are created on first
// use; the same LoadOrStore pattern keeps concurrent first requests from
// racing on creation.
type Sessions struct {
	carts sync.Map // map[string]*Cart
}

func NewSessions() *Sessions { return &Sessions{} }

func (s *Sessions) Get(sessionID string) *Cart {
	if v, ok := s.carts.Load(sessionID); ok {
		return v.(*Cart)
	}
	actual, _ := s.carts.LoadOrStore(sessionID, New())
	return actual.(*Cart)
}

// Peek returns the session's cart without creating one.
func (s *Sessions) Peek(sessionID string) *Cart {
	if v, ok := s.carts.Load(sessionID); ok {
		return v.(*Cart)
	}
	return nil
}
