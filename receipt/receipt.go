// Package receipt renders a sale into a printable sales slip.
package receipt

import (
	"fmt"
	"io"
	"strings"

	"salchipapon-pos/model"
)

// Printer consumes a sale snapshot and produces a receipt. It never mutates
// the sale.
type Printer interface {
	Print(sale models.Sale) error
}

// TextPrinter writes a plain-text slip to Out.
type TextPrinter struct {
	Out io.Writer
}

const divider = "------------------------------"

func (p *TextPrinter) Print(sale models.Sale) error {
	var b strings.Builder
	b.WriteString("SALCHIPAPON\n")
	b.WriteString("SALES RECEIPT\n")
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "Customer: %s\n", sale.Customer)
	fmt.Fprintf(&b, "Date: %s\n", sale.CreatedAt.Format("2006-01-02 15:04"))
	b.WriteString(divider + "\n")
	for _, ln := range sale.Lines {
		fmt.Fprintf(&b, "%s\n  %d x %s = %s\n", ln.Name, ln.Quantity, ln.UnitPrice.StringFixed(2), ln.Subtotal.StringFixed(2))
	}
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "TOTAL: %s\n", sale.Total.StringFixed(2))
	method := sale.PaymentMethod
	if method == "" {
		method = "---"
	}
	fmt.Fprintf(&b, "Payment: %s\n", method)
	if sale.Status == models.StatusCompleted {
		b.WriteString("PAID\n")
	} else {
		b.WriteString("PENDING\n")
	}
	b.WriteString(divider + "\n")
	b.WriteString("Thank you for your purchase\n")
	_, err := io.WriteString(p.Out, b.String())
	return err
}
