package printer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const defaultWidth = 32

// Renderer formats payloads as fixed-width ticket text. Output is
// deterministic for a given payload, which the golden tests rely on.
type Renderer struct {
	width int
	num   *message.Printer
}

func NewRenderer(width int) *Renderer {
	if width <= 0 {
		width = defaultWidth
	}
	return &Renderer{
		width: width,
		num:   message.NewPrinter(language.English),
	}
}

func (r *Renderer) money(v float64) string {
	return r.num.Sprintf("%.2f", v)
}

func (r *Renderer) rule() string {
	return strings.Repeat("-", r.width)
}

func (r *Renderer) center(s string) string {
	n := utf8.RuneCountInString(s)
	if n >= r.width {
		return s
	}
	return strings.Repeat(" ", (r.width-n)/2) + s
}

// lr lays out a left and a right fragment on one line. When they do
// not fit, the left fragment gets its own line and the right fragment
// is right-aligned below it.
func (r *Renderer) lr(left, right string) string {
	pad := r.width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if pad < 1 {
		rpad := r.width - utf8.RuneCountInString(right)
		if rpad < 0 {
			rpad = 0
		}
		return left + "\n" + strings.Repeat(" ", rpad) + right
	}
	return left + strings.Repeat(" ", pad) + right
}

// RenderKOT renders a kitchen ticket: header, then quantity and item
// name per line, item notes indented beneath.
func (r *Renderer) RenderKOT(k KOTPayload) string {
	var b strings.Builder

	b.WriteString(r.center(fmt.Sprintf("KOT #%d", k.KOTNumber)) + "\n")
	b.WriteString(r.lr(k.OrderNumber, k.PlacedAt.Format("15:04")) + "\n")
	if k.TableLabel != "" {
		b.WriteString(r.lr(k.OrderType, k.TableLabel) + "\n")
	} else if k.OrderType != "" {
		b.WriteString(k.OrderType + "\n")
	}
	b.WriteString(r.rule() + "\n")

	for _, it := range k.Items {
		b.WriteString(fmt.Sprintf("%2d x %s\n", it.Quantity, it.Name))
		if it.Note != "" {
			b.WriteString("     + " + it.Note + "\n")
		}
	}

	b.WriteString(r.rule() + "\n")
	return b.String()
}

// RenderBill renders the customer bill: restaurant header, order
// identity, item lines with amounts, totals block and footer.
func (r *Renderer) RenderBill(bill BillPayload) string {
	var b strings.Builder

	if bill.RestaurantName != "" {
		b.WriteString(r.center(bill.RestaurantName) + "\n")
	}
	if bill.Address != "" {
		b.WriteString(r.center(bill.Address) + "\n")
	}
	if bill.Phone != "" {
		b.WriteString(r.center(bill.Phone) + "\n")
	}
	if bill.GSTIN != "" {
		b.WriteString(r.center("GSTIN: "+bill.GSTIN) + "\n")
	}
	b.WriteString(r.rule() + "\n")

	b.WriteString(r.lr(bill.OrderNumber, bill.PlacedAt.Format("02 Jan 2006 15:04")) + "\n")
	if bill.CustomerLabel != "" {
		b.WriteString("Customer: " + bill.CustomerLabel + "\n")
	}
	if bill.TableLabel != "" {
		b.WriteString(r.lr(bill.OrderType, bill.TableLabel) + "\n")
	} else if bill.OrderType != "" {
		b.WriteString(bill.OrderType + "\n")
	}
	b.WriteString(r.rule() + "\n")

	for _, it := range bill.Items {
		b.WriteString(it.Name + "\n")
		qty := fmt.Sprintf("  %d x %s", it.Quantity, r.money(it.UnitPrice))
		b.WriteString(r.lr(qty, r.money(it.Total)) + "\n")
	}
	b.WriteString(r.rule() + "\n")

	b.WriteString(r.lr("Subtotal", r.money(bill.Subtotal)) + "\n")
	if bill.Tax != 0 {
		b.WriteString(r.lr("Tax", r.money(bill.Tax)) + "\n")
	}
	if bill.Discount != 0 {
		b.WriteString(r.lr("Discount", "-"+r.money(bill.Discount)) + "\n")
	}
	b.WriteString(r.lr("TOTAL", bill.CurrencySymbol+r.money(bill.Total)) + "\n")
	if bill.PaymentMethod != "" {
		b.WriteString(r.lr("Paid by", bill.PaymentMethod) + "\n")
	}
	b.WriteString(r.rule() + "\n")

	if bill.Footer != "" {
		b.WriteString(r.center(bill.Footer) + "\n")
	}
	return b.String()
}
