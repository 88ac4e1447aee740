// Package printer is the outbound boundary towards receipt hardware.
// The lifecycle manager hands it finalized payloads; encoding those
// into thermal printer bytes happens behind the Printer interface and
// is not part of this repository.
package printer

import (
	"time"

	"github.com/rasoilabs/rasoipos/utils"
)

// LineItem is one printable order line.
type LineItem struct {
	Name      string
	Quantity  int
	UnitPrice float64
	Total     float64
	Note      string
}

// KOTPayload is a kitchen ticket: the items of exactly one KOT batch.
type KOTPayload struct {
	OrderNumber string
	KOTNumber   int
	OrderType   string
	TableLabel  string
	PlacedAt    time.Time
	Items       []LineItem
}

// BillPayload is a customer bill for the full order.
type BillPayload struct {
	RestaurantName string
	Address        string
	Phone          string
	GSTIN          string

	OrderNumber   string
	OrderType     string
	CustomerLabel string
	TableLabel    string
	PlacedAt      time.Time

	Items []LineItem

	Subtotal float64
	Tax      float64
	Discount float64
	Total    float64

	PaymentMethod  string
	CurrencySymbol string
	Footer         string
}

// Printer receives finalized payloads. Implementations must not block
// the caller for long; a failed print is the caller's to log, never to
// roll back.
type Printer interface {
	PrintKOT(k KOTPayload) error
	PrintBill(b BillPayload) error
}

// Nop discards every payload. Used when no printer is attached and in
// tests.
type Nop struct{}

func (Nop) PrintKOT(KOTPayload) error { return nil }

func (Nop) PrintBill(BillPayload) error { return nil }

// Console renders payloads as text and writes them to the info log.
// It stands in for real hardware on development installs.
type Console struct {
	Renderer *Renderer
}

func NewConsole(width int) *Console {
	return &Console{Renderer: NewRenderer(width)}
}

func (c *Console) PrintKOT(k KOTPayload) error {
	utils.InfoLogger.Printf("printer: KOT\n%s", c.Renderer.RenderKOT(k))
	return nil
}

func (c *Console) PrintBill(b BillPayload) error {
	utils.InfoLogger.Printf("printer: bill\n%s", c.Renderer.RenderBill(b))
	return nil
}
