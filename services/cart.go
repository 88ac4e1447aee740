package services

import (
	"fmt"
	"math"

	"github.com/rasoilabs/rasoipos/models"
)

// CartLine is the client's view of one cart row: which menu item and
// how many. Names and prices always come from the stored menu.
type CartLine struct {
	MenuItemID string `json:"menuItemId" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required"`
	Note       string `json:"note"`
}

// CartItem is one priced order line.
type CartItem struct {
	MenuItemID string  `json:"menuItemId"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	Note       string  `json:"note,omitempty"`
}

// Cart carries the items of one placement or continuation together
// with the totals for exactly this batch. On continuation the totals
// are the increment, not the order's running sum.
type Cart struct {
	Items    []CartItem `json:"items"`
	Subtotal float64    `json:"subtotal"`
	Tax      float64    `json:"tax"`
	Discount float64    `json:"discount"`
	Total    float64    `json:"total"`
}

// Validate rejects carts that must never reach an order: no items,
// nonsensical lines, negative money, or a discount exceeding the
// taxed subtotal.
func (c *Cart) Validate() error {
	if len(c.Items) == 0 {
		return ErrEmptyCart
	}
	for _, it := range c.Items {
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item %q needs a positive quantity", ErrValidation, it.Name)
		}
		if it.UnitPrice < 0 {
			return fmt.Errorf("%w: item %q has a negative price", ErrValidation, it.Name)
		}
	}
	if c.Subtotal < 0 || c.Tax < 0 || c.Total < 0 {
		return ErrNegativeTotal
	}
	if c.Discount < 0 || c.Discount > c.Subtotal+c.Tax {
		return ErrInvalidDiscount
	}
	return nil
}

// PriceCart computes a cart from raw lines and the tenant's tax and
// charge configuration. Percentage taxes apply to the discounted
// subtotal; enabled flat charges land in the total only, since the
// order keeps just the four money columns.
func PriceCart(items []CartItem, taxes []models.Tax, charges []models.AdditionalCharge, discount float64) Cart {
	var subtotal float64
	for _, it := range items {
		subtotal += round2(float64(it.Quantity) * it.UnitPrice)
	}
	subtotal = round2(subtotal)

	taxable := subtotal - discount
	if taxable < 0 {
		taxable = 0
	}

	var tax float64
	for _, t := range taxes {
		if t.Enabled {
			tax += round2(taxable * t.Rate / 100)
		}
	}
	tax = round2(tax)

	var charged float64
	for _, ch := range charges {
		if ch.Enabled {
			charged += ch.Amount
		}
	}

	return Cart{
		Items:    items,
		Subtotal: subtotal,
		Tax:      tax,
		Discount: discount,
		Total:    round2(taxable + tax + charged),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
