package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rasoilabs/rasoipos/events"
	"github.com/rasoilabs/rasoipos/models"
	"github.com/rasoilabs/rasoipos/printer"
	"github.com/rasoilabs/rasoipos/store"
	"github.com/rasoilabs/rasoipos/utils"
)

// OrderService drives the order state machine: placement, KOT
// continuation, quick billing, status transitions and cancellation.
// Table occupancy and credit postings are side effects of these
// operations; nothing else writes them.
type OrderService struct {
	store   *store.Store
	locks   *LockTable
	printer printer.Printer
	hub     *events.Hub
	credits *CreditService
}

func NewOrderService(st *store.Store, locks *LockTable, p printer.Printer, hub *events.Hub, credits *CreditService) *OrderService {
	if p == nil {
		p = printer.Nop{}
	}
	return &OrderService{store: st, locks: locks, printer: p, hub: hub, credits: credits}
}

// PlaceOrderInput is shared by PlaceOrder and QuickBill.
type PlaceOrderInput struct {
	Cart          Cart             `json:"cart"`
	OrderType     models.OrderType `json:"orderType"`
	TableID       *string          `json:"tableId,omitempty"`
	CustomerID    *string          `json:"customerId,omitempty"`
	CustomerName  string           `json:"customerName,omitempty"`
	PaymentMethod string           `json:"paymentMethod,omitempty"`
	Note          string           `json:"note,omitempty"`
}

// OrderResult is what every mutating operation hands back: the order
// as persisted, the items written by this operation, and non-fatal
// warnings (a failed credit posting never rolls the order back, but
// the caller gets told).
type OrderResult struct {
	Order    *models.Order      `json:"order"`
	Items    []models.OrderItem `json:"items,omitempty"`
	Warnings []string           `json:"warnings,omitempty"`
}

// PlaceOrder validates the cart, persists the order with its first
// KOT batch in one transaction, occupies the table for dine-in and
// emits the kitchen ticket.
func (s *OrderService) PlaceOrder(ctx context.Context, tenantID string, in PlaceOrderInput) (*OrderResult, error) {
	if err := validateInput(&in, false); err != nil {
		return nil, err
	}

	now := time.Now()
	order := &models.Order{
		SyncMeta: models.SyncMeta{
			ID:          uuid.NewString(),
			TenantID:    tenantID,
			CreatedAt:   now,
			LastUpdated: now,
		},
		CustomerID:    in.CustomerID,
		CustomerName:  in.CustomerName,
		OrderType:     in.OrderType,
		Status:        models.StatusPending,
		Subtotal:      in.Cart.Subtotal,
		Tax:           in.Cart.Tax,
		Discount:      in.Cart.Discount,
		Total:         in.Cart.Total,
		PaymentMethod: in.PaymentMethod,
		KOTSequence:   1,
		IsOpen:        true,
		Note:          in.Note,
	}

	tableID := dineInTableID(in)
	if tableID != "" {
		order.TableID = in.TableID
		s.locks.Lock(tableKey(tableID))
		defer s.locks.Unlock(tableKey(tableID))
	}

	items := buildItems(order, in.Cart.Items, 1, now)

	tableFlipped := false
	err := s.store.Transaction(ctx, func(r *store.Repositories) error {
		if tableID != "" {
			if err := ensureTableFree(ctx, r, tenantID, tableID, order.ID); err != nil {
				return err
			}
		}

		n, err := r.Orders.CountForDay(ctx, tenantID, now)
		if err != nil {
			return err
		}
		order.OrderNumber = formatOrderNumber(now, n+1)

		if err := r.Orders.Upsert(ctx, tenantID, order); err != nil {
			return err
		}
		for i := range items {
			if err := r.OrderItems.Upsert(ctx, tenantID, &items[i]); err != nil {
				return err
			}
		}

		if tableID != "" {
			flipped, err := markTableBusy(ctx, r, tenantID, tableID, now)
			if err != nil {
				return err
			}
			tableFlipped = flipped
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &OrderResult{Order: order, Items: items}
	s.postCredit(ctx, tenantID, order, in.Cart.Total, result)

	s.hub.OrderCreated(order)
	s.hub.KOTCreated(order.ID, 1, items)
	if tableFlipped {
		s.publishTable(ctx, tenantID, tableID)
	}
	s.printKOT(ctx, tenantID, order, items)

	return result, nil
}

// ContinueOrder appends another KOT batch to an open order: the
// sequence moves up by one, the new items carry the new number and
// the batch totals are added onto the running totals. The table
// assignment is untouched.
func (s *OrderService) ContinueOrder(ctx context.Context, tenantID, orderID string, cart Cart) (*OrderResult, error) {
	if err := cart.Validate(); err != nil {
		return nil, err
	}

	s.locks.Lock(orderKey(orderID))
	defer s.locks.Unlock(orderKey(orderID))

	now := time.Now()
	var (
		order *models.Order
		items []models.OrderItem
	)
	err := s.store.Transaction(ctx, func(r *store.Repositories) error {
		existing, err := r.Orders.Get(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if !existing.IsOpen {
			return ErrOrderClosed
		}

		if err := r.Orders.IncrementKOT(ctx, tenantID, orderID, now); err != nil {
			return err
		}
		if err := r.Orders.AddTotals(ctx, tenantID, orderID,
			cart.Subtotal, cart.Tax, cart.Discount, cart.Total, now); err != nil {
			return err
		}

		order, err = r.Orders.Get(ctx, tenantID, orderID)
		if err != nil {
			return err
		}

		items = buildItems(order, cart.Items, order.KOTSequence, now)
		for i := range items {
			if err := r.OrderItems.Upsert(ctx, tenantID, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &OrderResult{Order: order, Items: items}
	s.postCredit(ctx, tenantID, order, cart.Total, result)

	s.hub.OrderUpdated(order)
	s.hub.KOTCreated(order.ID, order.KOTSequence, items)
	s.printKOT(ctx, tenantID, order, items)

	return result, nil
}

// QuickBill creates and settles an order in one stroke: no kitchen
// ticket (sequence stays 0), born served and closed, bill printed
// right away. A dine-in table referenced by a quick bill is released
// immediately unless another open order still holds it.
func (s *OrderService) QuickBill(ctx context.Context, tenantID string, in PlaceOrderInput) (*OrderResult, error) {
	if err := validateInput(&in, true); err != nil {
		return nil, err
	}

	now := time.Now()
	order := &models.Order{
		SyncMeta: models.SyncMeta{
			ID:          uuid.NewString(),
			TenantID:    tenantID,
			CreatedAt:   now,
			LastUpdated: now,
		},
		CustomerID:    in.CustomerID,
		CustomerName:  in.CustomerName,
		OrderType:     in.OrderType,
		Status:        models.StatusServed,
		Subtotal:      in.Cart.Subtotal,
		Tax:           in.Cart.Tax,
		Discount:      in.Cart.Discount,
		Total:         in.Cart.Total,
		PaymentMethod: in.PaymentMethod,
		KOTSequence:   0,
		IsOpen:        false,
		Note:          in.Note,
	}

	tableID := dineInTableID(in)
	if tableID != "" {
		order.TableID = in.TableID
		s.locks.Lock(tableKey(tableID))
		defer s.locks.Unlock(tableKey(tableID))
	}

	items := buildItems(order, in.Cart.Items, 0, now)

	tableFlipped := false
	err := s.store.Transaction(ctx, func(r *store.Repositories) error {
		n, err := r.Orders.CountForDay(ctx, tenantID, now)
		if err != nil {
			return err
		}
		order.OrderNumber = formatOrderNumber(now, n+1)

		if err := r.Orders.Upsert(ctx, tenantID, order); err != nil {
			return err
		}
		for i := range items {
			if err := r.OrderItems.Upsert(ctx, tenantID, &items[i]); err != nil {
				return err
			}
		}

		if tableID != "" {
			flipped, err := freeTableIfIdle(ctx, r, tenantID, tableID, now)
			if err != nil {
				return err
			}
			tableFlipped = flipped
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &OrderResult{Order: order, Items: items}
	s.postCredit(ctx, tenantID, order, in.Cart.Total, result)

	s.hub.OrderCreated(order)
	if tableFlipped {
		s.publishTable(ctx, tenantID, tableID)
	}
	if err := s.PrintBill(ctx, tenantID, order.ID); err != nil {
		utils.ErrorLogger.Printf("order %s: bill print failed: %v", order.OrderNumber, err)
	}

	return result, nil
}

// UpdateStatus moves an order to any known status. Reaching a
// terminal status closes the order and releases its table; moving
// back to a non-terminal status reopens it and re-occupies the table.
func (s *OrderService) UpdateStatus(ctx context.Context, tenantID, orderID string, status models.OrderStatus) (*OrderResult, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.transition(ctx, tenantID, orderID, status, nil)
}

// CancelOrder moves an order to cancelled unless it already reached a
// terminal status.
func (s *OrderService) CancelOrder(ctx context.Context, tenantID, orderID string) (*OrderResult, error) {
	return s.transition(ctx, tenantID, orderID, models.StatusCancelled, func(o *models.Order) error {
		if o.Status.Terminal() {
			return ErrOrderFinal
		}
		return nil
	})
}

// transition applies a status change with its table side effects. The
// guard, when set, runs against the current row before anything is
// written.
func (s *OrderService) transition(ctx context.Context, tenantID, orderID string, status models.OrderStatus, guard func(*models.Order) error) (*OrderResult, error) {
	s.locks.Lock(orderKey(orderID))
	defer s.locks.Unlock(orderKey(orderID))

	// The table reference never changes after placement, so reading it
	// before the transaction gives a stable lock key.
	peek, err := s.store.Repos().Orders.Get(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if tableID, ok := peek.DineInTable(); ok {
		s.locks.Lock(tableKey(tableID))
		defer s.locks.Unlock(tableKey(tableID))
	}

	now := time.Now()
	var (
		order        *models.Order
		tableFlipped bool
		tableID      string
	)
	err = s.store.Transaction(ctx, func(r *store.Repositories) error {
		order, err = r.Orders.Get(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(order); err != nil {
				return err
			}
		}

		order.Status = status
		order.IsOpen = !status.Terminal()
		order.LastUpdated = now
		if err := r.Orders.Upsert(ctx, tenantID, order); err != nil {
			return err
		}

		tid, ok := order.DineInTable()
		if !ok {
			return nil
		}
		tableID = tid
		if status.Terminal() {
			tableFlipped, err = freeTableIfIdle(ctx, r, tenantID, tid, now)
		} else {
			tableFlipped, err = markTableBusy(ctx, r, tenantID, tid, now)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.hub.OrderUpdated(order)
	if tableFlipped {
		s.publishTable(ctx, tenantID, tableID)
	}
	return &OrderResult{Order: order}, nil
}

// GetOrder returns the order with all its items.
func (s *OrderService) GetOrder(ctx context.Context, tenantID, orderID string) (*OrderResult, error) {
	repos := s.store.Repos()
	order, err := repos.Orders.Get(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	items, err := repos.OrderItems.ListByOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order, Items: items}, nil
}

// PrintBill renders and prints the customer bill for an order. Unlike
// the automatic prints, an explicit print reports its failure.
func (s *OrderService) PrintBill(ctx context.Context, tenantID, orderID string) error {
	detail, err := s.GetOrder(ctx, tenantID, orderID)
	if err != nil {
		return err
	}
	order := detail.Order

	info := s.infoFor(ctx, tenantID)
	settings := s.settingsFor(ctx, tenantID)

	bill := printer.BillPayload{
		RestaurantName: info.Name,
		Address:        info.Address,
		Phone:          info.Phone,
		GSTIN:          info.GSTIN,
		OrderNumber:    order.OrderNumber,
		OrderType:      orderTypeLabel(order.OrderType),
		CustomerLabel:  order.CustomerName,
		TableLabel:     s.tableLabel(ctx, tenantID, order.TableID),
		PlacedAt:       order.CreatedAt,
		Items:          printLines(detail.Items),
		Subtotal:       order.Subtotal,
		Tax:            order.Tax,
		Discount:       order.Discount,
		Total:          order.Total,
		PaymentMethod:  order.PaymentMethod,
		CurrencySymbol: settings.CurrencySymbol,
		Footer:         settings.ReceiptFooter,
	}
	return s.printer.PrintBill(bill)
}

// ListOpen returns the open orders for the front-of-house board.
func (s *OrderService) ListOpen(ctx context.Context, tenantID string) ([]models.Order, error) {
	return s.store.Repos().Orders.ListOpen(ctx, tenantID)
}

// BuildCart prices raw cart lines against the stored menu and the
// tenant's tax and charge configuration. Unknown or unavailable menu
// items reject the whole cart.
func (s *OrderService) BuildCart(ctx context.Context, tenantID string, lines []CartLine, discount float64) (Cart, error) {
	if len(lines) == 0 {
		return Cart{}, ErrEmptyCart
	}

	repos := s.store.Repos()
	items := make([]CartItem, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return Cart{}, fmt.Errorf("%w: menu item %s needs a positive quantity", ErrValidation, line.MenuItemID)
		}
		mi, err := repos.MenuItems.Get(ctx, tenantID, line.MenuItemID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return Cart{}, fmt.Errorf("%w: unknown menu item %s", ErrValidation, line.MenuItemID)
			}
			return Cart{}, err
		}
		if !mi.IsAvailable {
			return Cart{}, fmt.Errorf("%w: %s is not available", ErrValidation, mi.Name)
		}
		items = append(items, CartItem{
			MenuItemID: mi.ID,
			Name:       mi.Name,
			Quantity:   line.Quantity,
			UnitPrice:  mi.Price,
			Note:       line.Note,
		})
	}

	taxes, err := repos.Taxes.List(ctx, tenantID)
	if err != nil {
		return Cart{}, err
	}
	charges, err := repos.AdditionalCharges.List(ctx, tenantID)
	if err != nil {
		return Cart{}, err
	}

	cart := PriceCart(items, taxes, charges, discount)
	if err := cart.Validate(); err != nil {
		return Cart{}, err
	}
	return cart, nil
}

func validateInput(in *PlaceOrderInput, settled bool) error {
	if err := in.Cart.Validate(); err != nil {
		return err
	}
	if !in.OrderType.Valid() {
		return fmt.Errorf("%w: unknown order type %q", ErrValidation, in.OrderType)
	}
	switch in.PaymentMethod {
	case "", models.PaymentCash, models.PaymentUPI, models.PaymentCard, models.PaymentCredit:
	default:
		return fmt.Errorf("%w: unknown payment method %q", ErrValidation, in.PaymentMethod)
	}
	if settled && in.PaymentMethod == "" {
		return fmt.Errorf("%w: quick bill needs a payment method", ErrValidation)
	}
	if in.PaymentMethod == models.PaymentCredit && (in.CustomerID == nil || *in.CustomerID == "") {
		return fmt.Errorf("%w: credit payment needs a customer", ErrValidation)
	}
	return nil
}

func dineInTableID(in PlaceOrderInput) string {
	if in.OrderType == models.OrderDineIn && in.TableID != nil && *in.TableID != "" {
		return *in.TableID
	}
	return ""
}

func formatOrderNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("ORD-%s-%04d", day.Format("20060102"), seq)
}

func buildItems(order *models.Order, lines []CartItem, kot int, now time.Time) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			SyncMeta: models.SyncMeta{
				ID:          uuid.NewString(),
				TenantID:    order.TenantID,
				CreatedAt:   now,
				LastUpdated: now,
			},
			OrderID:    order.ID,
			MenuItemID: line.MenuItemID,
			Name:       line.Name,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			Total:      round2(float64(line.Quantity) * line.UnitPrice),
			KOTNumber:  kot,
			Note:       line.Note,
		})
	}
	return items
}

// ensureTableFree rejects when another open dine-in order already
// occupies the table. The order rows are the authority here, so a
// stale busy flag never wedges a table for good.
func ensureTableFree(ctx context.Context, r *store.Repositories, tenantID, tableID, selfID string) error {
	open, err := r.Orders.OpenDineInByTable(ctx, tenantID, tableID)
	if err != nil {
		return err
	}
	for _, o := range open {
		if o.ID != selfID {
			return ErrTableBusy
		}
	}
	return nil
}

// markTableBusy occupies the table, skipping the write when it is
// already busy so lastUpdated does not churn.
func markTableBusy(ctx context.Context, r *store.Repositories, tenantID, tableID string, now time.Time) (bool, error) {
	table, err := r.Tables.Get(ctx, tenantID, tableID)
	if err != nil {
		return false, err
	}
	if table.Status == models.TableBusy {
		return false, nil
	}
	if err := r.Tables.SetStatus(ctx, tenantID, tableID, models.TableBusy, now); err != nil {
		return false, err
	}
	return true, nil
}

// freeTableIfIdle releases the table unless another open dine-in
// order still holds it. A missing table row is ignored: the order
// outlives table reconfiguration.
func freeTableIfIdle(ctx context.Context, r *store.Repositories, tenantID, tableID string, now time.Time) (bool, error) {
	open, err := r.Orders.OpenDineInByTable(ctx, tenantID, tableID)
	if err != nil {
		return false, err
	}
	if len(open) > 0 {
		return false, nil
	}

	table, err := r.Tables.Get(ctx, tenantID, tableID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if table.Status == models.TableAvailable {
		return false, nil
	}
	if err := r.Tables.SetStatus(ctx, tenantID, tableID, models.TableAvailable, now); err != nil {
		return false, err
	}
	return true, nil
}

// postCredit appends the ledger entry when the order is credit-paid
// with a customer attached. The order is already committed, so a
// ledger failure is logged and reported as a warning, never raised.
func (s *OrderService) postCredit(ctx context.Context, tenantID string, order *models.Order, amount float64, result *OrderResult) {
	if order.PaymentMethod != models.PaymentCredit || order.CustomerID == nil || s.credits == nil {
		return
	}
	if _, err := s.credits.PostSale(ctx, tenantID, *order.CustomerID, order.ID, amount); err != nil {
		utils.ErrorLogger.Printf("order %s: credit ledger entry failed: %v", order.OrderNumber, err)
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("credit ledger entry failed: %v", err))
	}
}

func (s *OrderService) printKOT(ctx context.Context, tenantID string, order *models.Order, items []models.OrderItem) {
	if len(items) == 0 || items[0].KOTNumber == 0 {
		return
	}
	settings := s.settingsFor(ctx, tenantID)
	if !settings.KOTEnabled {
		return
	}

	payload := printer.KOTPayload{
		OrderNumber: order.OrderNumber,
		KOTNumber:   items[0].KOTNumber,
		OrderType:   orderTypeLabel(order.OrderType),
		TableLabel:  s.tableLabel(ctx, tenantID, order.TableID),
		PlacedAt:    time.Now(),
		Items:       printLines(items),
	}
	if err := s.printer.PrintKOT(payload); err != nil {
		utils.ErrorLogger.Printf("order %s: KOT print failed: %v", order.OrderNumber, err)
	}
}

func (s *OrderService) publishTable(ctx context.Context, tenantID, tableID string) {
	table, err := s.store.Repos().Tables.Get(ctx, tenantID, tableID)
	if err != nil {
		return
	}
	s.hub.TableUpdated(table)
}

// settingsFor loads the device settings, falling back to defaults
// before the row exists.
func (s *OrderService) settingsFor(ctx context.Context, tenantID string) *models.RestaurantSettings {
	settings, err := s.store.Repos().RestaurantSettings.Get(ctx, tenantID, tenantID)
	if err != nil {
		return models.DefaultRestaurantSettings(tenantID)
	}
	return settings
}

func (s *OrderService) infoFor(ctx context.Context, tenantID string) *models.RestaurantInfo {
	info, err := s.store.Repos().RestaurantInfo.Get(ctx, tenantID, tenantID)
	if err != nil {
		return &models.RestaurantInfo{}
	}
	return info
}

func (s *OrderService) tableLabel(ctx context.Context, tenantID string, tableID *string) string {
	if tableID == nil || *tableID == "" {
		return ""
	}
	table, err := s.store.Repos().Tables.Get(ctx, tenantID, *tableID)
	if err != nil {
		return ""
	}
	return table.Name
}

func orderTypeLabel(t models.OrderType) string {
	switch t {
	case models.OrderCounter:
		return "Counter"
	case models.OrderDineIn:
		return "Dine In"
	case models.OrderTakeaway:
		return "Takeaway"
	case models.OrderDelivery:
		return "Delivery"
	default:
		return string(t)
	}
}

func printLines(items []models.OrderItem) []printer.LineItem {
	lines := make([]printer.LineItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, printer.LineItem{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Total:     it.Total,
			Note:      it.Note,
		})
	}
	return lines
}
