package controllers_test

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/rasoilabs/rasoipos/controllers"
	"github.com/rasoilabs/rasoipos/models"
	"github.com/rasoilabs/rasoipos/services"
	"github.com/rasoilabs/rasoipos/store"
)

func setupOrderRouter(st *store.Store, tenant string) *gin.Engine {
	r := newRouter(tenant)
	orders, _ := newOrderStack(st)
	orderCtrl := controllers.NewOrderController(orders, st)

	r.POST("/orders", orderCtrl.CreateOrder)
	r.POST("/orders/quick-bill", orderCtrl.QuickBill)
	r.POST("/orders/quote", orderCtrl.Quote)
	r.GET("/orders", orderCtrl.GetAllOrders)
	r.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	r.POST("/orders/:order_id/kot", orderCtrl.ContinueOrder)
	r.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
	r.POST("/orders/:order_id/cancel", orderCtrl.CancelOrder)
	return r
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	st := newTestStore(t)
	r := setupOrderRouter(st, testTenant)

	dosa := seedMenu(t, st, testTenant, "Masala Dosa", 80)
	coffee := seedMenu(t, st, testTenant, "Filter Coffee", 30)
	table := seedTable(t, st, testTenant, "T1")

	// Place a dine-in order with two lines.
	w := doJSON(t, r, "POST", "/orders", map[string]interface{}{
		"items": []map[string]interface{}{
			{"menuItemId": dosa.ID, "quantity": 2},
			{"menuItemId": coffee.ID, "quantity": 1},
		},
		"orderType": "dine_in",
		"tableId":   table.ID,
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var placed services.OrderResult
	decode(t, w, &placed)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{8}-0001$`), placed.Order.OrderNumber)
	assert.Equal(t, models.StatusPending, placed.Order.Status)
	assert.Equal(t, 190.0, placed.Order.Total)
	assert.Equal(t, 1, placed.Order.KOTSequence)
	assert.Len(t, placed.Items, 2)
	assert.Equal(t, models.TableBusy, tableStatus(t, st, testTenant, table.ID))

	orderID := placed.Order.ID

	// Same table again while the first order is open.
	w = doJSON(t, r, "POST", "/orders", map[string]interface{}{
		"items":     []map[string]interface{}{{"menuItemId": dosa.ID, "quantity": 1}},
		"orderType": "dine_in",
		"tableId":   table.ID,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Second kitchen ticket.
	w = doJSON(t, r, "POST", "/orders/"+orderID+"/kot", map[string]interface{}{
		"items": []map[string]interface{}{{"menuItemId": coffee.ID, "quantity": 2}},
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var continued services.OrderResult
	env := decode(t, w, &continued)
	assert.Equal(t, "KOT added", env.Message)
	assert.Equal(t, 2, continued.Order.KOTSequence)
	assert.Equal(t, 250.0, continued.Order.Total)

	// Serve the order; the table frees up.
	w = doJSON(t, r, "PATCH", "/orders/"+orderID+"/status", map[string]interface{}{
		"status": "served",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var served services.OrderResult
	decode(t, w, &served)
	assert.Equal(t, models.StatusServed, served.Order.Status)
	assert.False(t, served.Order.IsOpen)
	assert.Equal(t, models.TableAvailable, tableStatus(t, st, testTenant, table.ID))

	// Appending to a closed order fails, as does cancelling a final one.
	w = doJSON(t, r, "POST", "/orders/"+orderID+"/kot", map[string]interface{}{
		"items": []map[string]interface{}{{"menuItemId": coffee.ID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, "POST", "/orders/"+orderID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Detail endpoint returns the order with every item so far.
	w = doJSON(t, r, "GET", "/orders/"+orderID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var detail services.OrderResult
	decode(t, w, &detail)
	assert.Len(t, detail.Items, 3)
}

func TestOrderListFilters(t *testing.T) {
	st := newTestStore(t)
	r := setupOrderRouter(st, testTenant)
	dosa := seedMenu(t, st, testTenant, "Masala Dosa", 80)

	place := func() services.OrderResult {
		w := doJSON(t, r, "POST", "/orders", map[string]interface{}{
			"items":     []map[string]interface{}{{"menuItemId": dosa.ID, "quantity": 1}},
			"orderType": "takeaway",
		})
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var res services.OrderResult
		decode(t, w, &res)
		return res
	}

	first := place()
	place()

	w := doJSON(t, r, "PATCH", "/orders/"+first.Order.ID+"/status", map[string]interface{}{
		"status": "served",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var orders []models.Order
	w = doJSON(t, r, "GET", "/orders", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &orders)
	assert.Len(t, orders, 2)

	w = doJSON(t, r, "GET", "/orders?open=true", nil)
	decode(t, w, &orders)
	assert.Len(t, orders, 1)

	w = doJSON(t, r, "GET", "/orders?status=served", nil)
	decode(t, w, &orders)
	assert.Len(t, orders, 1)
	assert.Equal(t, first.Order.ID, orders[0].ID)
}

func TestCreateOrderValidation(t *testing.T) {
	st := newTestStore(t)
	r := setupOrderRouter(st, testTenant)

	// Binding rejects a body without items.
	w := doJSON(t, r, "POST", "/orders", map[string]interface{}{"orderType": "counter"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown menu item.
	w = doJSON(t, r, "POST", "/orders", map[string]interface{}{
		"items":     []map[string]interface{}{{"menuItemId": "ghost", "quantity": 1}},
		"orderType": "counter",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env := decode(t, w, nil)
	assert.False(t, env.Status)
	assert.Contains(t, env.Message, "unknown menu item")

	// Unknown order on the mutation endpoints.
	w = doJSON(t, r, "PATCH", "/orders/ghost/status", map[string]interface{}{"status": "ready"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, "POST", "/orders/ghost/cancel", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuickBillOverHTTP(t *testing.T) {
	st := newTestStore(t)
	r := setupOrderRouter(st, testTenant)
	dosa := seedMenu(t, st, testTenant, "Masala Dosa", 80)

	// Quick bill needs a payment method up front.
	w := doJSON(t, r, "POST", "/orders/quick-bill", map[string]interface{}{
		"items":     []map[string]interface{}{{"menuItemId": dosa.ID, "quantity": 1}},
		"orderType": "counter",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, "POST", "/orders/quick-bill", map[string]interface{}{
		"items":         []map[string]interface{}{{"menuItemId": dosa.ID, "quantity": 1}},
		"orderType":     "counter",
		"paymentMethod": "cash",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res services.OrderResult
	decode(t, w, &res)
	assert.Equal(t, models.StatusServed, res.Order.Status)
	assert.False(t, res.Order.IsOpen)
	assert.Equal(t, 0, res.Order.KOTSequence, "quick bills skip the kitchen")
	assert.Equal(t, "cash", res.Order.PaymentMethod)
}

func TestQuoteDoesNotPersist(t *testing.T) {
	st := newTestStore(t)
	r := setupOrderRouter(st, testTenant)
	dosa := seedMenu(t, st, testTenant, "Masala Dosa", 80)

	w := doJSON(t, r, "POST", "/orders/quote", map[string]interface{}{
		"items":    []map[string]interface{}{{"menuItemId": dosa.ID, "quantity": 2}},
		"discount": 10,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var cart services.Cart
	decode(t, w, &cart)
	assert.Equal(t, 160.0, cart.Subtotal)
	assert.Equal(t, 150.0, cart.Total)

	var orders []models.Order
	w = doJSON(t, r, "GET", "/orders", nil)
	decode(t, w, &orders)
	assert.Empty(t, orders, "a quote must not create an order")
}
