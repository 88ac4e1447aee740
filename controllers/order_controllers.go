package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rasoilabs/rasoipos/models"
	"github.com/rasoilabs/rasoipos/services"
	"github.com/rasoilabs/rasoipos/store"
	"github.com/rasoilabs/rasoipos/utils"
)

type OrderController struct {
	Orders *services.OrderService
	Store  *store.Store
}

func NewOrderController(orders *services.OrderService, st *store.Store) *OrderController {
	return &OrderController{Orders: orders, Store: st}
}

// orderRequest is the wire shape for placing and quick-billing.
// Items carry menu item ids only; the server prices them.
type orderRequest struct {
	Items         []services.CartLine `json:"items" binding:"required"`
	Discount      float64             `json:"discount"`
	OrderType     string              `json:"orderType" binding:"required"`
	TableID       *string             `json:"tableId"`
	CustomerID    *string             `json:"customerId"`
	CustomerName  string              `json:"customerName"`
	PaymentMethod string              `json:"paymentMethod"`
	Note          string              `json:"note"`
}

func (oc *OrderController) buildInput(c *gin.Context, tenantID string, req orderRequest) (services.PlaceOrderInput, bool) {
	cart, err := oc.Orders.BuildCart(c.Request.Context(), tenantID, req.Items, req.Discount)
	if err != nil {
		respondServiceError(c, err)
		return services.PlaceOrderInput{}, false
	}
	return services.PlaceOrderInput{
		Cart:          cart,
		OrderType:     models.OrderType(req.OrderType),
		TableID:       req.TableID,
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		PaymentMethod: req.PaymentMethod,
		Note:          req.Note,
	}, true
}

// CreateOrder -> place a new order with its first kitchen ticket.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tenantID := tenantFrom(c)
	input, ok := oc.buildInput(c, tenantID, req)
	if !ok {
		return
	}

	result, err := oc.Orders.PlaceOrder(c.Request.Context(), tenantID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Order %s placed (%s, total %.2f)",
		result.Order.OrderNumber, result.Order.OrderType, result.Order.Total)
	utils.RespondJSON(c, http.StatusCreated, "Order placed", result)
}

// QuickBill -> place and settle in one call, no kitchen ticket.
func (oc *OrderController) QuickBill(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tenantID := tenantFrom(c)
	input, ok := oc.buildInput(c, tenantID, req)
	if !ok {
		return
	}

	result, err := oc.Orders.QuickBill(c.Request.Context(), tenantID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Quick bill %s settled (total %.2f, %s)",
		result.Order.OrderNumber, result.Order.Total, result.Order.PaymentMethod)
	utils.RespondJSON(c, http.StatusCreated, "Quick bill settled", result)
}

// ContinueOrder -> append a kitchen ticket to an open order.
func (oc *OrderController) ContinueOrder(c *gin.Context) {
	var req struct {
		Items    []services.CartLine `json:"items" binding:"required"`
		Discount float64             `json:"discount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tenantID := tenantFrom(c)
	cart, err := oc.Orders.BuildCart(c.Request.Context(), tenantID, req.Items, req.Discount)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	result, err := oc.Orders.ContinueOrder(c.Request.Context(), tenantID, c.Param("order_id"), cart)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Order %s continued with KOT #%d",
		result.Order.OrderNumber, result.Order.KOTSequence)
	utils.RespondJSON(c, http.StatusOK, "KOT added", result)
}

// Quote -> price a cart without creating anything.
func (oc *OrderController) Quote(c *gin.Context) {
	var req struct {
		Items    []services.CartLine `json:"items" binding:"required"`
		Discount float64             `json:"discount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	cart, err := oc.Orders.BuildCart(c.Request.Context(), tenantFrom(c), req.Items, req.Discount)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart priced", cart)
}

// UpdateOrderStatus -> move the order through the kitchen flow.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := oc.Orders.UpdateStatus(c.Request.Context(), tenantFrom(c),
		c.Param("order_id"), models.OrderStatus(req.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Order %s -> %s", result.Order.OrderNumber, result.Order.Status)
	utils.RespondJSON(c, http.StatusOK, "Order status updated", result)
}

// CancelOrder -> cancel unless the order already reached a final state.
func (oc *OrderController) CancelOrder(c *gin.Context) {
	result, err := oc.Orders.CancelOrder(c.Request.Context(), tenantFrom(c), c.Param("order_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Order %s cancelled", result.Order.OrderNumber)
	utils.RespondJSON(c, http.StatusOK, "Order cancelled", result)
}

// GetAllOrders -> list orders; ?open=true narrows to open ones,
// ?status=<status> to one status.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	tenantID := tenantFrom(c)
	repos := oc.Store.Repos()

	var (
		orders []models.Order
		err    error
	)
	switch {
	case c.Query("open") == "true":
		orders, err = repos.Orders.ListOpen(c.Request.Context(), tenantID)
	case c.Query("status") != "":
		orders, err = repos.Orders.ListByStatus(c.Request.Context(), tenantID,
			models.OrderStatus(c.Query("status")))
	default:
		orders, err = repos.Orders.List(c.Request.Context(), tenantID)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetOrderByID -> one order with all its items.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	result, err := oc.Orders.GetOrder(c.Request.Context(), tenantFrom(c), c.Param("order_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", result)
}

// PrintBill -> render and print the customer bill.
func (oc *OrderController) PrintBill(c *gin.Context) {
	if err := oc.Orders.PrintBill(c.Request.Context(), tenantFrom(c), c.Param("order_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bill printed", nil)
}
