package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rasoilabs/rasoipos/controllers"
	"github.com/rasoilabs/rasoipos/events"
	"github.com/rasoilabs/rasoipos/middlewares"
	"github.com/rasoilabs/rasoipos/services"
	"github.com/rasoilabs/rasoipos/store"
)

// Deps carries everything the handlers need. The router wires, it
// never owns.
type Deps struct {
	Store     *store.Store
	Orders    *services.OrderService
	Credits   *services.CreditService
	Scheduler *services.SyncScheduler
	Hub       *events.Hub
	TenantID  string
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	authCtrl := controllers.NewAuthController(d.Store, d.TenantID)
	orderCtrl := controllers.NewOrderController(d.Orders, d.Store)
	tableCtrl := controllers.NewTableController(d.Store)
	customerCtrl := controllers.NewCustomerController(d.Store, d.Credits)
	categoryCtrl := controllers.NewMenuCategoryController(d.Store)
	menuCtrl := controllers.NewMenuController(d.Store)
	billingCtrl := controllers.NewBillingController(d.Store)
	expenseCtrl := controllers.NewExpenseController(d.Store)
	settingsCtrl := controllers.NewSettingsController(d.Store)
	syncCtrl := controllers.NewSyncController(d.Store, d.Scheduler)
	statsCtrl := controllers.NewStatsController(d.Store)
	eventsCtrl := controllers.NewEventsController(d.Hub)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// PIN endpoints are the only public surface and sit behind the
	// attempt limiter.
	auth := r.Group("/auth")
	auth.Use(middlewares.PINRateLimiter())
	{
		auth.POST("/setup", authCtrl.SetupPIN)
		auth.POST("/login", authCtrl.Login)
	}

	api := r.Group("/api/v1")
	api.Use(middlewares.AuthMiddleware())

	api.POST("/auth/pin", authCtrl.ChangePIN)

	// ORDERS
	api.POST("/orders", orderCtrl.CreateOrder)
	api.POST("/orders/quick-bill", orderCtrl.QuickBill)
	api.POST("/orders/quote", orderCtrl.Quote)
	api.GET("/orders", orderCtrl.GetAllOrders)
	api.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	api.POST("/orders/:order_id/kot", orderCtrl.ContinueOrder)
	api.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
	api.POST("/orders/:order_id/cancel", orderCtrl.CancelOrder)
	api.POST("/orders/:order_id/print-bill", orderCtrl.PrintBill)

	// TABLES
	api.GET("/tables", tableCtrl.GetAllTables)
	api.POST("/tables", tableCtrl.CreateTable)
	api.GET("/tables/:table_id", tableCtrl.GetTableByID)
	api.PATCH("/tables/:table_id", tableCtrl.UpdateTable)
	api.DELETE("/tables/:table_id", tableCtrl.DeleteTable)

	// CUSTOMERS + CREDIT LEDGER
	api.GET("/customers", customerCtrl.GetAllCustomers)
	api.POST("/customers", customerCtrl.CreateCustomer)
	api.GET("/customers/:customer_id", customerCtrl.GetCustomerByID)
	api.PATCH("/customers/:customer_id", customerCtrl.UpdateCustomer)
	api.DELETE("/customers/:customer_id", customerCtrl.DeleteCustomer)
	api.GET("/customers/:customer_id/ledger", customerCtrl.GetLedger)
	api.POST("/customers/:customer_id/settle", customerCtrl.SettleCredit)

	// MENU
	api.GET("/categories", categoryCtrl.GetAllCategories)
	api.POST("/categories", categoryCtrl.CreateCategory)
	api.PATCH("/categories/:cat_id", categoryCtrl.UpdateCategory)
	api.DELETE("/categories/:cat_id", categoryCtrl.DeleteCategory)
	api.GET("/menus", menuCtrl.GetAllMenus)
	api.POST("/menus", menuCtrl.CreateMenu)
	api.GET("/menus/:menu_id", menuCtrl.GetMenuByID)
	api.PATCH("/menus/:menu_id", menuCtrl.UpdateMenu)
	api.DELETE("/menus/:menu_id", menuCtrl.DeleteMenu)

	// BILLING CONFIG
	api.GET("/taxes", billingCtrl.GetAllTaxes)
	api.POST("/taxes", billingCtrl.CreateTax)
	api.PATCH("/taxes/:tax_id", billingCtrl.UpdateTax)
	api.DELETE("/taxes/:tax_id", billingCtrl.DeleteTax)
	api.GET("/charges", billingCtrl.GetAllCharges)
	api.POST("/charges", billingCtrl.CreateCharge)
	api.PATCH("/charges/:charge_id", billingCtrl.UpdateCharge)
	api.DELETE("/charges/:charge_id", billingCtrl.DeleteCharge)

	// EXPENSES
	api.GET("/expenses", expenseCtrl.GetAllExpenses)
	api.POST("/expenses", expenseCtrl.CreateExpense)
	api.DELETE("/expenses/:expense_id", expenseCtrl.DeleteExpense)

	// SETTINGS
	api.GET("/settings/restaurant", settingsCtrl.GetRestaurantInfo)
	api.PUT("/settings/restaurant", settingsCtrl.UpdateRestaurantInfo)
	api.GET("/settings/payments", settingsCtrl.GetPaymentSettings)
	api.PUT("/settings/payments", settingsCtrl.UpdatePaymentSettings)
	api.GET("/settings/device", settingsCtrl.GetDeviceSettings)
	api.PATCH("/settings/device", settingsCtrl.UpdateDeviceSettings)

	// SYNC
	api.POST("/sync/trigger", syncCtrl.TriggerSync)
	api.GET("/sync/status", syncCtrl.GetSyncStatus)

	// DASHBOARD
	api.GET("/stats/today", statsCtrl.TodayStats)

	// Event feed for billing and kitchen screens.
	ws := r.Group("/ws")
	ws.Use(middlewares.WebSocketAuthMiddleware())
	{
		ws.GET("/events", eventsCtrl.Stream)
	}

	return r
}
