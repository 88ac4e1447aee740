package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rasoilabs/rasoipos/models"
	"github.com/rasoilabs/rasoipos/services"
	"github.com/rasoilabs/rasoipos/store"
	"github.com/rasoilabs/rasoipos/utils"
)

// CustomerController manages regulars and their credit ledger. The
// balance itself is only ever moved by the credit service.
type CustomerController struct {
	Store   *store.Store
	Credits *services.CreditService
}

func NewCustomerController(st *store.Store, credits *services.CreditService) *CustomerController {
	return &CustomerController{Store: st, Credits: credits}
}

// GetAllCustomers -> every customer with the current balance.
func (cc *CustomerController) GetAllCustomers(c *gin.Context) {
	customers, err := cc.Store.Repos().Customers.List(c.Request.Context(), tenantFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of customers", customers)
}

// CreateCustomer -> register a regular.
func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tenantID := tenantFrom(c)
	customer := models.Customer{Name: req.Name, Phone: req.Phone}
	customer.Touch(tenantID, time.Now())

	if err := cc.Store.Repos().Customers.Upsert(c.Request.Context(), tenantID, &customer); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Customer %q registered", customer.Name)
	utils.RespondJSON(c, http.StatusCreated, "Customer created", customer)
}

// GetCustomerByID -> one customer.
func (cc *CustomerController) GetCustomerByID(c *gin.Context) {
	customer, err := cc.Store.Repos().Customers.Get(c.Request.Context(), tenantFrom(c), c.Param("customer_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Customer detail", customer)
}

// UpdateCustomer -> edit name or phone. The balance is not editable
// here; only ledger postings move it.
func (cc *CustomerController) UpdateCustomer(c *gin.Context) {
	var req struct {
		Name  string  `json:"name"`
		Phone *string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tenantID := tenantFrom(c)
	repos := cc.Store.Repos()
	customer, err := repos.Customers.Get(c.Request.Context(), tenantID, c.Param("customer_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if req.Name != "" {
		customer.Name = req.Name
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	customer.Touch(tenantID, time.Now())

	if err := repos.Customers.Upsert(c.Request.Context(), tenantID, customer); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Customer updated", customer)
}

// DeleteCustomer -> remove a customer record.
func (cc *CustomerController) DeleteCustomer(c *gin.Context) {
	customerID := c.Param("customer_id")
	if err := cc.Store.Repos().Customers.Delete(c.Request.Context(), tenantFrom(c), customerID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("Customer %s deleted", customerID)
	utils.RespondJSON(c, http.StatusOK, "Customer deleted", gin.H{"id": customerID})
}

// GetLedger -> the customer's credit history, oldest first.
func (cc *CustomerController) GetLedger(c *gin.Context) {
	entries, err := cc.Credits.Ledger(c.Request.Context(), tenantFrom(c), c.Param("customer_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Credit ledger", entries)
}

// SettleCredit -> record a pay-down against the customer's balance.
func (cc *CustomerController) SettleCredit(c *gin.Context) {
	var req struct {
		Amount float64 `json:"amount" binding:"required"`
		Note   string  `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	entry, err := cc.Credits.SettleCredit(c.Request.Context(), tenantFrom(c),
		c.Param("customer_id"), req.Amount, req.Note)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Credit settled for customer %s: %.2f (balance %.2f)",
		c.Param("customer_id"), req.Amount, entry.BalanceAfter)
	utils.RespondJSON(c, http.StatusOK, "Credit settled", entry)
}
