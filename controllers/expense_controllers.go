package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rasoilabs/rasoipos/models"
	"github.com/rasoilabs/rasoipos/store"
	"github.com/rasoilabs/rasoipos/utils"
)

type ExpenseController struct {
	Store *store.Store
}

func NewExpenseController(st *store.Store) *ExpenseController {
	return &ExpenseController{Store: st}
}

// CreateExpense -> record a cash-out. SpentAt defaults to now.
func (ec *ExpenseController) CreateExpense(c *gin.Context) {
	var req struct {
		Category string     `json:"category" binding:"required"`
		Amount   float64    `json:"amount" binding:"required"`
		Note     string     `json:"note"`
		SpentAt  *time.Time `json:"spentAt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Amount <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("amount must be positive"))
		return
	}

	now := time.Now()
	tenantID := tenantFrom(c)
	expense := models.Expense{
		Category: req.Category,
		Amount:   req.Amount,
		Note:     req.Note,
		SpentAt:  now,
	}
	if req.SpentAt != nil {
		expense.SpentAt = *req.SpentAt
	}
	expense.Touch(tenantID, now)

	if err := ec.Store.Repos().Expenses.Upsert(c.Request.Context(), tenantID, &expense); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Expense recorded: %s %.2f", expense.Category, expense.Amount)
	utils.RespondJSON(c, http.StatusCreated, "Expense recorded", expense)
}

// GetAllExpenses -> list expenses; ?from=&to= (RFC 3339) narrow the
// range, with to exclusive.
func (ec *ExpenseController) GetAllExpenses(c *gin.Context) {
	tenantID := tenantFrom(c)
	repos := ec.Store.Repos()

	fromStr, toStr := c.Query("from"), c.Query("to")
	if fromStr == "" && toStr == "" {
		expenses, err := repos.Expenses.List(c.Request.Context(), tenantID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "List of expenses", expenses)
		return
	}

	from, to, err := parseRange(fromStr, toStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	expenses, err := repos.Expenses.ListBetween(c.Request.Context(), tenantID, from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of expenses", expenses)
}

// DeleteExpense
func (ec *ExpenseController) DeleteExpense(c *gin.Context) {
	expenseID := c.Param("expense_id")
	if err := ec.Store.Repos().Expenses.Delete(c.Request.Context(), tenantFrom(c), expenseID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Expense deleted", gin.H{"id": expenseID})
}

func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	from := time.Time{}
	to := time.Now().Add(24 * time.Hour)

	if fromStr != "" {
		parsed, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return from, to, errors.New("from must be RFC 3339")
		}
		from = parsed
	}
	if toStr != "" {
		parsed, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			return from, to, errors.New("to must be RFC 3339")
		}
		to = parsed
	}
	return from, to, nil
}
