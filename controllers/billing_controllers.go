package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rasoilabs/rasoipos/models"
	"github.com/rasoilabs/rasoipos/store"
	"github.com/rasoilabs/rasoipos/utils"
)

// BillingController manages the billing configuration: percentage
// taxes and flat additional charges. Both feed straight into cart
// pricing.
type BillingController struct {
	Store *store.Store
}

func NewBillingController(st *store.Store) *BillingController {
	return &BillingController{Store: st}
}

// GetAllTaxes
func (bc *BillingController) GetAllTaxes(c *gin.Context) {
	taxes, err := bc.Store.Repos().Taxes.List(c.Request.Context(), tenantFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of taxes", taxes)
}

// CreateTax
func (bc *BillingController) CreateTax(c *gin.Context) {
	var req struct {
		Name    string  `json:"name" binding:"required"`
		Rate    float64 `json:"rate"`
		Enabled bool    `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tenantID := tenantFrom(c)
	tax := models.Tax{Name: req.Name, Rate: req.Rate, Enabled: req.Enabled}
	tax.Touch(tenantID, time.Now())

	if err := bc.Store.Repos().Taxes.Upsert(c.Request.Context(), tenantID, &tax); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Tax %q created (%.2f%%)", tax.Name, tax.Rate)
	utils.RespondJSON(c, http.StatusCreated, "Tax created", tax)
}

// UpdateTax
func (bc *BillingController) UpdateTax(c *gin.Context) {
	var req struct {
		Name    string   `json:"name"`
		Rate    *float64 `json:"rate"`
		Enabled *bool    `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tenantID := tenantFrom(c)
	repos := bc.Store.Repos()
	tax, err := repos.Taxes.Get(c.Request.Context(), tenantID, c.Param("tax_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if req.Name != "" {
		tax.Name = req.Name
	}
	if req.Rate != nil {
		tax.Rate = *req.Rate
	}
	if req.Enabled != nil {
		tax.Enabled = *req.Enabled
	}
	tax.Touch(tenantID, time.Now())

	if err := repos.Taxes.Upsert(c.Request.Context(), tenantID, tax); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tax updated", tax)
}

// DeleteTax
func (bc *BillingController) DeleteTax(c *gin.Context) {
	taxID := c.Param("tax_id")
	if err := bc.Store.Repos().Taxes.Delete(c.Request.Context(), tenantFrom(c), taxID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tax deleted", gin.H{"id": taxID})
}

// GetAllCharges
func (bc *BillingController) GetAllCharges(c *gin.Context) {
	charges, err := bc.Store.Repos().AdditionalCharges.List(c.Request.Context(), tenantFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of charges", charges)
}

// CreateCharge
func (bc *BillingController) CreateCharge(c *gin.Context) {
	var req struct {
		Name    string  `json:"name" binding:"required"`
		Amount  float64 `json:"amount"`
		Enabled bool    `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tenantID := tenantFrom(c)
	charge := models.AdditionalCharge{Name: req.Name, Amount: req.Amount, Enabled: req.Enabled}
	charge.Touch(tenantID, time.Now())

	if err := bc.Store.Repos().AdditionalCharges.Upsert(c.Request.Context(), tenantID, &charge); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Charge %q created (%.2f)", charge.Name, charge.Amount)
	utils.RespondJSON(c, http.StatusCreated, "Charge created", charge)
}

// UpdateCharge
func (bc *BillingController) UpdateCharge(c *gin.Context) {
	var req struct {
		Name    string   `json:"name"`
		Amount  *float64 `json:"amount"`
		Enabled *bool    `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tenantID := tenantFrom(c)
	repos := bc.Store.Repos()
	charge, err := repos.AdditionalCharges.Get(c.Request.Context(), tenantID, c.Param("charge_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if req.Name != "" {
		charge.Name = req.Name
	}
	if req.Amount != nil {
		charge.Amount = *req.Amount
	}
	if req.Enabled != nil {
		charge.Enabled = *req.Enabled
	}
	charge.Touch(tenantID, time.Now())

	if err := repos.AdditionalCharges.Upsert(c.Request.Context(), tenantID, charge); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Charge updated", charge)
}

// DeleteCharge
func (bc *BillingController) DeleteCharge(c *gin.Context) {
	chargeID := c.Param("charge_id")
	if err := bc.Store.Repos().AdditionalCharges.Delete(c.Request.Context(), tenantFrom(c), chargeID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Charge deleted", gin.H{"id": chargeID})
}
