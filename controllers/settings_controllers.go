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

// SettingsController serves the three singletons: restaurant info and
// payment settings (replicated) and device settings (local-only).
// Singleton rows live under id == tenant id.
type SettingsController struct {
	Store *store.Store
}

func NewSettingsController(st *store.Store) *SettingsController {
	return &SettingsController{Store: st}
}

// GetRestaurantInfo
func (sc *SettingsController) GetRestaurantInfo(c *gin.Context) {
	tenantID := tenantFrom(c)
	info, err := sc.Store.Repos().RestaurantInfo.Get(c.Request.Context(), tenantID, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondJSON(c, http.StatusOK, "Restaurant info", models.RestaurantInfo{})
			return
		}
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant info", info)
}

// UpdateRestaurantInfo -> full replacement of the bill header block.
func (sc *SettingsController) UpdateRestaurantInfo(c *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required"`
		Address string `json:"address"`
		Phone   string `json:"phone"`
		Email   string `json:"email"`
		GSTIN   string `json:"gstin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tenantID := tenantFrom(c)
	info := models.RestaurantInfo{
		SyncMeta: models.SyncMeta{ID: tenantID},
		Name:     req.Name,
		Address:  req.Address,
		Phone:    req.Phone,
		Email:    req.Email,
		GSTIN:    req.GSTIN,
	}
	info.Touch(tenantID, time.Now())

	if err := sc.Store.Repos().RestaurantInfo.Upsert(c.Request.Context(), tenantID, &info); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Restaurant info updated: %q", info.Name)
	utils.RespondJSON(c, http.StatusOK, "Restaurant info updated", info)
}

// GetPaymentSettings
func (sc *SettingsController) GetPaymentSettings(c *gin.Context) {
	tenantID := tenantFrom(c)
	settings, err := sc.Store.Repos().PaymentSettings.Get(c.Request.Context(), tenantID, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondJSON(c, http.StatusOK, "Payment settings", models.PaymentSettings{AcceptCash: true})
			return
		}
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment settings", settings)
}

// UpdatePaymentSettings -> full replacement; absent booleans mean off.
func (sc *SettingsController) UpdatePaymentSettings(c *gin.Context) {
	var req struct {
		UPIID       string `json:"upiId"`
		AcceptCash  bool   `json:"acceptCash"`
		AcceptUPI   bool   `json:"acceptUpi"`
		AcceptCard  bool   `json:"acceptCard"`
		AllowCredit bool   `json:"allowCredit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tenantID := tenantFrom(c)
	settings := models.PaymentSettings{
		SyncMeta:    models.SyncMeta{ID: tenantID},
		UPIID:       req.UPIID,
		AcceptCash:  req.AcceptCash,
		AcceptUPI:   req.AcceptUPI,
		AcceptCard:  req.AcceptCard,
		AllowCredit: req.AllowCredit,
	}
	settings.Touch(tenantID, time.Now())

	if err := sc.Store.Repos().PaymentSettings.Upsert(c.Request.Context(), tenantID, &settings); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment settings updated", settings)
}

// GetDeviceSettings -> local printing and currency preferences.
func (sc *SettingsController) GetDeviceSettings(c *gin.Context) {
	tenantID := tenantFrom(c)
	settings, err := sc.Store.Repos().RestaurantSettings.Get(c.Request.Context(), tenantID, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondJSON(c, http.StatusOK, "Device settings", models.DefaultRestaurantSettings(tenantID))
			return
		}
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Device settings", settings)
}

// UpdateDeviceSettings -> partial update; the PIN hash is managed by
// the auth endpoints and never touched here.
func (sc *SettingsController) UpdateDeviceSettings(c *gin.Context) {
	var req struct {
		CurrencySymbol string  `json:"currencySymbol"`
		ReceiptFooter  *string `json:"receiptFooter"`
		KOTEnabled     *bool   `json:"kotEnabled"`
		PrinterWidth   *int    `json:"printerWidth"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tenantID := tenantFrom(c)
	repos := sc.Store.Repos()
	settings, err := repos.RestaurantSettings.Get(c.Request.Context(), tenantID, tenantID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			respondServiceError(c, err)
			return
		}
		settings = models.DefaultRestaurantSettings(tenantID)
	}

	if req.CurrencySymbol != "" {
		settings.CurrencySymbol = req.CurrencySymbol
	}
	if req.ReceiptFooter != nil {
		settings.ReceiptFooter = *req.ReceiptFooter
	}
	if req.KOTEnabled != nil {
		settings.KOTEnabled = *req.KOTEnabled
	}
	if req.PrinterWidth != nil {
		settings.PrinterWidth = *req.PrinterWidth
	}
	settings.Touch(tenantID, time.Now())

	if err := repos.RestaurantSettings.Upsert(c.Request.Context(), tenantID, settings); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Device settings updated", settings)
}
