package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/rasoilabs/rasoipos/models"
	"github.com/rasoilabs/rasoipos/store"
	"github.com/rasoilabs/rasoipos/utils"
)

// AuthController handles owner PIN auth for the one tenant this
// install serves. The PIN hash lives in the local-only settings row
// and never leaves the device.
type AuthController struct {
	Store    *store.Store
	TenantID string
}

func NewAuthController(st *store.Store, tenantID string) *AuthController {
	return &AuthController{Store: st, TenantID: tenantID}
}

// Login -> verify the owner PIN, return a device JWT.
func (ac *AuthController) Login(c *gin.Context) {
	var req struct {
		PIN string `json:"pin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	settings, err := ac.Store.Repos().RestaurantSettings.Get(c.Request.Context(), ac.TenantID, ac.TenantID)
	if err != nil || settings.OwnerPINHash == "" {
		utils.RespondError(c, http.StatusConflict, errors.New("owner PIN is not set up yet"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(settings.OwnerPINHash), []byte(req.PIN)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid PIN"))
		return
	}

	token, err := utils.GenerateToken(ac.TenantID, "owner")
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Owner login for tenant %s", ac.TenantID)
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":    token,
		"tenantId": ac.TenantID,
	})
}

// SetupPIN -> first-run PIN creation. Rejected once a PIN exists;
// after that ChangePIN is the only way.
func (ac *AuthController) SetupPIN(c *gin.Context) {
	var req struct {
		PIN string `json:"pin" binding:"required,min=4"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	repos := ac.Store.Repos()
	settings, err := repos.RestaurantSettings.Get(c.Request.Context(), ac.TenantID, ac.TenantID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		settings = models.DefaultRestaurantSettings(ac.TenantID)
	}
	if settings.OwnerPINHash != "" {
		utils.RespondError(c, http.StatusConflict, errors.New("owner PIN already set"))
		return
	}

	if err := ac.savePIN(c, settings, req.PIN); err != nil {
		return
	}
	utils.InfoLogger.Printf("Owner PIN set for tenant %s", ac.TenantID)
	utils.RespondJSON(c, http.StatusCreated, "Owner PIN set", nil)
}

// ChangePIN -> authenticated PIN rotation, current PIN required.
func (ac *AuthController) ChangePIN(c *gin.Context) {
	var req struct {
		CurrentPIN string `json:"currentPin" binding:"required"`
		NewPIN     string `json:"newPin" binding:"required,min=4"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	settings, err := ac.Store.Repos().RestaurantSettings.Get(c.Request.Context(), ac.TenantID, ac.TenantID)
	if err != nil || settings.OwnerPINHash == "" {
		utils.RespondError(c, http.StatusConflict, errors.New("owner PIN is not set up yet"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(settings.OwnerPINHash), []byte(req.CurrentPIN)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid PIN"))
		return
	}

	if err := ac.savePIN(c, settings, req.NewPIN); err != nil {
		return
	}
	utils.InfoLogger.Printf("Owner PIN changed for tenant %s", ac.TenantID)
	utils.RespondJSON(c, http.StatusOK, "Owner PIN changed", nil)
}

func (ac *AuthController) savePIN(c *gin.Context, settings *models.RestaurantSettings, pin string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return err
	}
	settings.OwnerPINHash = string(hashed)
	settings.Touch(ac.TenantID, time.Now())

	if err := ac.Store.Repos().RestaurantSettings.Upsert(c.Request.Context(), ac.TenantID, settings); err != nil {
		respondServiceError(c, err)
		return err
	}
	return nil
}
