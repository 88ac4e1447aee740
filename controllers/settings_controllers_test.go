package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/rasoilabs/rasoipos/controllers"
	"github.com/rasoilabs/rasoipos/models"
	"github.com/rasoilabs/rasoipos/store"
)

func setupSettingsRouter(st *store.Store, tenant string) *gin.Engine {
	r := newRouter(tenant)
	settingsCtrl := controllers.NewSettingsController(st)

	r.GET("/settings/restaurant", settingsCtrl.GetRestaurantInfo)
	r.PUT("/settings/restaurant", settingsCtrl.UpdateRestaurantInfo)
	r.GET("/settings/payments", settingsCtrl.GetPaymentSettings)
	r.PUT("/settings/payments", settingsCtrl.UpdatePaymentSettings)
	r.GET("/settings/device", settingsCtrl.GetDeviceSettings)
	r.PATCH("/settings/device", settingsCtrl.UpdateDeviceSettings)
	return r
}

func TestRestaurantInfoRoundTrip(t *testing.T) {
	st := newTestStore(t)
	r := setupSettingsRouter(st, testTenant)

	// Unset info reads back as an empty block, not an error.
	w := doJSON(t, r, "GET", "/settings/restaurant", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var info models.RestaurantInfo
	decode(t, w, &info)
	assert.Empty(t, info.Name)

	// Name is required on update.
	w = doJSON(t, r, "PUT", "/settings/restaurant", map[string]interface{}{
		"address": "12 MG Road",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, "PUT", "/settings/restaurant", map[string]interface{}{
		"name":    "Dosa Corner",
		"address": "12 MG Road",
		"phone":   "080-1234",
		"gstin":   "29ABCDE1234F1Z5",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "GET", "/settings/restaurant", nil)
	decode(t, w, &info)
	assert.Equal(t, "Dosa Corner", info.Name)
	assert.Equal(t, "29ABCDE1234F1Z5", info.GSTIN)
	assert.Equal(t, testTenant, info.ID, "singleton row sits under the tenant id")
}

func TestPaymentSettingsFullReplacement(t *testing.T) {
	st := newTestStore(t)
	r := setupSettingsRouter(st, testTenant)

	// Defaults before the first write: cash only.
	w := doJSON(t, r, "GET", "/settings/payments", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var settings models.PaymentSettings
	decode(t, w, &settings)
	assert.True(t, settings.AcceptCash)
	assert.False(t, settings.AcceptUPI)

	w = doJSON(t, r, "PUT", "/settings/payments", map[string]interface{}{
		"acceptCash":  true,
		"acceptUpi":   true,
		"upiId":       "dosacorner@upi",
		"allowCredit": true,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// PUT replaces the whole block: leaving acceptUpi out turns it off.
	w = doJSON(t, r, "PUT", "/settings/payments", map[string]interface{}{
		"acceptCash": true,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "GET", "/settings/payments", nil)
	decode(t, w, &settings)
	assert.True(t, settings.AcceptCash)
	assert.False(t, settings.AcceptUPI)
	assert.False(t, settings.AllowCredit)
	assert.Empty(t, settings.UPIID)
}

func TestDeviceSettingsPartialUpdate(t *testing.T) {
	st := newTestStore(t)
	r := setupSettingsRouter(st, testTenant)

	// Defaults before the first write.
	w := doJSON(t, r, "GET", "/settings/device", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var settings models.RestaurantSettings
	decode(t, w, &settings)
	assert.Equal(t, "₹", settings.CurrencySymbol)
	assert.True(t, settings.KOTEnabled)
	assert.Equal(t, 32, settings.PrinterWidth)

	w = doJSON(t, r, "PATCH", "/settings/device", map[string]interface{}{
		"receiptFooter": "Thank you, visit again!",
		"printerWidth":  48,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// PATCH keeps everything it was not given.
	w = doJSON(t, r, "GET", "/settings/device", nil)
	decode(t, w, &settings)
	assert.Equal(t, "₹", settings.CurrencySymbol)
	assert.True(t, settings.KOTEnabled)
	assert.Equal(t, 48, settings.PrinterWidth)
	assert.Equal(t, "Thank you, visit again!", settings.ReceiptFooter)

	// KOT printing can be switched off on its own.
	w = doJSON(t, r, "PATCH", "/settings/device", map[string]interface{}{
		"kotEnabled": false,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "GET", "/settings/device", nil)
	decode(t, w, &settings)
	assert.False(t, settings.KOTEnabled)
	assert.Equal(t, 48, settings.PrinterWidth)
}
