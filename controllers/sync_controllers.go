package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rasoilabs/rasoipos/services"
	"github.com/rasoilabs/rasoipos/store"
	"github.com/rasoilabs/rasoipos/utils"
)

type SyncController struct {
	Store     *store.Store
	Scheduler *services.SyncScheduler
}

func NewSyncController(st *store.Store, scheduler *services.SyncScheduler) *SyncController {
	return &SyncController{Store: st, Scheduler: scheduler}
}

// TriggerSync -> run a round now. The report comes back even when
// some classes failed; only an entirely failed round is an error.
func (sc *SyncController) TriggerSync(c *gin.Context) {
	if sc.Scheduler == nil {
		utils.RespondError(c, http.StatusServiceUnavailable, errors.New("sync is not configured"))
		return
	}

	report, err := sc.Scheduler.TriggerNow(c.Request.Context())
	switch {
	case errors.Is(err, services.ErrSyncBusy):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, services.ErrSyncFailed):
		utils.RespondJSON(c, http.StatusBadGateway, err.Error(), report)
	case err != nil:
		respondServiceError(c, err)
	default:
		utils.RespondJSON(c, http.StatusOK, "Sync round finished", report)
	}
}

// GetSyncStatus -> the last clean round marker and whether a round is
// running right now.
func (sc *SyncController) GetSyncStatus(c *gin.Context) {
	status := gin.H{
		"configured": sc.Scheduler != nil,
		"running":    sc.Scheduler != nil && sc.Scheduler.Running(),
		"lastSyncAt": nil,
	}

	state, err := sc.Store.Repos().SyncState.Get(c.Request.Context())
	switch {
	case err == nil:
		status["lastSyncAt"] = state.LastSyncAt
	case !errors.Is(err, store.ErrNotFound):
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Sync status", status)
}
