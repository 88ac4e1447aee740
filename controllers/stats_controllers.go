package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rasoilabs/rasoipos/store"
	"github.com/rasoilabs/rasoipos/utils"
)

// StatsController aggregates the day's numbers for the dashboard
// screen. Reads only; all figures come straight from the local store.
type StatsController struct {
	Store *store.Store
}

func NewStatsController(st *store.Store) *StatsController {
	return &StatsController{Store: st}
}

// TodayStats -> today's order counts, revenue by payment method,
// expenses, table occupancy and the outstanding credit book.
func (sc *StatsController) TodayStats(c *gin.Context) {
	now := time.Now()
	day, err := sc.Store.Repos().DayStats(c.Request.Context(), tenantFrom(c), now)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var stats struct {
		Date   string `json:"date"`
		Orders struct {
			Today     int64 `json:"today"`
			Open      int64 `json:"open"`
			Served    int64 `json:"served"`
			Cancelled int64 `json:"cancelled"`
		} `json:"orders"`
		Revenue struct {
			Today    float64            `json:"today"`
			ByMethod map[string]float64 `json:"byMethod"`
		} `json:"revenue"`
		ExpensesToday     float64 `json:"expensesToday"`
		CreditOutstanding float64 `json:"creditOutstanding"`
		Tables            struct {
			Available int64 `json:"available"`
			Busy      int64 `json:"busy"`
		} `json:"tables"`
	}
	stats.Date = now.Format("2006-01-02")
	stats.Orders.Today = day.OrdersToday
	stats.Orders.Open = day.OrdersOpen
	stats.Orders.Served = day.OrdersServed
	stats.Orders.Cancelled = day.OrdersCancelled
	stats.Revenue.Today = day.RevenueToday
	stats.Revenue.ByMethod = day.RevenueByMethod
	stats.ExpensesToday = day.ExpensesToday
	stats.CreditOutstanding = day.CreditOutstanding
	stats.Tables.Available = day.TablesAvailable
	stats.Tables.Busy = day.TablesBusy

	utils.RespondJSON(c, http.StatusOK, "Today's stats", stats)
}
