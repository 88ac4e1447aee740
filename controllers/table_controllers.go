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

// TableController manages the floor plan. Occupancy status is owned
// by the order lifecycle; this controller only edits the layout.
type TableController struct {
	Store *store.Store
}

func NewTableController(st *store.Store) *TableController {
	return &TableController{Store: st}
}

// CreateTable -> add a table to the floor plan.
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Capacity int    `json:"capacity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tenantID := tenantFrom(c)
	table := models.Table{
		Name:     req.Name,
		Capacity: req.Capacity,
		Status:   models.TableAvailable,
	}
	table.Touch(tenantID, time.Now())

	if err := tc.Store.Repos().Tables.Upsert(c.Request.Context(), tenantID, &table); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Table %q created", table.Name)
	utils.RespondJSON(c, http.StatusCreated, "Table created", table)
}

// GetAllTables -> the full floor plan with live status.
func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Store.Repos().Tables.List(c.Request.Context(), tenantFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTableByID -> one table.
func (tc *TableController) GetTableByID(c *gin.Context) {
	table, err := tc.Store.Repos().Tables.Get(c.Request.Context(), tenantFrom(c), c.Param("table_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// UpdateTable -> rename or resize; status stays untouched.
func (tc *TableController) UpdateTable(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Capacity *int   `json:"capacity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tenantID := tenantFrom(c)
	repos := tc.Store.Repos()
	table, err := repos.Tables.Get(c.Request.Context(), tenantID, c.Param("table_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if req.Name != "" {
		table.Name = req.Name
	}
	if req.Capacity != nil {
		table.Capacity = *req.Capacity
	}
	table.Touch(tenantID, time.Now())

	if err := repos.Tables.Upsert(c.Request.Context(), tenantID, table); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// DeleteTable -> remove a table, refused while an open dine-in order
// occupies it.
func (tc *TableController) DeleteTable(c *gin.Context) {
	tenantID := tenantFrom(c)
	tableID := c.Param("table_id")
	repos := tc.Store.Repos()

	open, err := repos.Orders.OpenDineInByTable(c.Request.Context(), tenantID, tableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if len(open) > 0 {
		respondServiceError(c, services.ErrTableBusy)
		return
	}

	if err := repos.Tables.Delete(c.Request.Context(), tenantID, tableID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Table %s deleted", tableID)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": tableID})
}
