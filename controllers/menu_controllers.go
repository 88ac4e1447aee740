package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rasoilabs/rasoipos/models"
	"github.com/rasoilabs/rasoipos/store"
	"github.com/rasoilabs/rasoipos/utils"
)

type MenuController struct {
	Store *store.Store
}

func NewMenuController(st *store.Store) *MenuController {
	return &MenuController{Store: st}
}

// GetAllMenus -> the full menu; ?category_id= narrows to one category.
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	items, err := mc.Store.Repos().MenuItems.List(c.Request.Context(), tenantFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if catID := c.Query("category_id"); catID != "" {
		filtered := items[:0]
		for _, it := range items {
			if it.CategoryID == catID {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}
	utils.RespondJSON(c, http.StatusOK, "All menus", items)
}

// GetMenuByID
func (mc *MenuController) GetMenuByID(c *gin.Context) {
	item, err := mc.Store.Repos().MenuItems.Get(c.Request.Context(), tenantFrom(c), c.Param("menu_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu detail", item)
}

// CreateMenu
func (mc *MenuController) CreateMenu(c *gin.Context) {
	var req struct {
		CategoryID  string  `json:"categoryId" binding:"required"`
		Name        string  `json:"name" binding:"required"`
		Price       float64 `json:"price"`
		IsAvailable *bool   `json:"isAvailable"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tenantID := tenantFrom(c)
	repos := mc.Store.Repos()
	if _, err := repos.MenuCategories.Get(c.Request.Context(), tenantID, req.CategoryID); err != nil {
		respondServiceError(c, err)
		return
	}

	item := models.MenuItem{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Price:       req.Price,
		IsAvailable: true,
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	item.Touch(tenantID, time.Now())

	if err := repos.MenuItems.Upsert(c.Request.Context(), tenantID, &item); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Menu item %q created (%.2f)", item.Name, item.Price)
	utils.RespondJSON(c, http.StatusCreated, "Menu created", item)
}

// UpdateMenu -> edit fields, including flipping availability.
func (mc *MenuController) UpdateMenu(c *gin.Context) {
	var req struct {
		CategoryID  string   `json:"categoryId"`
		Name        string   `json:"name"`
		Price       *float64 `json:"price"`
		IsAvailable *bool    `json:"isAvailable"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tenantID := tenantFrom(c)
	repos := mc.Store.Repos()
	item, err := repos.MenuItems.Get(c.Request.Context(), tenantID, c.Param("menu_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if req.CategoryID != "" {
		if _, err := repos.MenuCategories.Get(c.Request.Context(), tenantID, req.CategoryID); err != nil {
			respondServiceError(c, err)
			return
		}
		item.CategoryID = req.CategoryID
	}
	if req.Name != "" {
		item.Name = req.Name
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	item.Touch(tenantID, time.Now())

	if err := repos.MenuItems.Upsert(c.Request.Context(), tenantID, item); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu updated", item)
}

// DeleteMenu
func (mc *MenuController) DeleteMenu(c *gin.Context) {
	menuID := c.Param("menu_id")
	if err := mc.Store.Repos().MenuItems.Delete(c.Request.Context(), tenantFrom(c), menuID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("Menu item %s deleted", menuID)
	utils.RespondJSON(c, http.StatusOK, "Menu deleted", gin.H{"id": menuID})
}
