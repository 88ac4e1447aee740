package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rasoilabs/rasoipos/models"
	"github.com/rasoilabs/rasoipos/store"
	"github.com/rasoilabs/rasoipos/utils"
)

type MenuCategoryController struct {
	Store *store.Store
}

func NewMenuCategoryController(st *store.Store) *MenuCategoryController {
	return &MenuCategoryController{Store: st}
}

// GetAllCategories
func (mcc *MenuCategoryController) GetAllCategories(c *gin.Context) {
	categories, err := mcc.Store.Repos().MenuCategories.List(c.Request.Context(), tenantFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All menu categories", categories)
}

// CreateCategory
func (mcc *MenuCategoryController) CreateCategory(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		SortOrder int    `json:"sortOrder"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tenantID := tenantFrom(c)
	category := models.MenuCategory{Name: req.Name, SortOrder: req.SortOrder}
	category.Touch(tenantID, time.Now())

	if err := mcc.Store.Repos().MenuCategories.Upsert(c.Request.Context(), tenantID, &category); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Menu category %q created", category.Name)
	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

// UpdateCategory
func (mcc *MenuCategoryController) UpdateCategory(c *gin.Context) {
	var req struct {
		Name      string `json:"name"`
		SortOrder *int   `json:"sortOrder"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tenantID := tenantFrom(c)
	repos := mcc.Store.Repos()
	category, err := repos.MenuCategories.Get(c.Request.Context(), tenantID, c.Param("cat_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if req.Name != "" {
		category.Name = req.Name
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}
	category.Touch(tenantID, time.Now())

	if err := repos.MenuCategories.Upsert(c.Request.Context(), tenantID, category); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category updated", category)
}

// DeleteCategory
func (mcc *MenuCategoryController) DeleteCategory(c *gin.Context) {
	catID := c.Param("cat_id")
	if err := mcc.Store.Repos().MenuCategories.Delete(c.Request.Context(), tenantFrom(c), catID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("Menu category %s deleted", catID)
	utils.RespondJSON(c, http.StatusOK, "Category deleted", gin.H{"id": catID})
}
