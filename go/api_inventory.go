package inventoryserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	itemmapper "github.com/Abka012/Odin-AI/internal/domains/inventory/adapters/http/mapper"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/application"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/domain"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/ports"
)

// InventoryAPI wires HTTP transport with the inventory service and workflows.
type InventoryAPI struct {
	service   ports.Service
	workflows ports.WorkflowOrchestrator
}

// NewInventoryAPI creates an InventoryAPI backed by the provided service.
// workflows may be nil, in which case optimization runs on the service directly.
func NewInventoryAPI(service ports.Service, workflows ports.WorkflowOrchestrator) InventoryAPI {
	return InventoryAPI{service: service, workflows: workflows}
}

// Get /api/inventory/items
// Lists every item
func (api *InventoryAPI) ListItems(c *gin.Context) {
	items, err := api.service.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemmapper.FromDomainItems(items))
}

// Get /api/inventory/items/:id
// Finds an item by id
func (api *InventoryAPI) GetItemByID(c *gin.Context) {
	item, err := api.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemmapper.FromDomainItem(item))
}

// Get /api/inventory/items/category/:category
// Lists items in a category, case-insensitively
func (api *InventoryAPI) ListItemsByCategory(c *gin.Context) {
	items, err := api.service.ListByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemmapper.FromDomainItems(items))
}

// Post /api/inventory/items
// Adds an item or restocks the existing item with the same product name
func (api *InventoryAPI) AddItem(c *gin.Context) {
	var payload itemmapper.ItemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	result, err := api.service.AddOrMergeItem(c.Request.Context(), itemmapper.ToDomainItem(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemmapper.FromAddResult(result))
}

// Put /api/inventory/items/:id
// Replaces an existing item
func (api *InventoryAPI) UpdateItem(c *gin.Context) {
	var payload itemmapper.ItemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	updated, err := api.service.UpdateItem(c.Request.Context(), c.Param("id"), itemmapper.ToDomainItem(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemmapper.FromDomainItem(updated))
}

// Delete /api/inventory/items/:id
// Deletes an item
func (api *InventoryAPI) DeleteItem(c *gin.Context) {
	if err := api.service.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Patch /api/inventory/items/:id/reduce
// Removes quantity units from stock
func (api *InventoryAPI) ReduceStock(c *gin.Context) {
	quantity, ok := parseFloatQuery(c, "quantity")
	if !ok {
		return
	}
	updated, err := api.service.ReduceStock(c.Request.Context(), c.Param("id"), quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemmapper.FromDomainItem(updated))
}

// Get /api/inventory/items/:id/reorder
// Reports whether the item is at or below its reorder threshold
func (api *InventoryAPI) CheckReorderNeeded(c *gin.Context) {
	needed, err := api.service.CheckReorderNeeded(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, needed)
}

// Get /api/inventory/items/forecast/:productName
// Returns the forecasted demand for a product
func (api *InventoryAPI) GetDemandForecast(c *gin.Context) {
	demand, err := api.service.GetDemandForecast(c.Request.Context(), c.Param("productName"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, demand)
}

// Post /api/inventory/items/optimize/:productName
// Raises stock to the forecasted demand when it falls short
func (api *InventoryAPI) OptimizeStock(c *gin.Context) {
	result, err := api.optimize(c.Request.Context(), c.Param("productName"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemmapper.FromOptimizationResult(result))
}

func (api *InventoryAPI) optimize(ctx context.Context, productName string) (*domain.OptimizationResult, error) {
	if api.workflows != nil {
		return api.workflows.OptimizeStock(ctx, productName)
	}
	return api.service.OptimizeStock(ctx, productName)
}

// Get /api/inventory/items/reorder-needed
// Lists items at or below their reorder threshold
func (api *InventoryAPI) GetItemsNeedingReorder(c *gin.Context) {
	items, err := api.service.ItemsNeedingReorder(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemmapper.FromDomainItems(items))
}

// Get /api/inventory/items/expiring-soon
// Lists items expiring within the given number of months
func (api *InventoryAPI) GetItemsNearingExpiration(c *gin.Context) {
	months := domain.DefaultExpirationHorizonMonths
	if raw := strings.TrimSpace(c.Query("months")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondServiceError(c, &application.ValidationError{Fields: map[string]string{"months": "must be an integer"}})
			return
		}
		months = parsed
	}
	items, err := api.service.ItemsNearingExpiration(c.Request.Context(), months)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemmapper.FromDomainItems(items))
}

// Get /api/inventory/items/total-value
// Sums price times stock level across all items
func (api *InventoryAPI) GetTotalInventoryValue(c *gin.Context) {
	total, err := api.service.TotalInventoryValue(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemmapper.TotalValueResponse{TotalValue: total})
}

// Get /api/inventory/insights/:kind
// Passes through one of the forecast service reports
func (api *InventoryAPI) GetForecastInsights(c *gin.Context) {
	rows, err := api.service.ForecastInsights(c.Request.Context(), ports.InsightKind(c.Param("kind")))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func parseFloatQuery(c *gin.Context, name string) (float64, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		respondServiceError(c, &application.ValidationError{Fields: map[string]string{name: "is required"}})
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		respondServiceError(c, &application.ValidationError{Fields: map[string]string{name: "must be a number: " + err.Error()}})
		return 0, false
	}
	return value, true
}
