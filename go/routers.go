package inventoryserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BasePath prefixes every inventory route.
const BasePath = "/api/inventory"

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the API handlers mounted by the router.
type ApiHandleFunctions struct {
	// Routes for the InventoryAPI part of the API
	InventoryAPI InventoryAPI
	// Health answers liveness probes; nil uses a static ok.
	Health gin.HandlerFunc
	// Metrics exposes process metrics; nil leaves /metrics unmounted.
	Metrics http.Handler
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		router.Handle(route.Method, route.Pattern, route.HandlerFunc)
	}
	health := handleFunctions.Health
	if health == nil {
		health = func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) }
	}
	router.GET("/healthz", health)
	if handleFunctions.Metrics != nil {
		router.GET("/metrics", gin.WrapH(handleFunctions.Metrics))
	}
	return router
}

// DefaultHandleFunc answers routes without a handler.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	api := &handleFunctions.InventoryAPI
	return []Route{
		{"ListItems", http.MethodGet, BasePath + "/items", api.ListItems},
		{"AddItem", http.MethodPost, BasePath + "/items", api.AddItem},
		{"GetItemsNeedingReorder", http.MethodGet, BasePath + "/items/reorder-needed", api.GetItemsNeedingReorder},
		{"GetItemsNearingExpiration", http.MethodGet, BasePath + "/items/expiring-soon", api.GetItemsNearingExpiration},
		{"GetTotalInventoryValue", http.MethodGet, BasePath + "/items/total-value", api.GetTotalInventoryValue},
		{"ListItemsByCategory", http.MethodGet, BasePath + "/items/category/:category", api.ListItemsByCategory},
		{"GetDemandForecast", http.MethodGet, BasePath + "/items/forecast/:productName", api.GetDemandForecast},
		{"OptimizeStock", http.MethodPost, BasePath + "/items/optimize/:productName", api.OptimizeStock},
		{"GetItemByID", http.MethodGet, BasePath + "/items/:id", api.GetItemByID},
		{"UpdateItem", http.MethodPut, BasePath + "/items/:id", api.UpdateItem},
		{"DeleteItem", http.MethodDelete, BasePath + "/items/:id", api.DeleteItem},
		{"ReduceStock", http.MethodPatch, BasePath + "/items/:id/reduce", api.ReduceStock},
		{"ReduceStockLegacy", http.MethodPut, BasePath + "/items/:id/reduce", api.ReduceStock},
		{"CheckReorderNeeded", http.MethodGet, BasePath + "/items/:id/reorder", api.CheckReorderNeeded},
		{"GetForecastInsights", http.MethodGet, BasePath + "/insights/:kind", api.GetForecastInsights},
	}
}
