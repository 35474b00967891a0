package api

import (
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// NewRouter monta o gin.Engine com middlewares de log, recovery e tracing.
func NewRouter(handler *InventoryHandler, logger *zap.Logger, serviceName string) *gin.Engine {
	r := gin.New()
	r.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(logger, true))
	r.Use(otelgin.Middleware(serviceName))

	r.GET("/health", handler.HealthCheck)

	api := r.Group("/api")
	{
		api.GET("/products", handler.ListProducts)
		api.POST("/products", handler.CreateProduct)
		api.GET("/products/search", handler.SearchProducts)
		api.GET("/products/:id", handler.GetProduct)
		api.PUT("/products/:id", handler.UpdateProduct)
		api.DELETE("/products/:id", handler.DeleteProduct)
		api.PUT("/products/:id/price", handler.UpdatePrice)
		api.PUT("/products/:id/quantity", handler.UpdateQuantity)

		api.GET("/orders", handler.ListOrders)
		api.POST("/orders", handler.EnqueueOrder)
		api.POST("/orders/process", handler.ProcessOrder)

		api.POST("/operations/undo", handler.Undo)
		api.GET("/operations/recent", handler.RecentOperations)

		api.GET("/statistics", handler.Statistics)
	}

	return r
}
