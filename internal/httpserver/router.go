package httpserver

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CSCI-GA-2820-FA25-003/shopcarts-sub000/internal/domain"
)

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery(), cors.Default())

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &shopcartHandlers{svc: deps.Shopcarts, logger: logger}

	carts := router.Group("/shopcarts")
	carts.POST("", h.create)
	carts.GET("", h.list)
	carts.GET("/:customer_id", h.get)
	carts.PUT("/:customer_id", h.update)
	carts.PATCH("/:customer_id", h.update)
	carts.DELETE("/:customer_id", h.delete)

	carts.PUT("/:customer_id/checkout", h.transitionTo(domain.StatusAbandoned))
	carts.PATCH("/:customer_id/checkout", h.transitionTo(domain.StatusAbandoned))
	carts.PATCH("/:customer_id/cancel", h.transitionTo(domain.StatusAbandoned))
	carts.PATCH("/:customer_id/lock", h.transitionTo(domain.StatusLocked))
	carts.PATCH("/:customer_id/expire", h.transitionTo(domain.StatusExpired))
	carts.PATCH("/:customer_id/reactivate", h.transitionTo(domain.StatusActive))

	carts.GET("/:customer_id/totals", h.totals)

	carts.POST("/:customer_id/items", h.addItem)
	carts.GET("/:customer_id/items", h.listItems)
	carts.GET("/:customer_id/items/:item_id", h.getItem)
	carts.PUT("/:customer_id/items/:item_id", h.updateItem)
	carts.PATCH("/:customer_id/items/:item_id", h.updateItem)
	carts.DELETE("/:customer_id/items/:item_id", h.removeItem)

	return router
}
