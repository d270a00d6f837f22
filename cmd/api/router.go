package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"personabot-backend/internal/shared/middleware"
	"personabot-backend/internal/shared/response"
	"personabot-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupPersonaRoutes(v1, c)
		setupLedgerRoutes(v1, c)
	}

	return router
}

// ========================================
// PERSONA ROUTES
// ========================================
func setupPersonaRoutes(v1 *gin.RouterGroup, c *container.Container) {
	personas := v1.Group("/personas")
	{
		personas.POST("", c.PersonaHandler.Create)
		personas.GET("", c.PersonaHandler.List)
		personas.GET("/public", c.PersonaHandler.ListPublic)
		personas.GET("/:id", c.PersonaHandler.GetByID)
		personas.PUT("/:id", c.PersonaHandler.Update)
		personas.DELETE("/:id", c.PersonaHandler.Delete)
		personas.GET("/:id/photo", c.PersonaHandler.GetPhoto)
		personas.POST("/:id/chat", c.PersonaHandler.RecordChat)
	}
}

// ========================================
// LEDGER ROUTES
// ========================================
func setupLedgerRoutes(v1 *gin.RouterGroup, c *container.Container) {
	ledger := v1.Group("/ledger")
	{
		ledger.GET("", c.LedgerHandler.List)
		ledger.GET("/:user_id", c.LedgerHandler.Show)
		ledger.PUT("/:user_id", c.LedgerHandler.Set)
		ledger.POST("/:user_id/add", c.LedgerHandler.Add)
		ledger.POST("/:user_id/spend", c.LedgerHandler.Spend)
	}

	orders := v1.Group("/orders")
	{
		orders.POST("", c.LedgerHandler.RecordOrder)
		orders.GET("/:id", c.LedgerHandler.GetOrder)
	}

	v1.GET("/users/:user_id/orders", c.LedgerHandler.ListOrders)
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checks := gin.H{
			"storage": c.Config.Storage.Type,
		}

		if err := c.UsersDB.HealthCheck(ctx.Request.Context()); err != nil {
			checks["users_db"] = "down"
			response.ServiceUnavailable(ctx, "users database unavailable")
			return
		}
		checks["users_db"] = "up"

		if err := c.PersonasDB.HealthCheck(ctx.Request.Context()); err != nil {
			checks["personas_db"] = "down"
			response.ServiceUnavailable(ctx, "personas database unavailable")
			return
		}
		checks["personas_db"] = "up"

		response.Success(ctx, http.StatusOK, gin.H{
			"status":  "healthy",
			"version": c.Config.App.Version,
			"checks":  checks,
		})
	}
}
