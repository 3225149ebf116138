package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/franciscosanchezn/gin-pizza-shop/internal/auth"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/controllers"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/middleware"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/models"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers groups everything the router dispatches to
type Handlers struct {
	Pizzas  controllers.PizzaController
	Orders  *controllers.OrderController
	Auth    *controllers.AuthController
	Clients *controllers.ClientController
	OAuth   *auth.OAuthService
	// Ping reports storage health; nil skips the check
	Ping func(ctx context.Context) error
}

// NewRouter builds the engine with the shared middleware chain
func NewRouter(h Handlers, jwtSecret []byte, corsOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(), middleware.CORS(corsOrigins))
	SetupRoutes(router, h, jwtSecret)
	return router
}

// SetupRoutes defines the routes for the Gin router
func SetupRoutes(router *gin.Engine, h Handlers, jwtSecret []byte) {
	requireAuth := middleware.JWTAuth(jwtSecret)
	requireAdmin := middleware.RequireRole(models.RoleAdmin)

	router.GET("/health", healthCheckHandler(h.Ping))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	{
		pizzas := api.Group("/pizzas")
		{
			pizzas.GET("", h.Pizzas.GetAllPizzas)
			pizzas.GET("/:id", h.Pizzas.GetPizzaByID)
			pizzas.POST("", requireAuth, requireAdmin, h.Pizzas.CreatePizza)
			pizzas.PUT("/:id", requireAuth, requireAdmin, h.Pizzas.UpdatePizza)
			pizzas.DELETE("/:id", requireAuth, requireAdmin, h.Pizzas.DeletePizza)
		}

		orders := api.Group("/orders", requireAuth)
		{
			orders.POST("", h.Orders.CreateOrder)
			orders.GET("/myorders", h.Orders.GetMyOrders)
			orders.GET("/:id", h.Orders.GetOrderByID)
			orders.GET("", requireAdmin, h.Orders.GetAllOrders)
			orders.PUT("/:id/status", requireAdmin, h.Orders.UpdateOrderStatus)
		}

		authAPI := api.Group("/auth")
		{
			authAPI.POST("/register", h.Auth.Register)
			authAPI.POST("/login", h.Auth.Login)
			authAPI.GET("/profile", requireAuth, h.Auth.Profile)
		}

		if h.OAuth != nil {
			api.POST("/oauth/token", h.OAuth.HandleToken)
		}

		if h.Clients != nil {
			clients := api.Group("/clients", requireAuth, requireAdmin)
			{
				clients.POST("", h.Clients.CreateClient)
				clients.GET("", h.Clients.ListClients)
				clients.DELETE("/:id", h.Clients.DeleteClient)
			}
		}
	}
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service and its database are reachable
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   "gin-pizza-shop",
		})
	}
}
