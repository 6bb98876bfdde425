package http

import (
	"github.com/gin-gonic/gin"

	"github.com/fittrack/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, tokens *TokenIssuer) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", handler.Register)
			auth.POST("/login", handler.Login)
		}

		authed := v1.Group("")
		authed.Use(AuthMiddleware(tokens))
		{
			authed.GET("/profile", handler.GetProfile)
			authed.PUT("/profile", handler.SaveProfile)

			meals := authed.Group("/meals")
			{
				meals.POST("", handler.AnalyzeMeal)
				meals.GET("", handler.ListMeals)
				meals.GET("/:id", handler.GetMeal)
				meals.POST("/:id/corrections", handler.CorrectMeal)
				meals.GET("/:id/corrections", handler.ListCorrections)
			}

			plans := authed.Group("/plans")
			{
				plans.POST("/workout", handler.GenerateWorkoutPlan)
				plans.GET("/workout", handler.GetWorkoutPlan)
			}

			authed.GET("/targets/diet", handler.DietTargets)
		}
	}

	return router
}
