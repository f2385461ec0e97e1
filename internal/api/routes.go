package api

import (
	"net/http"

	"github.com/du-phan/resilio-app-sub001/internal/service"
	"github.com/du-phan/resilio-app-sub001/internal/telemetry"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	profileService service.ProfileService,
	activityService service.ActivityService,
	syncService service.SyncService,
	planService service.PlanService,
) {

	authHandler := NewAuthHandler(authService)
	profileHandler := NewProfileHandler(profileService)
	activityHandler := NewActivityHandler(activityService)
	metricsHandler := NewMetricsHandler(syncService)
	planHandler := NewPlanHandler(planService)
	suggestionHandler := NewSuggestionHandler(planService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Prometheus scrape endpoint, outside the versioned API.
	router.GET("/metrics", telemetry.Handler())

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", profileHandler.GetMe)
		protected.PUT("/profile", profileHandler.UpdateProfile)

		// --- Activity Routes ---
		activityGroup := protected.Group("/activities")
		{
			activityGroup.POST("", activityHandler.IngestActivities)
			activityGroup.GET("", activityHandler.ListActivities)
			activityGroup.POST("/exports", activityHandler.RequestExportUpload)
		}

		// --- Metrics & Refresh Routes ---
		protected.GET("/metrics/daily", metricsHandler.GetDailyMetrics)
		protected.POST("/refresh", metricsHandler.Refresh)

		// --- Plan Routes ---
		planGroup := protected.Group("/plans")
		{
			planGroup.GET("/preview", planHandler.PreviewPlan)
			planGroup.POST("", planHandler.CreatePlan)
			planGroup.GET("/active", planHandler.GetActivePlan)
			planGroup.GET("/active/validation", planHandler.ValidateActivePlan)
		}

		// --- Suggestion Routes ---
		suggestionGroup := protected.Group("/suggestions")
		{
			suggestionGroup.GET("", suggestionHandler.ListSuggestions)
			suggestionGroup.POST("/:id/accept", suggestionHandler.AcceptSuggestion)
			suggestionGroup.POST("/:id/decline", suggestionHandler.DeclineSuggestion)
		}
	}
}
