package routes

import (
	"time"

	"rishta/handlers"
	"rishta/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(h *handlers.Handler, allowedOrigins []string) *gin.Engine {
	router := gin.Default()

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Rishta API is running",
			"time":    time.Now().Unix(),
		})
	})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Auth endpoints are public but rate limited per IP to slow down
	// code guessing and credential stuffing.
	authLimiter := middleware.NewIPRateLimiter(30, time.Minute)
	auth := router.Group("/api/auth")
	auth.Use(middleware.RateLimit(authLimiter))
	auth.POST("/register", h.Register)
	auth.POST("/verify-email", h.VerifyEmail)
	auth.POST("/resend-code", h.ResendCode)
	auth.POST("/login", h.Login)

	protected := router.Group("/api")
	protected.Use(middleware.JWTAuthMiddleware(h.JWTSecret))

	// Profile
	protected.GET("/profile", h.GetProfile)
	protected.PUT("/profile/update", h.UpdateProfile)
	protected.DELETE("/profile", h.DeleteAccount)

	// Browse
	protected.GET("/browse/profiles", h.GetProfiles)
	protected.POST("/browse/profiles/filter", h.GetFilteredProfiles)
	protected.GET("/browse/profile/:id", h.GetProfileByID)
	protected.GET("/browse/profile-with-status/:id", h.GetProfileWithStatus)

	// Connections
	protected.GET("/connections/status", h.GetConnectionStatuses)
	protected.POST("/connections/request", h.SendConnectionRequest)
	protected.GET("/connections/pending", h.GetPendingRequests)
	protected.GET("/connections/sent", h.GetSentRequests)
	protected.GET("/connections/my-connections", h.GetMyConnections)
	protected.PUT("/connections/accept/:id", h.AcceptConnectionRequest)
	protected.PUT("/connections/decline/:id", h.DeclineConnectionRequest)

	// City autocomplete
	protected.GET("/cities/search", h.SearchCities)

	// Admin
	admin := protected.Group("/admin")
	admin.Use(middleware.AdminRequired())
	admin.GET("/users", h.GetAllUsers)
	admin.GET("/statistics", h.GetStatistics)

	router.NoRoute(func(c *gin.Context) {
		if len(c.Request.URL.Path) >= 4 && c.Request.URL.Path[:4] == "/api" {
			c.JSON(404, gin.H{
				"error": "Endpoint not found",
				"path":  c.Request.URL.Path,
			})
			return
		}
		c.Next()
	})

	return router
}
