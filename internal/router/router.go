package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/daleel/daleel-backend/internal/config"
	"github.com/daleel/daleel-backend/internal/handler"
	"github.com/daleel/daleel-backend/internal/middleware"
	"github.com/daleel/daleel-backend/internal/model"
	"github.com/daleel/daleel-backend/internal/response"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Course   *handler.CourseHandler
	Material *handler.MaterialHandler
	Review   *handler.ReviewHandler
	Feed     *handler.FeedHandler
	System   *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	auth middleware.Authenticator,
	authLimiter *middleware.RateLimiter,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID, "Content-Disposition", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(
		response.RequestIDMiddleware(),
		middleware.RequestLogger(log),
		gin.Recovery(),
		middleware.BrotliWithConfig(middleware.BrotliConfig{
			Quality:   middleware.DefaultBrotliConfig.Quality,
			MinLength: middleware.DefaultBrotliConfig.MinLength,
			Skipper:   skipCompression,
		}),
	)

	router.GET("/health", handlers.System.Health)

	requireAuth := middleware.RequireAuth(auth)

	// ─── 1. Users (register/login public and rate limited) ─────────────
	users := router.Group("/api/v1/users")
	{
		users.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)
		users.POST("/login", authLimiter.Middleware(), middleware.NoStore(), handlers.Auth.Login)

		// Profile validates the Authorization header itself.
		users.GET("/profile", handlers.Auth.Profile)

		users.GET("/:id", requireAuth, handlers.User.GetByID)
		users.PUT("/:id", requireAuth, handlers.User.Update)
		users.DELETE("/:id", requireAuth, handlers.User.Delete)
	}

	// ─── 2. Courses & GPA ──────────────────────────────────────────────
	courses := router.Group("/api/v1/courses")
	courses.Use(requireAuth)
	{
		courses.GET("", handlers.Course.List)
		courses.POST("", handlers.Course.Create)
		courses.GET("/mine", handlers.Course.Mine)
		courses.POST("/gpa", handlers.Course.CalculateGPA)
		courses.GET("/transcript", middleware.NoStore(), handlers.Course.Transcript)
		courses.GET("/code/:code", handlers.Course.GetByCode)
		courses.GET("/department/:department", handlers.Course.ListByDepartment)
		courses.GET("/:id", handlers.Course.GetByID)
		courses.PUT("/:id", handlers.Course.Update)
		courses.DELETE("/:id", handlers.Course.Delete)
	}

	// ─── 3. Materials (course listing and downloads are public) ────────
	materials := router.Group("/api/v1/materials")
	{
		materials.GET("/course/:code", handlers.Material.ListByCourse)
		materials.GET("/:id/download", middleware.PrivateCache(300), handlers.Material.Download)

		materials.GET("", requireAuth, handlers.Material.List)
		materials.POST("", requireAuth, handlers.Material.Upload)
		materials.GET("/user/:user_id", requireAuth, handlers.Material.ListByUser)
		materials.GET("/:id", requireAuth, handlers.Material.GetByID)
		materials.PUT("/:id", requireAuth, handlers.Material.Update)
		materials.DELETE("/:id", requireAuth, handlers.Material.Delete)
	}

	// ─── 4. Professor reviews ──────────────────────────────────────────
	reviews := router.Group("/api/v1/reviews")
	reviews.Use(requireAuth)
	{
		reviews.POST("", handlers.Review.Create)
		reviews.PUT("/:id", handlers.Review.Update)
		reviews.DELETE("/:id", handlers.Review.Delete)
		reviews.GET("/course/:code", handlers.Review.ListByCourse)
		reviews.GET("/professor", handlers.Review.SearchByProfessor)
		reviews.GET("/professor/average", handlers.Review.AverageRating)
	}

	// ─── 5. Admin ──────────────────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(requireAuth, middleware.RequireRole(model.RoleAdmin))
	{
		adminAPI.GET("/system/metrics", handlers.System.MetricsSSE)
	}

	// ─── 6. WebSocket (token in query string) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(auth))
	{
		ws.GET("/courses/:code/materials", handlers.Feed.CourseMaterials)
	}

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	return router
}

// skipCompression leaves file responses alone; they are already compressed
// or streamed straight from storage.
func skipCompression(c *gin.Context) bool {
	path := c.FullPath()
	return strings.HasSuffix(path, "/download") || strings.HasSuffix(path, "/transcript")
}
