package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/course-catalog/internal/config"
	"github.com/stemsi/course-catalog/internal/handler"
	"github.com/stemsi/course-catalog/internal/middleware"
	"github.com/stemsi/course-catalog/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Course *handler.CourseHandler
	Page   *handler.PageHandler
	Stats  *handler.StatsHandler
	WS     *handler.WSHandler
}

// SetupRouter configures the page, API and WebSocket routes.
// submitLimiter guards the routes that append to the catalog; nil disables it.
func SetupRouter(
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
	submitLimiter *middleware.RateLimiter,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Brotli())

	router.SetHTMLTemplate(handler.Templates())

	submit := []gin.HandlerFunc{}
	if submitLimiter != nil {
		submit = append(submit, submitLimiter.Middleware())
	}

	// Health check.
	router.GET("/health", handlers.Course.Health)

	// ─── 1. HTML Pages ─────────────────────────────────────────────────
	pages := router.Group("/")
	pages.Use(middleware.NoStore())
	{
		pages.GET("/", handlers.Page.Index)
		pages.GET("/catalog", handlers.Page.Catalog)
		pages.GET("/course/:code", handlers.Page.CourseDetails)
		pages.GET("/add-course", handlers.Page.AddCourseForm)
		pages.POST("/add-course", append(submit, handlers.Page.AddCourse)...)
	}

	// ─── 2. JSON API ───────────────────────────────────────────────────
	api := router.Group("/api/v1")
	{
		api.GET("/courses", handlers.Course.ListCourses)
		api.GET("/courses/:code", handlers.Course.GetCourse)
		api.POST("/courses", append(submit, handlers.Course.CreateCourse)...)
		api.GET("/stats", middleware.NoStore(), handlers.Stats.GetStats)
	}

	// ─── 3. WebSocket ──────────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/catalog", handlers.WS.CatalogStream)
	}

	return router
}
