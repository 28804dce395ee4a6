package router

import (
	"net/http"

	"buyinbuyout/internal/handler"
	"buyinbuyout/internal/metrics"
	"buyinbuyout/internal/middleware"
	"buyinbuyout/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Deps are the collaborators the HTTP surface is assembled from
type Deps struct {
	Log            logrus.FieldLogger
	Secret         []byte
	CORSOrigins    []string
	AuthLimiter    *middleware.RateLimiter
	Hub            *websocket.Hub
	AuthHandler    *handler.AuthHandler
	RequestHandler *handler.PurchaseRequestHandler
}

// New builds the gin engine with middleware, infrastructure routes and API routes
func New(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(d.Log))
	router.Use(middleware.Metrics())

	corsConfig := cors.DefaultConfig()
	if len(d.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = d.CORSOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	if d.Hub != nil {
		router.GET("/ws", func(c *gin.Context) {
			websocket.ServeWs(d.Hub, c, d.Secret)
		})
	}

	limit := func(c *gin.Context) { c.Next() }
	if d.AuthLimiter != nil {
		limit = d.AuthLimiter.Handler()
	}
	requireAuth := middleware.RequireAuth(d.Secret)

	api := router.Group("")
	d.AuthHandler.RegisterRoutes(api, limit, requireAuth)
	d.RequestHandler.RegisterRoutes(api, requireAuth)

	return router
}
