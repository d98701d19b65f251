package routes

import (
	"net/http"
	"time"

	"github.com/Erick01081/ComisionTecni/config"
	"github.com/Erick01081/ComisionTecni/controllers"
	"github.com/Erick01081/ComisionTecni/metrics"
	"github.com/Erick01081/ComisionTecni/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Dependencies are the wired handlers the router exposes.
type Dependencies struct {
	Config     config.Config
	Log        *logrus.Logger
	Users      middleware.UserLookup
	Auth       *controllers.AuthController
	Deliveries *controllers.DeliveryController
	Reports    *controllers.ReportController
	Dashboard  *controllers.DashboardController
	Digests    *controllers.DigestController
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(metrics.Middleware())
	r.Use(config.PerformanceLogger(deps.Log, deps.Config.SlowRequest))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.Auth(deps.Config.JWTSecret, deps.Users)

	auth := r.Group("/auth")
	{
		auth.POST("/register", deps.Auth.Register)
		auth.POST("/login", deps.Auth.Login)
		auth.POST("/logout", deps.Auth.Logout)
		auth.GET("/me", requireAuth, deps.Auth.Me)
		auth.GET("/profile", requireAuth, deps.Auth.GetProfile)
		auth.PUT("/profile", requireAuth, deps.Auth.UpdateProfile)
	}

	api := r.Group("/api")
	api.Use(requireAuth)
	{
		api.GET("/dashboard", deps.Dashboard.GetDashboardOverview)

		deliveries := api.Group("/deliveries")
		{
			deliveries.POST("", deps.Deliveries.CreateDelivery)
			deliveries.GET("", deps.Deliveries.GetDeliveries)
			deliveries.GET("/:id", deps.Deliveries.GetDelivery)
			deliveries.PUT("/:id", deps.Deliveries.UpdateDelivery)
			deliveries.DELETE("/:id", deps.Deliveries.DeleteDelivery)
		}

		admin := api.Group("/admin", middleware.RequireAdmin())
		{
			admin.GET("/reports/deliveries", deps.Reports.GetDeliveryReport)
			admin.GET("/digests", deps.Digests.GetDigestLogs)
		}
	}

	return r
}
