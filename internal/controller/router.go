// router.go
package controller

import (
	"net/http"
	"time"

	"opt-shop/internal/config"
	"opt-shop/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Dependencies are constructed once in main and shared by every request.
type Dependencies struct {
	Config   *config.Config
	Log      *logrus.Logger
	Auth     AuthService
	Goods    GoodService
	Orders   OrderService
	Users    UserService
	Uploads  Uploader
	DB       Pinger
	Limiter  *middleware.RateLimiter
	ImageDir string
}

func NewRouter(d Dependencies) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	r.Use(middleware.Recovery(d.Log))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.PrometheusMetrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.Config.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.Timeout(d.Config.RequestTimeout))

	authCtl := NewAuthController(d.Auth, d.Config.IsProduction())
	goodCtl := NewGoodController(d.Goods)
	orderCtl := NewOrderController(d.Orders)
	userCtl := NewUserController(d.Users)
	uploadCtl := NewUploadController(d.Uploads)
	healthCtl := NewHealthController(d.DB)

	authRequired := middleware.AuthMiddleware(d.Auth)

	r.GET("/health", healthCtl.Check)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if d.ImageDir != "" {
		r.Static("/images", d.ImageDir)
	}

	auth := r.Group("/auth")
	if d.Limiter != nil {
		auth.Use(d.Limiter.Middleware())
	}
	auth.POST("/register", authCtl.Register)
	auth.POST("/login", authCtl.Login)
	auth.POST("/refresh", authCtl.Refresh)
	auth.POST("/logout", authCtl.Logout)

	goods := r.Group("/goods")
	goods.GET("", goodCtl.List)
	goods.GET("/categories/list", goodCtl.Categories)
	goods.GET("/categories/:category/subcategories", goodCtl.Subcategories)
	goods.GET("/:id", goodCtl.Get)
	goods.POST("", authRequired, goodCtl.Create)
	goods.PUT("/:id", authRequired, goodCtl.Update)
	goods.DELETE("/:id", authRequired, goodCtl.Delete)

	orders := r.Group("/orders", authRequired)
	orders.POST("", orderCtl.Create)
	orders.GET("/buyer/:buyerId", middleware.SelfOnly("buyerId"), orderCtl.ListByBuyer)
	orders.GET("/supplier/:supplierId", middleware.SelfOnly("supplierId"), orderCtl.ListBySupplier)
	orders.GET("/:id", orderCtl.Get)
	orders.PATCH("/:id/status", orderCtl.UpdateStatus)

	upload := r.Group("/upload", authRequired)
	upload.POST("/single", uploadCtl.Single)
	upload.POST("/multiple", uploadCtl.Multiple)

	users := r.Group("/users")
	users.GET("/suppliers", userCtl.ListSuppliers)
	users.GET("/suppliers/:id", userCtl.GetSupplier)
	users.GET("/me", authRequired, userCtl.Me)
	users.PUT("/me", authRequired, userCtl.UpdateMe)

	return r
}
