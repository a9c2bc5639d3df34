package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/7FIl/freepass-2026/cache"
	"github.com/7FIl/freepass-2026/config"
	"github.com/7FIl/freepass-2026/controllers"
	"github.com/7FIl/freepass-2026/kds"
	"github.com/7FIl/freepass-2026/middlewares"
	"github.com/7FIl/freepass-2026/models"
	"github.com/7FIl/freepass-2026/services"
	"github.com/7FIl/freepass-2026/utils"
)

const (
	paymentAttemptsPerMinute = 10
	maxBodyBytes             = 1 << 20
)

// Deps carries everything the HTTP layer needs. Services are built by the
// caller so tests can swap their collaborators.
type Deps struct {
	DB       *gorm.DB
	Log      *logrus.Logger
	Tokens   *utils.TokenManager
	Auth     *services.AuthService
	Canteens *services.CanteenService
	Orders   *services.OrderService
	Admin    *services.AdminService
	Domains  *services.EmailDomainService
	Hub      *kds.Hub
	Health   cache.Cache // shared cache probed by /health, nil when disabled
	Server   config.Server
	Limits   config.Limits
}

func SetupRouter(d Deps) *gin.Engine {
	utils.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.LimitBody(maxBodyBytes))
	r.Use(middlewares.CORSMiddlewares(d.Server.CORSOrigins))
	r.Use(middlewares.LoggerMiddleware(d.Log))
	if d.Limits.RPS > 0 {
		r.Use(middlewares.NewRateLimiter(rate.Limit(d.Limits.RPS), d.Limits.Burst).RateLimit())
	}

	// Controllers
	userCtrl := controllers.NewUserController(d.Auth)
	canteenCtrl := controllers.NewCanteenController(d.Canteens)
	menuCtrl := controllers.NewMenuController(d.Canteens)
	orderCtrl := controllers.NewOrderController(d.Orders)
	receiptCtrl := controllers.NewReceiptController(d.Orders)
	adminCtrl := controllers.NewAdminController(d.Admin)
	domainCtrl := controllers.NewEmailDomainController(d.Domains)
	kdsCtrl := controllers.NewKDSController(d.Hub, d.Canteens, d.Server.CORSOrigins)
	healthCtrl := controllers.NewHealthController(d.DB, d.Health)

	authRequired := middlewares.AuthMiddleware(d.Tokens, d.Auth)

	r.GET("/health", healthCtrl.Health)
	r.GET("/ws/canteens/:canteenId", middlewares.WebSocketAuthMiddleware(d.Tokens, d.Auth), kdsCtrl.KDSHandler)

	api := r.Group("/api")

	// ----------------------------------------------------------------
	//                      AUTH
	// ----------------------------------------------------------------
	authGroup := api.Group("/auth")
	{
		strict := middlewares.NewStrictRateLimiter(d.Limits.AuthPerMinute).RateLimit()
		authGroup.POST("/register", strict, userCtrl.Register)
		authGroup.POST("/login", strict, userCtrl.Login)

		authGroup.Use(authRequired)
		authGroup.GET("/profile", userCtrl.GetProfile)
		authGroup.PUT("/profile", userCtrl.UpdateProfile)
		authGroup.PUT("/password", userCtrl.ChangePassword)
		authGroup.POST("/logout", userCtrl.Logout)
	}

	// ----------------------------------------------------------------
	//                      CANTEENS & MENUS
	// ----------------------------------------------------------------
	canteens := api.Group("/canteens")
	{
		canteens.GET("", canteenCtrl.GetCanteens)
		canteens.GET("/:canteenId", canteenCtrl.GetCanteenByID)
		canteens.GET("/:canteenId/menu", menuCtrl.GetMenuItems)

		canteens.POST("", authRequired, canteenCtrl.CreateCanteen)
		canteens.PUT("/:canteenId", authRequired, canteenCtrl.UpdateCanteen)
		canteens.POST("/:canteenId/toggle-status", authRequired, canteenCtrl.ToggleCanteenStatus)
		canteens.POST("/:canteenId/menu", authRequired, menuCtrl.CreateMenuItem)
		canteens.PUT("/:canteenId/menu/:menuItemId", authRequired, menuCtrl.UpdateMenuItem)
		canteens.DELETE("/:canteenId/menu/:menuItemId", authRequired, menuCtrl.DeleteMenuItem)
	}

	// ----------------------------------------------------------------
	//                      ORDERS
	// ----------------------------------------------------------------
	api.GET("/orders/canteen/:canteenId/reviews", orderCtrl.GetCanteenReviews)

	orders := api.Group("/orders")
	orders.Use(authRequired)
	{
		orders.GET("", orderCtrl.GetUserOrders)
		orders.GET("/canteen/:canteenId", orderCtrl.GetCanteenOrders)
		orders.DELETE("/review/:reviewId", orderCtrl.DeleteReview)

		// :id is the canteen on create and the order everywhere else.
		orders.POST("/:id", orderCtrl.CreateOrder)
		orders.GET("/:id", orderCtrl.GetOrderByID)
		orders.PUT("/:id/status", orderCtrl.UpdateOrderStatus)
		orders.POST("/:id/payment",
			middlewares.PaymentSecurityHeaders(),
			middlewares.PaymentRateLimiter(paymentAttemptsPerMinute),
			orderCtrl.MakePayment)
		orders.POST("/:id/review", orderCtrl.CreateReview)

		docs := orders.Group("/:id")
		docs.Use(middlewares.ReceiptLoggerMiddleware(d.Log))
		docs.GET("/receipt", receiptCtrl.GetReceipt)
		docs.GET("/pickup-qr", receiptCtrl.GetPickupQR)
	}

	// ----------------------------------------------------------------
	//                      ADMIN
	// ----------------------------------------------------------------
	admin := api.Group("/admin")
	admin.Use(authRequired, middlewares.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/stats", adminCtrl.GetDashboardStats)

		admin.POST("/users", adminCtrl.CreateUser)
		admin.GET("/users", adminCtrl.GetUsers)
		admin.GET("/users/:userId", adminCtrl.GetUserByID)
		admin.PUT("/users/:userId", adminCtrl.UpdateUser)
		admin.DELETE("/users/:userId", adminCtrl.DeleteUser)
		admin.GET("/canteen-owners", adminCtrl.GetCanteenOwners)

		admin.GET("/allowed-domains", domainCtrl.GetDomains)
		admin.POST("/allowed-domains", domainCtrl.AddDomain)
		admin.DELETE("/allowed-domains/:domainId", domainCtrl.RemoveDomain)
	}

	return r
}
