package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-order/controllers"
	"github.com/yeremiapane/table-order/middlewares"
	"github.com/yeremiapane/table-order/realtime"
	"github.com/yeremiapane/table-order/services"
	"gorm.io/gorm"
)

// Options -> semua dependency yang dibutuhkan router
type Options struct {
	DB            *gorm.DB
	Hub           *realtime.Hub
	CORSOrigin    string
	PublicBaseURL string
	// RateLimiter global; nil berarti tanpa rate limit (dipakai di test)
	RateLimiter *middlewares.RateLimiter
	// LoginLimiter khusus /login; nil berarti NewStrictRateLimiter
	LoginLimiter *middlewares.RateLimiter
}

func SetupRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(opts.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())
	if opts.RateLimiter != nil {
		r.Use(opts.RateLimiter.RateLimit())
	}

	// Inisialisasi service & controller
	menuSvc := services.NewMenuService(opts.DB)
	orderSvc := services.NewOrderService(opts.DB, opts.Hub, menuSvc)

	customerCtrl := controllers.NewCustomerController(orderSvc)
	orderCtrl := controllers.NewOrderController(orderSvc)
	menuCtrl := controllers.NewMenuController(opts.DB, menuSvc, opts.Hub)
	tableCtrl := controllers.NewTableController(opts.DB, opts.Hub, opts.PublicBaseURL)
	staffCtrl := controllers.NewStaffController(opts.DB)
	adminCtrl := controllers.NewAdminController(opts.DB)
	realtimeCtrl := controllers.NewRealtimeController(opts.Hub, orderSvc, opts.CORSOrigin)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	loginLimiter := opts.LoginLimiter
	if loginLimiter == nil {
		loginLimiter = middlewares.NewStrictRateLimiter()
	}
	r.POST("/login", loginLimiter.RateLimit(), staffCtrl.Login)

	// -- CUSTOMER (Tanpa Auth) --
	r.GET("/", customerCtrl.Root)
	r.GET("/table/:table_id", customerCtrl.TableLanding)
	r.GET("/menu", menuCtrl.GetMenu)
	r.GET("/settings", adminCtrl.GetSettings)

	tables := r.Group("/tables/:table_id")
	{
		tables.GET("/resolve", customerCtrl.ResolveTable)
		tables.POST("/orders", orderCtrl.CreateOrder)
		tables.GET("/bill", orderCtrl.GetTableBill)
	}

	orders := r.Group("/orders/:order_id")
	{
		orders.GET("", orderCtrl.GetOrderByID)
		orders.GET("/bill", orderCtrl.GetOrderBill)
		orders.PATCH("/items", orderCtrl.UpdateOrderItems)
		orders.POST("/waiter", orderCtrl.CallWaiter)
		orders.POST("/pay", orderCtrl.PayBill)
	}

	// -- WEBSOCKET --
	ws := r.Group("/ws")
	{
		ws.GET("/orders/:order_id", realtimeCtrl.OrderStream)
		ws.GET("/staff", middlewares.WebSocketAuthMiddleware(), middlewares.RequireStaff(), realtimeCtrl.StaffStream)
	}

	// ----------------------------------------------------------------
	//                      STAFF ROUTES
	// ----------------------------------------------------------------
	staff := r.Group("/staff")
	staff.Use(middlewares.AuthMiddleware(), middlewares.RequireStaff())
	{
		staff.GET("/profile", staffCtrl.GetProfile)
		staff.GET("/orders", orderCtrl.GetStaffOrders)
		staff.GET("/kds", orderCtrl.GetKitchenDisplay)
		staff.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
		staff.DELETE("/orders/:order_id/waiter", orderCtrl.ClearWaiterCall)
	}

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.RequireAdmin())
	{
		// Menu
		admin.GET("/menu", menuCtrl.GetAllMenuItems)
		admin.GET("/menu/:menu_id", menuCtrl.GetMenuItemByID)
		admin.POST("/menu", menuCtrl.CreateMenuItem)
		admin.PUT("/menu/:menu_id", menuCtrl.UpdateMenuItem)
		admin.PATCH("/menu/:menu_id/availability", menuCtrl.ToggleAvailability)
		admin.DELETE("/menu/:menu_id", menuCtrl.DeleteMenuItem)

		// Tables & QR
		admin.GET("/tables", tableCtrl.GetAllTables)
		admin.GET("/tables/:table_id", tableCtrl.GetTableByID)
		admin.POST("/tables", tableCtrl.CreateTable)
		admin.PUT("/tables/:table_id", tableCtrl.UpdateTable)
		admin.DELETE("/tables/:table_id", tableCtrl.DeleteTable)
		admin.GET("/qrcodes", tableCtrl.GetQRCodes)

		// Staff
		admin.GET("/staff", staffCtrl.GetAllStaff)
		admin.POST("/staff", staffCtrl.CreateStaff)
		admin.PUT("/staff/:staff_id", staffCtrl.UpdateStaff)
		admin.DELETE("/staff/:staff_id", staffCtrl.DeleteStaff)

		// Settings & analytics
		admin.GET("/settings", adminCtrl.GetSettings)
		admin.PUT("/settings", adminCtrl.SaveSettings)
		admin.GET("/analytics", adminCtrl.GetAnalytics)
	}

	return r
}
