package main

import (
	"cafe-pos/internal/handler"
	"cafe-pos/internal/middleware"
	"cafe-pos/internal/model"
	"cafe-pos/internal/repository"
	"cafe-pos/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type handlers struct {
	auth         *handler.AuthHandler
	user         *handler.UserHandler
	role         *handler.RoleHandler
	order        *handler.OrderHandler
	sale         *handler.SaleHandler
	catalog      *handler.CatalogHandler
	customer     *handler.CustomerHandler
	notification *handler.NotificationHandler
	report       *handler.ReportHandler
	setting      *handler.SettingHandler

	userRepo      repository.UserRepository
	orderRateSpec string
}

func registerRoutes(app *fiber.App, h handlers, wsHub *ws.Hub) error {
	api := app.Group("/api/v1")
	priv := middleware.RequirePrivilege

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", h.auth.Login)
	auth.Post("/reset-password", h.auth.ResetPassword)
	auth.Post("/validate-token", h.auth.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(h.userRepo), h.auth.Heartbeat)
	auth.Get("/me", middleware.RequireAuth(h.userRepo), h.auth.Me)
	auth.Post("/end-shift", middleware.RequireAuth(h.userRepo), h.auth.EndShift)

	menu := api.Group("/menu")
	menu.Get("/categories", h.catalog.MenuCategories)
	menu.Get("/products", h.catalog.MenuProducts)
	api.Get("/settings/public", h.setting.GetPublicSettings)

	orderLimit, err := middleware.RateLimit(h.orderRateSpec)
	if err != nil {
		return err
	}
	api.Post("/orders", orderLimit, middleware.OptionalAuth(h.userRepo), h.order.CreateOrder)
	api.Get("/orders/:id/track", h.order.TrackOrder)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(h.userRepo))

	// Dashboard and reports
	protected.Get("/dashboard/stats", h.report.GetDashboardStats)
	reports := protected.Group("/reports", priv(model.PrivReportView))
	reports.Get("/sales/summary", h.report.GetSalesSummary)
	reports.Get("/sales/daily", h.report.GetDailySales)
	reports.Get("/sales/export", h.report.ExportSales)
	reports.Get("/products/top", h.report.GetTopProducts)
	reports.Get("/payments", h.report.GetPaymentBreakdown)

	// Catalog
	protected.Get("/categories", h.catalog.GetCategories)
	protected.Post("/categories", priv(model.PrivCategoryCreate), h.catalog.CreateCategory)
	protected.Put("/categories/:id", priv(model.PrivCategoryUpdate), h.catalog.UpdateCategory)
	protected.Delete("/categories/:id", priv(model.PrivCategoryDelete), h.catalog.DeleteCategory)
	protected.Get("/products", h.catalog.GetProducts)
	protected.Get("/products/:id", h.catalog.GetProduct)
	protected.Post("/products", priv(model.PrivProductCreate), h.catalog.CreateProduct)
	protected.Put("/products/:id", priv(model.PrivProductUpdate), h.catalog.UpdateProduct)
	protected.Delete("/products/:id", priv(model.PrivProductDelete), h.catalog.DeleteProduct)

	// Customers
	protected.Get("/customers", priv(model.PrivCustomerView), h.customer.GetCustomers)
	protected.Get("/customers/:id", priv(model.PrivCustomerView), h.customer.GetCustomer)
	protected.Post("/customers", priv(model.PrivCustomerCreate), h.customer.CreateCustomer)
	protected.Put("/customers/:id", priv(model.PrivCustomerUpdate), h.customer.UpdateCustomer)
	protected.Delete("/customers/:id", priv(model.PrivCustomerDelete), h.customer.DeleteCustomer)

	// Sales
	protected.Get("/sales", priv(model.PrivSaleView), h.sale.GetSales)
	protected.Get("/sales/:id", priv(model.PrivSaleView), h.sale.GetSale)
	protected.Post("/sales", priv(model.PrivSaleCreate), h.sale.CreateSale)
	protected.Put("/sales/:id/status", priv(model.PrivSaleUpdateStatus), h.sale.UpdateStatus)
	protected.Put("/sales/:id/payment-status", priv(model.PrivSaleUpdateStatus), h.sale.UpdatePaymentStatus)
	protected.Post("/sales/:id/receipt-number", priv(model.PrivSaleView), h.sale.AssignReceiptNumber)
	protected.Delete("/sales/:id", priv(model.PrivSaleDelete), h.sale.DeleteSale)

	// Notifications
	notifications := protected.Group("/notifications", priv(model.PrivNotificationView))
	notifications.Get("/", h.notification.GetNotifications)
	notifications.Get("/unread-count", h.notification.UnreadCount)
	notifications.Put("/read-all", h.notification.MarkAllRead)
	notifications.Put("/:id/read", h.notification.MarkRead)

	// Settings
	protected.Get("/settings", h.setting.GetSettings)
	protected.Put("/settings", priv(model.PrivSettingUpdate), h.setting.UpdateSettings)

	// User management
	protected.Get("/users", priv(model.PrivUserView), h.user.GetUsers)
	protected.Get("/users/on-shift", priv(model.PrivUserView), h.user.GetOnShift)
	protected.Get("/users/:id", priv(model.PrivUserView), h.user.GetUser)
	protected.Get("/users/:id/login-history", priv(model.PrivUserView), h.user.GetLoginHistory)
	protected.Post("/users", priv(model.PrivUserCreate), h.user.CreateUser)
	protected.Put("/users/:id", priv(model.PrivUserUpdate), h.user.UpdateUser)
	protected.Delete("/users/:id", priv(model.PrivUserDelete), h.user.DeleteUser)
	protected.Put("/users/:id/privileges", priv(model.PrivUserUpdatePrivilege), h.user.UpdateUserPrivileges)

	protected.Get("/roles", h.role.GetRoles)
	protected.Get("/privileges", h.role.GetPrivileges)

	mountWebSocket(app, h.userRepo, wsHub)

	return nil
}

// mountWebSocket serves the live notification feed. Staff authenticate with
// ?token= on the upgrade request and need the notification view privilege.
func mountWebSocket(app *fiber.App, userRepo repository.UserRepository, wsHub *ws.Hub) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws",
		middleware.QueryToken("token"),
		middleware.RequireAuth(userRepo),
		middleware.RequirePrivilege(model.PrivNotificationView),
		websocket.New(func(c *websocket.Conn) {
			wsHub.Register <- c
			defer func() { wsHub.Unregister <- c }()

			for {
				// Keep alive loop
				if _, _, err := c.ReadMessage(); err != nil {
					break
				}
			}
		}),
	)
}
