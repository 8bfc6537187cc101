package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/aurelia/internal/config"
	"github.com/example/aurelia/internal/handlers"
	"github.com/example/aurelia/internal/middleware"
	"github.com/example/aurelia/internal/models"
	"github.com/example/aurelia/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize Telegram service
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)

	authHandler := handlers.NewAuthHandler(db, cfg)
	phoneAuthHandler := handlers.NewPhoneAuthHandler(db, cfg)
	menuHandler := handlers.NewMenuHandler(db)
	cartHandler := handlers.NewCartHandler(db)
	orderHandler := handlers.NewOrderHandler(db, cfg, telegramService)
	paymentHandler := handlers.NewPaymentHandler(db, cfg)
	reservationHandler := handlers.NewReservationHandler(db, telegramService)
	reviewHandler := handlers.NewReviewHandler(db)
	offerHandler := handlers.NewOfferHandler(db)
	profileHandler := handlers.NewProfileHandler(db)
	adminUserHandler := handlers.NewAdminUserHandler(db)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/phone/verify", phoneAuthHandler.VerifyPhone)
	auth.Post("/phone/session", phoneAuthHandler.CreateSession)
	auth.Get("/phone/session", phoneAuthHandler.CreateSession)

	// Public catalog
	categories := api.Group("/categories")
	categories.Get("/", menuHandler.ListCategories)

	menu := api.Group("/menu")
	menu.Get("/", menuHandler.ListMenuItems)
	menu.Get("/:id", menuHandler.GetMenuItem)

	gallery := api.Group("/gallery")
	gallery.Get("/", menuHandler.ListGallery)

	reviews := api.Group("/reviews")
	reviews.Get("/", reviewHandler.ListApproved)

	offers := api.Group("/offers")
	offers.Get("/", offerHandler.ListActive)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	cart := protected.Group("/cart")
	cart.Get("/", cartHandler.ListItems)
	cart.Post("/items", cartHandler.AddItem)
	cart.Put("/items/:id", cartHandler.UpdateItem)
	cart.Delete("/items/:id", cartHandler.RemoveItem)
	cart.Delete("/", cartHandler.Clear)

	protected.Post("/orders", orderHandler.Checkout)
	protected.Get("/orders", orderHandler.ListOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)

	payments := protected.Group("/payments")
	payments.Post("/order", paymentHandler.CreateGatewayOrder)
	payments.Post("/verify", paymentHandler.VerifyPayment)

	protected.Post("/offers/validate", offerHandler.Validate)

	protected.Post("/reservations", reservationHandler.Create)
	protected.Get("/reservations", reservationHandler.ListOwn)

	protected.Post("/reviews", reviewHandler.Create)

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)
	protected.Get("/profile/loyalty", profileHandler.GetLoyalty)
	protected.Get("/notifications", profileHandler.ListNotifications)
	protected.Put("/notifications/:id/read", profileHandler.MarkNotificationRead)

	// Admin routes
	admin := api.Group("/admin",
		middleware.AuthMiddleware(cfg),
		middleware.RequireRole(db, models.RoleAdmin, models.RoleModerator))

	admin.Post("/categories", menuHandler.CreateCategory)
	admin.Put("/categories/:id", menuHandler.UpdateCategory)
	admin.Delete("/categories/:id", menuHandler.DeleteCategory)

	admin.Post("/menu", menuHandler.CreateMenuItem)
	admin.Put("/menu/:id", menuHandler.UpdateMenuItem)
	admin.Delete("/menu/:id", menuHandler.DeleteMenuItem)

	admin.Post("/gallery", menuHandler.CreateGalleryImage)
	admin.Put("/gallery/:id", menuHandler.UpdateGalleryImage)
	admin.Delete("/gallery/:id", menuHandler.DeleteGalleryImage)

	admin.Get("/orders", orderHandler.AdminListOrders)
	admin.Put("/orders/:id/status", orderHandler.AdminUpdateOrderStatus)

	admin.Get("/reservations", reservationHandler.AdminList)
	admin.Put("/reservations/:id/status", reservationHandler.AdminUpdateStatus)
	admin.Delete("/reservations/:id", reservationHandler.AdminDelete)

	admin.Get("/reviews", reviewHandler.AdminList)
	admin.Put("/reviews/:id", reviewHandler.AdminModerate)
	admin.Delete("/reviews/:id", reviewHandler.AdminDelete)

	admin.Get("/offers", offerHandler.AdminList)
	admin.Post("/offers", offerHandler.AdminCreate)
	admin.Put("/offers/:id", offerHandler.AdminUpdate)
	admin.Delete("/offers/:id", offerHandler.AdminDelete)

	admin.Get("/users", adminUserHandler.ListUsers)
	admin.Get("/users/:id", adminUserHandler.GetUser)
	admin.Post("/users/:id/roles", adminUserHandler.AssignRole)
	admin.Delete("/users/:id/roles/:role", adminUserHandler.RevokeRole)
}
