package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/example/vajra/internal/config"
	"github.com/example/vajra/internal/handlers"
	"github.com/example/vajra/internal/middleware"
	"github.com/example/vajra/internal/repository"
	"github.com/example/vajra/internal/services"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Store    repository.UserStore
	Gateway  services.PaymentGateway
	Webhooks services.WebhookVerifier
	Mailer   services.EmailSender
	Alerter  services.PaymentAlerter
	Logger   *zap.Logger
}

// App is the HTTP server together with the services behind it.
type App struct {
	*fiber.App
	Orders *services.OrderService
}

// NewApp builds the fiber app with the standard middleware chain and all routes.
func NewApp(cfg *config.Config, deps Dependencies) *App {
	app := fiber.New(fiber.Config{
		AppName:      "Vajra Backend",
		ErrorHandler: handlers.ErrorHandler(deps.Logger),
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(middleware.RequestLogger(deps.Logger))

	orders := Register(app, cfg, deps)
	return &App{App: app, Orders: orders}
}

// Register wires up all HTTP routes and returns the order service so callers
// can wait for its background alerts on shutdown.
func Register(app *fiber.App, cfg *config.Config, deps Dependencies) *services.OrderService {
	authService := services.NewAuthService(deps.Store, deps.Mailer, deps.Logger, cfg.OTPTTL)
	addressService := services.NewAddressService(deps.Store)
	orderService := services.NewOrderService(deps.Store, deps.Gateway, deps.Alerter, deps.Logger, services.OrderOptions{
		Currency:        cfg.Currency,
		PublicBaseURL:   cfg.PublicBaseURL,
		ConfirmPayments: cfg.PaymentConfirm,
	})

	authHandler := handlers.NewAuthHandler(authService)
	resetHandler := handlers.NewPasswordResetHandler(authService)
	addressHandler := handlers.NewAddressHandler(addressService)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(orderService, deps.Webhooks, deps.Logger)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst).Handler()

	api := app.Group("/api")
	api.Get("/test", handlers.Ping)

	// Auth routes
	api.Post("/register", authHandler.Register)
	api.Post("/login", limiter, authHandler.Login)
	api.Post("/forgot-password", limiter, resetHandler.ForgotPassword)
	api.Post("/reset-password", limiter, resetHandler.ResetPassword)

	// Address book
	api.Post("/add-address", addressHandler.AddAddress)
	api.Get("/get-addresses/:userId", addressHandler.ListAddresses)

	// Orders and payments
	app.Post("/create-order", orderHandler.CreateOrder)
	api.Post("/verify-payment", paymentHandler.VerifyPayment)
	api.Post("/payment-webhook", paymentHandler.Webhook)
	api.Get("/get-orders/:userId", orderHandler.ListOrders)
	app.Get("/payment-failed", paymentHandler.PaymentFailed)

	return orderService
}
