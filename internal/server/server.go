package server

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"stripe-billing-webhook/internal/handler"
	"stripe-billing-webhook/internal/middleware"
)

type Server struct {
	echo           *echo.Echo
	webhookHandler *handler.WebhookHandler
	billingHandler *handler.BillingHandler
	jwtSecret      string
}

func NewServer(webhookHandler *handler.WebhookHandler, billingHandler *handler.BillingHandler, jwtSecret string) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	s := &Server{
		echo:           e,
		webhookHandler: webhookHandler,
		billingHandler: billingHandler,
		jwtSecret:      jwtSecret,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- stripe webhook --------
	api.POST("/stripe/webhook", s.webhookHandler.HandleStripeWebhook)

	// -------- billing (authenticated) --------
	billing := api.Group("/billing", middleware.Auth(s.jwtSecret))
	billing.POST("/checkout", s.billingHandler.CreateCheckout)
	billing.GET("/credits", s.billingHandler.GetCredits)
	billing.POST("/credits/use", s.billingHandler.UseCredits)
	billing.GET("/subscription", s.billingHandler.GetSubscription)
	billing.POST("/subscription/cancel", s.billingHandler.CancelSubscription)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
