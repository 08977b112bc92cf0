package main

import (
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"stripe-billing-webhook/internal/client"
	"stripe-billing-webhook/internal/config"
	"stripe-billing-webhook/internal/handler"
	"stripe-billing-webhook/internal/repository"
	"stripe-billing-webhook/internal/server"
	"stripe-billing-webhook/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to parse config")
	}

	setupLogger(&cfg.Log)

	db := client.InitPostgresClient(cfg.DatabaseURL)
	stripeClient := client.NewStripeClient(&cfg.Stripe)

	userRepo := repository.NewUserRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	webhookService := service.NewWebhookService(
		stripeClient,
		userRepo,
		paymentRepo,
		creditRepo,
		subscriptionRepo,
		webhookEventRepo,
	)
	billingService := service.NewBillingService(
		stripeClient,
		&cfg.Stripe,
		userRepo,
		creditRepo,
		subscriptionRepo,
	)

	webhookHandler := handler.NewWebhookHandler(webhookService, cfg.Stripe.WebhookSecret)
	billingHandler := handler.NewBillingHandler(billingService)

	srv := server.NewServer(webhookHandler, billingHandler, cfg.Auth.JWTSecret)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info().Str("addr", serverAddr).Msg("starting HTTP server")
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info().Msg("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		log.Fatal().Err(err).Msg("HTTP server shutdown error")
	}
}

func setupLogger(logCfg *config.Log) {
	level, err := zerolog.ParseLevel(strings.ToLower(logCfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if logCfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
