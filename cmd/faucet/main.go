package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/bitfaucet/faucet/internal/config"
	"github.com/bitfaucet/faucet/internal/faucet"
	"github.com/bitfaucet/faucet/internal/http_api"
	"github.com/bitfaucet/faucet/internal/models"
	"github.com/bitfaucet/faucet/internal/notificator"
	"github.com/bitfaucet/faucet/internal/payout"
	"github.com/bitfaucet/faucet/internal/store"
	"github.com/bitfaucet/faucet/pkg/logger"
	"github.com/bitfaucet/faucet/pkg/token"
)

func main() {
	app := &cli.App{
		Name:  "faucet",
		Usage: "Faucet is a coin earn-and-payout service",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "api-port", Aliases: []string{"p"}, Usage: "HTTP API port"},
			&cli.StringFlag{Name: "redis-addr", Aliases: []string{"r"}, Usage: "Redis address"},
			&cli.IntFlag{Name: "redis-db", Usage: "Redis database number"},
			&cli.StringFlag{Name: "processor-base-url", Aliases: []string{"b"}, Usage: "Payment processor base URL"},
			&cli.DurationFlag{Name: "cooldown", Aliases: []string{"c"}, Usage: "Minimum wait between grants"},
			&cli.Int64Flag{Name: "earn-amount", Aliases: []string{"a"}, Usage: "Units granted per earn"},
			&cli.Int64Flag{Name: "payout-threshold", Aliases: []string{"t"}, Usage: "Accumulated units required for a payout"},
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
		},
		Action: func(c *cli.Context) error {
			return run(c)
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	// Override with flags if set
	if c.IsSet("api-port") {
		cfg.APIPort = c.Int("api-port")
	}
	if c.IsSet("redis-addr") {
		cfg.RedisAddr = c.String("redis-addr")
	}
	if c.IsSet("redis-db") {
		cfg.RedisDB = c.Int("redis-db")
	}
	if c.IsSet("processor-base-url") {
		cfg.ProcessorBaseURL = c.String("processor-base-url")
	}
	if c.IsSet("cooldown") {
		cfg.EarnCooldown = c.Duration("cooldown")
	}
	if c.IsSet("earn-amount") {
		cfg.EarnAmount = c.Int64("earn-amount")
	}
	if c.IsSet("payout-threshold") {
		cfg.PayoutThreshold = c.Int64("payout-threshold")
	}
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}

	// Initialize the shared store
	db, err := store.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.EarnRecordTTL, cfg.BalanceTTL, log)
	if err != nil {
		return fmt.Errorf("failed to connect to the store: %v", err)
	}

	// Initialize the payout gateway
	payoutService := payout.NewCoinbase(cfg, log)

	// Initialize operator notifications for the channels that are configured
	var telegramNotificator *notificator.TelegramNotificator
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		telegramNotificator, err = notificator.NewTelegramNotificator(log, cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			return fmt.Errorf("failed to initialize telegram notificator: %v", err)
		}
	}
	var emailNotificator *notificator.EmailNotificator
	if cfg.SMTPUser != "" && cfg.AlertEmail != "" {
		emailNotificator = notificator.NewEmailNotificator(log, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPSender, cfg.AlertEmail)
	}
	var notifications models.NotificationService
	if telegramNotificator != nil || emailNotificator != nil {
		notifications = notificator.NewNotificator(log, telegramNotificator, emailNotificator)
	}

	// Create the Faucet instance
	sealer := token.NewSealer([]byte(cfg.CookieSecret))
	faucetApp := faucet.NewFaucet(db, payoutService, notifications, sealer, log, cfg)

	apiServer := http_api.NewHTTPServer(faucetApp, log, cfg)

	go apiServer.Start()

	// Wait for a termination signal, then shut down in order
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("Received signal, shutting down: ", sig)

	if err := apiServer.Shutdown(); err != nil {
		log.Error("Failed to shut down the HTTP server: ", err)
	}
	if err := db.Close(); err != nil {
		log.Error("Failed to close the store: ", err)
	}

	_ = log.SugaredLogger.Sync()
	return nil
}
