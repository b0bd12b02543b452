package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"clanwallet/cmd"
	"clanwallet/config"
	"clanwallet/database"
	"clanwallet/repository"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using environment variables")
	}
	setupLogging()

	// Check for migration subcommands
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.WithError(err).Fatal("Migration error")
		}
		return
	}

	// Check for tax configuration subcommand
	if len(os.Args) > 1 && os.Args[1] == "set-tax" {
		if err := handleSetTax(); err != nil {
			log.WithError(err).Fatal("Tax configuration error")
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.WithField("signal", sig.String()).Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := cmd.Run(ctx); err != nil {
		log.WithError(err).Fatal("Application error")
	}
}

// setupLogging reads ENVIRONMENT and LOG_LEVEL directly so subcommands log the same way
// without loading the full service configuration
func setupLogging() {
	if os.Getenv("ENVIRONMENT") == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	log.SetOutput(os.Stdout)

	level := log.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		parsed, err := log.ParseLevel(raw)
		if err != nil {
			log.WithField("level", raw).Warn("Unknown LOG_LEVEL, using info")
		} else {
			level = parsed
		}
	}
	log.SetLevel(level)
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: clanwallet migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

// handleSetTax stores a new monthly tax amount; the newest setting wins
func handleSetTax() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: clanwallet set-tax <amount>")
	}

	amount, err := decimal.NewFromString(os.Args[2])
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", os.Args[2], err)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("tax amount must be greater than 0")
	}

	ctx := context.Background()
	cfg := config.Get()

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	setting, err := repository.NewTaxRepository(db).CreateSetting(ctx, amount.Round(2))
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"amount":    setting.Amount.StringFixed(2),
		"settingID": setting.ID,
	}).Info("Monthly tax amount updated")
	return nil
}
