package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pondera-health/pondera/internal/api"
	"github.com/pondera-health/pondera/internal/cli"
	"github.com/pondera-health/pondera/internal/db"
)

const insecureSecretPlaceholder = "change_me_in_production"

const minSecretKeyLength = 32

func main() {
	dbPath := getEnv("DB_PATH", filepath.Join("data", "pondera.db"))

	if len(os.Args) > 1 {
		if err := runCommand(os.Args[1], os.Args[2:], dbPath); err != nil {
			log.Fatalf("%s failed: %v", os.Args[1], err)
		}
		return
	}

	location := mustLoadLocation(getEnv("TZ", "UTC"))
	time.Local = location

	secretKey, err := resolveSecretKey()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	port := getEnv("PORT", "8080")
	cookieSecure := getEnv("COOKIE_SECURE", "false") == "true"

	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	handler := api.NewHandler(database, secretKey, location, cookieSecure)

	app := fiber.New(fiber.Config{
		AppName:               "Pondera",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	api.RegisterRoutes(app, handler)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	log.Printf("Pondera listening on http://0.0.0.0:%s (db: %s, tz: %s)", port, dbPath, location.String())
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func runCommand(name string, args []string, dbPath string) error {
	switch name {
	case "reset-password":
		if len(args) != 1 {
			return errors.New("usage: pondera reset-password <email>")
		}
		return cli.RunResetPasswordCommand(dbPath, args[0])
	case "create-professional":
		if len(args) != 1 {
			return errors.New("usage: pondera create-professional <email>")
		}
		return cli.RunCreateProfessionalCommand(dbPath, args[0])
	default:
		return fmt.Errorf("unknown command %q", name)
	}
}

func resolveSecretKey() (string, error) {
	secretKey := os.Getenv("SECRET_KEY")
	if secretKey == "" {
		return "", errors.New("SECRET_KEY is required")
	}
	if secretKey == insecureSecretPlaceholder {
		return "", errors.New("SECRET_KEY still uses the insecure placeholder")
	}
	if len(secretKey) < minSecretKeyLength {
		return "", fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return secretKey, nil
}

func mustLoadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("invalid TZ %q, falling back to UTC", name)
		return time.UTC
	}
	return location
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
