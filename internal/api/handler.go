package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pondera-health/pondera/internal/db"
	"github.com/pondera-health/pondera/internal/services"
	"gorm.io/gorm"
)

const contextUserKey = "currentUser"

type Handler struct {
	db           *gorm.DB
	secretKey    []byte
	location     *time.Location
	cookieSecure bool

	repositories *db.Repositories
	authService  *services.AuthService
	measurements *services.MeasurementService
}

func NewHandler(database *gorm.DB, secretKey string, location *time.Location, cookieSecure bool) *Handler {
	handler := &Handler{
		db:           database,
		secretKey:    []byte(secretKey),
		location:     location,
		cookieSecure: cookieSecure,
	}
	handler.repositories = db.NewRepositories(database)
	handler.authService = services.NewAuthService(handler.repositories.Users)
	handler.measurements = services.NewMeasurementService(handler.repositories.Measurements, location)
	return handler
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
