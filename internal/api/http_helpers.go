package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pondera-health/pondera/internal/clock"
	"github.com/pondera-health/pondera/internal/models"
	"github.com/pondera-health/pondera/internal/services"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// domainError maps a service rejection to a status, or returns false for
// unexpected failures that should surface as a 500.
func domainError(c *fiber.Ctx, err error) (error, bool) {
	switch {
	case errors.Is(err, services.ErrFutureDate),
		errors.Is(err, services.ErrBackfillLimit),
		errors.Is(err, services.ErrWeightOutOfRange):
		return apiError(c, fiber.StatusUnprocessableEntity, err.Error()), true
	case errors.Is(err, services.ErrDuplicateEntry),
		errors.Is(err, services.ErrOutlierNotFlagged):
		return apiError(c, fiber.StatusConflict, err.Error()), true
	case errors.Is(err, services.ErrMeasurementNotFound),
		errors.Is(err, services.ErrUserNotFound):
		return apiError(c, fiber.StatusNotFound, err.Error()), true
	case errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrEditWindowExpired):
		return apiError(c, fiber.StatusForbidden, err.Error()), true
	case errors.Is(err, services.ErrNothingToUpdate),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrInvalidEmail):
		return apiError(c, fiber.StatusBadRequest, err.Error()), true
	}
	return nil, false
}

func parseInstantField(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339, raw)
}

func (handler *Handler) parseDayQuery(c *fiber.Ctx, name string, fallback string) (string, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	if _, err := clock.ParseDayKey(raw); err != nil {
		return "", err
	}
	return raw, nil
}

// resolveSubjectPatient decides whose data a request targets. Patients always
// act on themselves; professionals must name a patient via the query
// parameter. When ok is false a response has already been written.
func (handler *Handler) resolveSubjectPatient(c *fiber.Ctx, user *models.User) (uint, bool) {
	raw := c.Query("patient")
	if raw == "" {
		if user.Role == models.RoleProfessional {
			_ = apiError(c, fiber.StatusBadRequest, "patient query parameter required")
			return 0, false
		}
		return user.ID, true
	}

	if user.Role != models.RoleProfessional {
		_ = apiError(c, fiber.StatusForbidden, "professional access required")
		return 0, false
	}

	patientID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		_ = apiError(c, fiber.StatusBadRequest, "invalid patient id")
		return 0, false
	}
	patient, err := handler.authService.FindByID(uint(patientID))
	if err != nil || patient.Role != models.RolePatient {
		_ = apiError(c, fiber.StatusNotFound, "patient not found")
		return 0, false
	}
	return patient.ID, true
}
