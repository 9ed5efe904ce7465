package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) GetComplianceStats(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	ownerID, ok := handler.resolveSubjectPatient(c, user)
	if !ok {
		return nil
	}

	stats, err := handler.measurements.ComplianceStatistics(ownerID, time.Now().In(handler.location))
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to compute compliance statistics")
	}
	return c.JSON(stats)
}
