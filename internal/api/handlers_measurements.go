package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pondera-health/pondera/internal/clock"
	"github.com/pondera-health/pondera/internal/models"
	"github.com/pondera-health/pondera/internal/services"
)

// DefaultChartRangeDays is the trailing window served when the caller does
// not narrow the range.
const DefaultChartRangeDays = 30

// maxNoteLength caps the free-text note attached to a measurement, in runes.
const maxNoteLength = 500

type createMeasurementPayload struct {
	WeightKg   float64 `json:"weightKg"`
	MeasuredAt string  `json:"measuredAt"`
	Note       string  `json:"note"`
}

type updateMeasurementPayload struct {
	WeightKg *float64 `json:"weightKg"`
	Note     *string  `json:"note"`
}

type reviewOutlierPayload struct {
	Confirmed bool `json:"confirmed"`
}

func measurementResponse(entry models.Measurement) fiber.Map {
	return fiber.Map{
		"id":            entry.ID,
		"ownerId":       entry.OwnerID,
		"localDay":      entry.LocalDay,
		"weightKg":      entry.WeightKg,
		"measuredAt":    entry.MeasuredAt,
		"source":        entry.Source,
		"isBackfill":    entry.IsBackfill,
		"isOutlier":     entry.IsOutlier,
		"outlierReview": entry.OutlierReview,
		"note":          entry.Note,
	}
}

func (handler *Handler) CreateMeasurement(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	ownerID, ok := handler.resolveSubjectPatient(c, user)
	if !ok {
		return nil
	}

	payload := createMeasurementPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	measuredAt, err := parseInstantField(payload.MeasuredAt)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid measuredAt")
	}
	if len([]rune(payload.Note)) > maxNoteLength {
		return apiError(c, fiber.StatusBadRequest, "note too long")
	}

	source := models.SourcePatient
	if user.Role == models.RoleProfessional {
		source = models.SourceProfessional
	}

	entry, warnings, err := handler.measurements.Create(services.MeasurementInput{
		OwnerID:    ownerID,
		WeightKg:   payload.WeightKg,
		MeasuredAt: measuredAt,
		Source:     source,
		Note:       payload.Note,
		RecordedBy: user.ID,
	}, time.Now().In(handler.location))
	if err != nil {
		if response, handled := domainError(c, err); handled {
			return response
		}
		return apiError(c, fiber.StatusInternalServerError, "failed to store measurement")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"measurement": measurementResponse(entry),
		"warnings":    warnings,
	})
}

func (handler *Handler) UpdateMeasurement(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	payload := updateMeasurementPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if payload.Note != nil && len([]rune(*payload.Note)) > maxNoteLength {
		return apiError(c, fiber.StatusBadRequest, "note too long")
	}

	entry, err := handler.measurements.Update(c.Params("id"), user.ID, services.MeasurementPatch{
		WeightKg: payload.WeightKg,
		Note:     payload.Note,
	}, time.Now().In(handler.location))
	if err != nil {
		if response, handled := domainError(c, err); handled {
			return response
		}
		return apiError(c, fiber.StatusInternalServerError, "failed to update measurement")
	}
	return c.JSON(measurementResponse(entry))
}

func (handler *Handler) DeleteMeasurement(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if err := handler.measurements.Delete(c.Params("id"), user.ID, time.Now().In(handler.location)); err != nil {
		if response, handled := domainError(c, err); handled {
			return response
		}
		return apiError(c, fiber.StatusInternalServerError, "failed to delete measurement")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) ReviewOutlier(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	payload := reviewOutlierPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	professionalOverride := user.Role == models.RoleProfessional
	entry, err := handler.measurements.ReviewOutlier(c.Params("id"), user.ID, professionalOverride, payload.Confirmed, time.Now().In(handler.location))
	if err != nil {
		if response, handled := domainError(c, err); handled {
			return response
		}
		return apiError(c, fiber.StatusInternalServerError, "failed to review outlier")
	}
	return c.JSON(measurementResponse(entry))
}

func (handler *Handler) ListMeasurements(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	ownerID, ok := handler.resolveSubjectPatient(c, user)
	if !ok {
		return nil
	}

	now := time.Now().In(handler.location)
	defaultTo := clock.DayKey(now, handler.location)
	defaultFrom := clock.LocalDay(now, handler.location).
		AddDate(0, 0, -(DefaultChartRangeDays - 1)).
		Format(clock.DayLayout)

	fromDay, err := handler.parseDayQuery(c, "from", defaultFrom)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid from date")
	}
	toDay, err := handler.parseDayQuery(c, "to", defaultTo)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid to date")
	}
	if fromDay > toDay {
		return apiError(c, fiber.StatusBadRequest, "from must not be after to")
	}

	points, statistics, err := handler.measurements.ChartSeries(ownerID, fromDay, toDay)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load measurements")
	}
	return c.JSON(fiber.Map{
		"points":     points,
		"statistics": statistics,
	})
}
