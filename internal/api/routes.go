package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)
	auth.Post("/change-password", handler.AuthRequired, handler.ChangePassword)

	measurements := api.Group("/measurements", handler.AuthRequired)
	measurements.Get("", handler.ListMeasurements)
	measurements.Post("", handler.CreateMeasurement)
	measurements.Patch("/:id", handler.UpdateMeasurement)
	measurements.Delete("/:id", handler.DeleteMeasurement)
	measurements.Post("/:id/outlier", handler.ReviewOutlier)

	stats := api.Group("/stats", handler.AuthRequired)
	stats.Get("/compliance", handler.GetComplianceStats)
}
