package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sensorbridge/sensorbridge/internal/models"
)

// GetControlHistory handles control history queries
func (h *Handler) GetControlHistory(c *fiber.Ctx) error {
	req := &models.HistoryQueryRequest{
		Page:      c.QueryInt("page", 1),
		Limit:     c.QueryInt("limit", models.DefaultHistoryLimit),
		DeviceID:  c.Query("deviceId"),
		Action:    c.Query("action"),
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	if err := req.Validate(); err != nil {
		return err
	}

	res, err := h.historyQuery.Query(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(models.DataResponse{
		Success:    true,
		Data:       res.Records,
		Pagination: &res.Pagination,
	})
}

// GetHistoryStats returns command outcome counters
func (h *Handler) GetHistoryStats(c *fiber.Ctx) error {
	stats, err := h.historyQuery.Stats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(models.DataResponse{Success: true, Data: stats})
}

// ClearControlHistory removes history older than the given number of days.
// days=0 (the default) clears everything.
func (h *Handler) ClearControlHistory(c *fiber.Ctx) error {
	deleted, err := h.retention.ClearHistory(c.Context(), c.QueryInt("days", 0))
	if err != nil {
		return err
	}
	return c.JSON(models.DataResponse{
		Success: true,
		Data:    fiber.Map{"deleted": deleted},
		Message: "Control history cleared",
	})
}
