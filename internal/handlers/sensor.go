package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sensorbridge/sensorbridge/internal/models"
)

// GetSensorData handles consolidated sensor data queries
func (h *Handler) GetSensorData(c *fiber.Ctx) error {
	req := &models.SampleQueryRequest{
		Page:       c.QueryInt("page", 1),
		Limit:      c.QueryInt("limit", models.DefaultSampleLimit),
		DeviceID:   c.Query("deviceId"),
		SensorType: c.Query("sensorType"),
		StartDate:  c.Query("startDate"),
		EndDate:    c.Query("endDate"),
		Search:     c.Query("search"),
		SortBy:     c.Query("sortBy"),
		SortOrder:  c.Query("sortOrder"),
	}
	if err := req.Validate(); err != nil {
		return err
	}

	res, err := h.sensorQuery.Query(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(models.DataResponse{
		Success:    true,
		Data:       res.Rows,
		Pagination: &res.Pagination,
	})
}

// GetLatestSensorData returns the most recent sample of every device
func (h *Handler) GetLatestSensorData(c *fiber.Ctx) error {
	latest, err := h.sensorQuery.Latest(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(models.DataResponse{Success: true, Data: latest})
}

// GetDeviceSeries returns recent consolidated rows of one device
func (h *Handler) GetDeviceSeries(c *fiber.Ctx) error {
	rows, err := h.sensorQuery.DeviceSeries(c.Context(), c.Params("deviceId"), c.QueryInt("limit", 100))
	if err != nil {
		return err
	}
	return c.JSON(models.DataResponse{Success: true, Data: rows})
}

// GetSensorStats returns sample and device counters
func (h *Handler) GetSensorStats(c *fiber.Ctx) error {
	stats, err := h.sensorQuery.Stats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(models.DataResponse{Success: true, Data: stats})
}

// ClearSensorData removes samples older than the given number of days.
// days=0 (the default) clears everything.
func (h *Handler) ClearSensorData(c *fiber.Ctx) error {
	deleted, err := h.retention.ClearSamples(c.Context(), c.QueryInt("days", 0))
	if err != nil {
		return err
	}
	return c.JSON(models.DataResponse{
		Success: true,
		Data:    fiber.Map{"deleted": deleted},
		Message: "Sensor data cleared",
	})
}
