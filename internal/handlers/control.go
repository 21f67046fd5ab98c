package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sensorbridge/sensorbridge/internal/models"
)

// IssueCommand dispatches a device command to the broker
func (h *Handler) IssueCommand(c *fiber.Ctx) error {
	var req models.CommandRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	record, err := h.command.Dispatch(c.Context(), &req)
	if err != nil {
		return err
	}

	return c.JSON(models.DataResponse{
		Success: true,
		Data:    record,
		Message: "Command sent",
	})
}

// ListDevices returns the device directory
func (h *Handler) ListDevices(c *fiber.Ctx) error {
	devices, err := h.devices.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(models.DataResponse{Success: true, Data: devices})
}

// GetDeviceStatus returns one device
func (h *Handler) GetDeviceStatus(c *fiber.Ctx) error {
	device, err := h.devices.Get(c.Context(), c.Params("deviceId"))
	if err != nil {
		return err
	}
	return c.JSON(models.DataResponse{Success: true, Data: device})
}

// UpdateDevice changes the display fields of a device
func (h *Handler) UpdateDevice(c *fiber.Ctx) error {
	var update models.DeviceUpdate
	if err := c.BodyParser(&update); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := update.Validate(); err != nil {
		return err
	}

	device, err := h.devices.Update(c.Context(), c.Params("deviceId"), &update)
	if err != nil {
		return err
	}
	return c.JSON(models.DataResponse{
		Success: true,
		Data:    device,
		Message: "Device updated",
	})
}
