package handlers

import (
	"errors"
	"log"
	"strings"

	"nictech/internal/models"
	"nictech/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// RepairHandler handles HTTP requests for repair orders.
type RepairHandler struct {
	service  *services.RepairService
	validate *validator.Validate
}

// NewRepairHandler creates a new RepairHandler.
func NewRepairHandler(service *services.RepairService) *RepairHandler {
	return &RepairHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterPublicRoutes registers the public tracking route.
func (h *RepairHandler) RegisterPublicRoutes(router fiber.Router) {
	router.Get("/repairs/track", h.HandleTrackRepair)
}

// RegisterAdminRoutes registers the back-office repair routes, expected to
// be mounted behind the auth middleware.
func (h *RepairHandler) RegisterAdminRoutes(router fiber.Router) {
	repairRoutes := router.Group("/repairs")
	repairRoutes.Get("/", h.HandleGetRepairs)
	repairRoutes.Post("/", h.HandleCreateRepair)
	repairRoutes.Patch("/:id/status", h.HandleUpdateRepairStatus)
}

// HandleTrackRepair looks up a repair by tracking code or client DNI.
func (h *RepairHandler) HandleTrackRepair(c *fiber.Ctx) error {
	query := c.Query("q")
	repair, err := h.service.TrackRepair(query)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "A DNI or tracking code is required",
			})
		}
		if strings.Contains(err.Error(), "no repair found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "No repair found for that DNI or tracking code",
			})
		}
		log.Printf("Error tracking repair for %q: %v", query, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not look up repair",
			"error":   err.Error(),
		})
	}
	return c.JSON(repair)
}

// HandleGetRepairs retrieves all repairs.
func (h *RepairHandler) HandleGetRepairs(c *fiber.Ctx) error {
	repairs, err := h.service.GetAllRepairs()
	if err != nil {
		log.Printf("Error getting all repairs: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve repairs",
			"error":   err.Error(),
		})
	}
	return c.JSON(repairs)
}

// HandleCreateRepair registers a new repair order.
func (h *RepairHandler) HandleCreateRepair(c *fiber.Ctx) error {
	var repair models.Repair
	if err := c.BodyParser(&repair); err != nil {
		log.Printf("Error parsing repair request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(repair); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	created, err := h.service.CreateRepair(&repair)
	if err != nil {
		log.Printf("Error creating repair: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create repair",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleUpdateRepairStatus moves a repair to a new status.
func (h *RepairHandler) HandleUpdateRepairStatus(c *fiber.Ctx) error {
	repairID := c.Params("id")
	var updateData struct {
		Status string `json:"status"`
		Note   string `json:"note"`
	}

	if err := c.BodyParser(&updateData); err != nil {
		log.Printf("Error parsing repair status update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for status update",
			"error":   err.Error(),
		})
	}

	if err := h.service.UpdateRepairStatus(repairID, updateData.Status, updateData.Note); err != nil {
		log.Printf("Error updating repair status for %s: %v", repairID, err)
		if errors.Is(err, services.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid repair status",
				"error":   err.Error(),
			})
		}
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Repair not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update repair status",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Repair status updated successfully",
	})
}
