package handlers

import (
	"strconv"
	"strings"
	"time"

	"medtrack-api/internal/core/services"
	"medtrack-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultReminderHours = 24
	maxReminderHours     = 24 * 7
)

// MedicationHandler handles medication endpoints scoped to /users/:userId
type MedicationHandler struct {
	medicationService *services.MedicationService
}

// NewMedicationHandler creates a new medication handler
func NewMedicationHandler(medicationService *services.MedicationService) *MedicationHandler {
	return &MedicationHandler{medicationService: medicationService}
}

// List lists the user's medications
// @Summary List medications
// @Tags Medications
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {array} models.Medication
// @Failure 400 {object} response.Response
// @Router /users/{userId}/medications [get]
func (h *MedicationHandler) List(c *fiber.Ctx) error {
	meds, err := h.medicationService.GetAllForUser(c.UserContext(), c.Params("userId"))
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, meds)
}

// Create adds a medication
// @Summary Create medication
// @Tags Medications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param body body services.CreateMedicationInput true "Medication"
// @Success 201 {object} models.Medication
// @Failure 400 {object} response.Response
// @Router /users/{userId}/medications [post]
func (h *MedicationHandler) Create(c *fiber.Ctx) error {
	var req services.CreateMedicationInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	med, err := h.medicationService.Create(c.UserContext(), c.Params("userId"), &req)
	if err != nil {
		return writeError(c, err)
	}
	return response.CreatedRecord(c, med)
}

// Get returns one medication
// @Summary Get medication
// @Tags Medications
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param id path int true "Medication ID"
// @Success 200 {object} models.Medication
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{userId}/medications/{id} [get]
func (h *MedicationHandler) Get(c *fiber.Ctx) error {
	med, err := h.medicationService.GetByID(c.UserContext(), c.Params("id"), c.Params("userId"))
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, med)
}

// Update patches a medication
// @Summary Update medication
// @Tags Medications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param id path int true "Medication ID"
// @Param body body services.UpdateMedicationInput true "Fields to change"
// @Success 200 {object} models.Medication
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{userId}/medications/{id} [put]
func (h *MedicationHandler) Update(c *fiber.Ctx) error {
	var req services.UpdateMedicationInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	med, err := h.medicationService.Update(c.UserContext(), c.Params("id"), c.Params("userId"), &req)
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, med)
}

// Delete removes a medication
// @Summary Delete medication
// @Tags Medications
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param id path int true "Medication ID"
// @Success 204
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{userId}/medications/{id} [delete]
func (h *MedicationHandler) Delete(c *fiber.Ctx) error {
	if err := h.medicationService.Delete(c.UserContext(), c.Params("id"), c.Params("userId")); err != nil {
		return writeError(c, err)
	}
	return response.NoContent(c)
}

// TickOff marks a dose as taken
// @Summary Tick off a dose
// @Tags Medications
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param id path int true "Medication ID"
// @Success 200 {object} models.TickOffResult
// @Failure 404 {object} response.Response
// @Router /users/{userId}/medications/{id}/tick-off [post]
func (h *MedicationHandler) TickOff(c *fiber.Ctx) error {
	result, err := h.medicationService.TickOff(c.UserContext(), c.Params("id"), c.Params("userId"))
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, result)
}

// Refill replenishes stock
// @Summary Refill medication
// @Tags Medications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param id path int true "Medication ID"
// @Param body body services.RefillInput true "Refill"
// @Success 200 {object} models.RefillResult
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{userId}/medications/{id}/refill [post]
func (h *MedicationHandler) Refill(c *fiber.Ctx) error {
	var req services.RefillInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	result, err := h.medicationService.Refill(c.UserContext(), c.Params("id"), c.Params("userId"), &req)
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, result)
}

// Daily lists doses for one day
// @Summary Daily medications
// @Tags Medications
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {array} models.Medication
// @Failure 400 {object} response.Response
// @Router /users/{userId}/medications/daily [get]
func (h *MedicationHandler) Daily(c *fiber.Ctx) error {
	meds, err := h.medicationService.GetDaily(c.UserContext(), c.Params("userId"), c.Query("date"))
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, meds)
}

// Weekly lists doses for seven days
// @Summary Weekly medications
// @Tags Medications
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param date query string false "First day, YYYY-MM-DD, defaults to today"
// @Success 200 {array} models.Medication
// @Failure 400 {object} response.Response
// @Router /users/{userId}/medications/weekly [get]
func (h *MedicationHandler) Weekly(c *fiber.Ctx) error {
	meds, err := h.medicationService.GetWeekly(c.UserContext(), c.Params("userId"), c.Query("date"))
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, meds)
}

// Search finds medications by name
// @Summary Search medications
// @Tags Medications
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param name query string true "Name fragment"
// @Success 200 {array} models.Medication
// @Failure 400 {object} response.Response
// @Router /users/{userId}/medications/search [get]
func (h *MedicationHandler) Search(c *fiber.Ctx) error {
	meds, err := h.medicationService.Search(c.UserContext(), c.Params("userId"), c.Query("name"))
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, meds)
}

// Expired lists medications with an ended prescription
// @Summary Expired medications
// @Tags Medications
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param date query string false "Reference date, YYYY-MM-DD, defaults to today"
// @Success 200 {array} models.Medication
// @Failure 400 {object} response.Response
// @Router /users/{userId}/medications/expired [get]
func (h *MedicationHandler) Expired(c *fiber.Ctx) error {
	meds, err := h.medicationService.GetExpired(c.UserContext(), c.Params("userId"), c.Query("date"))
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, meds)
}

// Reminders lists doses coming due
// @Summary Upcoming reminders
// @Tags Medications
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param hours query int false "Horizon in hours (1-168), defaults to 24"
// @Success 200 {array} models.Medication
// @Failure 400 {object} response.Response
// @Router /users/{userId}/medications/reminders [get]
func (h *MedicationHandler) Reminders(c *fiber.Ctx) error {
	hours := defaultReminderHours
	if raw := strings.TrimSpace(c.Query("hours")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxReminderHours {
			return response.BadRequest(c, "hours must be an integer between 1 and 168")
		}
		hours = n
	}

	meds, err := h.medicationService.GetUpcomingReminders(c.UserContext(), c.Params("userId"), time.Duration(hours)*time.Hour)
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, meds)
}
