package handlers

import (
	"medtrack-api/internal/core/services"
	"medtrack-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AppointmentHandler handles appointment endpoints
type AppointmentHandler struct {
	appointmentService *services.AppointmentService
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(appointmentService *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

// List lists appointments
// @Summary List appointments
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Appointment
// @Router /appointments [get]
func (h *AppointmentHandler) List(c *fiber.Ctx) error {
	appts, err := h.appointmentService.GetAll(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, appts)
}

// GetByDate returns the appointment on a date
// @Summary Get appointment by date
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param date path string true "YYYY-MM-DD"
// @Success 200 {object} models.Appointment
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /appointments/date/{date} [get]
func (h *AppointmentHandler) GetByDate(c *fiber.Ctx) error {
	appt, err := h.appointmentService.GetByDate(c.UserContext(), c.Params("date"))
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, appt)
}

// Create books an appointment
// @Summary Create appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateAppointmentInput true "Appointment"
// @Success 201 {object} models.Appointment
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /appointments [post]
func (h *AppointmentHandler) Create(c *fiber.Ctx) error {
	var req services.CreateAppointmentInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	appt, err := h.appointmentService.Create(c.UserContext(), &req)
	if err != nil {
		return writeError(c, err)
	}
	return response.CreatedRecord(c, appt)
}

// Update patches an appointment
// @Summary Update appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Param body body services.UpdateAppointmentInput true "Fields to change"
// @Success 200 {object} models.Appointment
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /appointments/{id} [put]
func (h *AppointmentHandler) Update(c *fiber.Ctx) error {
	var req services.UpdateAppointmentInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	appt, err := h.appointmentService.Update(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, appt)
}

// Delete cancels an appointment
// @Summary Delete appointment
// @Tags Appointments
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Success 204
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /appointments/{id} [delete]
func (h *AppointmentHandler) Delete(c *fiber.Ctx) error {
	if err := h.appointmentService.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return response.NoContent(c)
}
