package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/scheduling"
	"clinic-booking-server/internal/utils"
)

// AppointmentHandler exposes the scheduling engine over HTTP.
type AppointmentHandler struct {
	Engine *scheduling.Engine
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(engine *scheduling.Engine) *AppointmentHandler {
	return &AppointmentHandler{Engine: engine}
}

// respondSchedulingError maps the engine's error taxonomy onto HTTP status
// codes. Unrecognized errors become a generic 500 so storage internals never
// reach the caller.
func respondSchedulingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, scheduling.ErrInvalidRequest):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, scheduling.ErrSlotUnavailable):
		utils.Conflict(c, err.Error())
	case errors.Is(err, scheduling.ErrIllegalTransition):
		utils.Conflict(c, err.Error())
	case errors.Is(err, scheduling.ErrForbidden):
		utils.Forbidden(c, err.Error())
	case errors.Is(err, scheduling.ErrNotFound):
		utils.NotFound(c, err.Error())
	default:
		utils.InternalServerError(c, "An unexpected error occurred")
	}
}

// BookAppointmentRequest represents the request body for booking an appointment.
type BookAppointmentRequest struct {
	DoctorID        string `json:"doctorId" binding:"required,uuid"`
	AppointmentDate string `json:"appointmentDate" binding:"required"`
	AppointmentTime string `json:"appointmentTime" binding:"required"`
	PatientNotes    string `json:"patientNotes"`
}

// Book handles a patient booking a new appointment.
func (h *AppointmentHandler) Book(c *gin.Context) {
	var req BookAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patientID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appt, err := h.Engine.Book(patientID, scheduling.BookingRequest{
		DoctorID:        req.DoctorID,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		PatientNotes:    req.PatientNotes,
	})
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Created(c, "Appointment booked successfully", appt)
}

// TransitionRequest carries the optional doctor notes some transitions accept.
type TransitionRequest struct {
	DoctorNotes string `json:"doctorNotes"`
}

func (h *AppointmentHandler) transition(c *gin.Context, action scheduling.Action, message string) {
	actorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	actorRole, _ := middleware.GetUserRoleFromContext(c)

	// Body is optional on transition endpoints.
	var req TransitionRequest
	_ = c.ShouldBindJSON(&req)

	appt, err := h.Engine.Transition(actorID, actorRole, c.Param("id"), action, req.DoctorNotes)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, message, appt)
}

// Confirm handles a doctor confirming a pending appointment.
func (h *AppointmentHandler) Confirm(c *gin.Context) {
	h.transition(c, scheduling.ActionConfirm, "Appointment confirmed")
}

// Reject handles a doctor rejecting a pending appointment.
func (h *AppointmentHandler) Reject(c *gin.Context) {
	h.transition(c, scheduling.ActionReject, "Appointment rejected")
}

// Complete handles a doctor completing a confirmed appointment.
func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.transition(c, scheduling.ActionComplete, "Appointment completed")
}

// Cancel handles the owning patient or assigned doctor cancelling a live
// appointment.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	h.transition(c, scheduling.ActionCancel, "Appointment cancelled")
}

// GetMyAppointments returns the caller's own appointments: booked ones for a
// patient, assigned ones for a doctor.
func (h *AppointmentHandler) GetMyAppointments(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	var (
		appts []models.Appointment
		err   error
	)
	if userRole == models.RoleDoctor {
		appts, err = h.Engine.ListForDoctor(userID)
	} else {
		appts, err = h.Engine.ListForPatient(userID)
	}
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Appointments fetched successfully", appts)
}

// GetByID returns one appointment to the owning patient, the assigned doctor,
// or an admin.
func (h *AppointmentHandler) GetByID(c *gin.Context) {
	actorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	actorRole, _ := middleware.GetUserRoleFromContext(c)

	appt, err := h.Engine.Get(actorID, actorRole, c.Param("id"))
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Appointment fetched successfully", appt)
}
