package scheduling

import (
	"fmt"

	"clinic-booking-server/internal/models"
)

// Action is a requested appointment state transition.
type Action string

const (
	ActionConfirm  Action = "CONFIRM"
	ActionReject   Action = "REJECT"
	ActionComplete Action = "COMPLETE"
	ActionCancel   Action = "CANCEL"
)

// transitionRule is one row of the appointment state machine. patientMay and
// doctorMay gate the owning patient and the assigned doctor; nobody else,
// admins included, may transition an appointment.
type transitionRule struct {
	from       models.AppointmentStatus
	action     Action
	to         models.AppointmentStatus
	patientMay bool
	doctorMay  bool
}

var transitionTable = []transitionRule{
	{from: models.StatusPending, action: ActionConfirm, to: models.StatusConfirmed, doctorMay: true},
	{from: models.StatusPending, action: ActionReject, to: models.StatusRejected, doctorMay: true},
	{from: models.StatusPending, action: ActionCancel, to: models.StatusCancelled, patientMay: true},
	{from: models.StatusConfirmed, action: ActionComplete, to: models.StatusCompleted, doctorMay: true},
	{from: models.StatusConfirmed, action: ActionCancel, to: models.StatusCancelled, patientMay: true, doctorMay: true},
}

func findRule(from models.AppointmentStatus, action Action) *transitionRule {
	for i := range transitionTable {
		if transitionTable[i].from == from && transitionTable[i].action == action {
			return &transitionTable[i]
		}
	}
	return nil
}

// DoctorSource resolves a doctor id to its profile. Returns ErrNotFound when
// the id is unknown or the user is not a doctor.
type DoctorSource interface {
	Profile(doctorID string) (*models.DoctorProfile, error)
}

// Engine validates and creates appointments and drives the appointment state
// machine. All writes go through the Ledger.
type Engine struct {
	ledger  *Ledger
	doctors DoctorSource
}

// NewEngine creates a scheduling engine.
func NewEngine(ledger *Ledger, doctors DoctorSource) *Engine {
	return &Engine{ledger: ledger, doctors: doctors}
}

// BookingRequest carries a validated booking intent.
type BookingRequest struct {
	DoctorID        string
	AppointmentDate string // "2006-01-02"
	AppointmentTime string // "15:04", must be a canonical slot
	PatientNotes    string
}

// Book creates a PENDING appointment for the patient if the doctor is
// accepting appointments, the slot is canonical and inside the doctor's
// schedule, the date is not in the past, and the slot is free.
func (e *Engine) Book(patientID string, req BookingRequest) (*models.Appointment, error) {
	profile, err := e.doctors.Profile(req.DoctorID)
	if err != nil {
		return nil, err
	}
	if !profile.Available {
		return nil, fmt.Errorf("%w: this doctor is currently not accepting appointments", ErrInvalidRequest)
	}

	if !IsCanonicalSlot(req.AppointmentTime) {
		return nil, fmt.Errorf("%w: %s is not a bookable time slot", ErrInvalidRequest, req.AppointmentTime)
	}
	date, err := ParseDate(req.AppointmentDate)
	if err != nil {
		return nil, fmt.Errorf("%w: appointment date must be in %s format", ErrInvalidRequest, DateLayout)
	}
	if req.AppointmentDate < Today() {
		return nil, fmt.Errorf("%w: appointment date must not be in the past", ErrInvalidRequest)
	}
	if !profile.WorksOn(WeekdayName(date)) {
		return nil, fmt.Errorf("%w: the doctor does not work on %s", ErrInvalidRequest, date.Weekday())
	}
	if !SlotWithinHours(req.AppointmentTime, profile.WorkingHours) {
		return nil, fmt.Errorf("%w: %s is outside the doctor's working hours (%s)",
			ErrInvalidRequest, req.AppointmentTime, profile.WorkingHours)
	}

	appt := &models.Appointment{
		PatientID:       patientID,
		DoctorID:        req.DoctorID,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		Status:          models.StatusPending,
		PatientNotes:    req.PatientNotes,
	}
	if err := e.ledger.Insert(appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// Transition applies one state-machine action to an appointment on behalf of
// an actor. Actors outside the appointment get ErrForbidden without learning
// anything about it; involved actors get ErrIllegalTransition when the action
// is not legal from the current status, or ErrForbidden when the action
// belongs to the other party. doctorNotes is recorded on doctor actions.
func (e *Engine) Transition(actorID string, actorRole models.Role, appointmentID string, action Action, doctorNotes string) (*models.Appointment, error) {
	return e.ledger.Update(appointmentID, func(appt *models.Appointment) error {
		isPatient := actorRole == models.RolePatient && actorID == appt.PatientID
		isDoctor := actorRole == models.RoleDoctor && actorID == appt.DoctorID
		if !isPatient && !isDoctor {
			return fmt.Errorf("%w: you are not authorized to manage this appointment", ErrForbidden)
		}

		rule := findRule(appt.Status, action)
		if rule == nil {
			return fmt.Errorf("%w: cannot %s a %s appointment as %s",
				ErrIllegalTransition, action, appt.Status, actorRole)
		}
		if (isPatient && !rule.patientMay) || (isDoctor && !rule.doctorMay) {
			return fmt.Errorf("%w: %s may not %s this appointment", ErrForbidden, actorRole, action)
		}

		appt.Status = rule.to
		if isDoctor && doctorNotes != "" {
			appt.DoctorNotes = doctorNotes
		}
		return nil
	})
}

// Get returns an appointment's detail to the owning patient, the assigned
// doctor, or an admin.
func (e *Engine) Get(actorID string, actorRole models.Role, appointmentID string) (*models.Appointment, error) {
	appt, err := e.ledger.ByID(appointmentID)
	if err != nil {
		return nil, err
	}
	if actorRole != models.RoleAdmin && actorID != appt.PatientID && actorID != appt.DoctorID {
		return nil, fmt.Errorf("%w: you are not authorized to view this appointment", ErrForbidden)
	}
	return appt, nil
}

// ListForPatient returns the patient's own appointments.
func (e *Engine) ListForPatient(patientID string) ([]models.Appointment, error) {
	return e.ledger.ForPatient(patientID)
}

// ListForDoctor returns the doctor's assigned appointments.
func (e *Engine) ListForDoctor(doctorID string) ([]models.Appointment, error) {
	return e.ledger.ForDoctor(doctorID)
}

// ListAll returns every appointment. Admin-only; the route gates it.
func (e *Engine) ListAll() ([]models.Appointment, error) {
	return e.ledger.All()
}
