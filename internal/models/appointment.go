package models

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "PENDING"
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	StatusCompleted AppointmentStatus = "COMPLETED"
	StatusCancelled AppointmentStatus = "CANCELLED"
	StatusRejected  AppointmentStatus = "REJECTED"
)

// Live reports whether the status still holds the slot. Cancelled and rejected
// appointments free their slot immediately; completed ones are history.
func (s AppointmentStatus) Live() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Terminal reports whether no further transition may leave this status.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusRejected
}

// Appointment represents one booked slot on the shared ledger. Appointments
// are never deleted; cancelled and rejected rows remain for history.
type Appointment struct {
	BaseModel
	PatientID       string            `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID        string            `gorm:"size:36;index:idx_doctor_slot,priority:1;not null" json:"doctorId"`
	AppointmentDate string            `gorm:"size:10;index:idx_doctor_slot,priority:2;not null" json:"appointmentDate"` // "2006-01-02"
	AppointmentTime string            `gorm:"size:5;index:idx_doctor_slot,priority:3;not null" json:"appointmentTime"`  // "15:04", canonical slot
	Status          AppointmentStatus `gorm:"size:20;default:'PENDING';index" json:"status"`
	PatientNotes    string            `gorm:"type:text" json:"patientNotes,omitempty"`
	DoctorNotes     string            `gorm:"type:text" json:"doctorNotes,omitempty"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
}
