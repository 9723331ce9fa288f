package scheduling

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"gorm.io/gorm"

	"clinic-booking-server/internal/models"
)

// liveStatuses are the statuses that hold a slot.
var liveStatuses = []models.AppointmentStatus{models.StatusPending, models.StatusConfirmed}

// lockTable is a striped set of mutexes keyed by string. Locking a key only
// contends with keys that hash to the same stripe, so bookings for unrelated
// doctors and transitions on unrelated appointments stay independent.
type lockTable struct {
	shards [64]sync.Mutex
}

func (t *lockTable) get(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &t.shards[h.Sum32()%uint32(len(t.shards))]
}

// Ledger is the authoritative appointment store. It is the only component
// that writes appointment rows, and the only place the double-booking
// invariant is enforced.
type Ledger struct {
	db      *gorm.DB
	slots   lockTable // keyed by doctorID|date|time, serializes Insert per slot
	records lockTable // keyed by appointment ID, serializes Update per record
}

// NewLedger creates a Ledger over the given database.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

func slotKey(doctorID, date, timeOfDay string) string {
	return doctorID + "|" + date + "|" + timeOfDay
}

// FindLiveConflict returns the live appointment occupying the slot, or nil.
func (l *Ledger) FindLiveConflict(doctorID, date, timeOfDay string) (*models.Appointment, error) {
	var appt models.Appointment
	err := l.retryRead(func() error {
		return l.db.
			Where("doctor_id = ? AND appointment_date = ? AND appointment_time = ? AND status IN ?",
				doctorID, date, timeOfDay, liveStatuses).
			First(&appt).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("conflict lookup failed: %w", err)
	}
	return &appt, nil
}

// Insert persists a new appointment after re-checking the slot is free. The
// check and the insert run under the slot's lock inside one transaction, so of
// two concurrent bookings for the same slot exactly one succeeds and the other
// gets ErrSlotUnavailable.
func (l *Ledger) Insert(appt *models.Appointment) error {
	mu := l.slots.get(slotKey(appt.DoctorID, appt.AppointmentDate, appt.AppointmentTime))
	mu.Lock()
	defer mu.Unlock()

	return l.db.Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.Appointment{}).
			Where("doctor_id = ? AND appointment_date = ? AND appointment_time = ? AND status IN ?",
				appt.DoctorID, appt.AppointmentDate, appt.AppointmentTime, liveStatuses).
			Count(&taken).Error; err != nil {
			return fmt.Errorf("conflict check failed: %w", err)
		}
		if taken > 0 {
			return fmt.Errorf("%w: this time slot is already booked, please choose another time", ErrSlotUnavailable)
		}
		return tx.Create(appt).Error
	})
}

// Update loads the appointment, applies mutate and saves the result, all
// under the record's lock inside one transaction. Concurrent transitions on
// the same appointment serialize; the loser observes the new status and fails
// inside its mutator. Returns ErrNotFound for an unknown id.
func (l *Ledger) Update(id string, mutate func(*models.Appointment) error) (*models.Appointment, error) {
	mu := l.records.get(id)
	mu.Lock()
	defer mu.Unlock()

	var appt models.Appointment
	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&appt, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: appointment %s", ErrNotFound, id)
			}
			return fmt.Errorf("appointment lookup failed: %w", err)
		}
		if err := mutate(&appt); err != nil {
			return err
		}
		return tx.Save(&appt).Error
	})
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// ByID fetches a single appointment. Callers enforce view authorization.
func (l *Ledger) ByID(id string) (*models.Appointment, error) {
	var appt models.Appointment
	err := l.retryRead(func() error {
		return l.db.First(&appt, "id = ?", id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: appointment %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// ForPatient lists a patient's appointments, most recent slot first.
func (l *Ledger) ForPatient(patientID string) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := l.retryRead(func() error {
		return l.db.
			Where("patient_id = ?", patientID).
			Order("appointment_date desc, appointment_time desc").
			Find(&appts).Error
	})
	return appts, err
}

// ForDoctor lists a doctor's appointments in schedule order.
func (l *Ledger) ForDoctor(doctorID string) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := l.retryRead(func() error {
		return l.db.
			Where("doctor_id = ?", doctorID).
			Order("appointment_date asc, appointment_time asc").
			Find(&appts).Error
	})
	return appts, err
}

// All lists every appointment, newest booking first.
func (l *Ledger) All() ([]models.Appointment, error) {
	var appts []models.Appointment
	err := l.retryRead(func() error {
		return l.db.Order("created_at desc").Find(&appts).Error
	})
	return appts, err
}

// retryRead runs a pure read and retries it once on a storage failure.
// Not-found is a result, not a failure, and is never retried.
func (l *Ledger) retryRead(read func() error) error {
	err := read()
	if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return read()
}
