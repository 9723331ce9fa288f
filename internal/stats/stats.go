package stats

import (
	"gorm.io/gorm"

	"clinic-booking-server/internal/models"
)

// Snapshot is the admin dashboard projection. Taken under one transaction so
// totalAppointments always equals the sum of the per-status counts.
type Snapshot struct {
	TotalPatients         int64 `json:"totalPatients"`
	TotalDoctors          int64 `json:"totalDoctors"`
	TotalAppointments     int64 `json:"totalAppointments"`
	PendingAppointments   int64 `json:"pendingAppointments"`
	ConfirmedAppointments int64 `json:"confirmedAppointments"`
	CompletedAppointments int64 `json:"completedAppointments"`
	CancelledAppointments int64 `json:"cancelledAppointments"`
	RejectedAppointments  int64 `json:"rejectedAppointments"`
}

// Aggregator derives admin-facing counts from the ledger and the user table.
// Pure read-side projection, recomputed on demand.
type Aggregator struct {
	db *gorm.DB
}

// New creates an Aggregator over the given database.
func New(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

// Collect computes a consistent snapshot.
func (a *Aggregator) Collect() (*Snapshot, error) {
	var snap Snapshot
	err := a.db.Transaction(func(tx *gorm.DB) error {
		counts := []struct {
			dest   *int64
			status models.AppointmentStatus
		}{
			{&snap.PendingAppointments, models.StatusPending},
			{&snap.ConfirmedAppointments, models.StatusConfirmed},
			{&snap.CompletedAppointments, models.StatusCompleted},
			{&snap.CancelledAppointments, models.StatusCancelled},
			{&snap.RejectedAppointments, models.StatusRejected},
		}
		for _, c := range counts {
			if err := tx.Model(&models.Appointment{}).Where("status = ?", c.status).Count(c.dest).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Appointment{}).Count(&snap.TotalAppointments).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("role = ?", models.RolePatient).Count(&snap.TotalPatients).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("role = ?", models.RoleDoctor).Count(&snap.TotalDoctors).Error
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}
