package directory

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/scheduling"
)

// Directory owns doctor profiles: created at doctor registration, read by the
// scheduling engine, availability mutated only through SetAvailability.
// Working days and hours are fixed at registration.
type Directory struct {
	db *gorm.DB
}

// New creates a Directory over the given database.
func New(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

// RegisterProfile attaches a doctor profile to a freshly registered user with
// role DOCTOR. Specialty is required; schedule fields default when empty.
func (d *Directory) RegisterProfile(userID string, profile models.DoctorProfile) (*models.DoctorProfile, error) {
	if strings.TrimSpace(profile.Specialty) == "" {
		return nil, fmt.Errorf("%w: specialty is required for doctors", scheduling.ErrInvalidRequest)
	}
	profile.UserID = userID
	profile.Available = true
	if profile.WorkingDays == "" {
		profile.WorkingDays = models.DefaultWorkingDays
	}
	if profile.WorkingHours == "" {
		profile.WorkingHours = models.DefaultWorkingHours
	}
	if err := d.db.Create(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// Profile resolves a doctor user id to its profile. Satisfies
// scheduling.DoctorSource.
func (d *Directory) Profile(doctorID string) (*models.DoctorProfile, error) {
	var profile models.DoctorProfile
	err := d.db.
		Joins("JOIN users ON users.id = doctor_profiles.user_id AND users.role = ?", models.RoleDoctor).
		Where("doctor_profiles.user_id = ?", doctorID).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: doctor %s", scheduling.ErrNotFound, doctorID)
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// SetAvailability records an explicit availability state together with who set
// it and when. It has no effect on existing appointments: a doctor disabled
// mid-cycle still owns and may act on already-booked live appointments.
func (d *Directory) SetAvailability(doctorID string, available bool, actorID string) (*models.DoctorProfile, error) {
	profile, err := d.Profile(doctorID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	profile.Available = available
	profile.AvailabilitySetBy = actorID
	profile.AvailabilitySetAt = &now
	if err := d.db.Save(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// DoctorView is the doctor projection consumed by patient browsing and the
// admin dashboard: user identity plus profile fields.
type DoctorView struct {
	ID              string  `json:"id"`
	FirstName       string  `json:"firstName"`
	LastName        string  `json:"lastName"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone,omitempty"`
	Specialty       string  `json:"specialty"`
	Bio             string  `json:"bio,omitempty"`
	ExperienceYears int     `json:"experienceYears"`
	ConsultationFee float64 `json:"consultationFee"`
	WorkingDays     string  `json:"workingDays"`
	WorkingHours    string  `json:"workingHours"`
	Available       bool    `json:"available"`
}

func view(u *models.User, p *models.DoctorProfile) DoctorView {
	return DoctorView{
		ID:              u.ID,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Email:           u.Email,
		Phone:           u.Phone,
		Specialty:       p.Specialty,
		Bio:             p.Bio,
		ExperienceYears: p.ExperienceYears,
		ConsultationFee: p.ConsultationFee,
		WorkingDays:     p.WorkingDays,
		WorkingHours:    p.WorkingHours,
		Available:       p.Available,
	}
}

func (d *Directory) listProfiles(conds ...func(*gorm.DB) *gorm.DB) ([]DoctorView, error) {
	var profiles []models.DoctorProfile
	query := d.db.Preload("User")
	for _, c := range conds {
		query = c(query)
	}
	if err := query.Find(&profiles).Error; err != nil {
		return nil, err
	}
	views := make([]DoctorView, len(profiles))
	for i := range profiles {
		views[i] = view(&profiles[i].User, &profiles[i])
	}
	return views, nil
}

// ListAvailable returns doctors currently accepting appointments.
func (d *Directory) ListAvailable() ([]DoctorView, error) {
	return d.listProfiles(func(q *gorm.DB) *gorm.DB {
		return q.Where("available = ?", true)
	})
}

// ListAll returns every doctor regardless of availability.
func (d *Directory) ListAll() ([]DoctorView, error) {
	return d.listProfiles()
}

// Search returns doctors whose specialty contains the given term.
func (d *Directory) Search(specialty string) ([]DoctorView, error) {
	return d.listProfiles(func(q *gorm.DB) *gorm.DB {
		return q.Where("LOWER(specialty) LIKE ?", "%"+strings.ToLower(specialty)+"%")
	})
}

// GetByID returns one doctor's view.
func (d *Directory) GetByID(doctorID string) (*DoctorView, error) {
	profile, err := d.Profile(doctorID)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := d.db.First(&user, "id = ?", doctorID).Error; err != nil {
		return nil, err
	}
	v := view(&user, profile)
	return &v, nil
}
