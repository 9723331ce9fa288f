package models

import (
	"strings"
	"time"
)

// Default schedule applied when a doctor registers without one.
const (
	DefaultWorkingDays  = "MONDAY,TUESDAY,WEDNESDAY,THURSDAY,FRIDAY"
	DefaultWorkingHours = "09:00-17:00"
)

// DoctorProfile holds the doctor-specific fields referenced from a User with
// role DOCTOR. WorkingDays and WorkingHours are fixed at registration;
// availability is the only mutable field and only admins flip it.
type DoctorProfile struct {
	BaseModel
	UserID            string     `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	Specialty         string     `gorm:"size:100;not null" json:"specialty"`
	Bio               string     `gorm:"type:text" json:"bio,omitempty"`
	ExperienceYears   int        `gorm:"default:0" json:"experienceYears"`
	ConsultationFee   float64    `gorm:"default:0" json:"consultationFee"`
	WorkingDays       string     `gorm:"size:100" json:"workingDays"` // comma-separated weekday names, e.g. "MONDAY,TUESDAY"
	WorkingHours      string     `gorm:"size:20" json:"workingHours"` // e.g. "09:00-17:00"
	Available         bool       `gorm:"default:true" json:"available"`
	AvailabilitySetBy string     `gorm:"size:36" json:"-"`
	AvailabilitySetAt *time.Time `json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// WorksOn reports whether the given weekday name (e.g. "MONDAY") is one of the
// doctor's working days.
func (p *DoctorProfile) WorksOn(weekday string) bool {
	for _, d := range strings.Split(p.WorkingDays, ",") {
		if strings.EqualFold(strings.TrimSpace(d), weekday) {
			return true
		}
	}
	return false
}
