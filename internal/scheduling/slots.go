package scheduling

import (
	"strings"
	"time"
)

// Layouts for the wire format of appointment dates and times.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// SlotMinutes is the fixed length of every bookable slot.
const SlotMinutes = 30

// CanonicalSlots is the closed list of bookable times of day. There are no
// 12:00/12:30 slots (lunch break).
var CanonicalSlots = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"13:00", "13:30", "14:00", "14:30", "15:00", "15:30", "16:00", "16:30",
}

// IsCanonicalSlot reports whether t is one of the bookable times of day.
func IsCanonicalSlot(t string) bool {
	for _, s := range CanonicalSlots {
		if s == t {
			return true
		}
	}
	return false
}

// ParseDate parses an appointment date in DateLayout.
func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

// slotMinutesOfDay converts "HH:MM" to minutes since midnight.
func slotMinutesOfDay(t string) (int, error) {
	parsed, err := time.Parse(TimeLayout, t)
	if err != nil {
		return 0, err
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// SlotWithinHours reports whether the whole slot fits inside a working-hours
// interval of the form "09:00-17:00". A slot starting at 16:30 fits a day
// ending at 17:00.
func SlotWithinHours(slot, workingHours string) bool {
	parts := strings.SplitN(workingHours, "-", 2)
	if len(parts) != 2 {
		return false
	}
	open, err := slotMinutesOfDay(strings.TrimSpace(parts[0]))
	if err != nil {
		return false
	}
	close, err := slotMinutesOfDay(strings.TrimSpace(parts[1]))
	if err != nil {
		return false
	}
	start, err := slotMinutesOfDay(slot)
	if err != nil {
		return false
	}
	return start >= open && start+SlotMinutes <= close
}

// WeekdayName returns the uppercase weekday name of a date, matching the
// format stored in DoctorProfile.WorkingDays.
func WeekdayName(date time.Time) string {
	return strings.ToUpper(date.Weekday().String())
}

// Today returns the current date in DateLayout. Dates compare correctly as
// strings in this layout.
func Today() string {
	return time.Now().Format(DateLayout)
}
