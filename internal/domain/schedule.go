package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ServiceSchedule is a recurring weekly availability window for a service.
type ServiceSchedule struct {
	ID        string
	ServiceID string
	UserID    string
	DayOfWeek int // 0 = Sunday
	StartTime string
	EndTime   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ScheduleExceptionType describes how an exception alters a day's availability.
type ScheduleExceptionType string

const (
	ScheduleExceptionUnavailable ScheduleExceptionType = "UNAVAILABLE"
	ScheduleExceptionCustomHours ScheduleExceptionType = "CUSTOM_HOURS"
	ScheduleExceptionHoliday     ScheduleExceptionType = "HOLIDAY"
)

// ScheduleException overrides the weekly schedule on a specific date.
type ScheduleException struct {
	ID            string
	ServiceID     string
	UserID        string
	ExceptionDate string // YYYY-MM-DD
	Type          ScheduleExceptionType
	StartTime     string
	EndTime       string
	Reason        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BlocksDay reports whether the exception removes all availability for its date.
func (e *ScheduleException) BlocksDay() bool {
	return e.Type == ScheduleExceptionUnavailable || e.Type == ScheduleExceptionHoliday
}

// TimeSlot is a candidate booking window on a given day.
type TimeSlot struct {
	StartTime      string
	EndTime        string
	IsAvailable    bool
	ConflictReason string
}

// DateLayout is the format used for booking and exception dates.
const DateLayout = "2006-01-02"

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// DayName returns the English weekday name for 0..6, or "" when out of range.
func DayName(day int) string {
	if day < 0 || day > 6 {
		return ""
	}
	return dayNames[day]
}

// DayAbbreviation returns the three-letter weekday abbreviation.
func DayAbbreviation(day int) string {
	name := DayName(day)
	if name == "" {
		return ""
	}
	return name[:3]
}

// TimeToMinutes parses "HH:MM" into minutes after midnight.
func TimeToMinutes(hhmm string) (int, error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q", hhmm)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("invalid hour in %q", hhmm)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", hhmm)
	}
	if h == 24 && m != 0 {
		return 0, fmt.Errorf("invalid time %q", hhmm)
	}
	return h*60 + m, nil
}

// MinutesToTime formats minutes after midnight as "HH:MM".
func MinutesToTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Overlaps reports whether [aStart,aEnd) and [bStart,bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}
