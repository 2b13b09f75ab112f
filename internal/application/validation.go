package application

import "time"

const (
	dateLayout     = "2006-01-02"
	clockLayout    = "15:04"
	instantLayout  = dateLayout + " " + clockLayout
	monthLayout    = "2006-01"
	fieldTitle     = "title"
	fieldDate      = "date"
	fieldTime      = "time"
	fieldMonth     = "month"
	requiredSuffix = " is required"
)

// ValidateDraft applies the submission gate: title, date and time must be
// non-empty. Nothing else is checked; a date or time that does not parse
// simply never arms a notification.
func ValidateDraft(d Draft) *ValidationError {
	vErr := &ValidationError{}

	if d.Title == "" {
		vErr.add(fieldTitle, fieldTitle+requiredSuffix)
	}
	if d.Date == "" {
		vErr.add(fieldDate, fieldDate+requiredSuffix)
	}
	if d.Time == "" {
		vErr.add(fieldTime, fieldTime+requiredSuffix)
	}

	return vErr
}

func validDate(value string) bool {
	if len(value) != len(dateLayout) {
		return false
	}
	_, err := time.Parse(dateLayout, value)
	return err == nil
}

func validClock(value string) bool {
	if len(value) != len(clockLayout) {
		return false
	}
	_, err := time.Parse(clockLayout, value)
	return err == nil
}

// eventInstant resolves an event's date and time of day in loc.
func eventInstant(date, clock string, loc *time.Location) (time.Time, bool) {
	if !validDate(date) || !validClock(clock) {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	at, err := time.ParseInLocation(instantLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}
