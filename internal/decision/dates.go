package decision

import "time"

// midnightUTC is the fixed time portion the decision service expects on every date
const midnightUTC = "T00:00:00.000+0000"

const secondsPerDay = 24 * 60 * 60

// FormatDate converts a calendar date to the decision service's timestamp format.
// Only the year, month and day of t are used; any time of day is dropped.
func FormatDate(t time.Time) string {
	return calendarDate(t).Format("2006-01-02") + midnightUTC
}

// ParseDate reads a timestamp produced by FormatDate back into a UTC date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02T15:04:05.000-0700", s)
	if err != nil {
		return time.Time{}, err
	}
	return calendarDate(t), nil
}

// DaysBetween returns the whole number of days from serviceDate to submissionDate.
// The result is negative when submissionDate is before serviceDate.
func DaysBetween(serviceDate, submissionDate time.Time) int {
	// Unix seconds rather than Time.Sub, which saturates at about 292 years
	secs := calendarDate(submissionDate).Unix() - calendarDate(serviceDate).Unix()
	return int(secs / secondsPerDay)
}

// calendarDate normalizes t to midnight UTC on the same calendar date
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
