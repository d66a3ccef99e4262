package trivia

import "time"

// The day boundary is computed in one fixed reference timezone so that all
// players' days roll over simultaneously, regardless of the viewer's zone.
const referenceZone = "America/New_York"

var refLoc = mustLoadLocation(referenceZone)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("trivia: loading reference timezone: " + err.Error())
	}
	return loc
}

// DayKey returns the day-boundary date string ("2006-01-02") for t in the
// reference timezone. All rollover comparisons use this key.
func DayKey(t time.Time) string {
	return t.In(refLoc).Format("2006-01-02")
}

// Weekday returns the 0-based weekday slot (Monday=0 .. Sunday=6) for t in
// the reference timezone, used by the weekly completion ring.
func Weekday(t time.Time) int {
	wd := int(t.In(refLoc).Weekday())
	return (wd + 6) % 7
}

// WeekStart returns the day key of the Monday of t's week in the reference
// timezone. The weekly completion ring resets when this changes.
func WeekStart(t time.Time) string {
	local := t.In(refLoc)
	return local.AddDate(0, 0, -Weekday(local)).Format("2006-01-02")
}

// NextDay returns the day key following key, or "" if key is malformed.
func NextDay(key string) string {
	t, err := time.ParseInLocation("2006-01-02", key, refLoc)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, 1).Format("2006-01-02")
}
