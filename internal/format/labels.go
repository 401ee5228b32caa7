package format

import "time"

const (
	monthKeyLayout = "2006-01"
	dayKeyLayout   = "2006-01-02"
	rowDateLayout  = "Jan 02, 2006, 03:04 PM"
)

// MonthLabel turns a YYYY-MM key into "Jan 24". Unparseable keys are returned as is.
func MonthLabel(key string) string {
	t, err := time.Parse(monthKeyLayout, key)
	if err != nil {
		return key
	}
	return t.Format("Jan 06")
}

// DayLabel turns a YYYY-MM-DD key into "5 Jan". Unparseable keys are returned as is.
func DayLabel(key string) string {
	t, err := time.Parse(dayKeyLayout, key)
	if err != nil {
		return key
	}
	return t.Format("2 Jan")
}

// RowDate formats a transaction timestamp for the table.
func RowDate(t time.Time) string {
	return t.Format(rowDateLayout)
}

// MonthKey returns the YYYY-MM key of a time.
func MonthKey(t time.Time) string {
	return t.Format(monthKeyLayout)
}

// DayKey returns the YYYY-MM-DD key of a time.
func DayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(dayKeyLayout, s)
}
