package domain

// FilterCriteria is the user-edited filter state of the transaction table.
// Every field is raw form input; an empty field matches everything.
type FilterCriteria struct {
	Month     string `json:"month,omitempty"`     // two-digit month, e.g. "03"
	Type      string `json:"type,omitempty"`      // income | expense
	StartDate string `json:"startDate,omitempty"` // YYYY-MM-DD, inclusive
	EndDate   string `json:"endDate,omitempty"`   // YYYY-MM-DD, inclusive
}

// IsZero reports whether no criterion is set.
func (c FilterCriteria) IsZero() bool {
	return c == FilterCriteria{}
}
