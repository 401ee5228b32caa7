// Package engine is the transaction filtering and chart adapter core. Every
// function here is pure: no I/O, no shared state, same input same output.
package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rupeetrack/rupeetrack-bfa-go/internal/domain"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/format"
)

// predicate is the compiled form of FilterCriteria.
type predicate struct {
	month string
	typ   string
	start time.Time
	end   time.Time
}

func compile(c domain.FilterCriteria) predicate {
	p := predicate{
		month: normalizeMonth(c.Month),
		typ:   strings.ToLower(strings.TrimSpace(c.Type)),
	}
	// Malformed bounds fail open.
	if d, err := format.ParseDay(strings.TrimSpace(c.StartDate)); err == nil {
		p.start = d
	}
	if d, err := format.ParseDay(strings.TrimSpace(c.EndDate)); err == nil {
		p.end = d
	}
	return p
}

// normalizeMonth zero-pads numeric month input ("3" -> "03").
func normalizeMonth(m string) string {
	m = strings.TrimSpace(m)
	if n, err := strconv.Atoi(m); err == nil && n >= 1 && n <= 12 {
		return fmt.Sprintf("%02d", n)
	}
	return m
}

func (p predicate) match(t domain.TransactionRecord) bool {
	if p.month != "" && fmt.Sprintf("%02d", int(t.Timestamp.Month())) != p.month {
		return false
	}
	if p.typ != "" && string(t.Type) != p.typ {
		return false
	}
	day := dateOf(t.Timestamp)
	if !p.start.IsZero() && day.Before(p.start) {
		return false
	}
	if !p.end.IsZero() && day.After(p.end) {
		return false
	}
	return true
}

// dateOf truncates a timestamp to its wall-clock calendar day.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ApplyFilter returns the records matching every set criterion, in input order.
// A nil list is treated as empty.
func ApplyFilter(transactions []domain.TransactionRecord, criteria domain.FilterCriteria) []domain.TransactionRecord {
	out := make([]domain.TransactionRecord, 0, len(transactions))
	if criteria.IsZero() {
		return append(out, transactions...)
	}

	p := compile(criteria)
	for _, t := range transactions {
		if p.match(t) {
			out = append(out, t)
		}
	}
	return out
}
