// Package query filters and paginates the owner's publication collections.
package query

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"solifin/internal/models"
)

// All disables a status, state or date filter.
const All = "all"

type DateRange string

const (
	DateRangeAll   DateRange = All
	DateRangeToday DateRange = "today"
	DateRangeWeek  DateRange = "week"
	DateRangeMonth DateRange = "month"
)

func ParseDateRange(s string) (DateRange, error) {
	switch r := DateRange(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return DateRangeAll, nil
	case DateRangeAll, DateRangeToday, DateRangeWeek, DateRangeMonth:
		return r, nil
	}
	return "", fmt.Errorf("unknown date range %q", s)
}

type FilterState struct {
	SearchTerm     string
	ApprovalStatus string
	Availability   string
	DateRange      DateRange
}

// DefaultFilter matches everything.
func DefaultFilter() FilterState {
	return FilterState{ApprovalStatus: All, Availability: All, DateRange: DateRangeAll}
}

func isAll(s string) bool {
	return s == "" || s == All
}

// Since returns the lower bound of created_at for r, relative to the start
// of the day of now in now's location. ok is false for DateRangeAll.
func Since(r DateRange, now time.Time) (time.Time, bool) {
	y, m, d := now.Date()
	startOfToday := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	switch r {
	case DateRangeToday:
		return startOfToday, true
	case DateRangeWeek:
		return startOfToday.AddDate(0, 0, -7), true
	case DateRangeMonth:
		return startOfToday.AddDate(0, -1, 0), true
	}
	return time.Time{}, false
}

// fold builds a Caser per call since Casers are stateful.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Matches reports whether p passes every filter of f.
func (f FilterState) Matches(p *models.Publication, now time.Time) bool {
	if !isAll(f.ApprovalStatus) && string(p.ApprovalStatus) != f.ApprovalStatus {
		return false
	}
	if !isAll(f.Availability) && string(p.Availability) != f.Availability {
		return false
	}
	if since, ok := Since(f.DateRange, now); ok && p.CreatedAt.Before(since) {
		return false
	}
	term := strings.TrimSpace(f.SearchTerm)
	if term == "" {
		return true
	}
	term = fold(term)
	for _, field := range []string{p.Title, p.Description, p.Contacts, p.Address()} {
		if field != "" && strings.Contains(fold(field), term) {
			return true
		}
	}
	return false
}

// Filter returns the publications of collection matching f, in order. It is
// a pure function of its arguments.
func Filter(collection []models.Publication, f FilterState, now time.Time) []models.Publication {
	out := make([]models.Publication, 0, len(collection))
	for i := range collection {
		if f.Matches(&collection[i], now) {
			out = append(out, collection[i])
		}
	}
	return out
}
