// Package catalog implements the dynamic search filters and paged listing
// queries used by both the admin item screen and the public storefront.
package catalog

import (
	"fmt"
	"time"

	"github.com/xenking/storefront/internal/domain/item"
)

// DateRange selects how far back the registration-date filter reaches.
// The vocabulary is closed; anything else is a configuration error.
type DateRange string

const (
	DateAll       DateRange = "all"
	DateLastDay   DateRange = "1d"
	DateLastWeek  DateRange = "1w"
	DateLastMonth DateRange = "1m"
	DateLastHalf  DateRange = "6m"
)

// SearchField selects which column the substring filter matches against.
type SearchField string

const (
	SearchByName    SearchField = "name"
	SearchByCreator SearchField = "createdBy"
)

// InvalidFilterError indicates an unrecognized filter code. Bad codes fail
// loudly instead of silently matching nothing.
type InvalidFilterError struct {
	Field string
	Value string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid %s filter: %q", e.Field, e.Value)
}

// Filter is a conjunction of independently optional search clauses. A zero
// Filter matches every item.
type Filter struct {
	DateRange DateRange       // empty or "all": no lower bound
	Status    item.SellStatus // empty: any status
	SearchBy  SearchField     // column for the substring match
	Query     string          // empty: no substring clause
}

// RegisteredAfter resolves the date-range code against now. ok is false
// when the filter imposes no lower bound. An unknown code returns
// InvalidFilterError.
func (f Filter) RegisteredAfter(now time.Time) (t time.Time, ok bool, err error) {
	switch f.DateRange {
	case "", DateAll:
		return time.Time{}, false, nil
	case DateLastDay:
		return now.AddDate(0, 0, -1), true, nil
	case DateLastWeek:
		return now.AddDate(0, 0, -7), true, nil
	case DateLastMonth:
		return now.AddDate(0, -1, 0), true, nil
	case DateLastHalf:
		return now.AddDate(0, -6, 0), true, nil
	default:
		return time.Time{}, false, &InvalidFilterError{Field: "dateRange", Value: string(f.DateRange)}
	}
}

// StatusEquals returns the sell-status clause value. ok is false when any
// status matches. An unknown status returns InvalidFilterError.
func (f Filter) StatusEquals() (status item.SellStatus, ok bool, err error) {
	if f.Status == "" {
		return "", false, nil
	}
	if !f.Status.Valid() {
		return "", false, &InvalidFilterError{Field: "status", Value: string(f.Status)}
	}
	return f.Status, true, nil
}

// SearchClause returns the substring-match clause. ok is false when the
// query is empty or the field is outside the searchable whitelist; an
// unlisted field contributes no clause rather than failing, matching the
// admin screen's behavior for unset selectors.
func (f Filter) SearchClause() (field SearchField, query string, ok bool) {
	if f.Query == "" {
		return "", "", false
	}
	switch f.SearchBy {
	case SearchByName, SearchByCreator:
		return f.SearchBy, f.Query, true
	default:
		return "", "", false
	}
}

// Validate resolves every clause once, surfacing any bad filter code
// without running a query.
func (f Filter) Validate(now time.Time) error {
	if _, _, err := f.RegisteredAfter(now); err != nil {
		return err
	}
	if _, _, err := f.StatusEquals(); err != nil {
		return err
	}
	return nil
}
