package repository

import (
	"time"

	"github.com/xenking/storefront/internal/domain/audit"
)

// stamper writes audit fields on every row mutation. The actor is fixed
// per unit of work; entity code never touches these fields.
type stamper struct {
	actor string
	now   func() time.Time
}

// stampNew fills all four audit fields for a row about to be inserted.
func (s stamper) stampNew(a *audit.Fields) {
	t := s.now()
	a.CreatedAt = t
	a.UpdatedAt = t
	a.CreatedBy = s.actor
	a.ModifiedBy = s.actor
}

// stampUpdate refreshes the modification fields for a row about to be
// updated.
func (s stamper) stampUpdate(a *audit.Fields) {
	a.UpdatedAt = s.now()
	a.ModifiedBy = s.actor
}
