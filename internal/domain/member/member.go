// Package member holds the shopper identity referenced by carts and
// orders. Authentication happens upstream; this system only resolves and
// compares identities.
package member

import (
	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/audit"
)

// ErrNotFound is returned when no member matches the given identity.
var ErrNotFound = errors.New("member not found")

// Member is a registered shopper.
type Member struct {
	ID    int64
	Email string
	Name  string
	Audit audit.Fields
}
