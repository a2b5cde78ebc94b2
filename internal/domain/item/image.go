package item

import "github.com/xenking/storefront/internal/domain/audit"

// Image is a stored reference to an externally uploaded item picture. The
// representative image is the single picture shown in listings; file bytes
// never pass through this system.
type Image struct {
	ID             int64
	ItemID         int64
	URL            string
	OriginalName   string
	Representative bool
	Audit          audit.Fields
}
