// Package audit defines the write-tracking fields shared by all persisted
// entities. The fields are stamped at the persistence boundary, never by
// entity code.
package audit

import "time"

// Fields records when and by whom a row was created and last modified.
type Fields struct {
	CreatedAt  time.Time
	UpdatedAt  time.Time
	CreatedBy  string
	ModifiedBy string
}
