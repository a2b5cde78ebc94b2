// Package db embeds the storefront schema so migrations ship inside the
// binary.
package db

import _ "embed"

// Schema holds the idempotent DDL for members, catalog, carts and orders.
//
//go:embed migrations/001_schema.sql
var Schema string
