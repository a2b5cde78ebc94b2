// Package cart implements the per-member shopping cart. Each member owns
// at most one cart; re-adding an item merges into the existing line
// instead of duplicating it.
package cart

import (
	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/audit"
)

// Sentinel errors for cart lookup and validation.
var (
	ErrNotFound        = errors.New("cart not found")
	ErrItemNotInCart   = errors.New("cart item not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Cart is the container for a member's pending item selections.
type Cart struct {
	ID       int64
	MemberID int64
	Audit    audit.Fields
}

// NewCart creates an empty cart owned by the given member.
func NewCart(memberID int64) *Cart {
	return &Cart{MemberID: memberID}
}

// CartItem is one (cart, item) line. The pair is unique; quantity grows
// monotonically through AddQuantity.
type CartItem struct {
	ID       int64
	CartID   int64
	ItemID   int64
	Quantity int64
	Audit    audit.Fields
}

// NewCartItem creates a cart line with the given initial quantity.
func NewCartItem(cartID, itemID, quantity int64) (*CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	return &CartItem{CartID: cartID, ItemID: itemID, Quantity: quantity}, nil
}

// AddQuantity merges an additional quantity into the existing line.
func (ci *CartItem) AddQuantity(quantity int64) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	ci.Quantity += quantity
	return nil
}
