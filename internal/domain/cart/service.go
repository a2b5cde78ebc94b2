package cart

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/item"
	"github.com/xenking/storefront/internal/domain/member"
)

// Tx groups the cart persistence operations available inside one unit of
// work. CartByMember and CartItemByCartAndItem return the package-level
// not-found sentinels when no row matches.
type Tx interface {
	MemberByEmail(ctx context.Context, email string) (*member.Member, error)
	ItemByID(ctx context.Context, id int64) (*item.Item, error)
	CartByMember(ctx context.Context, memberID int64) (*Cart, error)
	SaveCart(ctx context.Context, c *Cart) error
	CartItemByCartAndItem(ctx context.Context, cartID, itemID int64) (*CartItem, error)
	SaveCartItem(ctx context.Context, ci *CartItem) error
}

// Store opens a unit of work stamped with the acting member's identity.
type Store interface {
	WithinTx(ctx context.Context, actor string, fn func(tx Tx) error) error
}

// Service orchestrates cart mutations.
type Service struct {
	store Store
}

// NewService creates a cart Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// AddToCart puts quantity units of an item into the member's cart,
// creating the cart on first use and merging into an existing line when
// the item is already present. Returns the cart line's id.
func (s *Service) AddToCart(ctx context.Context, email string, itemID, quantity int64) (int64, error) {
	if quantity < 1 {
		return 0, ErrInvalidQuantity
	}

	var cartItemID int64
	err := s.store.WithinTx(ctx, email, func(tx Tx) error {
		it, err := tx.ItemByID(ctx, itemID)
		if err != nil {
			return err
		}
		m, err := tx.MemberByEmail(ctx, email)
		if err != nil {
			return err
		}

		c, err := tx.CartByMember(ctx, m.ID)
		if errors.Is(err, ErrNotFound) {
			c = NewCart(m.ID)
			if err := tx.SaveCart(ctx, c); err != nil {
				return errors.Wrap(err, "create cart")
			}
		} else if err != nil {
			return err
		}

		existing, err := tx.CartItemByCartAndItem(ctx, c.ID, it.ID)
		switch {
		case err == nil:
			if err := existing.AddQuantity(quantity); err != nil {
				return err
			}
			if err := tx.SaveCartItem(ctx, existing); err != nil {
				return errors.Wrap(err, "merge cart item")
			}
			cartItemID = existing.ID
			return nil
		case errors.Is(err, ErrItemNotInCart):
			ci, err := NewCartItem(c.ID, it.ID, quantity)
			if err != nil {
				return err
			}
			if err := tx.SaveCartItem(ctx, ci); err != nil {
				return errors.Wrap(err, "create cart item")
			}
			cartItemID = ci.ID
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return 0, err
	}
	return cartItemID, nil
}
