package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/storefront/internal/domain/cart"
)

const (
	getCartByMemberSQL = `SELECT cart_id, member_id,
			created_at, updated_at, created_by, modified_by
		FROM carts WHERE member_id = $1`

	insertCartSQL = `INSERT INTO carts (member_id, created_at, updated_at, created_by, modified_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING cart_id`

	getCartItemSQL = `SELECT cart_item_id, cart_id, item_id, quantity,
			created_at, updated_at, created_by, modified_by
		FROM cart_items WHERE cart_id = $1 AND item_id = $2`

	insertCartItemSQL = `INSERT INTO cart_items (cart_id, item_id, quantity,
			created_at, updated_at, created_by, modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING cart_item_id`

	updateCartItemSQL = `UPDATE cart_items
		SET quantity = $2, updated_at = $3, modified_by = $4
		WHERE cart_item_id = $1`
)

func scanCart(row pgx.CollectableRow) (cart.Cart, error) {
	var c cart.Cart
	err := row.Scan(
		&c.ID, &c.MemberID,
		&c.Audit.CreatedAt, &c.Audit.UpdatedAt, &c.Audit.CreatedBy, &c.Audit.ModifiedBy,
	)
	return c, err
}

func scanCartItem(row pgx.CollectableRow) (cart.CartItem, error) {
	var ci cart.CartItem
	err := row.Scan(
		&ci.ID, &ci.CartID, &ci.ItemID, &ci.Quantity,
		&ci.Audit.CreatedAt, &ci.Audit.UpdatedAt, &ci.Audit.CreatedBy, &ci.Audit.ModifiedBy,
	)
	return ci, err
}

// CartByMember returns the member's cart, or cart.ErrNotFound when the
// member has none yet.
func (t *Tx) CartByMember(ctx context.Context, memberID int64) (*cart.Cart, error) {
	rows, err := t.tx.Query(ctx, getCartByMemberSQL, memberID)
	if err != nil {
		return nil, errors.Wrapf(err, "getting cart of member %d", memberID)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCart)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting cart of member %d", memberID)
	}
	return &c, nil
}

// SaveCart inserts a new cart or updates an existing one.
func (t *Tx) SaveCart(ctx context.Context, c *cart.Cart) error {
	if c.ID != 0 {
		// Carts carry no editable fields beyond their audit trail.
		return nil
	}

	t.audit.stampNew(&c.Audit)
	err := t.tx.QueryRow(ctx, insertCartSQL,
		c.MemberID,
		c.Audit.CreatedAt, c.Audit.UpdatedAt, c.Audit.CreatedBy, c.Audit.ModifiedBy,
	).Scan(&c.ID)
	return errors.Wrap(err, "inserting cart")
}

// CartItemByCartAndItem returns the unique line for the (cart, item) pair,
// or cart.ErrItemNotInCart when no such line exists.
func (t *Tx) CartItemByCartAndItem(ctx context.Context, cartID, itemID int64) (*cart.CartItem, error) {
	rows, err := t.tx.Query(ctx, getCartItemSQL, cartID, itemID)
	if err != nil {
		return nil, errors.Wrapf(err, "getting cart item (%d, %d)", cartID, itemID)
	}

	ci, err := pgx.CollectExactlyOneRow(rows, scanCartItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrItemNotInCart
		}
		return nil, errors.Wrapf(err, "getting cart item (%d, %d)", cartID, itemID)
	}
	return &ci, nil
}

// SaveCartItem inserts a new cart line or updates the quantity of an
// existing one.
func (t *Tx) SaveCartItem(ctx context.Context, ci *cart.CartItem) error {
	if ci.ID == 0 {
		t.audit.stampNew(&ci.Audit)
		err := t.tx.QueryRow(ctx, insertCartItemSQL,
			ci.CartID, ci.ItemID, ci.Quantity,
			ci.Audit.CreatedAt, ci.Audit.UpdatedAt, ci.Audit.CreatedBy, ci.Audit.ModifiedBy,
		).Scan(&ci.ID)
		return errors.Wrap(err, "inserting cart item")
	}

	t.audit.stampUpdate(&ci.Audit)
	_, err := t.tx.Exec(ctx, updateCartItemSQL,
		ci.ID, ci.Quantity, ci.Audit.UpdatedAt, ci.Audit.ModifiedBy,
	)
	return errors.Wrapf(err, "updating cart item %d", ci.ID)
}
