package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/paging"
)

const (
	insertOrderSQL = `INSERT INTO orders (member_id, order_date, status,
			created_at, updated_at, created_by, modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING order_id`

	insertLineSQL = `INSERT INTO order_lines (order_id, item_id, order_price, quantity,
			created_at, updated_at, created_by, modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING order_line_id`

	getOrderSQL = `SELECT order_id, member_id, order_date, status,
			created_at, updated_at, created_by, modified_by
		FROM orders WHERE order_id = $1`

	getLinesSQL = `SELECT order_line_id, order_id, item_id, order_price, quantity,
			created_at, updated_at, created_by, modified_by
		FROM order_lines WHERE order_id = $1 ORDER BY order_line_id`

	updateOrderStatusSQL = `UPDATE orders
		SET status = $2, updated_at = $3, modified_by = $4
		WHERE order_id = $1`

	deleteLineSQL = `DELETE FROM order_lines WHERE order_line_id = $1`
)

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.MemberID, &o.OrderDate, &o.Status,
		&o.Audit.CreatedAt, &o.Audit.UpdatedAt, &o.Audit.CreatedBy, &o.Audit.ModifiedBy,
	)
	return o, err
}

func scanLine(row pgx.CollectableRow) (order.Line, error) {
	var l order.Line
	err := row.Scan(
		&l.ID, &l.OrderID, &l.ItemID, &l.Price, &l.Quantity,
		&l.Audit.CreatedAt, &l.Audit.UpdatedAt, &l.Audit.CreatedBy, &l.Audit.ModifiedBy,
	)
	return l, err
}

// SaveOrder inserts a new order with all its lines, assigning ids and
// fixing up line back-references.
func (t *Tx) SaveOrder(ctx context.Context, o *order.Order) error {
	t.audit.stampNew(&o.Audit)
	err := t.tx.QueryRow(ctx, insertOrderSQL,
		o.MemberID, o.OrderDate, o.Status,
		o.Audit.CreatedAt, o.Audit.UpdatedAt, o.Audit.CreatedBy, o.Audit.ModifiedBy,
	).Scan(&o.ID)
	if err != nil {
		return errors.Wrap(err, "inserting order")
	}

	for i := range o.Lines {
		line := &o.Lines[i]
		line.OrderID = o.ID
		t.audit.stampNew(&line.Audit)
		err := t.tx.QueryRow(ctx, insertLineSQL,
			line.OrderID, line.ItemID, line.Price, line.Quantity,
			line.Audit.CreatedAt, line.Audit.UpdatedAt, line.Audit.CreatedBy, line.Audit.ModifiedBy,
		).Scan(&line.ID)
		if err != nil {
			return errors.Wrap(err, "inserting order line")
		}
	}
	return nil
}

// OrderByID returns an order with its lines, or order.ErrNotFound.
func (t *Tx) OrderByID(ctx context.Context, id int64) (*order.Order, error) {
	rows, err := t.tx.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting order %d", id)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting order %d", id)
	}

	lineRows, err := t.tx.Query(ctx, getLinesSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting lines of order %d", id)
	}
	o.Lines, err = pgx.CollectRows(lineRows, scanLine)
	if err != nil {
		return nil, errors.Wrapf(err, "scanning lines of order %d", id)
	}
	return &o, nil
}

// UpdateOrderStatus persists a status transition.
func (t *Tx) UpdateOrderStatus(ctx context.Context, o *order.Order) error {
	t.audit.stampUpdate(&o.Audit)
	_, err := t.tx.Exec(ctx, updateOrderStatusSQL,
		o.ID, o.Status, o.Audit.UpdatedAt, o.Audit.ModifiedBy,
	)
	return errors.Wrapf(err, "updating status of order %d", o.ID)
}

// DeleteLine removes a detached order line row.
func (t *Tx) DeleteLine(ctx context.Context, lineID int64) error {
	_, err := t.tx.Exec(ctx, deleteLineSQL, lineID)
	return errors.Wrapf(err, "deleting order line %d", lineID)
}

const (
	listOrderHistorySQL = `SELECT o.order_id, o.order_date, o.status
		FROM orders o
		JOIN members m ON m.member_id = o.member_id
		WHERE m.email = $1
		ORDER BY o.order_date DESC, o.order_id DESC
		LIMIT $2 OFFSET $3`

	countOrderHistorySQL = `SELECT COUNT(*)
		FROM orders o
		JOIN members m ON m.member_id = o.member_id
		WHERE m.email = $1`

	listHistoryLinesSQL = `SELECT ol.order_id, i.item_name, COALESCE(im.image_url, ''),
			ol.order_price, ol.quantity
		FROM order_lines ol
		JOIN items i ON i.item_id = ol.item_id
		LEFT JOIN item_images im ON im.item_id = ol.item_id AND im.representative
		WHERE ol.order_id = ANY($1)
		ORDER BY ol.order_id, ol.order_line_id`
)

var _ order.Reader = (*OrderHistoryRepository)(nil)

// OrderHistoryRepository serves the paged order history read model.
type OrderHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewOrderHistoryRepository returns an OrderHistoryRepository over the
// given pool.
func NewOrderHistoryRepository(pool *pgxpool.Pool) *OrderHistoryRepository {
	return &OrderHistoryRepository{pool: pool}
}

// OrderHistory pages a member's orders newest first, annotating each line
// with the item name and its representative image.
func (r *OrderHistoryRepository) OrderHistory(ctx context.Context, email string, req paging.Request) (paging.Page[order.History], error) {
	var zero paging.Page[order.History]

	var total int64
	if err := r.pool.QueryRow(ctx, countOrderHistorySQL, email).Scan(&total); err != nil {
		return zero, errors.Wrap(err, "counting orders")
	}

	rows, err := r.pool.Query(ctx, listOrderHistorySQL, email, req.Size, req.Offset())
	if err != nil {
		return zero, errors.Wrap(err, "listing orders")
	}

	histories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.History, error) {
		var h order.History
		err := row.Scan(&h.OrderID, &h.OrderDate, &h.Status)
		return h, err
	})
	if err != nil {
		return zero, errors.Wrap(err, "scanning orders")
	}
	if len(histories) == 0 {
		return paging.NewPage(histories, req, total), nil
	}

	ids := make([]int64, len(histories))
	index := make(map[int64]*order.History, len(histories))
	for i := range histories {
		ids[i] = histories[i].OrderID
		index[histories[i].OrderID] = &histories[i]
	}

	lineRows, err := r.pool.Query(ctx, listHistoryLinesSQL, ids)
	if err != nil {
		return zero, errors.Wrap(err, "listing order lines")
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var (
			orderID int64
			line    order.HistoryLine
		)
		if err := lineRows.Scan(&orderID, &line.ItemName, &line.ImageURL, &line.Price, &line.Quantity); err != nil {
			return zero, errors.Wrap(err, "scanning order line")
		}
		if h, ok := index[orderID]; ok {
			h.Lines = append(h.Lines, line)
		}
	}
	if err := lineRows.Err(); err != nil {
		return zero, errors.Wrap(err, "reading order lines")
	}

	return paging.NewPage(histories, req, total), nil
}
