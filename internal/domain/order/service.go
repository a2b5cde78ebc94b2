package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/item"
	"github.com/xenking/storefront/internal/domain/member"
	"github.com/xenking/storefront/internal/domain/paging"
)

// Tx groups the order persistence operations available inside one unit of
// work. ItemForUpdate locks the item row until commit, serializing
// concurrent stock mutations on the same item.
type Tx interface {
	MemberByEmail(ctx context.Context, email string) (*member.Member, error)
	ItemForUpdate(ctx context.Context, id int64) (*item.Item, error)
	UpdateItemStock(ctx context.Context, it *item.Item) error
	SaveOrder(ctx context.Context, o *Order) error
	OrderByID(ctx context.Context, id int64) (*Order, error)
	UpdateOrderStatus(ctx context.Context, o *Order) error
	DeleteLine(ctx context.Context, lineID int64) error
}

// Store opens a unit of work stamped with the acting member's identity.
type Store interface {
	WithinTx(ctx context.Context, actor string, fn func(tx Tx) error) error
}

// HistoryLine is one order line annotated for display.
type HistoryLine struct {
	ItemName string
	ImageURL string
	Price    int64
	Quantity int64
}

// History is an order summary for the member's order list.
type History struct {
	OrderID   int64
	OrderDate time.Time
	Status    Status
	Lines     []HistoryLine
}

// TotalPrice sums price x quantity over the annotated lines.
func (h History) TotalPrice() int64 {
	var total int64
	for _, l := range h.Lines {
		total += l.Price * l.Quantity
	}
	return total
}

// Reader provides the read-only order history query: the member's orders
// newest first, each line joined to its item's representative image.
type Reader interface {
	OrderHistory(ctx context.Context, email string, req paging.Request) (paging.Page[History], error)
}

// Service orchestrates order placement, cancellation and history.
type Service struct {
	store  Store
	reader Reader
	now    func() time.Time
}

// NewService creates an order Service.
func NewService(store Store, reader Reader) *Service {
	return &Service{store: store, reader: reader, now: time.Now}
}

// PlaceOrder orders quantity units of one item for the identified member.
// Stock is debited and the order persisted in a single transaction; a
// shortage aborts the whole order with item.InsufficientStockError.
// Returns the new order's id.
func (s *Service) PlaceOrder(ctx context.Context, email string, itemID, quantity int64) (int64, error) {
	var orderID int64
	err := s.store.WithinTx(ctx, email, func(tx Tx) error {
		m, err := tx.MemberByEmail(ctx, email)
		if err != nil {
			return err
		}

		it, err := tx.ItemForUpdate(ctx, itemID)
		if err != nil {
			return err
		}

		line, err := NewLine(it, quantity)
		if err != nil {
			return err
		}
		if err := tx.UpdateItemStock(ctx, it); err != nil {
			return errors.Wrap(err, "update stock")
		}

		o, err := New(m.ID, []Line{line}, s.now())
		if err != nil {
			return err
		}
		if err := tx.SaveOrder(ctx, o); err != nil {
			return errors.Wrap(err, "save order")
		}
		orderID = o.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return orderID, nil
}

// CancelOrder cancels the member's order and credits every line's quantity
// back to its item, all in one transaction. A requester who does not own
// the order gets NotAuthorizedError and learns nothing else about it.
func (s *Service) CancelOrder(ctx context.Context, orderID int64, email string) error {
	return s.store.WithinTx(ctx, email, func(tx Tx) error {
		m, err := tx.MemberByEmail(ctx, email)
		if err != nil {
			return err
		}

		o, err := tx.OrderByID(ctx, orderID)
		if err != nil {
			return err
		}
		if o.MemberID != m.ID {
			return &NotAuthorizedError{OrderID: orderID}
		}

		if err := o.Cancel(); err != nil {
			return err
		}
		for _, line := range o.Lines {
			it, err := tx.ItemForUpdate(ctx, line.ItemID)
			if err != nil {
				return err
			}
			it.AddStock(line.Quantity)
			if err := tx.UpdateItemStock(ctx, it); err != nil {
				return errors.Wrap(err, "restore stock")
			}
		}
		return tx.UpdateOrderStatus(ctx, o)
	})
}

// OrderHistory pages the member's orders, newest first.
func (s *Service) OrderHistory(ctx context.Context, email string, req paging.Request) (paging.Page[History], error) {
	return s.reader.OrderHistory(ctx, email, req)
}
