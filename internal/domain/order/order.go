// Package order implements the immutable order aggregate and its
// orchestration service. An order is cut from item stock at creation and
// the only later lifecycle event is cancellation, which restores the
// debited stock.
package order

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/audit"
	"github.com/xenking/storefront/internal/domain/item"
)

// Status is the order lifecycle state. The only transition is
// ORDERED -> CANCELED.
type Status string

const (
	StatusOrdered  Status = "ORDERED"
	StatusCanceled Status = "CANCELED"
)

// Sentinel errors for order lookup and construction.
var (
	ErrNotFound   = errors.New("order not found")
	ErrEmptyLines = errors.New("order requires at least one line")
)

// AlreadyCanceledError indicates a cancel request against an order that is
// no longer in the ORDERED state.
type AlreadyCanceledError struct {
	OrderID int64
}

func (e *AlreadyCanceledError) Error() string {
	return fmt.Sprintf("order %d is already canceled", e.OrderID)
}

// NotAuthorizedError indicates the requester does not own the order. The
// order's content is deliberately not disclosed.
type NotAuthorizedError struct {
	OrderID int64
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("not authorized to access order %d", e.OrderID)
}

// Line is one item cut into an order: the item reference, the price copied
// at order time, and the quantity. Lines are owned by their order and keep
// only the owning order's id as a back-reference.
type Line struct {
	ID       int64
	OrderID  int64
	ItemID   int64
	Price    int64
	Quantity int64
	Audit    audit.Fields
}

// NewLine debits quantity from the item's stock and captures the item's
// current price. A failed debit leaves the item untouched and returns
// item.InsufficientStockError.
func NewLine(it *item.Item, quantity int64) (Line, error) {
	if quantity < 1 {
		return Line{}, errors.New("line quantity must be at least 1")
	}
	if err := it.RemoveStock(quantity); err != nil {
		return Line{}, err
	}
	return Line{ItemID: it.ID, Price: it.Price, Quantity: quantity}, nil
}

// TotalPrice is the line's price at order time multiplied by its quantity.
func (l Line) TotalPrice() int64 {
	return l.Price * l.Quantity
}

// Order is the aggregate root owning a set of lines. It is immutable after
// creation except for the status transition in Cancel and the explicit
// RemoveLine operation.
type Order struct {
	ID        int64
	MemberID  int64
	OrderDate time.Time
	Status    Status
	Lines     []Line
	Audit     audit.Fields
}

// New assembles an unsaved order from prepared lines. The status is always
// ORDERED; line back-references are fixed up when the order is saved and
// ids are known.
func New(memberID int64, lines []Line, now time.Time) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyLines
	}
	o := &Order{
		MemberID:  memberID,
		OrderDate: now,
		Status:    StatusOrdered,
	}
	for _, l := range lines {
		o.addLine(l)
	}
	return o, nil
}

// addLine appends a line and maintains the owner back-reference.
func (o *Order) addLine(l Line) {
	l.OrderID = o.ID
	o.Lines = append(o.Lines, l)
}

// TotalPrice sums price x quantity over all lines. Recomputed on demand,
// never cached.
func (o *Order) TotalPrice() int64 {
	var total int64
	for _, l := range o.Lines {
		total += l.TotalPrice()
	}
	return total
}

// Cancel moves the order into the CANCELED state. A second cancel is
// rejected with AlreadyCanceledError, which also guards the stock credit
// against running twice. The caller credits each line's stock back inside
// the same transaction.
func (o *Order) Cancel() error {
	if o.Status != StatusOrdered {
		return &AlreadyCanceledError{OrderID: o.ID}
	}
	o.Status = StatusCanceled
	return nil
}

// RemoveLine detaches the line with the given id and returns it so the
// caller can delete the row in the same transaction. Removal is always
// explicit, never a side effect of mutating the slice.
func (o *Order) RemoveLine(lineID int64) (Line, error) {
	for i, l := range o.Lines {
		if l.ID == lineID {
			o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
			return l, nil
		}
	}
	return Line{}, errors.Errorf("order %d has no line %d", o.ID, lineID)
}
