package item

import (
	"fmt"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/audit"
)

// SellStatus reports whether an item is currently offered for sale.
type SellStatus string

const (
	StatusOnSale  SellStatus = "ON_SALE"
	StatusSoldOut SellStatus = "SOLD_OUT"
)

// Valid reports whether s is a known sell status.
func (s SellStatus) Valid() bool {
	return s == StatusOnSale || s == StatusSoldOut
}

// MaxNameLen is the longest allowed item name.
const MaxNameLen = 50

// Sentinel errors for item lookup and validation.
var (
	ErrNotFound      = errors.New("item not found")
	ErrEmptyName     = errors.New("item name required")
	ErrNameTooLong   = fmt.Errorf("item name must be at most %d characters", MaxNameLen)
	ErrNegativePrice = errors.New("item price must not be negative")
	ErrNegativeStock = errors.New("item stock must not be negative")
	ErrInvalidStatus = errors.New("unknown sell status")
)

// InsufficientStockError indicates a stock debit larger than the remaining
// stock. Stock carries the current quantity for diagnostics.
type InsufficientStockError struct {
	ItemID    int64
	Requested int64
	Stock     int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %d: requested %d, have %d",
		e.ItemID, e.Requested, e.Stock)
}

// Item is a sellable catalog entry with a finite stock.
type Item struct {
	ID     int64
	Name   string
	Price  int64
	Stock  int64
	Detail string
	Status SellStatus
	Audit  audit.Fields
}

// New validates the given fields and returns an unsaved Item. The ID is
// assigned on first save.
func New(name string, price, stock int64, detail string, status SellStatus) (*Item, error) {
	it := &Item{}
	if err := it.Update(name, price, stock, detail, status); err != nil {
		return nil, err
	}
	return it, nil
}

// Update replaces the editable fields after validating them. On error the
// item is left unchanged.
func (i *Item) Update(name string, price, stock int64, detail string, status SellStatus) error {
	switch {
	case name == "":
		return ErrEmptyName
	case len([]rune(name)) > MaxNameLen:
		return ErrNameTooLong
	case price < 0:
		return ErrNegativePrice
	case stock < 0:
		return ErrNegativeStock
	case !status.Valid():
		return ErrInvalidStatus
	}

	i.Name = name
	i.Price = price
	i.Stock = stock
	i.Detail = detail
	i.Status = status
	return nil
}

// RemoveStock debits quantity from the item's stock. When the remaining
// stock would drop below zero it returns InsufficientStockError and leaves
// the item unchanged. The caller persists the mutation.
func (i *Item) RemoveStock(quantity int64) error {
	rest := i.Stock - quantity
	if rest < 0 {
		return &InsufficientStockError{ItemID: i.ID, Requested: quantity, Stock: i.Stock}
	}
	i.Stock = rest
	return nil
}

// AddStock credits quantity back to the item's stock. Used by order
// cancellation to reverse a prior debit; the credit is unconditional.
func (i *Item) AddStock(quantity int64) {
	i.Stock += quantity
}
