package item

import (
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Valid(t *testing.T) {
	it, err := New("Wireless Keyboard", 45000, 10, "low profile", StatusOnSale)
	require.NoError(t, err)

	assert.Zero(t, it.ID, "id is assigned on save")
	assert.Equal(t, "Wireless Keyboard", it.Name)
	assert.Equal(t, int64(45000), it.Price)
	assert.Equal(t, int64(10), it.Stock)
	assert.Equal(t, StatusOnSale, it.Status)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		price   int64
		stock   int64
		status  SellStatus
		wantErr error
	}{
		{name: "empty name", input: "", price: 100, stock: 1, status: StatusOnSale, wantErr: ErrEmptyName},
		{name: "name too long", input: strings.Repeat("a", MaxNameLen+1), price: 100, stock: 1, status: StatusOnSale, wantErr: ErrNameTooLong},
		{name: "negative price", input: "item", price: -1, stock: 1, status: StatusOnSale, wantErr: ErrNegativePrice},
		{name: "negative stock", input: "item", price: 100, stock: -1, status: StatusOnSale, wantErr: ErrNegativeStock},
		{name: "unknown status", input: "item", price: 100, stock: 1, status: "DISCONTINUED", wantErr: ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.input, tt.price, tt.stock, "detail", tt.status)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNew_NameAtLimit(t *testing.T) {
	_, err := New(strings.Repeat("a", MaxNameLen), 100, 1, "", StatusOnSale)
	assert.NoError(t, err)
}

func TestUpdate_LeavesItemUnchangedOnError(t *testing.T) {
	it, err := New("item", 100, 5, "detail", StatusOnSale)
	require.NoError(t, err)

	err = it.Update("", 200, 10, "changed", StatusSoldOut)
	require.ErrorIs(t, err, ErrEmptyName)

	assert.Equal(t, "item", it.Name)
	assert.Equal(t, int64(100), it.Price)
	assert.Equal(t, int64(5), it.Stock)
	assert.Equal(t, StatusOnSale, it.Status)
}

func TestRemoveStock(t *testing.T) {
	it := &Item{ID: 1, Stock: 5}

	require.NoError(t, it.RemoveStock(3))
	assert.Equal(t, int64(2), it.Stock)

	require.NoError(t, it.RemoveStock(2))
	assert.Zero(t, it.Stock)
}

func TestRemoveStock_Insufficient(t *testing.T) {
	it := &Item{ID: 7, Stock: 5}

	err := it.RemoveStock(6)

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, int64(7), stockErr.ItemID)
	assert.Equal(t, int64(6), stockErr.Requested)
	assert.Equal(t, int64(5), stockErr.Stock)
	assert.Equal(t, int64(5), it.Stock, "failed debit must not change stock")
}

func TestAddStock(t *testing.T) {
	it := &Item{Stock: 2}
	it.AddStock(3)
	assert.Equal(t, int64(5), it.Stock)
}

func TestSellStatusValid(t *testing.T) {
	assert.True(t, StatusOnSale.Valid())
	assert.True(t, StatusSoldOut.Valid())
	assert.False(t, SellStatus("").Valid())
	assert.False(t, SellStatus("on_sale").Valid())
}
