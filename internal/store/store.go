package store

import (
	"context"
	"errors"

	"github.com/merchpos/merchpos/internal/models"
)

var (
	ErrNotFound          = errors.New("item not found")
	ErrItemExists        = errors.New("item already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ItemPatch carries the mutable inventory columns; nil fields are left
// untouched.
type ItemPatch struct {
	Price    *float64
	Quantity *int
}

// Store is the table-store contract the POS core runs against. All rows are
// scoped by owner id; owner 0 is the shared namespace of the no-auth
// variants.
//
// CommitSale is atomic: either every line's stock decrement and every
// history row land together, or none do. A line whose decrement would drive
// stock negative fails the whole sale with ErrInsufficientStock.
type Store interface {
	Inventory(ctx context.Context, owner uint) ([]models.InventoryItem, error)
	InsertItem(ctx context.Context, item models.InventoryItem) error
	UpdateItem(ctx context.Context, owner uint, name string, patch ItemPatch) error
	DeleteItem(ctx context.Context, owner uint, name string) error

	CommitSale(ctx context.Context, owner uint, records []models.SaleRecord) error
	History(ctx context.Context, owner uint, oldestFirst bool) ([]models.SaleRecord, error)
	ClearHistory(ctx context.Context, owner uint) error
}
