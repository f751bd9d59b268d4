package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/merchpos/merchpos/internal/models"
)

// GormStore backs the Store contract with a relational database (sqlite for
// local/offline use, postgres in deployment).
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) Inventory(ctx context.Context, owner uint) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", owner).
		Order("item asc").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("fetch inventory: %w", err)
	}
	return items, nil
}

func (s *GormStore) InsertItem(ctx context.Context, item models.InventoryItem) error {
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		if isDuplicate(err) {
			return ErrItemExists
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (s *GormStore) UpdateItem(ctx context.Context, owner uint, name string, patch ItemPatch) error {
	vals := map[string]any{}
	if patch.Price != nil {
		vals["price"] = *patch.Price
	}
	if patch.Quantity != nil {
		vals["quantity"] = *patch.Quantity
	}
	if len(vals) == 0 {
		return nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("owner_id = ? AND item = ?", owner, name).
		Updates(vals)
	if res.Error != nil {
		return fmt.Errorf("update item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteItem(ctx context.Context, owner uint, name string) error {
	res := s.db.WithContext(ctx).
		Where("owner_id = ? AND item = ?", owner, name).
		Delete(&models.InventoryItem{})
	if res.Error != nil {
		return fmt.Errorf("delete item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CommitSale runs the whole checkout in one transaction: a conditional
// decrement per line plus the history insert. The WHERE quantity >= ? guard
// means a sale can never drive stock negative; any failed line rolls back
// every prior line.
func (s *GormStore) CommitSale(ctx context.Context, owner uint, records []models.SaleRecord) error {
	if len(records) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range records {
			rec := &records[i]
			rec.OwnerID = owner
			res := tx.Model(&models.InventoryItem{}).
				Where("owner_id = ? AND item = ? AND quantity >= ?", owner, rec.Item, rec.Qty).
				Update("quantity", gorm.Expr("quantity - ?", rec.Qty))
			if res.Error != nil {
				return fmt.Errorf("decrement %q: %w", rec.Item, res.Error)
			}
			if res.RowsAffected == 0 {
				var count int64
				if err := tx.Model(&models.InventoryItem{}).
					Where("owner_id = ? AND item = ?", owner, rec.Item).
					Count(&count).Error; err == nil && count == 0 {
					return fmt.Errorf("%q: %w", rec.Item, ErrNotFound)
				}
				return fmt.Errorf("%q: %w", rec.Item, ErrInsufficientStock)
			}
			if err := tx.Create(rec).Error; err != nil {
				return fmt.Errorf("append sale record %q: %w", rec.Item, err)
			}
		}
		return nil
	})
}

func (s *GormStore) History(ctx context.Context, owner uint, oldestFirst bool) ([]models.SaleRecord, error) {
	order := "timestamp desc, id desc"
	if oldestFirst {
		order = "timestamp asc, id asc"
	}
	var records []models.SaleRecord
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", owner).
		Order(order).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return records, nil
}

func (s *GormStore) ClearHistory(ctx context.Context, owner uint) error {
	if err := s.db.WithContext(ctx).
		Where("owner_id = ?", owner).
		Delete(&models.SaleRecord{}).Error; err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// isDuplicate covers gorm's translated error plus the raw sqlite/postgres
// message, the drivers disagree on which one surfaces.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
