package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/merchpos/merchpos/internal/models"
)

// MemoryStore keeps everything in process memory. It serves the demo
// variant and tests; a restart loses all state.
type MemoryStore struct {
	mu        sync.Mutex
	inventory map[uint]map[string]models.InventoryItem
	history   map[uint][]models.SaleRecord
	nextID    uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		inventory: make(map[uint]map[string]models.InventoryItem),
		history:   make(map[uint][]models.SaleRecord),
	}
}

func (s *MemoryStore) Inventory(_ context.Context, owner uint) ([]models.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]models.InventoryItem, 0, len(s.inventory[owner]))
	for _, it := range s.inventory[owner] {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Item < items[j].Item })
	return items, nil
}

func (s *MemoryStore) InsertItem(_ context.Context, item models.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byName := s.inventory[item.OwnerID]
	if byName == nil {
		byName = make(map[string]models.InventoryItem)
		s.inventory[item.OwnerID] = byName
	}
	if _, exists := byName[item.Item]; exists {
		return ErrItemExists
	}
	s.nextID++
	item.ID = s.nextID
	byName[item.Item] = item
	return nil
}

func (s *MemoryStore) UpdateItem(_ context.Context, owner uint, name string, patch ItemPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.inventory[owner][name]
	if !ok {
		return ErrNotFound
	}
	if patch.Price != nil {
		item.Price = *patch.Price
	}
	if patch.Quantity != nil {
		item.Quantity = *patch.Quantity
	}
	s.inventory[owner][name] = item
	return nil
}

func (s *MemoryStore) DeleteItem(_ context.Context, owner uint, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inventory[owner][name]; !ok {
		return ErrNotFound
	}
	delete(s.inventory[owner], name)
	return nil
}

// CommitSale validates every line under the lock before mutating anything,
// so a failing line leaves both inventory and history exactly as they were.
func (s *MemoryStore) CommitSale(_ context.Context, owner uint, records []models.SaleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		item, ok := s.inventory[owner][rec.Item]
		if !ok {
			return fmt.Errorf("%q: %w", rec.Item, ErrNotFound)
		}
		if item.Quantity < rec.Qty {
			return fmt.Errorf("%q: %w", rec.Item, ErrInsufficientStock)
		}
	}
	for i := range records {
		rec := records[i]
		rec.OwnerID = owner
		item := s.inventory[owner][rec.Item]
		item.Quantity -= rec.Qty
		s.inventory[owner][rec.Item] = item
		s.nextID++
		rec.ID = s.nextID
		s.history[owner] = append(s.history[owner], rec)
	}
	return nil
}

func (s *MemoryStore) History(_ context.Context, owner uint, oldestFirst bool) ([]models.SaleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]models.SaleRecord, len(s.history[owner]))
	copy(records, s.history[owner])
	// Stored append-only, oldest first already.
	if !oldestFirst {
		for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
			records[i], records[j] = records[j], records[i]
		}
	}
	return records, nil
}

func (s *MemoryStore) ClearHistory(_ context.Context, owner uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.history, owner)
	return nil
}
