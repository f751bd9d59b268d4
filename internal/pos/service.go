package pos

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/merchpos/merchpos/internal/models"
	"github.com/merchpos/merchpos/internal/store"
	"github.com/merchpos/merchpos/internal/validation"
)

var ErrEmptyCart = errors.New("cart is empty")

// Item is the in-memory view of one inventory entry.
type Item struct {
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Service is the POS core: per-owner inventory mapping synchronized with a
// backing store, the transient cart, the per-item edit-toggle state, and
// the sale engine. The store is injected; the service never touches a
// global client.
//
// Write policy: after any write, successful or not, the mapping is reloaded
// from the store. The store is the source of truth; optimistic local state
// never survives a failed write.
type Service struct {
	store store.Store
	now   func() time.Time
	newID func() string

	mu       sync.Mutex
	sessions map[uint]*session
}

// session is the transient per-owner state. It lives only in memory and is
// dropped on sign-out.
type session struct {
	inventory map[string]Item
	cart      Cart
	editing   map[string]bool
	staged    map[string]int
}

type Option func(*Service)

// WithClock replaces the commit-timestamp source, used by tests for
// deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSaleIDs replaces the sale id generator.
func WithSaleIDs(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:    st,
		now:      time.Now,
		newID:    uuid.NewString,
		sessions: make(map[uint]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) session(owner uint) *session {
	sess, ok := s.sessions[owner]
	if !ok {
		sess = &session{
			inventory: make(map[string]Item),
			cart:      make(Cart),
			editing:   make(map[string]bool),
			staged:    make(map[string]int),
		}
		s.sessions[owner] = sess
	}
	return sess
}

// Load refreshes the in-memory mapping from the store. On fetch failure the
// previous mapping stays available (stale-but-available) and the error is
// both logged and returned.
func (s *Service) Load(ctx context.Context, owner uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reload(ctx, owner)
}

func (s *Service) reload(ctx context.Context, owner uint) error {
	items, err := s.store.Inventory(ctx, owner)
	if err != nil {
		log.Printf("inventory load failed (owner=%d), keeping stale state: %v", owner, err)
		return err
	}
	sess := s.session(owner)
	sess.inventory = make(map[string]Item, len(items))
	for _, it := range items {
		sess.inventory[it.Item] = Item{Price: it.Price, Quantity: it.Quantity}
	}
	return nil
}

// Inventory returns a copy of the current mapping.
func (s *Service) Inventory(owner uint) map[string]Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(owner)
	out := make(map[string]Item, len(sess.inventory))
	for name, it := range sess.inventory {
		out[name] = it
	}
	return out
}

// AddItem inserts a new inventory row and reloads from the store rather
// than patching the mapping locally, so server-assigned defaults are
// reflected.
func (s *Service) AddItem(ctx context.Context, owner uint, name string, price float64, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.store.InsertItem(ctx, models.InventoryItem{OwnerID: owner, Item: name, Price: price, Quantity: qty})
	if rerr := s.reload(ctx, owner); err == nil {
		err = rerr
	}
	return err
}

// UpdatePrice applies a raw price edit immediately, independent of the edit
// toggle. Input that fails the price gate is silently dropped; an accepted
// empty string zeroes the price.
func (s *Service) UpdatePrice(ctx context.Context, owner uint, name, raw string) error {
	price, ok := validation.Price(raw)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.session(owner).inventory[name]; !exists {
		return store.ErrNotFound
	}
	err := s.store.UpdateItem(ctx, owner, name, store.ItemPatch{Price: &price})
	if rerr := s.reload(ctx, owner); err == nil {
		err = rerr
	}
	return err
}

// Editing reports whether the item is in the Editing state.
func (s *Service) Editing(owner uint, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session(owner).editing[name]
}

// StagedQuantity returns the staged (displayed-while-editing) quantity.
func (s *Service) StagedQuantity(owner uint, name string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	qty, ok := s.session(owner).staged[name]
	return qty, ok
}

// StageQuantity replaces the staged quantity while the item is Editing. A
// raw value failing the quantity gate, or an item not in Editing, is a
// silent no-op.
func (s *Service) StageQuantity(owner uint, name, raw string) {
	qty, ok := validation.Quantity(raw)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(owner)
	if !sess.editing[name] {
		return
	}
	sess.staged[name] = qty
}

// ToggleEdit drives the per-item Locked <-> Editing machine.
// Locked -> Editing snapshots the committed quantity into staging.
// Editing -> Locked commits the staged value to the store and clears it.
func (s *Service) ToggleEdit(ctx context.Context, owner uint, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(owner)
	item, exists := sess.inventory[name]
	if !exists {
		return store.ErrNotFound
	}
	if !sess.editing[name] {
		sess.staged[name] = item.Quantity
		sess.editing[name] = true
		return nil
	}
	var err error
	if qty, ok := sess.staged[name]; ok {
		err = s.store.UpdateItem(ctx, owner, name, store.ItemPatch{Quantity: &qty})
		if rerr := s.reload(ctx, owner); err == nil {
			err = rerr
		}
	}
	delete(sess.staged, name)
	sess.editing[name] = false
	return err
}

// DeleteItem removes the row remotely, then purges the item from the
// mapping, the cart, and the edit tracking. On remote failure nothing local
// is purged.
func (s *Service) DeleteItem(ctx context.Context, owner uint, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(owner)
	if err := s.store.DeleteItem(ctx, owner, name); err != nil {
		_ = s.reload(ctx, owner)
		return err
	}
	sess.cart.Remove(name)
	delete(sess.editing, name)
	delete(sess.staged, name)
	return s.reload(ctx, owner)
}

// SetCartLine records a raw cart edit. Empty input removes the line; input
// failing the quantity gate or naming an unknown item is a silent no-op.
func (s *Service) SetCartLine(owner uint, name, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(owner)
	if raw == "" {
		sess.cart.Remove(name)
		return
	}
	qty, ok := validation.Quantity(raw)
	if !ok {
		return
	}
	if _, exists := sess.inventory[name]; !exists {
		return
	}
	sess.cart.Set(name, qty)
}

// CartLines returns a copy of the cart.
func (s *Service) CartLines(owner uint) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(owner)
	out := make(Cart, len(sess.cart))
	for name, qty := range sess.cart {
		out[name] = qty
	}
	return out
}

// CartTotal is the sum over cart lines of price at this moment times
// quantity.
func (s *Service) CartTotal(owner uint) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(owner)
	var total float64
	for name, qty := range sess.cart {
		total += sess.inventory[name].Price * float64(qty)
	}
	return total
}

func (s *Service) ClearCart(owner uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session(owner).cart = make(Cart)
}

// CompleteSale reconciles the cart against inventory: one record per line,
// all sharing a single commit timestamp and sale id, committed atomically
// by the store. On success the cart is cleared; on failure (for example a
// line that would overdraw stock) nothing changes anywhere. Either way the
// mapping is reloaded from the store afterwards.
func (s *Service) CompleteSale(ctx context.Context, owner uint) ([]models.SaleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(owner)
	if sess.cart.Empty() {
		return nil, ErrEmptyCart
	}

	names := make([]string, 0, len(sess.cart))
	for name := range sess.cart {
		names = append(names, name)
	}
	sort.Strings(names)

	ts := s.now().UTC()
	saleID := s.newID()
	records := make([]models.SaleRecord, 0, len(names))
	for _, name := range names {
		qty := sess.cart[name]
		item := sess.inventory[name]
		records = append(records, models.SaleRecord{
			OwnerID:   owner,
			SaleID:    saleID,
			Item:      name,
			Qty:       qty,
			Price:     item.Price,
			Total:     item.Price * float64(qty),
			Timestamp: ts,
		})
	}

	err := s.store.CommitSale(ctx, owner, records)
	if rerr := s.reload(ctx, owner); err == nil {
		err = rerr
	}
	if err != nil {
		return nil, err
	}
	sess.cart = make(Cart)
	return records, nil
}

// History returns past sales, newest first.
func (s *Service) History(ctx context.Context, owner uint) ([]models.SaleRecord, error) {
	return s.store.History(ctx, owner, false)
}

// ExportCSV renders the full history, oldest first, as CSV text.
func (s *Service) ExportCSV(ctx context.Context, owner uint) (string, error) {
	records, err := s.store.History(ctx, owner, true)
	if err != nil {
		return "", err
	}
	return HistoryCSV(records), nil
}

// ClearHistory irreversibly deletes the owner's sale records.
func (s *Service) ClearHistory(ctx context.Context, owner uint) error {
	return s.store.ClearHistory(ctx, owner)
}

// Reset drops the owner's transient state: mapping, cart, staging. Remote
// data is untouched. Used on sign-out.
func (s *Service) Reset(owner uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, owner)
}
