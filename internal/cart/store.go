// Package cart holds the client-side shopping cart state: line items, the
// cart/checkout/success panels and the last order number.
package cart

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/terra-clan/unicorn-emporium/internal/kv"
	"github.com/terra-clan/unicorn-emporium/internal/models"
)

// StorageKey is the key the line collection is persisted under
const StorageKey = "unicornCart"

const persistTimeout = 5 * time.Second

// Snapshot is a copy of the store state handed to listeners
type Snapshot struct {
	Lines        []models.CartLine
	CartOpen     bool
	CheckoutOpen bool
	SuccessOpen  bool
	OrderNumber  string
}

// Listener is notified after every state change
type Listener func(Snapshot)

// Store is the cart state container. Line changes are written through to
// the persistence port; panel changes are not persisted.
type Store struct {
	mu    sync.Mutex
	kv    kv.Store
	lines []models.CartLine

	cartOpen     bool
	checkoutOpen bool
	successOpen  bool
	orderNumber  string

	nextID    int
	listeners map[int]Listener
}

// NewStore creates a store and rehydrates the lines saved in kvStore.
// A missing or unreadable value yields an empty cart.
func NewStore(ctx context.Context, kvStore kv.Store) *Store {
	s := &Store{
		kv:        kvStore,
		listeners: make(map[int]Listener),
	}
	s.lines = s.rehydrate(ctx)
	return s
}

func (s *Store) rehydrate(ctx context.Context) []models.CartLine {
	if s.kv == nil {
		return nil
	}

	data, ok, err := s.kv.Load(ctx, StorageKey)
	if err != nil {
		slog.Warn("failed to load saved cart", "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	var lines []models.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		slog.Warn("discarding unreadable saved cart", "error", err)
		return nil
	}

	// drop anything a well-behaved store could not have written
	valid := lines[:0]
	for _, l := range lines {
		if l.Quantity > 0 {
			valid = append(valid, l)
		}
	}

	slog.Debug("cart rehydrated", "lines", len(valid))
	return valid
}

// AddItem increments the quantity of the product's line, or appends a new
// line with quantity 1.
func (s *Store) AddItem(product models.Product) {
	s.mu.Lock()
	if i := s.indexOf(product.ID); i >= 0 {
		s.lines[i].Quantity++
	} else {
		s.lines = append(s.lines, models.CartLine{Product: product, Quantity: 1})
	}
	s.commitLines()
}

// RemoveItem drops the line for productID. Unknown ids are a no-op.
func (s *Store) RemoveItem(productID int64) {
	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.lines = append(s.lines[:i:i], s.lines[i+1:]...)
	s.commitLines()
}

// SetQuantity replaces the quantity of a line. A quantity <= 0 removes it.
func (s *Store) SetQuantity(productID int64, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(productID)
		return
	}

	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.lines[i].Quantity = quantity
	s.commitLines()
}

// Clear empties the cart
func (s *Store) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.commitLines()
}

// Total returns the sum of price * quantity over all lines
func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Total(s.lines)
}

// ItemCount returns the sum of quantities
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

// Lines returns a copy of the lines in insertion order
func (s *Store) Lines() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyLines(s.lines)
}

// Snapshot returns a copy of the whole state
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// OrderNumber returns the id of the last successful order
func (s *Store) OrderNumber() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderNumber
}

// Panels

func (s *Store) OpenCart() {
	s.mu.Lock()
	s.cartOpen = true
	s.commitPanels()
}

func (s *Store) CloseCart() {
	s.mu.Lock()
	s.cartOpen = false
	s.commitPanels()
}

// OpenCheckout opens the checkout panel and closes the cart panel
func (s *Store) OpenCheckout() {
	s.mu.Lock()
	s.checkoutOpen = true
	s.cartOpen = false
	s.commitPanels()
}

func (s *Store) CloseCheckout() {
	s.mu.Lock()
	s.checkoutOpen = false
	s.commitPanels()
}

// OpenSuccess records orderID, swaps checkout for the success panel and
// clears the cart.
func (s *Store) OpenSuccess(orderID string) {
	s.mu.Lock()
	s.orderNumber = orderID
	s.successOpen = true
	s.checkoutOpen = false
	s.lines = nil
	s.commitLines()
}

func (s *Store) CloseSuccess() {
	s.mu.Lock()
	s.successOpen = false
	s.commitPanels()
}

// Subscribe registers l for state-change notifications. The returned func
// removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// commitLines persists the lines, releases the lock and notifies listeners.
// Must be called with s.mu held.
func (s *Store) commitLines() {
	data, err := json.Marshal(nonNil(s.lines))
	snap := s.snapshotLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	if err != nil {
		slog.Error("failed to marshal cart", "error", err)
	} else {
		s.persist(data)
	}
	notify(listeners, snap)
}

// commitPanels releases the lock and notifies listeners.
// Must be called with s.mu held.
func (s *Store) commitPanels() {
	snap := s.snapshotLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()
	notify(listeners, snap)
}

func (s *Store) persist(data []byte) {
	if s.kv == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := s.kv.Save(ctx, StorageKey, data); err != nil {
		slog.Warn("failed to save cart", "error", err)
	}
}

func (s *Store) indexOf(productID int64) int {
	for i, l := range s.lines {
		if l.ID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Lines:        copyLines(s.lines),
		CartOpen:     s.cartOpen,
		CheckoutOpen: s.checkoutOpen,
		SuccessOpen:  s.successOpen,
		OrderNumber:  s.orderNumber,
	}
}

func (s *Store) listenersLocked() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		out = append(out, l)
	}
	return out
}

func notify(listeners []Listener, snap Snapshot) {
	for _, l := range listeners {
		l(snap)
	}
}

// Total returns the sum of price * quantity over lines
func Total(lines []models.CartLine) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.Subtotal()
	}
	return sum
}

func copyLines(lines []models.CartLine) []models.CartLine {
	out := make([]models.CartLine, len(lines))
	copy(out, lines)
	return out
}

func nonNil(lines []models.CartLine) []models.CartLine {
	if lines == nil {
		return []models.CartLine{}
	}
	return lines
}
