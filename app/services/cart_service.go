package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/threadline/storefront/app/models"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

type CartEventKind string

const (
	CartItemAdded       CartEventKind = "added"
	CartQuantityUpdated CartEventKind = "updated"
	CartItemRemoved     CartEventKind = "removed"
)

// CartEvent is the notification surfaced to the shopper after a cart mutation.
type CartEvent struct {
	Kind      CartEventKind `json:"kind"`
	ProductID string        `json:"product_id"`
	Message   string        `json:"message"`
}

// CartSnapshotStore persists the serialized cart of one session.
type CartSnapshotStore interface {
	Load() ([]byte, error)
	Save(data []byte) error
	Delete() error
}

// CartStore owns the cart of a single session. Every mutation is written through to the
// snapshot store before subscribers are notified.
type CartStore struct {
	mu          sync.Mutex
	cart        models.Cart
	snapshots   CartSnapshotStore
	subscribers map[int]func(CartEvent)
	nextSubID   int
}

// OpenCartStore hydrates the cart from its snapshot. A missing snapshot gives an empty cart, and
// so does a corrupted one, which is deleted so the next request starts clean.
func OpenCartStore(snapshots CartSnapshotStore) *CartStore {
	s := &CartStore{
		snapshots:   snapshots,
		subscribers: make(map[int]func(CartEvent)),
	}

	data, err := snapshots.Load()
	if err != nil {
		log.Printf("CartStore: failed to load cart snapshot, starting empty: %v", err)
		return s
	}
	if len(data) == 0 {
		return s
	}

	items, err := decodeCartSnapshot(data)
	if err != nil {
		log.Printf("❌ CartStore: discarding corrupted cart snapshot: %v", err)
		if delErr := snapshots.Delete(); delErr != nil {
			log.Printf("CartStore: failed to delete corrupted snapshot: %v", delErr)
		}
		return s
	}
	s.cart.Items = items
	return s
}

func decodeCartSnapshot(data []byte) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.Quantity < 1 {
			return nil, fmt.Errorf("invalid cart entry %q with quantity %d", item.ProductID, item.Quantity)
		}
		if seen[item.ProductID] {
			return nil, fmt.Errorf("duplicate cart entry %q", item.ProductID)
		}
		seen[item.ProductID] = true
	}
	return items, nil
}

// Subscribe registers fn for cart events and returns the function that removes it.
func (s *CartStore) Subscribe(fn func(CartEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// AddToCart merges quantity into an existing entry for the product, or appends a new one.
// The embedded product is refreshed to the given snapshot either way.
func (s *CartStore) AddToCart(product models.Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	snapshot := product
	event := CartEvent{ProductID: product.ID}
	if i, ok := s.cart.Find(product.ID); ok {
		s.cart.Items[i] = models.CartItem{
			ProductID: product.ID,
			Quantity:  s.cart.Items[i].Quantity + quantity,
			Product:   &snapshot,
		}
		event.Kind = CartQuantityUpdated
		event.Message = fmt.Sprintf("Updated %s quantity", product.Title)
	} else {
		s.cart.Items = append(s.cart.Items, models.CartItem{
			ProductID: product.ID,
			Quantity:  quantity,
			Product:   &snapshot,
		})
		event.Kind = CartItemAdded
		event.Message = fmt.Sprintf("Added %s to cart", product.Title)
	}
	s.persistLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, event)
	return nil
}

// RemoveFromCart is a no-op when the product is not in the cart.
func (s *CartStore) RemoveFromCart(productID string) {
	s.mu.Lock()
	i, ok := s.cart.Find(productID)
	if !ok {
		s.mu.Unlock()
		return
	}
	s.cart.Items = append(s.cart.Items[:i], s.cart.Items[i+1:]...)
	s.persistLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, CartEvent{Kind: CartItemRemoved, ProductID: productID, Message: "Removed from cart"})
}

// UpdateQuantity sets the quantity of an existing entry. Quantities below 1 are rejected
// rather than treated as removal.
func (s *CartStore) UpdateQuantity(productID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	i, ok := s.cart.Find(productID)
	if !ok {
		s.mu.Unlock()
		return nil
	}
	item := s.cart.Items[i]
	item.Quantity = quantity
	s.cart.Items[i] = item
	s.persistLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	title := productID
	if item.Product != nil && item.Product.Title != "" {
		title = item.Product.Title
	}
	notify(subs, CartEvent{Kind: CartQuantityUpdated, ProductID: productID, Message: fmt.Sprintf("Updated %s quantity", title)})
	return nil
}

func (s *CartStore) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// Teardown ends the session: the cart and its snapshot are removed and subscribers dropped.
func (s *CartStore) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	s.subscribers = make(map[int]func(CartEvent))
}

// RefreshProducts replaces the embedded product snapshots with the given catalog entries.
// Entries for products not in the map keep their old snapshot.
func (s *CartStore) RefreshProducts(products map[string]models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for i, item := range s.cart.Items {
		p, ok := products[item.ProductID]
		if !ok {
			continue
		}
		fresh := p
		s.cart.Items[i].Product = &fresh
		changed = true
	}
	if changed {
		s.persistLocked()
	}
}

func (s *CartStore) Cart() models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

func (s *CartStore) Items() []models.CartItem {
	return s.Cart().Items
}

func (s *CartStore) TotalItems() int {
	return s.Cart().TotalItems()
}

func (s *CartStore) TotalPrice() decimal.Decimal {
	return s.Cart().TotalPrice()
}

func (s *CartStore) clearLocked() {
	s.cart.Items = nil
	if err := s.snapshots.Delete(); err != nil {
		log.Printf("❌ CartStore: failed to delete cart snapshot: %v", err)
	}
}

// persistLocked writes the snapshot. A failed write is logged and the in-memory change stands.
func (s *CartStore) persistLocked() {
	items := s.cart.Items
	if items == nil {
		items = []models.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		log.Printf("❌ CartStore: failed to encode cart snapshot: %v", err)
		return
	}
	if err := s.snapshots.Save(data); err != nil {
		log.Printf("❌ CartStore: failed to persist cart snapshot: %v", err)
	}
}

func (s *CartStore) subscribersLocked() []func(CartEvent) {
	subs := make([]func(CartEvent), 0, len(s.subscribers))
	for id := 0; id < s.nextSubID; id++ {
		if fn, ok := s.subscribers[id]; ok {
			subs = append(subs, fn)
		}
	}
	return subs
}

func notify(subs []func(CartEvent), event CartEvent) {
	for _, fn := range subs {
		fn(event)
	}
}

// MemorySnapshotStore keeps the snapshot in memory, for callers without a session.
type MemorySnapshotStore struct {
	mu   sync.Mutex
	data []byte
}

func NewMemorySnapshotStore(initial []byte) *MemorySnapshotStore {
	return &MemorySnapshotStore{data: append([]byte(nil), initial...)}
}

func (m *MemorySnapshotStore) Load() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemorySnapshotStore) Save(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *MemorySnapshotStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return nil
}
