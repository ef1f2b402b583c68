// internal/cart/store.go
package cart

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// StorageKey is the namespace the cart is persisted under.
const StorageKey = "local-cart"

// Item is a cart line. Name, Price and Image are a snapshot taken when the
// product was added; the server re-reads prices at checkout.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     *string         `json:"image,omitempty"`
}

// Line is the checkout payload for one cart item.
type Line struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type Totals struct {
	Quantity int             `json:"totalQuantity"`
	Amount   decimal.Decimal `json:"totalAmount"`
}

type persistedCart struct {
	State struct {
		Items []Item `json:"items"`
	} `json:"state"`
	Version int `json:"version"`
}

// Store holds the cart lines in insertion order and writes every change
// through to its Storage.
type Store struct {
	mu      sync.Mutex
	storage Storage
	items   []Item
}

// NewStore restores the cart saved in storage. An unreadable payload is
// logged and replaced by an empty cart.
func NewStore(storage Storage) (*Store, error) {
	s := &Store{storage: storage}

	data, found, err := storage.Get(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if !found {
		return s, nil
	}

	var saved persistedCart
	if err := json.Unmarshal(data, &saved); err != nil {
		logrus.WithError(err).Warn("Discarding unreadable saved cart")
		return s, nil
	}
	for _, item := range saved.State.Items {
		if item.ProductID == "" || item.Quantity < 1 {
			continue
		}
		s.items = append(s.items, item)
	}
	return s, nil
}

// AddItem merges item into the line with the same product id, or appends
// it. A quantity below 1 counts as 1.
func (s *Store) AddItem(item Item) error {
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.snapshot()
	if i := indexOf(items, item.ProductID); i >= 0 {
		items[i].Quantity += item.Quantity
	} else {
		items = append(items, item)
	}
	return s.commit(items)
}

func (s *Store) RemoveItem(productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.items, productID)
	if i < 0 {
		return nil
	}
	items := s.snapshot()
	return s.commit(append(items[:i], items[i+1:]...))
}

// UpdateQuantity sets the quantity of an existing line. Zero or less removes
// the line; an unknown product id is ignored.
func (s *Store) UpdateQuantity(productID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.items, productID)
	if i < 0 {
		return nil
	}
	items := s.snapshot()
	items[i].Quantity = quantity
	return s.commit(items)
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(nil)
}

// Items returns a copy of the current lines.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot()
}

// Lines returns the current cart as order lines.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]Line, 0, len(s.items))
	for _, item := range s.items {
		lines = append(lines, Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}

// Total sums quantities and price*quantity over items.
func Total(items []Item) Totals {
	totals := Totals{Amount: decimal.Zero}
	for _, item := range items {
		totals.Quantity += item.Quantity
		totals.Amount = totals.Amount.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return totals
}

func (s *Store) snapshot() []Item {
	return append([]Item(nil), s.items...)
}

// commit persists items and only then makes them current, so a failed
// write leaves the store unchanged.
func (s *Store) commit(items []Item) error {
	var saved persistedCart
	saved.State.Items = items
	if saved.State.Items == nil {
		saved.State.Items = []Item{}
	}

	data, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.storage.Set(StorageKey, data); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}

	s.items = items
	return nil
}

func indexOf(items []Item, productID string) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
