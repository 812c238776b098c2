package orders

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fybot/airtime-orders/internal/jsonstore"
)

var ErrNotFound = errors.New("order not found")

const snapshotFile = "orders.json"

// Store is the single source of truth for orders. The whole collection is
// kept in memory (newest first) and rewritten to disk on every mutation.
// Orders are never deleted.
type Store struct {
	mu   sync.Mutex
	path string
	list []Order
}

func OpenStore(dataDir string) (*Store, error) {
	s := &Store{path: filepath.Join(dataDir, snapshotFile)}
	if err := jsonstore.Read(s.path, &s.list); err != nil {
		return nil, err
	}
	return s, nil
}

// stubbed in tests to force collisions
var genOrderNo = GenOrderNo

// Create assigns an order number (retrying on the unlikely collision with
// an existing one), prepends the order and persists synchronously.
func (s *Store) Create(o *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.OrderNo == "" {
		for {
			no := genOrderNo()
			if s.indexByOrderNo(no) < 0 {
				o.OrderNo = no
				break
			}
		}
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	s.list = append([]Order{*o}, s.list...)
	if err := s.persist(); err != nil {
		s.list = s.list[1:]
		return err
	}
	return nil
}

func (s *Store) FindByOrderNo(no string) (Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexByOrderNo(no); i >= 0 {
		return s.list[i], true
	}
	return Order{}, false
}

func (s *Store) FindByCheckout(checkoutID string) (Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexByCheckout(checkoutID); i >= 0 {
		return s.list[i], true
	}
	return Order{}, false
}

// UpdateByOrderNo applies mutate to the matching order under the store
// lock, bumps updated_at and persists. The read-modify-write is atomic
// with respect to other store calls.
func (s *Store) UpdateByOrderNo(no string, mutate func(*Order)) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexByOrderNo(no)
	if i < 0 {
		return Order{}, ErrNotFound
	}
	return s.apply(i, mutate)
}

func (s *Store) UpdateByCheckout(checkoutID string, mutate func(*Order)) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexByCheckout(checkoutID)
	if i < 0 {
		return Order{}, ErrNotFound
	}
	return s.apply(i, mutate)
}

// List returns a copy of all orders, newest first.
func (s *Store) List() []Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Order, len(s.list))
	copy(out, s.list)
	return out
}

func (s *Store) apply(i int, mutate func(*Order)) (Order, error) {
	prev := s.list[i]
	mutate(&s.list[i])
	s.list[i].UpdatedAt = time.Now().UTC()
	if err := s.persist(); err != nil {
		s.list[i] = prev
		return Order{}, err
	}
	return s.list[i], nil
}

func (s *Store) indexByOrderNo(no string) int {
	for i := range s.list {
		if s.list[i].OrderNo == no {
			return i
		}
	}
	return -1
}

func (s *Store) indexByCheckout(id string) int {
	for i := range s.list {
		if s.list[i].CheckoutID != "" && s.list[i].CheckoutID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persist() error {
	return jsonstore.Write(s.path, s.list)
}
