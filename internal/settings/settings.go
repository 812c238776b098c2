// Package settings holds the runtime-mutable configuration: provider
// credentials, purchase bounds, discount and poll window. Flat key->value
// strings, last write wins, snapshot rewritten on every change.
package settings

import (
	"path/filepath"
	"strconv"
	"sync"

	"github.com/fybot/airtime-orders/internal/jsonstore"
	"github.com/shopspring/decimal"
)

const snapshotFile = "settings.json"

const (
	KeyStatumConsumerKey    = "statum_consumer_key"
	KeyStatumConsumerSecret = "statum_consumer_secret"
	KeyShadowAPIKey         = "shadow_api_key"
	KeyShadowAPISecret      = "shadow_api_secret"
	KeyShadowAccountID      = "shadow_account_id"
	KeyMinAmount            = "min_amount"
	KeyMaxAmount            = "max_amount"
	KeyDiscountPercent      = "discount_percent"
	KeyPaymentPollSeconds   = "payment_poll_seconds"
)

func defaults() map[string]string {
	return map[string]string{
		KeyStatumConsumerKey:    "",
		KeyStatumConsumerSecret: "",
		KeyShadowAPIKey:         "",
		KeyShadowAPISecret:      "",
		KeyShadowAccountID:      "17",
		KeyMinAmount:            "1",
		KeyMaxAmount:            "1500",
		KeyDiscountPercent:      "0",
		KeyPaymentPollSeconds:   "20",
	}
}

type Store struct {
	mu   sync.Mutex
	path string
	vals map[string]string
}

func Open(dataDir string) (*Store, error) {
	s := &Store{
		path: filepath.Join(dataDir, snapshotFile),
		vals: defaults(),
	}
	loaded := map[string]string{}
	if err := jsonstore.Read(s.path, &loaded); err != nil {
		return nil, err
	}
	for k, v := range loaded {
		s.vals[k] = v
	}
	return s, nil
}

func (s *Store) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vals[key]
}

// Set stores one value and persists the whole snapshot.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals[key] = value
	return jsonstore.Write(s.path, s.vals)
}

// SetAll applies several updates with a single persist.
func (s *Store) SetAll(updates map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range updates {
		s.vals[k] = v
	}
	return jsonstore.Write(s.path, s.vals)
}

func (s *Store) All() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.vals))
	for k, v := range s.vals {
		out[k] = v
	}
	return out
}

// ---- typed getters, fallback ke default saat nilai rusak ----

func (s *Store) MinAmount() decimal.Decimal       { return s.decimalOr(KeyMinAmount, "1") }
func (s *Store) MaxAmount() decimal.Decimal       { return s.decimalOr(KeyMaxAmount, "1500") }
func (s *Store) DiscountPercent() decimal.Decimal { return s.decimalOr(KeyDiscountPercent, "0") }

func (s *Store) PollSeconds() int {
	n, err := strconv.Atoi(s.Get(KeyPaymentPollSeconds))
	if err != nil || n <= 0 {
		return 20
	}
	return n
}

func (s *Store) decimalOr(key, def string) decimal.Decimal {
	v, err := decimal.NewFromString(s.Get(key))
	if err != nil {
		v, _ = decimal.NewFromString(def)
	}
	return v
}
