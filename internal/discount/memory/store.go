// Package memory provides an in-memory coupon rule store.
package memory

import (
	"context"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"

	"github.com/xenking/order-pricing/internal/domain/discount"
)

const bloomFPR = 0.001

var _ discount.Repository = (*Store)(nil)

// Store implements discount.Repository over a fixed set of rules. Codes are
// matched case-insensitively. A bloom filter over the codes rejects most
// unknown codes without taking the lock.
//
// Store is safe for concurrent use.
type Store struct {
	filter *bloom.BloomFilter

	mu    sync.RWMutex
	rules map[string]*discount.Rule
}

// New creates a Store holding copies of rules. Later duplicates win.
func New(rules ...discount.Rule) *Store {
	n := uint(len(rules))
	if n == 0 {
		n = 1
	}
	s := &Store{
		filter: bloom.NewWithEstimates(n, bloomFPR),
		rules:  make(map[string]*discount.Rule, len(rules)),
	}
	for i := range rules {
		r := rules[i]
		key := discount.NormalizeCode(r.Code)
		s.rules[key] = &r
		s.filter.AddString(key)
	}
	return s
}

// FindByCode returns a copy of the rule for code, or
// discount.ErrInvalidCoupon when none exists.
func (s *Store) FindByCode(_ context.Context, code string) (*discount.Rule, error) {
	key := discount.NormalizeCode(code)
	if !s.filter.TestString(key) {
		return nil, discount.ErrInvalidCoupon
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rules[key]
	if !ok {
		return nil, discount.ErrInvalidCoupon
	}
	cp := *r
	return &cp, nil
}

// IncrementUses bumps the usage counter for code.
func (s *Store) IncrementUses(_ context.Context, code string) error {
	key := discount.NormalizeCode(code)

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rules[key]
	if !ok {
		return errors.Wrapf(discount.ErrInvalidCoupon, "increment uses for %q", code)
	}
	r.Uses++
	return nil
}

// Rules returns copies of all stored rules, including current usage counts.
func (s *Store) Rules() []discount.Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]discount.Rule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, *r)
	}
	return out
}

// Len reports the number of stored rules.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}
