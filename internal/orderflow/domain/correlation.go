// Package domain implements the order correlation lifecycle, intake
// coordination, and submission reconciliation behavior.
package domain

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

var (
	// ErrNotFound indicates a correlation entry is absent from every layer.
	ErrNotFound = errors.New("correlation not found")
	// ErrStoreNotConfigured indicates the correlation store is missing wiring.
	ErrStoreNotConfigured = errors.New("correlation store is not configured")
)

// CorrelationEntry ties one minted order id to the subject who requested it.
type CorrelationEntry struct {
	ID        string
	SubjectID string
	CreatedAt time.Time
}

// FastLayer is the TTL-bounded lookup side of the correlation store.
type FastLayer interface {
	Put(ctx context.Context, id, subjectID string) error
	Get(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
}

// DurableLog is the append-only persistence side of the correlation store.
type DurableLog interface {
	Append(ctx context.Context, entry CorrelationEntry) error
	Find(ctx context.Context, id string) (CorrelationEntry, error)
	Delete(ctx context.Context, id string) error
}

// CorrelationStore layers a fast TTL cache over a durable append-only log.
// Reads prefer the fast layer; the durable log backstops entries that
// outlive the cache TTL.
type CorrelationStore struct {
	fast    FastLayer
	durable DurableLog
	logf    func(format string, args ...any)
}

// NewCorrelationStore constructs a CorrelationStore.
func NewCorrelationStore(fast FastLayer, durable DurableLog) *CorrelationStore {
	return &CorrelationStore{
		fast:    fast,
		durable: durable,
		logf:    log.Printf,
	}
}

// Put records one correlation entry in both layers. A fast-layer failure
// degrades lookup freshness only and is logged; a durable failure is
// returned so the caller can decide how loudly to fail.
func (s *CorrelationStore) Put(ctx context.Context, entry CorrelationEntry) error {
	if s == nil || s.durable == nil {
		return ErrStoreNotConfigured
	}
	entry.ID = strings.TrimSpace(entry.ID)
	entry.SubjectID = strings.TrimSpace(entry.SubjectID)
	if entry.ID == "" {
		return fmt.Errorf("correlation id is required")
	}
	if entry.SubjectID == "" {
		return fmt.Errorf("subject id is required")
	}

	if s.fast != nil {
		if err := s.fast.Put(ctx, entry.ID, entry.SubjectID); err != nil {
			s.logf("correlation %s: fast layer put failed: %v", entry.ID, err)
		}
	}
	if err := s.durable.Append(ctx, entry); err != nil {
		return fmt.Errorf("append correlation %s: %w", entry.ID, err)
	}
	return nil
}

// Get returns one correlation entry without consuming it. The fast layer
// is consulted first; a miss falls through to the durable log.
func (s *CorrelationStore) Get(ctx context.Context, id string) (CorrelationEntry, error) {
	if s == nil || s.durable == nil {
		return CorrelationEntry{}, ErrStoreNotConfigured
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return CorrelationEntry{}, ErrNotFound
	}

	if entry, ok := s.fastGet(ctx, id); ok {
		return entry, nil
	}
	entry, err := s.durable.Find(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return CorrelationEntry{}, ErrNotFound
		}
		return CorrelationEntry{}, fmt.Errorf("find correlation %s: %w", id, err)
	}
	return entry, nil
}

// Consume returns one correlation entry and removes it from both layers.
// The durable delete is the claim whenever the log holds the entry, and
// the cached copy is cleared before that claim: a concurrent consume that
// no longer finds the durable row therefore cannot reclaim the same entry
// through the cache. Losing a claim race reports ErrNotFound, so one put
// yields at most one successful consume.
func (s *CorrelationStore) Consume(ctx context.Context, id string) (CorrelationEntry, error) {
	if s == nil || s.durable == nil {
		return CorrelationEntry{}, ErrStoreNotConfigured
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return CorrelationEntry{}, ErrNotFound
	}

	entry, err := s.durable.Find(ctx, id)
	switch {
	case err == nil:
		if s.fast != nil {
			if delErr := s.fast.Delete(ctx, id); delErr != nil && !errors.Is(delErr, ErrNotFound) {
				s.logf("correlation %s: fast layer delete failed: %v", id, delErr)
			}
		}
		if err := s.durable.Delete(ctx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return CorrelationEntry{}, ErrNotFound
			}
			return CorrelationEntry{}, fmt.Errorf("consume correlation %s: %w", id, err)
		}
		return entry, nil
	case errors.Is(err, ErrNotFound):
		// The entry never reached the durable log (its append failed at
		// intake), so the fast-layer delete is the claim.
		fastEntry, ok := s.fastGet(ctx, id)
		if !ok {
			return CorrelationEntry{}, ErrNotFound
		}
		if delErr := s.fast.Delete(ctx, id); delErr != nil {
			if errors.Is(delErr, ErrNotFound) {
				return CorrelationEntry{}, ErrNotFound
			}
			return CorrelationEntry{}, fmt.Errorf("consume correlation %s: %w", id, delErr)
		}
		return fastEntry, nil
	default:
		return CorrelationEntry{}, fmt.Errorf("find correlation %s: %w", id, err)
	}
}

// fastGet attempts a fast-layer read, treating any failure as a miss.
func (s *CorrelationStore) fastGet(ctx context.Context, id string) (CorrelationEntry, bool) {
	if s.fast == nil {
		return CorrelationEntry{}, false
	}
	subjectID, err := s.fast.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logf("correlation %s: fast layer get failed: %v", id, err)
		}
		return CorrelationEntry{}, false
	}
	return CorrelationEntry{ID: id, SubjectID: subjectID}, true
}
