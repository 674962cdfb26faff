package transaction

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a transaction lives after creation unless
// configured otherwise.
const DefaultTTL = 10 * time.Minute

// Config controls the in-memory store.
type Config struct {
	// TTL is the lifetime of an entry. Zero means DefaultTTL.
	TTL time.Duration

	// RefreshOnTouch extends an entry's deadline on every Get/Update.
	// The default (false) matches the proxy's historical behavior: the
	// deadline is stamped once at creation, so a flow that waits a long
	// time on an out-of-band step (e.g. a push approval) can expire
	// mid-flow. Enable this if that trade-off is wrong for your
	// deployment.
	RefreshOnTouch bool

	// JanitorInterval is how often expired entries are reaped in the
	// background. Zero disables the janitor; expired entries are then
	// only dropped lazily when accessed.
	JanitorInterval time.Duration
}

type entry struct {
	rec      Record
	deadline time.Time
}

// MemoryStore is the default Store: process-local, TTL-bound storage keyed
// by random v4 UUIDs. Safe for concurrent use.
type MemoryStore struct {
	cfg Config

	mu      sync.RWMutex
	entries map[string]*entry

	stop     chan struct{}
	stopOnce sync.Once
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an in-memory store with the given configuration.
func NewMemoryStore(cfg Config) *MemoryStore {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	s := &MemoryStore{
		cfg:     cfg,
		entries: make(map[string]*entry),
		stop:    make(chan struct{}),
	}

	if cfg.JanitorInterval > 0 {
		go s.janitor(cfg.JanitorInterval)
	}

	return s
}

// Close stops the janitor goroutine, if any. The store remains usable.
func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *MemoryStore) Create(_ context.Context, rec Record) (string, error) {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = &entry{
		rec:      maps.Clone(rec),
		deadline: time.Now().Add(s.cfg.TTL),
	}

	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.live(id)
	if err != nil {
		return nil, err
	}
	if s.cfg.RefreshOnTouch {
		e.deadline = time.Now().Add(s.cfg.TTL)
	}

	// Copy so callers can't mutate stored state without Update.
	return maps.Clone(e.rec), nil
}

func (s *MemoryStore) Update(_ context.Context, id string, patch Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.live(id)
	if err != nil {
		return err
	}

	maps.Copy(e.rec, patch)
	if s.cfg.RefreshOnTouch {
		e.deadline = time.Now().Add(s.cfg.TTL)
	}

	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.live(id); err != nil {
		return err
	}
	delete(s.entries, id)

	return nil
}

// live returns the entry for id if it exists and has not expired. Expired
// entries are dropped on the spot. Callers must hold s.mu for writing.
func (s *MemoryStore) live(id string) (*entry, error) {
	e, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if time.Now().After(e.deadline) {
		delete(s.entries, id)
		return nil, ErrNotFound
	}
	return e, nil
}

func (s *MemoryStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for id, e := range s.entries {
				if now.After(e.deadline) {
					delete(s.entries, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
