package backtest

import (
	"sync"
	"time"
)

// DefaultResultTTL is how long a finished run stays retrievable.
const DefaultResultTTL = 1 * time.Hour

type storeEntry struct {
	result    *Result
	expiresAt time.Time
}

// ResultStore keeps finished runs in memory so their ledgers can be fetched
// after the request that produced them. Entries expire after ttl.
type ResultStore struct {
	mu    sync.RWMutex
	store map[string]*storeEntry
	ttl   time.Duration
	every time.Duration
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewResultStore starts a background sweep every sweep interval. A
// non-positive ttl means DefaultResultTTL and a non-positive sweep means a
// quarter of the ttl. Call Close to stop it.
func NewResultStore(ttl, sweep time.Duration) *ResultStore {
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	if sweep <= 0 {
		sweep = ttl / 4
	}
	s := &ResultStore{
		store: make(map[string]*storeEntry),
		ttl:   ttl,
		every: sweep,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	go s.cleanup(sweep)
	return s
}

// Get retrieves a result if present and not expired.
func (s *ResultStore) Get(id string) (*Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.store[id]
	if !ok || s.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.result, true
}

func (s *ResultStore) Put(res *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store[res.ID] = &storeEntry{result: res, expiresAt: s.now().Add(s.ttl)}
}

func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.store)
}

func (s *ResultStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *ResultStore) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *ResultStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, entry := range s.store {
		if now.After(entry.expiresAt) {
			delete(s.store, id)
		}
	}
}
