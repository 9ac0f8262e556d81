package explorer

import (
	"github.com/tgehrmann/corrana/lib"
	"github.com/tgehrmann/corrana/lib/datatypes"
	"log"
	"sort"
	"sync"
	"time"
)

// The lifecycle states of a stored analysis.
const (
	STATUS_PENDING = "pending"
	STATUS_READY   = "ready"
	STATUS_FAILED  = "failed"
)

// An Entry is one received matrix together with its analysis state.
// The matrix and the result are never mutated once stored, so copies
// of an Entry can be handed out freely.
type Entry struct {
	ID      string
	Status  string
	Error   string
	Created time.Time
	Matrix  *datatypes.LabeledMatrix
	Result  *lib.Result
}

// A ResultStore keeps analysis entries in memory. A background ticker
// sweeps out entries that have passed the maximum age.
type ResultStore struct {
	mutex   sync.RWMutex
	entries map[string]*Entry
	maxAge  time.Duration
	ticker  *time.Ticker
}

func NewResultStore(maxAge time.Duration) *ResultStore {
	store := &ResultStore{
		entries: make(map[string]*Entry),
		maxAge:  maxAge,
	}
	if maxAge > 0 {
		store.ticker = time.NewTicker(60 * time.Second)
		go func() {
			for range store.ticker.C {
				store.sweep()
			}
		}()
	}
	return store
}

// Add registers a pending entry for a received matrix.
func (s *ResultStore) Add(id string, m *datatypes.LabeledMatrix) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.entries[id] = &Entry{
		ID:      id,
		Status:  STATUS_PENDING,
		Created: time.Now().UTC(),
		Matrix:  m,
	}
}

// SetReady stores the result for an entry. It also accepts updates to
// an entry that is already ready, for results that gained coordinates
// on demand.
func (s *ResultStore) SetReady(id string, r *lib.Result) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	entry, exists := s.entries[id]
	if !exists {
		log.Printf("no store entry for result %s\n", id)
		return
	}
	entry.Result = r
	entry.Status = STATUS_READY
	entry.Error = ""
}

func (s *ResultStore) SetFailed(id string, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	entry, exists := s.entries[id]
	if !exists {
		log.Printf("no store entry for result %s\n", id)
		return
	}
	entry.Status = STATUS_FAILED
	entry.Error = err.Error()
}

func (s *ResultStore) Get(id string) (Entry, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	entry, exists := s.entries[id]
	if !exists {
		return Entry{}, false
	}
	return *entry, true
}

// List returns all entries, newest first.
func (s *ResultStore) List() []Entry {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	ret := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		ret = append(ret, *entry)
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].Created.Equal(ret[j].Created) {
			return ret[i].ID < ret[j].ID
		}
		return ret[i].Created.After(ret[j].Created)
	})
	return ret
}

func (s *ResultStore) sweep() {
	cutoff := time.Now().UTC().Add(-s.maxAge)
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for id, entry := range s.entries {
		if entry.Created.Before(cutoff) {
			log.Printf("removing expired result %s\n", id)
			delete(s.entries, id)
		}
	}
}
