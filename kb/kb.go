package kb

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/signalsfoundry/coverage-engine/model"
)

// ElementStore is an in-memory, thread-safe store of orbital elements. Per
// satellite it holds an append-only sequence ordered by epoch; an element is
// never updated in place, a newer one for the same satellite is simply added
// alongside it.
type ElementStore struct {
	mu sync.RWMutex

	elements map[string][]model.OrbitalElement
}

// NewElementStore constructs an empty store.
func NewElementStore() *ElementStore {
	return &ElementStore{
		elements: make(map[string][]model.OrbitalElement),
	}
}

// AddElement appends an element to its satellite's sequence. It returns an
// error if the element has no satellite ID or no epoch.
func (s *ElementStore) AddElement(el model.OrbitalElement) error {
	if el.SatelliteID == "" {
		return fmt.Errorf("orbital element has no satellite ID")
	}
	if el.Epoch.IsZero() {
		return fmt.Errorf("orbital element for %q has no epoch", el.SatelliteID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seq := append(s.elements[el.SatelliteID], el)
	sort.Slice(seq, func(i, j int) bool { return seq[i].Epoch.Before(seq[j].Epoch) })
	s.elements[el.SatelliteID] = seq
	return nil
}

// ClosestTo returns the element for the given satellite whose epoch is nearest
// (by absolute difference) to the value time t. The second return value is
// false when the satellite has no elements at all.
func (s *ElementStore) ClosestTo(satelliteID string, t time.Time) (model.OrbitalElement, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seq := s.elements[satelliteID]
	if len(seq) == 0 {
		return model.OrbitalElement{}, false
	}

	// seq is sorted by epoch: binary search for the insertion point, then
	// compare the neighbours on either side.
	idx := sort.Search(len(seq), func(i int) bool { return !seq[i].Epoch.Before(t) })
	if idx == 0 {
		return seq[0], true
	}
	if idx == len(seq) {
		return seq[len(seq)-1], true
	}

	before, after := seq[idx-1], seq[idx]
	if t.Sub(before.Epoch) <= after.Epoch.Sub(t) {
		return before, true
	}
	return after, true
}

// Elements returns a copy of the element sequence for one satellite, ordered
// by epoch.
func (s *ElementStore) Elements(satelliteID string) []model.OrbitalElement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.OrbitalElement(nil), s.elements[satelliteID]...)
}

// Satellites returns the IDs of every satellite with at least one element,
// sorted for deterministic iteration.
func (s *ElementStore) Satellites() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.elements))
	for id := range s.elements {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the total number of stored elements.
func (s *ElementStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, seq := range s.elements {
		n += len(seq)
	}
	return n
}
