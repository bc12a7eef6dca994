package game

import (
	"sync"
)

// Store owns the single game state. Dispatch serializes every update.
type Store struct {
	mu    sync.Mutex
	state State

	subMu   sync.Mutex
	subs    map[int]chan State
	nextSub int
}

func NewStore(s State) *Store {
	return &Store{state: s.Clone(), subs: map[int]chan State{}}
}

// Snapshot returns a deep copy of the committed state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Dispatch runs fn against a private copy and commits it only when fn succeeds.
// Updates never interleave and subscribers see them in commit order.
func (s *Store) Dispatch(fn func(*State) error) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	if err := fn(&next); err != nil {
		return s.state.Clone(), err
	}
	s.state = next
	s.publish(next)
	return next.Clone(), nil
}

// Replace swaps in a whole new state, as on load, import or reset.
func (s *Store) Replace(st State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st.Clone()
	s.publish(s.state)
	return s.state.Clone()
}

// Subscribe returns a channel of committed states and a cancel func.
// A slow reader only ever sees the newest state.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Store) publish(st State) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- st.Clone():
			continue
		default:
		}
		// drop the stale snapshot
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st.Clone():
		default:
		}
	}
}
