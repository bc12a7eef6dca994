package save

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type memorySave struct {
	blob      []byte
	updatedAt time.Time
}

// MemoryRepo keeps saves in process memory.
type MemoryRepo struct {
	mu      sync.RWMutex
	saves   map[string]memorySave
	current string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{saves: map[string]memorySave{}}
}

func (r *MemoryRepo) Load(ctx context.Context, playerID string) ([]byte, error) {
	id, err := ValidatePlayerID(playerID)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.saves[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return append([]byte(nil), s.blob...), nil
}

func (r *MemoryRepo) Save(ctx context.Context, playerID string, blob []byte) error {
	id, err := ValidatePlayerID(playerID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.saves[id] = memorySave{blob: append([]byte(nil), blob...), updatedAt: time.Now().UTC()}
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, playerID string) error {
	id, err := ValidatePlayerID(playerID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.saves[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(r.saves, id)
	return nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.saves))
	for id, s := range r.saves {
		out = append(out, Entry{PlayerID: id, UpdatedAt: s.updatedAt, Size: len(s.blob), Summary: Summarize(s.blob)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

func (r *MemoryRepo) CurrentPlayer(ctx context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.current == "" {
		return "", fmt.Errorf("%w: no current player", ErrNotFound)
	}
	return r.current, nil
}

func (r *MemoryRepo) SetCurrentPlayer(ctx context.Context, playerID string) error {
	id, err := ValidatePlayerID(playerID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.current = id
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepo) Close() error { return nil }
