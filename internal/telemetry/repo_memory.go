package telemetry

import (
	"encoding/json"
	"sync"
	"time"
)

// DefaultMaxEvents bounds the in-memory log.
const DefaultMaxEvents = 10000

// Repository stores telemetry events
type Repository interface {
	RecordEvent(eventType EventType, metadata EventMetadata) error
	GetEvents(since time.Time, eventTypes []EventType) ([]Event, error)
	Clear() error
}

// MemoryRepository stores events in memory, dropping the oldest past MaxEvents.
type MemoryRepository struct {
	mu        sync.RWMutex
	events    []Event
	nextID    int
	maxEvents int
	now       func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		events:    make([]Event, 0),
		nextID:    1,
		maxEvents: DefaultMaxEvents,
		now:       time.Now,
	}
}

// WithClock makes timestamps come from now.
func (r *MemoryRepository) WithClock(now func() time.Time) *MemoryRepository {
	r.mu.Lock()
	r.now = now
	r.mu.Unlock()
	return r
}

func (r *MemoryRepository) WithMaxEvents(n int) *MemoryRepository {
	r.mu.Lock()
	if n > 0 {
		r.maxEvents = n
	}
	r.mu.Unlock()
	return r
}

func (r *MemoryRepository) RecordEvent(eventType EventType, metadata EventMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return err
	}

	event := Event{
		ID:        r.nextID,
		Type:      eventType,
		Timestamp: r.now(),
		Metadata:  string(metadataJSON),
	}

	r.events = append(r.events, event)
	r.nextID++
	if over := len(r.events) - r.maxEvents; over > 0 {
		r.events = append(r.events[:0:0], r.events[over:]...)
	}

	return nil
}

func (r *MemoryRepository) GetEvents(since time.Time, eventTypes []EventType) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typeFilter := make(map[EventType]bool)
	for _, t := range eventTypes {
		typeFilter[t] = true
	}

	result := make([]Event, 0)
	for _, event := range r.events {
		if event.Timestamp.Before(since) {
			continue
		}
		if len(eventTypes) > 0 && !typeFilter[event.Type] {
			continue
		}
		result = append(result, event)
	}

	return result, nil
}

func (r *MemoryRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = make([]Event, 0)
	r.nextID = 1

	return nil
}
