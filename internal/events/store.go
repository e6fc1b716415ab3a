// Package events holds the immutable event set shown by the viewer.
package events

import (
	"sort"
	"sync/atomic"
	"time"

	"cleancal/internal/model"
)

// Origin records where a store's events came from.
type Origin string

const (
	OriginEmpty  Origin = "empty"
	OriginRemote Origin = "remote"
	OriginSample Origin = "sample"
)

// Store is a sorted, read-only set of events. It is replaced as a whole on
// every fetch; nothing mutates it after New returns.
type Store struct {
	events   []model.CalendarEvent
	byDate   map[model.Date][]model.CalendarEvent
	origin   Origin
	loadedAt time.Time
}

// New copies list, stable-sorts it by start time and indexes it by start day.
func New(list []model.CalendarEvent, origin Origin) *Store {
	sorted := make([]model.CalendarEvent, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	byDate := make(map[model.Date][]model.CalendarEvent)
	for _, e := range sorted {
		d := e.StartDate()
		byDate[d] = append(byDate[d], e)
	}

	return &Store{
		events:   sorted,
		byDate:   byDate,
		origin:   origin,
		loadedAt: time.Now(),
	}
}

// Empty returns a store with no events.
func Empty() *Store {
	return New(nil, OriginEmpty)
}

func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.events)
}

func (s *Store) Origin() Origin {
	if s == nil {
		return OriginEmpty
	}
	return s.origin
}

func (s *Store) LoadedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.loadedAt
}

// All returns a copy of every event in start order.
func (s *Store) All() []model.CalendarEvent {
	if s == nil {
		return nil
	}
	out := make([]model.CalendarEvent, len(s.events))
	copy(out, s.events)
	return out
}

// OnDate returns a copy of the events starting on d, in start order. The
// result is never nil.
func (s *Store) OnDate(d model.Date) []model.CalendarEvent {
	if s == nil {
		return []model.CalendarEvent{}
	}
	day := s.byDate[d]
	out := make([]model.CalendarEvent, len(day))
	copy(out, day)
	return out
}

// Holder publishes the current store. Readers always observe a complete
// store; Swap replaces it in a single atomic step.
type Holder struct {
	p atomic.Pointer[Store]
}

func NewHolder(s *Store) *Holder {
	h := &Holder{}
	if s == nil {
		s = Empty()
	}
	h.p.Store(s)
	return h
}

func (h *Holder) Load() *Store {
	if s := h.p.Load(); s != nil {
		return s
	}
	return Empty()
}

// Swap installs s and returns the previous store.
func (h *Holder) Swap(s *Store) *Store {
	if s == nil {
		s = Empty()
	}
	return h.p.Swap(s)
}
