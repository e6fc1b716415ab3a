// Package prefs stores user preferences, currently the default view.
package prefs

import (
	"context"
	"sync"

	appLog "cleancal/internal/log"
	"cleancal/internal/model"
)

// KeyDefaultView holds the canonical name of the view shown at startup.
const KeyDefaultView = "default_view"

type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// DefaultView reads the stored default view. A missing, unreadable or
// unknown value yields model.DefaultViewType.
func DefaultView(ctx context.Context, s Store) model.ViewType {
	v, ok, err := s.Get(ctx, KeyDefaultView)
	if err != nil {
		appLog.Error("read default view failed", err)
		return model.DefaultViewType
	}
	if !ok {
		return model.DefaultViewType
	}
	view, err := model.ParseViewType(v)
	if err != nil {
		appLog.Warn("stored default view not recognized", "value", v)
		return model.DefaultViewType
	}
	return view
}

func SetDefaultView(ctx context.Context, s Store, view model.ViewType) error {
	if !view.Valid() {
		return model.ErrUnknownViewType
	}
	return s.Set(ctx, KeyDefaultView, view.String())
}

// Memory is a Store that forgets everything when the process exits.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
