package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/encounter-tracker/pkg/library"
	"github.com/jwebster45206/encounter-tracker/pkg/session"
)

// MockStorage is an in-memory Storage implementation for tests.
type MockStorage struct {
	mu         sync.RWMutex
	sessions   map[uuid.UUID]session.Session
	categories map[uuid.UUID]library.Category
	creatures  map[uuid.UUID]library.CreatureTemplate
	pingError  error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions:   make(map[uuid.UUID]session.Session),
		categories: make(map[uuid.UUID]library.Category),
		creatures:  make(map[uuid.UUID]library.CreatureTemplate),
	}
}

// SetPingError makes Ping fail with the given error.
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveSession(ctx context.Context, s session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *MockStorage) LoadSession(ctx context.Context, id uuid.UUID) (session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return session.Session{}, ErrNotFound
	}
	return s, nil
}

func (m *MockStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockStorage) ListCategories(ctx context.Context) ([]library.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]library.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockStorage) PutCategory(ctx context.Context, c library.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[c.ID] = c
	return nil
}

func (m *MockStorage) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *MockStorage) ListCreatures(ctx context.Context) ([]library.CreatureTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]library.CreatureTemplate, 0, len(m.creatures))
	for _, t := range m.creatures {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockStorage) PutCreature(ctx context.Context, t library.CreatureTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creatures[t.ID] = t
	return nil
}

func (m *MockStorage) DeleteCreature(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.creatures[id]; !ok {
		return ErrNotFound
	}
	delete(m.creatures, id)
	return nil
}

func (m *MockStorage) LibrarySnapshot(ctx context.Context) (library.Snapshot, error) {
	cats, err := m.ListCategories(ctx)
	if err != nil {
		return library.Snapshot{}, err
	}
	creatures, err := m.ListCreatures(ctx)
	if err != nil {
		return library.Snapshot{}, err
	}
	return library.Snapshot{Categories: cats, Creatures: creatures}, nil
}

func (m *MockStorage) RestoreLibrary(ctx context.Context, snap library.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories = make(map[uuid.UUID]library.Category, len(snap.Categories))
	for _, c := range snap.Categories {
		m.categories[c.ID] = c
	}
	m.creatures = make(map[uuid.UUID]library.CreatureTemplate, len(snap.Creatures))
	for _, t := range snap.Creatures {
		m.creatures[t.ID] = t
	}
	return nil
}
