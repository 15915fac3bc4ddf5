package annotation

import (
	"context"
	"sync"

	"github.com/matzehuels/platekit/pkg/plate"
)

// MemoryStore keeps annotations in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	plates map[string]map[string]map[plate.Coordinate]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plates: make(map[string]map[string]map[plate.Coordinate]string)}
}

func (s *MemoryStore) Name() string { return BackendMemory }

func (s *MemoryStore) Get(ctx context.Context, plateID string, c plate.Coordinate, key string) (string, bool, error) {
	if err := validateScope(plateID, key); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.plates[plateID][key][c]
	return v, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, plateID string, c plate.Coordinate, key, value string) error {
	return s.SetMany(ctx, plateID, []plate.Coordinate{c}, key, value)
}

func (s *MemoryStore) SetMany(ctx context.Context, plateID string, cells []plate.Coordinate, key, value string) error {
	if err := validateScope(plateID, key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := s.plates[plateID]
	if keys == nil {
		keys = make(map[string]map[plate.Coordinate]string)
		s.plates[plateID] = keys
	}
	wells := keys[key]
	if wells == nil {
		wells = make(map[plate.Coordinate]string)
		keys[key] = wells
	}
	for _, c := range cells {
		wells[c] = value
	}
	return nil
}

func (s *MemoryStore) List(ctx context.Context, plateID, key string) (map[plate.Coordinate]string, error) {
	if err := validateScope(plateID, key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[plate.Coordinate]string, len(s.plates[plateID][key]))
	for c, v := range s.plates[plateID][key] {
		out[c] = v
	}
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, plateID, key string) error {
	if err := validateScope(plateID, key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.plates[plateID], key)
	return nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
