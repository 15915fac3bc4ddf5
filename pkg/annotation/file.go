package annotation

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/matzehuels/platekit/pkg/plate"
)

// FileStore keeps one JSON document per plate in a directory.
// It is intended for the CLI, where a single process owns the files.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// plateDocument is the on-disk form of one plate's annotations.
// Wells are keyed by "row:column".
type plateDocument struct {
	PlateID     string                       `json:"plate_id"`
	UpdatedAt   time.Time                    `json:"updated_at"`
	Annotations map[string]map[string]string `json:"annotations"`
}

// NewFileStore creates a file store in dir, creating the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, unavailable(BackendFile, "create dir", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Name() string { return BackendFile }

// Dir returns the directory holding the plate documents.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(plateID string) string {
	return filepath.Join(s.dir, plateID+".json")
}

// load reads a plate document. A missing file is an empty document.
func (s *FileStore) load(plateID string) (*plateDocument, error) {
	doc := &plateDocument{PlateID: plateID, Annotations: make(map[string]map[string]string)}
	data, err := os.ReadFile(s.path(plateID))
	if os.IsNotExist(err) {
		return doc, nil
	}
	if err != nil {
		return nil, unavailable(BackendFile, "read plate", err)
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, unavailable(BackendFile, "parse plate", err)
	}
	if doc.Annotations == nil {
		doc.Annotations = make(map[string]map[string]string)
	}
	return doc, nil
}

// save writes a plate document through a temp file and rename.
func (s *FileStore) save(doc *plateDocument) error {
	doc.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return unavailable(BackendFile, "marshal plate", err)
	}
	path := s.path(doc.PlateID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return unavailable(BackendFile, "write plate", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return unavailable(BackendFile, "write plate", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, plateID string, c plate.Coordinate, key string) (string, bool, error) {
	if err := validateScope(plateID, key); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, err := s.load(plateID)
	if err != nil {
		return "", false, err
	}
	v, ok := doc.Annotations[key][cellField(c)]
	return v, ok, nil
}

func (s *FileStore) Set(ctx context.Context, plateID string, c plate.Coordinate, key, value string) error {
	return s.SetMany(ctx, plateID, []plate.Coordinate{c}, key, value)
}

func (s *FileStore) SetMany(ctx context.Context, plateID string, cells []plate.Coordinate, key, value string) error {
	if err := validateScope(plateID, key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load(plateID)
	if err != nil {
		return err
	}
	wells := doc.Annotations[key]
	if wells == nil {
		wells = make(map[string]string)
		doc.Annotations[key] = wells
	}
	for _, c := range cells {
		wells[cellField(c)] = value
	}
	return s.save(doc)
}

func (s *FileStore) List(ctx context.Context, plateID, key string) (map[plate.Coordinate]string, error) {
	if err := validateScope(plateID, key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, err := s.load(plateID)
	if err != nil {
		return nil, err
	}
	out := make(map[plate.Coordinate]string, len(doc.Annotations[key]))
	for field, v := range doc.Annotations[key] {
		c, err := parseCellField(field)
		if err != nil {
			return nil, unavailable(BackendFile, "parse plate", err)
		}
		out[c] = v
	}
	return out, nil
}

func (s *FileStore) Delete(ctx context.Context, plateID, key string) error {
	if err := validateScope(plateID, key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load(plateID)
	if err != nil {
		return err
	}
	if _, ok := doc.Annotations[key]; !ok {
		return nil
	}
	delete(doc.Annotations, key)
	return s.save(doc)
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
