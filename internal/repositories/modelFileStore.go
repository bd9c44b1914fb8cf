package repositories

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"CryptoModelBot/internal/models"

	"github.com/rs/zerolog"
)

var _ ModelStore = (*ModelFileStore)(nil)

// ModelFileStore keeps seen models in a JSON object keyed by repo ID.
type ModelFileStore struct {
	path   string
	models map[int64]models.Model
	logger zerolog.Logger
	mu     sync.Mutex
}

// NewModelFileStore loads path, creating it as an empty object when missing.
// A file that cannot be decoded is logged and treated as empty.
func NewModelFileStore(path string, logger zerolog.Logger) (*ModelFileStore, error) {
	s := &ModelFileStore{
		path:   path,
		models: make(map[int64]models.Model),
		logger: logger.With().Str("component", "model_store").Logger(),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			return nil, fmt.Errorf("create store: %w", err)
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}

	if err := json.Unmarshal(data, &s.models); err != nil {
		s.logger.Warn().Str("path", path).Err(err).Msg("Model store corrupted, resetting")
		s.models = make(map[int64]models.Model)
	}
	return s, nil
}

// Update stores unseen models and returns the new ones. The file is only
// rewritten when something new arrived, and nothing is remembered unless the
// write succeeds.
func (s *ModelFileStore) Update(discovered []models.Model) ([]models.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fresh []models.Model
	batch := make(map[int64]struct{})
	for _, m := range discovered {
		if m.RepoID == 0 {
			continue
		}
		if _, seen := s.models[m.RepoID]; seen {
			continue
		}
		if _, dup := batch[m.RepoID]; dup {
			continue
		}
		batch[m.RepoID] = struct{}{}
		fresh = append(fresh, m)
	}
	if len(fresh) == 0 {
		return nil, nil
	}

	next := make(map[int64]models.Model, len(s.models)+len(fresh))
	for id, m := range s.models {
		next[id] = m
	}
	for _, m := range fresh {
		next[m.RepoID] = m
	}
	if err := s.persist(next); err != nil {
		return nil, err
	}
	s.models = next

	for _, m := range fresh {
		s.logger.Info().Str("model", m.FullName).Msg("Discovered new model")
	}
	return fresh, nil
}

// FindAll returns every stored model ordered by repo ID.
func (s *ModelFileStore) FindAll() ([]models.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]models.Model, 0, len(s.models))
	for _, m := range s.models {
		all = append(all, m)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].RepoID < all[j].RepoID })
	return all, nil
}

// Len returns the number of models seen so far.
func (s *ModelFileStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.models)
}

func (s *ModelFileStore) persist(all map[int64]models.Model) error {
	// encoding/json writes map keys in sorted order
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}
