package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/wanderquiz/beacon/internal/event"
)

// LocalStore is the on-disk fallback tier: one JSON document holding every
// event buffered while the remote tier was unavailable. An unparsable
// document is reset to empty rather than failing — telemetry must never
// block the product. The read-modify-write cycle is guarded by an
// in-process mutex only; concurrent writers from other processes can lose
// an update, which is an accepted limitation of this tier.
type LocalStore struct {
	path string
	mu   sync.Mutex
}

type localDocument struct {
	Events []event.Event `json:"events"`
}

func NewLocalStore(path string) *LocalStore {
	return &LocalStore{path: path}
}

// EnsureInitialized creates the backing document with an empty event list
// when absent, and resets it when unparsable.
func (s *LocalStore) EnsureInitialized() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	return s.save(doc)
}

// ReadAll returns every buffered event, oldest first.
func (s *LocalStore) ReadAll() ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Events, nil
}

// AppendOne appends ev to the backing document.
func (s *LocalStore) AppendOne(ev event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Events = append(doc.Events, ev)
	return s.save(doc)
}

// load reads the document, treating absence and corruption as empty.
// Caller holds mu.
func (s *LocalStore) load() (*localDocument, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &localDocument{Events: []event.Event{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read local event store %s: %w", s.path, err)
	}
	var doc localDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Warn("local event store unparsable, resetting", "path", s.path, "err", err)
		return &localDocument{Events: []event.Event{}}, nil
	}
	if doc.Events == nil {
		doc.Events = []event.Event{}
	}
	return &doc, nil
}

// save writes the document back. Caller holds mu.
func (s *LocalStore) save(doc *localDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode local event store: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create local event store dir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write local event store %s: %w", s.path, err)
	}
	return nil
}
