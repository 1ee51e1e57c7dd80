// Package docstore implements the document lista backend on automerge. The
// whole list lives in one document: categories and items sit in root maps
// keyed by record ID, each record a nested map of scalar fields. Writes
// validate up front and seal each unit of work as one named change; the
// committed document is then snapshotted to disk. The document's sync
// protocol is exposed through Peer, and Subscriptions tracks named queries
// across sync exchanges.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/automerge/automerge-go"

	"github.com/lista-app/lista"
)

// Document layout: two root maps keyed by record ID, each entry a nested map
// of scalar fields. Orphaned items keep an empty category_id.
const (
	categoriesKey = "categories"
	itemsKey      = "items"

	fieldName      = "name"
	fieldTitle     = "title"
	fieldDone      = "done"
	fieldCategory  = "category_id"
	fieldCreatedAt = "created_at"
)

var errClosed = errors.New("store is closed")

// Store is the automerge-backed lista.Backend. A single mutex serializes
// every reader and writer, so a query never observes a half-applied unit of
// work.
type Store struct {
	mu   sync.Mutex
	doc  *automerge.Doc
	path string
	subs *Subscriptions
}

// Compile-time verification that *Store implements lista.Backend
var _ lista.Backend = (*Store)(nil)

// Open loads the document snapshot at path, or starts a new document when no
// snapshot exists yet. An empty path keeps the store in memory only.
func Open(path string) (*Store, error) {
	if path == "" {
		return &Store{doc: automerge.New(), subs: newSubscriptions()}, nil
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Store{doc: automerge.New(), path: path, subs: newSubscriptions()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	doc, err := automerge.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return &Store{doc: doc, path: path, subs: newSubscriptions()}, nil
}

// Close writes a final snapshot, invalidates subscriptions, and releases the
// document. Operations on a closed store fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil
	}
	err := s.snapshotLocked()
	s.doc = nil
	s.subs.invalidateAll()
	return err
}

// Subscriptions returns the store's subscription registry.
func (s *Store) Subscriptions() *Subscriptions {
	return s.subs
}

// checkOpen reports whether the store can serve a request. Callers hold mu.
func (s *Store) checkOpen(ctx context.Context) error {
	if s.doc == nil {
		return errClosed
	}
	return ctx.Err()
}

// commitLocked seals the current unit of work as one named change and
// snapshots the document. The change stands even when the snapshot write
// fails; the next commit rewrites the whole snapshot. Callers hold mu.
func (s *Store) commitLocked(message string) error {
	if _, err := s.doc.Commit(message, automerge.CommitOptions{AllowEmpty: true}); err != nil {
		return fmt.Errorf("failed to commit change: %w", err)
	}
	return s.snapshotLocked()
}

// snapshotLocked writes the saved document through a temp file and rename,
// so a crash never leaves a half-written snapshot behind. Callers hold mu.
func (s *Store) snapshotLocked() error {
	if s.path == "" {
		return nil
	}

	data := s.doc.Save()
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// rootMapLocked returns the named root map, or nil when the document has no
// entry for it yet. Writes create the maps on first insert. Callers hold mu.
func (s *Store) rootMapLocked(key string) (*automerge.Map, error) {
	v, err := s.doc.Path(key).Get()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if v.Kind() != automerge.KindMap {
		return nil, nil
	}
	return v.Map(), nil
}

func stringField(m *automerge.Map, key string) (string, error) {
	v, err := m.Get(key)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	if v.Kind() != automerge.KindStr {
		return "", fmt.Errorf("field %s is not a string", key)
	}
	return v.Str(), nil
}

func boolField(m *automerge.Map, key string) (bool, error) {
	v, err := m.Get(key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if v.Kind() != automerge.KindBool {
		return false, fmt.Errorf("field %s is not a bool", key)
	}
	return v.Bool(), nil
}

func timeField(m *automerge.Map, key string) (time.Time, error) {
	v, err := m.Get(key)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if v.Kind() != automerge.KindTime {
		return time.Time{}, fmt.Errorf("field %s is not a timestamp", key)
	}
	return v.Time().UTC(), nil
}
