package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/windoze95/dapur-api/internal/logger"
	"go.uber.org/zap"
)

// jsonStore persists one JSON object keyed by username. Every operation reads
// the whole file and every change rewrites it. Writers are serialized by an
// in-process mutex plus an advisory lock file, so the API server and the CLI
// can share a data directory.
type jsonStore[T any] struct {
	path string
	mu   sync.Mutex
	lock *flock.Flock
}

func newJSONStore[T any](path string) *jsonStore[T] {
	return &jsonStore[T]{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

var errCorruptDocument = errors.New("corrupt document")

// view loads the document under a shared lock and hands it to fn.
func (s *jsonStore[T]) view(fn func(doc map[string]T)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := s.lock.RLock(); err != nil {
		return fmt.Errorf("lock %s: %w", s.path, err)
	}
	defer s.lock.Unlock()

	doc, err := s.load()
	if errors.Is(err, errCorruptDocument) {
		logger.Get().Warn("treating corrupt store as empty", zap.String("path", s.path), zap.Error(err))
		doc = map[string]T{}
	} else if err != nil {
		return err
	}

	fn(doc)
	return nil
}

// update loads the document under an exclusive lock and lets fn mutate it.
// The document is written back only when fn reports a change.
func (s *jsonStore[T]) update(fn func(doc map[string]T) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", s.path, err)
	}
	defer s.lock.Unlock()

	doc, err := s.load()
	if errors.Is(err, errCorruptDocument) {
		// Keep the unreadable file around instead of overwriting it.
		backup := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().Unix())
		if renameErr := os.Rename(s.path, backup); renameErr != nil {
			return fmt.Errorf("move corrupt store aside: %w", renameErr)
		}
		logger.Get().Warn("moved corrupt store aside",
			zap.String("path", s.path),
			zap.String("backup", backup),
			zap.Error(err),
		)
		doc = map[string]T{}
	} else if err != nil {
		return err
	}

	if !fn(doc) {
		return nil
	}
	return s.save(doc)
}

func (s *jsonStore[T]) load() (map[string]T, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]T{}, nil
	}

	var doc map[string]T
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorruptDocument, err)
	}
	if doc == nil {
		doc = map[string]T{}
	}
	return doc, nil
}

// save writes to a temp file in the same directory and renames it over the
// document so readers never see a partial write.
func (s *jsonStore[T]) save(doc map[string]T) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
