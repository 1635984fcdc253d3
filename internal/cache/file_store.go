package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/mybookings/bookingpulse/pkg/logging"
)

// FileStore keeps one JSON file per scope under a shared directory. All
// request handlers of a deployment point at the same directory, so entries
// written by one process are visible to the next. Writes go through a
// temp-file rename, so readers never observe a torn entry; concurrent
// writers to the same scope race with last-write-wins.
type FileStore struct {
	dir    string
	logger *logging.Logger
	now    func() time.Time
}

// NewFileStore creates the cache directory if needed and returns a store
// over it.
func NewFileStore(dir string, logger *logging.Logger) (*FileStore, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir, logger: logger, now: time.Now}, nil
}

func (s *FileStore) path(scope Scope) string {
	return filepath.Join(s.dir, scope.Key()+".json")
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, scope Scope, maxAge time.Duration) Result {
	raw, err := os.ReadFile(s.path(scope))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("cache read failed", "scope", scope.Key(), "error", err)
		}
		return Result{Status: StatusMiss}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Timestamp <= 0 {
		s.logger.Warn("cache entry corrupted", "scope", scope.Key())
		return Result{Status: StatusCorrupted}
	}

	age := s.age(env)
	if age > maxAge {
		return Result{Status: StatusMiss}
	}
	return Result{Status: StatusHit, Payload: env.Data, Age: age}
}

// Set implements Store.
func (s *FileStore) Set(_ context.Context, scope Scope, payload json.RawMessage) error {
	env := envelope{Timestamp: s.now().Unix(), Data: payload}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("cache: encode entry for %s: %w", scope.Key(), err)
	}

	target := s.path(scope)
	tmp, err := os.CreateTemp(s.dir, scope.Key()+".*.tmp")
	if err != nil {
		return fmt.Errorf("cache: write entry for %s: %w", scope.Key(), err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: write entry for %s: %w", scope.Key(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: write entry for %s: %w", scope.Key(), err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: write entry for %s: %w", scope.Key(), err)
	}
	return nil
}

// Invalidate implements Store.
func (s *FileStore) Invalidate(_ context.Context, scope Scope) error {
	if err := os.Remove(s.path(scope)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cache: invalidate %s: %w", scope.Key(), err)
	}
	return nil
}

// Age implements Store.
func (s *FileStore) Age(_ context.Context, scope Scope) (time.Duration, bool) {
	raw, err := os.ReadFile(s.path(scope))
	if err != nil {
		return 0, false
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Timestamp <= 0 {
		return 0, false
	}
	return s.age(env), true
}

// IsFresh implements Store.
func (s *FileStore) IsFresh(ctx context.Context, scope Scope, maxAge time.Duration) bool {
	age, ok := s.Age(ctx, scope)
	return ok && age <= maxAge
}

func (s *FileStore) age(env envelope) time.Duration {
	return time.Duration(s.now().Unix()-env.Timestamp) * time.Second
}
