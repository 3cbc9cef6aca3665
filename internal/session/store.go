package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"github.com/naveenspark/consultly/pkg/domain"
)

// ErrNoSession is returned when a session without a token is saved.
var ErrNoSession = errors.New("session has no token")

// Store persists the client session. Implementations are safe for concurrent use.
type Store interface {
	Session() (domain.Session, bool)
	Token() (string, bool)
	Save(s domain.Session) error
	Clear() error
}

// MemoryStore keeps the session in memory only.
type MemoryStore struct {
	mu   sync.RWMutex
	sess domain.Session
}

// NewMemoryStore returns a store seeded with s (which may be empty).
func NewMemoryStore(s domain.Session) *MemoryStore {
	return &MemoryStore{sess: s}
}

func (m *MemoryStore) Session() (domain.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess, m.sess.Valid()
}

func (m *MemoryStore) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess.Token, m.sess.Valid()
}

func (m *MemoryStore) Save(s domain.Session) error {
	if !s.Valid() {
		return ErrNoSession
	}
	m.mu.Lock()
	m.sess = s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	m.sess = domain.Session{}
	m.mu.Unlock()
	return nil
}

// FileStore persists the session as JSON in a 0600 file.
type FileStore struct {
	path string
	mem  MemoryStore
}

// OpenFileStore loads the session at path. A missing file is an anonymous session.
func OpenFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session.OpenFileStore: %w", err)
	}
	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		// A corrupt file is treated as logged out rather than blocking startup.
		return fs, nil
	}
	fs.mem.sess = s
	return fs, nil
}

// Path returns the backing file location.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Session() (domain.Session, bool) {
	return f.mem.Session()
}

func (f *FileStore) Token() (string, bool) {
	return f.mem.Token()
}

// Save writes s to a temp file and renames it over the session file.
func (f *FileStore) Save(s domain.Session) error {
	if !s.Valid() {
		return ErrNoSession
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session.Save: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("session.Save: create dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("session.Save: write: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return fmt.Errorf("session.Save: rename: %w", err)
	}
	return f.mem.Save(s)
}

// Clear removes the session file. Clearing an absent session is not an error.
func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("session.Clear: %w", err)
	}
	return f.mem.Clear()
}
