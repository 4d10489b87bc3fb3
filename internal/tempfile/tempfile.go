// Package tempfile tracks the intermediate files one request creates, so the
// caller can remove all of them unconditionally after the request finishes.
// Files not created here (caller-owned inputs) are never touched.
package tempfile

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Manager creates uniquely named files under one directory and remembers
// them for cleanup.
type Manager struct {
	dir string

	mu      sync.Mutex
	created []string
}

// NewManager returns a manager rooted at dir; empty means the OS temp
// directory.
func NewManager(dir string) *Manager {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Manager{dir: dir}
}

// Create reserves a new file path with the given extension (".mp4", ".ass").
// The file is created immediately so the path is never raced away.
func (m *Manager) Create(ext string) (string, error) {
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(m.dir, "montage-"+uuid.NewString()+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.created = append(m.created, path)
	m.mu.Unlock()

	return path, nil
}

// CleanupAll removes every file created by this manager, ignoring errors.
func (m *Manager) CleanupAll() {
	m.mu.Lock()
	paths := m.created
	m.created = nil
	m.mu.Unlock()

	for _, path := range paths {
		_ = os.Remove(path)
	}
}
