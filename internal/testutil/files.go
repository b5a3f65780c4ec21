package testutil

import (
	"context"
	"io"
	"sync"

	"github.com/dalemusser/waffle/pantry/storage"
)

// MemStore is an in-memory file store serving URLs under /uploads/.
type MemStore struct {
	mu     sync.Mutex
	files  map[string][]byte
	PutErr error
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{files: map[string][]byte{}}
}

// Put stores the reader's content under path.
func (s *MemStore) Put(_ context.Context, path string, r io.Reader, _ *storage.PutOptions) error {
	if s.PutErr != nil {
		return s.PutErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = b
	return nil
}

// Delete removes path. Missing paths are not an error.
func (s *MemStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, path)
	return nil
}

// URL returns the public URL for path.
func (s *MemStore) URL(path string) string {
	return "/uploads/" + path
}

// Has reports whether a file is stored at path.
func (s *MemStore) Has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[path]
	return ok
}

// Len returns the number of stored files.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}
