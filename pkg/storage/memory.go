package storage

import (
	"bufio"
	"fmt"
	"os"

	"tunai-collect/pkg/utils"
)

// MemoryStore is the default VisitedStore: a plain in-process set. State
// is lost when the session ends, which is fine for bounded one-shot
// crawls. Owned by a single session; not safe for concurrent use.
type MemoryStore struct {
	seen map[string]struct{}
}

// NewMemoryStore returns an empty in-memory visited set.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]struct{})}
}

// MarkVisited implements the VisitedStore interface.
func (s *MemoryStore) MarkVisited(normalizedURL string) (bool, error) {
	if _, ok := s.seen[normalizedURL]; ok {
		return false, nil
	}
	s.seen[normalizedURL] = struct{}{}
	return true, nil
}

// Count implements the VisitedStore interface.
func (s *MemoryStore) Count() (int, error) {
	return len(s.seen), nil
}

// WriteVisitedLog implements the VisitedStore interface.
func (s *MemoryStore) WriteVisitedLog(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("%w: create visited log '%s': %w", utils.ErrFilesystem, filePath, err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for u := range s.seen {
		if _, err := writer.WriteString(u + "\n"); err != nil {
			return fmt.Errorf("%w: write visited log '%s': %w", utils.ErrFilesystem, filePath, err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("%w: flush visited log '%s': %w", utils.ErrFilesystem, filePath, err)
	}
	return file.Sync()
}

// Close implements the VisitedStore interface.
func (s *MemoryStore) Close() error {
	return nil
}
