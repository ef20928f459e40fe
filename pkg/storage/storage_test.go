package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntry() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func readLogLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	sort.Strings(lines)
	return lines
}

func TestMemoryStoreMarkVisited(t *testing.T) {
	s := NewMemoryStore()

	added, err := s.MarkVisited("https://example.com/a")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.MarkVisited("https://example.com/a")
	require.NoError(t, err)
	assert.False(t, added, "second mark of the same URL should report existing")

	added, err = s.MarkVisited("https://example.com/b")
	require.NoError(t, err)
	assert.True(t, added)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, s.Close())
}

func TestMemoryStoreWriteVisitedLog(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.MarkVisited("https://example.com/a")
	require.NoError(t, err)
	_, err = s.MarkVisited("https://example.com/b")
	require.NoError(t, err)

	logPath := filepath.Join(t.TempDir(), "visited.log")
	require.NoError(t, s.WriteVisitedLog(logPath))

	lines := readLogLines(t, logPath)
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, lines)
}

func TestBadgerStoreMarkVisited(t *testing.T) {
	stateDir := t.TempDir()
	s, err := NewBadgerStore(context.Background(), stateDir, "example.com", false, testEntry())
	require.NoError(t, err)
	defer s.Close()

	added, err := s.MarkVisited("https://example.com/a")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.MarkVisited("https://example.com/a")
	require.NoError(t, err)
	assert.False(t, added)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBadgerStoreResumeKeepsState(t *testing.T) {
	stateDir := t.TempDir()
	ctx := context.Background()

	s, err := NewBadgerStore(ctx, stateDir, "example.com", false, testEntry())
	require.NoError(t, err)
	_, err = s.MarkVisited("https://example.com/a")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopen with resume: the earlier mark must survive.
	s2, err := NewBadgerStore(ctx, stateDir, "example.com", true, testEntry())
	require.NoError(t, err)
	defer s2.Close()

	added, err := s2.MarkVisited("https://example.com/a")
	require.NoError(t, err)
	assert.False(t, added)

	count, err := s2.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBadgerStoreFreshRunWipesState(t *testing.T) {
	stateDir := t.TempDir()
	ctx := context.Background()

	s, err := NewBadgerStore(ctx, stateDir, "example.com", false, testEntry())
	require.NoError(t, err)
	_, err = s.MarkVisited("https://example.com/a")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := NewBadgerStore(ctx, stateDir, "example.com", false, testEntry())
	require.NoError(t, err)
	defer s2.Close()

	added, err := s2.MarkVisited("https://example.com/a")
	require.NoError(t, err)
	assert.True(t, added, "non-resume run should start from an empty set")
}

func TestBadgerStoreWriteVisitedLog(t *testing.T) {
	stateDir := t.TempDir()
	s, err := NewBadgerStore(context.Background(), stateDir, "example.com", false, testEntry())
	require.NoError(t, err)
	defer s.Close()

	_, err = s.MarkVisited("https://example.com/a")
	require.NoError(t, err)
	_, err = s.MarkVisited("https://example.com/b")
	require.NoError(t, err)

	logPath := filepath.Join(t.TempDir(), "visited.log")
	require.NoError(t, s.WriteVisitedLog(logPath))

	lines := readLogLines(t, logPath)
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, lines)
}
