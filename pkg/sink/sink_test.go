package sink

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tunai-collect/pkg/models"
	"tunai-collect/pkg/utils"
)

func testEntry() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

func TestJSONLWriterAppendsOneLinePerRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	w, err := NewJSONLWriter(path, testEntry())
	require.NoError(t, err)

	require.NoError(t, w.Write(map[string]string{"a": "1"}))
	require.NoError(t, w.Write(map[string]string{"b": "2"}))
	assert.Equal(t, 2, w.Count())
	require.NoError(t, w.Close())

	lines := readLines(t, path)
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"a":"1"}`, lines[0])
	assert.JSONEq(t, `{"b":"2"}`, lines[1])
}

func TestJSONLWriterAppendsAcrossReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")

	w, err := NewJSONLWriter(path, testEntry())
	require.NoError(t, err)
	require.NoError(t, w.Write(map[string]string{"run": "1"}))
	require.NoError(t, w.Close())

	w, err = NewJSONLWriter(path, testEntry())
	require.NoError(t, err)
	require.NoError(t, w.Write(map[string]string{"run": "2"}))
	require.NoError(t, w.Close())

	assert.Len(t, readLines(t, path), 2)
}

func TestJSONLWriterOpenFailure(t *testing.T) {
	// Parent directory does not exist.
	_, err := NewJSONLWriter(filepath.Join(t.TempDir(), "missing", "out.jsonl"), testEntry())
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrSinkOpen)
	assert.Equal(t, "SinkOpen", utils.CategorizeError(err))
}

func TestSiteSinkLayout(t *testing.T) {
	base := t.TempDir()
	s, err := NewSiteSink(base, "tunisia-sat.com", true, false, testEntry())
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, filepath.Join(base, "tunisia-sat.com"), s.Dir())
	assert.FileExists(t, filepath.Join(s.Dir(), "pages.jsonl"))
	assert.FileExists(t, filepath.Join(s.Dir(), "posts.jsonl"))
	assert.NoFileExists(t, filepath.Join(s.Dir(), "cards.jsonl"))
}

func TestSiteSinkWritePageFieldOrder(t *testing.T) {
	s, err := NewSiteSink(t.TempDir(), "example.com", false, false, testEntry())
	require.NoError(t, err)
	defer s.Close()

	rec := models.PageRecord{
		URL:            "https://example.com/a",
		FetchTimestamp: "2026-08-25T12:00:00Z",
		Title:          "T",
		ExtractedText:  "body",
		OutboundLinks:  []string{"https://example.com/b"},
		Domain:         "example.com",
	}
	require.NoError(t, s.WritePage(rec))
	assert.Equal(t, 1, s.PageCount())

	lines := readLines(t, filepath.Join(s.Dir(), "pages.jsonl"))
	require.Len(t, lines, 1)
	assert.Equal(t,
		`{"url":"https://example.com/a","fetch_timestamp":"2026-08-25T12:00:00Z","title":"T","extracted_text":"body","outbound_links":["https://example.com/b"],"domain":"example.com"}`,
		lines[0])
}

func TestSiteSinkPostsIgnoredForNonForum(t *testing.T) {
	s, err := NewSiteSink(t.TempDir(), "example.com", false, false, testEntry())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.WritePosts([]models.ForumPost{{Source: "x", Text: "y"}}))
	assert.Equal(t, 0, s.PostCount())
	assert.NoFileExists(t, filepath.Join(s.Dir(), "posts.jsonl"))
}

func TestSiteSinkWriteVocab(t *testing.T) {
	s, err := NewSiteSink(t.TempDir(), "example.com", false, false, testEntry())
	require.NoError(t, err)
	defer s.Close()

	vf := models.VocabFile{
		Site:       "example.com",
		RunID:      "run-1",
		TotalWords: 1,
		Vocab: []models.VocabEntry{
			{Word: "barcha", Count: 4, Script: "roman", Examples: []string{"barcha mzyan"}},
		},
	}
	require.NoError(t, s.WriteVocab(vf))

	data, err := os.ReadFile(filepath.Join(s.Dir(), "words.json"))
	require.NoError(t, err)

	var got models.VocabFile
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, vf, got)
}

func TestSiteSinkCards(t *testing.T) {
	s, err := NewSiteSink(t.TempDir(), "derja.ninja", false, true, testEntry())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.WriteCards([]models.Card{
		{Source: "derja.ninja", URL: "https://derja.ninja/w/1", English: "hello", Arabic: "مرحبا", Roman: "3asslema"},
	}))
	assert.Equal(t, 1, s.CardCount())
	assert.Len(t, readLines(t, filepath.Join(s.Dir(), "cards.jsonl")), 1)
}
