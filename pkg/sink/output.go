package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"tunai-collect/pkg/models"
	"tunai-collect/pkg/utils"
)

// File names inside each site's output directory.
const (
	pagesFile = "pages.jsonl"
	postsFile = "posts.jsonl"
	cardsFile = "cards.jsonl"
	vocabFile = "words.json"
)

// SiteSink owns all output files for one site's crawl:
// pages.jsonl always, posts.jsonl for forum sites, cards.jsonl when
// flashcard extraction is on, and words.json written once at close time
// by the session.
type SiteSink struct {
	dir   string
	pages *JSONLWriter
	posts *JSONLWriter // nil unless forum site
	cards *JSONLWriter // nil unless card extraction enabled
	log   *logrus.Entry
}

// NewSiteSink creates the site's output directory under baseDir and opens
// the needed JSONL streams. Any failure here is fatal for the session.
func NewSiteSink(baseDir, siteKey string, forum, extractCards bool, log *logrus.Entry) (*SiteSink, error) {
	dir := filepath.Join(baseDir, utils.SanitizeFilename(siteKey))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating output directory '%s': %w", utils.ErrSinkOpen, dir, err)
	}

	s := &SiteSink{dir: dir, log: log}

	var err error
	s.pages, err = NewJSONLWriter(filepath.Join(dir, pagesFile), log)
	if err != nil {
		return nil, err
	}
	if forum {
		s.posts, err = NewJSONLWriter(filepath.Join(dir, postsFile), log)
		if err != nil {
			s.Close()
			return nil, err
		}
	}
	if extractCards {
		s.cards, err = NewJSONLWriter(filepath.Join(dir, cardsFile), log)
		if err != nil {
			s.Close()
			return nil, err
		}
	}

	log.Infof("Output directory ready: %s", dir)
	return s, nil
}

// Dir returns the site's output directory.
func (s *SiteSink) Dir() string {
	return s.dir
}

// WritePage appends one page record.
func (s *SiteSink) WritePage(rec models.PageRecord) error {
	return s.pages.Write(rec)
}

// PageCount returns the number of page records written so far.
func (s *SiteSink) PageCount() int {
	return s.pages.Count()
}

// WritePosts appends forum posts. No-op for non-forum sites.
func (s *SiteSink) WritePosts(posts []models.ForumPost) error {
	if s.posts == nil {
		return nil
	}
	for _, p := range posts {
		if err := s.posts.Write(p); err != nil {
			return err
		}
	}
	return nil
}

// PostCount returns the number of forum posts written so far.
func (s *SiteSink) PostCount() int {
	if s.posts == nil {
		return 0
	}
	return s.posts.Count()
}

// WriteCards appends flashcards. No-op when card extraction is off.
func (s *SiteSink) WriteCards(cards []models.Card) error {
	if s.cards == nil {
		return nil
	}
	for _, c := range cards {
		if err := s.cards.Write(c); err != nil {
			return err
		}
	}
	return nil
}

// CardCount returns the number of cards written so far.
func (s *SiteSink) CardCount() int {
	if s.cards == nil {
		return 0
	}
	return s.cards.Count()
}

// WriteVocab writes the vocabulary export as indented JSON, replacing any
// previous file. Called once when the session finishes.
func (s *SiteSink) WriteVocab(vf models.VocabFile) error {
	path := filepath.Join(s.dir, vocabFile)
	data, err := json.MarshalIndent(vf, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshaling vocabulary for '%s': %w", utils.ErrParsing, path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: writing vocabulary '%s': %w", utils.ErrFilesystem, path, err)
	}
	s.log.Infof("Wrote vocabulary (%d words) to %s", vf.TotalWords, path)
	return nil
}

// Close closes all open streams, returning the first error seen.
func (s *SiteSink) Close() error {
	var firstErr error
	for _, w := range []*JSONLWriter{s.pages, s.posts, s.cards} {
		if w == nil {
			continue
		}
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
