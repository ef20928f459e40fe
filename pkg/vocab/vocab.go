// Package vocab tracks word frequency and example sentences across one
// crawl session and builds the vocabulary export written at session close.
package vocab

import (
	"sort"
	"strings"

	"tunai-collect/pkg/models"
	"tunai-collect/pkg/text"
)

// MaxExamples caps the number of example sentences stored per word.
const MaxExamples = 3

type sample struct {
	script   string
	examples []string
}

// Tracker accumulates vocabulary over the pages and posts of one session.
// Owned by a single crawl session; not safe for concurrent use.
type Tracker struct {
	freq    map[string]int
	samples map[string]sample
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		freq:    make(map[string]int),
		samples: make(map[string]sample),
	}
}

// Update extracts tokens from the given text and records their frequency
// and example sentences.
func (t *Tracker) Update(content string) {
	if content == "" {
		return
	}

	arabic, romanized := text.ExtractTokens(content)
	sentences := text.SplitSentences(content)

	for _, token := range arabic {
		t.add(token, "arabic", sentences)
	}
	for _, token := range romanized {
		t.add(token, "roman", sentences)
	}
}

// add records one occurrence of a token; example sentences are captured
// only on first sight.
func (t *Tracker) add(token, script string, sentences []string) {
	t.freq[token]++

	if _, seen := t.samples[token]; seen {
		return
	}
	var examples []string
	for _, sent := range sentences {
		if strings.Contains(sent, token) {
			examples = append(examples, sent)
			if len(examples) >= MaxExamples {
				break
			}
		}
	}
	t.samples[token] = sample{script: script, examples: examples}
}

// Len returns the number of distinct words tracked so far.
func (t *Tracker) Len() int {
	return len(t.freq)
}

// Build assembles the vocabulary export for a site, sorted by descending
// frequency. Ties are broken alphabetically so output is deterministic.
func (t *Tracker) Build(site, runID string) models.VocabFile {
	entries := make([]models.VocabEntry, 0, len(t.freq))
	for word, count := range t.freq {
		s := t.samples[word]
		examples := s.examples
		if examples == nil {
			examples = []string{}
		}
		entries = append(entries, models.VocabEntry{
			Word:     word,
			Count:    count,
			Script:   s.script,
			Examples: examples,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Word < entries[j].Word
	})

	return models.VocabFile{
		Site:       site,
		RunID:      runID,
		TotalWords: len(entries),
		Vocab:      entries,
	}
}
