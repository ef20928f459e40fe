// Package frontier holds the FIFO queue of URLs waiting to be crawled.
// Deduplication happens at offer time against the session's visited
// store, so a URL can enter the queue at most once per run.
package frontier

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"tunai-collect/pkg/models"
	"tunai-collect/pkg/parse"
	"tunai-collect/pkg/storage"
	"tunai-collect/pkg/utils"
)

// Frontier is a breadth-first work queue owned by one crawl session.
// Not safe for concurrent use.
type Frontier struct {
	queue   []models.CrawlTask
	visited storage.VisitedStore
	log     *logrus.Entry
}

// New creates an empty Frontier deduplicating against the given store.
func New(visited storage.VisitedStore, log *logrus.Entry) *Frontier {
	return &Frontier{
		visited: visited,
		log:     log,
	}
}

// Offer normalizes the URL and enqueues it unless it was already seen
// this run. Returns true if the URL was accepted. Unparseable URLs are
// rejected with an error.
func (f *Frontier) Offer(rawURL string, depth int) (bool, error) {
	normalized, _, err := parse.ParseAndNormalize(rawURL)
	if err != nil {
		return false, fmt.Errorf("%w: offering '%s': %w", utils.ErrParsing, rawURL, err)
	}

	added, err := f.visited.MarkVisited(normalized)
	if err != nil {
		return false, err
	}
	if !added {
		f.log.Debugf("Skipping already-seen URL '%s'", normalized)
		return false, nil
	}

	f.queue = append(f.queue, models.CrawlTask{URL: normalized, Depth: depth})
	return true, nil
}

// Next pops the oldest task. The second return is false when the queue
// is empty.
func (f *Frontier) Next() (models.CrawlTask, bool) {
	if len(f.queue) == 0 {
		return models.CrawlTask{}, false
	}
	task := f.queue[0]
	f.queue = f.queue[1:]
	return task, true
}

// Len returns the number of queued tasks.
func (f *Frontier) Len() int {
	return len(f.queue)
}
