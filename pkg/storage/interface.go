package storage

// VisitedStore tracks which normalized URLs a crawl session has already
// accepted into its frontier. Deduplication happens at offer time, so a
// URL is marked the moment it is enqueued, never when it is popped.
type VisitedStore interface {
	// MarkVisited marks a normalized URL as seen.
	// Returns true if the URL was newly added, false if it already existed.
	MarkVisited(normalizedURL string) (bool, error)

	// Count returns the number of URLs marked so far.
	Count() (int, error)

	// WriteVisitedLog writes all marked URLs to the specified file path,
	// one per line. Ordering is unspecified.
	WriteVisitedLog(filePath string) error

	// Close releases any resources held by the store.
	Close() error
}
