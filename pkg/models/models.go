package models

// CrawlTask is one URL waiting in the frontier, together with the depth at
// which it was discovered. Created when a link is admitted, consumed when
// popped.
type CrawlTask struct {
	URL   string
	Depth int
}

// PageRecord is the normalized output unit written to the pages sink, one
// JSON line per successfully fetched and extracted page.
//
// Field order is load-bearing: downstream tooling consumes these files
// positionally by key, so the struct order (and therefore the JSON key
// order) must stay exactly url, fetch_timestamp, title, extracted_text,
// outbound_links, domain.
type PageRecord struct {
	URL            string   `json:"url"`
	FetchTimestamp string   `json:"fetch_timestamp"` // RFC 3339
	Title          string   `json:"title"`
	ExtractedText  string   `json:"extracted_text"`
	OutboundLinks  []string `json:"outbound_links"`
	Domain         string   `json:"domain"`
}

// PageMeta carries secondary fields pulled from meta tags. Not part of the
// PageRecord line (its shape is fixed); surfaced in logs and available to
// forum handling.
type PageMeta struct {
	Author      string
	Date        string
	Description string
}

// ForumPost is a single post extracted from a forum thread page.
type ForumPost struct {
	Source    string `json:"source"`
	ThreadURL string `json:"thread_url"`
	PostID    string `json:"post_id"`
	Author    string `json:"author,omitempty"`
	Datetime  string `json:"datetime,omitempty"`
	Text      string `json:"text"`
}

// Card is an English/Arabic/romanized flashcard triplet found on a page.
type Card struct {
	Source  string `json:"source"`
	URL     string `json:"url"`
	English string `json:"english"`
	Arabic  string `json:"arabic"`
	Roman   string `json:"roman"`
}

// VocabEntry is one word in the vocabulary export, with its frequency and
// up to a few example sentences.
type VocabEntry struct {
	Word     string   `json:"word"`
	Count    int      `json:"count"`
	Script   string   `json:"script"` // "arabic" or "roman"
	Examples []string `json:"examples"`
}

// VocabFile is the vocabulary JSON written once at session close.
type VocabFile struct {
	Site       string       `json:"site"`
	RunID      string       `json:"run_id"`
	TotalWords int          `json:"total_words"`
	Vocab      []VocabEntry `json:"vocab"`
}
