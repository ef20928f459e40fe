// Package crawler runs one bounded, single-threaded collection session
// per site: seeds in, page budget enforced, records out.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tunai-collect/pkg/config"
	"tunai-collect/pkg/extract"
	"tunai-collect/pkg/fetch"
	"tunai-collect/pkg/frontier"
	"tunai-collect/pkg/models"
	"tunai-collect/pkg/scope"
	"tunai-collect/pkg/sink"
	"tunai-collect/pkg/storage"
	"tunai-collect/pkg/text"
	"tunai-collect/pkg/utils"
	"tunai-collect/pkg/vocab"
)

// How often the loop reports progress, in processed pages.
const progressInterval = 10

// Summary reports what one finished session produced.
type Summary struct {
	SiteKey        string
	RunID          string
	PagesProcessed int // fetch attempts counted against the budget
	PagesWritten   int
	PostsWritten   int
	CardsWritten   int
	WordCount      int
	Errors         map[string]int // error category -> count
}

// Session owns every component of one site's crawl: frontier, visited
// store, fetcher, robots gate, domain filter, sink, and vocabulary
// tracker. The crawl loop is strictly sequential; concurrency in this
// program lives one level up, across sites.
type Session struct {
	siteKey string
	siteCfg config.SiteConfig
	runID   string
	state   models.SessionState

	maxPages   int
	userAgent  string
	delay      time.Duration
	threadHint string
	minPostLen int

	fetcher  *fetch.Fetcher
	limiter  *fetch.RateLimiter
	robots   *fetch.RobotsGate
	filter   *scope.DomainFilter
	visited  storage.VisitedStore
	frontier *frontier.Frontier
	sink     *sink.SiteSink
	vocab    *vocab.Tracker

	errors map[string]int
	log    *logrus.Entry
}

// NewSession wires up all components for one site. The HTTP client and
// rate limiter are shared across sessions; everything else is owned by
// this session. Sink or state store failure here is fatal.
func NewSession(
	ctx context.Context,
	siteKey string,
	siteCfg config.SiteConfig,
	appCfg *config.AppConfig,
	client *http.Client,
	limiter *fetch.RateLimiter,
	resume bool,
	logger *logrus.Logger,
) (*Session, error) {
	runID := uuid.New().String()
	entry := logger.WithFields(logrus.Fields{"site": siteKey, "run_id": runID})

	var visited storage.VisitedStore
	if appCfg.StateDir != "" {
		store, err := storage.NewBadgerStore(ctx, appCfg.StateDir, siteKey, resume, entry)
		if err != nil {
			return nil, err
		}
		visited = store
	} else {
		visited = storage.NewMemoryStore()
	}

	siteSink, err := sink.NewSiteSink(appCfg.OutputBaseDir, siteKey, siteCfg.Forum, siteCfg.ExtractCards, entry)
	if err != nil {
		visited.Close()
		return nil, err
	}

	userAgent := config.EffectiveUserAgent(siteCfg, *appCfg)

	return &Session{
		siteKey:    siteKey,
		siteCfg:    siteCfg,
		runID:      runID,
		state:      models.SessionIdle,
		maxPages:   config.EffectiveMaxPages(siteCfg, *appCfg),
		userAgent:  userAgent,
		delay:      config.EffectiveDelayPerHost(siteCfg, *appCfg),
		threadHint: config.EffectiveThreadPathHint(siteCfg),
		minPostLen: config.EffectiveMinPostLength(siteCfg),
		fetcher:    fetch.NewFetcher(client, userAgent, entry),
		limiter:    limiter,
		robots:     fetch.NewRobotsGate(client, userAgent, entry),
		filter:     scope.NewDomainFilter(siteCfg.AllowedDomains, siteCfg.SkipPathPrefixes, entry),
		visited:    visited,
		frontier:   frontier.New(visited, entry),
		sink:       siteSink,
		vocab:      vocab.NewTracker(),
		errors:     make(map[string]int),
		log:        entry,
	}, nil
}

// State returns the session's lifecycle state.
func (s *Session) State() models.SessionState {
	return s.state
}

// RunID returns the unique identifier of this run.
func (s *Session) RunID() string {
	return s.runID
}

// Run executes the crawl loop until the page budget is exhausted, the
// frontier drains, or the context is cancelled. Always closes the
// session's resources; the sink output written so far survives any
// failure mode.
func (s *Session) Run(ctx context.Context) (*Summary, error) {
	s.state = models.SessionRunning
	defer func() { s.state = models.SessionDone }()
	defer s.close()

	s.log.WithFields(logrus.Fields{
		"max_pages": s.maxPages, "seeds": len(s.siteCfg.SeedURLs), "forum": s.siteCfg.Forum,
	}).Info("Session starting")
	startTime := time.Now()

	for _, seed := range s.siteCfg.SeedURLs {
		added, err := s.frontier.Offer(seed, 0)
		if err != nil {
			s.log.Warnf("Skipping seed '%s': %v", seed, err)
			s.countError(err)
			continue
		}
		if !added {
			s.log.Debugf("Seed '%s' duplicates an earlier seed", seed)
		}
	}

	processed := 0
	var fatalErr error

	for processed < s.maxPages {
		if ctx.Err() != nil {
			s.log.Warnf("Session interrupted: %v", ctx.Err())
			fatalErr = ctx.Err()
			break
		}

		task, ok := s.frontier.Next()
		if !ok {
			s.log.Info("Frontier drained before budget exhausted")
			break
		}

		attempted, err := s.processTask(ctx, task)
		if attempted {
			processed++
		}
		if err != nil {
			// Only sink failures propagate; everything else was already
			// counted and logged per URL.
			fatalErr = err
			break
		}

		if attempted && processed%progressInterval == 0 {
			s.log.WithFields(logrus.Fields{
				"processed": processed, "budget": s.maxPages,
				"queued": s.frontier.Len(), "records": s.sink.PageCount(),
			}).Info("Progress")
		}
	}

	summary := &Summary{
		SiteKey:        s.siteKey,
		RunID:          s.runID,
		PagesProcessed: processed,
		PagesWritten:   s.sink.PageCount(),
		PostsWritten:   s.sink.PostCount(),
		CardsWritten:   s.sink.CardCount(),
		WordCount:      s.vocab.Len(),
		Errors:         s.errors,
	}

	s.finalize(summary)

	s.log.WithFields(logrus.Fields{
		"pages_processed": summary.PagesProcessed,
		"pages_written":   summary.PagesWritten,
		"posts_written":   summary.PostsWritten,
		"words":           summary.WordCount,
		"duration":        time.Since(startTime).Round(time.Millisecond),
	}).Info("Session finished")

	return summary, fatalErr
}

// processTask handles one frontier entry. The first return reports
// whether a fetch was attempted (and therefore consumed budget); denied
// URLs cost nothing. The error return is non-nil only for sink failures,
// which abort the session.
func (s *Session) processTask(ctx context.Context, task models.CrawlTask) (bool, error) {
	taskLog := s.log.WithFields(logrus.Fields{"url": task.URL, "depth": task.Depth})

	pageURL, err := url.Parse(task.URL)
	if err != nil {
		taskLog.Warnf("Unparseable frontier URL: %v", err)
		s.countError(fmt.Errorf("%w: %w", utils.ErrParsing, err))
		return false, nil
	}

	if !s.filter.Admit(pageURL) {
		taskLog.Debug("URL out of scope, skipping")
		s.countError(utils.ErrScopeViolation)
		return false, nil
	}

	if !s.robots.Allowed(ctx, pageURL) {
		taskLog.Info("Disallowed by robots.txt, skipping")
		return false, nil
	}

	delay := s.delay
	if robotsDelay := s.robots.CrawlDelay(pageURL); robotsDelay > delay {
		delay = robotsDelay
	}
	s.limiter.ApplyDelay(pageURL.Hostname(), delay)

	res, err := s.fetcher.Fetch(ctx, task.URL)
	s.limiter.UpdateLastRequestTime(pageURL.Hostname())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return false, nil // loop sees ctx.Err() next iteration
		}
		taskLog.WithField("error_category", utils.CategorizeError(err)).
			Warnf("Fetch failed: %v", err)
		s.countError(err)
		return true, nil
	}

	if !res.IsHTML() {
		taskLog.Debugf("Skipping non-HTML content type '%s'", res.ContentType)
		return true, nil
	}

	page, err := extract.ExtractPage(res.Body, res.FinalURL, taskLog)
	if err != nil {
		taskLog.WithField("error_category", utils.CategorizeError(err)).
			Warnf("Extraction failed: %v", err)
		s.countError(err)
		return true, nil
	}

	record := models.PageRecord{
		URL:            task.URL,
		FetchTimestamp: time.Now().UTC().Format(time.RFC3339),
		Title:          page.Title,
		ExtractedText:  page.Text,
		OutboundLinks:  page.Links,
		Domain:         scope.RegistrableDomain(res.FinalURL.Hostname()),
	}
	if record.OutboundLinks == nil {
		record.OutboundLinks = []string{}
	}
	if err := s.sink.WritePage(record); err != nil {
		taskLog.Errorf("Sink write failed, aborting session: %v", err)
		s.countError(err)
		return true, err
	}

	s.vocab.Update(page.Text)

	if s.siteCfg.Forum && strings.Contains(res.FinalURL.Path, s.threadHint) {
		if err := s.handleThreadPage(res, taskLog); err != nil {
			return true, err
		}
	}

	if s.siteCfg.ExtractCards {
		cards := text.ExtractCards(page.Text, task.URL, s.siteKey)
		if err := s.sink.WriteCards(cards); err != nil {
			taskLog.Errorf("Sink write failed, aborting session: %v", err)
			s.countError(err)
			return true, err
		}
	}

	s.offerLinks(page.Links, task.Depth, taskLog)
	return true, nil
}

func (s *Session) handleThreadPage(res *fetch.Result, taskLog *logrus.Entry) error {
	posts, err := extract.ExtractForumPosts(res.Body, res.FinalURL, s.siteKey, s.minPostLen, taskLog)
	if err != nil {
		taskLog.Warnf("Thread extraction failed: %v", err)
		s.countError(err)
		return nil
	}
	if err := s.sink.WritePosts(posts); err != nil {
		taskLog.Errorf("Sink write failed, aborting session: %v", err)
		s.countError(err)
		return err
	}
	for _, post := range posts {
		s.vocab.Update(post.Text)
	}
	return nil
}

// offerLinks filters discovered links and feeds survivors to the
// frontier at depth+1.
func (s *Session) offerLinks(links []string, currentDepth int, taskLog *logrus.Entry) {
	nextDepth := currentDepth + 1
	if s.siteCfg.MaxDepth > 0 && nextDepth > s.siteCfg.MaxDepth {
		taskLog.Debugf("Max depth (%d) reached, not following links", s.siteCfg.MaxDepth)
		return
	}

	queued := 0
	for _, link := range links {
		linkURL, err := url.Parse(link)
		if err != nil {
			continue
		}
		if !s.filter.Admit(linkURL) {
			continue
		}
		added, err := s.frontier.Offer(link, nextDepth)
		if err != nil {
			taskLog.Debugf("Cannot queue link '%s': %v", link, err)
			continue
		}
		if added {
			queued++
		}
	}
	taskLog.Debugf("Queued %d new links at depth %d", queued, nextDepth)
}

// finalize writes the end-of-run artifacts: the vocabulary export and the
// visited URL log. Failures here are logged, not fatal; the JSONL streams
// already hold everything the crawl produced.
func (s *Session) finalize(summary *Summary) {
	vf := s.vocab.Build(s.siteKey, s.runID)
	if err := s.sink.WriteVocab(vf); err != nil {
		s.log.Errorf("Failed to write vocabulary: %v", err)
		s.countError(err)
	}

	visitedLog := filepath.Join(s.sink.Dir(), "visited.log")
	if err := s.visited.WriteVisitedLog(visitedLog); err != nil {
		s.log.Errorf("Failed to write visited log: %v", err)
		s.countError(err)
	}
	summary.Errors = s.errors
}

func (s *Session) countError(err error) {
	s.errors[utils.CategorizeError(err)]++
}

func (s *Session) close() {
	if err := s.sink.Close(); err != nil {
		s.log.Errorf("Error closing sink: %v", err)
	}
	if err := s.visited.Close(); err != nil {
		s.log.Errorf("Error closing visited store: %v", err)
	}
}
