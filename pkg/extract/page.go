// Package extract turns fetched HTML into structured records: page text
// with outbound links, and forum posts for thread pages.
package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"tunai-collect/pkg/models"
	"tunai-collect/pkg/text"
	"tunai-collect/pkg/utils"
)

// Elements removed before any text extraction. Chrome, scripts, and form
// noise would otherwise pollute the corpus.
const strippedElements = "script, style, nav, footer, noscript, svg, form, iframe"

// Elements whose text forms the extracted page body.
const contentElements = "h1, h2, h3, p, li, blockquote"

// Page is the extraction result for one fetched page.
type Page struct {
	Title string
	Text  string
	Links []string // absolute outbound URLs, document order, deduplicated
	Meta  models.PageMeta
}

// ExtractPage parses the HTML body and pulls title, readable text, and
// outbound links. Link resolution is relative to finalURL so redirected
// pages resolve correctly. Returns ErrMalformed when the document yields
// no title, no text, and no links.
func ExtractPage(body []byte, finalURL *url.URL, log *logrus.Entry) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing HTML from '%s': %w", utils.ErrMalformed, finalURL.String(), err)
	}

	// Links come from the full document before stripping; navigation areas
	// hold most of a forum's internal links.
	links := extractLinks(doc, finalURL, log)

	doc.Find(strippedElements).Remove()

	page := &Page{
		Title: text.CollapseWhitespace(doc.Find("title").First().Text()),
		Text:  extractText(doc),
		Links: links,
		Meta:  extractMeta(doc),
	}

	if page.Title == "" && page.Text == "" && len(page.Links) == 0 {
		return nil, fmt.Errorf("%w: no parseable content at '%s'", utils.ErrMalformed, finalURL.String())
	}
	return page, nil
}

// extractText collects the content elements inside the page's main
// container. Prefers article, then main, then the whole body.
func extractText(doc *goquery.Document) string {
	container := doc.Find("article").First()
	if container.Length() == 0 {
		container = doc.Find("main").First()
	}
	if container.Length() == 0 {
		container = doc.Find("body").First()
	}
	if container.Length() == 0 {
		return ""
	}

	var parts []string
	container.Find(contentElements).Each(func(_ int, el *goquery.Selection) {
		// Nested matches (p inside li) would duplicate text; keep only
		// elements with no matching ancestor inside the container.
		if el.ParentsUntilSelection(container).Filter(contentElements).Length() > 0 {
			return
		}
		if t := text.CollapseWhitespace(el.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, "\n")
}

func extractLinks(doc *goquery.Document, finalURL *url.URL, log *logrus.Entry) []string {
	seen := make(map[string]struct{})
	var links []string

	doc.Find("a[href]").Each(func(_ int, el *goquery.Selection) {
		href, exists := el.Attr("href")
		if !exists || href == "" {
			return
		}
		linkURL, err := finalURL.Parse(href)
		if err != nil {
			log.Debugf("Skipping invalid link href '%s': %v", href, err)
			return
		}
		if linkURL.Scheme != "http" && linkURL.Scheme != "https" {
			return
		}
		linkURL.Fragment = ""
		absolute := linkURL.String()
		if _, found := seen[absolute]; found {
			return
		}
		seen[absolute] = struct{}{}
		links = append(links, absolute)
	})
	return links
}

func extractMeta(doc *goquery.Document) models.PageMeta {
	meta := models.PageMeta{}

	if author, ok := doc.Find(`meta[name="author"]`).First().Attr("content"); ok {
		meta.Author = strings.TrimSpace(author)
	}
	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		meta.Description = strings.TrimSpace(desc)
	} else if og, ok := doc.Find(`meta[property="og:description"]`).First().Attr("content"); ok {
		meta.Description = strings.TrimSpace(og)
	}
	if published, ok := doc.Find(`meta[property="article:published_time"]`).First().Attr("content"); ok {
		meta.Date = strings.TrimSpace(published)
	} else if dt, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		meta.Date = strings.TrimSpace(dt)
	}
	return meta
}
