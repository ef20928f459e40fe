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

// XenForo-style selectors. tunisia-sat and most Arabic-speaking Tunisian
// forums run XenForo, where each post is an article.message with the
// body in div.bbWrapper.
const (
	postSelector     = "article.message"
	postBodySelector = "div.bbWrapper"
)

// ExtractForumPosts pulls individual posts from a thread page. Posts
// shorter than minLength runes after whitespace collapsing are dropped
// as noise (signatures, "+1" replies). Returns ErrMalformed only when
// the HTML itself cannot be parsed; a thread page with no recognizable
// posts yields an empty slice.
func ExtractForumPosts(body []byte, threadURL *url.URL, source string, minLength int, log *logrus.Entry) ([]models.ForumPost, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing thread HTML from '%s': %w", utils.ErrMalformed, threadURL.String(), err)
	}

	var posts []models.ForumPost
	doc.Find(postSelector).Each(func(i int, msg *goquery.Selection) {
		bodyText := text.CollapseWhitespace(msg.Find(postBodySelector).First().Text())
		if len([]rune(bodyText)) < minLength {
			return
		}

		posts = append(posts, models.ForumPost{
			Source:    source,
			ThreadURL: threadURL.String(),
			PostID:    postID(msg, i),
			Author:    postAuthor(msg),
			Datetime:  postDatetime(msg),
			Text:      bodyText,
		})
	})

	log.WithFields(logrus.Fields{"thread_url": threadURL.String(), "posts": len(posts)}).
		Debug("Extracted forum posts")
	return posts, nil
}

// postID prefers the element's own id attribute, then the data-content
// anchor XenForo puts on the message wrapper. Falls back to the position
// on the page so every post keyed by thread URL stays addressable.
func postID(msg *goquery.Selection, index int) string {
	if id, ok := msg.Attr("id"); ok && id != "" {
		return id
	}
	if dc, ok := msg.Attr("data-content"); ok && dc != "" {
		return dc
	}
	return fmt.Sprintf("pos-%d", index+1)
}

func postAuthor(msg *goquery.Selection) string {
	if author, ok := msg.Attr("data-author"); ok && author != "" {
		return strings.TrimSpace(author)
	}
	for _, sel := range []string{".message-name a", "a.username", ".username"} {
		if name := strings.TrimSpace(msg.Find(sel).First().Text()); name != "" {
			return name
		}
	}
	return ""
}

func postDatetime(msg *goquery.Selection) string {
	if dt, ok := msg.Find("time[datetime]").First().Attr("datetime"); ok {
		return strings.TrimSpace(dt)
	}
	return ""
}
