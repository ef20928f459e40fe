// Package text holds the language-specific helpers shared by the
// collectors: token extraction for Arabic-script and romanized Tunisian
// words, sentence splitting, and flashcard detection.
package text

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"tunai-collect/pkg/models"
)

// Precompiled patterns. The romanization heuristics rely on the digit
// substitutions (2,3,5,6,7,8,9) commonly used when writing Tunisian Arabic
// in Latin script.
var (
	arabicTokenRe   = regexp.MustCompile(`[\x{0600}-\x{06FF}]{2,}`)
	romanTokenRe    = regexp.MustCompile(`[A-Za-z0-9]{3,}`)
	tunisianDigitRe = regexp.MustCompile(`[2395678]`)
	sentenceEndRe   = regexp.MustCompile(`[.!؟?؛]\s+`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
	flashcardRe     = regexp.MustCompile(`Word of the day:\s*(.*?)\s+([\x{0600}-\x{06FF}].*?)\s+([A-Za-z0-9 '\-]+)`)
	romanLineRe     = regexp.MustCompile(`^[A-Za-z0-9 '\-]+$`)
)

// englishStopwords filters common English words out of the romanized
// token stream.
var englishStopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "you": {}, "your": {},
	"with": {}, "this": {}, "that": {}, "have": {}, "has": {}, "from": {},
	"was": {}, "were": {}, "not": {}, "but": {}, "can": {}, "all": {},
	"any": {}, "our": {}, "out": {}, "about": {}, "more": {}, "will": {},
	"just": {}, "over": {}, "into": {}, "how": {}, "what": {}, "when": {},
	"where": {}, "who": {}, "why": {}, "use": {}, "used": {}, "using": {},
}

// tunisianPatterns are substrings that strongly suggest romanized Tunisian.
var tunisianPatterns = []string{
	"barcha", "barsha", "toun", "touns", "tunsi",
	"3lech", "9a", "7keya", "9leb", "kh", "gh",
}

// CollapseWhitespace normalizes all runs of whitespace to single spaces.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// SplitSentences splits text into sentences on Latin and Arabic sentence
// punctuation. The terminating punctuation stays attached to its sentence.
func SplitSentences(text string) []string {
	if text == "" {
		return nil
	}

	var sentences []string
	prev := 0
	for _, loc := range sentenceEndRe.FindAllStringIndex(text, -1) {
		_, size := utf8.DecodeRuneInString(text[loc[0]:])
		end := loc[0] + size
		if s := strings.TrimSpace(text[prev:end]); s != "" {
			sentences = append(sentences, s)
		}
		prev = loc[1]
	}
	if s := strings.TrimSpace(text[prev:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// isRomanTunisianToken reports whether a lowercase token is likely
// romanized Tunisian rather than English or noise.
func isRomanTunisianToken(token string) bool {
	if utf8.RuneCountInString(token) < 3 {
		return false
	}
	if _, stop := englishStopwords[token]; stop {
		return false
	}
	if isAllDigits(token) {
		return false
	}

	if tunisianDigitRe.MatchString(token) {
		return true
	}
	for _, pattern := range tunisianPatterns {
		if strings.Contains(token, pattern) {
			return true
		}
	}
	return false
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ExtractTokens pulls Arabic-script tokens and romanized Tunisian tokens
// out of free text.
func ExtractTokens(text string) (arabic, romanized []string) {
	if text == "" {
		return nil, nil
	}

	arabic = arabicTokenRe.FindAllString(text, -1)

	for _, token := range romanTokenRe.FindAllString(strings.ToLower(text), -1) {
		if isRomanTunisianToken(token) {
			romanized = append(romanized, token)
		}
	}
	return arabic, romanized
}

// ExtractCards finds English/Arabic/romanized flashcard triplets in page
// text: three consecutive lines forming a triplet, plus explicit
// "Word of the day:" announcements.
func ExtractCards(text, pageURL, source string) []models.Card {
	var cards []models.Card

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	for i := 0; i+2 < len(lines); i++ {
		en, ar, ro := lines[i], lines[i+1], lines[i+2]
		if isValidCardTriplet(en, ar, ro) {
			cards = append(cards, models.Card{
				Source:  source,
				URL:     pageURL,
				English: en,
				Arabic:  ar,
				Roman:   ro,
			})
		}
	}

	if match := flashcardRe.FindStringSubmatch(text); match != nil {
		en, ar, ro := strings.TrimSpace(match[1]), strings.TrimSpace(match[2]), strings.TrimSpace(match[3])
		if tunisianDigitRe.MatchString(ro) {
			cards = append(cards, models.Card{
				Source:  source,
				URL:     pageURL,
				English: en,
				Arabic:  ar,
				Roman:   ro,
			})
		}
	}

	return cards
}

// isValidCardTriplet checks that three consecutive lines look like an
// English gloss, an Arabic-script form, and a romanized form with at least
// one Tunisian digit substitution.
func isValidCardTriplet(en, ar, ro string) bool {
	return len(en) >= 5 &&
		utf8.RuneCountInString(ar) >= 2 &&
		arabicTokenRe.MatchString(ar) &&
		romanLineRe.MatchString(ro) &&
		tunisianDigitRe.MatchString(ro)
}
