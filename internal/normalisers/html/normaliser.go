package html

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
	"github.com/custodia-labs/essaycorpus/internal/core/ports/driven"
	"github.com/custodia-labs/essaycorpus/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Extractor = (*Normaliser)(nil)

// Fixed page layout of the essay site: the essay body is the second table
// of an essay page, and the essay links live in the third table of the index.
const (
	essayTableIndex = 1
	linkTableIndex  = 2
)

const (
	// LinkSuffix is the extension an index link must carry to be an essay.
	LinkSuffix = ".html"

	sentenceDelimiter = ". "
	thanksMarker      = "Thanks to"
)

// Pre-compiled regular expressions for text cleanup.
var (
	// JavaScript-style \s: ASCII whitespace plus Unicode separators and BOM.
	whitespaceRun = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]+`)
	joinedPeriod  = regexp.MustCompile(`\.([a-zA-Z])`)
	monthYear     = regexp.MustCompile(`[A-Z][a-z]+ [0-9]{4}`)
)

// Normaliser extracts essays from the essay site's HTML pages.
type Normaliser struct {
	tokenizer driven.Tokenizer
}

// New creates a new HTML normaliser that counts tokens with tok.
func New(tok driven.Tokenizer) *Normaliser {
	return &Normaliser{tokenizer: tok}
}

// Extract converts one essay page into an essay with empty chunks.
// Missing structure (no table, no date, no thanks) yields empty fields.
func (n *Normaliser) Extract(rawHTML, title, sourceURL string) domain.Essay {
	text := ""
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		logger.Debug("%v: unparseable page %s: %v", domain.ErrExtractionAnomaly, sourceURL, err)
	} else {
		tables := doc.Find("table")
		if tables.Length() > essayTableIndex {
			text = tables.Eq(essayTableIndex).Text()
		} else {
			logger.Debug("%v: %s has %d tables", domain.ErrExtractionAnomaly, sourceURL, tables.Length())
		}
	}

	text = normalizeText(text)

	date, text := extractDate(text)
	if date == "" {
		logger.Debug("%v: no date in %s", domain.ErrExtractionAnomaly, sourceURL)
	}
	thanks, text := extractThanks(text)

	return domain.Essay{
		Title:   title,
		URL:     sourceURL,
		Date:    date,
		Thanks:  thanks,
		Content: text,
		Length:  domain.CharCount(text),
		Tokens:  driven.CountTokens(n.tokenizer, text),
		Chunks:  []domain.Chunk{},
	}
}

// DiscoverLinks returns the .html links of the index page's third table,
// resolved against baseURL. Repeated URLs keep their first position.
func (n *Normaliser) DiscoverLinks(rawHTML, baseURL string) ([]domain.Link, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parse index page: %w", err)
	}

	links := []domain.Link{}
	seen := make(map[string]bool)

	doc.Find("table").Eq(linkTableIndex).Find("a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || !strings.HasSuffix(href, LinkSuffix) {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref).String()
		if seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, domain.Link{
			Title: strings.TrimSpace(s.Text()),
			URL:   resolved,
		})
	})

	return links, nil
}

// normalizeText collapses whitespace and re-separates sentences that lost
// their space when markup was stripped ("end.Next" becomes "end. Next").
func normalizeText(text string) string {
	text = strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	return joinedPeriod.ReplaceAllString(text, ". $1")
}

// extractDate finds the first "Month Year" string and removes its first
// occurrence. Without a match the text is returned untouched.
func extractDate(text string) (string, string) {
	date := monthYear.FindString(text)
	if date == "" {
		return "", text
	}
	return date, strings.TrimSpace(strings.Replace(text, date, "", 1))
}

// extractThanks pulls a trailing "Thanks to ..." attribution out of text.
// Only the last ". "-delimited fragment is inspected.
func extractThanks(text string) (string, string) {
	var fragments []string
	for _, f := range strings.Split(text, sentenceDelimiter) {
		if f != "" {
			fragments = append(fragments, f)
		}
	}
	if len(fragments) == 0 {
		return "", text
	}

	last := fragments[len(fragments)-1]
	idx := strings.Index(last, thanksMarker)
	if idx < 0 {
		return "", text
	}

	rest := last[idx+len(thanksMarker):]
	if next := strings.Index(rest, thanksMarker); next >= 0 {
		rest = rest[:next]
	}
	rest = strings.TrimRight(strings.TrimSpace(rest), ".")

	thanks := thanksMarker + " " + rest + "."
	return thanks, strings.TrimSpace(strings.Replace(text, thanks, "", 1))
}
