package domain

import "unicode/utf8"

// Essay is one scraped article with its canonical text and chunks.
type Essay struct {
	// Title is the display string taken from the index page link text.
	Title string `json:"title"`

	// URL is the absolute resolved URL of the essay page.
	URL string `json:"url"`

	// Date is a "Month Year" string found in the page text, or empty.
	Date string `json:"date"`

	// Thanks is the attribution sentence removed from the end of the content.
	Thanks string `json:"thanks"`

	// Content is the canonical plain-text body without date and thanks.
	Content string `json:"content"`

	// Length is the character count of Content.
	Length int `json:"length"`

	// Tokens is the token count of Content.
	Tokens int `json:"tokens"`

	// Chunks are in document order and are built once per essay.
	Chunks []Chunk `json:"chunks"`
}

// Chunk is one unit of essay text eligible for embedding.
// It carries a copy of the parent essay metadata so it can be stored on its own.
type Chunk struct {
	EssayTitle  string `json:"essay_title"`
	EssayURL    string `json:"essay_url"`
	EssayDate   string `json:"essay_date"`
	EssayThanks string `json:"essay_thanks"`

	// Content is a slice of the essay content, or adjacent slices joined by merging.
	Content string `json:"content"`

	// ContentLength is the character count of Content.
	ContentLength int `json:"content_length"`

	// ContentTokens is the token count of Content.
	ContentTokens int `json:"content_tokens"`

	// Embedding is always empty inside the corpus document.
	// The embedding step writes vectors to the chunk store, not back here.
	Embedding []float32 `json:"embedding"`
}

// Corpus is the snapshot produced by one scrape run.
type Corpus struct {
	CurrentDate string  `json:"current_date"`
	Author      string  `json:"author"`
	URL         string  `json:"url"`
	Length      int     `json:"length"`
	Tokens      int     `json:"tokens"`
	Essays      []Essay `json:"essays"`
}

// Link is an essay reference discovered on the index page.
type Link struct {
	Title string
	URL   string
}

// CharCount returns the number of characters in s.
func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}

// NewCorpus assembles a corpus and sums essay lengths and tokens.
func NewCorpus(currentDate, author, url string, essays []Essay) *Corpus {
	c := &Corpus{
		CurrentDate: currentDate,
		Author:      author,
		URL:         url,
		Essays:      essays,
	}
	if c.Essays == nil {
		c.Essays = []Essay{}
	}
	for i := range c.Essays {
		c.Length += c.Essays[i].Length
		c.Tokens += c.Essays[i].Tokens
	}
	return c
}

// ChunkCount returns the total number of chunks across all essays.
func (c *Corpus) ChunkCount() int {
	n := 0
	for i := range c.Essays {
		n += len(c.Essays[i].Chunks)
	}
	return n
}
