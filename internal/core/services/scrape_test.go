package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/essaycorpus/internal/adapters/driven/tokenizer/words"
	"github.com/custodia-labs/essaycorpus/internal/core/domain"
	"github.com/custodia-labs/essaycorpus/internal/normalisers/html"
	"github.com/custodia-labs/essaycorpus/internal/postprocessors"
)

const testBase = "https://essays.example.com/"

const testIndex = `<html><body>
<table><tr><td>nav</td></tr></table>
<table><tr><td>header</td></tr></table>
<table>
<tr><td><a href="first.html">First Essay</a></td></tr>
<tr><td><a href="second.html">Second Essay</a></td></tr>
</table>
</body></html>`

func testEssayPage(body string) string {
	return `<html><body><table><tr><td>nav</td></tr></table><table><tr><td>` +
		body + `</td></tr></table></body></html>`
}

func newTestScrapeService(t *testing.T, fetcher *mockFetcher, skipFailed bool) *ScrapeService {
	t.Helper()

	r := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(r, words.New())
	pipeline, err := r.BuildPipeline(postprocessors.DefaultOrder, map[string]any{
		"token_budget":    200,
		"merge_threshold": 100,
	})
	require.NoError(t, err)

	svc := NewScrapeService(fetcher, html.New(words.New()), pipeline, ScrapeOptions{
		BaseURL:    testBase,
		IndexPath:  "articles.html",
		Author:     "Paul Graham",
		SkipFailed: skipFailed,
	})
	svc.SetClock(func() time.Time {
		return time.Date(2026, 10, 14, 23, 30, 0, 0, time.FixedZone("x", -5*3600))
	})
	return svc
}

func TestScrapeService_IndexURL(t *testing.T) {
	svc := NewScrapeService(nil, nil, nil, ScrapeOptions{BaseURL: testBase, IndexPath: "articles.html"})
	u, err := svc.IndexURL()
	require.NoError(t, err)
	assert.Equal(t, "https://essays.example.com/articles.html", u)
}

func TestScrapeService_Run(t *testing.T) {
	fetcher := &mockFetcher{pages: map[string]string{
		testBase + "articles.html": testIndex,
		testBase + "first.html":    testEssayPage("January 2020 Sentence one. Sentence two. Thanks to Jane and John."),
		testBase + "second.html":   testEssayPage("March 2021 Another essay here."),
	}}
	svc := newTestScrapeService(t, fetcher, false)

	corpus, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		testBase + "articles.html",
		testBase + "first.html",
		testBase + "second.html",
	}, fetcher.fetched)

	assert.Equal(t, "2026-10-15", corpus.CurrentDate, "date is taken in UTC")
	assert.Equal(t, "Paul Graham", corpus.Author)
	assert.Equal(t, testBase+"articles.html", corpus.URL)
	require.Len(t, corpus.Essays, 2)

	first := corpus.Essays[0]
	assert.Equal(t, "First Essay", first.Title)
	assert.Equal(t, "January 2020", first.Date)
	assert.Equal(t, "Thanks to Jane and John.", first.Thanks)
	assert.Equal(t, "Sentence one. Sentence two.", first.Content)
	require.Len(t, first.Chunks, 1)
	assert.Equal(t, "Sentence one. Sentence two.", first.Chunks[0].Content)
	assert.Equal(t, "First Essay", first.Chunks[0].EssayTitle)
	assert.Equal(t, "Thanks to Jane and John.", first.Chunks[0].EssayThanks)

	assert.Equal(t, first.Length+corpus.Essays[1].Length, corpus.Length)
	assert.Equal(t, first.Tokens+corpus.Essays[1].Tokens, corpus.Tokens)
	assert.Empty(t, svc.Skipped())
}

func TestScrapeService_Run_AbortsOnFetchFailure(t *testing.T) {
	fetcher := &mockFetcher{pages: map[string]string{
		testBase + "articles.html": testIndex,
		testBase + "second.html":   testEssayPage("March 2021 Text."),
	}}
	svc := newTestScrapeService(t, fetcher, false)

	corpus, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, corpus)
	assert.ErrorIs(t, err, domain.ErrFetch)

	var fe *domain.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, testBase+"first.html", fe.URL)
	assert.Equal(t, 404, fe.StatusCode)

	// The run stops at the first failure.
	assert.NotContains(t, fetcher.fetched, testBase+"second.html")
}

func TestScrapeService_Run_SkipFailed(t *testing.T) {
	fetcher := &mockFetcher{pages: map[string]string{
		testBase + "articles.html": testIndex,
		testBase + "second.html":   testEssayPage("March 2021 Text."),
	}}
	svc := newTestScrapeService(t, fetcher, true)

	corpus, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, corpus.Essays, 1)
	assert.Equal(t, "Second Essay", corpus.Essays[0].Title)
	assert.Equal(t, []domain.Link{{Title: "First Essay", URL: testBase + "first.html"}}, svc.Skipped())
}

func TestScrapeService_Run_IndexFailure(t *testing.T) {
	svc := newTestScrapeService(t, &mockFetcher{}, true)

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetch)
	assert.Contains(t, err.Error(), "fetch index")
}

func TestScrapeService_Run_Cancelled(t *testing.T) {
	fetcher := &mockFetcher{pages: map[string]string{testBase + "articles.html": testIndex}}
	svc := newTestScrapeService(t, fetcher, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestScrapeService_Run_NoEssays(t *testing.T) {
	fetcher := &mockFetcher{pages: map[string]string{testBase + "articles.html": "<html></html>"}}
	svc := newTestScrapeService(t, fetcher, false)

	corpus, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, corpus.Essays)
	assert.Empty(t, corpus.Essays)
}
