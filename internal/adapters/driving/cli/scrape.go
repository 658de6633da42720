package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	scrapeOutput     string
	scrapeSkipFailed bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape every essay into the corpus snapshot",
	Long: `Fetches the essay index, then each essay in index order. Every essay is
cleaned, stripped of its date and acknowledgements, and split into chunks
that fit the token budget. The whole corpus is written as one JSON snapshot.

By default the first failed fetch aborts the run and nothing is written.
Use --skip-failed to leave failing essays out instead.`,
	Args: cobra.NoArgs,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().StringVarP(&scrapeOutput, "output", "o", "", "snapshot path (default from corpus.path)")
	scrapeCmd.Flags().BoolVar(&scrapeSkipFailed, "skip-failed", false, "skip essays that fail to fetch")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, _ []string) error {
	p, err := requireProvider()
	if err != nil {
		return err
	}

	settings := p.Settings()
	if scrapeOutput != "" {
		settings.Corpus.Path = scrapeOutput
	}
	if scrapeSkipFailed {
		settings.Scrape.SkipFailed = true
	}

	svc, err := p.ScrapeService()
	if err != nil {
		return err
	}
	store, err := p.CorpusStore()
	if err != nil {
		return err
	}

	corpus, err := svc.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	if err := store.Save(cmd.Context(), corpus); err != nil {
		return fmt.Errorf("saving corpus: %w", err)
	}

	cmd.Printf("Scraped %d essays (%d chunks, %d tokens)\n", len(corpus.Essays), corpus.ChunkCount(), corpus.Tokens)
	if skipped := svc.Skipped(); len(skipped) > 0 {
		cmd.Printf("Skipped %d essays:\n", len(skipped))
		for _, link := range skipped {
			cmd.Printf("  %s (%s)\n", link.Title, link.URL)
		}
	}
	cmd.Printf("Wrote %s\n", store.Path())
	return nil
}
