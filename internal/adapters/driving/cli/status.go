package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the corpus snapshot and chunk store state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	p, err := requireProvider()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	corpusStore, err := p.CorpusStore()
	if err != nil {
		return err
	}

	cmd.Println("[Corpus]")
	cmd.Printf("  Path: %s\n", corpusStore.Path())
	corpus, quarantined, err := corpusStore.Load(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		cmd.Println("  Not scraped yet. Run 'essaycorpus scrape'.")
	case err != nil:
		cmd.Printf("  Unreadable: %v\n", err)
	default:
		cmd.Printf("  Scraped: %s\n", corpus.CurrentDate)
		cmd.Printf("  Essays: %d\n", len(corpus.Essays))
		cmd.Printf("  Chunks: %d\n", corpus.ChunkCount())
		cmd.Printf("  Tokens: %d\n", corpus.Tokens)
		if len(quarantined) > 0 {
			cmd.Printf("  Malformed records: %d\n", len(quarantined))
		}
	}
	cmd.Println()

	cmd.Println("[Chunk Store]")
	cmd.Printf("  Backend: %s\n", p.Settings().Store.Backend)
	store, err := p.ChunkStore(ctx)
	if err != nil {
		cmd.Printf("  Unavailable: %v\n", err)
		return nil
	}
	n, err := store.Count(ctx)
	if err != nil {
		cmd.Printf("  Unavailable: %v\n", err)
		return nil
	}
	cmd.Printf("  Stored chunks: %d\n", n)
	return nil
}
