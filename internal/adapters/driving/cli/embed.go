package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var embedDryRun bool

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Embed every chunk of the corpus into the chunk store",
	Long: `Loads the corpus snapshot and embeds each chunk in order, one request at a
time with a pause between requests (embedding.delay_ms). A chunk that fails
to embed or save is reported and skipped; the run always reaches the end.

With --dry-run the records are kept in memory and discarded, which checks
the snapshot and the API key without touching the configured store.`,
	Args: cobra.NoArgs,
	RunE: runEmbed,
}

func init() {
	embedCmd.Flags().BoolVar(&embedDryRun, "dry-run", false, "embed without persisting")
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, _ []string) error {
	p, err := requireProvider()
	if err != nil {
		return err
	}

	store, err := p.CorpusStore()
	if err != nil {
		return err
	}
	corpus, quarantined, err := store.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}
	if len(quarantined) > 0 {
		cmd.Printf("Dropped %d malformed records from %s\n", len(quarantined), store.Path())
	}

	svc, err := p.EmbedService(cmd.Context(), embedDryRun)
	if err != nil {
		return err
	}

	report, err := svc.Load(cmd.Context(), corpus)
	if err != nil {
		return fmt.Errorf("embed failed: %w", err)
	}

	cmd.Printf("Saved %d of %d chunks\n", report.Saved, corpus.ChunkCount())
	if report.Skipped > 0 {
		cmd.Printf("  skipped (empty content): %d\n", report.Skipped)
	}
	if report.EmbedFailures > 0 {
		cmd.Printf("  embedding failures: %d\n", report.EmbedFailures)
	}
	if report.StoreFailures > 0 {
		cmd.Printf("  store failures: %d\n", report.StoreFailures)
	}
	if embedDryRun {
		cmd.Println("Dry run: nothing was persisted.")
	}

	if failed := report.EmbedFailures + report.StoreFailures; failed > 0 {
		return fmt.Errorf("%d chunks were not stored", failed)
	}
	return nil
}
