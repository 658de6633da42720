package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
)

var chunksJSON bool

var chunksCmd = &cobra.Command{
	Use:   "chunks [essay-url]",
	Short: "List the stored chunks of one essay",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunks,
}

func init() {
	chunksCmd.Flags().BoolVar(&chunksJSON, "json", false, "output chunks as JSON")
	rootCmd.AddCommand(chunksCmd)
}

func runChunks(cmd *cobra.Command, args []string) error {
	p, err := requireProvider()
	if err != nil {
		return err
	}

	svc, err := p.SearchService(cmd.Context())
	if err != nil {
		return err
	}

	records, err := svc.Chunks(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		cmd.Printf("No stored chunks for %s\n", args[0])
		return nil
	}
	if err != nil {
		return fmt.Errorf("listing chunks: %w", err)
	}

	if chunksJSON {
		out := make([]chunkJSON, len(records))
		for i, r := range records {
			out[i] = newChunkJSON(r)
		}
		return printJSON(cmd, out)
	}

	cmd.Printf("%s (%d chunks)\n\n", records[0].EssayTitle, len(records))
	for _, r := range records {
		embedded := "no"
		if len(r.Embedding) > 0 {
			embedded = fmt.Sprintf("%d dims", len(r.Embedding))
		}
		cmd.Printf("  #%d  %d tokens, embedding: %s\n", r.ChunkIndex, r.ContentTokens, embedded)
		cmd.Printf("      %s\n", snippet(r.Content, 160))
	}
	return nil
}
