package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
	"github.com/custodia-labs/essaycorpus/internal/core/services"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search embedded essay chunks",
	Long: `Embeds the query and returns the stored chunks closest to it by
cosine similarity, best first. Requires an embedding API key.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", services.DefaultSearchLimit, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

// chunkJSON is the JSON shape of a chunk in command output.
type chunkJSON struct {
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Date       string   `json:"date,omitempty"`
	ChunkIndex int      `json:"chunk_index"`
	Content    string   `json:"content"`
	Tokens     int      `json:"tokens"`
	Similarity *float64 `json:"similarity,omitempty"`
}

func newChunkJSON(r domain.ChunkRecord) chunkJSON {
	return chunkJSON{
		Title:      r.EssayTitle,
		URL:        r.EssayURL,
		Date:       r.EssayDate,
		ChunkIndex: r.ChunkIndex,
		Content:    r.Content,
		Tokens:     r.ContentTokens,
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	p, err := requireProvider()
	if err != nil {
		return err
	}

	svc, err := p.SearchService(cmd.Context())
	if err != nil {
		return err
	}

	hits, err := svc.Search(cmd.Context(), args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		out := make([]chunkJSON, len(hits))
		for i, hit := range hits {
			out[i] = newChunkJSON(hit.Record)
			sim := hit.Similarity
			out[i].Similarity = &sim
		}
		return printJSON(cmd, out)
	}

	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i, hit := range hits {
		r := hit.Record
		cmd.Printf("  [%d] %s #%d (%.3f)\n", i+1, r.EssayTitle, r.ChunkIndex, hit.Similarity)
		cmd.Printf("      %s\n", r.EssayURL)
		cmd.Printf("      %s\n", snippet(r.Content, 160))
		cmd.Println()
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// snippet shortens s to at most n runes, cutting at a word boundary.
func snippet(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	cut := string(runes[:n])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}
