// Package cli provides the essaycorpus command line.
//
// Commands reach adapters and services only through a Provider, which the
// composition root installs with SetProvider before Execute.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/essaycorpus/internal/config"
	"github.com/custodia-labs/essaycorpus/internal/core/ports/driven"
	"github.com/custodia-labs/essaycorpus/internal/core/ports/driving"
	"github.com/custodia-labs/essaycorpus/internal/logger"
)

// Provider builds the services a command needs on first use.
type Provider interface {
	Settings() *config.Settings
	ConfigStore() driven.ConfigStore
	CorpusStore() (driven.CorpusStore, error)
	ChunkStore(ctx context.Context) (driven.ChunkStore, error)
	ScrapeService() (driving.ScrapeService, error)
	EmbedService(ctx context.Context, dryRun bool) (driving.EmbedService, error)
	SearchService(ctx context.Context) (driving.SearchService, error)
}

var errNotConfigured = errors.New("services not configured")

var (
	version  = "dev"
	verbose  bool
	provider Provider
)

var rootCmd = &cobra.Command{
	Use:   "essaycorpus",
	Short: "Build a searchable, embedded corpus from an essay archive",
	Long: `essaycorpus scrapes an essay site into a corpus snapshot of
token-bounded chunks, embeds every chunk into a chunk store, and answers
semantic queries over the stored chunks.

Typical flow:
  essaycorpus scrape           # write ~/.essaycorpus/data/corpus.json
  essaycorpus embed            # embed chunks into the chunk store
  essaycorpus search "how to do great work"`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug output")
}

// SetVersion sets the version reported by "version" and the MCP server.
func SetVersion(v string) {
	version = v
}

// SetProvider installs the service provider used by every command.
func SetProvider(p Provider) {
	provider = p
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func requireProvider() (Provider, error) {
	if provider == nil {
		return nil, errNotConfigured
	}
	return provider, nil
}
