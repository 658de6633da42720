package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/essaycorpus/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change configuration",
	Long:  `View the effective settings and write values to ~/.essaycorpus/config.toml.`,
	RunE:  runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Set a configuration value by its dotted key, for example:

  essaycorpus config set chunker.token_budget 300
  essaycorpus config set store.backend mongo
  essaycorpus config set chunker.processors chunker,merger

Integers and true/false are stored as such; everything else as a string.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Store the embedding API key",
	Long:  `Prompt for the embedding API key without echoing it and store it in the config file.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigSetKey,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetKeyCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	p, err := requireProvider()
	if err != nil {
		return err
	}
	s := p.Settings()

	cmd.Printf("Config file: %s\n\n", p.ConfigStore().Path())

	cmd.Println("[Scrape]")
	cmd.Printf("  Index: %s%s\n", s.Scrape.BaseURL, s.Scrape.IndexPath)
	cmd.Printf("  Author: %s\n", s.Scrape.Author)
	cmd.Printf("  User agent: %s\n", s.Scrape.UserAgent)
	cmd.Printf("  Timeout: %s\n", s.Scrape.Timeout)
	cmd.Printf("  Respect robots.txt: %t\n", s.Scrape.RespectRobots)
	cmd.Printf("  Skip failed essays: %t\n", s.Scrape.SkipFailed)
	cmd.Println()

	cmd.Println("[Chunker]")
	cmd.Printf("  Tokenizer: %s\n", s.Chunker.Tokenizer)
	cmd.Printf("  Token budget: %d\n", s.Chunker.TokenBudget)
	cmd.Printf("  Merge threshold: %d\n", s.Chunker.MergeThreshold)
	cmd.Printf("  Processors: %s\n", strings.Join(s.Chunker.Processors, ", "))
	cmd.Println()

	cmd.Println("[Corpus]")
	cmd.Printf("  Path: %s\n", orDefault(s.Corpus.Path))
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Base URL: %s\n", s.Embedding.BaseURL)
	cmd.Printf("  Model: %s\n", s.Embedding.Model)
	if s.Embedding.IsConfigured() {
		cmd.Printf("  API Key: %s\n", maskAPIKey(s.Embedding.APIKey))
	} else {
		cmd.Printf("  API Key: (not set, or set %s)\n", config.APIKeyEnv)
	}
	cmd.Printf("  Delay: %s\n", s.Embedding.Delay)
	cmd.Println()

	cmd.Println("[Store]")
	cmd.Printf("  Backend: %s\n", s.Store.Backend)
	switch s.Store.Backend {
	case config.BackendSQLite:
		cmd.Printf("  Directory: %s\n", orDefault(s.Store.SQLiteDir))
	case config.BackendMongo:
		cmd.Printf("  URI: %s\n", s.Store.MongoURI)
		cmd.Printf("  Collection: %s.%s\n", s.Store.MongoDatabase, s.Store.MongoCollection)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	p, err := requireProvider()
	if err != nil {
		return err
	}

	key, value := args[0], parseValue(args[0], args[1])
	if err := p.ConfigStore().Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if err := config.Load(p.ConfigStore(), version).Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	}
	cmd.Printf("Set %s = %v\n", key, value)
	return nil
}

func runConfigSetKey(cmd *cobra.Command, _ []string) error {
	p, err := requireProvider()
	if err != nil {
		return err
	}

	cmd.Print("Embedding API key: ")
	key := readPassword(cmd.InOrStdin())
	cmd.Println()
	if key == "" {
		return errors.New("no key entered")
	}

	if err := p.ConfigStore().Set(config.KeyEmbeddingAPIKey, key); err != nil {
		return fmt.Errorf("failed to save api key: %w", err)
	}
	cmd.Printf("Saved API key %s\n", maskAPIKey(key))
	return nil
}

// parseValue converts a command-line value to the type the key expects.
func parseValue(key, raw string) any {
	if key == config.KeyChunkerProcessors {
		var names []string
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		return names
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}

func orDefault(path string) string {
	if path == "" {
		return "(default under ~/.essaycorpus/data)"
	}
	return path
}

// readPassword reads a line without echo when in is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
