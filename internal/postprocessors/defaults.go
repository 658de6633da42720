package postprocessors

import (
	"github.com/custodia-labs/essaycorpus/internal/core/ports/driven"
	"github.com/custodia-labs/essaycorpus/internal/postprocessors/chunker"
)

// DefaultOrder is the processor order of the essay pipeline:
// split within the token budget, then merge small chunks.
var DefaultOrder = []string{"chunker", "merger"}

// RegisterDefaults registers all built-in processors with the registry.
// The chunker counts tokens with tok.
func RegisterDefaults(r *Registry, tok driven.Tokenizer) {
	r.Register("chunker", chunkerBuilder(tok))
	r.Register("merger", buildMerger)
}

// chunkerBuilder returns a builder for the chunker processor.
// Supported config keys:
//   - token_budget (int): Maximum tokens per chunk (default: 200)
func chunkerBuilder(tok driven.Tokenizer) BuilderFunc {
	return func(cfg map[string]any) (driven.PostProcessor, error) {
		var opts []chunker.Option
		if budget, ok := getIntFromConfig(cfg, "token_budget"); ok {
			opts = append(opts, chunker.WithTokenBudget(budget))
		}
		return chunker.New(tok, opts...), nil
	}
}

// buildMerger creates a merge processor from generic config.
// Supported config keys:
//   - merge_threshold (int): Chunks below this many tokens are merged (default: 100)
func buildMerger(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.MergeOption
	if threshold, ok := getIntFromConfig(cfg, "merge_threshold"); ok {
		opts = append(opts, chunker.WithThreshold(threshold))
	}
	return chunker.NewMerger(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
// The second result reports whether the key held a number.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
