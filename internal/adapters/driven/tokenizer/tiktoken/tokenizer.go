// Package tiktoken provides a BPE tokenizer backed by tiktoken-go.
// The default encoding, r50k_base, matches the GPT-3 encoder that the
// chunk budgets were tuned against.
package tiktoken

import (
	"fmt"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"

	"github.com/custodia-labs/essaycorpus/internal/core/ports/driven"
)

// Ensure Tokenizer implements the interface.
var _ driven.Tokenizer = (*Tokenizer)(nil)

// DefaultEncoding is the GPT-3 byte pair encoding.
const DefaultEncoding = "r50k_base"

var loaderOnce sync.Once

// Tokenizer counts tokens with a tiktoken encoding.
type Tokenizer struct {
	enc  *tiktoken.Tiktoken
	name string
}

// New loads the named encoding from the embedded BPE tables.
// An empty name selects DefaultEncoding.
func New(encoding string) (*Tokenizer, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	// Embedded tables avoid a network download on first use.
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("tiktoken: load encoding %s: %w", encoding, err)
	}

	return &Tokenizer{enc: enc, name: encoding}, nil
}

// Encode returns the token identifiers for text.
// Special-token text is encoded as ordinary text.
func (t *Tokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

// Name returns the encoding name.
func (t *Tokenizer) Name() string {
	return t.name
}
