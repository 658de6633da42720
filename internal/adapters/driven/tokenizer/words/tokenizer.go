// Package words provides a whitespace tokenizer.
// It needs no BPE tables, which makes it suitable for offline runs and tests.
package words

import (
	"strings"

	"github.com/custodia-labs/essaycorpus/internal/core/ports/driven"
)

// Ensure Tokenizer implements the interface.
var _ driven.Tokenizer = (*Tokenizer)(nil)

// Name is the encoding name used in configuration.
const Name = "words"

// Tokenizer treats every whitespace-separated field as one token.
type Tokenizer struct{}

// New creates a new whitespace tokenizer.
func New() *Tokenizer {
	return &Tokenizer{}
}

// Encode returns one sequential identifier per field.
func (t *Tokenizer) Encode(text string) []int {
	fields := strings.Fields(text)
	ids := make([]int, len(fields))
	for i := range ids {
		ids[i] = i
	}
	return ids
}

// Name returns the encoding name.
func (t *Tokenizer) Name() string {
	return Name
}
