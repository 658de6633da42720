package driven

// Tokenizer splits text into model tokens.
// Only the length of the returned sequence is used for budgeting.
type Tokenizer interface {
	// Encode returns the token identifiers for text, in order.
	Encode(text string) []int

	// Name returns the encoding name (e.g. "r50k_base").
	Name() string
}

// CountTokens returns the number of tokens t produces for text.
func CountTokens(t Tokenizer, text string) int {
	return len(t.Encode(text))
}
