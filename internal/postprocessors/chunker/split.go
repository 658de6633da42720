package chunker

import (
	"strings"

	"github.com/custodia-labs/essaycorpus/internal/core/domain"
	"github.com/custodia-labs/essaycorpus/internal/core/ports/driven"
)

const sentenceDelimiter = ". "

// Split partitions the essay content into sentence-bounded chunks of at most
// budget tokens. Content that already fits is returned as one chunk. A single
// sentence longer than the budget becomes its own oversized chunk.
func Split(essay *domain.Essay, tok driven.Tokenizer, budget int) []domain.Chunk {
	if driven.CountTokens(tok, essay.Content) <= budget {
		return []domain.Chunk{newChunk(essay, strings.TrimSpace(essay.Content), tok)}
	}

	var (
		chunks []domain.Chunk
		buf    strings.Builder
	)

	for _, sentence := range strings.Split(essay.Content, sentenceDelimiter) {
		sentenceTokens := driven.CountTokens(tok, sentence)
		bufTokens := driven.CountTokens(tok, buf.String())

		if buf.Len() > 0 && bufTokens+sentenceTokens > budget {
			chunks = append(chunks, newChunk(essay, strings.TrimSpace(buf.String()), tok))
			buf.Reset()
		}

		buf.WriteString(sentence)
		if strings.HasSuffix(sentence, ".") {
			buf.WriteString(" ")
		} else {
			buf.WriteString(sentenceDelimiter)
		}
	}

	if buf.Len() > 0 {
		chunks = append(chunks, newChunk(essay, strings.TrimSpace(buf.String()), tok))
	}

	return chunks
}

// newChunk copies the essay metadata onto a chunk and measures its content.
func newChunk(essay *domain.Essay, content string, tok driven.Tokenizer) domain.Chunk {
	return domain.Chunk{
		EssayTitle:    essay.Title,
		EssayURL:      essay.URL,
		EssayDate:     essay.Date,
		EssayThanks:   essay.Thanks,
		Content:       content,
		ContentLength: domain.CharCount(content),
		ContentTokens: driven.CountTokens(tok, content),
		Embedding:     []float32{},
	}
}
