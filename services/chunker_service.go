package services

import (
	"fmt"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// DefaultChunkSize is the target maximum chunk length in characters.
	DefaultChunkSize = 500
	// DefaultChunkOverlap is how many trailing characters of the previous
	// chunk are repeated at the start of the next one.
	DefaultChunkOverlap = 150
)

// Chunker splits extracted text into an ordered sequence of bounded,
// overlapping chunks using the recursive character strategy: paragraph
// breaks first, then line breaks, then word breaks, then a hard cut.
// Identical input and parameters always produce an identical sequence.
type Chunker struct {
	maxSize  int
	overlap  int
	splitter textsplitter.RecursiveCharacter
}

// NewChunker creates a chunker with the given limits. Non-positive maxSize
// and negative overlap fall back to the defaults.
func NewChunker(maxSize, overlap int) *Chunker {
	if maxSize <= 0 {
		maxSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}
	return &Chunker{
		maxSize: maxSize,
		overlap: overlap,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(maxSize),
			textsplitter.WithChunkOverlap(overlap),
		),
	}
}

// Split returns the chunk sequence for text. Empty text yields zero chunks,
// and text that already fits in one chunk is returned unmodified.
func (c *Chunker) Split(text string) ([]string, error) {
	if text == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(text) <= c.maxSize {
		return []string{text}, nil
	}

	chunks, err := c.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("split text: %w", err)
	}
	return chunks, nil
}
