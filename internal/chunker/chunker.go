package chunker

import (
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"pdfchat/internal/models"
)

const (
	DefaultChunkSize    = 1000 // characters
	DefaultChunkOverlap = 200  // characters
)

// Chunker splits cleaned document text into overlapping chunks, preferring
// paragraph, then line, then word boundaries before hard character cuts.
type Chunker struct {
	splitter textsplitter.RecursiveCharacter
}

func New(chunkSize, chunkOverlap int) Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 2
	}
	return Chunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
	}
}

// Split produces the ordered chunk sequence for text. Empty text yields no
// chunks; text within the size budget yields exactly one chunk equal to it.
func (c Chunker) Split(text string) ([]models.Chunk, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	parts, err := c.splitter.SplitText(text)
	if err != nil {
		return nil, err
	}

	chunks := make([]models.Chunk, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		chunks = append(chunks, models.Chunk{
			Content: part,
			ChunkID: len(chunks) + 1,
		})
	}
	return chunks, nil
}
