package models

import (
	"strings"
	"time"
)

// Document is one uploaded file after extraction. Immutable once built.
type Document struct {
	ID    string
	Title string
	Pages int
	Raw   []byte
	Text  string // cleaned full text, page order
}

// Words counts whitespace-separated words in the cleaned text.
func (d *Document) Words() int {
	return len(strings.Fields(d.Text))
}

// Chunk is a bounded substring of the document text, in split order.
type Chunk struct {
	Content string
	ChunkID int
}

// ChunkEmbedding is a chunk plus its vector, ready for indexing.
type ChunkEmbedding struct {
	Content   string
	Embedding []float32
	ChunkID   int
}

// ScoredChunk is a retrieval hit with its similarity to the query.
type ScoredChunk struct {
	Content    string
	ChunkID    int
	Similarity float32
}

// ChatTurn is one transcript entry. The transcript is append-only.
type ChatTurn struct {
	Role      string
	Text      string
	Timestamp time.Time
}

// PromptResponse carries a question, the retrieved context and the answer.
type PromptResponse struct {
	Query   string
	Source  string
	Content string
}
