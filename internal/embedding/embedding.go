package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"pdfchat/internal/config"
	"pdfchat/internal/models"
)

// EmbeddingError means the embedding service failed. Indexing must be
// retried from scratch; no partial result accompanies it.
type EmbeddingError struct {
	ChunkID int
	Err     error
}

func (e *EmbeddingError) Error() string {
	if e.ChunkID > 0 {
		return fmt.Sprintf("embed chunk %d: %v", e.ChunkID, e.Err)
	}
	return fmt.Sprintf("embed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// NewEmbedder builds a langchaingo embedder from config. OpenAI-compatible
// endpoints and Ollama are supported.
func NewEmbedder(cfg *config.LLMConfig) (embeddings.Embedder, error) {
	switch cfg.Provider {
	case "ollama":
		llm, err := ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, err
		}
		return embeddings.NewEmbedder(llm)
	default:
		opts := []openai.Option{
			openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
			openai.WithModel(cfg.Model),
			openai.WithEmbeddingModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, err
		}
		return embeddings.NewEmbedder(llm)
	}
}

// EmbedChunks embeds every chunk in order. Any failure aborts the whole
// batch so a half-built index can never reach the retriever.
func EmbedChunks(ctx context.Context, embedder embeddings.Embedder, chunks []models.Chunk) ([]models.ChunkEmbedding, error) {
	if len(chunks) == 0 {
		log.Info().Msg("no chunks to embed")
		return nil, nil
	}

	chunkEmbeddings := make([]models.ChunkEmbedding, 0, len(chunks))
	for _, chunk := range chunks {
		vector, err := embedder.EmbedQuery(ctx, chunk.Content)
		if err != nil {
			return nil, &EmbeddingError{ChunkID: chunk.ChunkID, Err: err}
		}
		chunkEmbeddings = append(chunkEmbeddings, models.ChunkEmbedding{
			Content:   chunk.Content,
			Embedding: vector,
			ChunkID:   chunk.ChunkID,
		})
	}
	return chunkEmbeddings, nil
}
