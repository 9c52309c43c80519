package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"

	"pdfchat/internal/config"
	"pdfchat/internal/models"
)

// FallbackAnswer is the fixed sentence the model is instructed to return
// when the retrieved context does not contain the answer.
const FallbackAnswer = "I don't have that information in the document. Please ask something else!"

const systemInstruction = `You are an expert assistant for answering questions about an uploaded document.
Use ONLY the provided context to answer.
If the answer is not found in the context, reply: "` + FallbackAnswer + `"`

// AnswerError means answering one question failed. The index and prior chat
// history are unaffected; the question may be resubmitted.
type AnswerError struct {
	Stage string
	Err   error
}

func (e *AnswerError) Error() string {
	return fmt.Sprintf("answer (%s): %v", e.Stage, e.Err)
}

func (e *AnswerError) Unwrap() error { return e.Err }

// Retriever finds the nearest chunks to a query embedding. Implemented by
// the in-memory index and the Postgres archive.
type Retriever interface {
	Search(ctx context.Context, queryEmbedding []float32, k int) ([]models.ScoredChunk, error)
}

// RAG answers questions over one document using retrieved chunks as the
// model's only context.
type RAG struct {
	embedder      embeddings.Embedder
	retriever     Retriever
	llm           llms.Model
	topK          int
	minSimilarity float32
}

func NewRAG(embedder embeddings.Embedder, retriever Retriever, llm llms.Model, cfg *config.RAGConfig) *RAG {
	topK := cfg.TopK
	if topK <= 0 {
		topK = 5
	}
	return &RAG{
		embedder:      embedder,
		retriever:     retriever,
		llm:           llm,
		topK:          topK,
		minSimilarity: cfg.MinSimilarity,
	}
}

// Query embeds the question, retrieves the top-k chunks and asks the chat
// model, temperature 0. When min_similarity is configured and no chunk
// reaches it, the fallback sentence is returned without a completion call.
func (r *RAG) Query(ctx context.Context, question string) (*models.PromptResponse, error) {
	queryEmbedding, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, &AnswerError{Stage: "embed question", Err: err}
	}

	results, err := r.retriever.Search(ctx, queryEmbedding, r.topK)
	if err != nil {
		return nil, &AnswerError{Stage: "retrieve", Err: err}
	}

	if r.minSimilarity > 0 && bestSimilarity(results) < r.minSimilarity {
		log.Debug().Float32("best", bestSimilarity(results)).Float32("min", r.minSimilarity).
			Msg("no chunk above similarity threshold, returning fallback")
		return &models.PromptResponse{Query: question, Content: FallbackAnswer}, nil
	}

	var contextText strings.Builder
	var sources []string
	for _, res := range results {
		contextText.WriteString(res.Content)
		contextText.WriteString("\n\n")
		sources = append(sources, fmt.Sprintf("chunk %d (similarity %.3f)", res.ChunkID, res.Similarity))
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemInstruction),
		llms.TextParts(llms.ChatMessageTypeHuman,
			fmt.Sprintf("Context:\n%s\nQuestion:\n%s", contextText.String(), question)),
	}

	resp, err := r.llm.GenerateContent(ctx, messages, llms.WithTemperature(0))
	if err != nil {
		return nil, &AnswerError{Stage: "completion", Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &AnswerError{Stage: "completion", Err: fmt.Errorf("no choices in response")}
	}

	return &models.PromptResponse{
		Query:   question,
		Source:  strings.Join(sources, "\n"),
		Content: resp.Choices[0].Content,
	}, nil
}

func bestSimilarity(results []models.ScoredChunk) float32 {
	var best float32
	for _, res := range results {
		if res.Similarity > best {
			best = res.Similarity
		}
	}
	return best
}
