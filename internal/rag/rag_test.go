package rag

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"pdfchat/internal/config"
	"pdfchat/internal/models"
)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, s.err
}

func (s *stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []float32{1, 0}, nil
}

type stubRetriever struct {
	chunks []models.ScoredChunk
	gotK   int
	err    error
}

func (s *stubRetriever) Search(ctx context.Context, queryEmbedding []float32, k int) ([]models.ScoredChunk, error) {
	s.gotK = k
	if s.err != nil {
		return nil, s.err
	}
	if k > len(s.chunks) {
		k = len(s.chunks)
	}
	return s.chunks[:k], nil
}

type stubLLM struct {
	response string
	err      error
	calls    int
	messages []llms.MessageContent
}

func (s *stubLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	s.calls++
	s.messages = messages
	if s.err != nil {
		return nil, s.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: s.response}}}, nil
}

func (s *stubLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return s.response, s.err
}

func messageText(t *testing.T, msg llms.MessageContent) string {
	t.Helper()
	require.NotEmpty(t, msg.Parts)
	text, ok := msg.Parts[0].(llms.TextContent)
	require.True(t, ok)
	return text.Text
}

func scoredChunks(n int, similarity float32) []models.ScoredChunk {
	out := make([]models.ScoredChunk, n)
	for i := range out {
		out[i] = models.ScoredChunk{
			Content:    fmt.Sprintf("chunk text %d", i+1),
			ChunkID:    i + 1,
			Similarity: similarity,
		}
	}
	return out
}

func TestQuery_ContextContainsOnlyTopK(t *testing.T) {
	retriever := &stubRetriever{chunks: scoredChunks(7, 0.9)}
	llm := &stubLLM{response: "The answer is 2009."}
	r := NewRAG(&stubEmbedder{}, retriever, llm, &config.RAGConfig{TopK: 5})

	resp, err := r.Query(context.Background(), "When was NIT Uttarakhand established?")
	require.NoError(t, err)
	assert.Contains(t, resp.Content, "2009")
	assert.Equal(t, 5, retriever.gotK)

	require.Len(t, llm.messages, 2)
	system := messageText(t, llm.messages[0])
	human := messageText(t, llm.messages[1])

	assert.Contains(t, system, FallbackAnswer)
	assert.Contains(t, human, "When was NIT Uttarakhand established?")
	for i := 1; i <= 5; i++ {
		assert.Contains(t, human, fmt.Sprintf("chunk text %d", i))
	}
	assert.NotContains(t, human, "chunk text 6")
	assert.NotContains(t, human, "chunk text 7")
}

func TestQuery_FallbackShortCircuit(t *testing.T) {
	retriever := &stubRetriever{chunks: scoredChunks(5, 0.1)}
	llm := &stubLLM{response: "should never be used"}
	r := NewRAG(&stubEmbedder{}, retriever, llm, &config.RAGConfig{TopK: 5, MinSimilarity: 0.5})

	resp, err := r.Query(context.Background(), "What is the capital of France?")
	require.NoError(t, err)
	assert.Equal(t, FallbackAnswer, resp.Content)
	assert.Equal(t, 0, llm.calls, "completion service must not be called below the threshold")
}

func TestQuery_ThresholdConsultsModelOnRelevantChunks(t *testing.T) {
	// scored results as the Postgres retriever builds them: cosine
	// similarity populated on every chunk
	retriever := &stubRetriever{chunks: scoredChunks(5, 0.82)}
	llm := &stubLLM{response: "The answer is 2009."}
	r := NewRAG(&stubEmbedder{}, retriever, llm, &config.RAGConfig{TopK: 5, MinSimilarity: 0.3})

	resp, err := r.Query(context.Background(), "When was NIT Uttarakhand established?")
	require.NoError(t, err)
	assert.Equal(t, 1, llm.calls, "relevant chunks must reach the completion service")
	assert.Contains(t, resp.Content, "2009")
	assert.NotEqual(t, FallbackAnswer, resp.Content)
}

func TestQuery_ModelReturnsFallback(t *testing.T) {
	// unrelated question on a chemistry document: the model self-polices
	retriever := &stubRetriever{chunks: scoredChunks(5, 0.9)}
	llm := &stubLLM{response: FallbackAnswer}
	r := NewRAG(&stubEmbedder{}, retriever, llm, &config.RAGConfig{TopK: 5})

	resp, err := r.Query(context.Background(), "What is the capital of France?")
	require.NoError(t, err)
	assert.Equal(t, FallbackAnswer, resp.Content)
}

func TestQuery_CompletionFailure(t *testing.T) {
	retriever := &stubRetriever{chunks: scoredChunks(5, 0.9)}
	llm := &stubLLM{err: fmt.Errorf("quota exceeded")}
	r := NewRAG(&stubEmbedder{}, retriever, llm, &config.RAGConfig{TopK: 5})

	_, err := r.Query(context.Background(), "anything")
	require.Error(t, err)

	var answerErr *AnswerError
	require.True(t, errors.As(err, &answerErr))
	assert.Equal(t, "completion", answerErr.Stage)
}

func TestQuery_EmbedFailure(t *testing.T) {
	retriever := &stubRetriever{chunks: scoredChunks(5, 0.9)}
	llm := &stubLLM{response: "unused"}
	r := NewRAG(&stubEmbedder{err: fmt.Errorf("timeout")}, retriever, llm, &config.RAGConfig{TopK: 5})

	_, err := r.Query(context.Background(), "anything")
	require.Error(t, err)

	var answerErr *AnswerError
	require.True(t, errors.As(err, &answerErr))
	assert.Equal(t, 0, llm.calls)
}

func TestQuery_RetrieveFailure(t *testing.T) {
	retriever := &stubRetriever{err: fmt.Errorf("index gone")}
	llm := &stubLLM{response: "unused"}
	r := NewRAG(&stubEmbedder{}, retriever, llm, &config.RAGConfig{TopK: 5})

	_, err := r.Query(context.Background(), "anything")
	require.Error(t, err)

	var answerErr *AnswerError
	require.True(t, errors.As(err, &answerErr))
	assert.Equal(t, "retrieve", answerErr.Stage)
}
