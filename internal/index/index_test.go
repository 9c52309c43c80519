package index

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/models"
)

// unit vector at the given angle, so cosine similarity to angle 0 decreases
// as the angle grows
func unitVector(deg float64) []float32 {
	rad := deg * math.Pi / 180
	return []float32{float32(math.Cos(rad)), float32(math.Sin(rad))}
}

func embeddingsAtAngles(angles ...float64) []models.ChunkEmbedding {
	out := make([]models.ChunkEmbedding, len(angles))
	for i, a := range angles {
		out[i] = models.ChunkEmbedding{
			Content:   "chunk",
			ChunkID:   i + 1,
			Embedding: unitVector(a),
		}
	}
	return out
}

func TestBuild_EmptyChunkSet(t *testing.T) {
	ix, err := New("", true)
	require.NoError(t, err)

	n, err := ix.Build(context.Background(), "doc-empty", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, ix.Count())

	results, err := ix.Search(context.Background(), unitVector(0), 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_TopKByCosineSimilarity(t *testing.T) {
	ix, err := New("", true)
	require.NoError(t, err)

	// chunk 1 is closest to the query, chunk 7 farthest
	embs := embeddingsAtAngles(5, 10, 15, 20, 25, 60, 80)
	n, err := ix.Build(context.Background(), "doc-1", embs)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, 7, ix.Count())

	results, err := ix.Search(context.Background(), unitVector(0), 5)
	require.NoError(t, err)
	require.Len(t, results, 5, "only the top 5 chunks may be returned")

	for i, res := range results {
		assert.Equal(t, i+1, res.ChunkID)
	}
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Similarity, results[i].Similarity)
	}
}

func TestSearch_ClampsKToCollectionSize(t *testing.T) {
	ix, err := New("", true)
	require.NoError(t, err)

	_, err = ix.Build(context.Background(), "doc-2", embeddingsAtAngles(0, 30))
	require.NoError(t, err)

	results, err := ix.Search(context.Background(), unitVector(0), 5)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestDrop(t *testing.T) {
	ix, err := New("", true)
	require.NoError(t, err)

	_, err = ix.Build(context.Background(), "doc-3", embeddingsAtAngles(0, 10, 20))
	require.NoError(t, err)
	require.Equal(t, 3, ix.Count())

	require.NoError(t, ix.Drop())
	assert.Equal(t, 0, ix.Count())

	results, err := ix.Search(context.Background(), unitVector(0), 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
