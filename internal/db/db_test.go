package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/config"
)

func testStore(t *testing.T, vectorSize int) *Store {
	t.Helper()
	store, err := Connect(&config.DBConfig{URL: "postgres://localhost:5432/pdfchat", VectorSize: vectorSize})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSearchQuery_SelectsSimilarity(t *testing.T) {
	store := testStore(t, 768)

	var rows []Chunk
	sql := store.searchQuery(&rows, []float32{0.1, 0.2}, 5).String()

	assert.Contains(t, sql, "1 - (embedding <=>")
	assert.Contains(t, sql, "AS similarity")
	assert.Contains(t, sql, "ORDER BY embedding <=>")
	assert.Contains(t, sql, "LIMIT 5")
}

func TestChunkTableDDL_UsesConfiguredVectorSize(t *testing.T) {
	tests := []struct {
		name string
		size int
		want string
	}{
		{name: "default", size: 768, want: "vector(768)"},
		{name: "openai small", size: 1536, want: "vector(1536)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ddl := chunkTableDDL(tt.size)
			assert.Contains(t, ddl, tt.want)
			assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS document_chunks")
		})
	}
}
