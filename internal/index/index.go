package index

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"pdfchat/internal/models"
)

// Index is the similarity-searchable store for one document's chunks. It is
// built once per document and read-only afterwards.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// New creates the vector store, in memory by default or persisted under
// dataDir when inMemory is false.
func New(dataDir string, inMemory bool) (*Index, error) {
	if inMemory {
		return &Index{db: chromem.NewDB()}, nil
	}
	db, err := chromem.NewPersistentDB(dataDir, false)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}
	return &Index{db: db}, nil
}

// Build creates the collection for a document and inserts all embedded
// chunks. Embeddings are computed by the caller before this runs, so either
// every chunk is inserted or the collection stays unused.
func (ix *Index) Build(ctx context.Context, name string, chunkEmbeddings []models.ChunkEmbedding) (int, error) {
	collection, err := ix.db.GetOrCreateCollection(name, nil, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create collection: %w", err)
	}

	if len(chunkEmbeddings) > 0 {
		docs := make([]chromem.Document, len(chunkEmbeddings))
		for i, ce := range chunkEmbeddings {
			docs[i] = chromem.Document{
				ID:        fmt.Sprintf("%s-%d", name, ce.ChunkID),
				Content:   ce.Content,
				Embedding: ce.Embedding,
				Metadata:  map[string]string{"chunk_id": strconv.Itoa(ce.ChunkID)},
			}
		}
		if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
			return 0, fmt.Errorf("failed to add documents: %w", err)
		}
	}

	ix.collection = collection
	log.Debug().Int("chunks", len(chunkEmbeddings)).Str("collection", name).Msg("index built")
	return len(chunkEmbeddings), nil
}

// Count reports the number of indexed chunks.
func (ix *Index) Count() int {
	if ix.collection == nil {
		return 0
	}
	return ix.collection.Count()
}

// Search returns the k nearest chunks to the query embedding by cosine
// similarity. k is clamped to the collection size; an empty index returns no
// chunks.
func (ix *Index) Search(ctx context.Context, queryEmbedding []float32, k int) ([]models.ScoredChunk, error) {
	count := ix.Count()
	if k > count {
		k = count
	}
	if k <= 0 {
		return nil, nil
	}

	results, err := ix.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryEmbedding,
		NResults:       k,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	scored := make([]models.ScoredChunk, 0, len(results))
	for _, res := range results {
		chunkID, _ := strconv.Atoi(res.Metadata["chunk_id"])
		scored = append(scored, models.ScoredChunk{
			Content:    res.Content,
			ChunkID:    chunkID,
			Similarity: res.Similarity,
		})
	}
	return scored, nil
}

// Drop removes the document's collection, e.g. on session reset.
func (ix *Index) Drop() error {
	if ix.collection == nil {
		return nil
	}
	if err := ix.db.DeleteCollection(ix.collection.Name); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	ix.collection = nil
	return nil
}
