package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"pdfchat/internal/config"
	"pdfchat/internal/models"
)

// Chunk is one embedded chunk of the archived document. The table holds
// exactly one document's chunk set at a time, matching the index invariant.
type Chunk struct {
	bun.BaseModel `bun:"table:document_chunks,alias:c"`
	ID            int64     `bun:"id,pk,autoincrement"`
	SessionID     string    `bun:"session_id,notnull"`
	ChunkID       int       `bun:"chunk_id,notnull"`
	Content       string    `bun:"content,notnull"`
	Embedding     []float32 `bun:"embedding,notnull"`
	Similarity    float64   `bun:"similarity,scanonly"`
}

// Turn is one archived transcript entry.
type Turn struct {
	bun.BaseModel `bun:"table:chat_turns,alias:t"`
	ID            int64     `bun:"id,pk,autoincrement"`
	SessionID     string    `bun:"session_id,notnull"`
	Role          string    `bun:"role,notnull"`
	Content       string    `bun:"content,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
}

// Store archives the indexed document and the chat transcript in Postgres
// (pgvector). It can also serve retrieval in place of the in-memory index.
type Store struct {
	db         *bun.DB
	vectorSize int
}

func Connect(cfg *config.DBConfig) (*Store, error) {
	dsn := cfg.URL + "?sslmode=disable"
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(cfg.Key)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &Store{db: db, vectorSize: cfg.VectorSize}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// chunkTableDDL builds the chunk table with the configured embedding width.
// The vector column has to be sized by hand since the width comes from config,
// not from the model tags.
func chunkTableDDL(vectorSize int) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS document_chunks (
	id BIGSERIAL PRIMARY KEY,
	session_id VARCHAR NOT NULL,
	chunk_id BIGINT NOT NULL,
	content TEXT NOT NULL,
	embedding vector(%d) NOT NULL
)`, vectorSize)
}

// Init creates the archive tables if they do not exist.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, chunkTableDDL(s.vectorSize)); err != nil {
		return err
	}
	_, err := s.db.NewCreateTable().Model((*Turn)(nil)).IfNotExists().Exec(ctx)
	return err
}

// ReplaceChunks clears the previous document's chunks and stores the new
// set in one batch.
func (s *Store) ReplaceChunks(ctx context.Context, sessionID string, chunkEmbeddings []models.ChunkEmbedding) error {
	if _, err := s.db.NewTruncateTable().Model((*Chunk)(nil)).Exec(ctx); err != nil {
		return err
	}
	if len(chunkEmbeddings) == 0 {
		return nil
	}
	rows := make([]Chunk, len(chunkEmbeddings))
	for i, ce := range chunkEmbeddings {
		rows[i] = Chunk{
			SessionID: sessionID,
			ChunkID:   ce.ChunkID,
			Content:   ce.Content,
			Embedding: ce.Embedding,
		}
	}
	_, err := s.db.NewInsert().Model(&rows).Exec(ctx)
	return err
}

// searchQuery ranks chunks by cosine distance and selects the cosine
// similarity alongside, so downstream relevance thresholds see the same
// score the in-memory index reports.
func (s *Store) searchQuery(rows *[]Chunk, queryEmbedding []float32, k int) *bun.SelectQuery {
	return s.db.NewSelect().
		Model(rows).
		Column("chunk_id", "content").
		ColumnExpr("1 - (embedding <=> ?) AS similarity", queryEmbedding).
		OrderExpr("embedding <=> ?", queryEmbedding).
		Limit(k)
}

// Search returns the k nearest archived chunks by vector distance.
func (s *Store) Search(ctx context.Context, queryEmbedding []float32, k int) ([]models.ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}
	var rows []Chunk
	if err := s.searchQuery(&rows, queryEmbedding, k).Scan(ctx); err != nil {
		return nil, err
	}
	scored := make([]models.ScoredChunk, 0, len(rows))
	for _, row := range rows {
		scored = append(scored, models.ScoredChunk{
			Content:    row.Content,
			ChunkID:    row.ChunkID,
			Similarity: float32(row.Similarity),
		})
	}
	return scored, nil
}

// AppendTurn archives one transcript entry.
func (s *Store) AppendTurn(ctx context.Context, sessionID string, turn models.ChatTurn) error {
	row := &Turn{
		SessionID: sessionID,
		Role:      turn.Role,
		Content:   turn.Text,
		CreatedAt: turn.Timestamp,
	}
	_, err := s.db.NewInsert().Model(row).Exec(ctx)
	return err
}

// Transcript loads a session's archived turns in insertion order.
func (s *Store) Transcript(ctx context.Context, sessionID string) ([]models.ChatTurn, error) {
	var rows []Turn
	err := s.db.NewSelect().
		Model(&rows).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	turns := make([]models.ChatTurn, 0, len(rows))
	for _, row := range rows {
		turns = append(turns, models.ChatTurn{Role: row.Role, Text: row.Content, Timestamp: row.CreatedAt})
	}
	return turns, nil
}
