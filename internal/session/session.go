package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"

	"pdfchat/internal/chunker"
	"pdfchat/internal/config"
	"pdfchat/internal/db"
	"pdfchat/internal/embedding"
	"pdfchat/internal/helper"
	"pdfchat/internal/index"
	"pdfchat/internal/models"
	"pdfchat/internal/parser"
	"pdfchat/internal/rag"
)

// Stats are the document figures shown in the chat interface.
type Stats struct {
	Title     string
	Pages     int
	Chunks    int
	Words     int
	Questions int
}

// Options carries the collaborators a session is built from. Embedder and
// LLM are interfaces so the pipeline runs against deterministic mocks in
// tests. Archive is optional.
type Options struct {
	Config   *config.Config
	Embedder embeddings.Embedder
	LLM      llms.Model
	Archive  *db.Store
}

// Session owns one user's interaction context: the document, its index, the
// answerer and the append-only transcript. Created on upload, discarded on
// reset. Single user, no concurrent mutation.
type Session struct {
	ID       string
	doc      *models.Document
	index    *index.Index
	answerer *rag.RAG
	archive  *db.Store
	turns    []models.ChatTurn
}

// Start runs the full ingestion pipeline for one document file: extract and
// clean, chunk, embed, build the index, wire the answerer.
func Start(ctx context.Context, filePath string, opts Options) (*Session, error) {
	doc, err := parser.Parse(filePath)
	if err != nil {
		return nil, err
	}
	doc.ID, err = helper.GenerateUUID()
	if err != nil {
		return nil, err
	}
	log.Info().Str("title", doc.Title).Int("pages", doc.Pages).Msg("document extracted")

	chunks, err := chunker.New(opts.Config.RAG.ChunkSize, opts.Config.RAG.ChunkOverlap).Split(doc.Text)
	if err != nil {
		return nil, err
	}

	chunkEmbeddings, err := embedding.EmbedChunks(ctx, opts.Embedder, chunks)
	if err != nil {
		return nil, err
	}

	ix, err := index.New(opts.Config.RAG.DataDir, opts.Config.RAG.InMemory)
	if err != nil {
		return nil, err
	}
	numChunks, err := ix.Build(ctx, doc.ID, chunkEmbeddings)
	if err != nil {
		return nil, err
	}
	log.Info().Int("chunks", numChunks).Msg("index built")

	var retriever rag.Retriever = ix
	if opts.Archive != nil {
		if err := opts.Archive.Init(ctx); err != nil {
			return nil, err
		}
		if err := opts.Archive.ReplaceChunks(ctx, doc.ID, chunkEmbeddings); err != nil {
			return nil, err
		}
		if opts.Config.Database.Retrieve {
			retriever = opts.Archive
		}
	}

	return &Session{
		ID:       doc.ID,
		doc:      doc,
		index:    ix,
		answerer: rag.NewRAG(opts.Embedder, retriever, opts.LLM, &opts.Config.RAG),
		archive:  opts.Archive,
	}, nil
}

// Ask answers one question and appends the exchange to the transcript. On
// failure the transcript is left untouched so the question can be resubmitted.
func (s *Session) Ask(ctx context.Context, question string) (string, error) {
	resp, err := s.answerer.Query(ctx, question)
	if err != nil {
		return "", err
	}

	now := time.Now()
	userTurn := models.ChatTurn{Role: models.RoleUser, Text: question, Timestamp: now}
	botTurn := models.ChatTurn{Role: models.RoleBot, Text: resp.Content, Timestamp: now}
	s.turns = append(s.turns, userTurn, botTurn)

	if s.archive != nil {
		// archiving is best-effort; the answer already happened
		if err := s.archive.AppendTurn(ctx, s.ID, userTurn); err != nil {
			log.Warn().Err(err).Msg("failed to archive user turn")
		}
		if err := s.archive.AppendTurn(ctx, s.ID, botTurn); err != nil {
			log.Warn().Err(err).Msg("failed to archive bot turn")
		}
	}
	return resp.Content, nil
}

// Document returns the session's document.
func (s *Session) Document() *models.Document { return s.doc }

// Transcript returns a copy of the chat so far.
func (s *Session) Transcript() []models.ChatTurn {
	out := make([]models.ChatTurn, len(s.turns))
	copy(out, s.turns)
	return out
}

func (s *Session) Stats() Stats {
	return Stats{
		Title:     s.doc.Title,
		Pages:     s.doc.Pages,
		Chunks:    s.index.Count(),
		Words:     s.doc.Words(),
		Questions: len(s.turns) / 2,
	}
}

// Preview returns the first n runes of the cleaned text.
func (s *Session) Preview(n int) string {
	runes := []rune(s.doc.Text)
	if len(runes) <= n {
		return s.doc.Text
	}
	return string(runes[:n]) + "..."
}

// WriteTranscript renders the transcript as "ROLE (HH:MM): message" lines
// with a blank line between turns.
func (s *Session) WriteTranscript(w io.Writer) error {
	lines := make([]string, 0, len(s.turns))
	for _, turn := range s.turns {
		lines = append(lines, fmt.Sprintf("%s (%s): %s",
			strings.ToUpper(turn.Role), turn.Timestamp.Format(models.TurnTimeFormat), turn.Text))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n\n"))
	return err
}

// ExportTranscript writes the transcript to dir as
// chat_history_YYYYMMDD_HHMMSS.txt and returns the path.
func (s *Session) ExportTranscript(dir string) (string, error) {
	name := fmt.Sprintf("chat_history_%s.txt", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := s.WriteTranscript(f); err != nil {
		return "", err
	}
	return path, nil
}

// Reset discards all session state, dropping the index collection.
func (s *Session) Reset() error {
	if err := s.index.Drop(); err != nil {
		return err
	}
	s.turns = nil
	return nil
}
