package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pdfchat/internal/config"
	"pdfchat/internal/db"
	"pdfchat/internal/embedding"
	"pdfchat/internal/helper"
	"pdfchat/internal/rag"
	"pdfchat/internal/session"
	"pdfchat/internal/tui"
)

const (
	configFilePath = "./configs/config.yaml"

	// practical upload ceiling, enforced here at the boundary
	maxFileSize = 200 << 20
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()

	filePath := flag.String("file", "", "Path to the document file")
	question := flag.String("question", "", "Ask a single question and exit")
	configPath := flag.String("config", configFilePath, "Path to config file")
	exportDir := flag.String("export", ".", "Directory for transcript exports")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *filePath == "" {
		log.Fatal().Msg("Please provide a document file using the -file flag")
	}

	// .env keeps API keys out of the config file
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")

	if info, err := os.Stat(*filePath); err != nil {
		log.Fatal().Err(err).Msg("Error reading document file")
	} else if info.Size() > maxFileSize {
		log.Fatal().Int64("size", info.Size()).Msg("Document exceeds the 200MB limit")
	}

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	llm, err := rag.NewChatModel(&cfg.ChatLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing chat model")
	}

	var archive *db.Store
	if cfg.Database.Enabled {
		archive, err = db.Connect(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to database")
		}
		defer archive.Close()
	}

	ctx := context.Background()
	s, err := session.Start(ctx, *filePath, session.Options{
		Config:   cfg,
		Embedder: embedder,
		LLM:      llm,
		Archive:  archive,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error processing document")
	}

	if *question != "" {
		askOnce(ctx, s, *question, *exportDir)
		return
	}

	if err := tui.Run(s, *exportDir); err != nil {
		log.Fatal().Err(err).Msg("Error running chat interface")
	}
}

func askOnce(ctx context.Context, s *session.Session, question, exportDir string) {
	answer, err := s.Ask(ctx, question)
	if err != nil {
		log.Fatal().Err(err).Msg("Error answering question")
	}

	log.Info().Msg("Document: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	helper.PrettyPrint(s.Stats())

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", question)

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", answer)

	if path, err := s.ExportTranscript(exportDir); err != nil {
		log.Warn().Err(err).Msg("Error exporting transcript")
	} else {
		log.Info().Str("path", path).Msg("Transcript exported")
	}
}
