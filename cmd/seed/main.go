// Command seed writes sample training documents into the configured
// training folder and optionally builds the knowledge base from them.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/policy-agent/backend/internal/extract"
	"github.com/policy-agent/backend/internal/ingestion"
	"github.com/policy-agent/backend/internal/nlp"
	"github.com/policy-agent/backend/internal/storage/sqlite"
	"github.com/policy-agent/backend/pkg/config"
	appLogger "github.com/policy-agent/backend/pkg/logger"
)

func main() {
	train := flag.Bool("train", false, "build the knowledge base after writing the documents")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	if err := ingestion.WriteSampleDocs(cfg.Ingestion.Folder); err != nil {
		appLogger.Fatal("Failed to write sample documents", zap.Error(err))
	}

	if !*train {
		return
	}

	store, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer store.Close()

	builder := ingestion.NewBuilder(
		ingestion.LocalSource{Folder: cfg.Ingestion.Folder},
		extract.NewService(),
		nlp.NewService(),
		store,
	)

	report, err := builder.Run(context.Background())
	if err != nil {
		appLogger.Fatal("Knowledge base build failed", zap.Error(err))
	}

	appLogger.Info("Knowledge base built",
		zap.Int("files", report.FilesProcessed),
		zap.Any("sentences", report.Sentences))
}
