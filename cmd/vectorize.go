package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	appconfig "github.com/travis-burmaster/bmasterai/internal/config"
	"github.com/travis-burmaster/bmasterai/internal/qdrantstore"
	"github.com/travis-burmaster/bmasterai/internal/rag"
)

var (
	vectorizeDirectory   string
	vectorizeDryRun      bool
	vectorizeConcurrency int
	vectorizeRecreate    bool
)

var vectorizeCmd = &cobra.Command{
	Use:   "vectorize",
	Short: "Convert markdown files to vectors and store them in Qdrant",
	Long: `
The vectorize command walks a directory of markdown files, splits them
into chunks, generates embeddings with Amazon Titan on Bedrock, and
upserts the vectors into a Qdrant collection for RAG queries.

Examples:
  bmasterai vectorize -d ./docs
  bmasterai vectorize -d ./docs --dry-run
  bmasterai vectorize -d ./docs --recreate -c 4
`,
	RunE: runVectorize,
}

func init() {
	vectorizeCmd.Flags().StringVarP(&vectorizeDirectory, "directory", "d", "./markdown", "Directory containing markdown files to process")
	vectorizeCmd.Flags().BoolVar(&vectorizeDryRun, "dry-run", false, "Show what would be processed without making API calls")
	vectorizeCmd.Flags().IntVarP(&vectorizeConcurrency, "concurrency", "c", 0, "Number of concurrent embeddings (0 = use config default)")
	vectorizeCmd.Flags().BoolVar(&vectorizeRecreate, "recreate", false, "Delete and recreate the collection before indexing")
}

func runVectorize(cmd *cobra.Command, args []string) error {
	log.Println("Starting vectorization process...")

	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if vectorizeConcurrency > 0 {
		cfg.Concurrency = vectorizeConcurrency
	}

	if _, err := os.Stat(vectorizeDirectory); os.IsNotExist(err) {
		return fmt.Errorf("directory does not exist: %s", vectorizeDirectory)
	}

	ctx := cmd.Context()
	embedder, err := newEmbedder(ctx, cfg)
	if err != nil {
		return err
	}

	var store rag.VectorStore
	if !vectorizeDryRun {
		qdrant, err := qdrantstore.New(cfg, embedder.Dimensions())
		if err != nil {
			return fmt.Errorf("failed to connect to Qdrant: %w", err)
		}
		defer func() { _ = qdrant.Close() }()

		if vectorizeRecreate {
			log.Printf("Recreating collection %s...", cfg.QdrantCollection)
			if err := qdrant.DeleteCollection(ctx); err != nil {
				return fmt.Errorf("failed to delete collection: %w", err)
			}
		}
		store = qdrant
	}

	service := rag.NewVectorizeService(embedder, store, cfg.Concurrency, cfg.RetryAttempts, cfg.RetryDelay)
	stats, err := service.Run(ctx, vectorizeDirectory, vectorizeDryRun)
	if stats != nil {
		log.Printf("Files: %d total, %d succeeded, %d failed; chunks indexed: %d; took %s",
			stats.FilesTotal, stats.FilesSuccessful, stats.FilesFailed, stats.ChunksIndexed, stats.Duration)
		for _, procErr := range stats.Errors {
			log.Printf("  error: %v", procErr)
		}
	}
	if err != nil {
		return fmt.Errorf("vectorization failed: %w", err)
	}

	log.Println("Vectorization completed successfully")
	return nil
}
