package rag

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/travis-burmaster/bmasterai/internal/monitor"
	"github.com/travis-burmaster/bmasterai/internal/qdrantstore"
)

// Embedder produces an embedding vector for a text chunk.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// VectorStore is the subset of qdrantstore.Store the pipelines use.
type VectorStore interface {
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, docs []qdrantstore.Document, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, topK int, filter *qdrantstore.Filter) ([]qdrantstore.SearchResult, error)
}

// VectorizeStats summarizes one vectorize run.
type VectorizeStats struct {
	FilesTotal      int
	FilesSuccessful int
	FilesFailed     int
	ChunksIndexed   int
	Duration        time.Duration

	mu     sync.Mutex
	Errors []error
}

func (st *VectorizeStats) recordSuccess(chunks int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.FilesSuccessful++
	st.ChunksIndexed += chunks
}

func (st *VectorizeStats) recordFailure(err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.FilesFailed++
	st.Errors = append(st.Errors, err)
}

// VectorizeService embeds markdown documents and stores them in Qdrant.
type VectorizeService struct {
	embedder      Embedder
	store         VectorStore
	splitter      *Splitter
	logger        *log.Logger
	concurrency   int
	retryAttempts int
	retryDelay    time.Duration
}

// NewVectorizeService wires the embedding client and vector store together.
func NewVectorizeService(embedder Embedder, store VectorStore, concurrency, retryAttempts int, retryDelay time.Duration) *VectorizeService {
	if concurrency <= 0 {
		concurrency = 3
	}
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}
	return &VectorizeService{
		embedder:      embedder,
		store:         store,
		splitter:      NewSplitter(),
		logger:        log.New(os.Stdout, "[Vectorize] ", log.LstdFlags),
		concurrency:   concurrency,
		retryAttempts: retryAttempts,
		retryDelay:    retryDelay,
	}
}

// Run walks dir for markdown files, embeds each chunk, and upserts into the
// collection. Files fail independently; the run continues past per-file
// errors and reports them in the stats.
func (s *VectorizeService) Run(ctx context.Context, dir string, dryRun bool) (*VectorizeStats, error) {
	monitor.RecordInvocation(monitor.ModeVectorize)

	files, err := collectMarkdownFiles(dir)
	if err != nil {
		return nil, err
	}

	stats := &VectorizeStats{FilesTotal: len(files)}
	start := time.Now()
	defer func() { stats.Duration = time.Since(start) }()

	if len(files) == 0 {
		s.logger.Printf("no markdown files found under %s", dir)
		return stats, nil
	}

	if !dryRun {
		if err := s.store.EnsureCollection(ctx); err != nil {
			return stats, err
		}
	}

	s.logger.Printf("vectorizing %d files (concurrency=%d, dry-run=%v)", len(files), s.concurrency, dryRun)

	sem := make(chan struct{}, s.concurrency)
	eg, egCtx := errgroup.WithContext(ctx)

	for _, file := range files {
		path := file
		sem <- struct{}{}
		eg.Go(func() error {
			defer func() { <-sem }()
			chunks, err := s.processFile(egCtx, path, dryRun)
			if err != nil {
				s.logger.Printf("failed %s: %v", path, err)
				stats.recordFailure(fmt.Errorf("%s: %w", path, err))
				return nil
			}
			stats.recordSuccess(chunks)
			return nil
		})
	}
	_ = eg.Wait() // errors are tracked inside stats

	if stats.FilesFailed > 0 {
		return stats, fmt.Errorf("vectorization completed with %d failures", stats.FilesFailed)
	}
	return stats, nil
}

func (s *VectorizeService) processFile(ctx context.Context, path string, dryRun bool) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read file: %w", err)
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	chunks, err := s.splitter.Split(string(data), path)
	if err != nil {
		return 0, fmt.Errorf("split document: %w", err)
	}

	if dryRun {
		s.logger.Printf("dry-run: %s would produce %d chunk(s)", path, len(chunks))
		return len(chunks), nil
	}

	docs := make([]qdrantstore.Document, 0, len(chunks))
	vectors := make([][]float32, 0, len(chunks))
	for _, chunk := range chunks {
		vector, err := s.embedWithRetry(ctx, chunk.Content)
		if err != nil {
			return 0, fmt.Errorf("embed chunk %d/%d: %w", chunk.ChunkIndex+1, chunk.TotalChunks, err)
		}

		docTitle := title
		if chunk.TotalChunks > 1 {
			docTitle = fmt.Sprintf("%s (%d/%d)", title, chunk.ChunkIndex+1, chunk.TotalChunks)
		}
		docs = append(docs, qdrantstore.Document{
			ID:       uuid.NewString(),
			Title:    docTitle,
			Content:  chunk.Content,
			Source:   path,
			Category: filepath.Base(filepath.Dir(path)),
		})
		vectors = append(vectors, vector)
	}

	if err := s.store.Upsert(ctx, docs, vectors); err != nil {
		return 0, fmt.Errorf("upsert: %w", err)
	}
	return len(docs), nil
}

func (s *VectorizeService) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= s.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.retryDelay * time.Duration(attempt)):
			}
		}
		vector, err := s.embedder.GenerateEmbedding(ctx, text)
		if err == nil {
			return vector, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func collectMarkdownFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// skip hidden directories like .git
			if strings.HasPrefix(d.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".md" || ext == ".markdown" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return files, nil
}
