package rag

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/travis-burmaster/bmasterai/internal/llm"
	"github.com/travis-burmaster/bmasterai/internal/monitor"
	"github.com/travis-burmaster/bmasterai/internal/qdrantstore"
)

const answerSystemPrompt = `You are a helpful assistant. Answer the user's question using only the
reference documents provided. When the documents do not contain the answer,
say so instead of guessing. Cite document titles when relevant.`

// QueryResult is a synthesized answer plus the documents it was built from.
type QueryResult struct {
	Answer  string
	Sources []qdrantstore.SearchResult
	Model   string
	Elapsed time.Duration
}

// QueryService answers questions from the vector store.
type QueryService struct {
	embedder Embedder
	store    VectorStore
	chat     llm.ChatClient
	topK     int
	logger   *log.Logger
}

func NewQueryService(embedder Embedder, store VectorStore, chat llm.ChatClient, topK int) *QueryService {
	if topK <= 0 {
		topK = 5
	}
	return &QueryService{
		embedder: embedder,
		store:    store,
		chat:     chat,
		topK:     topK,
		logger:   log.New(os.Stdout, "[Query] ", log.LstdFlags),
	}
}

// Query embeds the question, retrieves the nearest chunks, and asks the LLM
// to synthesize an answer from them.
func (s *QueryService) Query(ctx context.Context, question string) (*QueryResult, error) {
	return s.QueryFiltered(ctx, question, nil)
}

// QueryFiltered is Query restricted to documents matching the payload
// filter.
func (s *QueryService) QueryFiltered(ctx context.Context, question string, filter *qdrantstore.Filter) (*QueryResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("question cannot be empty")
	}

	monitor.RecordInvocation(monitor.ModeQuery)
	start := time.Now()

	vector, err := s.embedder.GenerateEmbedding(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	sources, err := s.store.Search(ctx, vector, s.topK, filter)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	reply, err := s.chat.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: answerSystemPrompt},
		{Role: llm.RoleUser, Content: buildPrompt(question, sources)},
	})
	if err != nil {
		return nil, fmt.Errorf("answer synthesis failed: %w", err)
	}

	elapsed := time.Since(start)
	s.logger.Printf("answered in %s using %d source(s)", elapsed.Round(time.Millisecond), len(sources))

	return &QueryResult{
		Answer:  reply.Text,
		Sources: sources,
		Model:   reply.Model,
		Elapsed: elapsed,
	}, nil
}

// Answer adapts Query to the slack bot's Responder interface.
func (s *QueryService) Answer(ctx context.Context, question string) (string, error) {
	result, err := s.Query(ctx, question)
	if err != nil {
		return "", err
	}
	return result.Answer, nil
}

func buildPrompt(question string, sources []qdrantstore.SearchResult) string {
	var b strings.Builder
	b.WriteString("Reference documents:\n\n")
	if len(sources) == 0 {
		b.WriteString("(no matching documents found)\n")
	}
	for i, src := range sources {
		fmt.Fprintf(&b, "[%d] %s (score %.3f)\n%s\n\n", i+1, src.Document.Title, src.Score, src.Document.Content)
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}
