// Package qdrantstore persists document embeddings in a Qdrant collection
// and serves vector similarity search over them.
package qdrantstore

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/qdrant/go-client/qdrant"

	"github.com/travis-burmaster/bmasterai/internal/config"
)

// Document is one embedded chunk of source material.
type Document struct {
	ID       string
	Title    string
	Content  string
	Source   string
	Category string
}

// SearchResult pairs a document with its similarity score.
type SearchResult struct {
	Document Document
	Score    float32
}

// Filter narrows search to documents whose payload matches every set
// field. A nil filter or one with no fields set matches everything.
type Filter struct {
	Source   string
	Category string
}

func (f *Filter) toQdrant() *qdrant.Filter {
	if f == nil {
		return nil
	}
	var must []*qdrant.Condition
	if f.Source != "" {
		must = append(must, qdrant.NewMatch("source", f.Source))
	}
	if f.Category != "" {
		must = append(must, qdrant.NewMatch("category", f.Category))
	}
	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

// Store wraps a Qdrant collection.
type Store struct {
	client     *qdrant.Client
	collection string
	dimensions uint64
	logger     *log.Logger
}

// New connects to Qdrant using the configured host and gRPC port.
func New(cfg *config.Config, dimensions int) (*Store, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.QdrantHost,
		Port:   cfg.QdrantPort,
		APIKey: cfg.QdrantAPIKey,
		UseTLS: cfg.QdrantUseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}
	return &Store{
		client:     client,
		collection: cfg.QdrantCollection,
		dimensions: uint64(dimensions),
		logger:     log.New(os.Stdout, "[Qdrant] ", log.LstdFlags),
	}, nil
}

// EnsureCollection creates the collection if it does not exist yet.
func (s *Store) EnsureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", s.collection, err)
	}
	if exists {
		return nil
	}

	s.logger.Printf("creating collection %s (dim=%d)", s.collection, s.dimensions)
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.dimensions,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", s.collection, err)
	}
	return nil
}

// DeleteCollection removes the collection and all its points.
func (s *Store) DeleteCollection(ctx context.Context) error {
	if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", s.collection, err)
	}
	return nil
}

// Upsert writes documents and their embeddings. Both slices must align.
func (s *Store) Upsert(ctx context.Context, docs []Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("document/vector count mismatch: %d != %d", len(docs), len(vectors))
	}
	if len(docs) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(docs))
	for i, doc := range docs {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(doc.ID),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: documentPayload(doc),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %d points: %w", len(points), err)
	}
	return nil
}

// Search returns the topK nearest documents to the query vector,
// restricted to points matching the filter when one is given.
func (s *Store) Search(ctx context.Context, vector []float32, topK int, filter *Filter) ([]SearchResult, error) {
	if topK <= 0 {
		topK = 10
	}

	scored, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		Filter:         filter.toQdrant(),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}

	results := make([]SearchResult, 0, len(scored))
	for _, point := range scored {
		results = append(results, SearchResult{
			Document: documentFromPayload(pointID(point.Id), point.Payload),
			Score:    point.Score,
		})
	}
	return results, nil
}

// Count returns the number of points in the collection.
func (s *Store) Count(ctx context.Context) (uint64, error) {
	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant count failed: %w", err)
	}
	return count, nil
}

// Close tears down the gRPC connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func documentPayload(doc Document) map[string]*qdrant.Value {
	return qdrant.NewValueMap(map[string]any{
		"title":    doc.Title,
		"content":  doc.Content,
		"source":   doc.Source,
		"category": doc.Category,
	})
}

func documentFromPayload(id string, payload map[string]*qdrant.Value) Document {
	doc := Document{ID: id}
	if v, ok := payload["title"]; ok {
		doc.Title = v.GetStringValue()
	}
	if v, ok := payload["content"]; ok {
		doc.Content = v.GetStringValue()
	}
	if v, ok := payload["source"]; ok {
		doc.Source = v.GetStringValue()
	}
	if v, ok := payload["category"]; ok {
		doc.Category = v.GetStringValue()
	}
	return doc
}

func pointID(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	return fmt.Sprintf("%d", id.GetNum())
}
