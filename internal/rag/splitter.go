// Package rag implements the vectorize and query pipelines: documents are
// split, embedded, and stored in Qdrant; questions are answered from the
// nearest chunks through the configured LLM provider.
package rag

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Splitter chunks large documents so each piece fits the embedding model's
// context window.
type Splitter struct {
	MaxTokens     int     // maximum tokens per chunk
	OverlapTokens int     // overlapping tokens between neighboring chunks
	TokensPerChar float64 // rough tokens-per-character estimate
}

// NewSplitter creates a splitter with safe defaults for an 8192 token model.
func NewSplitter() *Splitter {
	return &Splitter{
		MaxTokens:     7000,
		OverlapTokens: 200,
		TokensPerChar: 0.3,
	}
}

// Chunk is one piece of a split document.
type Chunk struct {
	Content     string
	ChunkIndex  int
	TotalChunks int
	OriginalID  string
}

// EstimateTokenCount estimates tokens from character count.
func (s *Splitter) EstimateTokenCount(text string) int {
	return int(float64(utf8.RuneCountInString(text)) * s.TokensPerChar)
}

// ShouldSplit reports whether the document exceeds the per-chunk budget.
func (s *Splitter) ShouldSplit(text string) bool {
	return s.EstimateTokenCount(text) > s.MaxTokens
}

// Split breaks a document into overlapping chunks at natural boundaries.
func (s *Splitter) Split(text, documentID string) ([]Chunk, error) {
	if text == "" {
		return nil, fmt.Errorf("empty document text")
	}

	if !s.ShouldSplit(text) {
		return []Chunk{{Content: text, ChunkIndex: 0, TotalChunks: 1, OriginalID: documentID}}, nil
	}

	maxChars := int(float64(s.MaxTokens) / s.TokensPerChar)
	overlapChars := int(float64(s.OverlapTokens) / s.TokensPerChar)

	pieces := splitByCharacters(text, maxChars, overlapChars)
	chunks := make([]Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = Chunk{
			Content:     piece,
			ChunkIndex:  i,
			TotalChunks: len(pieces),
			OriginalID:  documentID,
		}
	}
	return chunks, nil
}

func splitByCharacters(text string, maxChars, overlapChars int) []string {
	runes := []rune(text)
	total := len(runes)
	if total <= maxChars {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < total {
		end := start + maxChars
		if end > total {
			end = total
		}

		if end < total {
			// prefer a paragraph break, then a sentence end
			if bp := findBreakPoint(runes[start:end], "\n\n"); bp > 0 {
				end = start + bp
			} else if bp := findBreakPoint(runes[start:end], ".\n", ". ", "!\n", "?\n"); bp > 0 {
				end = start + bp
			}
		}

		chunks = append(chunks, string(runes[start:end]))

		if end >= total {
			break
		}
		next := end - overlapChars
		if next <= start {
			// a break point inside the overlap window must not stall the walk
			next = end
		}
		start = next
	}
	return chunks
}

// findBreakPoint returns the index just past the last occurrence of any
// delimiter, or 0 when none is found in the window.
func findBreakPoint(window []rune, delimiters ...string) int {
	text := string(window)
	best := 0
	for _, delim := range delimiters {
		if idx := strings.LastIndex(text, delim); idx >= 0 {
			end := idx + len(delim)
			if end > best {
				best = end
			}
		}
	}
	if best == 0 {
		return 0
	}
	// convert byte offset back to rune offset
	return utf8.RuneCountInString(text[:best])
}
