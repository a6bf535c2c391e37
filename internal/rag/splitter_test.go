package rag

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_SmallDocumentSingleChunk(t *testing.T) {
	s := NewSplitter()
	chunks, err := s.Split("a short document", "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short document", chunks[0].Content)
	assert.Equal(t, 1, chunks[0].TotalChunks)
	assert.Equal(t, "doc-1", chunks[0].OriginalID)
}

func TestSplit_EmptyDocument(t *testing.T) {
	s := NewSplitter()
	_, err := s.Split("", "doc-1")
	assert.Error(t, err)
}

func TestSplit_LargeDocumentProducesOverlappingChunks(t *testing.T) {
	s := NewSplitter()
	paragraph := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 100) + "\n\n"
	text := strings.Repeat(paragraph, 20)
	require.True(t, s.ShouldSplit(text))

	chunks, err := s.Split(text, "doc-big")
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	maxChars := int(float64(s.MaxTokens) / s.TokensPerChar)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk.Content)), maxChars, "chunk %d too large", i)
		assert.Equal(t, i, chunk.ChunkIndex)
		assert.Equal(t, len(chunks), chunk.TotalChunks)
	}
}

func TestSplit_PrefersParagraphBreaks(t *testing.T) {
	s := &Splitter{MaxTokens: 30, OverlapTokens: 0, TokensPerChar: 1.0}
	text := strings.Repeat("x", 20) + "\n\n" + strings.Repeat("y", 20)
	chunks, err := s.Split(text, "doc-2")
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	assert.True(t, strings.HasSuffix(chunks[0].Content, "\n\n"))
}

func TestSplit_BreakPointInsideOverlapWindowAdvances(t *testing.T) {
	// The only paragraph break sits right at the start, inside the overlap
	// window of every chunk. The walk must still make forward progress.
	s := NewSplitter()
	text := "a\n\n" + strings.Repeat("x", 30000)
	require.True(t, s.ShouldSplit(text))

	type result struct {
		chunks []Chunk
		err    error
	}
	done := make(chan result, 1)
	go func() {
		chunks, err := s.Split(text, "doc-stall")
		done <- result{chunks: chunks, err: err}
	}()

	select {
	case res := <-done:
		require.NoError(t, res.err)
		chunks := res.chunks
		require.Greater(t, len(chunks), 1)
		covered := 0
		for _, chunk := range chunks {
			covered += len([]rune(chunk.Content))
		}
		assert.GreaterOrEqual(t, covered, len([]rune(text)))
		assert.True(t, strings.HasSuffix(chunks[len(chunks)-1].Content, "x"))
	case <-time.After(5 * time.Second):
		t.Fatal("Split did not finish, chunk start is not advancing")
	}
}

func TestEstimateTokenCount(t *testing.T) {
	s := &Splitter{TokensPerChar: 0.5}
	assert.Equal(t, 5, s.EstimateTokenCount("0123456789"))
}
