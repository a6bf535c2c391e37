package qdrantstore

import (
	"context"
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentPayloadRoundTrip(t *testing.T) {
	doc := Document{
		ID:       "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		Title:    "Deployment runbook",
		Content:  "Restart the workers after every config change.",
		Source:   "docs/runbook.md",
		Category: "operations",
	}

	payload := documentPayload(doc)
	got := documentFromPayload(doc.ID, payload)
	assert.Equal(t, doc, got)
}

func TestDocumentFromPayload_MissingFields(t *testing.T) {
	payload := qdrant.NewValueMap(map[string]any{"title": "only a title"})
	doc := documentFromPayload("id-1", payload)
	assert.Equal(t, "id-1", doc.ID)
	assert.Equal(t, "only a title", doc.Title)
	assert.Empty(t, doc.Content)
	assert.Empty(t, doc.Category)
}

func TestPointID(t *testing.T) {
	assert.Equal(t, "", pointID(nil))
	assert.Equal(t, "abc-123", pointID(qdrant.NewID("abc-123")))
	assert.Equal(t, "42", pointID(qdrant.NewIDNum(42)))
}

func TestFilterToQdrant(t *testing.T) {
	var nilFilter *Filter
	assert.Nil(t, nilFilter.toQdrant())
	assert.Nil(t, (&Filter{}).toQdrant())

	f := (&Filter{Source: "docs/runbook.md"}).toQdrant()
	require.NotNil(t, f)
	require.Len(t, f.Must, 1)
	field := f.Must[0].GetField()
	require.NotNil(t, field)
	assert.Equal(t, "source", field.GetKey())
	assert.Equal(t, "docs/runbook.md", field.GetMatch().GetKeyword())

	both := (&Filter{Source: "docs/runbook.md", Category: "operations"}).toQdrant()
	require.NotNil(t, both)
	assert.Len(t, both.Must, 2)
}

func TestUpsert_CountMismatch(t *testing.T) {
	s := &Store{collection: "test"}
	err := s.Upsert(context.Background(), []Document{{ID: "a"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatch")
}

func TestUpsert_EmptyIsNoop(t *testing.T) {
	s := &Store{collection: "test"}
	assert.NoError(t, s.Upsert(context.Background(), nil, nil))
}
