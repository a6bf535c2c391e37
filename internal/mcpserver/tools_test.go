package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travis-burmaster/bmasterai/internal/monitor"
	"github.com/travis-burmaster/bmasterai/internal/qdrantstore"
)

func callToolRequest(t *testing.T, args any) *mcp.CallToolRequest {
	t.Helper()
	data, err := json.Marshal(args)
	require.NoError(t, err)
	return &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: data},
	}
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestRagSearchHandler(t *testing.T) {
	handler := ragSearchHandler(func(ctx context.Context, q string) (string, []qdrantstore.SearchResult, error) {
		assert.Equal(t, "how to deploy?", q)
		return "Use the deploy command.", []qdrantstore.SearchResult{
			{Document: qdrantstore.Document{Title: "Deploy guide"}, Score: 0.92},
		}, nil
	})

	result, err := handler(context.Background(), callToolRequest(t, ragSearchArgs{Query: "how to deploy?"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	text := textOf(t, result)
	assert.Contains(t, text, "Use the deploy command.")
	assert.Contains(t, text, "Deploy guide")
}

func TestRagSearchHandler_EmptyQuery(t *testing.T) {
	handler := ragSearchHandler(func(ctx context.Context, q string) (string, []qdrantstore.SearchResult, error) {
		t.Fatal("querier must not be called")
		return "", nil, nil
	})

	result, err := handler(context.Background(), callToolRequest(t, ragSearchArgs{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestRagSearchHandler_QuerierError(t *testing.T) {
	handler := ragSearchHandler(func(ctx context.Context, q string) (string, []qdrantstore.SearchResult, error) {
		return "", nil, fmt.Errorf("qdrant unreachable")
	})

	result, err := handler(context.Background(), callToolRequest(t, ragSearchArgs{Query: "q"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "qdrant unreachable")
}

func TestMonitorStatsHandler(t *testing.T) {
	store, err := monitor.NewStoreWithPath(filepath.Join(t.TempDir(), "metrics.db"))
	require.NoError(t, err)
	monitor.SetStoreForTesting(store)
	t.Cleanup(monitor.ResetForTesting)

	monitor.RecordInvocation(monitor.ModeChat)
	monitor.RecordInvocation(monitor.ModeChat)

	handler := monitorStatsHandler()
	result, err := handler(context.Background(), &mcp.CallToolRequest{})
	require.NoError(t, err)

	text := textOf(t, result)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &payload))
	invocations, ok := payload["invocations"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), invocations["chat"])
}

func TestToolDefinitions(t *testing.T) {
	search := ragSearchTool()
	assert.Equal(t, "rag_search", search.Name)
	require.NotNil(t, search.InputSchema)
	schema, ok := search.InputSchema.(*jsonschema.Schema)
	require.True(t, ok)
	assert.Contains(t, schema.Required, "query")

	stats := monitorStatsTool()
	assert.Equal(t, "monitor_stats", stats.Name)
}
