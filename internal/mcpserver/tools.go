package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/travis-burmaster/bmasterai/internal/monitor"
	"github.com/travis-burmaster/bmasterai/internal/qdrantstore"
)

// RagQuerier is the RAG surface the rag_search tool calls. Keeping it a
// function type lets tests substitute fakes without a Qdrant connection.
type RagQuerier func(ctx context.Context, question string) (string, []qdrantstore.SearchResult, error)

// ragSearchArgs are the arguments of the rag_search tool.
type ragSearchArgs struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

func ragSearchTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "rag_search",
		Description: "Search the document knowledge base and synthesize an answer with sources",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query": {
					Type:        "string",
					Description: "Question to answer from the knowledge base",
				},
				"top_k": {
					Type:        "integer",
					Description: "Number of source documents to retrieve (1-100)",
				},
			},
			Required: []string{"query"},
		},
	}
}

func ragSearchHandler(querier RagQuerier) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ragSearchArgs
		if req.Params != nil && req.Params.Arguments != nil {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return nil, fmt.Errorf("failed to unmarshal tool arguments: %w", err)
			}
		}
		if strings.TrimSpace(args.Query) == "" {
			return errorResult("query argument is required"), nil
		}

		answer, sources, err := querier(ctx, args.Query)
		if err != nil {
			return errorResult(fmt.Sprintf("search failed: %v", err)), nil
		}

		var b strings.Builder
		b.WriteString(answer)
		if len(sources) > 0 {
			b.WriteString("\n\nSources:\n")
			for i, src := range sources {
				fmt.Fprintf(&b, "%d. %s (score %.3f)\n", i+1, src.Document.Title, src.Score)
			}
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: b.String()}},
		}, nil
	}
}

func monitorStatsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "monitor_stats",
		Description: "Report cumulative invocation counts and per-agent task statistics",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}
}

func monitorStatsHandler() mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats := monitor.GetStats()
		payload := map[string]any{"invocations": stats}

		if store := monitor.GetStore(); store != nil {
			if agents, err := store.GetAgentStats(); err == nil {
				payload["agents"] = agents
			}
		}

		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal stats: %w", err)
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
		IsError: true,
	}
}
