package ghclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(context.Background(), "")
	client.SetBaseURL(server.URL)
	return client
}

func TestGetRepository(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octocat/hello", r.URL.Path)
		assert.Equal(t, "2022-11-28", r.Header.Get("X-GitHub-Api-Version"))
		fmt.Fprint(w, `{"full_name":"octocat/hello","default_branch":"main","language":"Go","stargazers_count":12}`)
	})

	repo, err := client.GetRepository(context.Background(), "octocat", "hello")
	require.NoError(t, err)
	assert.Equal(t, "octocat/hello", repo.FullName)
	assert.Equal(t, "main", repo.DefaultBranch)
	assert.Equal(t, 12, repo.Stars)
}

func TestGetFileContent_DecodesBase64(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("# README\nhello\n"))
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octocat/hello/contents/README.md", r.URL.Path)
		resp := map[string]any{"name": "README.md", "path": "README.md", "type": "file", "content": encoded}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	content, err := client.GetFileContent(context.Background(), "octocat", "hello", "README.md")
	require.NoError(t, err)
	assert.Equal(t, "# README\nhello\n", content)
}

func TestGetFileContent_RejectsDirectory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name":"docs","path":"docs","type":"dir"}`)
	})

	_, err := client.GetFileContent(context.Background(), "octocat", "hello", "docs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a file")
}

func TestCreateBranch(t *testing.T) {
	var payload map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/repos/octocat/hello/git/refs", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusCreated)
	})

	err := client.CreateBranch(context.Background(), "octocat", "hello", "feature-x", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "refs/heads/feature-x", payload["ref"])
	assert.Equal(t, "abc123", payload["sha"])
}

func TestCreatePullRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octocat/hello/pulls", r.URL.Path)
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "feature-x", payload["head"])
		assert.Equal(t, "main", payload["base"])
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"number":7,"title":"Add feature","html_url":"https://github.com/octocat/hello/pull/7","state":"open"}`)
	})

	pr, err := client.CreatePullRequest(context.Background(), "octocat", "hello", "Add feature", "body", "feature-x", "main")
	require.NoError(t, err)
	assert.Equal(t, 7, pr.Number)
	assert.Equal(t, "open", pr.State)
}

func TestAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})

	_, err := client.GetRepository(context.Background(), "octocat", "missing")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "Not Found")
}
