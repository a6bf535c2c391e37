package slackconn

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travis-burmaster/bmasterai/internal/monitor"
)

func TestNewWebhookNotifier_EmptyURL(t *testing.T) {
	_, err := NewWebhookNotifier("")
	assert.Error(t, err)
}

func TestWebhookNotifier_Notify(t *testing.T) {
	var payload slack.WebhookMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &payload))
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	n, err := NewWebhookNotifier(server.URL, WithUsername("alerts"), WithChannel("#ops"))
	require.NoError(t, err)

	err = n.Notify(context.Background(), "High error rate", "agent worker-1 exceeded 25% errors", monitor.LevelCritical)
	require.NoError(t, err)

	assert.Equal(t, "alerts", payload.Username)
	assert.Equal(t, "#ops", payload.Channel)
	require.Len(t, payload.Attachments, 1)
	att := payload.Attachments[0]
	assert.Equal(t, "High error rate", att.Title)
	assert.Equal(t, levelColors[monitor.LevelCritical], att.Color)
	require.Len(t, att.Fields, 1)
	assert.Equal(t, "critical", att.Fields[0].Value)
}

func TestWebhookNotifier_UnknownLevelFallsBackToInfo(t *testing.T) {
	var payload slack.WebhookMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	n, err := NewWebhookNotifier(server.URL)
	require.NoError(t, err)
	require.NoError(t, n.Notify(context.Background(), "t", "m", monitor.Level("bogus")))
	assert.Equal(t, levelColors[monitor.LevelInfo], payload.Attachments[0].Color)
}

func TestWebhookNotifier_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no_service", http.StatusInternalServerError)
	}))
	defer server.Close()

	n, err := NewWebhookNotifier(server.URL)
	require.NoError(t, err)
	assert.Error(t, n.Notify(context.Background(), "t", "m", monitor.LevelInfo))
}

func TestWebhookNotifier_Name(t *testing.T) {
	n, err := NewWebhookNotifier("https://hooks.slack.com/services/x")
	require.NoError(t, err)
	assert.Equal(t, "slack", n.Name())
}
