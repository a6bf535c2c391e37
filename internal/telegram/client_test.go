package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travis-burmaster/bmasterai/internal/monitor"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("test-token", 5*time.Second)
	require.NoError(t, err)
	client.SetBaseURL(server.URL)
	return client, server
}

func TestNewClient_EmptyToken(t *testing.T) {
	_, err := NewClient("", time.Second)
	assert.Error(t, err)
}

func TestGetMe(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/getMe", r.URL.Path)
		fmt.Fprint(w, `{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"bmasterai","username":"bmasterai_bot"}}`)
	})

	user, err := client.GetMe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.True(t, user.IsBot)
	assert.Equal(t, "bmasterai_bot", user.Username)
}

func TestSendMessage_SingleChunk(t *testing.T) {
	var gotText, gotChatID, gotParseMode string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotText = r.FormValue("text")
		gotChatID = r.FormValue("chat_id")
		gotParseMode = r.FormValue("parse_mode")
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":1,"chat":{"id":100},"date":1700000000}}`)
	})

	sent, err := client.SendMessage(context.Background(), 100, "hello")
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, int64(1), sent[0].MessageID)
	assert.Equal(t, int64(100), sent[0].Chat.ID)
	assert.Equal(t, "hello", gotText)
	assert.Equal(t, "100", gotChatID)
	assert.Equal(t, "HTML", gotParseMode)
}

func TestSendMessage_ChunksLongText(t *testing.T) {
	var calls int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.NoError(t, r.ParseForm())
		assert.LessOrEqual(t, len([]rune(r.FormValue("text"))), MaxMessageLength)
		fmt.Fprintf(w, `{"ok":true,"result":{"message_id":%d,"chat":{"id":100},"date":1700000000}}`, calls)
	})

	long := strings.Repeat("word ", 2000) // ~10000 chars
	sent, err := client.SendMessage(context.Background(), 100, long)
	require.NoError(t, err)
	assert.Greater(t, calls, 1)
	assert.Len(t, sent, calls)
}

func TestSendMessage_Empty(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty text")
	})
	_, err := client.SendMessage(context.Background(), 100, "")
	assert.Error(t, err)
}

func TestSendMessage_APIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`)
	})

	_, err := client.SendMessage(context.Background(), 100, "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "Forbidden")
}

func TestSendDocument_Multipart(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/sendDocument", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1 << 20))
		assert.Equal(t, "100", r.FormValue("chat_id"))
		assert.Equal(t, "weekly report", r.FormValue("caption"))

		file, header, err := r.FormFile("document")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "report.csv", header.Filename)

		fmt.Fprint(w, `{"ok":true,"result":{"message_id":7,"chat":{"id":100},"date":1700000000}}`)
	})

	msg, err := client.SendDocument(context.Background(), 100, "report.csv", strings.NewReader("a,b\n1,2\n"), "weekly report")
	require.NoError(t, err)
	assert.Equal(t, int64(7), msg.MessageID)
}

func TestSendPhoto_Multipart(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/sendPhoto", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1 << 20))
		_, header, err := r.FormFile("photo")
		require.NoError(t, err)
		assert.Equal(t, "chart.png", header.Filename)
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":8,"chat":{"id":100},"date":1700000000}}`)
	})

	msg, err := client.SendPhoto(context.Background(), 100, "chart.png", strings.NewReader("png-bytes"), "")
	require.NoError(t, err)
	assert.Equal(t, int64(8), msg.MessageID)
}

func TestNotify(t *testing.T) {
	var gotText string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotText = r.FormValue("text")
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":9,"chat":{"id":555},"date":1700000000}}`)
	})
	client.DefaultChatID = 555

	err := client.Notify(context.Background(), "High error rate", "agent worker-1 exceeded threshold", monitor.LevelWarning)
	require.NoError(t, err)
	assert.Contains(t, gotText, "High error rate")
	assert.Contains(t, gotText, "worker-1")
}

func TestNotify_NoDefaultChat(t *testing.T) {
	client, err := NewClient("test-token", time.Second)
	require.NoError(t, err)
	assert.Error(t, client.Notify(context.Background(), "t", "m", monitor.LevelError))
}
