// Package telegram implements a minimal Telegram Bot API client covering the
// send surface the toolkit needs: messages (with automatic chunking),
// documents, and photos.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/travis-burmaster/bmasterai/internal/monitor"
)

const defaultBaseURL = "https://api.telegram.org"

// Client talks to the Telegram Bot API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	parseMode  string

	// DefaultChatID receives Notify() alerts.
	DefaultChatID int64
}

// User is the subset of the Telegram user object returned by getMe.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

// SentMessage is the subset of the message object the client surfaces.
type SentMessage struct {
	MessageID int64 `json:"message_id"`
	Chat      struct {
		ID int64 `json:"id"`
	} `json:"chat"`
	Date int64 `json:"date"`
}

// apiResponse is the envelope every Bot API method returns.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

// NewClient creates a Telegram client for the given bot token.
func NewClient(token string, timeout time.Duration) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		token:      token,
		parseMode:  "HTML",
	}, nil
}

// SetBaseURL overrides the API endpoint. Tests point this at an httptest
// server.
func (c *Client) SetBaseURL(baseURL string) { c.baseURL = baseURL }

// SetParseMode sets the parse_mode applied to outgoing text ("HTML",
// "MarkdownV2", or empty for plain text).
func (c *Client) SetParseMode(mode string) { c.parseMode = mode }

// GetMe verifies the token and returns the bot identity.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	raw, err := c.call(ctx, "getMe", url.Values{})
	if err != nil {
		return nil, err
	}
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("failed to parse getMe result: %w", err)
	}
	return &user, nil
}

// SendMessage delivers text to a chat, transparently splitting messages that
// exceed the Bot API length limit. It returns one SentMessage per chunk.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) ([]SentMessage, error) {
	if text == "" {
		return nil, fmt.Errorf("message text cannot be empty")
	}

	chunks := ChunkMessage(text, MaxMessageLength)
	sent := make([]SentMessage, 0, len(chunks))

	for _, chunk := range chunks {
		params := url.Values{}
		params.Set("chat_id", strconv.FormatInt(chatID, 10))
		params.Set("text", chunk)
		if c.parseMode != "" {
			params.Set("parse_mode", c.parseMode)
		}

		raw, err := c.call(ctx, "sendMessage", params)
		if err != nil {
			return sent, fmt.Errorf("sendMessage failed after %d chunk(s): %w", len(sent), err)
		}

		var msg SentMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return sent, fmt.Errorf("failed to parse sendMessage result: %w", err)
		}
		sent = append(sent, msg)
	}

	return sent, nil
}

// SendDocument uploads a file with an optional caption.
func (c *Client) SendDocument(ctx context.Context, chatID int64, filename string, content io.Reader, caption string) (*SentMessage, error) {
	fields := map[string]string{
		"chat_id": strconv.FormatInt(chatID, 10),
	}
	if caption != "" {
		fields["caption"] = caption
	}
	return c.upload(ctx, "sendDocument", "document", filename, content, fields)
}

// SendPhoto uploads an image with an optional caption.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, filename string, content io.Reader, caption string) (*SentMessage, error) {
	fields := map[string]string{
		"chat_id": strconv.FormatInt(chatID, 10),
	}
	if caption != "" {
		fields["caption"] = caption
	}
	return c.upload(ctx, "sendPhoto", "photo", filename, content, fields)
}

// Notify implements monitor.Notifier by sending the alert to DefaultChatID.
func (c *Client) Notify(ctx context.Context, title, message string, level monitor.Level) error {
	if c.DefaultChatID == 0 {
		return fmt.Errorf("telegram notifier requires a default chat id")
	}
	text := fmt.Sprintf("[%s] %s\n%s", level, title, message)
	_, err := c.SendMessage(ctx, c.DefaultChatID, text)
	return err
}

// Name implements monitor.Notifier.
func (c *Client) Name() string { return "telegram" }

func (c *Client) call(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	return decodeResponse(method, resp.Body)
}

func (c *Client) upload(ctx context.Context, method, field, filename string, content io.Reader, fields map[string]string) (*SentMessage, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}

	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to copy file content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := decodeResponse(method, resp.Body)
	if err != nil {
		return nil, err
	}

	var msg SentMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse %s result: %w", method, err)
	}
	return &msg, nil
}

func decodeResponse(method string, body io.Reader) (json.RawMessage, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", method, err)
	}
	if !envelope.OK {
		return nil, fmt.Errorf("telegram %s error %d: %s", method, envelope.ErrorCode, envelope.Description)
	}
	return envelope.Result, nil
}
