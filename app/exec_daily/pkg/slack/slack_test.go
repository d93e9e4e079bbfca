package slack

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/model"
)

func TestFormatList(t *testing.T) {
	assert.Equal(t, "_None_", FormatList(nil))
	assert.Equal(t, "_None_", FormatList([]string{}))
	assert.Equal(t, "1. a", FormatList([]string{"a"}))
	assert.Equal(t, "1. a\n2. b", FormatList([]string{"a", "b"}))
}

func TestDigestBuild(t *testing.T) {
	art := &model.ReportArtifact{
		Date:            "2025-11-28",
		JSONLocator:     "/reports/2025/11/daily-2025-11-28.json",
		MarkdownLocator: "/reports/2025/11/daily-2025-11-28.md",
	}
	result := &model.ReportResult{
		Decisions: []string{"Ship v2"},
		Actions:   []string{},
		Deltas:    []string{"latency -12%"},
	}

	payload := NewDigest(art, result, "").Build()

	require.Len(t, payload.Blocks, 5)
	assert.Equal(t, "header", payload.Blocks[0].Type)
	assert.Equal(t, "Executive Daily — 2025-11-28", payload.Blocks[0].Text.Text)
	assert.Equal(t, "*Decisions*\n1. Ship v2", payload.Blocks[1].Text.Text)
	assert.Equal(t, "mrkdwn", payload.Blocks[1].Text.Type)
	assert.Equal(t, "*Actions (next 48h)*\n_None_", payload.Blocks[2].Text.Text)
	assert.Equal(t, "*Deltas*\n1. latency -12%", payload.Blocks[3].Text.Text)

	row := payload.Blocks[4]
	assert.Equal(t, "actions", row.Type)
	require.Len(t, row.Elements, 2)
	assert.Equal(t, "Open JSON", row.Elements[0].Text.Text)
	assert.Equal(t, "/reports/2025/11/daily-2025-11-28.json", row.Elements[0].URL)
	assert.Equal(t, "Open Markdown", row.Elements[1].Text.Text)
	assert.Equal(t, "/reports/2025/11/daily-2025-11-28.md", row.Elements[1].URL)
}

func TestDigestBuildJSONShape(t *testing.T) {
	payload := Digest{Date: "2025-11-28", JSONURL: "/a.json", MarkdownURL: "/a.md"}.Build()

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"blocks": [
		{"type": "header", "text": {"type": "plain_text", "text": "Executive Daily — 2025-11-28"}},
		{"type": "section", "text": {"type": "mrkdwn", "text": "*Decisions*\n_None_"}},
		{"type": "section", "text": {"type": "mrkdwn", "text": "*Actions (next 48h)*\n_None_"}},
		{"type": "section", "text": {"type": "mrkdwn", "text": "*Deltas*\n_None_"}},
		{"type": "actions", "elements": [
			{"type": "button", "text": {"type": "plain_text", "text": "Open JSON"}, "url": "/a.json"},
			{"type": "button", "text": {"type": "plain_text", "text": "Open Markdown"}, "url": "/a.md"}
		]}
	]}`, string(data))
}

func TestNewDigestAbsoluteURLs(t *testing.T) {
	art := &model.ReportArtifact{
		Date:            "2025-11-28",
		JSONLocator:     "/reports/2025/11/daily-2025-11-28.json",
		MarkdownLocator: "/reports/2025/11/daily-2025-11-28.md",
	}
	d := NewDigest(art, &model.ReportResult{}, "https://ops.example.com/")

	assert.Equal(t, "https://ops.example.com/reports/2025/11/daily-2025-11-28.json", d.JSONURL)
	assert.Equal(t, "https://ops.example.com/reports/2025/11/daily-2025-11-28.md", d.MarkdownURL)
}

func TestWebhookPost(t *testing.T) {
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	payload := Digest{Date: "2025-11-28"}.Build()
	require.NoError(t, NewWebhook(srv.URL, time.Second).Post(context.Background(), payload))
	assert.Equal(t, payload, got)
}

func TestWebhookPostNotConfigured(t *testing.T) {
	w := NewWebhook("  ", 0)
	assert.False(t, w.Configured())
	assert.ErrorIs(t, w.Post(context.Background(), Payload{}), ErrNoWebhook)
}

func TestWebhookPostFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("invalid_token"))
	}))
	defer srv.Close()

	err := NewWebhook(srv.URL, time.Second).Post(context.Background(), Payload{})

	var notifyErr *NotificationError
	require.True(t, errors.As(err, &notifyErr))
	assert.Equal(t, http.StatusForbidden, notifyErr.StatusCode)
	assert.Equal(t, "slack webhook failed: 403 invalid_token", err.Error())
}

func TestWebhookPostTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := NewWebhook(url, time.Second).Post(context.Background(), Payload{})

	var notifyErr *NotificationError
	require.True(t, errors.As(err, &notifyErr))
	assert.Zero(t, notifyErr.StatusCode)
}
