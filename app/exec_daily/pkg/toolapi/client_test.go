package toolapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/model"
)

func newToolServer(t *testing.T, status int, body string) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var calls []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tools/ops.report.daily", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		calls = append(calls, req)

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func mustRequest(t *testing.T, date string) model.ReportRequest {
	t.Helper()
	req, err := model.NewReportRequest(date)
	require.NoError(t, err)
	return req
}

func TestDailyReport(t *testing.T) {
	srv, calls := newToolServer(t, http.StatusOK,
		`{"decisions": ["Ship v2"], "actions": [], "deltas": ["latency -12%"]}`)

	c := NewClient(srv.URL+"/", time.Second)
	result, err := c.DailyReport(context.Background(), mustRequest(t, "2025-11-28"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Ship v2"}, result.Decisions)
	assert.Empty(t, result.Actions)
	assert.Equal(t, []string{"latency -12%"}, result.Deltas)

	require.Len(t, *calls, 1, "exactly one attempt")
	assert.Equal(t, map[string]any{"input": map[string]any{"date": "2025-11-28"}}, (*calls)[0])
}

func TestDailyReportFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantStatus: 500, wantMsg: "boom"},
		{name: "not found", status: http.StatusNotFound, body: "", wantStatus: 404},
		{name: "error marker", status: http.StatusOK, body: `{"error": "upstream timeout"}`, wantStatus: 200, wantMsg: "upstream timeout"},
		{name: "array body", status: http.StatusOK, body: `[1,2]`, wantStatus: 200, wantMsg: "not a JSON object"},
		{name: "garbage body", status: http.StatusOK, body: `<html>`, wantStatus: 200, wantMsg: "not a JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := newToolServer(t, tt.status, tt.body)

			_, err := NewClient(srv.URL, time.Second).DailyReport(context.Background(), mustRequest(t, "2025-11-28"))
			require.Error(t, err)

			var toolErr *Error
			require.True(t, errors.As(err, &toolErr))
			assert.Equal(t, ToolDailyReport, toolErr.Tool)
			assert.Equal(t, tt.wantStatus, toolErr.StatusCode)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
			assert.Len(t, *calls, 1)
		})
	}
}

func TestDailyReportKeepsUnexpectedShapes(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantActions  []string
		wantWarnings int
	}{
		{name: "structured items", body: `{"actions": [{"title": "x"}, null]}`, wantActions: []string{`{"title":"x"}`, ""}},
		{name: "list field not an array", body: `{"actions": "Call vendor"}`, wantWarnings: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newToolServer(t, http.StatusOK, tt.body)

			result, err := NewClient(srv.URL, time.Second).DailyReport(context.Background(), mustRequest(t, "2025-11-28"))
			require.NoError(t, err)

			assert.Equal(t, tt.wantActions, result.Actions)
			assert.Len(t, result.Warnings, tt.wantWarnings)
			assert.JSONEq(t, tt.body, string(result.Raw))
		})
	}
}

func TestInvokeTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Invoke(context.Background(), ToolDailyReport, nil)

	var toolErr *Error
	require.True(t, errors.As(err, &toolErr))
	assert.Zero(t, toolErr.StatusCode)
	assert.Contains(t, err.Error(), "request failed")
}

func TestInvokeTimeout(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(done) })

	_, err := NewClient(srv.URL, 50*time.Millisecond).Invoke(context.Background(), ToolDailyReport, nil)
	require.Error(t, err)
}

func TestValidateReport(t *testing.T) {
	assert.NoError(t, ValidateReport([]byte(`{}`)))
	assert.NoError(t, ValidateReport([]byte(`{"decisions": null, "other": {"x": [1]}}`)))
	assert.NoError(t, ValidateReport([]byte(`{"deltas": [1, "two", false]}`)))
	assert.NoError(t, ValidateReport([]byte(`{"decisions": [{"title": "Ship v2"}, null]}`)))
	assert.Error(t, ValidateReport([]byte(`{"decisions": "Ship v2"}`)))
	assert.Error(t, ValidateReport([]byte(`{"deltas": {"a": 1}}`)))
	assert.Error(t, ValidateReport([]byte(`"x"`)))
}
