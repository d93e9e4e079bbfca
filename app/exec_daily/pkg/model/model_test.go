package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReportRequest(t *testing.T) {
	tests := []struct {
		date    string
		wantErr bool
	}{
		{date: "2025-11-28"},
		{date: "2024-02-29"},
		{date: "2025-02-30", wantErr: true},
		{date: "2025-1-28", wantErr: true},
		{date: "20251128", wantErr: true},
		{date: "2025/11/28", wantErr: true},
		{date: "2025-11-28T00:00:00Z", wantErr: true},
		{date: "", wantErr: true},
		{date: "../../etc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			req, err := NewReportRequest(tt.date)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.date, req.Date())
		})
	}
}

func TestReportRequestPartition(t *testing.T) {
	req, err := NewReportRequest("2025-11-28")
	require.NoError(t, err)
	assert.Equal(t, "2025", req.Year())
	assert.Equal(t, "11", req.Month())
}

func TestDecodeReportResult(t *testing.T) {
	body := []byte(`{"summary": "ok", "decisions": ["Ship v2"], "actions": [], "deltas": ["latency -12%"], "score": 7}`)

	result, err := DecodeReportResult(body)
	require.NoError(t, err)

	assert.Equal(t, []string{"Ship v2"}, result.Decisions)
	assert.Empty(t, result.Actions)
	assert.Equal(t, []string{"latency -12%"}, result.Deltas)
	assert.Equal(t, "ok", result.Extra["summary"])
	assert.EqualValues(t, 7, result.Extra["score"])
	assert.NotContains(t, result.Extra, "decisions")
	assert.JSONEq(t, string(body), string(result.Raw))
}

func TestDecodeReportResultMissingFields(t *testing.T) {
	result, err := DecodeReportResult([]byte(`{"summary": "quiet day"}`))
	require.NoError(t, err)

	assert.Nil(t, result.Decisions)
	assert.Nil(t, result.Actions)
	assert.Nil(t, result.Deltas)
}

func TestDecodeReportResultScalarItems(t *testing.T) {
	result, err := DecodeReportResult([]byte(`{"deltas": [3, "p95 -40ms", true], "decisions": [true, 1.5, false, 1e21]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "p95 -40ms", "true"}, result.Deltas)
	assert.Equal(t, []string{"true", "1.5", "false", "1000000000000000000000"}, result.Decisions)
}

func TestDecodeReportResultStructuredItems(t *testing.T) {
	body := `{"decisions": [{"title": "Ship v2"}, null, ["a", 1]], "actions": ["Call vendor"]}`
	result, err := DecodeReportResult([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, []string{`{"title":"Ship v2"}`, "", `["a",1]`}, result.Decisions)
	assert.Equal(t, []string{"Call vendor"}, result.Actions)
	assert.JSONEq(t, body, string(result.Raw))
}

func TestDecodeReportResultNonListField(t *testing.T) {
	body := `{"decisions": "x", "deltas": {"a": 1}, "actions": null}`
	result, err := DecodeReportResult([]byte(body))
	require.NoError(t, err)

	assert.Empty(t, result.Decisions)
	assert.Empty(t, result.Deltas)
	assert.Empty(t, result.Actions)
	assert.JSONEq(t, body, string(result.Raw))
}

func TestItemText(t *testing.T) {
	tests := []struct {
		item any
		want string
	}{
		{item: nil, want: ""},
		{item: "Ship v2", want: "Ship v2"},
		{item: true, want: "true"},
		{item: float64(42), want: "42"},
		{item: 0.25, want: "0.25"},
		{item: map[string]any{"k": "v"}, want: `{"k":"v"}`},
		{item: []any{"a", nil}, want: `["a",null]`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ItemText(tt.item))
	}
}

func TestReportRequestZeroValue(t *testing.T) {
	var req ReportRequest
	assert.False(t, req.Valid())
	assert.Empty(t, req.Date())
	assert.Empty(t, req.Year())
	assert.Empty(t, req.Month())
}

func TestDecodeReportResultRejectsNonObject(t *testing.T) {
	for _, body := range []string{`[]`, `"text"`, `null`, `{`} {
		_, err := DecodeReportResult([]byte(body))
		assert.Error(t, err, body)
	}
}

func TestIndentedJSONPreservesKeyOrder(t *testing.T) {
	result, err := DecodeReportResult([]byte(`{"zeta":1,"decisions":["a"],"alpha":{"b":2}}`))
	require.NoError(t, err)

	out, err := result.IndentedJSON()
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"zeta\": 1,\n  \"decisions\": [\n    \"a\"\n  ],\n  \"alpha\": {\n    \"b\": 2\n  }\n}", string(out))
}

func TestIndentedJSONWithoutRaw(t *testing.T) {
	result := &ReportResult{Decisions: []string{"a"}, Extra: map[string]any{"note": "x"}}

	out, err := result.IndentedJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"decisions":["a"],"note":"x"}`, string(out))
}
