package toolapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/model"
)

// ToolDailyReport 日报工具名
const ToolDailyReport = "ops.report.daily"

const defaultTimeout = 30 * time.Second

// Client 工具调用服务客户端
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient 创建一个新的工具调用客户端，timeout 为 0 时使用 30 秒
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Error 工具调用失败。服务不可达、非 2xx、返回体不是对象或带 error 字段都归为此类。
type Error struct {
	Tool       string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg != "" {
			msg += ": "
		}
		msg += e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("tool %s failed (status %d): %s", e.Tool, e.StatusCode, msg)
	}
	return fmt.Sprintf("tool %s failed: %s", e.Tool, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// invokeRequest 请求体 {"input": {...}}
type invokeRequest struct {
	Input any `json:"input"`
}

// Invoke 调用指定工具，返回原始 JSON 对象
func (c *Client) Invoke(ctx context.Context, tool string, input any) (json.RawMessage, error) {
	payload, err := json.Marshal(invokeRequest{Input: input})
	if err != nil {
		return nil, &Error{Tool: tool, Message: "marshal request failed", Err: err}
	}

	endpoint := c.baseURL + "/tools/" + url.PathEscape(tool)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Tool: tool, Message: "create request failed", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &Error{Tool: tool, Message: "request failed", Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &Error{Tool: tool, StatusCode: res.StatusCode, Message: "read body failed", Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &Error{Tool: tool, StatusCode: res.StatusCode, Message: truncate(strings.TrimSpace(string(body)), 512)}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return nil, &Error{Tool: tool, StatusCode: res.StatusCode, Message: "response is not a JSON object"}
	}
	// 服务端以 {"error": ...} 表示工具执行失败
	if marker, ok := obj["error"]; ok {
		return nil, &Error{Tool: tool, StatusCode: res.StatusCode, Message: errorText(marker)}
	}

	return json.RawMessage(body), nil
}

// DailyReport 为指定日期生成日报。已知字段形状不符时只记入 Warnings，不算失败。
func (c *Client) DailyReport(ctx context.Context, req model.ReportRequest) (*model.ReportResult, error) {
	body, err := c.Invoke(ctx, ToolDailyReport, map[string]string{"date": req.Date()})
	if err != nil {
		return nil, err
	}

	result, err := model.DecodeReportResult(body)
	if err != nil {
		return nil, &Error{Tool: ToolDailyReport, Err: err}
	}
	if err := ValidateReport(body); err != nil {
		result.Warnings = append(result.Warnings, "unexpected report shape: "+err.Error())
	}
	return result, nil
}

func errorText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
