package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// ErrNoWebhook 未配置 webhook 地址
var ErrNoWebhook = errors.New("slack webhook url not configured")

// NotificationError 摘要发送失败
type NotificationError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *NotificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("slack webhook failed: %v", e.Err)
	}
	return fmt.Sprintf("slack webhook failed: %d %s", e.StatusCode, e.Body)
}

func (e *NotificationError) Unwrap() error { return e.Err }

// Webhook Slack incoming webhook 客户端
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook 创建 webhook 客户端，timeout 为 0 时使用 10 秒
func NewWebhook(url string, timeout time.Duration) *Webhook {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Webhook{
		url:    strings.TrimSpace(url),
		client: &http.Client{Timeout: timeout},
	}
}

// Configured 是否配置了发送地址
func (w *Webhook) Configured() bool {
	return w.url != ""
}

// Post 发送一次，不重试
func (w *Webhook) Post(ctx context.Context, payload Payload) error {
	if !w.Configured() {
		return ErrNoWebhook
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(data))
	if err != nil {
		return &NotificationError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := w.client.Do(req)
	if err != nil {
		return &NotificationError{Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return &NotificationError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return nil
}
