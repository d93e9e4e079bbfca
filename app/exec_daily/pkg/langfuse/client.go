package langfuse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// Client Langfuse 公共 API 客户端
type Client struct {
	baseURL   string
	apiKey    string
	publicKey string
	secretKey string
	pageSize  int
	client    *http.Client
	limiter   *rate.Limiter
}

// Options 客户端参数
type Options struct {
	BaseURL   string
	APIKey    string
	PublicKey string
	SecretKey string
	PageSize  int
	Timeout   time.Duration
	Limiter   *rate.Limiter
}

// NewClient 创建一个新的 Langfuse 客户端
func NewClient(opts Options) *Client {
	t := opts.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Client{
		baseURL:   opts.BaseURL,
		apiKey:    opts.APIKey,
		publicKey: opts.PublicKey,
		secretKey: opts.SecretKey,
		pageSize:  pageSize,
		client:    &http.Client{Timeout: t},
		limiter:   limiter,
	}
}

// Trace 单条 trace 摘要
type Trace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"sessionId,omitempty"`
	UserID    string    `json:"userId,omitempty"`
}

// TracesResponse /api/public/traces 响应结构
type TracesResponse struct {
	Data []Trace `json:"data"`
	Meta Meta    `json:"meta"`
}

// Meta 分页信息
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// ListTraces 拉取 since 之后的全部 trace，按页请求，每页之间受限流器约束
func (c *Client) ListTraces(ctx context.Context, since time.Time) ([]Trace, error) {
	var traces []Trace
	for page := 1; ; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.fetchPage(ctx, since, page)
		if err != nil {
			return nil, err
		}
		traces = append(traces, resp.Data...)

		if len(resp.Data) == 0 || page >= resp.Meta.TotalPages {
			return traces, nil
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, since time.Time, page int) (*TracesResponse, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	u = u.JoinPath("api", "public", "traces")

	q := u.Query()
	q.Set("fromTimestamp", since.UTC().Format(time.RFC3339))
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(c.pageSize))
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	c.authorize(httpReq)

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("langfuse api error (status %d): %s", res.StatusCode, string(body))
	}

	var tracesResp TracesResponse
	if err := json.NewDecoder(res.Body).Decode(&tracesResp); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}
	return &tracesResp, nil
}

// authorize 有公私钥时用 Basic，否则退回 Bearer api key
func (c *Client) authorize(req *http.Request) {
	switch {
	case c.publicKey != "" && c.secretKey != "":
		req.SetBasicAuth(c.publicKey, c.secretKey)
	case c.apiKey != "":
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
