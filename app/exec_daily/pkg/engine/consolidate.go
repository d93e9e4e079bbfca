package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/config"
	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/langfuse"
)

// TraceLister 列出一段时间内的 trace
type TraceLister interface {
	ListTraces(ctx context.Context, since time.Time) ([]langfuse.Trace, error)
}

// SummaryWriter 保存整理摘要
type SummaryWriter interface {
	Append(ctx context.Context, summary string) (int64, error)
}

// Consolidator 每日记忆整理：统计窗口内 trace 数并写入语义日志
type Consolidator struct {
	traces TraceLister
	writer SummaryWriter
	window time.Duration
	log    logrus.FieldLogger

	// Now 当前时间，测试中可替换
	Now func() time.Time
}

// NewConsolidator 创建整理任务
func NewConsolidator(traces TraceLister, writer SummaryWriter, window time.Duration, log logrus.FieldLogger) *Consolidator {
	if window <= 0 {
		window = 24 * time.Hour
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Consolidator{traces: traces, writer: writer, window: window, log: log, Now: time.Now}
}

// NewTraceClient 根据配置创建 Langfuse 客户端，分页请求按 rpm/qps 限流
func NewTraceClient(cfg *config.Config) *langfuse.Client {
	limit := rate.Limit(float64(cfg.Concurrency.RPM) / 60.0)
	limiter := rate.NewLimiter(limit, cfg.Concurrency.QPS)

	return langfuse.NewClient(langfuse.Options{
		BaseURL:   cfg.Langfuse.BaseURL,
		APIKey:    cfg.Langfuse.APIKey,
		PublicKey: cfg.Langfuse.PublicKey,
		SecretKey: cfg.Langfuse.SecretKey,
		PageSize:  cfg.Langfuse.PageSize,
		Timeout:   time.Duration(cfg.Langfuse.Timeout) * time.Second,
		Limiter:   limiter,
	})
}

// Summary 整理摘要文本
func Summary(now time.Time, traces int) string {
	return fmt.Sprintf("Daily ops summary %s — traces=%d", now.UTC().Format(time.RFC3339), traces)
}

// Run 执行一次整理，返回写入的摘要
func (c *Consolidator) Run(ctx context.Context) (string, error) {
	now := c.Now().UTC()
	since := now.Add(-c.window)

	traces, err := c.traces.ListTraces(ctx, since)
	if err != nil {
		return "", fmt.Errorf("list traces: %w", err)
	}
	c.log.WithFields(logrus.Fields{"since": since.Format(time.RFC3339), "traces": len(traces)}).Info("traces fetched")

	summary := Summary(now, len(traces))
	id, err := c.writer.Append(ctx, summary)
	if err != nil {
		return "", fmt.Errorf("save summary: %w", err)
	}
	c.log.WithField("id", id).Info(summary)
	return summary, nil
}
