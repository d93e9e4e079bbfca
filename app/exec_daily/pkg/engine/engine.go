package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/config"
	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/model"
	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/slack"
	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/storage"
	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/toolapi"
)

// State 流水线状态
type State string

const (
	StateProducing  State = "PRODUCING"
	StatePersisting State = "PERSISTING"
	StateNotifying  State = "NOTIFYING"
	StateDone       State = "DONE"
	StateFailed     State = "FAILED"
)

// StageError 致命阶段错误，Stage 只会是 PRODUCING 或 PERSISTING
type StageError struct {
	Stage State
	Err   error
}

func (e *StageError) Error() string {
	switch e.Stage {
	case StateProducing:
		return fmt.Sprintf("report production failed: %v", e.Err)
	case StatePersisting:
		return fmt.Sprintf("report persistence failed: %v", e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// ProductionError 报告生成失败
func ProductionError(err error) error { return &StageError{Stage: StateProducing, Err: err} }

// PersistenceError 报告落盘失败
func PersistenceError(err error) error { return &StageError{Stage: StatePersisting, Err: err} }

var errInvalidRequest = errors.New("invalid report request: date must be YYYY-MM-DD")

// Producer 生成某日报告
type Producer interface {
	DailyReport(ctx context.Context, req model.ReportRequest) (*model.ReportResult, error)
}

// Persister 落盘报告
type Persister interface {
	Save(result *model.ReportResult, req model.ReportRequest) (*model.ReportArtifact, error)
}

// Notifier 发送摘要
type Notifier interface {
	Configured() bool
	Post(ctx context.Context, payload slack.Payload) error
}

// Engine 日报流水线
type Engine struct {
	jobName       string
	publicBaseURL string
	producer      Producer
	persister     Persister
	notifier      Notifier
	log           logrus.FieldLogger
}

// Options 构造参数
type Options struct {
	JobName       string
	PublicBaseURL string
	Producer      Producer
	Persister     Persister
	Notifier      Notifier
	Logger        logrus.FieldLogger
}

// New 由已构造好的组件创建引擎
func New(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{
		jobName:       opts.JobName,
		publicBaseURL: opts.PublicBaseURL,
		producer:      opts.Producer,
		persister:     opts.Persister,
		notifier:      opts.Notifier,
		log:           log,
	}
}

// NewEngine 根据配置创建引擎
func NewEngine(cfg *config.Config, log logrus.FieldLogger) *Engine {
	return New(Options{
		JobName:       cfg.JobName,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
		Producer:      toolapi.NewClient(cfg.MCP.BaseURL, time.Duration(cfg.MCP.Timeout)*time.Second),
		Persister:     storage.NewReportStore(cfg.Storage.Root, cfg.Storage.PublicPrefix),
		Notifier:      slack.NewWebhook(cfg.Slack.WebhookURL, time.Duration(cfg.Slack.Timeout)*time.Second),
		Logger:        log,
	})
}

// Outcome 一次运行的结果
type Outcome struct {
	RunID    string
	State    State
	Result   *model.ReportResult
	Artifact *model.ReportArtifact

	// SoftFailure 摘要未送达（未配置或发送失败），报告已落盘
	SoftFailure bool
	NotifyErr   error
}

// RunDaily 依次执行生成、落盘、通知。前两步失败返回 *StageError，通知失败只记录在 Outcome 中。
func (e *Engine) RunDaily(ctx context.Context, req model.ReportRequest) (*Outcome, error) {
	out := &Outcome{RunID: uuid.NewString(), State: StateProducing}
	log := e.log.WithFields(logrus.Fields{"job": e.jobName, "date": req.Date(), "run_id": out.RunID})

	if !req.Valid() {
		return e.fail(log, out, ProductionError(errInvalidRequest))
	}

	log.WithField("stage", StateProducing).Info("stage started")
	result, err := e.producer.DailyReport(ctx, req)
	if err != nil {
		return e.fail(log, out, ProductionError(err))
	}
	out.Result = result
	for _, w := range result.Warnings {
		log.WithField("stage", StateProducing).Warn(w)
	}

	out.State = StatePersisting
	log.WithField("stage", StatePersisting).Info("stage started")
	art, err := e.persister.Save(result, req)
	if err != nil {
		return e.fail(log, out, PersistenceError(err))
	}
	out.Artifact = art
	log.WithFields(logrus.Fields{
		"stage": StatePersisting,
		"json":  art.JSONLocator,
		"md":    art.MarkdownLocator,
	}).Info("report persisted")

	out.State = StateNotifying
	log.WithField("stage", StateNotifying).Info("stage started")
	if err := e.notify(ctx, art, result); err != nil {
		out.SoftFailure = true
		out.NotifyErr = err
		entry := log.WithField("stage", StateNotifying)
		if errors.Is(err, slack.ErrNoWebhook) {
			entry.Warn("slack webhook not configured, digest skipped")
		} else {
			entry.WithError(err).Warn("digest not delivered")
		}
	}

	out.State = StateDone
	log.WithFields(logrus.Fields{"stage": StateDone, "soft_failure": out.SoftFailure}).Info("pipeline finished")
	return out, nil
}

func (e *Engine) notify(ctx context.Context, art *model.ReportArtifact, result *model.ReportResult) error {
	if e.notifier == nil || !e.notifier.Configured() {
		return slack.ErrNoWebhook
	}
	payload := slack.NewDigest(art, result, e.publicBaseURL).Build()
	return e.notifier.Post(ctx, payload)
}

func (e *Engine) fail(log logrus.FieldLogger, out *Outcome, err error) (*Outcome, error) {
	var stageErr *StageError
	stage := out.State
	if errors.As(err, &stageErr) {
		stage = stageErr.Stage
	}
	out.State = StateFailed
	log.WithFields(logrus.Fields{"stage": stage}).WithError(err).Error("pipeline failed")
	return out, err
}
