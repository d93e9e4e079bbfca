package repo

import (
	"context"

	"github.com/iWorld-y/exec_daily/app/display/internal/domain"
	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/model"
)

// ReportRepo 报告仓库接口
type ReportRepo interface {
	// ListDates 列出已落盘报告的日期
	ListDates(ctx context.Context) ([]string, error)
	// ReadReport 读取某日的 json 或 md 文件
	ReadReport(ctx context.Context, req model.ReportRequest, ext string) (*domain.ReportFile, error)
	// Locator 报告的公开访问路径
	Locator(req model.ReportRequest, ext string) string
}
