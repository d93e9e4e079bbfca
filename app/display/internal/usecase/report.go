package usecase

import (
	"bytes"
	"context"
	"regexp"
	"sort"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/iWorld-y/exec_daily/app/display/internal/domain"
	"github.com/iWorld-y/exec_daily/app/display/internal/repo"
	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/model"
)

var (
	yearRe = regexp.MustCompile(`^\d{4}$`)
	monRe  = regexp.MustCompile(`^\d{2}$`)
	fileRe = regexp.MustCompile(`^daily-(\d{4}-\d{2}-\d{2})\.(json|md)$`)
)

// ReportUseCase 报告业务逻辑
type ReportUseCase struct {
	repo repo.ReportRepo
	md   goldmark.Markdown
	log  *log.Helper
}

// NewReportUseCase 创建报告业务逻辑实例
func NewReportUseCase(repo repo.ReportRepo, logger log.Logger) *ReportUseCase {
	return &ReportUseCase{
		repo: repo,
		md:   goldmark.New(goldmark.WithExtensions(extension.GFM)),
		log:  log.NewHelper(logger),
	}
}

// List 列出全部报告，日期新的在前
func (uc *ReportUseCase) List(ctx context.Context) ([]*domain.ReportEntry, error) {
	dates, err := uc.repo.ListDates(ctx)
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	entries := make([]*domain.ReportEntry, 0, len(dates))
	for _, d := range dates {
		req, err := model.NewReportRequest(d)
		if err != nil {
			continue
		}
		entries = append(entries, &domain.ReportEntry{
			Date:     d,
			JSON:     uc.repo.Locator(req, "json"),
			Markdown: uc.repo.Locator(req, "md"),
		})
	}
	return entries, nil
}

// Get 按 <YYYY>/<MM>/daily-<date>.<ext> 读取报告，路径与日期不一致时视为不存在
func (uc *ReportUseCase) Get(ctx context.Context, year, month, name string) (*domain.ReportFile, error) {
	m := fileRe.FindStringSubmatch(name)
	if m == nil || !yearRe.MatchString(year) || !monRe.MatchString(month) {
		return nil, errors.NotFound("REPORT_NOT_FOUND", "report not found")
	}
	req, err := model.NewReportRequest(m[1])
	if err != nil || req.Year() != year || req.Month() != month {
		return nil, errors.NotFound("REPORT_NOT_FOUND", "report not found")
	}
	return uc.repo.ReadReport(ctx, req, m[2])
}

// RenderHTML 把 Markdown 报告渲染成 HTML 页面
func (uc *ReportUseCase) RenderHTML(f *domain.ReportFile) ([]byte, error) {
	if f.Ext != "md" {
		return nil, errors.BadRequest("FORMAT_UNSUPPORTED", "html is only available for markdown reports")
	}
	var body bytes.Buffer
	if err := uc.md.Convert(f.Content, &body); err != nil {
		return nil, err
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	page.WriteString("<title>Executive Daily Report " + f.Date + "</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}
