package data

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/exec_daily/app/display/internal/domain"
	"github.com/iWorld-y/exec_daily/app/display/internal/repo"
	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/model"
	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/storage"
)

type reportRepo struct {
	data *Data
	log  *log.Helper
}

func NewReportRepo(data *Data, logger log.Logger) repo.ReportRepo {
	return &reportRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *reportRepo) ListDates(ctx context.Context) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(r.data.root, "*", "*", "daily-*.*"))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var dates []string
	for _, m := range matches {
		req, ok := r.parse(m)
		if !ok {
			continue
		}
		if _, dup := seen[req.Date()]; dup {
			continue
		}
		seen[req.Date()] = struct{}{}
		dates = append(dates, req.Date())
	}
	return dates, nil
}

// parse 只接受 <root>/<YYYY>/<MM>/daily-<date>.{json,md} 且目录与日期一致的文件
func (r *reportRepo) parse(name string) (model.ReportRequest, bool) {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	if ext != ".json" && ext != ".md" {
		return model.ReportRequest{}, false
	}
	date := strings.TrimSuffix(strings.TrimPrefix(base, "daily-"), ext)
	req, err := model.NewReportRequest(date)
	if err != nil {
		return model.ReportRequest{}, false
	}
	if filepath.Dir(name) != r.data.store.Dir(req) {
		r.log.Debugf("skip misplaced report file %s", name)
		return model.ReportRequest{}, false
	}
	return req, true
}

func (r *reportRepo) ReadReport(ctx context.Context, req model.ReportRequest, ext string) (*domain.ReportFile, error) {
	name := filepath.Join(r.data.store.Dir(req), storage.FileName(req.Date(), ext))
	info, err := os.Stat(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("REPORT_NOT_FOUND", "report not found")
		}
		return nil, err
	}
	content, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return &domain.ReportFile{
		Date:    req.Date(),
		Ext:     ext,
		Content: content,
		ModTime: info.ModTime(),
	}, nil
}

func (r *reportRepo) Locator(req model.ReportRequest, ext string) string {
	return r.data.store.Locator(req, ext)
}
