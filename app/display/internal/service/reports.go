package service

import (
	"encoding/json"
	nethttp "net/http"
	"strings"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/exec_daily/app/display/internal/domain"
	"github.com/iWorld-y/exec_daily/app/display/internal/usecase"
)

// ReportService 对外提供已落盘的日报
type ReportService struct {
	uc     *usecase.ReportUseCase
	prefix string
	log    *log.Helper
}

func NewReportService(uc *usecase.ReportUseCase, prefix string, logger log.Logger) *ReportService {
	return &ReportService{
		uc:     uc,
		prefix: strings.TrimRight(prefix, "/"),
		log:    log.NewHelper(logger),
	}
}

// Prefix 路由前缀
func (s *ReportService) Prefix() string {
	return s.prefix
}

// ListReply 索引响应
type ListReply struct {
	Reports []*domain.ReportEntry `json:"reports"`
}

// ServeHTTP 处理 <prefix>/index.json 与 <prefix>/<YYYY>/<MM>/daily-<date>.<ext>
func (s *ReportService) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.Method != nethttp.MethodGet && r.Method != nethttp.MethodHead {
		s.writeError(w, errors.New(nethttp.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed"))
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, s.prefix+"/")
	if rest == "index.json" {
		s.index(w, r)
		return
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 3 {
		s.writeError(w, errors.NotFound("REPORT_NOT_FOUND", "report not found"))
		return
	}

	f, err := s.uc.Get(r.Context(), parts[0], parts[1], parts[2])
	if err != nil {
		s.writeError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "html" {
		page, err := s.uc.RenderHTML(f)
		if err != nil {
			s.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
		return
	}

	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Last-Modified", f.ModTime.UTC().Format(nethttp.TimeFormat))
	_, _ = w.Write(f.Content)
}

func (s *ReportService) index(w nethttp.ResponseWriter, r *nethttp.Request) {
	entries, err := s.uc.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ListReply{Reports: entries})
}

// Health 存活探针
func (s *ReportService) Health(w nethttp.ResponseWriter, r *nethttp.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *ReportService) writeError(w nethttp.ResponseWriter, err error) {
	e := errors.FromError(err)
	if e.Code >= 500 {
		s.log.Errorf("serve report: %v", err)
	}
	nethttp.Error(w, e.Message, int(e.Code))
}
