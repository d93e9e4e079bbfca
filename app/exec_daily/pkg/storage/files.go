package storage

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/model"
)

// ReportStore 将日报写入 <root>/<YYYY>/<MM>/daily-<date>.{json,md}
type ReportStore struct {
	root   string
	prefix string

	// Now 生成时间，测试中可替换
	Now func() time.Time
}

// NewReportStore 创建日报存储。prefix 为公开访问前缀，例如 /reports
func NewReportStore(root, prefix string) *ReportStore {
	if prefix == "" {
		prefix = "/reports"
	}
	return &ReportStore{root: root, prefix: prefix, Now: time.Now}
}

// FileName 日报文件名 daily-<date>.<ext>
func FileName(date, ext string) string {
	return fmt.Sprintf("daily-%s.%s", date, ext)
}

// Dir 返回某日报告所在目录
func (s *ReportStore) Dir(req model.ReportRequest) string {
	return filepath.Join(s.root, req.Year(), req.Month())
}

// Locator 返回公开访问路径 /reports/<YYYY>/<MM>/daily-<date>.<ext>
func (s *ReportStore) Locator(req model.ReportRequest, ext string) string {
	return path.Join(s.prefix, req.Year(), req.Month(), FileName(req.Date(), ext))
}

// Save 写入 JSON 与 Markdown 两份文件。目录不存在时创建，同一天重复执行会覆盖。
func (s *ReportStore) Save(result *model.ReportResult, req model.ReportRequest) (*model.ReportArtifact, error) {
	dir := s.Dir(req)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}

	data, err := result.IndentedJSON()
	if err != nil {
		return nil, err
	}

	jsonPath := filepath.Join(dir, FileName(req.Date(), "json"))
	if err := writeFileAtomic(jsonPath, data); err != nil {
		return nil, fmt.Errorf("write json report: %w", err)
	}

	md := RenderMarkdown(req.Date(), s.Now().UTC(), data)
	mdPath := filepath.Join(dir, FileName(req.Date(), "md"))
	if err := writeFileAtomic(mdPath, md); err != nil {
		return nil, fmt.Errorf("write markdown report: %w", err)
	}

	return &model.ReportArtifact{
		Date:            req.Date(),
		JSONPath:        jsonPath,
		MarkdownPath:    mdPath,
		JSONLocator:     s.Locator(req, "json"),
		MarkdownLocator: s.Locator(req, "md"),
	}, nil
}

// RenderMarkdown 生成可读版日报
func RenderMarkdown(date string, generated time.Time, indentedJSON []byte) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Executive Daily Report — %s\n\n", date)
	fmt.Fprintf(&buf, "Generated: %s\n\n", generated.Format(time.RFC3339))
	buf.WriteString("## Summary\n\n")
	fence := codeFence(indentedJSON)
	buf.WriteString(fence + "json\n")
	buf.Write(indentedJSON)
	buf.WriteString("\n" + fence + "\n")
	return buf.Bytes()
}

// codeFence 返回比内容中最长反引号串更长的围栏，至少三个
func codeFence(content []byte) string {
	longest, run := 0, 0
	for _, c := range content {
		if c != '`' {
			run = 0
			continue
		}
		run++
		longest = max(longest, run)
	}
	return strings.Repeat("`", max(3, longest+1))
}

// writeFileAtomic 先写临时文件再 rename，读者不会看到写了一半的文件
func writeFileAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, name); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
