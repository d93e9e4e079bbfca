package domain

import "time"

// ReportEntry 报告索引中的一项
type ReportEntry struct {
	Date     string `json:"date"`
	JSON     string `json:"json"`
	Markdown string `json:"markdown"`
}

// ReportFile 单个报告文件
type ReportFile struct {
	Date    string
	Ext     string
	Content []byte
	ModTime time.Time
}

// ContentType 按扩展名返回响应类型
func (f *ReportFile) ContentType() string {
	if f.Ext == "md" {
		return "text/markdown; charset=utf-8"
	}
	return "application/json"
}
