package conf

type Bootstrap struct {
	Server  *Server  `json:"server"`
	Reports *Reports `json:"reports"`
}

type Server struct {
	Http *HTTP `json:"http"`
}

type HTTP struct {
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"`
}

// Reports 报告目录，与 exec_daily 的 storage 配置保持一致
type Reports struct {
	Root         string `json:"root"`
	PublicPrefix string `json:"public_prefix"`
}

// Prefix 公开访问前缀，默认 /reports
func (r *Reports) Prefix() string {
	if r == nil || r.PublicPrefix == "" {
		return "/reports"
	}
	return r.PublicPrefix
}
