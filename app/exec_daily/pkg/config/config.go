package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// 默认值，New() 引用这些常量
const (
	DefaultJobName       = "exec-daily-v3"
	DefaultMCPBaseURL    = "http://mcp:8080"
	DefaultMCPTimeout    = 30
	DefaultStorageRoot   = "/data/reports"
	DefaultPublicPrefix  = "/reports"
	DefaultSlackTimeout  = 10
	DefaultLangfuseURL   = "http://langfuse:3000"
	DefaultWindowHours   = 24
	DefaultTracePageSize = 50
	DefaultLogLevel      = "info"
	DefaultQPS           = 1
	DefaultRPM           = 60
)

// Config 项目配置结构体
type Config struct {
	JobName     string            `yaml:"job_name"`
	MCP         MCPConfig         `yaml:"mcp"`
	Storage     StorageConfig     `yaml:"storage"`
	Slack       SlackConfig       `yaml:"slack"`
	Langfuse    LangfuseConfig    `yaml:"langfuse"`
	DB          DBConfig          `yaml:"db"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
}

// MCPConfig 工具调用服务配置
type MCPConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"` // 秒
}

// StorageConfig 报告落盘配置
type StorageConfig struct {
	Root          string `yaml:"root"`
	PublicPrefix  string `yaml:"public_prefix"`
	PublicBaseURL string `yaml:"public_base_url"` // 可选，Slack 按钮需要绝对地址
}

// SlackConfig 通知 webhook 配置
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url"`
	Timeout    int    `yaml:"timeout"` // 秒
}

// LangfuseConfig trace 服务配置
type LangfuseConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKey      string `yaml:"api_key"`
	PublicKey   string `yaml:"public_key"`
	SecretKey   string `yaml:"secret_key"`
	WindowHours int    `yaml:"window_hours"`
	PageSize    int    `yaml:"page_size"`
	Timeout     int    `yaml:"timeout"`
}

// DBConfig 数据库相关配置
type DBConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 外部调用限流配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// New 返回填充了默认值的配置
func New() *Config {
	return &Config{
		JobName: DefaultJobName,
		MCP: MCPConfig{
			BaseURL: DefaultMCPBaseURL,
			Timeout: DefaultMCPTimeout,
		},
		Storage: StorageConfig{
			Root:         DefaultStorageRoot,
			PublicPrefix: DefaultPublicPrefix,
		},
		Slack: SlackConfig{
			Timeout: DefaultSlackTimeout,
		},
		Langfuse: LangfuseConfig{
			BaseURL:     DefaultLangfuseURL,
			WindowHours: DefaultWindowHours,
			PageSize:    DefaultTracePageSize,
			Timeout:     DefaultMCPTimeout,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
		Concurrency: ConcurrencyConfig{
			QPS: DefaultQPS,
			RPM: DefaultRPM,
		},
	}
}

// LoadConfig 加载配置：默认值 -> 配置文件（path 为空时跳过）-> 环境变量
func LoadConfig(path string) (*Config, error) {
	cfg := New()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config yaml: %w", err)
		}
	}

	applyEnvOverrides(cfg, os.LookupEnv)
	cfg.fillDefaults()
	return cfg, nil
}

// applyEnvOverrides 用环境变量覆盖配置项。lookup 便于测试注入。
func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str("JOB_NAME", &cfg.JobName)
	str("MCP_BASE_URL", &cfg.MCP.BaseURL)
	num("MCP_TIMEOUT", &cfg.MCP.Timeout)
	str("STORAGE_PATH", &cfg.Storage.Root)
	str("PUBLIC_BASE_URL", &cfg.Storage.PublicBaseURL)
	str("SLACK_WEBHOOK_URL", &cfg.Slack.WebhookURL)
	str("LANGFUSE_BASE_URL", &cfg.Langfuse.BaseURL)
	str("LANGFUSE_API_KEY", &cfg.Langfuse.APIKey)
	str("LANGFUSE_PUBLIC_KEY", &cfg.Langfuse.PublicKey)
	str("LANGFUSE_SECRET_KEY", &cfg.Langfuse.SecretKey)
	str("POSTGRES_URL", &cfg.DB.URL)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FILE", &cfg.Log.File)
}

// fillDefaults 文件里显式写了零值时回填默认值
func (c *Config) fillDefaults() {
	if c.JobName == "" {
		c.JobName = DefaultJobName
	}
	if c.MCP.BaseURL == "" {
		c.MCP.BaseURL = DefaultMCPBaseURL
	}
	if c.MCP.Timeout <= 0 {
		c.MCP.Timeout = DefaultMCPTimeout
	}
	if c.Storage.Root == "" {
		c.Storage.Root = DefaultStorageRoot
	}
	if c.Storage.PublicPrefix == "" {
		c.Storage.PublicPrefix = DefaultPublicPrefix
	}
	if c.Slack.Timeout <= 0 {
		c.Slack.Timeout = DefaultSlackTimeout
	}
	if c.Langfuse.BaseURL == "" {
		c.Langfuse.BaseURL = DefaultLangfuseURL
	}
	if c.Langfuse.WindowHours <= 0 {
		c.Langfuse.WindowHours = DefaultWindowHours
	}
	if c.Langfuse.PageSize <= 0 {
		c.Langfuse.PageSize = DefaultTracePageSize
	}
	if c.Langfuse.Timeout <= 0 {
		c.Langfuse.Timeout = DefaultMCPTimeout
	}
	if c.Concurrency.QPS <= 0 {
		c.Concurrency.QPS = DefaultQPS
	}
	if c.Concurrency.RPM <= 0 {
		c.Concurrency.RPM = DefaultRPM
	}
}

// DSN 返回 Postgres 连接串。优先使用 URL，否则由分项字段拼接。
func (d DBConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Host == "" {
		return ""
	}
	port := d.Port
	if port == 0 {
		port = 5432
	}
	parts := []string{
		fmt.Sprintf("host=%s", d.Host),
		fmt.Sprintf("port=%d", port),
	}
	if d.User != "" {
		parts = append(parts, fmt.Sprintf("user=%s", d.User))
	}
	if d.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", d.Password))
	}
	if d.Name != "" {
		parts = append(parts, fmt.Sprintf("dbname=%s", d.Name))
	}
	parts = append(parts, "sslmode=disable")
	return strings.Join(parts, " ")
}

// ValidateDaily 校验日报流水线所需配置
func (c *Config) ValidateDaily() error {
	if strings.TrimSpace(c.MCP.BaseURL) == "" {
		return fmt.Errorf("config.mcp.base_url is required")
	}
	if strings.TrimSpace(c.Storage.Root) == "" {
		return fmt.Errorf("config.storage.root is required")
	}
	if !strings.HasPrefix(c.Storage.PublicPrefix, "/") {
		return fmt.Errorf("config.storage.public_prefix must start with '/'")
	}
	return nil
}

// ValidateConsolidate 校验记忆整理任务所需配置
func (c *Config) ValidateConsolidate() error {
	if c.DB.DSN() == "" {
		return fmt.Errorf("POSTGRES_URL (config.db.url) must be set")
	}
	if strings.TrimSpace(c.Langfuse.BaseURL) == "" {
		return fmt.Errorf("config.langfuse.base_url is required")
	}
	return nil
}
