package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
)

// SemanticLog 记忆整理结果表 memory_semantic_log
type SemanticLog struct {
	db *sql.DB
}

// NewSemanticLog 连接 Postgres 并确保表存在
func NewSemanticLog(ctx context.Context, dsn string) (*SemanticLog, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SemanticLog{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *SemanticLog) Close() error {
	return s.db.Close()
}

func (s *SemanticLog) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS memory_semantic_log (
		id bigserial PRIMARY KEY,
		created_at timestamptz DEFAULT now(),
		summary text
	)`)
	return err
}

// Append 写入一条整理摘要，返回行 id
func (s *SemanticLog) Append(ctx context.Context, summary string) (int64, error) {
	// 移除 NULL 字符，PostgreSQL 文本字段不支持 NULL 字节
	summary = strings.ReplaceAll(summary, "\x00", "")

	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO memory_semantic_log(summary) VALUES ($1) RETURNING id`, summary).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert semantic log: %w", err)
	}
	return id, nil
}
