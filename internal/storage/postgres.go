package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/iWorld-y/pine_pulse/internal/config"
	"github.com/iWorld-y/pine_pulse/internal/model"
)

// Storage 基于 PostgreSQL 的报告历史与向量索引存储
type Storage struct {
	db *sql.DB
}

func NewStorage(cfg config.DBConfig) (*Storage, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS report_runs (
			id UUID PRIMARY KEY,
			dataset TEXT NOT NULL,
			window_days INTEGER NOT NULL,
			total_sales DOUBLE PRECISION NOT NULL,
			transaction_count INTEGER NOT NULL,
			unique_items INTEGER NOT NULL,
			insights JSONB,
			parse_error TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_report_runs_created_at ON report_runs (created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS vector_index_entries (
			index_name TEXT NOT NULL,
			key TEXT NOT NULL,
			embedding DOUBLE PRECISION[] NOT NULL,
			metadata JSONB,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (index_name, key)
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query %s: %w", query, err)
		}
	}

	return nil
}

// SaveReport 保存一次报告的摘要与洞察
func (s *Storage) SaveReport(ctx context.Context, report *model.Report) error {
	insights, err := json.Marshal(report.Insights)
	if err != nil {
		return fmt.Errorf("failed to marshal insights: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO report_runs (id, dataset, window_days, total_sales, transaction_count, unique_items, insights, parse_error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		report.RunID,
		removeNullBytes(report.Dataset),
		report.Summary.WindowDays,
		report.Summary.TotalSales,
		report.Summary.TransactionCount,
		report.Summary.UniqueItems,
		removeNullBytes(string(insights)),
		removeNullBytes(report.ParseError),
		report.Summary.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report run: %w", err)
	}
	return nil
}

// ListRuns 按创建时间倒序列出最近的报告
func (s *Storage) ListRuns(ctx context.Context, limit int) ([]model.ReportRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, dataset, window_days, total_sales, transaction_count, unique_items, COALESCE(parse_error, ''), created_at
		FROM report_runs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query report runs: %w", err)
	}
	defer rows.Close()

	var runs []model.ReportRun
	for rows.Next() {
		var r model.ReportRun
		if err := rows.Scan(&r.ID, &r.Dataset, &r.WindowDays, &r.TotalSales, &r.TransactionCount, &r.UniqueItems, &r.ParseError, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// UpsertVector 写入或覆盖向量索引中的一条记录
func (s *Storage) UpsertVector(ctx context.Context, indexName, key string, vector []float64, metadata []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vector_index_entries (index_name, key, embedding, metadata, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (index_name, key) DO UPDATE
		SET embedding = EXCLUDED.embedding, metadata = EXCLUDED.metadata, updated_at = EXCLUDED.updated_at`,
		indexName, key, pq.Array(vector), removeNullBytes(string(metadata)), time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert vector %s: %w", key, err)
	}
	return nil
}

// PostgreSQL 文本字段不支持 NULL 字节
func removeNullBytes(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}
