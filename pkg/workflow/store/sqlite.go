package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hatchet-dev/pickaxe/pkg/core/errors"
)

// SQLiteStore SQLite 运行记录存储
//
// worker 进程与 `pickaxe runs` 命令共享同一个数据库文件。
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore 打开（必要时创建）SQLite 数据库
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		task TEXT NOT NULL,
		parent_id TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		input TEXT,
		output TEXT,
		error TEXT NOT NULL DEFAULT '',
		attempts INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		started_at INTEGER NOT NULL DEFAULT 0,
		finished_at INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_runs_task ON runs(task, created_at);
	CREATE INDEX IF NOT EXISTS idx_runs_parent ON runs(parent_id);
	`

	_, err := s.db.Exec(query)
	return err
}

// Save 插入或更新运行记录
func (s *SQLiteStore) Save(ctx context.Context, run Run) error {
	if run.ID == "" {
		return ErrInvalidRun
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	query := `
	INSERT INTO runs (id, task, parent_id, status, input, output, error, attempts, created_at, started_at, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		status = excluded.status,
		output = excluded.output,
		error = excluded.error,
		attempts = excluded.attempts,
		started_at = excluded.started_at,
		finished_at = excluded.finished_at
	`

	_, err := s.db.ExecContext(ctx, query,
		run.ID, run.Task, run.ParentID, string(run.Status),
		nullableJSON(run.Input), nullableJSON(run.Output), run.Error, run.Attempts,
		toMillis(run.CreatedAt), toMillis(run.StartedAt), toMillis(run.FinishedAt),
	)
	return err
}

const selectColumns = `SELECT id, task, parent_id, status, input, output, error, attempts, created_at, started_at, finished_at FROM runs`

// Get 获取运行记录
func (s *SQLiteStore) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	run, err := scanRun(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return Run{}, errors.ErrRunNotFound
	}
	return run, err
}

// List 按创建时间倒序列出运行记录
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]Run, error) {
	var conditions []string
	var args []any

	if filter.Task != "" {
		conditions = append(conditions, "task = ?")
		args = append(args, filter.Task)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.ParentID != "" {
		conditions = append(conditions, "parent_id = ?")
		args = append(args, filter.ParentID)
	}

	query := selectColumns
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, run)
	}
	return results, rows.Err()
}

// Close 关闭数据库连接
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run                            Run
		status                         string
		input, output                  sql.NullString
		createdAt, startedAt, finished int64
	)

	err := row.Scan(&run.ID, &run.Task, &run.ParentID, &status, &input, &output,
		&run.Error, &run.Attempts, &createdAt, &startedAt, &finished)
	if err != nil {
		return Run{}, err
	}

	run.Status = Status(status)
	if input.Valid {
		run.Input = []byte(input.String)
	}
	if output.Valid {
		run.Output = []byte(output.String)
	}
	run.CreatedAt = fromMillis(createdAt)
	run.StartedAt = fromMillis(startedAt)
	run.FinishedAt = fromMillis(finished)
	return run, nil
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

var _ Store = (*SQLiteStore)(nil)
