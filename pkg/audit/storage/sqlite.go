package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"switchboard-ai/hermes/pkg/audit"
	"switchboard-ai/hermes/pkg/config"
)

// SQLiteStorage implements audit.Storage backed by a SQLite database file.
// The modernc driver is pure Go, so the gateway builds without cgo.
type SQLiteStorage struct {
	db     *sql.DB
	cfg    config.SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens the database, applies the schema, and configures
// the connection pool.
func NewSQLiteStorage(cfg config.SQLiteConfig, logger *slog.Logger) (*SQLiteStorage, error) {
	if cfg.Path == "" {
		cfg.Path = "data/audit.db"
	}
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 10
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		cfg:    cfg,
		logger: logger.With("component", "audit.storage.sqlite"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("sqlite audit storage initialized",
		"path", cfg.Path,
		"wal_mode", cfg.WALMode,
	)

	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if s.cfg.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return audit.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.cfg.BusyTimeout.Milliseconds())); err != nil {
		return audit.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return audit.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return audit.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return audit.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return audit.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Store persists an audit record.
func (s *SQLiteStorage) Store(ctx context.Context, record *audit.Record) error {
	query := `
		INSERT INTO audit_records (
			id, request_id,
			request_time, recorded_time,
			model, provider, upstream_model, stream,
			token_description, remote_addr, user_agent,
			status_code, latency_ms,
			prompt_tokens, completion_tokens, total_tokens,
			error, error_type
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var errorVal, errorTypeVal any
	if record.Error != "" {
		errorVal = record.Error
	}
	if record.ErrorType != "" {
		errorTypeVal = record.ErrorType
	}

	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.RequestID,
		record.RequestTime, record.RecordedTime,
		record.Model, record.Provider, record.UpstreamModel, record.Stream,
		record.TokenDescription, record.RemoteAddr, record.UserAgent,
		record.StatusCode, record.Latency.Milliseconds(),
		record.PromptTokens, record.CompletionTokens, record.TotalTokens,
		errorVal, errorTypeVal,
	)
	if err != nil {
		return audit.NewStorageError("sqlite", "store", err)
	}

	return nil
}

// Query retrieves records matching the filters, newest first.
func (s *SQLiteStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := selectColumns + " FROM audit_records"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	sqlQuery += " ORDER BY request_time DESC"

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*audit.Record{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, audit.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// Count returns the number of records matching the filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM audit_records"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, audit.NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// Delete removes records matching the filters and returns the number removed.
func (s *SQLiteStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "DELETE FROM audit_records"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}

	return count, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return audit.NewStorageError("sqlite", "close", err)
	}
	return nil
}

const selectColumns = `SELECT
	id, request_id,
	request_time, recorded_time,
	model, provider, upstream_model, stream,
	token_description, remote_addr, user_agent,
	status_code, latency_ms,
	prompt_tokens, completion_tokens, total_tokens,
	error, error_type`

func buildWhereClause(query *audit.Query) (string, []any) {
	var clauses []string
	var args []any

	if query.StartTime != nil {
		clauses = append(clauses, "request_time >= ?")
		args = append(args, *query.StartTime)
	}
	if query.EndTime != nil {
		clauses = append(clauses, "request_time <= ?")
		args = append(args, *query.EndTime)
	}
	if query.Provider != "" {
		clauses = append(clauses, "provider = ?")
		args = append(args, query.Provider)
	}
	if query.Model != "" {
		clauses = append(clauses, "model = ?")
		args = append(args, query.Model)
	}
	if query.TokenDescription != "" {
		clauses = append(clauses, "token_description = ?")
		args = append(args, query.TokenDescription)
	}
	if query.StatusCode != 0 {
		clauses = append(clauses, "status_code = ?")
		args = append(args, query.StatusCode)
	}

	return strings.Join(clauses, " AND "), args
}

func scanRow(rows *sql.Rows) (*audit.Record, error) {
	var record audit.Record
	var latencyMs int64
	var errorVal, errorTypeVal sql.NullString

	err := rows.Scan(
		&record.ID, &record.RequestID,
		&record.RequestTime, &record.RecordedTime,
		&record.Model, &record.Provider, &record.UpstreamModel, &record.Stream,
		&record.TokenDescription, &record.RemoteAddr, &record.UserAgent,
		&record.StatusCode, &latencyMs,
		&record.PromptTokens, &record.CompletionTokens, &record.TotalTokens,
		&errorVal, &errorTypeVal,
	)
	if err != nil {
		return nil, err
	}

	record.Latency = time.Duration(latencyMs) * time.Millisecond
	record.Error = errorVal.String
	record.ErrorType = errorTypeVal.String

	return &record, nil
}
