// Package sqlite provides a SQLite-backed durable store for orderflow state.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/orderlink/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/orderlink/internal/orderflow/storage"
	"github.com/louisbranch/orderlink/internal/orderflow/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for orderflow state.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens an orderflow SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := store.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) runMigrations() error {
	return sqlitemigrate.ApplyMigrations(s.sqlDB, migrations.FS, "")
}

// AppendCorrelation persists one correlation entry to the durable log.
func (s *Store) AppendCorrelation(ctx context.Context, record storage.CorrelationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	record.ID = strings.TrimSpace(record.ID)
	record.SubjectID = strings.TrimSpace(record.SubjectID)
	if record.ID == "" {
		return fmt.Errorf("correlation id is required")
	}
	if record.SubjectID == "" {
		return fmt.Errorf("subject id is required")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
	INSERT INTO correlations (id, subject_id, created_at)
	VALUES (?, ?, ?)
	`, record.ID, record.SubjectID, toMillis(record.CreatedAt))
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("append correlation: %w", err)
	}
	return nil
}

// FindCorrelation looks up one correlation entry by id.
func (s *Store) FindCorrelation(ctx context.Context, id string) (storage.CorrelationRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.CorrelationRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.CorrelationRecord{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.CorrelationRecord{}, fmt.Errorf("correlation id is required")
	}

	var record storage.CorrelationRecord
	var createdAt int64
	err := s.sqlDB.QueryRowContext(ctx, `
	SELECT id, subject_id, created_at FROM correlations WHERE id = ?
	`, id).Scan(&record.ID, &record.SubjectID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.CorrelationRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.CorrelationRecord{}, fmt.Errorf("find correlation: %w", err)
	}
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

// DeleteCorrelation removes one correlation entry. It reports ErrNotFound
// when no row matched, which lets callers detect a concurrent consume.
func (s *Store) DeleteCorrelation(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("correlation id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM correlations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete correlation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete correlation rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// UpsertAdmin persists one administrator registration, replacing any
// existing registration for the same subject.
func (s *Store) UpsertAdmin(ctx context.Context, record storage.AdminRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	record.SubjectID = strings.TrimSpace(record.SubjectID)
	if record.SubjectID == "" {
		return fmt.Errorf("subject id is required")
	}
	if record.RegisteredAt.IsZero() {
		record.RegisteredAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
	INSERT INTO admins (subject_id, display_name, registered_at)
	VALUES (?, ?, ?)
	ON CONFLICT(subject_id) DO UPDATE SET
		display_name = excluded.display_name,
		registered_at = excluded.registered_at
	`, record.SubjectID, record.DisplayName, toMillis(record.RegisteredAt))
	if err != nil {
		return fmt.Errorf("upsert admin: %w", err)
	}
	return nil
}

// ListAdminSubjectIDs returns all registered administrator subject ids.
func (s *Store) ListAdminSubjectIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
	SELECT subject_id FROM admins ORDER BY registered_at, subject_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan admin row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate admin rows: %w", err)
	}
	return ids, nil
}

// AppendOrder persists one reconciled order transcription.
func (s *Store) AppendOrder(ctx context.Context, record storage.OrderRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	record.ID = strings.TrimSpace(record.ID)
	record.CorrelationID = strings.TrimSpace(record.CorrelationID)
	if record.ID == "" {
		return fmt.Errorf("order id is required")
	}
	if record.CorrelationID == "" {
		return fmt.Errorf("correlation id is required")
	}
	if record.ItemsJSON == "" {
		record.ItemsJSON = "[]"
	}
	if record.AcceptedAt.IsZero() {
		record.AcceptedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
	INSERT INTO orders (
		id, correlation_id, subject_id, shop_name, delivery_date, comment, items_json, accepted_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		record.CorrelationID,
		record.SubjectID,
		record.ShopName,
		record.DeliveryDate,
		record.Comment,
		record.ItemsJSON,
		toMillis(record.AcceptedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("append order: %w", err)
	}
	return nil
}

// UpsertCustomer persists one customer registration, replacing any
// existing registration for the same subject.
func (s *Store) UpsertCustomer(ctx context.Context, record storage.CustomerRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	record.SubjectID = strings.TrimSpace(record.SubjectID)
	if record.SubjectID == "" {
		return fmt.Errorf("subject id is required")
	}
	if record.RegisteredAt.IsZero() {
		record.RegisteredAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
	INSERT INTO customers (subject_id, display_name, registered_at)
	VALUES (?, ?, ?)
	ON CONFLICT(subject_id) DO UPDATE SET
		display_name = excluded.display_name,
		registered_at = excluded.registered_at
	`, record.SubjectID, record.DisplayName, toMillis(record.RegisteredAt))
	if err != nil {
		return fmt.Errorf("upsert customer: %w", err)
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: UNIQUE")
}

var _ storage.Store = (*Store)(nil)
