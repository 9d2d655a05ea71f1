package audit

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store persists and queries audit operations.
type Store struct {
	db *gorm.DB
}

// Open connects to the audit database and migrates the schema. Postgres DSNs
// (postgres:// URLs or key=value strings) use the postgres driver; anything
// else is treated as a sqlite path or URI.
func Open(dsn string) (*Store, error) {
	dialector := dialectorFor(dsn)
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("audit: open database: %w", err)
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("audit: migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an already-open database. Intended for tests.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("audit: migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

func dialectorFor(dsn string) gorm.Dialector {
	trimmed := strings.TrimSpace(dsn)
	if strings.HasPrefix(trimmed, "postgres://") || strings.HasPrefix(trimmed, "postgresql://") || strings.Contains(trimmed, "host=") {
		return postgres.Open(trimmed)
	}
	return sqlite.Open(trimmed)
}

// Record inserts a single operation row, assigning its ID when unset.
func (s *Store) Record(op *Operation) error {
	if op.ID == uuid.Nil {
		op.ID = uuid.New()
	}
	if err := s.db.Create(op).Error; err != nil {
		return fmt.Errorf("audit: record operation: %w", err)
	}
	return nil
}

// Query filters operations. Zero values match everything.
type Query struct {
	EventType string
	Actor     string
	Limit     int
}

const defaultQueryLimit = 100

// List returns matching operations, newest first.
func (s *Store) List(q Query) ([]Operation, error) {
	limit := q.Limit
	if limit <= 0 || limit > 1000 {
		limit = defaultQueryLimit
	}
	tx := s.db.Model(&Operation{}).Order("created_at DESC").Limit(limit)
	if q.EventType != "" {
		tx = tx.Where("event_type = ?", q.EventType)
	}
	if q.Actor != "" {
		tx = tx.Where("actor = ? OR counterparty = ?", q.Actor, q.Actor)
	}
	var ops []Operation
	if err := tx.Find(&ops).Error; err != nil {
		return nil, fmt.Errorf("audit: list operations: %w", err)
	}
	return ops, nil
}

// Get fetches a single operation by ID.
func (s *Store) Get(id uuid.UUID) (*Operation, error) {
	var op Operation
	if err := s.db.First(&op, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &op, nil
}

// Summary counts operations grouped by event type.
func (s *Store) Summary() (map[string]int64, error) {
	type row struct {
		EventType string
		Total     int64
	}
	var rows []row
	err := s.db.Model(&Operation{}).
		Select("event_type, COUNT(*) AS total").
		Group("event_type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("audit: summarize operations: %w", err)
	}
	summary := make(map[string]int64, len(rows))
	for _, r := range rows {
		summary[r.EventType] = r.Total
	}
	return summary, nil
}
