// Package sqlstore persists journal records to a local sqlite database.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/edcompanion/edcompanion/internal/journal"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type journalFileRecord struct {
	bun.BaseModel `bun:"table:journal_files"`

	DayKey    string    `bun:"day_key,pk"`
	Content   string    `bun:"content,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// Store implements journal.Store on a bun sqlite database. The day key is
// the primary key; saving an existing day upserts the content.
type Store struct {
	db *bun.DB
}

// Open opens (or creates) the sqlite database at path and wraps it in bun.
func Open(path string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: failed to open %s: %w", path, err)
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func New(db *bun.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	return &Store{db: db}, nil
}

// Init creates the journal table if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*journalFileRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("sqlstore: failed to create journal table: %w", err)
	}
	return nil
}

// Save upserts one journal record keyed by its day.
func (s *Store) Save(ctx context.Context, record journal.Record) error {
	row := &journalFileRecord{
		DayKey:    record.DayKey,
		Content:   record.Content,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (day_key) DO UPDATE").
		Set("content = EXCLUDED.content").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("sqlstore: failed to save journal for %s: %w", record.DayKey, err)
	}
	return nil
}

// Get returns the stored record for dayKey, or sql.ErrNoRows if absent.
func (s *Store) Get(ctx context.Context, dayKey string) (journal.Record, error) {
	var row journalFileRecord
	err := s.db.NewSelect().
		Model(&row).
		Where("day_key = ?", dayKey).
		Scan(ctx)
	if err != nil {
		return journal.Record{}, err
	}
	return journal.Record{DayKey: row.DayKey, Content: row.Content}, nil
}
