package registry

import (
	"context"
	"errors"
	"fmt"

	pgx "github.com/jackc/pgx/v5"

	apperrors "github.com/rajasatyajit/DisasterFeed/internal/errors"
	"github.com/rajasatyajit/DisasterFeed/internal/models"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS update_sources (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		url         TEXT NOT NULL DEFAULT '',
		feed_url    TEXT NOT NULL DEFAULT '',
		categories  TEXT[] NOT NULL DEFAULT '{}',
		active      BOOLEAN NOT NULL DEFAULT TRUE,
		position    INTEGER NOT NULL DEFAULT 0,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

const selectColumns = `id, name, description, url, feed_url, categories, active`

// PostgresRegistry keeps source descriptors in the update_sources table
type PostgresRegistry struct {
	db Database
}

// NewPostgresRegistry creates a new PostgreSQL registry
func NewPostgresRegistry(db Database) *PostgresRegistry {
	return &PostgresRegistry{db: db}
}

// EnsureSchema creates the update_sources table if it does not exist
func (r *PostgresRegistry) EnsureSchema(ctx context.Context) error {
	if err := r.db.Exec(ctx, schemaSQL); err != nil {
		return apperrors.DatabaseError{Operation: "create update_sources", Err: err}
	}
	return nil
}

// Seed inserts sources that are not present yet. Existing rows are left
// untouched so operators can edit them.
func (r *PostgresRegistry) Seed(ctx context.Context, sources []models.SourceDescriptor) error {
	query := `
		INSERT INTO update_sources (id, name, description, url, feed_url, categories, active, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`

	for i, s := range sources {
		err := r.db.Exec(ctx, query,
			s.ID, s.Name, s.Description, s.URL, s.FeedURL, s.Categories, s.Active, i,
		)
		if err != nil {
			return fmt.Errorf("seed source %s: %w", s.ID, err)
		}
	}
	return nil
}

// List returns every source ordered by position
func (r *PostgresRegistry) List(ctx context.Context) ([]models.SourceDescriptor, error) {
	rows, err := r.db.Query(ctx, `SELECT `+selectColumns+` FROM update_sources ORDER BY position, id`)
	if err != nil {
		return nil, apperrors.DatabaseError{Operation: "list sources", Err: err}
	}
	defer rows.Close()

	var sources []models.SourceDescriptor
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.DatabaseError{Operation: "list sources", Err: err}
	}
	return sources, nil
}

// Get retrieves a single source by id
func (r *PostgresRegistry) Get(ctx context.Context, id string) (models.SourceDescriptor, error) {
	row := r.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM update_sources WHERE lower(id) = lower($1)`, id)
	if row == nil {
		return models.SourceDescriptor{}, apperrors.DatabaseError{Operation: "get source", Err: apperrors.ErrNotConfigured}
	}

	s, err := scanSource(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.SourceDescriptor{}, fmt.Errorf("source %q: %w", id, apperrors.ErrNotFound)
	}
	return s, err
}

// Health checks the underlying database
func (r *PostgresRegistry) Health(ctx context.Context) error {
	return r.db.Health(ctx)
}

func scanSource(row pgx.Row) (models.SourceDescriptor, error) {
	var s models.SourceDescriptor
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.URL, &s.FeedURL, &s.Categories, &s.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s, err
		}
		return s, fmt.Errorf("scan source: %w", err)
	}
	if s.Categories == nil {
		s.Categories = []string{}
	}
	return s, nil
}
