package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"embedserver/internal/models"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS embeds (
    code        TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    description TEXT,
    colour      INTEGER,
    timestamp   TIMESTAMP NOT NULL,
    author_name TEXT,
    media_url   TEXT,
    owner       TEXT NOT NULL,
    created_at  TIMESTAMP NOT NULL,
    updated_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_embeds_owner ON embeds (owner);
`

// SQLiteStorage implements the Storage interface using SQLite through the
// pure-Go modernc driver, so builds stay cgo-free.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(config models.DatabaseConfig) (Storage, error) {
	if config.DSN == "" {
		return nil, fmt.Errorf("connection string is required for SQLite storage")
	}

	db, err := sql.Open("sqlite", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite handles one writer at a time; a single connection avoids
	// SQLITE_BUSY errors under concurrent access.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// GetEmbed retrieves an embed by its code.
func (ss *SQLiteStorage) GetEmbed(ctx context.Context, code string) (*models.Embed, error) {
	row := ss.db.QueryRowContext(ctx, `
		SELECT code, title, description, colour, timestamp, author_name, media_url, owner, created_at, updated_at
		FROM embeds WHERE code = ?`, code)

	var (
		embed       models.Embed
		description sql.NullString
		colour      sql.NullInt64
		authorName  sql.NullString
		mediaURL    sql.NullString
		timestamp   string
		createdAt   string
		updatedAt   string
	)
	err := row.Scan(
		&embed.Code,
		&embed.Title,
		&description,
		&colour,
		&timestamp,
		&authorName,
		&mediaURL,
		&embed.Owner,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get embed: %w", err)
	}

	embed.Description = nullStringToString(description)
	embed.Colour = nullInt64ToIntPtr(colour)
	embed.AuthorName = nullStringToString(authorName)
	embed.MediaURL = nullStringToString(mediaURL)
	if embed.Timestamp, err = parseSQLiteTime(timestamp); err != nil {
		return nil, fmt.Errorf("failed to parse timestamp: %w", err)
	}
	if embed.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if embed.UpdatedAt, err = parseSQLiteTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return &embed, nil
}

// SaveEmbed stores a new embed.
func (ss *SQLiteStorage) SaveEmbed(ctx context.Context, embed *models.Embed) error {
	_, err := ss.db.ExecContext(ctx, `
		INSERT INTO embeds (code, title, description, colour, timestamp, author_name, media_url, owner, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		embed.Code,
		embed.Title,
		stringToNullString(embed.Description),
		intPtrToNullInt64(embed.Colour),
		formatSQLiteTime(embed.Timestamp),
		stringToNullString(embed.AuthorName),
		stringToNullString(embed.MediaURL),
		embed.Owner,
		formatSQLiteTime(embed.CreatedAt),
		formatSQLiteTime(embed.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to save embed: %w", err)
	}
	return nil
}

// UpdateEmbed replaces an existing embed.
func (ss *SQLiteStorage) UpdateEmbed(ctx context.Context, embed *models.Embed) error {
	res, err := ss.db.ExecContext(ctx, `
		UPDATE embeds
		SET title = ?, description = ?, colour = ?, timestamp = ?,
		    author_name = ?, media_url = ?, updated_at = ?
		WHERE code = ?`,
		embed.Title,
		stringToNullString(embed.Description),
		intPtrToNullInt64(embed.Colour),
		formatSQLiteTime(embed.Timestamp),
		stringToNullString(embed.AuthorName),
		stringToNullString(embed.MediaURL),
		formatSQLiteTime(embed.UpdatedAt),
		embed.Code,
	)
	if err != nil {
		return fmt.Errorf("failed to update embed: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEmbed removes an embed by its code.
func (ss *SQLiteStorage) DeleteEmbed(ctx context.Context, code string) error {
	res, err := ss.db.ExecContext(ctx, `DELETE FROM embeds WHERE code = ?`, code)
	if err != nil {
		return fmt.Errorf("failed to delete embed: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping verifies the storage backend is reachable and operational.
func (ss *SQLiteStorage) Ping(ctx context.Context) error {
	return ss.db.PingContext(ctx)
}

// Close closes the storage connection.
func (ss *SQLiteStorage) Close() error {
	return ss.db.Close()
}

// Times are stored as RFC3339 strings for portability across SQLite tools.
func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseSQLiteTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
