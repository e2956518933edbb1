package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"embedserver/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS embeds (
    code        VARCHAR(256) PRIMARY KEY,
    title       VARCHAR(256) NOT NULL,
    description VARCHAR(4096),
    colour      INTEGER,
    timestamp   TIMESTAMPTZ NOT NULL,
    author_name VARCHAR(256),
    media_url   VARCHAR(10240),
    owner       VARCHAR(64) NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_embeds_owner ON embeds (owner);
`

// PostgresStorage implements the Storage interface using PostgreSQL via pgx.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage creates a new PostgreSQL storage instance. The initial
// connection is retried with a short backoff so the service survives the
// database coming up alongside it.
func NewPostgresStorage(config models.DatabaseConfig) (Storage, error) {
	if config.DSN == "" {
		return nil, fmt.Errorf("connection string is required for PostgreSQL storage")
	}

	poolConfig, err := pgxpool.ParseConfig(config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if config.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(config.MaxOpenConns)
	}
	if config.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = config.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	retries := config.ConnectRetries
	if retries <= 0 {
		retries = 5
	}
	if err := pingWithRetry(pool, retries); err != nil {
		pool.Close()
		return nil, err
	}

	if _, err := pool.Exec(context.Background(), pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &PostgresStorage{pool: pool}, nil
}

func pingWithRetry(pool *pgxpool.Pool, attempts int) error {
	var err error
	for i := 1; i <= attempts; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = pool.Ping(ctx)
		cancel()
		if err == nil {
			return nil
		}
		slog.Warn("database not ready, retrying",
			"attempt", i,
			"max_attempts", attempts,
			"error", err)
		if i < attempts {
			time.Sleep(time.Duration(i) * time.Second)
		}
	}
	return fmt.Errorf("failed to ping database after %d attempts: %w", attempts, err)
}

// GetEmbed retrieves an embed by its code.
func (ps *PostgresStorage) GetEmbed(ctx context.Context, code string) (*models.Embed, error) {
	row := ps.pool.QueryRow(ctx, `
		SELECT code, title, description, colour, timestamp, author_name, media_url, owner, created_at, updated_at
		FROM embeds WHERE code = $1`, code)

	embed, err := scanEmbed(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get embed: %w", err)
	}
	return embed, nil
}

// SaveEmbed stores a new embed.
func (ps *PostgresStorage) SaveEmbed(ctx context.Context, embed *models.Embed) error {
	_, err := ps.pool.Exec(ctx, `
		INSERT INTO embeds (code, title, description, colour, timestamp, author_name, media_url, owner, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		embed.Code,
		embed.Title,
		stringToPgText(embed.Description),
		intPtrToPgInt4(embed.Colour),
		embed.Timestamp,
		stringToPgText(embed.AuthorName),
		stringToPgText(embed.MediaURL),
		embed.Owner,
		embed.CreatedAt,
		embed.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to save embed: %w", err)
	}
	return nil
}

// UpdateEmbed replaces an existing embed.
func (ps *PostgresStorage) UpdateEmbed(ctx context.Context, embed *models.Embed) error {
	tag, err := ps.pool.Exec(ctx, `
		UPDATE embeds
		SET title = $2, description = $3, colour = $4, timestamp = $5,
		    author_name = $6, media_url = $7, updated_at = $8
		WHERE code = $1`,
		embed.Code,
		embed.Title,
		stringToPgText(embed.Description),
		intPtrToPgInt4(embed.Colour),
		embed.Timestamp,
		stringToPgText(embed.AuthorName),
		stringToPgText(embed.MediaURL),
		embed.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update embed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEmbed removes an embed by its code.
func (ps *PostgresStorage) DeleteEmbed(ctx context.Context, code string) error {
	tag, err := ps.pool.Exec(ctx, `DELETE FROM embeds WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("failed to delete embed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping verifies the storage backend is reachable and operational.
func (ps *PostgresStorage) Ping(ctx context.Context) error {
	return ps.pool.Ping(ctx)
}

// Close closes the storage connection.
func (ps *PostgresStorage) Close() error {
	ps.pool.Close()
	return nil
}

func scanEmbed(row pgx.Row) (*models.Embed, error) {
	var (
		embed       models.Embed
		description pgtype.Text
		colour      pgtype.Int4
		authorName  pgtype.Text
		mediaURL    pgtype.Text
	)

	err := row.Scan(
		&embed.Code,
		&embed.Title,
		&description,
		&colour,
		&embed.Timestamp,
		&authorName,
		&mediaURL,
		&embed.Owner,
		&embed.CreatedAt,
		&embed.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	embed.Description = pgTextToString(description)
	embed.Colour = pgInt4ToIntPtr(colour)
	embed.AuthorName = pgTextToString(authorName)
	embed.MediaURL = pgTextToString(mediaURL)
	return &embed, nil
}
