package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/deusflow/trenddigest/internal/digest"
)

// PostgresStore archives digests in PostgreSQL, one row per date and type.
type PostgresStore struct {
	db  *sql.DB
	log *slog.Logger
}

// NewPostgresStore connects and creates the schema if needed.
func NewPostgresStore(ctx context.Context, connectionString string, log *slog.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if log == nil {
		log = slog.Default()
	}
	store := &PostgresStore{db: db, log: log.With("component", "postgres")}

	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	store.log.Info("PostgreSQL digest store connected")
	return store, nil
}

func (ps *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS digests (
		id SERIAL PRIMARY KEY,
		digest_date DATE NOT NULL,
		digest_type VARCHAR(16) NOT NULL,
		as_of TIMESTAMPTZ NOT NULL,
		payload JSONB NOT NULL,
		story_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (digest_date, digest_type)
	);

	CREATE INDEX IF NOT EXISTS idx_digests_as_of ON digests(as_of);
	`

	if _, err := ps.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Write upserts d; a rerun of the same slot replaces the earlier row.
func (ps *PostgresStore) Write(ctx context.Context, d *digest.Digest) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal digest: %w", err)
	}

	query := `
		INSERT INTO digests (digest_date, digest_type, as_of, payload, story_count)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (digest_date, digest_type) DO UPDATE SET
			as_of = EXCLUDED.as_of,
			payload = EXCLUDED.payload,
			story_count = EXCLUDED.story_count,
			created_at = NOW()
	`

	_, err = ps.db.ExecContext(ctx, query, d.Date, string(d.DigestType), d.AsOf, string(payload), len(d.TopStories))
	if err != nil {
		return fmt.Errorf("failed to save digest: %w", err)
	}
	ps.log.Debug("digest archived", "date", d.Date, "type", d.DigestType)
	return nil
}

// LatestDigest returns the newest digest of typ, or of any type when typ is
// empty. It returns nil, nil when there is none.
func (ps *PostgresStore) LatestDigest(ctx context.Context, typ digest.Type) (*digest.Digest, error) {
	query := `
		SELECT payload FROM digests
		WHERE $1::text = '' OR digest_type = $1
		ORDER BY as_of DESC
		LIMIT 1
	`

	var payload []byte
	err := ps.db.QueryRowContext(ctx, query, string(typ)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load digest: %w", err)
	}

	var d digest.Digest
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal digest: %w", err)
	}
	return &d, nil
}

// GetStats returns row counts per digest type.
func (ps *PostgresStore) GetStats(ctx context.Context) (map[string]int, error) {
	rows, err := ps.db.QueryContext(ctx, `SELECT digest_type, COUNT(*) FROM digests GROUP BY digest_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[string]int)
	total := 0
	for rows.Next() {
		var typ string
		var count int
		if err := rows.Scan(&typ, &count); err != nil {
			return nil, err
		}
		stats["type_"+typ] = count
		total += count
	}
	stats["total_digests"] = total
	return stats, rows.Err()
}

// Close closes the database connection
func (ps *PostgresStore) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}
