package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/review-risk/internal/db"
	"github.com/sells-group/review-risk/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

var reviewColumns = []string{"id", "place_id", "position", "data"}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS places (
	place_id   TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	doc        JSONB NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reviews (
	id       TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	place_id TEXT NOT NULL REFERENCES places(place_id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	data     JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reviews_place_id ON reviews(place_id, position);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) GetPlace(ctx context.Context, placeID string) (*model.PlaceInfo, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM places WHERE place_id = $1`, placeID,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get place %s", placeID)
	}

	place, err := decodePlace(placeID, doc)
	if err != nil {
		return nil, eris.Wrap(err, "postgres")
	}

	rows, err := s.pool.Query(ctx,
		`SELECT data FROM reviews WHERE place_id = $1 ORDER BY position`, placeID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list reviews %s", placeID)
	}
	defer rows.Close()

	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan review")
		}
		r, err := decodeReview(data)
		if err != nil {
			return nil, eris.Wrap(err, "postgres")
		}
		place.Reviews = append(place.Reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate reviews")
	}
	return place, nil
}

func (s *PostgresStore) SavePlace(ctx context.Context, placeID string, place model.PlaceInfo) error {
	doc, err := encodePlace(place)
	if err != nil {
		return eris.Wrap(err, "postgres: encode place")
	}
	reviews, err := encodeReviews(place.Reviews, uuid.NewString)
	if err != nil {
		return eris.Wrap(err, "postgres")
	}

	rows := make([][]any, len(reviews))
	for i, r := range reviews {
		rows[i] = []any{r.id, placeID, r.position, r.data}
	}

	err = db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO places (place_id, title, doc, fetched_at) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (place_id) DO UPDATE SET title = EXCLUDED.title, doc = EXCLUDED.doc, fetched_at = EXCLUDED.fetched_at`,
			placeID, place.Title, doc, nowUTC(),
		)
		if err != nil {
			return eris.Wrapf(err, "upsert place %s", placeID)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM reviews WHERE place_id = $1`, placeID); err != nil {
			return eris.Wrapf(err, "clear reviews %s", placeID)
		}
		_, err = db.CopyFrom(ctx, tx, "reviews", reviewColumns, rows)
		return err
	})
	return eris.Wrap(err, "postgres: save place")
}
