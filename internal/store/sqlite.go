package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/review-risk/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS places (
	place_id   TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	doc        TEXT NOT NULL,
	fetched_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS reviews (
	id       TEXT PRIMARY KEY,
	place_id TEXT NOT NULL REFERENCES places(place_id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	data     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reviews_place_id ON reviews(place_id, position);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetPlace(ctx context.Context, placeID string) (*model.PlaceInfo, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM places WHERE place_id = ?`, placeID,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get place %s", placeID)
	}

	place, err := decodePlace(placeID, []byte(doc))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM reviews WHERE place_id = ? ORDER BY position`, placeID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list reviews %s", placeID)
	}
	defer rows.Close() //nolint:errcheck

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan review")
		}
		r, err := decodeReview([]byte(data))
		if err != nil {
			return nil, eris.Wrap(err, "sqlite")
		}
		place.Reviews = append(place.Reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate reviews")
	}
	return place, nil
}

func (s *SQLiteStore) SavePlace(ctx context.Context, placeID string, place model.PlaceInfo) error {
	doc, err := encodePlace(place)
	if err != nil {
		return eris.Wrap(err, "sqlite: encode place")
	}
	reviews, err := encodeReviews(place.Reviews, uuid.NewString)
	if err != nil {
		return eris.Wrap(err, "sqlite")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO places (place_id, title, doc, fetched_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (place_id) DO UPDATE SET title = excluded.title, doc = excluded.doc, fetched_at = excluded.fetched_at`,
		placeID, place.Title, string(doc), nowUTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: upsert place %s", placeID)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE place_id = ?`, placeID); err != nil {
		return eris.Wrapf(err, "sqlite: clear reviews %s", placeID)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO reviews (id, place_id, position, data) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare review insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, r := range reviews {
		if _, err := stmt.ExecContext(ctx, r.id, placeID, r.position, string(r.data)); err != nil {
			return eris.Wrapf(err, "sqlite: insert review %d", r.position)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit")
}
