package backend

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sells-group/delivery-cli/internal/branch"
	"github.com/sells-group/delivery-cli/internal/review"
)

// SQLite is a file-backed stand-in for the hosted backend, for local
// development and demos.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLite{db: conn}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS branches (
	key        TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	address    TEXT NOT NULL DEFAULT '',
	lat        REAL NOT NULL,
	lng        REAL NOT NULL,
	location   BLOB NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS reviews (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	customer_name TEXT NOT NULL,
	rating        INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
	comment       TEXT,
	created_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
	id              TEXT PRIMARY KEY,
	idempotency_key TEXT NOT NULL UNIQUE,
	customer_name   TEXT NOT NULL,
	phone           TEXT NOT NULL,
	branch_key      TEXT NOT NULL,
	lat             REAL,
	lng             REAL,
	lines           TEXT NOT NULL,
	total           INTEGER NOT NULL,
	status          TEXT NOT NULL DEFAULT 'received',
	created_at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reviews_created_at ON reviews(created_at);
CREATE INDEX IF NOT EXISTS idx_reviews_rating ON reviews(rating, created_at);
`

func (s *SQLite) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLite) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) CreateOrder(ctx context.Context, req OrderRequest) (*OrderReceipt, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	linesJSON, err := json.Marshal(req.Lines)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal order lines")
	}
	var lat, lng sql.NullFloat64
	if req.Location != nil {
		lat = sql.NullFloat64{Float64: req.Location.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: req.Location.Lng, Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO orders (id, idempotency_key, customer_name, phone, branch_key, lat, lng, lines, total, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(idempotency_key) DO NOTHING`,
		uuid.New().String(), req.IdempotencyKey, req.CustomerName, req.Phone, req.BranchKey,
		lat, lng, string(linesJSON), req.Total, time.Now().UTC(),
	)
	if err != nil {
		return nil, classifySQLite("sqlite: create order", err)
	}

	receipt := &OrderReceipt{IdempotencyKey: req.IdempotencyKey}
	var branchKey string
	err = s.db.QueryRowContext(ctx,
		`SELECT id, status, total, branch_key, created_at FROM orders WHERE idempotency_key = ?`,
		req.IdempotencyKey,
	).Scan(&receipt.OrderID, &receipt.Status, &receipt.Total, &branchKey, &receipt.CreatedAt)
	if err != nil {
		return nil, classifySQLite("sqlite: read order", err)
	}
	if receipt.Total != req.Total || branchKey != req.BranchKey {
		return nil, kindError(ErrConflict, "sqlite: create order",
			eris.Errorf("idempotency key %s reused for a different order", req.IdempotencyKey))
	}

	zap.L().Info("order stored",
		zap.String("order_id", receipt.OrderID),
		zap.String("branch", req.BranchKey),
		zap.Bool("delivery", req.IsDelivery()),
	)
	return receipt, nil
}

func (s *SQLite) InsertReview(ctx context.Context, sub review.Submission) (*review.Review, error) {
	n, err := sub.Validate()
	if err != nil {
		return nil, kindError(ErrValidation, "sqlite: insert review", err)
	}
	r := &review.Review{CustomerName: n.CustomerName, Rating: n.Rating, Comment: n.Comment, CreatedAt: time.Now().UTC()}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reviews (customer_name, rating, comment, created_at) VALUES (?, ?, ?, ?)`,
		r.CustomerName, r.Rating, r.Comment, r.CreatedAt,
	)
	if err != nil {
		return nil, classifySQLite("sqlite: insert review", err)
	}
	if r.ID, err = res.LastInsertId(); err != nil {
		return nil, eris.Wrap(err, "sqlite: review id")
	}
	return r, nil
}

func (s *SQLite) ListReviews(ctx context.Context, f review.Filter) ([]review.Review, error) {
	if err := f.Validate(); err != nil {
		return nil, kindError(ErrValidation, "sqlite: list reviews", err)
	}
	query, args := reviewListQuery(f, func(int) string { return "?" })

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classifySQLite("sqlite: list reviews", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []review.Review
	for rows.Next() {
		var r review.Review
		var comment sql.NullString
		if err := rows.Scan(&r.ID, &r.CustomerName, &r.Rating, &comment, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan review")
		}
		if comment.Valid {
			r.Comment = &comment.String
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list reviews")
}

func (s *SQLite) SyncBranches(ctx context.Context, branches []branch.Branch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	for _, b := range branches {
		loc, err := b.Location.EWKB()
		if err != nil {
			return eris.Wrapf(err, "sqlite: encode branch %s", b.Key)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO branches (key, name, address, lat, lng, location, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET name = excluded.name, address = excluded.address,
			 lat = excluded.lat, lng = excluded.lng, location = excluded.location, updated_at = excluded.updated_at`,
			b.Key, b.Name, b.Address, b.Location.Lat, b.Location.Lng, loc, now,
		)
		if err != nil {
			return classifySQLite("sqlite: sync branch "+b.Key, err)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit branches")
}

// classifySQLite marks lock contention as unavailable and constraint
// failures as validation errors.
func classifySQLite(op string, err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case containsAny(msg, "SQLITE_BUSY", "database is locked"):
		return kindError(ErrUnavailable, op, err)
	case containsAny(msg, "UNIQUE constraint failed"):
		return kindError(ErrConflict, op, err)
	case containsAny(msg, "CHECK constraint failed", "NOT NULL constraint failed"):
		return kindError(ErrValidation, op, err)
	}
	return eris.Wrap(err, op)
}
