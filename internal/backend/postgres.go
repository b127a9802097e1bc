package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/delivery-cli/internal/branch"
	"github.com/sells-group/delivery-cli/internal/db"
	"github.com/sells-group/delivery-cli/internal/review"
)

// Postgres is the hosted backend. Orders go through the service's
// create_order function; reviews and branches are plain tables.
type Postgres struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres connects to the database at connString.
func NewPostgres(ctx context.Context, connString string, poolCfg db.PoolConfig) (*Postgres, error) {
	pool, err := db.Connect(ctx, connString, poolCfg)
	if err != nil {
		return nil, kindError(ErrUnavailable, "postgres: connect", err)
	}
	return &Postgres{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE EXTENSION IF NOT EXISTS postgis;

CREATE TABLE IF NOT EXISTS branches (
	key        TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	address    TEXT NOT NULL DEFAULT '',
	location   geometry(Point, 4326) NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reviews (
	id            BIGSERIAL PRIMARY KEY,
	customer_name TEXT NOT NULL,
	rating        SMALLINT NOT NULL CHECK (rating BETWEEN 1 AND 5),
	comment       TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_reviews_created_at ON reviews(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_reviews_rating ON reviews(rating, created_at DESC);
`

// Migrate creates the review and branch tables and warns when the order
// function is missing; that function belongs to the order service.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresMigration); err != nil {
		return classifyPg("postgres: migrate", err)
	}
	var present bool
	if err := p.pool.QueryRow(ctx, `SELECT to_regproc('create_order') IS NOT NULL`).Scan(&present); err != nil {
		return classifyPg("postgres: check create_order", err)
	}
	if !present {
		zap.L().Warn("create_order function not found; orders will fail until the order service installs it")
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, "SELECT 1")
	return classifyPg("postgres: ping", err)
}

func (p *Postgres) Close() error {
	if p.closeFn != nil {
		p.closeFn()
	}
	return nil
}

func (p *Postgres) CreateOrder(ctx context.Context, req OrderRequest) (*OrderReceipt, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	linesJSON, err := json.Marshal(req.Lines)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal order lines")
	}
	var location []byte
	if req.Location != nil {
		if location, err = req.Location.EWKB(); err != nil {
			return nil, eris.Wrap(err, "postgres: encode delivery location")
		}
	}

	receipt := &OrderReceipt{IdempotencyKey: req.IdempotencyKey, Total: req.Total}
	err = p.pool.QueryRow(ctx,
		`SELECT order_id, status, created_at FROM create_order($1, $2, $3, $4, $5::geometry, $6::jsonb, $7)`,
		req.IdempotencyKey, req.CustomerName, req.Phone, req.BranchKey, location, linesJSON, req.Total,
	).Scan(&receipt.OrderID, &receipt.Status, &receipt.CreatedAt)
	if err != nil {
		return nil, classifyPg("postgres: create order", err)
	}

	zap.L().Info("order submitted",
		zap.String("order_id", receipt.OrderID),
		zap.String("branch", req.BranchKey),
		zap.Bool("delivery", req.IsDelivery()),
		zap.Int("total", req.Total),
	)
	return receipt, nil
}

func (p *Postgres) InsertReview(ctx context.Context, sub review.Submission) (*review.Review, error) {
	n, err := sub.Validate()
	if err != nil {
		return nil, kindError(ErrValidation, "postgres: insert review", err)
	}

	r := &review.Review{CustomerName: n.CustomerName, Rating: n.Rating, Comment: n.Comment}
	err = p.pool.QueryRow(ctx,
		`INSERT INTO reviews (customer_name, rating, comment) VALUES ($1, $2, $3) RETURNING id, created_at`,
		n.CustomerName, n.Rating, n.Comment,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return nil, classifyPg("postgres: insert review", err)
	}
	return r, nil
}

func (p *Postgres) ListReviews(ctx context.Context, f review.Filter) ([]review.Review, error) {
	if err := f.Validate(); err != nil {
		return nil, kindError(ErrValidation, "postgres: list reviews", err)
	}
	query, args := reviewListQuery(f, func(i int) string { return fmt.Sprintf("$%d", i) })

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classifyPg("postgres: list reviews", err)
	}
	defer rows.Close()

	var out []review.Review
	for rows.Next() {
		var r review.Review
		if err := rows.Scan(&r.ID, &r.CustomerName, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan review")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyPg("postgres: list reviews", err)
	}
	return out, nil
}

var branchUpsert = db.UpsertConfig{
	Table:        "branches",
	Columns:      []string{"key", "name", "address", "location", "updated_at"},
	ConflictKeys: []string{"key"},
	Casts:        []string{"", "", "", "geometry", ""},
}

func (p *Postgres) SyncBranches(ctx context.Context, branches []branch.Branch) error {
	now := time.Now().UTC()
	rows := make([][]any, 0, len(branches))
	for _, b := range branches {
		loc, err := b.Location.EWKB()
		if err != nil {
			return eris.Wrapf(err, "postgres: encode branch %s", b.Key)
		}
		rows = append(rows, []any{b.Key, b.Name, b.Address, loc, now})
	}
	n, err := db.Upsert(ctx, p.pool, branchUpsert, rows)
	if err != nil {
		return classifyPg("postgres: sync branches", err)
	}
	zap.L().Info("branches synced", zap.Int64("rows", n))
	return nil
}

// reviewListQuery renders the listing query; placeholder numbers args for the
// driver's bind syntax.
func reviewListQuery(f review.Filter, placeholder func(i int) string) (string, []any) {
	query := `SELECT id, customer_name, rating, comment, created_at FROM reviews`
	var args []any
	if f.Rating != 0 {
		args = append(args, f.Rating)
		query += ` WHERE rating = ` + placeholder(len(args))
	}
	if f.Newest {
		query += ` ORDER BY created_at DESC, id DESC`
	} else {
		query += ` ORDER BY rating DESC, created_at DESC, id DESC`
	}
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += ` LIMIT ` + placeholder(len(args))
	}
	return query, args
}
