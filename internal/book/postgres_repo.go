package book

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepo reads books through a bounded pgx pool. Each call holds one
// pooled connection for exactly one statement.
type PostgresRepo struct {
	db             *pgxpool.Pool
	queries        queryBuilder
	acquireTimeout time.Duration
	loc            *time.Location
}

func NewPostgresRepo(db *pgxpool.Pool, acquireTimeout time.Duration, loc *time.Location) *PostgresRepo {
	return &PostgresRepo{
		db:             db,
		queries:        newQueryBuilder(DialectPostgres),
		acquireTimeout: acquireTimeout,
		loc:            loc,
	}
}

func (r *PostgresRepo) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	if r.acquireTimeout > 0 {
		timeoutCtx, cancel := context.WithTimeout(ctx, r.acquireTimeout)
		defer cancel()
		ctx = timeoutCtx
	}
	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return conn, nil
}

func (r *PostgresRepo) FindByTitlePrefix(ctx context.Context, pattern string, limit, offset int) ([]Book, error) {
	query, args, err := r.queries.titlePrefix(pattern, limit, offset)
	if err != nil {
		return nil, err
	}

	conn, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query books by title prefix: %w", err)
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[bookRow])
	if err != nil {
		return nil, fmt.Errorf("scan books: %w", err)
	}

	out := make([]Book, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.toBook(r.loc))
	}
	return out, nil
}

func (r *PostgresRepo) FindByID(ctx context.Context, id string) (Book, error) {
	query, args, err := r.queries.byID(id)
	if err != nil {
		return Book{}, err
	}

	conn, err := r.acquire(ctx)
	if err != nil {
		return Book{}, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return Book{}, fmt.Errorf("query book %s: %w", id, err)
	}
	rec, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[bookRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, fmt.Errorf("scan book %s: %w", id, err)
	}
	return rec.toBook(r.loc), nil
}

// Ping acquires a pooled connection, round-trips to the server and releases it.
func (r *PostgresRepo) Ping(ctx context.Context) error {
	conn, err := r.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}
