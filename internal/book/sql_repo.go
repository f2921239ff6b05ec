package book

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLRepo reads books through any database/sql driver wrapped by sqlx.
// The pool bound is whatever MaxOpenConns the caller configured on db.
type SQLRepo struct {
	db             *sqlx.DB
	queries        queryBuilder
	acquireTimeout time.Duration
	loc            *time.Location
}

func NewSQLRepo(db *sqlx.DB, dialect string, acquireTimeout time.Duration, loc *time.Location) *SQLRepo {
	return &SQLRepo{
		db:             db,
		queries:        newQueryBuilder(dialect),
		acquireTimeout: acquireTimeout,
		loc:            loc,
	}
}

func (r *SQLRepo) acquire(ctx context.Context) (*sqlx.Conn, error) {
	if r.acquireTimeout > 0 {
		timeoutCtx, cancel := context.WithTimeout(ctx, r.acquireTimeout)
		defer cancel()
		ctx = timeoutCtx
	}
	conn, err := r.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return conn, nil
}

func (r *SQLRepo) FindByTitlePrefix(ctx context.Context, pattern string, limit, offset int) ([]Book, error) {
	query, args, err := r.queries.titlePrefix(pattern, limit, offset)
	if err != nil {
		return nil, err
	}

	conn, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var records []bookRow
	if err := conn.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("query books by title prefix: %w", err)
	}

	out := make([]Book, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.toBook(r.loc))
	}
	return out, nil
}

func (r *SQLRepo) FindByID(ctx context.Context, id string) (Book, error) {
	query, args, err := r.queries.byID(id)
	if err != nil {
		return Book{}, err
	}

	conn, err := r.acquire(ctx)
	if err != nil {
		return Book{}, err
	}
	defer conn.Close()

	var rec bookRow
	if err := conn.GetContext(ctx, &rec, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, fmt.Errorf("query book %s: %w", id, err)
	}
	return rec.toBook(r.loc), nil
}

func (r *SQLRepo) Ping(ctx context.Context) error {
	conn, err := r.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}
