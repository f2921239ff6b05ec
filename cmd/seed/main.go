package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"bookbrowser/internal/config"
	"bookbrowser/internal/platform/database"
	"bookbrowser/internal/platform/logging"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	"github.com/jackc/pgx/v5"
	"github.com/jmoiron/sqlx"
)

const table = "book2018"

var columns = []string{
	"book_id", "title", "authors", "description", "edition", "format", "pages",
	"rating", "rating_count", "review_count", "genres", "image_url",
	"official_site", "updated_at",
}

func main() {
	count := flag.Int("count", 10000, "Number of books to generate")
	seed := flag.Int64("seed", 2018, "Random seed")
	flag.Parse()

	config.LoadEnvFiles()
	cfg, err := config.Load(nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)

	rows := generate(*count, rand.New(rand.NewSource(*seed)))
	logger.Info("generated books", "count", len(rows))

	ctx := context.Background()
	var inserted int64
	if cfg.DBDriver == config.DriverSQLite {
		inserted, err = seedSQLite(ctx, cfg.SQLiteDSN(), rows)
	} else {
		inserted, err = seedPostgres(ctx, cfg.PostgresDSN(), rows, logger)
	}
	if err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
	logger.Info("seed finished", "inserted", inserted)
}

// generate builds goodreads-like rows. Genres and authors use the stored
// "|" delimiter.
func generate(n int, rng *rand.Rand) [][]any {
	genres := []string{"Fiction", "Science Fiction", "Fantasy", "History", "Romance", "Mystery", "Classics", "Young Adult", "Philosophy", "Poetry"}
	formats := []string{"Hardcover", "Paperback", "Kindle Edition", "Mass Market Paperback"}
	authors := []string{"Frank Herbert", "Ursula K. Le Guin", "Toni Morrison", "Italo Calvino", "Octavia E. Butler", "Haruki Murakami"}

	updated := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([][]any, 0, n)
	for i := 0; i < n; i++ {
		g := pick(rng, genres, 1+rng.Intn(3))
		a := pick(rng, authors, 1+rng.Intn(2))
		title := fmt.Sprintf("%s %s %d", randomWord(rng), randomWord(rng), i+1)

		var site any
		if rng.Intn(4) == 0 {
			site = fmt.Sprintf("http://example.com/books/%d", i+1)
		}

		out = append(out, []any{
			fmt.Sprintf("%d", 100000+i),
			title,
			strings.Join(a, "|"),
			fmt.Sprintf("A story about %s.", strings.ToLower(randomWord(rng))),
			"First Edition",
			formats[rng.Intn(len(formats))],
			100 + rng.Intn(800),
			float64(300+rng.Intn(200)) / 100,
			rng.Intn(100000),
			rng.Intn(5000),
			strings.Join(g, "|"),
			fmt.Sprintf("https://images.example.com/%d.jpg", i+1),
			site,
			updated.Add(time.Duration(i) * time.Minute),
		})
	}
	return out
}

func pick(rng *rand.Rand, from []string, k int) []string {
	idx := rng.Perm(len(from))[:k]
	out := make([]string, 0, k)
	for _, i := range idx {
		out = append(out, from[i])
	}
	return out
}

func seedPostgres(ctx context.Context, dsn string, rows [][]any, logger *slog.Logger) (int64, error) {
	pool, err := database.NewPostgresPool(ctx, dsn, 1)
	if err != nil {
		return 0, err
	}
	defer pool.Close()

	logger.Info("copying books into database", "dsn", database.RedactDSN(dsn))
	n, err := pool.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("copy books: %w", err)
	}
	return n, nil
}

const sqliteBatch = 500

func seedSQLite(ctx context.Context, dsn string, rows [][]any) (int64, error) {
	db, err := database.OpenSQL(database.DriverSQLite, dsn, 1)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	return insertBatches(ctx, db, rows)
}

func insertBatches(ctx context.Context, db *sqlx.DB, rows [][]any) (int64, error) {
	cols := make([]any, len(columns))
	for i, c := range columns {
		cols[i] = c
	}

	var total int64
	for start := 0; start < len(rows); start += sqliteBatch {
		end := min(start+sqliteBatch, len(rows))
		query, args, err := goqu.Dialect("sqlite3").
			Insert(table).
			Cols(cols...).
			Vals(rows[start:end]...).
			Prepared(true).
			ToSQL()
		if err != nil {
			return total, fmt.Errorf("build insert: %w", err)
		}
		res, err := db.ExecContext(ctx, query, args...)
		if err != nil {
			return total, fmt.Errorf("insert books: %w", err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

func randomWord(rng *rand.Rand) string {
	words := []string{
		"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
		"Love", "War", "Peace", "Science", "Nature", "History", "Future",
		"Past", "Reality", "Imagination", "Wisdom", "Life", "Death",
		"Light", "Darkness", "World", "Time", "Space", "Mind", "Soul",
	}
	return words[rng.Intn(len(words))]
}
