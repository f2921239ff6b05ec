package book

import (
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"

	tableBooks  = "book2018"
	colBookID   = "book_id"
	colTitle    = "title"
	titlePrefix = `title LIKE ? ESCAPE '\'`
)

var bookColumns = []any{
	colBookID, colTitle, "authors", "description", "edition", "format", "pages",
	"rating", "rating_count", "review_count", "genres", "image_url",
	"official_site", "updated_at",
}

// bookRow mirrors the selected columns. Every descriptive column is
// nullable in the dataset, hence the pointers.
type bookRow struct {
	ID           string     `db:"book_id"`
	Title        string     `db:"title"`
	Authors      *string    `db:"authors"`
	Description  *string    `db:"description"`
	Edition      *string    `db:"edition"`
	Format       *string    `db:"format"`
	Pages        *int       `db:"pages"`
	Rating       *float64   `db:"rating"`
	RatingCount  *int       `db:"rating_count"`
	ReviewCount  *int       `db:"review_count"`
	Genres       *string    `db:"genres"`
	ImageURL     *string    `db:"image_url"`
	OfficialSite *string    `db:"official_site"`
	UpdatedAt    *time.Time `db:"updated_at"`
}

func (r bookRow) toBook(loc *time.Location) Book {
	b := Book{
		ID:           r.ID,
		Title:        r.Title,
		Authors:      deref(r.Authors),
		Description:  deref(r.Description),
		Edition:      deref(r.Edition),
		Format:       deref(r.Format),
		Pages:        r.Pages,
		Rating:       r.Rating,
		RatingCount:  r.RatingCount,
		ReviewCount:  r.ReviewCount,
		Genres:       deref(r.Genres),
		ImageURL:     deref(r.ImageURL),
		OfficialSite: deref(r.OfficialSite),
	}
	if r.UpdatedAt != nil {
		t := inZone(*r.UpdatedAt, loc)
		b.UpdatedAt = &t
	}
	return b
}

// inZone reads the stored wall clock as a time in loc. The column carries no
// zone of its own, so drivers hand it back as UTC.
func inZone(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// queryBuilder renders parameterized statements for one SQL dialect.
type queryBuilder struct {
	dialect goqu.DialectWrapper
}

func newQueryBuilder(dialect string) queryBuilder {
	return queryBuilder{dialect: goqu.Dialect(dialect)}
}

func (qb queryBuilder) titlePrefix(pattern string, limit, offset int) (string, []any, error) {
	if limit < 0 || offset < 0 {
		return "", nil, fmt.Errorf("invalid page: limit=%d offset=%d", limit, offset)
	}
	query, args, err := qb.dialect.
		From(tableBooks).
		Select(bookColumns...).
		Where(goqu.L(titlePrefix, pattern)).
		Order(goqu.C(colTitle).Asc()).
		Limit(uint(limit)).
		Offset(uint(offset)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("build title prefix query: %w", err)
	}
	return query, args, nil
}

func (qb queryBuilder) byID(id string) (string, []any, error) {
	query, args, err := qb.dialect.
		From(tableBooks).
		Select(bookColumns...).
		Where(goqu.C(colBookID).Eq(id)).
		Limit(1).
		Prepared(true).
		ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("build find by id query: %w", err)
	}
	return query, args, nil
}
