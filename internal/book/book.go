package book

import (
	"errors"
	"math"
	"strings"
	"time"
)

// ErrNotFound is returned when no book matches the requested identifier.
var ErrNotFound = errors.New("book not found")

// PageSize is the number of results shown per search page.
const PageSize = 10

// MaxOffset is the largest offset whose next page is still representable.
const MaxOffset = math.MaxInt - PageSize

const (
	storedDelimiter  = "|"
	displayDelimiter = ","
)

// Book is a read-only row of the book2018 table.
type Book struct {
	ID           string
	Title        string
	Authors      string
	Description  string
	Edition      string
	Format       string
	Pages        *int
	Rating       *float64
	RatingCount  *int
	ReviewCount  *int
	Genres       string
	ImageURL     string
	OfficialSite string
	UpdatedAt    *time.Time
}

// HasOfficialSite reports whether the book links to an official site.
func (b Book) HasOfficialSite() bool {
	return strings.TrimSpace(b.OfficialSite) != ""
}

// ForDisplay returns a copy whose genres and authors use the display
// delimiter. The stored delimiter never reaches the view layer.
func (b Book) ForDisplay() Book {
	b.Genres = strings.ReplaceAll(b.Genres, storedDelimiter, displayDelimiter)
	b.Authors = strings.ReplaceAll(b.Authors, storedDelimiter, displayDelimiter)
	return b
}

// SearchPage is the view model of the results page.
type SearchPage struct {
	Result     []Book
	HasResult  bool
	Q          string
	PrevOffset int
	NextOffset int
}

// NewSearchPage computes previous/next offsets for the given page.
// The previous offset is clamped at zero, the next one is not.
func NewSearchPage(q string, offset int, result []Book) SearchPage {
	return SearchPage{
		Result:     result,
		HasResult:  len(result) > 0,
		Q:          q,
		PrevOffset: max(0, offset-PageSize),
		NextOffset: offset + PageSize,
	}
}

// DetailPage is the view model of the book page.
type DetailPage struct {
	Book    Book
	HasSite bool
}

// TitlePrefixPattern turns user input into a LIKE pattern matching titles
// that start with q literally. An empty q matches every title.
func TitlePrefixPattern(q string) string {
	return likeEscaper.Replace(q) + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
