package review

import (
	"context"
	"errors"
)

var (
	// ErrUnexpectedStatus is returned when the review API answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status from review api")
	// ErrMalformedResponse is returned when the body is not JSON or lacks results.
	ErrMalformedResponse = errors.New("malformed review api response")
)

// Review is one third-party review of a book, in upstream order.
type Review struct {
	BookTitle string
	Author    string
	Reviewer  string
	Date      string
	Summary   string
	URL       string
}

// Finder looks up reviews by free-text title.
type Finder interface {
	FindReviews(ctx context.Context, title string) ([]Review, error)
}

// Item is the view form of a Review.
type Item struct {
	BookTitle string
	Author    string
	Reviewer  string
	Date      string
	Link      string
	URL       string
}

// Page is the view model of the review page.
type Page struct {
	Search     string
	Reviews    []Item
	Count      int
	HasContent bool
}

// NewPage maps reviews to view items, keeping their order.
func NewPage(search string, reviews []Review) Page {
	items := make([]Item, 0, len(reviews))
	for _, r := range reviews {
		items = append(items, Item{
			BookTitle: r.BookTitle,
			Author:    r.Author,
			Reviewer:  r.Reviewer,
			Date:      r.Date,
			Link:      r.Summary,
			URL:       r.URL,
		})
	}
	return Page{
		Search:     search,
		Reviews:    items,
		Count:      len(items),
		HasContent: len(items) > 0,
	}
}
