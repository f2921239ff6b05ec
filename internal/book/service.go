package book

import (
	"context"
)

// Service provides book-related business logic.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Search returns one page of books whose title starts with q.
func (s *Service) Search(ctx context.Context, q string, offset int) (SearchPage, error) {
	books, err := s.repo.FindByTitlePrefix(ctx, TitlePrefixPattern(q), PageSize, offset)
	if err != nil {
		return SearchPage{}, err
	}
	return NewSearchPage(q, offset, books), nil
}

// Detail returns the display form of a single book.
func (s *Service) Detail(ctx context.Context, id string) (DetailPage, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return DetailPage{}, err
	}
	return DetailPage{Book: b.ForDisplay(), HasSite: b.HasOfficialSite()}, nil
}

// Ready reports whether the underlying store answers.
func (s *Service) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
