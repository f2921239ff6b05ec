package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	FindByTitlePrefix(ctx context.Context, pattern string, limit, offset int) ([]Book, error)
	FindByID(ctx context.Context, id string) (Book, error)
	Ping(ctx context.Context) error
}
