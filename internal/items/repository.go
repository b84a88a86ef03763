package items

import (
	"context"

	"github.com/taarez/taarez-backend/internal/domain"
)

// Repository defines the interface for item data operations.
type Repository interface {
	CreateItem(ctx context.Context, item *domain.Item) error
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	ListItems(ctx context.Context, filter ListFilter) ([]domain.Item, error)
	UpdateItem(ctx context.Context, item *domain.Item) error
	DeleteItem(ctx context.Context, id string) error
}

// ListFilter bounds an item listing.
type ListFilter struct {
	Limit  int
	Offset int
}
