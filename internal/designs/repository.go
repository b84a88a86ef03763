package designs

import (
	"context"

	"github.com/taarez/taarez-backend/internal/domain"
)

// Repository defines the interface for design data operations.
type Repository interface {
	CreateCategory(ctx context.Context, category *domain.DesignCategory) error
	ListCategories(ctx context.Context) ([]domain.DesignCategory, error)

	CreateFabric(ctx context.Context, fabric *domain.Fabric) error
	GetFabric(ctx context.Context, id string) (*domain.Fabric, error)
	ListFabrics(ctx context.Context, categoryID string) ([]domain.Fabric, error)

	CreateDesign(ctx context.Context, design *domain.Design) error
	GetDesign(ctx context.Context, id string) (*domain.Design, error)
	ListDesigns(ctx context.Context, filter DesignFilter) ([]domain.Design, error)
	UpdateDesignStatus(ctx context.Context, id string, from, to domain.DesignStatus) (*domain.Design, error)
}

// DesignFilter represents filter criteria for listing designs.
type DesignFilter struct {
	UserID   *string
	Statuses []domain.DesignStatus
}
