// Package items provides the shop catalogue of garment items.
package items

import (
	"context"
	"fmt"

	"github.com/taarez/taarez-backend/internal/domain"
	"github.com/taarez/taarez-backend/internal/pkg/ctxlog"
)

// Pagination limits for item listings.
const (
	DefaultLimit = 100
	MaxLimit     = 100
)

// Service implements item business logic.
type Service struct {
	repo Repository
}

// NewService creates a new items service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ItemInput holds the writable item fields.
type ItemInput struct {
	Name        string
	Description string
	Style       string
}

// CreateItem stores a new item.
func (s *Service) CreateItem(ctx context.Context, input ItemInput) (*domain.Item, error) {
	item := &domain.Item{
		Name:        input.Name,
		Description: input.Description,
		Style:       input.Style,
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	ctxlog.FromContext(ctx).Info("item created", "item_id", item.ID)
	return item, nil
}

// GetItem returns an item by ID.
func (s *Service) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	return s.repo.GetItem(ctx, id)
}

// ListItems returns items newest first. Out-of-range limits are clamped.
func (s *Service) ListItems(ctx context.Context, filter ListFilter) ([]domain.Item, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultLimit
	}
	if filter.Limit > MaxLimit {
		filter.Limit = MaxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.ListItems(ctx, filter)
}

// UpdateItem replaces the writable fields of an item.
func (s *Service) UpdateItem(ctx context.Context, id string, input ItemInput) (*domain.Item, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	item.Name = input.Name
	item.Description = input.Description
	item.Style = input.Style

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

// DeleteItem removes an item.
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return err
	}

	ctxlog.FromContext(ctx).Info("item deleted", "item_id", id)
	return nil
}
