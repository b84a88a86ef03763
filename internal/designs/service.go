// Package designs handles garment categories, fabrics, customer designs and
// the tailor work queue.
package designs

import (
	"context"
	"errors"
	"fmt"

	"github.com/taarez/taarez-backend/internal/domain"
	"github.com/taarez/taarez-backend/internal/pkg/ctxlog"
)

// Service implements design business logic.
type Service struct {
	repo Repository
}

// NewService creates a new designs service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CategoryInput holds the fields of a new category.
type CategoryInput struct {
	Name        string
	Description string
}

// FabricInput holds the fields of a new fabric.
type FabricInput struct {
	CategoryID    string
	Name          string
	Color         string
	PricePerMeter float64
}

// DesignInput holds the fields of a design saved by a customer.
type DesignInput struct {
	Name          string
	CategoryID    string
	FabricID      string
	Customization map[string]any
}

// CreateCategory stores a new category.
func (s *Service) CreateCategory(ctx context.Context, input CategoryInput) (*domain.DesignCategory, error) {
	category := &domain.DesignCategory{
		Name:        input.Name,
		Description: input.Description,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

// ListCategories returns all categories ordered by name.
func (s *Service) ListCategories(ctx context.Context) ([]domain.DesignCategory, error) {
	return s.repo.ListCategories(ctx)
}

// CreateFabric stores a new fabric in an existing category.
func (s *Service) CreateFabric(ctx context.Context, input FabricInput) (*domain.Fabric, error) {
	fabric := &domain.Fabric{
		CategoryID:    input.CategoryID,
		Name:          input.Name,
		Color:         input.Color,
		PricePerMeter: input.PricePerMeter,
	}
	if err := s.repo.CreateFabric(ctx, fabric); err != nil {
		return nil, fmt.Errorf("create fabric: %w", err)
	}
	return fabric, nil
}

// ListFabrics returns the fabrics of a category. An unknown category yields an empty list.
func (s *Service) ListFabrics(ctx context.Context, categoryID string) ([]domain.Fabric, error) {
	return s.repo.ListFabrics(ctx, categoryID)
}

// SaveDesign stores a pending design owned by userID.
func (s *Service) SaveDesign(ctx context.Context, userID string, input DesignInput) (*domain.Design, error) {
	fabric, err := s.repo.GetFabric(ctx, input.FabricID)
	if err != nil {
		return nil, err
	}
	if fabric.CategoryID != input.CategoryID {
		return nil, ErrFabricCategoryMismatch
	}

	customization := input.Customization
	if customization == nil {
		customization = map[string]any{}
	}

	design := &domain.Design{
		UserID:        userID,
		Name:          input.Name,
		CategoryID:    input.CategoryID,
		FabricID:      input.FabricID,
		Customization: customization,
		Status:        domain.DesignStatusPending,
	}
	if err := s.repo.CreateDesign(ctx, design); err != nil {
		return nil, fmt.Errorf("save design: %w", err)
	}

	ctxlog.FromContext(ctx).Info("design saved", "design_id", design.ID)
	return design, nil
}

// ListUserDesigns returns the designs owned by userID, newest first.
func (s *Service) ListUserDesigns(ctx context.Context, userID string) ([]domain.Design, error) {
	return s.repo.ListDesigns(ctx, DesignFilter{UserID: &userID})
}

// Queue returns designs awaiting tailoring, oldest first. Without statuses it
// returns pending and in-progress designs.
func (s *Service) Queue(ctx context.Context, statuses []domain.DesignStatus) ([]domain.Design, error) {
	if len(statuses) == 0 {
		statuses = []domain.DesignStatus{domain.DesignStatusPending, domain.DesignStatusInProgress}
	}
	return s.repo.ListDesigns(ctx, DesignFilter{Statuses: statuses})
}

// UpdateStatus moves a design along the tailoring workflow.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.DesignStatus) (*domain.Design, error) {
	current, err := s.repo.GetDesign(ctx, id)
	if err != nil {
		return nil, err
	}

	if !current.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, current.Status, status)
	}

	design, err := s.repo.UpdateDesignStatus(ctx, id, current.Status, status)
	if err != nil {
		if errors.Is(err, ErrInvalidStatusTransition) {
			return nil, fmt.Errorf("%w: status changed concurrently", err)
		}
		return nil, fmt.Errorf("update design status: %w", err)
	}

	ctxlog.FromContext(ctx).Info("design status changed",
		"design_id", id,
		"from", current.Status,
		"to", status,
	)
	return design, nil
}
