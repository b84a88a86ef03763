package templates

import (
	"context"

	"github.com/taarez/taarez-backend/internal/domain"
)

// Repository defines the interface for template data operations.
type Repository interface {
	CreateTemplate(ctx context.Context, tmpl *domain.Template) error
	GetTemplate(ctx context.Context, id string) (*domain.Template, error)
	ListTemplates(ctx context.Context) ([]domain.Template, error)
	UpdateTemplate(ctx context.Context, tmpl *domain.Template) error
	DeleteTemplate(ctx context.Context, id string) error
}
