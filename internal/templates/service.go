// Package templates manages named design presets that clients start new designs from.
package templates

import (
	"context"
	"fmt"

	"github.com/taarez/taarez-backend/internal/domain"
	"github.com/taarez/taarez-backend/internal/pkg/ctxlog"
)

// Service implements template business logic.
type Service struct {
	repo Repository
}

// NewService creates a new templates service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// TemplateInput holds the writable template fields.
type TemplateInput struct {
	Name        string
	Description string
	Payload     map[string]any
}

// CreateTemplate stores a new template. Names are unique.
func (s *Service) CreateTemplate(ctx context.Context, input TemplateInput) (*domain.Template, error) {
	tmpl := &domain.Template{
		Name:        input.Name,
		Description: input.Description,
		Payload:     payloadOrEmpty(input.Payload),
	}

	if err := s.repo.CreateTemplate(ctx, tmpl); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}

	ctxlog.FromContext(ctx).Info("template created", "template_id", tmpl.ID, "name", tmpl.Name)
	return tmpl, nil
}

// GetTemplate returns a template by ID.
func (s *Service) GetTemplate(ctx context.Context, id string) (*domain.Template, error) {
	return s.repo.GetTemplate(ctx, id)
}

// ListTemplates returns all templates ordered by name.
func (s *Service) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	return s.repo.ListTemplates(ctx)
}

// UpdateTemplate replaces the writable fields of a template.
func (s *Service) UpdateTemplate(ctx context.Context, id string, input TemplateInput) (*domain.Template, error) {
	tmpl, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	tmpl.Name = input.Name
	tmpl.Description = input.Description
	tmpl.Payload = payloadOrEmpty(input.Payload)

	if err := s.repo.UpdateTemplate(ctx, tmpl); err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return tmpl, nil
}

// DeleteTemplate removes a template.
func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.repo.DeleteTemplate(ctx, id); err != nil {
		return err
	}

	ctxlog.FromContext(ctx).Info("template deleted", "template_id", id)
	return nil
}

func payloadOrEmpty(p map[string]any) map[string]any {
	if p == nil {
		return map[string]any{}
	}
	return p
}
