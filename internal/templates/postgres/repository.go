// Package postgres provides PostgreSQL implementation of the templates repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taarez/taarez-backend/internal/domain"
	"github.com/taarez/taarez-backend/internal/pkg/postgres"
	"github.com/taarez/taarez-backend/internal/templates"
)

// Repository implements the templates.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const templateColumns = `id, name, description, payload, created_at, updated_at`

// CreateTemplate inserts a new template.
func (r *Repository) CreateTemplate(ctx context.Context, tmpl *domain.Template) error {
	query := `
		INSERT INTO templates (name, description, payload)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, tmpl.Name, tmpl.Description, tmpl.Payload).
		Scan(&tmpl.ID, &tmpl.CreatedAt, &tmpl.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return templates.ErrTemplateNameExists
		}
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

// GetTemplate retrieves a template by ID.
func (r *Repository) GetTemplate(ctx context.Context, id string) (*domain.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates WHERE id = $1`

	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}

	tmpl, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByPos[domain.Template])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, templates.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	return tmpl, nil
}

// ListTemplates returns all templates ordered by name.
func (r *Repository) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	list, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Template])
	if err != nil {
		return nil, fmt.Errorf("collect templates: %w", err)
	}
	return list, nil
}

// UpdateTemplate persists the writable template fields.
func (r *Repository) UpdateTemplate(ctx context.Context, tmpl *domain.Template) error {
	query := `
		UPDATE templates
		SET name = $2, description = $3, payload = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query, tmpl.ID, tmpl.Name, tmpl.Description, tmpl.Payload).
		Scan(&tmpl.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return templates.ErrTemplateNotFound
		}
		if postgres.IsUniqueViolation(err) {
			return templates.ErrTemplateNameExists
		}
		return fmt.Errorf("update template: %w", err)
	}
	return nil
}

// DeleteTemplate removes a template.
func (r *Repository) DeleteTemplate(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return templates.ErrTemplateNotFound
	}
	return nil
}
