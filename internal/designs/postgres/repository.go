// Package postgres provides PostgreSQL implementation of the designs repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taarez/taarez-backend/internal/designs"
	"github.com/taarez/taarez-backend/internal/domain"
	"github.com/taarez/taarez-backend/internal/pkg/postgres"
)

// Repository implements the designs.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const designColumns = `id, user_id, name, category_id, fabric_id, customization, status::text, created_at, updated_at`

// CreateCategory inserts a new category.
func (r *Repository) CreateCategory(ctx context.Context, category *domain.DesignCategory) error {
	query := `
		INSERT INTO design_categories (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, category.Name, category.Description).
		Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return designs.ErrCategoryNameExists
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// ListCategories returns all categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]domain.DesignCategory, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, created_at
		FROM design_categories
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	list, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.DesignCategory])
	if err != nil {
		return nil, fmt.Errorf("collect categories: %w", err)
	}
	return list, nil
}

// CreateFabric inserts a new fabric.
func (r *Repository) CreateFabric(ctx context.Context, fabric *domain.Fabric) error {
	query := `
		INSERT INTO fabrics (category_id, name, color, price_per_meter)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		fabric.CategoryID,
		fabric.Name,
		fabric.Color,
		fabric.PricePerMeter,
	).Scan(&fabric.ID, &fabric.CreatedAt)
	if err != nil {
		switch {
		case postgres.IsUniqueViolation(err):
			return designs.ErrFabricNameExists
		case postgres.IsForeignKeyViolation(err):
			return designs.ErrInvalidReference
		}
		return fmt.Errorf("insert fabric: %w", err)
	}
	return nil
}

// GetFabric retrieves a fabric by ID. A missing fabric is an invalid reference.
func (r *Repository) GetFabric(ctx context.Context, id string) (*domain.Fabric, error) {
	query := `
		SELECT id, category_id, name, color, price_per_meter, created_at
		FROM fabrics
		WHERE id = $1
	`
	var fabric domain.Fabric
	err := r.db.QueryRow(ctx, query, id).Scan(
		&fabric.ID,
		&fabric.CategoryID,
		&fabric.Name,
		&fabric.Color,
		&fabric.PricePerMeter,
		&fabric.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, designs.ErrInvalidReference
		}
		return nil, fmt.Errorf("get fabric: %w", err)
	}
	return &fabric, nil
}

// ListFabrics returns the fabrics of a category ordered by name.
func (r *Repository) ListFabrics(ctx context.Context, categoryID string) ([]domain.Fabric, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, category_id, name, color, price_per_meter, created_at
		FROM fabrics
		WHERE category_id = $1
		ORDER BY name
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list fabrics: %w", err)
	}

	list, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Fabric])
	if err != nil {
		return nil, fmt.Errorf("collect fabrics: %w", err)
	}
	return list, nil
}

// CreateDesign inserts a new design.
func (r *Repository) CreateDesign(ctx context.Context, design *domain.Design) error {
	query := `
		INSERT INTO designs (user_id, name, category_id, fabric_id, customization, status)
		VALUES ($1, $2, $3, $4, $5, $6::design_status)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		design.UserID,
		design.Name,
		design.CategoryID,
		design.FabricID,
		design.Customization,
		string(design.Status),
	).Scan(&design.ID, &design.CreatedAt, &design.UpdatedAt)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return designs.ErrInvalidReference
		}
		return fmt.Errorf("insert design: %w", err)
	}
	return nil
}

// GetDesign retrieves a design by ID.
func (r *Repository) GetDesign(ctx context.Context, id string) (*domain.Design, error) {
	query := `SELECT ` + designColumns + ` FROM designs WHERE id = $1`
	design, err := scanDesign(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, designs.ErrDesignNotFound
		}
		return nil, fmt.Errorf("get design: %w", err)
	}
	return design, nil
}

// ListDesigns returns designs matching filter. Per-user listings are newest
// first; queue listings are oldest first.
func (r *Repository) ListDesigns(ctx context.Context, filter designs.DesignFilter) ([]domain.Design, error) {
	query := `SELECT ` + designColumns + ` FROM designs WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if filter.UserID != nil {
		query += fmt.Sprintf(" AND user_id = $%d", argNum)
		args = append(args, *filter.UserID)
		argNum++
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		query += fmt.Sprintf(" AND status::text = ANY($%d)", argNum)
		args = append(args, statuses)
	}

	if filter.UserID != nil {
		query += " ORDER BY created_at DESC, id"
	} else {
		query += " ORDER BY created_at ASC, id"
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list designs: %w", err)
	}
	defer rows.Close()

	list := make([]domain.Design, 0)
	for rows.Next() {
		design, err := scanDesign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan design: %w", err)
		}
		list = append(list, *design)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate designs: %w", err)
	}
	return list, nil
}

// UpdateDesignStatus moves a design from one status to another. It fails with
// ErrInvalidStatusTransition if the stored status is no longer from.
func (r *Repository) UpdateDesignStatus(ctx context.Context, id string, from, to domain.DesignStatus) (*domain.Design, error) {
	query := `
		UPDATE designs
		SET status = $3::design_status, updated_at = NOW()
		WHERE id = $1 AND status = $2::design_status
		RETURNING ` + designColumns

	design, err := scanDesign(r.db.QueryRow(ctx, query, id, string(from), string(to)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetDesign(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, designs.ErrInvalidStatusTransition
		}
		return nil, fmt.Errorf("update design status: %w", err)
	}
	return design, nil
}

func scanDesign(row pgx.Row) (*domain.Design, error) {
	var design domain.Design
	var status string
	err := row.Scan(
		&design.ID,
		&design.UserID,
		&design.Name,
		&design.CategoryID,
		&design.FabricID,
		&design.Customization,
		&status,
		&design.CreatedAt,
		&design.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	design.Status = domain.DesignStatus(status)
	return &design, nil
}
