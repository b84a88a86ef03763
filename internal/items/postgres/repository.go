// Package postgres provides PostgreSQL implementation of the items repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taarez/taarez-backend/internal/domain"
	"github.com/taarez/taarez-backend/internal/items"
)

// Repository implements the items.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateItem inserts a new item.
func (r *Repository) CreateItem(ctx context.Context, item *domain.Item) error {
	query := `
		INSERT INTO items (name, description, style)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, item.Name, item.Description, item.Style).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// GetItem retrieves an item by ID.
func (r *Repository) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	query := `
		SELECT id, name, description, style, created_at, updated_at
		FROM items
		WHERE id = $1
	`
	var item domain.Item
	err := r.db.QueryRow(ctx, query, id).Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.Style,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, items.ErrItemNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &item, nil
}

// ListItems returns a page of items, newest first.
func (r *Repository) ListItems(ctx context.Context, filter items.ListFilter) ([]domain.Item, error) {
	query := `
		SELECT id, name, description, style, created_at, updated_at
		FROM items
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	list, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Item])
	if err != nil {
		return nil, fmt.Errorf("collect items: %w", err)
	}
	return list, nil
}

// UpdateItem persists the writable item fields.
func (r *Repository) UpdateItem(ctx context.Context, item *domain.Item) error {
	query := `
		UPDATE items
		SET name = $2, description = $3, style = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query, item.ID, item.Name, item.Description, item.Style).
		Scan(&item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return items.ErrItemNotFound
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// DeleteItem removes an item.
func (r *Repository) DeleteItem(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return items.ErrItemNotFound
	}
	return nil
}
