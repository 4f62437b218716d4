package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gatovet/clinic-api/internal/model"
	"github.com/gatovet/clinic-api/internal/repository"
)

func (r *ownerRepository) Create(ctx context.Context, owner *model.Owner) error {
	query := `
		INSERT INTO owners (id, name, phone, email, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	owner.CreatedAt = time.Now()
	owner.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		owner.ID,
		owner.Name,
		owner.Phone,
		owner.Email,
		owner.Address,
		owner.CreatedAt,
		owner.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create owner: %w", err)
	}
	return nil
}

func (r *ownerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Owner, error) {
	query := `SELECT * FROM owners WHERE id = $1`
	var owner model.Owner
	if err := r.db.GetContext(ctx, &owner, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}
	return &owner, nil
}

func (r *ownerRepository) Update(ctx context.Context, owner *model.Owner) error {
	query := `
		UPDATE owners
		SET name = $1, phone = $2, email = $3, address = $4, updated_at = $5
		WHERE id = $6
	`
	owner.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		owner.Name,
		owner.Phone,
		owner.Email,
		owner.Address,
		owner.UpdatedAt,
		owner.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update owner: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *ownerRepository) List(ctx context.Context) ([]*model.Owner, error) {
	query := `SELECT * FROM owners ORDER BY name ASC`
	var owners []*model.Owner
	if err := r.db.SelectContext(ctx, &owners, query); err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	return owners, nil
}
