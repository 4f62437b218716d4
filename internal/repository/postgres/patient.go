package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gatovet/clinic-api/internal/model"
	"github.com/gatovet/clinic-api/internal/repository"
)

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	return createPatient(ctx, r.GetDB(), patient)
}

// createPatient runs against either the pool or an open transaction so the
// intake flow can reuse it.
func createPatient(ctx context.Context, e sqlx.ExtContext, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, name, breed, age, weight, color, owner_id,
			vaccines, notes, image_url, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()
	if patient.Vaccines == nil {
		patient.Vaccines = model.VaccineList{}
	}

	_, err := e.ExecContext(ctx, query,
		patient.ID,
		patient.Name,
		patient.Breed,
		patient.Age,
		patient.Weight,
		patient.Color,
		patient.OwnerID,
		patient.Vaccines,
		patient.Notes,
		patient.ImageURL,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE id = $1`
	var patient model.Patient
	if err := r.GetDB().GetContext(ctx, &patient, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	var owner model.Owner
	if err := r.GetDB().GetContext(ctx, &owner, `SELECT * FROM owners WHERE id = $1`, patient.OwnerID); err == nil {
		patient.Owner = &owner
	}

	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	query := `SELECT * FROM patients ORDER BY name ASC`
	var patients []*model.Patient
	if err := r.GetDB().SelectContext(ctx, &patients, query); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	if err := r.attachOwners(ctx, patients); err != nil {
		return nil, err
	}
	return patients, nil
}

func (r *patientRepository) attachOwners(ctx context.Context, patients []*model.Patient) error {
	if len(patients) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(patients))
	for _, p := range patients {
		ids = append(ids, p.OwnerID)
	}

	query, args, err := sqlx.In(`SELECT * FROM owners WHERE id IN (?)`, ids)
	if err != nil {
		return fmt.Errorf("failed to build owner query: %w", err)
	}

	var owners []*model.Owner
	if err := r.GetDB().SelectContext(ctx, &owners, r.GetDB().Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load owners: %w", err)
	}

	byID := make(map[uuid.UUID]*model.Owner, len(owners))
	for _, o := range owners {
		byID[o.ID] = o
	}
	for _, p := range patients {
		p.Owner = byID[p.OwnerID]
	}
	return nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET name = $1, breed = $2, age = $3, weight = $4, color = $5,
			image_url = $6, updated_at = $7
		WHERE id = $8
	`
	patient.UpdatedAt = time.Now()

	result, err := r.GetDB().ExecContext(ctx, query,
		patient.Name,
		patient.Breed,
		patient.Age,
		patient.Weight,
		patient.Color,
		patient.ImageURL,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
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

func (r *patientRepository) UpdateWeight(ctx context.Context, id uuid.UUID, weight float64) error {
	query := `UPDATE patients SET weight = $1, updated_at = $2 WHERE id = $3`

	result, err := r.GetDB().ExecContext(ctx, query, weight, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update patient weight: %w", err)
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

func (r *patientRepository) AppendNote(ctx context.Context, id uuid.UUID, note string) error {
	return appendPatientNote(ctx, r.GetDB(), id, note)
}

// appendPatientNote joins the note onto the existing free text with a newline.
// Empty prior notes take the note verbatim, with no leading separator.
func appendPatientNote(ctx context.Context, e sqlx.ExtContext, id uuid.UUID, note string) error {
	query := `
		UPDATE patients
		SET notes = CASE WHEN notes = '' THEN $1 ELSE notes || E'\n' || $1 END,
			updated_at = $2
		WHERE id = $3
	`
	result, err := e.ExecContext(ctx, query, note, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to append patient note: %w", err)
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

func (r *patientRepository) MutateVaccines(ctx context.Context, id uuid.UUID, fn func(model.VaccineList) model.VaccineList) (model.VaccineList, error) {
	var out model.VaccineList
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var current model.VaccineList
		if err := tx.GetContext(ctx, &current, `SELECT vaccines FROM patients WHERE id = $1 FOR UPDATE`, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("failed to load vaccines: %w", err)
		}

		out = fn(current)
		if out == nil {
			out = model.VaccineList{}
		}

		if _, err := tx.ExecContext(ctx, `UPDATE patients SET vaccines = $1, updated_at = $2 WHERE id = $3`, out, time.Now(), id); err != nil {
			return fmt.Errorf("failed to update vaccines: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
