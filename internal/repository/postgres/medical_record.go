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

func (r *medicalRecordRepository) Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error) {
	query := `SELECT * FROM medical_records WHERE id = $1`
	var record model.MedicalRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get medical record: %w", err)
	}

	docs, err := r.documentsFor(ctx, []uuid.UUID{record.ID})
	if err != nil {
		return nil, err
	}
	record.Documents = docs[record.ID]

	return &record, nil
}

func (r *medicalRecordRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, filters *model.RecordFilters) ([]*model.MedicalRecord, error) {
	query := `SELECT * FROM medical_records WHERE patient_id = $1`
	args := []interface{}{patientID}

	if filters != nil {
		if !filters.StartDate.IsZero() {
			query += fmt.Sprintf(" AND date >= $%d", len(args)+1)
			args = append(args, filters.StartDate)
		}
		if !filters.EndDate.IsZero() {
			query += fmt.Sprintf(" AND date <= $%d", len(args)+1)
			args = append(args, filters.EndDate)
		}
	}

	query += " ORDER BY date DESC"

	var records []*model.MedicalRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}

	if len(records) == 0 {
		return records, nil
	}

	ids := make([]uuid.UUID, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	docs, err := r.documentsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		rec.Documents = docs[rec.ID]
	}

	return records, nil
}

func (r *medicalRecordRepository) documentsFor(ctx context.Context, recordIDs []uuid.UUID) (map[uuid.UUID][]*model.Document, error) {
	query, args, err := sqlx.In(`SELECT * FROM documents WHERE medical_record_id IN (?)`, recordIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build document query: %w", err)
	}

	var docs []*model.Document
	if err := r.db.SelectContext(ctx, &docs, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}

	byRecord := make(map[uuid.UUID][]*model.Document)
	for _, d := range docs {
		if d.MedicalRecordID == nil {
			continue
		}
		byRecord[*d.MedicalRecordID] = append(byRecord[*d.MedicalRecordID], d)
	}
	return byRecord, nil
}

// Update only touches the clinical fields; identity columns (patient,
// appointment) stay as written at finalization.
func (r *medicalRecordRepository) Update(ctx context.Context, record *model.MedicalRecord) error {
	query := `
		UPDATE medical_records
		SET diagnosis = $1, treatment = $2, notes = $3, updated_at = $4
		WHERE id = $5
	`
	record.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		record.Diagnosis,
		record.Treatment,
		record.Notes,
		record.UpdatedAt,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update medical record: %w", err)
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
