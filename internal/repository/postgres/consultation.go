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

func (r *consultationRepository) Start(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var appointment model.Appointment
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		// Lock the row so two doctors cannot both pass the checks below.
		if err := tx.GetContext(ctx, &appointment, `SELECT * FROM appointments WHERE id = $1 FOR UPDATE`, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("failed to get appointment: %w", err)
		}

		if appointment.Status != model.AppointmentStatusWaiting {
			return repository.ErrStatusConflict
		}

		var active bool
		if err := tx.GetContext(ctx, &active,
			`SELECT EXISTS (SELECT 1 FROM appointments WHERE status = $1 AND id != $2)`,
			model.AppointmentStatusInConsultation, id,
		); err != nil {
			return fmt.Errorf("failed to check active consultations: %w", err)
		}
		if active {
			return repository.ErrConsultationActive
		}

		query := `
			UPDATE appointments
			SET status = $1, updated_at = $2
			WHERE id = $3
			RETURNING *
		`
		if err := tx.GetContext(ctx, &appointment, query, model.AppointmentStatusInConsultation, time.Now(), id); err != nil {
			return fmt.Errorf("failed to start consultation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *consultationRepository) Finalize(ctx context.Context, appointmentID uuid.UUID, record *model.MedicalRecord, documentIDs []uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		// The conditional update doubles as the precondition check: a second
		// finalize finds no in_consultation row and rolls back with nothing
		// written.
		var patientID uuid.UUID
		err := tx.GetContext(ctx, &patientID, `
			UPDATE appointments
			SET status = $1, updated_at = $2
			WHERE id = $3 AND status = $4
			RETURNING patient_id
		`, model.AppointmentStatusCompleted, time.Now(), appointmentID, model.AppointmentStatusInConsultation)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return repository.ErrStatusConflict
			}
			return fmt.Errorf("failed to complete appointment: %w", err)
		}

		// Snapshot the patient's current weight onto the record.
		var weight *float64
		if err := tx.GetContext(ctx, &weight, `SELECT weight FROM patients WHERE id = $1 FOR UPDATE`, patientID); err != nil {
			return fmt.Errorf("failed to snapshot patient weight: %w", err)
		}

		record.PatientID = patientID
		record.AppointmentID = &appointmentID
		record.Weight = weight
		record.CreatedAt = time.Now()
		record.UpdatedAt = time.Now()
		if record.Date.IsZero() {
			record.Date = time.Now()
		}

		recordQuery := `
			INSERT INTO medical_records (
				id, patient_id, appointment_id, date, weight, diagnosis,
				treatment, notes, doctor_id, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`
		if _, err := tx.ExecContext(ctx, recordQuery,
			record.ID,
			record.PatientID,
			record.AppointmentID,
			record.Date,
			record.Weight,
			record.Diagnosis,
			record.Treatment,
			record.Notes,
			record.DoctorID,
			record.CreatedAt,
			record.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create medical record: %w", err)
		}

		if len(documentIDs) > 0 {
			query, args, err := sqlx.In(
				`UPDATE documents SET medical_record_id = ? WHERE id IN (?) AND medical_record_id IS NULL`,
				record.ID, documentIDs,
			)
			if err != nil {
				return fmt.Errorf("failed to build document link query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
				return fmt.Errorf("failed to link documents: %w", err)
			}
		}

		if record.Diagnosis != nil && *record.Diagnosis != "" {
			if err := appendPatientNote(ctx, tx, patientID, *record.Diagnosis); err != nil {
				return err
			}
		}

		return nil
	})
}
