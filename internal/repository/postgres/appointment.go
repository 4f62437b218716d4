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

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	return createAppointment(ctx, r.GetDB(), appointment)
}

func createAppointment(ctx context.Context, e sqlx.ExtContext, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, date, time, reason, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	_, err := e.ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.Date,
		appointment.Time,
		appointment.Reason,
		appointment.Status,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) CreateWithIntake(ctx context.Context, owner *model.Owner, patient *model.Patient, appointment *model.Appointment) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		ownerQuery := `
			INSERT INTO owners (id, name, phone, email, address, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		owner.CreatedAt = time.Now()
		owner.UpdatedAt = time.Now()
		if _, err := tx.ExecContext(ctx, ownerQuery,
			owner.ID, owner.Name, owner.Phone, owner.Email, owner.Address,
			owner.CreatedAt, owner.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create owner: %w", err)
		}

		if err := createPatient(ctx, tx, patient); err != nil {
			return err
		}

		return createAppointment(ctx, tx, appointment)
	})
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT * FROM appointments WHERE id = $1`
	var appointment model.Appointment
	if err := r.GetDB().GetContext(ctx, &appointment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT * FROM appointments WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.Date != "" {
			query += fmt.Sprintf(" AND date = $%d", argCount)
			args = append(args, filters.Date)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if filters.PatientID != uuid.Nil {
			query += fmt.Sprintf(" AND patient_id = $%d", argCount)
			args = append(args, filters.PatientID)
			argCount++
		}
	}

	// Waiting-room and agenda views both sort by scheduled time.
	query += " ORDER BY time ASC"

	var appointments []*model.Appointment
	if err := r.GetDB().SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	if err := r.attachPatients(ctx, appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) attachPatients(ctx context.Context, appointments []*model.Appointment) error {
	if len(appointments) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(appointments))
	for _, a := range appointments {
		ids = append(ids, a.PatientID)
	}

	query, args, err := sqlx.In(`SELECT * FROM patients WHERE id IN (?)`, ids)
	if err != nil {
		return fmt.Errorf("failed to build patient query: %w", err)
	}

	var patients []*model.Patient
	if err := r.GetDB().SelectContext(ctx, &patients, r.GetDB().Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load patients: %w", err)
	}

	byID := make(map[uuid.UUID]*model.Patient, len(patients))
	for _, p := range patients {
		byID[p.ID] = p
	}
	for _, a := range appointments {
		a.Patient = byID[a.PatientID]
	}
	return nil
}

func (r *appointmentRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to model.AppointmentStatus) (*model.Appointment, error) {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
		RETURNING *
	`
	var appointment model.Appointment
	err := r.GetDB().GetContext(ctx, &appointment, query, to, time.Now(), id, from)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrStatusConflict
		}
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Cancel(ctx context.Context, id uuid.UUID, reason *string) (*model.Appointment, error) {
	query := `
		UPDATE appointments
		SET status = $1, cancel_reason = $2, updated_at = $3
		WHERE id = $4 AND status IN ($5, $6)
		RETURNING *
	`
	var appointment model.Appointment
	err := r.GetDB().GetContext(ctx, &appointment, query,
		model.AppointmentStatusCancelled,
		reason,
		time.Now(),
		id,
		model.AppointmentStatusScheduled,
		model.AppointmentStatusWaiting,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrStatusConflict
		}
		return nil, fmt.Errorf("failed to cancel appointment: %w", err)
	}
	return &appointment, nil
}
