package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/gatovet/clinic-api/internal/model"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStatusConflict is returned when a conditional status update matched
	// no row, i.e. the appointment was not in the expected state.
	ErrStatusConflict = errors.New("appointment status conflict")
	// ErrConsultationActive is returned when a consultation is already in
	// progress for another appointment.
	ErrConsultationActive = errors.New("another consultation is in progress")
)

type OwnerRepository interface {
	Create(ctx context.Context, owner *model.Owner) error
	Get(ctx context.Context, id uuid.UUID) (*model.Owner, error)
	Update(ctx context.Context, owner *model.Owner) error
	List(ctx context.Context) ([]*model.Owner, error)
}

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	List(ctx context.Context) ([]*model.Patient, error)
	Update(ctx context.Context, patient *model.Patient) error
	UpdateWeight(ctx context.Context, id uuid.UUID, weight float64) error
	AppendNote(ctx context.Context, id uuid.UUID, note string) error
	// MutateVaccines applies fn to the current vaccine list under a row lock
	// and persists the result, so two staff devices cannot lose each other's
	// edits.
	MutateVaccines(ctx context.Context, id uuid.UUID, fn func(model.VaccineList) model.VaccineList) (model.VaccineList, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	// CreateWithIntake inserts owner, patient and appointment in one
	// transaction for the new-patient booking path.
	CreateWithIntake(ctx context.Context, owner *model.Owner, patient *model.Patient, appointment *model.Appointment) error
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	// UpdateStatusIf moves the appointment from one status to another only if
	// it is currently in the expected state; ErrStatusConflict otherwise.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to model.AppointmentStatus) (*model.Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID, reason *string) (*model.Appointment, error)
}

// ConsultationRepository owns the transactional primitives behind the
// consultation phase of the appointment lifecycle.
type ConsultationRepository interface {
	// Start moves a waiting appointment into consultation, rejecting when any
	// other appointment is already in consultation.
	Start(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	// Finalize completes a consultation: inserts the medical record, links
	// the listed documents to it, appends the diagnosis to the patient notes
	// and marks the appointment completed, all in one transaction.
	Finalize(ctx context.Context, appointmentID uuid.UUID, record *model.MedicalRecord, documentIDs []uuid.UUID) error
}

type MedicalRecordRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, filters *model.RecordFilters) ([]*model.MedicalRecord, error)
	Update(ctx context.Context, record *model.MedicalRecord) error
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error
	Get(ctx context.Context, id uuid.UUID) (*model.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Document, error)
}

type ProfileRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
}
