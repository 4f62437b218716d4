package document

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/gatovet/clinic-api/internal/model"
	"github.com/gatovet/clinic-api/internal/repository"
	"github.com/gatovet/clinic-api/pkg/blob"
	"github.com/gatovet/clinic-api/pkg/metrics"
)

// AttachInput describes a file being attached to a patient, optionally
// pre-associated with a medical record.
type AttachInput struct {
	PatientID       uuid.UUID
	MedicalRecordID *uuid.UUID
	Name            string
	ContentType     *string
	Size            *int64
	UploadedBy      *uuid.UUID
}

type Service struct {
	repo     repository.DocumentRepository
	patients repository.PatientRepository
	blobs    blob.Store
	metrics  *metrics.Metrics
}

func NewService(repo repository.DocumentRepository, patients repository.PatientRepository, blobs blob.Store, m *metrics.Metrics) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		blobs:    blobs,
		metrics:  m,
	}
}

// Attach uploads the file content to the blob store and registers the
// document row. Blob keys are namespaced by patient.
func (s *Service) Attach(ctx context.Context, input AttachInput, content io.Reader) (*model.Document, error) {
	if _, err := s.patients.Get(ctx, input.PatientID); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	key := fmt.Sprintf("clinic/%s/%s", input.PatientID, input.Name)
	contentType := ""
	if input.ContentType != nil {
		contentType = *input.ContentType
	}

	url, err := s.blobs.Put(ctx, key, content, contentType)
	if err != nil {
		s.countBlobOp("put", "error")
		return nil, fmt.Errorf("failed to store file: %w", err)
	}
	s.countBlobOp("put", "ok")

	doc := &model.Document{
		Base:            model.Base{ID: uuid.New()},
		PatientID:       input.PatientID,
		MedicalRecordID: input.MedicalRecordID,
		Name:            input.Name,
		URL:             url,
		Type:            input.ContentType,
		Size:            input.Size,
		UploadedBy:      input.UploadedBy,
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		// Best effort: do not leave the uploaded blob orphaned when the row
		// insert fails.
		if delErr := s.blobs.Delete(ctx, url); delErr != nil {
			s.countBlobOp("delete", "error")
		}
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return doc, nil
}

// Detach removes the blob first and then the row, matching the order of the
// two-step delete the API has always exposed.
func (s *Service) Detach(ctx context.Context, id uuid.UUID, url string) error {
	if err := s.blobs.Delete(ctx, url); err != nil {
		s.countBlobOp("delete", "error")
		return fmt.Errorf("failed to delete file: %w", err)
	}
	s.countBlobOp("delete", "ok")

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Document, error) {
	docs, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

func (s *Service) countBlobOp(op, status string) {
	if s.metrics != nil {
		s.metrics.BlobOperations.WithLabelValues(op, status).Inc()
	}
}
