package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gatovet/clinic-api/internal/model"
	"github.com/gatovet/clinic-api/internal/repository"
)

type Service struct {
	repo    repository.PatientRepository
	owners  repository.OwnerRepository
	records repository.MedicalRecordRepository
}

func NewService(repo repository.PatientRepository, owners repository.OwnerRepository, records repository.MedicalRecordRepository) *Service {
	return &Service{
		repo:    repo,
		owners:  owners,
		records: records,
	}
}

func (s *Service) CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	if _, err := s.owners.Get(ctx, req.OwnerID); err != nil {
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}

	patient := &model.Patient{
		Base:     model.Base{ID: uuid.New()},
		Name:     req.Name,
		Breed:    req.Breed,
		Age:      req.Age,
		Weight:   req.Weight,
		Color:    req.Color,
		OwnerID:  req.OwnerID,
		Vaccines: model.VaccineList{},
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

func (s *Service) ListPatients(ctx context.Context) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.Breed != nil {
		patient.Breed = req.Breed
	}
	if req.Age != nil {
		patient.Age = req.Age
	}
	if req.Color != nil {
		patient.Color = req.Color
	}
	if req.ImageURL != nil {
		patient.ImageURL = req.ImageURL
	}
	if req.Weight != nil {
		patient.Weight = req.Weight
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	return patient, nil
}

// UpdateWeight replaces the patient's weight. History lives in medical
// record snapshots, not here.
func (s *Service) UpdateWeight(ctx context.Context, id uuid.UUID, weight float64) error {
	if err := s.repo.UpdateWeight(ctx, id, weight); err != nil {
		return fmt.Errorf("failed to update weight: %w", err)
	}
	return nil
}

// AddVaccine appends to the vaccine list. Duplicates are permitted.
func (s *Service) AddVaccine(ctx context.Context, id uuid.UUID, name string) (model.VaccineList, error) {
	vaccines, err := s.repo.MutateVaccines(ctx, id, func(current model.VaccineList) model.VaccineList {
		return append(current, name)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add vaccine: %w", err)
	}
	return vaccines, nil
}

// RemoveVaccine deletes the entry at the given position. An out-of-range
// index leaves the list unchanged.
func (s *Service) RemoveVaccine(ctx context.Context, id uuid.UUID, index int) (model.VaccineList, error) {
	vaccines, err := s.repo.MutateVaccines(ctx, id, func(current model.VaccineList) model.VaccineList {
		if index < 0 || index >= len(current) {
			return current
		}
		out := make(model.VaccineList, 0, len(current)-1)
		out = append(out, current[:index]...)
		return append(out, current[index+1:]...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to remove vaccine: %w", err)
	}
	return vaccines, nil
}

// AppendNote adds a line to the patient's free-text notes.
func (s *Service) AppendNote(ctx context.Context, id uuid.UUID, note string) error {
	if err := s.repo.AppendNote(ctx, id, note); err != nil {
		return fmt.Errorf("failed to append note: %w", err)
	}
	return nil
}

// MedicalHistory returns the patient's records, newest first, with their
// attached documents.
func (s *Service) MedicalHistory(ctx context.Context, patientID uuid.UUID, filters *model.RecordFilters) ([]*model.MedicalRecord, error) {
	records, err := s.records.ListByPatient(ctx, patientID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list medical history: %w", err)
	}
	return records, nil
}

func (s *Service) UpdateMedicalRecord(ctx context.Context, id uuid.UUID, req *model.UpdateMedicalRecordRequest) (*model.MedicalRecord, error) {
	record, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get medical record: %w", err)
	}

	if req.Diagnosis != nil {
		record.Diagnosis = req.Diagnosis
	}
	if req.Treatment != nil {
		record.Treatment = req.Treatment
	}
	if req.Notes != nil {
		record.Notes = *req.Notes
	}

	if err := s.records.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update medical record: %w", err)
	}
	return record, nil
}

func (s *Service) CreateOwner(ctx context.Context, req *model.CreateOwnerRequest) (*model.Owner, error) {
	owner := &model.Owner{
		Base:    model.Base{ID: uuid.New()},
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
	}
	if err := s.owners.Create(ctx, owner); err != nil {
		return nil, fmt.Errorf("failed to create owner: %w", err)
	}
	return owner, nil
}

func (s *Service) GetOwner(ctx context.Context, id uuid.UUID) (*model.Owner, error) {
	owner, err := s.owners.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}
	return owner, nil
}

func (s *Service) ListOwners(ctx context.Context) ([]*model.Owner, error) {
	owners, err := s.owners.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	return owners, nil
}

func (s *Service) UpdateOwner(ctx context.Context, id uuid.UUID, req *model.UpdateOwnerRequest) (*model.Owner, error) {
	owner, err := s.owners.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}

	if req.Name != nil {
		owner.Name = *req.Name
	}
	if req.Phone != nil {
		owner.Phone = *req.Phone
	}
	if req.Email != nil {
		owner.Email = req.Email
	}
	if req.Address != nil {
		owner.Address = req.Address
	}

	if err := s.owners.Update(ctx, owner); err != nil {
		return nil, fmt.Errorf("failed to update owner: %w", err)
	}
	return owner, nil
}
