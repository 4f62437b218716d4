package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gatovet/clinic-api/internal/email"
	"github.com/gatovet/clinic-api/internal/model"
	"github.com/gatovet/clinic-api/internal/repository"
	"github.com/gatovet/clinic-api/pkg/messaging"
)

type Service struct {
	repo     repository.AppointmentRepository
	patients repository.PatientRepository
	emailSvc email.Service
	broker   messaging.Broker
}

func NewService(repo repository.AppointmentRepository, patients repository.PatientRepository, emailSvc email.Service, broker messaging.Broker) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		emailSvc: emailSvc,
		broker:   broker,
	}
}

// CreateAppointment books a visit. When the request carries a new-patient
// intake, the owner, the patient and the appointment are created together;
// none of the three survives a failure of the others.
func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	appointment := &model.Appointment{
		Base:   model.Base{ID: uuid.New()},
		Date:   model.Date(req.Date),
		Time:   req.Time,
		Reason: req.Reason,
		Status: model.AppointmentStatusScheduled,
	}

	var ownerEmail *string

	switch {
	case req.NewPatient != nil:
		intake := req.NewPatient
		owner := &model.Owner{
			Base:  model.Base{ID: uuid.New()},
			Name:  intake.OwnerName,
			Phone: intake.OwnerPhone,
			Email: intake.OwnerEmail,
		}
		patient := &model.Patient{
			Base:     model.Base{ID: uuid.New()},
			Name:     intake.Name,
			Breed:    intake.Breed,
			Age:      intake.Age,
			OwnerID:  owner.ID,
			Vaccines: model.VaccineList{},
		}
		appointment.PatientID = patient.ID

		if err := s.repo.CreateWithIntake(ctx, owner, patient, appointment); err != nil {
			return nil, fmt.Errorf("failed to create appointment with intake: %w", err)
		}
		appointment.Patient = patient
		patient.Owner = owner
		ownerEmail = owner.Email

	case req.PatientID != nil && *req.PatientID != uuid.Nil:
		patient, err := s.patients.Get(ctx, *req.PatientID)
		if err != nil {
			return nil, fmt.Errorf("failed to get patient: %w", err)
		}
		appointment.PatientID = patient.ID

		if err := s.repo.Create(ctx, appointment); err != nil {
			return nil, fmt.Errorf("failed to create appointment: %w", err)
		}
		appointment.Patient = patient
		if patient.Owner != nil {
			ownerEmail = patient.Owner.Email
		}

	default:
		return nil, fmt.Errorf("either patient_id or new_patient is required")
	}

	s.notifyOwner(ctx, appointment, ownerEmail)
	s.publish(ctx, "appointment.created", appointment)

	return appointment, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return apt, nil
}

// ListAppointments returns the agenda for the given filters, ordered by time.
func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (s *Service) notifyOwner(ctx context.Context, apt *model.Appointment, ownerEmail *string) {
	if s.emailSvc == nil || ownerEmail == nil || *ownerEmail == "" {
		return
	}

	petName := ""
	if apt.Patient != nil {
		petName = apt.Patient.Name
	}
	if err := s.emailSvc.SendAppointmentConfirmation(ctx, *ownerEmail, petName, string(apt.Date), apt.Time); err != nil {
		log.Error().Err(err).Str("appointment_id", apt.ID.String()).Msg("failed to send confirmation email")
	}
}

func (s *Service) publish(ctx context.Context, eventType string, payload interface{}) {
	if s.broker == nil {
		return
	}
	msg := messaging.Message{Type: eventType, Payload: payload}
	if err := s.broker.Publish(ctx, "appointments", msg); err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("failed to publish appointment event")
	}
}
