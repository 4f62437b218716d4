package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gatovet/clinic-api/internal/model"
	"github.com/gatovet/clinic-api/internal/repository"
	"github.com/gatovet/clinic-api/pkg/messaging"
	"github.com/gatovet/clinic-api/pkg/metrics"
)

// ChannelAppointments is the broker channel appointment change events are
// published on. Clients listening here can refresh instead of polling.
const ChannelAppointments = "appointments"

// FinalizeInput carries everything the doctor recorded during a consultation.
type FinalizeInput struct {
	DoctorID    *uuid.UUID
	Diagnosis   *string
	Treatment   *string
	Notes       []string
	DocumentIDs []uuid.UUID
}

// Service drives appointments through the clinic:
// scheduled → waiting → in_consultation → completed, with cancellation
// allowed from scheduled and waiting.
type Service struct {
	appointments  repository.AppointmentRepository
	consultations repository.ConsultationRepository
	broker        messaging.Broker
	metrics       *metrics.Metrics
}

func NewService(appointments repository.AppointmentRepository, consultations repository.ConsultationRepository, broker messaging.Broker, m *metrics.Metrics) *Service {
	return &Service{
		appointments:  appointments,
		consultations: consultations,
		broker:        broker,
		metrics:       m,
	}
}

// CheckIn marks a scheduled appointment as arrived (waiting room).
func (s *Service) CheckIn(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if apt.Status != model.AppointmentStatusScheduled {
		s.countRejected(model.AppointmentStatusWaiting, "invalid_transition")
		return nil, ErrInvalidTransition
	}

	apt, err = s.appointments.UpdateStatusIf(ctx, id, model.AppointmentStatusScheduled, model.AppointmentStatusWaiting)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			s.countRejected(model.AppointmentStatusWaiting, "invalid_transition")
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("failed to check in appointment: %w", err)
	}

	s.countTransition(model.AppointmentStatusWaiting)
	s.publish(ctx, "appointment.checked_in", apt)
	return apt, nil
}

// StartConsultation moves a waiting appointment into consultation. Only one
// consultation may be active at a time across the clinic.
func (s *Service) StartConsultation(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.consultations.Start(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStatusConflict):
			s.countRejected(model.AppointmentStatusInConsultation, "invalid_transition")
			return nil, ErrInvalidTransition
		case errors.Is(err, repository.ErrConsultationActive):
			s.countRejected(model.AppointmentStatusInConsultation, "consultation_active")
			return nil, ErrConsultationInProgress
		}
		return nil, fmt.Errorf("failed to start consultation: %w", err)
	}

	s.countTransition(model.AppointmentStatusInConsultation)
	s.publish(ctx, "appointment.consultation_started", apt)
	return apt, nil
}

// FinalizeConsultation completes an in-consultation appointment: it creates
// the medical record (with the patient's current weight snapshot), links the
// attached documents to it, appends the diagnosis to the patient's notes and
// marks the appointment completed. All writes commit or roll back together.
func (s *Service) FinalizeConsultation(ctx context.Context, id uuid.UUID, input FinalizeInput) (*model.MedicalRecord, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if apt.Status != model.AppointmentStatusInConsultation {
		s.countRejected(model.AppointmentStatusCompleted, "invalid_transition")
		return nil, ErrInvalidTransition
	}

	record := &model.MedicalRecord{
		Base:      model.Base{ID: uuid.New()},
		Diagnosis: input.Diagnosis,
		Treatment: input.Treatment,
		Notes:     strings.Join(input.Notes, "\n"),
		DoctorID:  input.DoctorID,
	}

	if err := s.consultations.Finalize(ctx, id, record, input.DocumentIDs); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			s.countRejected(model.AppointmentStatusCompleted, "invalid_transition")
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("failed to finalize consultation: %w", err)
	}

	s.countTransition(model.AppointmentStatusCompleted)
	s.publish(ctx, "appointment.completed", map[string]interface{}{
		"appointment_id":    id,
		"medical_record_id": record.ID,
	})
	return record, nil
}

// Cancel moves a scheduled or waiting appointment to cancelled. Completed and
// in-consultation appointments cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason *string) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if apt.Status != model.AppointmentStatusScheduled && apt.Status != model.AppointmentStatusWaiting {
		s.countRejected(model.AppointmentStatusCancelled, "invalid_transition")
		return nil, ErrInvalidTransition
	}

	apt, err = s.appointments.Cancel(ctx, id, reason)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			s.countRejected(model.AppointmentStatusCancelled, "invalid_transition")
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("failed to cancel appointment: %w", err)
	}

	s.countTransition(model.AppointmentStatusCancelled)
	s.publish(ctx, "appointment.cancelled", apt)
	return apt, nil
}

// ListWaitingRoom returns waiting appointments ordered by scheduled time.
func (s *Service) ListWaitingRoom(ctx context.Context) ([]*model.Appointment, error) {
	appointments, err := s.appointments.List(ctx, &model.AppointmentFilters{
		Status: model.AppointmentStatusWaiting,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list waiting room: %w", err)
	}
	return appointments, nil
}

// publish is best effort: a transition that committed is never rolled back
// because the notification channel is down.
func (s *Service) publish(ctx context.Context, eventType string, payload interface{}) {
	if s.broker == nil {
		return
	}
	msg := messaging.Message{Type: eventType, Payload: payload}
	if err := s.broker.Publish(ctx, ChannelAppointments, msg); err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("failed to publish appointment event")
	}
}

func (s *Service) countTransition(to model.AppointmentStatus) {
	if s.metrics != nil {
		s.metrics.TransitionsTotal.WithLabelValues(string(to)).Inc()
	}
}

func (s *Service) countRejected(to model.AppointmentStatus, reason string) {
	if s.metrics != nil {
		s.metrics.TransitionsFailed.WithLabelValues(string(to), reason).Inc()
	}
}
