package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/gatovet/clinic-api/internal/config"
)

type Service interface {
	SendAppointmentConfirmation(ctx context.Context, to, petName, date, timeOfDay string) error
}

type service struct {
	dialer *gomail.Dialer
	from   string
}

func NewService(cfg config.SMTPConfig) Service {
	return &service{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *service) SendAppointmentConfirmation(ctx context.Context, to, petName, date, timeOfDay string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Cita confirmada para %s", petName))
	m.SetBody("text/plain", fmt.Sprintf(
		"Tu cita para %s ha sido agendada el %s a las %s.", petName, date, timeOfDay,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	return nil
}
