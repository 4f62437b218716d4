package lifecycle

import "errors"

var (
	// ErrInvalidTransition is returned when the requested status change is
	// not permitted from the appointment's current status. State is left
	// untouched.
	ErrInvalidTransition = errors.New("invalid appointment status transition")

	// ErrConsultationInProgress is returned by StartConsultation when another
	// appointment is already in consultation.
	ErrConsultationInProgress = errors.New("another consultation is already in progress")
)
