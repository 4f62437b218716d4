package model

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Date is a calendar day serialized as "2006-01-02" on the wire. Postgres
// DATE columns scan back as time.Time, so Date normalizes both directions
// to the same representation.
type Date string

const dateLayout = "2006-01-02"

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = Date(v.Format(dateLayout))
	case []byte:
		*d = Date(v)
	case string:
		*d = Date(v)
	case nil:
		*d = ""
	default:
		return fmt.Errorf("failed to scan date from %T", src)
	}
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return string(d), nil
}

type AppointmentStatus string

const (
	AppointmentStatusScheduled      AppointmentStatus = "scheduled"
	AppointmentStatusWaiting        AppointmentStatus = "waiting"
	AppointmentStatusInConsultation AppointmentStatus = "in_consultation"
	AppointmentStatusCompleted      AppointmentStatus = "completed"
	AppointmentStatusCancelled      AppointmentStatus = "cancelled"
)

type Appointment struct {
	Base
	PatientID    uuid.UUID         `db:"patient_id" json:"patient_id"`
	Date         Date              `db:"date" json:"date"`
	Time         string            `db:"time" json:"time"`
	Reason       *string           `db:"reason" json:"reason,omitempty"`
	Status       AppointmentStatus `db:"status" json:"status"`
	CancelReason *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`

	Patient *Patient `db:"-" json:"patient,omitempty"`
}

// NewPatientIntake carries the owner and patient details used when an
// appointment is booked for a pet that is not yet registered.
type NewPatientIntake struct {
	OwnerName  string  `json:"owner_name" binding:"required"`
	OwnerPhone string  `json:"owner_phone" binding:"required"`
	OwnerEmail *string `json:"owner_email" binding:"omitempty,email"`
	Name       string  `json:"name" binding:"required"`
	Breed      *string `json:"breed"`
	Age        *string `json:"age"`
}

type CreateAppointmentRequest struct {
	PatientID  *uuid.UUID        `json:"patient_id"`
	NewPatient *NewPatientIntake `json:"new_patient"`
	Date       string            `json:"date" binding:"required,datetime=2006-01-02"`
	Time       string            `json:"time" binding:"required"`
	Reason     *string           `json:"reason"`
}

type CancelAppointmentRequest struct {
	Reason *string `json:"reason"`
}

type AppointmentFilters struct {
	Date      string
	Status    AppointmentStatus
	PatientID uuid.UUID
}
