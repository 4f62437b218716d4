package model

import (
	"time"

	"github.com/google/uuid"
)

type MedicalRecord struct {
	Base
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	AppointmentID *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	Date          time.Time  `db:"date" json:"date"`
	Weight        *float64   `db:"weight" json:"weight,omitempty"`
	Diagnosis     *string    `db:"diagnosis" json:"diagnosis,omitempty"`
	Treatment     *string    `db:"treatment" json:"treatment,omitempty"`
	Notes         string     `db:"notes" json:"notes"`
	DoctorID      *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`

	Documents []*Document `db:"-" json:"documents,omitempty"`
}

type UpdateMedicalRecordRequest struct {
	Diagnosis *string `json:"diagnosis"`
	Treatment *string `json:"treatment"`
	Notes     *string `json:"notes"`
}

type RecordFilters struct {
	StartDate time.Time
	EndDate   time.Time
}
