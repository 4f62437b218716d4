package model

import (
	"github.com/google/uuid"
)

type Document struct {
	Base
	PatientID       uuid.UUID  `db:"patient_id" json:"patient_id"`
	MedicalRecordID *uuid.UUID `db:"medical_record_id" json:"medical_record_id,omitempty"`
	Name            string     `db:"name" json:"name"`
	URL             string     `db:"url" json:"url"`
	Type            *string    `db:"type" json:"type,omitempty"`
	Size            *int64     `db:"size" json:"size,omitempty"`
	UploadedBy      *uuid.UUID `db:"uploaded_by" json:"uploaded_by,omitempty"`
}

type DeleteDocumentRequest struct {
	DocumentID string `json:"documentId" binding:"required"`
	URL        string `json:"url" binding:"required"`
}
