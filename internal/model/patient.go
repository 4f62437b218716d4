package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// VaccineList is an ordered list of vaccine names stored as JSONB.
// Appends keep insertion order; duplicates are permitted.
type VaccineList []string

func (v VaccineList) Value() (driver.Value, error) {
	if v == nil {
		v = VaccineList{}
	}
	return json.Marshal(v)
}

func (v *VaccineList) Scan(src interface{}) error {
	if src == nil {
		*v = VaccineList{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported vaccine list type %T", src)
	}
	return json.Unmarshal(b, v)
}

type Patient struct {
	Base
	Name     string      `db:"name" json:"name"`
	Breed    *string     `db:"breed" json:"breed,omitempty"`
	Age      *string     `db:"age" json:"age,omitempty"`
	Weight   *float64    `db:"weight" json:"weight,omitempty"`
	Color    *string     `db:"color" json:"color,omitempty"`
	OwnerID  uuid.UUID   `db:"owner_id" json:"owner_id"`
	Vaccines VaccineList `db:"vaccines" json:"vaccines"`
	Notes    string      `db:"notes" json:"notes"`
	ImageURL *string     `db:"image_url" json:"image_url,omitempty"`

	Owner *Owner `db:"-" json:"owner,omitempty"`
}

type CreatePatientRequest struct {
	Name    string    `json:"name" binding:"required"`
	Breed   *string   `json:"breed"`
	Age     *string   `json:"age"`
	Weight  *float64  `json:"weight"`
	Color   *string   `json:"color"`
	OwnerID uuid.UUID `json:"owner_id" binding:"required"`
}

type UpdatePatientRequest struct {
	Name     *string  `json:"name"`
	Breed    *string  `json:"breed"`
	Age      *string  `json:"age"`
	Color    *string  `json:"color"`
	ImageURL *string  `json:"image_url"`
	Weight   *float64 `json:"weight"`
}

type UpdateWeightRequest struct {
	Weight float64 `json:"weight" binding:"required,gt=0"`
}

type AddVaccineRequest struct {
	Name string `json:"name" binding:"required"`
}

type AppendNoteRequest struct {
	Note string `json:"note" binding:"required"`
}
