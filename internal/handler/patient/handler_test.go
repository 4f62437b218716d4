package patient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatovet/clinic-api/internal/middleware"
	"github.com/gatovet/clinic-api/internal/model"
	"github.com/gatovet/clinic-api/internal/repository"
	authService "github.com/gatovet/clinic-api/internal/service/auth"
	patientService "github.com/gatovet/clinic-api/internal/service/patient"
	"github.com/gatovet/clinic-api/pkg/auth"
	"github.com/gatovet/clinic-api/pkg/security"
)

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func (f *fakePatientRepo) Create(ctx context.Context, p *model.Patient) error {
	f.patients[p.ID] = p
	return nil
}

func (f *fakePatientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakePatientRepo) List(ctx context.Context) ([]*model.Patient, error) { return nil, nil }

func (f *fakePatientRepo) Update(ctx context.Context, p *model.Patient) error { return nil }

func (f *fakePatientRepo) UpdateWeight(ctx context.Context, id uuid.UUID, weight float64) error {
	return nil
}

func (f *fakePatientRepo) AppendNote(ctx context.Context, id uuid.UUID, note string) error {
	return nil
}

func (f *fakePatientRepo) MutateVaccines(ctx context.Context, id uuid.UUID, fn func(model.VaccineList) model.VaccineList) (model.VaccineList, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Vaccines = fn(p.Vaccines)
	return p.Vaccines, nil
}

type fakeOwnerRepo struct {
	owners map[uuid.UUID]*model.Owner
}

func (f *fakeOwnerRepo) Create(ctx context.Context, o *model.Owner) error {
	f.owners[o.ID] = o
	return nil
}

func (f *fakeOwnerRepo) Get(ctx context.Context, id uuid.UUID) (*model.Owner, error) {
	o, ok := f.owners[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return o, nil
}

func (f *fakeOwnerRepo) Update(ctx context.Context, o *model.Owner) error { return nil }

func (f *fakeOwnerRepo) List(ctx context.Context) ([]*model.Owner, error) { return nil, nil }

type fakeRecordRepo struct {
	records map[uuid.UUID]*model.MedicalRecord
}

func (f *fakeRecordRepo) Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error) {
	r, ok := f.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r, nil
}

func (f *fakeRecordRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, filters *model.RecordFilters) ([]*model.MedicalRecord, error) {
	return nil, nil
}

func (f *fakeRecordRepo) Update(ctx context.Context, r *model.MedicalRecord) error {
	f.records[r.ID] = r
	return nil
}

type fakeProfileRepo struct{}

func (f *fakeProfileRepo) Get(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeProfileRepo) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	return nil, repository.ErrNotFound
}

func setupRouter(t *testing.T, role model.Role) (*gin.Engine, *fakeRecordRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	patients := &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
	owners := &fakeOwnerRepo{owners: make(map[uuid.UUID]*model.Owner)}
	records := &fakeRecordRepo{records: make(map[uuid.UUID]*model.MedicalRecord)}
	h := NewHandler(patientService.NewService(patients, owners, records))

	authSvc := authService.NewService(&fakeProfileRepo{}, auth.NewJWTService("test-secret", 1), security.NewBcryptHasher(4))
	am := middleware.NewAuthMiddleware(authSvc)

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(middleware.ContextProfileID, uuid.New().String())
		c.Set(middleware.ContextRole, string(role))
		c.Next()
	})
	h.RegisterRoutes(engine.Group("/api/v1"), am)
	return engine, records
}

func strPtr(s string) *string { return &s }

func addRecord(records *fakeRecordRepo) *model.MedicalRecord {
	rec := &model.MedicalRecord{
		Base:      model.Base{ID: uuid.New()},
		PatientID: uuid.New(),
		Diagnosis: strPtr("Otitis"),
	}
	records.records[rec.ID] = rec
	return rec
}

func TestUpdateMedicalRecordAsDoctor(t *testing.T) {
	engine, records := setupRouter(t, model.RoleDoctor)
	rec := addRecord(records)

	req := httptest.NewRequest(http.MethodPut,
		fmt.Sprintf("/api/v1/medical-records/%s", rec.ID),
		strings.NewReader(`{"treatment":"Gotas óticas 7 días"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data model.MedicalRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data.Treatment)
	assert.Equal(t, "Gotas óticas 7 días", *resp.Data.Treatment)
}

func TestUpdateMedicalRecordAsAssistant(t *testing.T) {
	engine, records := setupRouter(t, model.RoleAssistant)
	rec := addRecord(records)

	req := httptest.NewRequest(http.MethodPut,
		fmt.Sprintf("/api/v1/medical-records/%s", rec.ID),
		strings.NewReader(`{"notes":"control en una semana"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateMedicalRecordForbiddenForReceptionist(t *testing.T) {
	engine, records := setupRouter(t, model.RoleReceptionist)
	rec := addRecord(records)

	req := httptest.NewRequest(http.MethodPut,
		fmt.Sprintf("/api/v1/medical-records/%s", rec.ID),
		strings.NewReader(`{"diagnosis":"Cambio"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	// Record untouched.
	assert.Equal(t, "Otitis", *records.records[rec.ID].Diagnosis)
}
