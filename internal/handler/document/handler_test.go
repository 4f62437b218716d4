package document

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatovet/clinic-api/internal/model"
	"github.com/gatovet/clinic-api/internal/repository"
	"github.com/gatovet/clinic-api/internal/service/document"
	"github.com/gatovet/clinic-api/pkg/blob"
)

type fakeDocumentRepo struct {
	documents map[uuid.UUID]*model.Document
}

func (f *fakeDocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	f.documents[doc.ID] = doc
	return nil
}

func (f *fakeDocumentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	doc, ok := f.documents[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return doc, nil
}

func (f *fakeDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.documents[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.documents, id)
	return nil
}

func (f *fakeDocumentRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Document, error) {
	var out []*model.Document
	for _, doc := range f.documents {
		if doc.PatientID == patientID {
			out = append(out, doc)
		}
	}
	return out, nil
}

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func (f *fakePatientRepo) Create(ctx context.Context, p *model.Patient) error { return nil }

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
	return nil, repository.ErrNotFound
}

func setupRouter(t *testing.T) (*gin.Engine, *fakeDocumentRepo, *model.Patient, *blob.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	docs := &fakeDocumentRepo{documents: make(map[uuid.UUID]*model.Document)}
	patient := &model.Patient{Base: model.Base{ID: uuid.New()}, Name: "Michi"}
	patients := &fakePatientRepo{patients: map[uuid.UUID]*model.Patient{patient.ID: patient}}
	store := blob.NewMemory()

	h := NewHandler(document.NewService(docs, patients, store, nil))

	engine := gin.New()
	h.RegisterLegacyRoutes(engine.Group("/api"))
	return engine, docs, patient, store
}

func multipartUpload(t *testing.T, fields map[string]string, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestUpload(t *testing.T) {
	engine, docs, patient, store := setupRouter(t)

	body, contentType := multipartUpload(t, map[string]string{
		"patientId": patient.ID.String(),
	}, "radiografia.jpg", "fake image bytes")

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var doc model.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, patient.ID, doc.PatientID)
	assert.Equal(t, "radiografia.jpg", doc.Name)
	assert.Equal(t, fmt.Sprintf("memory://clinic/%s/radiografia.jpg", patient.ID), doc.URL)

	require.Len(t, docs.documents, 1)
	assert.Equal(t, 1, store.Len())
}

func TestUploadMissingFile(t *testing.T) {
	engine, _, patient, _ := setupRouter(t)

	body, contentType := multipartUpload(t, map[string]string{
		"patientId": patient.ID.String(),
	}, "", "")

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Archivo y paciente requeridos"}`, rec.Body.String())
}

func TestUploadMissingPatient(t *testing.T) {
	engine, _, _, _ := setupRouter(t)

	body, contentType := multipartUpload(t, nil, "radiografia.jpg", "bytes")

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Archivo y paciente requeridos"}`, rec.Body.String())
}

func TestDelete(t *testing.T) {
	engine, docs, patient, store := setupRouter(t)

	// Seed through upload so blob and row exist.
	body, contentType := multipartUpload(t, map[string]string{
		"patientId": patient.ID.String(),
	}, "analitica.pdf", "pdf bytes")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc model.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))

	payload := fmt.Sprintf(`{"documentId":%q,"url":%q}`, doc.ID, doc.URL)
	req = httptest.NewRequest(http.MethodDelete, "/api/delete", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Empty(t, docs.documents)
	assert.Equal(t, 0, store.Len())
}

func TestDeleteFailure(t *testing.T) {
	engine, _, _, _ := setupRouter(t)

	payload := fmt.Sprintf(`{"documentId":%q,"url":"memory://clinic/nope/gone.pdf"}`, uuid.New())
	req := httptest.NewRequest(http.MethodDelete, "/api/delete", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Error al eliminar"}`, rec.Body.String())
}

func TestDeleteMissingFields(t *testing.T) {
	engine, _, _, _ := setupRouter(t)

	for _, payload := range []string{
		`{}`,
		`{"documentId":"abc"}`,
		`{"url":"memory://x"}`,
	} {
		req := httptest.NewRequest(http.MethodDelete, "/api/delete", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "payload %s", payload)
		assert.JSONEq(t, `{"error":"ID y URL requeridos"}`, rec.Body.String())
	}
}
