package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatovet/clinic-api/internal/model"
	"github.com/gatovet/clinic-api/internal/repository"
	"github.com/gatovet/clinic-api/pkg/blob"
)

type fakeDocumentRepo struct {
	documents map[uuid.UUID]*model.Document
	createErr error
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{documents: make(map[uuid.UUID]*model.Document)}
}

func (f *fakeDocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
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

func newTestService() (*Service, *fakeDocumentRepo, *fakePatientRepo, *blob.MemoryStore) {
	docs := newFakeDocumentRepo()
	patients := &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
	store := blob.NewMemory()
	return NewService(docs, patients, store, nil), docs, patients, store
}

func addPatient(patients *fakePatientRepo) *model.Patient {
	p := &model.Patient{Base: model.Base{ID: uuid.New()}, Name: "Michi"}
	patients.patients[p.ID] = p
	return p
}

func TestAttach(t *testing.T) {
	svc, docs, patients, store := newTestService()
	p := addPatient(patients)

	contentType := "image/jpeg"
	doc, err := svc.Attach(context.Background(), AttachInput{
		PatientID:   p.ID,
		Name:        "radiografia.jpg",
		ContentType: &contentType,
	}, strings.NewReader("fake image bytes"))
	require.NoError(t, err)

	assert.Equal(t, p.ID, doc.PatientID)
	assert.Equal(t, fmt.Sprintf("memory://clinic/%s/radiografia.jpg", p.ID), doc.URL)

	stored, ok := store.Get(doc.URL)
	require.True(t, ok)
	assert.Equal(t, "fake image bytes", string(stored))

	_, err = docs.Get(context.Background(), doc.ID)
	require.NoError(t, err)
}

func TestAttachUnknownPatient(t *testing.T) {
	svc, _, _, store := newTestService()

	_, err := svc.Attach(context.Background(), AttachInput{
		PatientID: uuid.New(),
		Name:      "radiografia.jpg",
	}, strings.NewReader("bytes"))
	require.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestAttachRollsBackBlobOnRowFailure(t *testing.T) {
	svc, docs, patients, store := newTestService()
	p := addPatient(patients)
	docs.createErr = errors.New("insert failed")

	_, err := svc.Attach(context.Background(), AttachInput{
		PatientID: p.ID,
		Name:      "radiografia.jpg",
	}, strings.NewReader("bytes"))
	require.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestDetach(t *testing.T) {
	svc, docs, patients, store := newTestService()
	p := addPatient(patients)

	doc, err := svc.Attach(context.Background(), AttachInput{
		PatientID: p.ID,
		Name:      "analitica.pdf",
	}, strings.NewReader("pdf bytes"))
	require.NoError(t, err)

	require.NoError(t, svc.Detach(context.Background(), doc.ID, doc.URL))
	assert.Equal(t, 0, store.Len())

	_, err = docs.Get(context.Background(), doc.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDetachMissingBlob(t *testing.T) {
	svc, _, _, _ := newTestService()

	err := svc.Detach(context.Background(), uuid.New(), "memory://clinic/nope/missing.jpg")
	require.Error(t, err)
}

func TestListByPatient(t *testing.T) {
	svc, _, patients, _ := newTestService()
	p := addPatient(patients)
	other := addPatient(patients)

	_, err := svc.Attach(context.Background(), AttachInput{PatientID: p.ID, Name: "a.jpg"}, strings.NewReader("a"))
	require.NoError(t, err)
	_, err = svc.Attach(context.Background(), AttachInput{PatientID: other.ID, Name: "b.jpg"}, strings.NewReader("b"))
	require.NoError(t, err)

	got, err := svc.ListByPatient(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a.jpg", got[0].Name)
}
