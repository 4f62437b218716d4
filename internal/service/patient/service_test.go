package patient

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatovet/clinic-api/internal/model"
	"github.com/gatovet/clinic-api/internal/repository"
)

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
}

func (f *fakePatientRepo) addPatient(vaccines ...string) *model.Patient {
	p := &model.Patient{
		Base:     model.Base{ID: uuid.New()},
		Name:     "Michi",
		OwnerID:  uuid.New(),
		Vaccines: append(model.VaccineList{}, vaccines...),
	}
	f.patients[p.ID] = p
	return p
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

func (f *fakePatientRepo) List(ctx context.Context) ([]*model.Patient, error) {
	var out []*model.Patient
	for _, p := range f.patients {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePatientRepo) Update(ctx context.Context, p *model.Patient) error {
	if _, ok := f.patients[p.ID]; !ok {
		return repository.ErrNotFound
	}
	f.patients[p.ID] = p
	return nil
}

func (f *fakePatientRepo) UpdateWeight(ctx context.Context, id uuid.UUID, weight float64) error {
	p, ok := f.patients[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Weight = &weight
	return nil
}

func (f *fakePatientRepo) AppendNote(ctx context.Context, id uuid.UUID, note string) error {
	p, ok := f.patients[id]
	if !ok {
		return repository.ErrNotFound
	}
	if p.Notes == "" {
		p.Notes = note
	} else {
		p.Notes = p.Notes + "\n" + note
	}
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

func newFakeOwnerRepo() *fakeOwnerRepo {
	return &fakeOwnerRepo{owners: make(map[uuid.UUID]*model.Owner)}
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

func (f *fakeOwnerRepo) Update(ctx context.Context, o *model.Owner) error {
	f.owners[o.ID] = o
	return nil
}

func (f *fakeOwnerRepo) List(ctx context.Context) ([]*model.Owner, error) {
	var out []*model.Owner
	for _, o := range f.owners {
		out = append(out, o)
	}
	return out, nil
}

type fakeRecordRepo struct {
	records map[uuid.UUID]*model.MedicalRecord
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: make(map[uuid.UUID]*model.MedicalRecord)}
}

func (f *fakeRecordRepo) Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error) {
	r, ok := f.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r, nil
}

func (f *fakeRecordRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, filters *model.RecordFilters) ([]*model.MedicalRecord, error) {
	var out []*model.MedicalRecord
	for _, r := range f.records {
		if r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) Update(ctx context.Context, r *model.MedicalRecord) error {
	f.records[r.ID] = r
	return nil
}

func newTestService() (*Service, *fakePatientRepo, *fakeOwnerRepo, *fakeRecordRepo) {
	patients := newFakePatientRepo()
	owners := newFakeOwnerRepo()
	records := newFakeRecordRepo()
	return NewService(patients, owners, records), patients, owners, records
}

func strPtr(s string) *string { return &s }

func TestCreatePatientRequiresOwner(t *testing.T) {
	svc, _, owners, _ := newTestService()

	_, err := svc.CreatePatient(context.Background(), &model.CreatePatientRequest{
		Name:    "Michi",
		OwnerID: uuid.New(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	owner := &model.Owner{Base: model.Base{ID: uuid.New()}, Name: "Ana", Phone: "3001234567"}
	owners.owners[owner.ID] = owner

	p, err := svc.CreatePatient(context.Background(), &model.CreatePatientRequest{
		Name:    "Michi",
		Breed:   strPtr("Persa"),
		OwnerID: owner.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, model.VaccineList{}, p.Vaccines)
}

func TestAddVaccine(t *testing.T) {
	svc, patients, _, _ := newTestService()
	p := patients.addPatient("Rabia")

	got, err := svc.AddVaccine(context.Background(), p.ID, "Triple felina")
	require.NoError(t, err)
	assert.Equal(t, model.VaccineList{"Rabia", "Triple felina"}, got)
}

func TestAddVaccineAllowsDuplicates(t *testing.T) {
	svc, patients, _, _ := newTestService()
	p := patients.addPatient("Rabia")

	got, err := svc.AddVaccine(context.Background(), p.ID, "Rabia")
	require.NoError(t, err)
	assert.Equal(t, model.VaccineList{"Rabia", "Rabia"}, got)
}

func TestRemoveVaccineByIndex(t *testing.T) {
	svc, patients, _, _ := newTestService()
	p := patients.addPatient("Rabia", "Triple felina")

	got, err := svc.RemoveVaccine(context.Background(), p.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, model.VaccineList{"Triple felina"}, got)
}

func TestRemoveVaccineOutOfRange(t *testing.T) {
	svc, patients, _, _ := newTestService()
	p := patients.addPatient("Rabia", "Triple felina")

	for _, index := range []int{-1, 2, 10} {
		got, err := svc.RemoveVaccine(context.Background(), p.ID, index)
		require.NoError(t, err)
		assert.Equal(t, model.VaccineList{"Rabia", "Triple felina"}, got, "index %d", index)
	}
}

func TestUpdateWeight(t *testing.T) {
	svc, patients, _, _ := newTestService()
	p := patients.addPatient()

	err := svc.UpdateWeight(context.Background(), p.ID, 4.5)
	require.NoError(t, err)
	require.NotNil(t, patients.patients[p.ID].Weight)
	assert.Equal(t, 4.5, *patients.patients[p.ID].Weight)
}

func TestAppendNote(t *testing.T) {
	svc, patients, _, _ := newTestService()
	p := patients.addPatient()

	require.NoError(t, svc.AppendNote(context.Background(), p.ID, "Alergia a pollo"))
	assert.Equal(t, "Alergia a pollo", patients.patients[p.ID].Notes)

	require.NoError(t, svc.AppendNote(context.Background(), p.ID, "Gastritis leve"))
	assert.Equal(t, "Alergia a pollo\nGastritis leve", patients.patients[p.ID].Notes)
}

func TestUpdatePatientPartial(t *testing.T) {
	svc, patients, _, _ := newTestService()
	p := patients.addPatient("Rabia")
	weight := 3.1
	p.Weight = &weight

	got, err := svc.UpdatePatient(context.Background(), p.ID, &model.UpdatePatientRequest{
		Color: strPtr("Gris"),
	})
	require.NoError(t, err)
	require.NotNil(t, got.Color)
	assert.Equal(t, "Gris", *got.Color)
	assert.Equal(t, "Michi", got.Name)
	require.NotNil(t, got.Weight)
	assert.Equal(t, 3.1, *got.Weight)
	assert.Equal(t, model.VaccineList{"Rabia"}, got.Vaccines)
}

func TestMedicalHistory(t *testing.T) {
	svc, patients, _, records := newTestService()
	p := patients.addPatient()

	rec := &model.MedicalRecord{
		Base:      model.Base{ID: uuid.New()},
		PatientID: p.ID,
		Diagnosis: strPtr("Otitis"),
	}
	records.records[rec.ID] = rec

	got, err := svc.MedicalHistory(context.Background(), p.ID, &model.RecordFilters{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec.ID, got[0].ID)
}

func TestUpdateMedicalRecord(t *testing.T) {
	svc, _, _, records := newTestService()

	rec := &model.MedicalRecord{
		Base:      model.Base{ID: uuid.New()},
		PatientID: uuid.New(),
		Diagnosis: strPtr("Otitis"),
		Notes:     "control pendiente",
	}
	records.records[rec.ID] = rec

	got, err := svc.UpdateMedicalRecord(context.Background(), rec.ID, &model.UpdateMedicalRecordRequest{
		Treatment: strPtr("Gotas óticas 7 días"),
	})
	require.NoError(t, err)
	require.NotNil(t, got.Treatment)
	assert.Equal(t, "Gotas óticas 7 días", *got.Treatment)
	assert.Equal(t, "Otitis", *got.Diagnosis)
	assert.Equal(t, "control pendiente", got.Notes)
}
