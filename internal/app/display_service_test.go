package app

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"displaydeck/internal/model"
)

// -------- test fakes --------

type fakeDisplayRepo struct {
	displays map[uint]*model.Display
	nextID   uint
}

func newFakeDisplayRepo() *fakeDisplayRepo {
	return &fakeDisplayRepo{displays: make(map[uint]*model.Display)}
}

func (f *fakeDisplayRepo) Create(d *model.Display) error {
	f.nextID++
	d.ID = f.nextID
	cp := *d
	f.displays[d.ID] = &cp
	return nil
}

func (f *fakeDisplayRepo) Save(d *model.Display) error {
	cp := *d
	f.displays[d.ID] = &cp
	return nil
}

func (f *fakeDisplayRepo) ListByOperatorID(operatorID uint) ([]model.Display, error) {
	var out []model.Display
	for _, d := range f.displays {
		if d.OperatorID == operatorID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDisplayRepo) ListAll() ([]model.Display, error) {
	var out []model.Display
	for _, d := range f.displays {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeDisplayRepo) GetByIDAndOperatorID(id, operatorID uint) (*model.Display, error) {
	d, ok := f.displays[id]
	if !ok || d.OperatorID != operatorID {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDisplayRepo) DeleteByIDAndOperatorID(id, operatorID uint) error {
	d, ok := f.displays[id]
	if ok && d.OperatorID == operatorID {
		delete(f.displays, id)
	}
	return nil
}

// -------- tests --------

func TestCreateDisplay(t *testing.T) {
	repo := newFakeDisplayRepo()
	svc := NewDisplayService(repo)

	display, err := svc.Create(CreateDisplayInput{
		OperatorID: 1,
		ContentDoc: json.RawMessage(`{"type":"slider","images":["/files/1"]}`),
		LastEditor: "alice",
	})
	require.NoError(t, err)
	assert.True(t, display.IsActive)
	assert.Equal(t, "alice", display.LastEditor)

	_, err = svc.Create(CreateDisplayInput{OperatorID: 1, ContentDoc: json.RawMessage(`[1,2]`)})
	assert.ErrorIs(t, err, ErrInvalidInput, "content doc must be a JSON object")

	_, err = svc.Create(CreateDisplayInput{OperatorID: 1, ContentDoc: json.RawMessage(`{oops`)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetDisplayIsOwnerScoped(t *testing.T) {
	repo := newFakeDisplayRepo()
	svc := NewDisplayService(repo)

	display, err := svc.Create(CreateDisplayInput{OperatorID: 1, ContentDoc: json.RawMessage(`{"type":"chart"}`)})
	require.NoError(t, err)

	_, err = svc.Get(display.ID, 2)
	assert.ErrorIs(t, err, ErrDisplayNotFound, "foreign display reads as not found")

	got, err := svc.Get(display.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, display.ID, got.ID)
}

func TestUpdateDisplay(t *testing.T) {
	repo := newFakeDisplayRepo()
	svc := NewDisplayService(repo)

	display, err := svc.Create(CreateDisplayInput{OperatorID: 1, ContentDoc: json.RawMessage(`{"type":"slider","images":[]}`)})
	require.NoError(t, err)

	off := false
	updated, err := svc.Update(display.ID, 1, UpdateDisplayInput{IsActive: &off, LastEditor: "bob"})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.JSONEq(t, `{"type":"slider","images":[]}`, updated.ContentDoc, "doc untouched when not supplied")

	updated, err = svc.Update(display.ID, 1, UpdateDisplayInput{ContentDoc: json.RawMessage(`{"type":"slider","images":["/files/2"]}`)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"slider","images":["/files/2"]}`, updated.ContentDoc)
	assert.False(t, updated.IsActive, "is_active untouched when not supplied")
}

func TestDeleteDisplayDoesNotTouchBlobs(t *testing.T) {
	repo := newFakeDisplayRepo()
	svc := NewDisplayService(repo)
	blobs := newFakeBlobStore(1)

	display, err := svc.Create(CreateDisplayInput{OperatorID: 1, ContentDoc: json.RawMessage(`{"type":"slider","images":["/files/1"]}`)})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(display.ID, 1))
	assert.Len(t, blobs.blobs, 1, "deleting a display never cascades to blobs; reachability is recomputed, not pushed")

	assert.ErrorIs(t, svc.Delete(display.ID, 1), ErrDisplayNotFound)
}

func TestListAllForScanIncludesInactive(t *testing.T) {
	repo := newFakeDisplayRepo()
	svc := NewDisplayService(repo)

	d, err := svc.Create(CreateDisplayInput{OperatorID: 1, ContentDoc: json.RawMessage(`{"type":"slider","images":["/files/1"]}`)})
	require.NoError(t, err)
	off := false
	_, err = svc.Update(d.ID, 1, UpdateDisplayInput{IsActive: &off})
	require.NoError(t, err)

	all, err := svc.ListAllForScan()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].IsActive)
}
