package app

import (
	"bytes"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"displaydeck/internal/model"
)

// -------- test fakes --------

type fakeBlobRepo struct {
	blobs  map[uint]*model.Blob
	nextID uint
}

func newFakeBlobRepo() *fakeBlobRepo {
	return &fakeBlobRepo{blobs: make(map[uint]*model.Blob)}
}

func (f *fakeBlobRepo) Create(blob *model.Blob) error {
	f.nextID++
	blob.ID = f.nextID
	cp := *blob
	f.blobs[blob.ID] = &cp
	return nil
}

func (f *fakeBlobRepo) GetByID(id uint) (*model.Blob, error) {
	b, ok := f.blobs[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBlobRepo) DeleteByIDAndOperatorID(id, operatorID uint) (bool, error) {
	b, ok := f.blobs[id]
	if !ok || b.OperatorID != operatorID {
		return false, nil
	}
	delete(f.blobs, id)
	return true, nil
}

func (f *fakeBlobRepo) ListByOperatorID(operatorID uint) ([]model.Blob, error) {
	var out []model.Blob
	for _, b := range f.blobs {
		if b.OperatorID == operatorID {
			cp := *b
			cp.Payload = nil
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeBlobRepo) ListAll(page, pageSize int) ([]model.Blob, int64, error) {
	var all []model.Blob
	for _, b := range f.blobs {
		cp := *b
		cp.Payload = nil
		all = append(all, cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

// -------- tests --------

func TestPutStoresNewBlob(t *testing.T) {
	repo := newFakeBlobRepo()
	svc := NewBlobService(repo, 1<<20)

	blob, err := svc.Put(PutBlobInput{
		OperatorID:   1,
		OriginalName: "Banner.PNG",
		MimeType:     "image/png",
		Payload:      []byte("png-bytes"),
		Description:  "lobby banner",
	})
	require.NoError(t, err)

	assert.Equal(t, "Banner.PNG", blob.OriginalName)
	assert.Equal(t, "image/png", blob.MimeType)
	assert.Equal(t, int64(9), blob.SizeBytes)
	assert.NotEmpty(t, blob.StoredName)
	assert.NotEqual(t, blob.OriginalName, blob.StoredName, "stored name is generated, never content-derived")
	assert.Equal(t, "/files/1", blob.AccessReference())
}

func TestPutNeverDeduplicates(t *testing.T) {
	repo := newFakeBlobRepo()
	svc := NewBlobService(repo, 1<<20)

	payload := []byte("identical bytes")
	first, err := svc.Put(PutBlobInput{OperatorID: 1, OriginalName: "a.png", MimeType: "image/png", Payload: payload})
	require.NoError(t, err)
	second, err := svc.Put(PutBlobInput{OperatorID: 1, OriginalName: "a.png", MimeType: "image/png", Payload: payload})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.StoredName, second.StoredName)
	assert.Len(t, repo.blobs, 2)
}

func TestPutRejectsOversizedPayload(t *testing.T) {
	svc := NewBlobService(newFakeBlobRepo(), 16)

	_, err := svc.Put(PutBlobInput{
		OperatorID:   1,
		OriginalName: "big.mp4",
		MimeType:     "video/mp4",
		Payload:      bytes.Repeat([]byte("x"), 17),
	})
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestPutRejectsDisallowedMime(t *testing.T) {
	svc := NewBlobService(newFakeBlobRepo(), 1<<20)

	_, err := svc.Put(PutBlobInput{
		OperatorID:   1,
		OriginalName: "tool.exe",
		MimeType:     "application/x-msdownload",
		Payload:      []byte("MZ"),
	})
	assert.ErrorIs(t, err, ErrMimeNotAllowed)

	for _, mime := range []string{
		"image/jpeg",
		"video/mp4",
		"application/pdf",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	} {
		_, err := svc.Put(PutBlobInput{OperatorID: 1, OriginalName: "f", MimeType: mime, Payload: []byte("x")})
		assert.NoError(t, err, mime)
	}
}

func TestPutRejectsEmptyInput(t *testing.T) {
	svc := NewBlobService(newFakeBlobRepo(), 1<<20)

	_, err := svc.Put(PutBlobInput{OperatorID: 1, OriginalName: "a.png", MimeType: "image/png"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Put(PutBlobInput{OperatorID: 1, MimeType: "image/png", Payload: []byte("x")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetRoundTrip(t *testing.T) {
	svc := NewBlobService(newFakeBlobRepo(), 1<<20)

	stored, err := svc.Put(PutBlobInput{OperatorID: 1, OriginalName: "a.png", MimeType: "image/png", Payload: []byte("payload")})
	require.NoError(t, err)

	got, err := svc.Get(stored.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got.Payload)

	_, err = svc.Get(999)
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestDeleteIsOwnerScoped(t *testing.T) {
	svc := NewBlobService(newFakeBlobRepo(), 1<<20)

	blob, err := svc.Put(PutBlobInput{OperatorID: 1, OriginalName: "a.png", MimeType: "image/png", Payload: []byte("x")})
	require.NoError(t, err)

	err = svc.Delete(blob.ID, 2)
	assert.ErrorIs(t, err, ErrBlobNotFound, "foreign blob reads as not found")

	require.NoError(t, svc.Delete(blob.ID, 1))
	assert.ErrorIs(t, svc.Delete(blob.ID, 1), ErrBlobNotFound)
}

func TestListAllClampsPaging(t *testing.T) {
	repo := newFakeBlobRepo()
	svc := NewBlobService(repo, 1<<20)
	for i := 0; i < 3; i++ {
		_, err := svc.Put(PutBlobInput{OperatorID: 1, OriginalName: "a.png", MimeType: "image/png", Payload: []byte("x")})
		require.NoError(t, err)
	}

	items, total, err := svc.ListAll(0, -5)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 3)

	items, total, err = svc.ListAll(2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 1)
}
