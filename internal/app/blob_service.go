package app

import (
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"

	"displaydeck/internal/model"
)

var (
	ErrBlobNotFound    = errors.New("blob not found")
	ErrPayloadTooLarge = errors.New("payload exceeds upload size limit")
	ErrMimeNotAllowed  = errors.New("mime type not allowed")
)

// allowedMimePrefixes and allowedMimeTypes together form the upload
// allow-list: any image or video, plus common office document formats.
var allowedMimePrefixes = []string{"image/", "video/"}

var allowedMimeTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         {},
	"application/vnd.ms-powerpoint":                                             {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},
}

type BlobRepo interface {
	Create(blob *model.Blob) error
	GetByID(id uint) (*model.Blob, error)
	DeleteByIDAndOperatorID(id, operatorID uint) (bool, error)
	ListByOperatorID(operatorID uint) ([]model.Blob, error)
	ListAll(page, pageSize int) ([]model.Blob, int64, error)
}

type BlobService struct {
	blobRepo       BlobRepo
	maxUploadBytes int64
}

type PutBlobInput struct {
	OperatorID   uint
	OriginalName string
	MimeType     string
	Payload      []byte
	Description  string
}

func NewBlobService(blobRepo BlobRepo, maxUploadBytes int64) *BlobService {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 100 << 20
	}
	return &BlobService{
		blobRepo:       blobRepo,
		maxUploadBytes: maxUploadBytes,
	}
}

// Put stores a new blob. Every upload creates an independent record: two
// uploads of identical bytes yield two blobs, never a deduplicated one.
func (s *BlobService) Put(input PutBlobInput) (*model.Blob, error) {
	name := strings.TrimSpace(input.OriginalName)
	mime := strings.TrimSpace(strings.ToLower(input.MimeType))
	if input.OperatorID == 0 || name == "" || mime == "" || len(input.Payload) == 0 {
		return nil, ErrInvalidInput
	}
	if int64(len(input.Payload)) > s.maxUploadBytes {
		return nil, ErrPayloadTooLarge
	}
	if !mimeAllowed(mime) {
		return nil, ErrMimeNotAllowed
	}

	blob := &model.Blob{
		OperatorID:   input.OperatorID,
		StoredName:   uuid.NewString() + strings.ToLower(path.Ext(name)),
		OriginalName: name,
		MimeType:     mime,
		SizeBytes:    int64(len(input.Payload)),
		Payload:      input.Payload,
		Description:  strings.TrimSpace(input.Description),
	}
	if err := s.blobRepo.Create(blob); err != nil {
		return nil, err
	}
	return blob, nil
}

func (s *BlobService) Get(id uint) (*model.Blob, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	blob, err := s.blobRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, ErrBlobNotFound
	}
	return blob, nil
}

// Delete removes an operator's own blob. A foreign blob surfaces as not
// found, never as a permission probe.
func (s *BlobService) Delete(id, operatorID uint) error {
	if id == 0 || operatorID == 0 {
		return ErrInvalidInput
	}
	removed, err := s.blobRepo.DeleteByIDAndOperatorID(id, operatorID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrBlobNotFound
	}
	return nil
}

func (s *BlobService) ListByOwner(operatorID uint) ([]model.Blob, error) {
	if operatorID == 0 {
		return nil, ErrInvalidInput
	}
	return s.blobRepo.ListByOperatorID(operatorID)
}

func (s *BlobService) ListAll(page, pageSize int) ([]model.Blob, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	return s.blobRepo.ListAll(page, pageSize)
}

func mimeAllowed(mime string) bool {
	for _, prefix := range allowedMimePrefixes {
		if strings.HasPrefix(mime, prefix) {
			return true
		}
	}
	_, ok := allowedMimeTypes[mime]
	return ok
}
