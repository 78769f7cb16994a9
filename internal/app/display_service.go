package app

import (
	"encoding/json"
	"errors"

	"displaydeck/internal/model"
)

var ErrDisplayNotFound = errors.New("display not found")

type DisplayRepo interface {
	Create(display *model.Display) error
	Save(display *model.Display) error
	ListByOperatorID(operatorID uint) ([]model.Display, error)
	ListAll() ([]model.Display, error)
	GetByIDAndOperatorID(id, operatorID uint) (*model.Display, error)
	DeleteByIDAndOperatorID(id, operatorID uint) error
}

type DisplayService struct {
	displayRepo DisplayRepo
}

type CreateDisplayInput struct {
	OperatorID uint
	ContentDoc json.RawMessage
	LastEditor string
}

type UpdateDisplayInput struct {
	ContentDoc json.RawMessage
	IsActive   *bool
	LastEditor string
}

func NewDisplayService(displayRepo DisplayRepo) *DisplayService {
	return &DisplayService{displayRepo: displayRepo}
}

func (s *DisplayService) Create(input CreateDisplayInput) (*model.Display, error) {
	if input.OperatorID == 0 || !validContentDoc(input.ContentDoc) {
		return nil, ErrInvalidInput
	}

	display := &model.Display{
		OperatorID: input.OperatorID,
		ContentDoc: string(input.ContentDoc),
		IsActive:   true,
		LastEditor: input.LastEditor,
	}
	if err := s.displayRepo.Create(display); err != nil {
		return nil, err
	}
	return display, nil
}

func (s *DisplayService) List(operatorID uint) ([]model.Display, error) {
	if operatorID == 0 {
		return nil, ErrInvalidInput
	}
	return s.displayRepo.ListByOperatorID(operatorID)
}

func (s *DisplayService) Get(id, operatorID uint) (*model.Display, error) {
	if id == 0 || operatorID == 0 {
		return nil, ErrInvalidInput
	}
	display, err := s.displayRepo.GetByIDAndOperatorID(id, operatorID)
	if err != nil {
		return nil, err
	}
	if display == nil {
		return nil, ErrDisplayNotFound
	}
	return display, nil
}

// Update replaces the content document and/or toggles is_active. Toggling a
// display off keeps its blob references reachable; only editing references
// out of the document releases them.
func (s *DisplayService) Update(id, operatorID uint, input UpdateDisplayInput) (*model.Display, error) {
	display, err := s.Get(id, operatorID)
	if err != nil {
		return nil, err
	}

	if input.ContentDoc != nil {
		if !validContentDoc(input.ContentDoc) {
			return nil, ErrInvalidInput
		}
		display.ContentDoc = string(input.ContentDoc)
	}
	if input.IsActive != nil {
		display.IsActive = *input.IsActive
	}
	if input.LastEditor != "" {
		display.LastEditor = input.LastEditor
	}

	if err := s.displayRepo.Save(display); err != nil {
		return nil, err
	}
	return display, nil
}

func (s *DisplayService) Delete(id, operatorID uint) error {
	if _, err := s.Get(id, operatorID); err != nil {
		return err
	}
	return s.displayRepo.DeleteByIDAndOperatorID(id, operatorID)
}

// ListAllForScan feeds the reachability mark phase: every display, active
// or not.
func (s *DisplayService) ListAllForScan() ([]model.Display, error) {
	return s.displayRepo.ListAll()
}

func validContentDoc(doc json.RawMessage) bool {
	if len(doc) == 0 {
		return false
	}
	var obj map[string]any
	return json.Unmarshal(doc, &obj) == nil
}
