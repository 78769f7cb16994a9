package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"displaydeck/internal/model"
)

type DisplayRepository struct {
	db *gorm.DB
}

func NewDisplayRepository(db *gorm.DB) *DisplayRepository {
	return &DisplayRepository{db: db}
}

func (r *DisplayRepository) Create(display *model.Display) error {
	if err := r.db.Create(display).Error; err != nil {
		return fmt.Errorf("create display failed: %w", err)
	}
	return nil
}

func (r *DisplayRepository) Save(display *model.Display) error {
	if err := r.db.Save(display).Error; err != nil {
		return fmt.Errorf("save display failed: %w", err)
	}
	return nil
}

func (r *DisplayRepository) ListByOperatorID(operatorID uint) ([]model.Display, error) {
	var displays []model.Display
	err := r.db.Where("operator_id = ?", operatorID).
		Order("updated_at DESC").
		Find(&displays).Error
	if err != nil {
		return nil, fmt.Errorf("list displays failed: %w", err)
	}
	return displays, nil
}

// ListAll returns every display regardless of is_active: a disabled display
// still anchors its blob references, since disabling is reversible.
func (r *DisplayRepository) ListAll() ([]model.Display, error) {
	var displays []model.Display
	if err := r.db.Find(&displays).Error; err != nil {
		return nil, fmt.Errorf("list all displays failed: %w", err)
	}
	return displays, nil
}

func (r *DisplayRepository) GetByIDAndOperatorID(id, operatorID uint) (*model.Display, error) {
	var display model.Display
	if err := r.db.Where("id = ? AND operator_id = ?", id, operatorID).First(&display).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get display failed: %w", err)
	}
	return &display, nil
}

func (r *DisplayRepository) DeleteByIDAndOperatorID(id, operatorID uint) error {
	if err := r.db.Where("id = ? AND operator_id = ?", id, operatorID).Delete(&model.Display{}).Error; err != nil {
		return fmt.Errorf("delete display failed: %w", err)
	}
	return nil
}
