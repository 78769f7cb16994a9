package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"displaydeck/internal/model"
)

type OperatorRepository struct {
	db *gorm.DB
}

func NewOperatorRepository(db *gorm.DB) *OperatorRepository {
	return &OperatorRepository{db: db}
}

func (r *OperatorRepository) Create(op *model.Operator) error {
	if err := r.db.Create(op).Error; err != nil {
		return fmt.Errorf("create operator failed: %w", err)
	}
	return nil
}

func (r *OperatorRepository) GetByUsername(username string) (*model.Operator, error) {
	var op model.Operator
	if err := r.db.Where("username = ?", username).First(&op).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query operator by username failed: %w", err)
	}
	return &op, nil
}

func (r *OperatorRepository) GetByEmail(email string) (*model.Operator, error) {
	var op model.Operator
	if err := r.db.Where("email = ?", email).First(&op).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query operator by email failed: %w", err)
	}
	return &op, nil
}

func (r *OperatorRepository) GetByID(id uint) (*model.Operator, error) {
	var op model.Operator
	if err := r.db.First(&op, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query operator by id failed: %w", err)
	}
	return &op, nil
}
