package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"displaydeck/internal/model"
)

// blobMetaColumns excludes payload so listings never drag blob bytes out of
// the database.
var blobMetaColumns = []string{
	"id", "operator_id", "stored_name", "original_name",
	"mime_type", "size_bytes", "description", "created_at", "updated_at",
}

type BlobRepository struct {
	db *gorm.DB
}

func NewBlobRepository(db *gorm.DB) *BlobRepository {
	return &BlobRepository{db: db}
}

func (r *BlobRepository) Create(blob *model.Blob) error {
	if err := r.db.Create(blob).Error; err != nil {
		return fmt.Errorf("create blob failed: %w", err)
	}
	return nil
}

func (r *BlobRepository) GetByID(id uint) (*model.Blob, error) {
	var blob model.Blob
	if err := r.db.First(&blob, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get blob failed: %w", err)
	}
	return &blob, nil
}

// Delete removes a blob by id and reports whether a row existed.
func (r *BlobRepository) Delete(id uint) (bool, error) {
	result := r.db.Delete(&model.Blob{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("delete blob failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// DeleteByIDAndOperatorID removes a blob only when the operator owns it.
func (r *BlobRepository) DeleteByIDAndOperatorID(id, operatorID uint) (bool, error) {
	result := r.db.Where("id = ? AND operator_id = ?", id, operatorID).Delete(&model.Blob{})
	if result.Error != nil {
		return false, fmt.Errorf("delete blob failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *BlobRepository) ListByOperatorID(operatorID uint) ([]model.Blob, error) {
	var blobs []model.Blob
	err := r.db.Select(blobMetaColumns).
		Where("operator_id = ?", operatorID).
		Order("created_at DESC").
		Find(&blobs).Error
	if err != nil {
		return nil, fmt.Errorf("list blobs failed: %w", err)
	}
	return blobs, nil
}

// ListAll returns one page of blob metadata plus the total row count.
func (r *BlobRepository) ListAll(page, pageSize int) ([]model.Blob, int64, error) {
	var total int64
	if err := r.db.Model(&model.Blob{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count blobs failed: %w", err)
	}

	var blobs []model.Blob
	err := r.db.Select(blobMetaColumns).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&blobs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list all blobs failed: %w", err)
	}
	return blobs, total, nil
}

// ListAllMeta returns metadata for every blob, unpaged. The cleanup sweep
// needs the full candidate set; it runs out of band, not per-request.
func (r *BlobRepository) ListAllMeta() ([]model.Blob, error) {
	var blobs []model.Blob
	if err := r.db.Select(blobMetaColumns).Find(&blobs).Error; err != nil {
		return nil, fmt.Errorf("list blob metadata failed: %w", err)
	}
	return blobs, nil
}
