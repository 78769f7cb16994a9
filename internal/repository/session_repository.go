package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"displaydeck/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// UpsertActive is the session start: a single transaction that either
// refreshes the operator's active row or inserts a new one with the given
// token. The locked read serializes concurrent starts on an existing row;
// the active_marker unique index covers the no-row window, where the losing
// insert falls back to refreshing the winner's row.
func (r *SessionRepository) UpsertActive(operatorID uint, freshToken, deviceInfo, originAddress string) (*model.Session, error) {
	var out *model.Session
	err := r.db.Transaction(func(tx *gorm.DB) error {
		session, err := lockActiveRow(tx, operatorID)
		if err != nil {
			return err
		}
		if session == nil {
			marker := operatorID
			created := model.Session{
				OperatorID:    operatorID,
				SessionToken:  freshToken,
				IsActive:      true,
				ActiveMarker:  &marker,
				LastActivity:  time.Now(),
				DeviceInfo:    deviceInfo,
				OriginAddress: originAddress,
			}
			err := tx.Create(&created).Error
			if err == nil {
				out = &created
				return nil
			}
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
			// A concurrent start inserted first; refresh its row instead.
			session, err = lockActiveRow(tx, operatorID)
			if err != nil {
				return err
			}
			if session == nil {
				return gorm.ErrRecordNotFound
			}
		}
		session.LastActivity = time.Now()
		if deviceInfo != "" {
			session.DeviceInfo = deviceInfo
		}
		if originAddress != "" {
			session.OriginAddress = originAddress
		}
		if err := tx.Save(session).Error; err != nil {
			return err
		}
		out = session
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("upsert active session failed: %w", err)
	}
	return out, nil
}

func lockActiveRow(tx *gorm.DB, operatorID uint) (*model.Session, error) {
	var session model.Session
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("operator_id = ? AND is_active = ?", operatorID, true).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Save(session *model.Session) error {
	if err := r.db.Save(session).Error; err != nil {
		return fmt.Errorf("save session failed: %w", err)
	}
	return nil
}

// GetActiveByOperatorID returns the operator's active session, or nil when
// none exists. The at-most-one-active invariant makes First sufficient.
func (r *SessionRepository) GetActiveByOperatorID(operatorID uint) (*model.Session, error) {
	var session model.Session
	err := r.db.Where("operator_id = ? AND is_active = ?", operatorID, true).
		Order("last_activity DESC").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active session failed: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) ListByOperatorID(operatorID uint) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.Where("operator_id = ?", operatorID).
		Order("last_activity DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("list sessions failed: %w", err)
	}
	return sessions, nil
}

// ListActive returns every active session across all operators, for the
// latest-session resolution.
func (r *SessionRepository) ListActive() ([]model.Session, error) {
	var sessions []model.Session
	if err := r.db.Where("is_active = ?", true).Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list active sessions failed: %w", err)
	}
	return sessions, nil
}
