package app

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"displaydeck/internal/model"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoActiveSession = errors.New("no active session")
)

// DocKind names one of the three independent session documents.
type DocKind string

const (
	DocDisplaySettings DocKind = "display_settings"
	DocSlideSequence   DocKind = "slide_sequence"
	DocAppSettings     DocKind = "app_settings"
)

const (
	emptyObjectDoc = "{}"
	emptyArrayDoc  = "[]"
)

type SessionRepo interface {
	// UpsertActive atomically refreshes the operator's active session or
	// creates one carrying freshToken. Implementations must hold the
	// at-most-one-active guarantee under concurrent calls.
	UpsertActive(operatorID uint, freshToken, deviceInfo, originAddress string) (*model.Session, error)
	Save(session *model.Session) error
	GetActiveByOperatorID(operatorID uint) (*model.Session, error)
	ListByOperatorID(operatorID uint) ([]model.Session, error)
	ListActive() ([]model.Session, error)
}

// LatestCache sits in front of ResolveLatest; display clients poll it
// continuously. Cache failures degrade to a database read, never an error.
type LatestCache interface {
	Get(ctx context.Context) (*LatestState, bool, error)
	Set(ctx context.Context, state *LatestState) error
	Invalidate(ctx context.Context) error
}

// LatestState is what unauthenticated display clients render. Malformed
// stored documents have already been replaced by empty defaults.
type LatestState struct {
	DisplaySettings json.RawMessage `json:"display_settings"`
	SlideSequence   json.RawMessage `json:"slide_sequence"`
	AppSettings     json.RawMessage `json:"app_settings"`
	LastActivity    time.Time       `json:"last_activity"`
	DeviceInfo      string          `json:"device_info,omitempty"`
}

type StartSessionInput struct {
	OperatorID    uint
	DeviceInfo    string
	OriginAddress string
}

type SessionService struct {
	sessionRepo SessionRepo
	latestCache LatestCache
}

func NewSessionService(sessionRepo SessionRepo, latestCache LatestCache) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		latestCache: latestCache,
	}
}

// StartOrRefresh is the upsert-by-owner session start: while an active
// session exists for the operator, repeated calls refresh it and return the
// same token; a second active row is never created, even under concurrent
// starts. The fresh token is only spent when a new row wins the upsert.
func (s *SessionService) StartOrRefresh(ctx context.Context, input StartSessionInput) (*model.Session, error) {
	if input.OperatorID == 0 {
		return nil, ErrInvalidInput
	}

	session, err := s.sessionRepo.UpsertActive(input.OperatorID, uuid.NewString(), input.DeviceInfo, input.OriginAddress)
	if err != nil {
		return nil, err
	}
	s.invalidateLatest(ctx)
	return session, nil
}

// UpdateDoc replaces one of the three session documents wholesale. There is
// no partial merge; racing updates resolve by last write wins.
func (s *SessionService) UpdateDoc(ctx context.Context, operatorID uint, kind DocKind, doc json.RawMessage) (*model.Session, error) {
	if operatorID == 0 || len(doc) == 0 || !json.Valid(doc) {
		return nil, ErrInvalidInput
	}

	session, err := s.sessionRepo.GetActiveByOperatorID(operatorID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNoActiveSession
	}

	switch kind {
	case DocDisplaySettings:
		session.DisplaySettingsDoc = string(doc)
	case DocSlideSequence:
		session.SlideSequenceDoc = string(doc)
	case DocAppSettings:
		session.AppSettingsDoc = string(doc)
	default:
		return nil, ErrInvalidInput
	}

	session.LastActivity = time.Now()
	if err := s.sessionRepo.Save(session); err != nil {
		return nil, err
	}
	s.invalidateLatest(ctx)
	return session, nil
}

func (s *SessionService) GetCurrent(operatorID uint) (*model.Session, error) {
	if operatorID == 0 {
		return nil, ErrInvalidInput
	}
	session, err := s.sessionRepo.GetActiveByOperatorID(operatorID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Deactivate ends the operator's active session. Calling it without an
// active session is a no-op, not an error. The row survives for history.
func (s *SessionService) Deactivate(ctx context.Context, operatorID uint) error {
	if operatorID == 0 {
		return ErrInvalidInput
	}
	session, err := s.sessionRepo.GetActiveByOperatorID(operatorID)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}
	session.IsActive = false
	session.ActiveMarker = nil
	if err := s.sessionRepo.Save(session); err != nil {
		return err
	}
	s.invalidateLatest(ctx)
	return nil
}

func (s *SessionService) ListHistory(operatorID uint) ([]model.Session, error) {
	if operatorID == 0 {
		return nil, ErrInvalidInput
	}
	return s.sessionRepo.ListByOperatorID(operatorID)
}

// ResolveLatest selects, across all operators, the active session with the
// greatest LastActivity; ties break by greatest CreatedAt, then greatest ID.
// Last writer wins globally: a single operator is assumed authoritative for
// display output at any time.
func (s *SessionService) ResolveLatest(ctx context.Context) (*LatestState, error) {
	if s.latestCache != nil {
		if state, ok, err := s.latestCache.Get(ctx); err == nil && ok {
			return state, nil
		}
	}

	sessions, err := s.sessionRepo.ListActive()
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, ErrNoActiveSession
	}

	winner := sessions[0]
	for _, candidate := range sessions[1:] {
		if laterSession(candidate, winner) {
			winner = candidate
		}
	}

	state := &LatestState{
		DisplaySettings: docOrDefault(winner.DisplaySettingsDoc, emptyObjectDoc),
		SlideSequence:   docOrDefault(winner.SlideSequenceDoc, emptyArrayDoc),
		AppSettings:     docOrDefault(winner.AppSettingsDoc, emptyObjectDoc),
		LastActivity:    winner.LastActivity,
		DeviceInfo:      winner.DeviceInfo,
	}

	if s.latestCache != nil {
		_ = s.latestCache.Set(ctx, state)
	}
	return state, nil
}

func laterSession(a, b model.Session) bool {
	if !a.LastActivity.Equal(b.LastActivity) {
		return a.LastActivity.After(b.LastActivity)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// docOrDefault shields display clients from corrupt stored documents: a
// blank or unparseable document reads as the given empty default.
func docOrDefault(text, def string) json.RawMessage {
	if text == "" || !json.Valid([]byte(text)) {
		return json.RawMessage(def)
	}
	return json.RawMessage(text)
}

func (s *SessionService) invalidateLatest(ctx context.Context) {
	if s.latestCache != nil {
		_ = s.latestCache.Invalidate(ctx)
	}
}
