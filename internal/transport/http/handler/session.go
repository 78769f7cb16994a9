package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"displaydeck/internal/app"
	"displaydeck/internal/transport/http/response"
)

type SessionHandler struct {
	sessionService *app.SessionService
}

type StartSessionRequest struct {
	DeviceInfo string `json:"device_info" binding:"max=256"`
}

type UpdateDocRequest struct {
	Doc json.RawMessage `json:"doc" binding:"required"`
}

func NewSessionHandler(sessionService *app.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (h *SessionHandler) Start(c *gin.Context) {
	operatorID, ok := getOperatorIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	// Body is optional: a bare start call is valid.
	var req StartSessionRequest
	_ = c.ShouldBindJSON(&req)

	session, err := h.sessionService.StartOrRefresh(c.Request.Context(), app.StartSessionInput{
		OperatorID:    operatorID,
		DeviceInfo:    req.DeviceInfo,
		OriginAddress: c.ClientIP(),
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "start session failed")
		}
		return
	}

	response.OK(c, session)
}

func (h *SessionHandler) GetCurrent(c *gin.Context) {
	operatorID, ok := getOperatorIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	session, err := h.sessionService.GetCurrent(operatorID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get current session failed")
		}
		return
	}

	response.OK(c, session)
}

func (h *SessionHandler) UpdateDisplaySettings(c *gin.Context) {
	h.updateDoc(c, app.DocDisplaySettings)
}

func (h *SessionHandler) UpdateSlideSequence(c *gin.Context) {
	h.updateDoc(c, app.DocSlideSequence)
}

func (h *SessionHandler) UpdateAppSettings(c *gin.Context) {
	h.updateDoc(c, app.DocAppSettings)
}

func (h *SessionHandler) updateDoc(c *gin.Context, kind app.DocKind) {
	operatorID, ok := getOperatorIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req UpdateDocRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	session, err := h.sessionService.UpdateDoc(c.Request.Context(), operatorID, kind, req.Doc)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrNoActiveSession):
			response.Error(c, http.StatusConflict, response.CodeNoActiveSession, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "update session document failed")
		}
		return
	}

	response.OK(c, session)
}

func (h *SessionHandler) Logout(c *gin.Context) {
	operatorID, ok := getOperatorIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	if err := h.sessionService.Deactivate(c.Request.Context(), operatorID); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "logout failed")
		return
	}

	response.OK(c, gin.H{"logged_out": true})
}

func (h *SessionHandler) ListHistory(c *gin.Context) {
	operatorID, ok := getOperatorIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	sessions, err := h.sessionService.ListHistory(operatorID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list session history failed")
		return
	}

	response.OK(c, sessions)
}

// GetLatest serves the polling display clients. Deliberately unauthenticated
// and read-only: clients can only ever see "the latest", never a targeted
// operator's session.
func (h *SessionHandler) GetLatest(c *gin.Context) {
	state, err := h.sessionService.ResolveLatest(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNoActiveSession):
			response.Error(c, http.StatusNotFound, response.CodeNoActiveSession, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "resolve latest session failed")
		}
		return
	}

	response.OK(c, state)
}
