package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"displaydeck/internal/app"
	"displaydeck/internal/transport/http/middleware"
	"displaydeck/internal/transport/http/response"
)

type DisplayHandler struct {
	displayService *app.DisplayService
}

type CreateDisplayRequest struct {
	ContentDoc json.RawMessage `json:"content_doc" binding:"required"`
}

type UpdateDisplayRequest struct {
	ContentDoc json.RawMessage `json:"content_doc"`
	IsActive   *bool           `json:"is_active"`
}

func NewDisplayHandler(displayService *app.DisplayService) *DisplayHandler {
	return &DisplayHandler{displayService: displayService}
}

func (h *DisplayHandler) Create(c *gin.Context) {
	operatorID, ok := getOperatorIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req CreateDisplayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	display, err := h.displayService.Create(app.CreateDisplayInput{
		OperatorID: operatorID,
		ContentDoc: req.ContentDoc,
		LastEditor: c.GetString(middleware.ContextUsernameKey),
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create display failed")
		}
		return
	}

	response.OK(c, display)
}

func (h *DisplayHandler) List(c *gin.Context) {
	operatorID, ok := getOperatorIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	displays, err := h.displayService.List(operatorID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list displays failed")
		return
	}

	response.OK(c, displays)
}

func (h *DisplayHandler) Get(c *gin.Context) {
	operatorID, ok := getOperatorIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	displayID, ok := parseIDParam(c)
	if !ok {
		return
	}

	display, err := h.displayService.Get(displayID, operatorID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrDisplayNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDisplayNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get display failed")
		}
		return
	}

	response.OK(c, display)
}

func (h *DisplayHandler) Update(c *gin.Context) {
	operatorID, ok := getOperatorIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	displayID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateDisplayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	display, err := h.displayService.Update(displayID, operatorID, app.UpdateDisplayInput{
		ContentDoc: req.ContentDoc,
		IsActive:   req.IsActive,
		LastEditor: c.GetString(middleware.ContextUsernameKey),
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrDisplayNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDisplayNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "update display failed")
		}
		return
	}

	response.OK(c, display)
}

func (h *DisplayHandler) Delete(c *gin.Context) {
	operatorID, ok := getOperatorIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	displayID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.displayService.Delete(displayID, operatorID); err != nil {
		switch {
		case errors.Is(err, app.ErrDisplayNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDisplayNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete display failed")
		}
		return
	}

	response.OK(c, gin.H{"deleted_display_id": displayID})
}

// parseIDParam reads the :id route param. Bit size 32 matches the model's
// uint ids as MySQL stores them, so out-of-range values are rejected here
// instead of truncating.
func parseIDParam(c *gin.Context) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id64 == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid id")
		return 0, false
	}
	return uint(id64), true
}
