package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"displaydeck/internal/app"
	"displaydeck/internal/transport/http/response"
)

type BlobHandler struct {
	blobService    *app.BlobService
	maxUploadBytes int64
}

func NewBlobHandler(blobService *app.BlobService, maxUploadBytes int64) *BlobHandler {
	return &BlobHandler{
		blobService:    blobService,
		maxUploadBytes: maxUploadBytes,
	}
}

// Upload accepts a multipart form with a "file" part and an optional
// "description" field. Oversized uploads are rejected before any storage
// write is attempted.
func (h *BlobHandler) Upload(c *gin.Context) {
	operatorID, ok := getOperatorIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file part")
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge,
			fmt.Sprintf("file exceeds %d byte limit", h.maxUploadBytes))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "open upload failed")
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "read upload failed")
		return
	}

	blob, err := h.blobService.Put(app.PutBlobInput{
		OperatorID:   operatorID,
		OriginalName: fileHeader.Filename,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		Payload:      payload,
		Description:  c.PostForm("description"),
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrPayloadTooLarge):
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge, err.Error())
		case errors.Is(err, app.ErrMimeNotAllowed):
			response.Error(c, http.StatusBadRequest, response.CodeMimeNotAllowed, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "store upload failed")
		}
		return
	}

	response.OK(c, gin.H{
		"blob":             blob,
		"access_reference": blob.AccessReference(),
	})
}

// Fetch serves raw blob bytes at the access-reference path. Public: display
// clients fetch media without credentials.
func (h *BlobHandler) Fetch(c *gin.Context) {
	blobID, ok := parseIDParam(c)
	if !ok {
		return
	}

	blob, err := h.blobService.Get(blobID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrBlobNotFound):
			response.Error(c, http.StatusNotFound, response.CodeBlobNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch blob failed")
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", blob.OriginalName))
	c.Data(http.StatusOK, blob.MimeType, blob.Payload)
}

func (h *BlobHandler) Delete(c *gin.Context) {
	operatorID, ok := getOperatorIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	blobID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.blobService.Delete(blobID, operatorID); err != nil {
		switch {
		case errors.Is(err, app.ErrBlobNotFound):
			response.Error(c, http.StatusNotFound, response.CodeBlobNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete blob failed")
		}
		return
	}

	response.OK(c, gin.H{"deleted_blob_id": blobID})
}

func (h *BlobHandler) ListMine(c *gin.Context) {
	operatorID, ok := getOperatorIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	blobs, err := h.blobService.ListByOwner(operatorID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list blobs failed")
		return
	}

	items := make([]gin.H, 0, len(blobs))
	for i := range blobs {
		items = append(items, gin.H{
			"blob":             blobs[i],
			"access_reference": blobs[i].AccessReference(),
		})
	}
	response.OK(c, items)
}
