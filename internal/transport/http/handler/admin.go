package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"displaydeck/internal/app"
	"displaydeck/internal/transport/http/response"
)

type AdminHandler struct {
	blobService    *app.BlobService
	cleanupService *app.CleanupService
	enqueue        func(ctx context.Context, job app.CleanupJob) error
}

type PurgeUnusedRequest struct {
	UsedReferences []string `json:"used_references" binding:"required"`
}

type DeleteNamedRequest struct {
	BlobIDs []uint `json:"blob_ids" binding:"required,min=1"`
}

func NewAdminHandler(blobService *app.BlobService, cleanupService *app.CleanupService, enqueue func(ctx context.Context, job app.CleanupJob) error) *AdminHandler {
	return &AdminHandler{
		blobService:    blobService,
		cleanupService: cleanupService,
		enqueue:        enqueue,
	}
}

func (h *AdminHandler) ListAllBlobs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	blobs, total, err := h.blobService.ListAll(page, pageSize)
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
	response.OK(c, gin.H{
		"items": items,
		"total": total,
	})
}

// Cleanup runs the registry-derived sweep. With ?async=true the sweep is
// enqueued for the worker instead of running inline.
func (h *AdminHandler) Cleanup(c *gin.Context) {
	if c.Query("async") == "true" && h.enqueue != nil {
		if err := h.enqueue(c.Request.Context(), app.CleanupJob{Mode: app.CleanupModeUnreferenced}); err != nil {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "enqueue cleanup failed")
			return
		}
		response.OK(c, gin.H{"enqueued": true})
		return
	}

	report, err := h.cleanupService.CleanupUnreferenced(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "cleanup failed")
		return
	}
	response.OK(c, report)
}

func (h *AdminHandler) PurgeUnused(c *gin.Context) {
	var req PurgeUnusedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	report, err := h.cleanupService.PurgeUnused(c.Request.Context(), req.UsedReferences)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "purge failed")
		return
	}
	response.OK(c, report)
}

func (h *AdminHandler) PurgeAll(c *gin.Context) {
	if c.Query("async") == "true" && h.enqueue != nil {
		if err := h.enqueue(c.Request.Context(), app.CleanupJob{Mode: app.CleanupModePurgeAll}); err != nil {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "enqueue purge failed")
			return
		}
		response.OK(c, gin.H{"enqueued": true})
		return
	}

	report, err := h.cleanupService.PurgeAll(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "purge failed")
		return
	}
	response.OK(c, report)
}

func (h *AdminHandler) DeleteNamed(c *gin.Context) {
	var req DeleteNamedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	report, err := h.cleanupService.DeleteNamed(c.Request.Context(), req.BlobIDs)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete failed")
		return
	}
	response.OK(c, report)
}
