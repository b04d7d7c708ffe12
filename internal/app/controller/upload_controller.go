package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/medikart/medikart-backend/internal/errors"
	"github.com/medikart/medikart-backend/internal/middleware"
	"github.com/medikart/medikart-backend/internal/storage"
)

// Upload folders per wizard asset kind. Keys end up in the accumulated
// document, so the layout here is part of what the synchronizers see.
var uploadFolders = map[string]string{
	"document": "merchant-docs",
	"menu":     "menu-reference",
	"payout":   "payout-proofs",
	"logo":     "store-logos",
}

var allowedUploadTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

type UploadController struct {
	storage    *storage.S3Storage
	presignTTL time.Duration
}

func NewUploadController(storage *storage.S3Storage, presignTTL time.Duration) *UploadController {
	return &UploadController{storage: storage, presignTTL: presignTTL}
}

type PresignUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Kind        string `json:"kind" binding:"required"` // document | menu | payout | logo
}

// PresignUpload hands the wizard a short-lived PUT URL so files go straight
// to the bucket. The returned key is what the wizard stores in its step
// payloads.
func (ctrl *UploadController) PresignUpload(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid upload request")
		return
	}

	folder, known := uploadFolders[req.Kind]
	if !known {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Unknown upload kind")
		return
	}
	if !allowedUploadTypes[req.ContentType] {
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Unsupported file type")
		return
	}

	resp, err := ctrl.storage.GeneratePresignedUpload(c.Request.Context(), req.Filename, req.ContentType, folder, ctrl.presignTTL)
	if err != nil {
		log.Error("Failed to presign upload", err, map[string]interface{}{
			"user_id": userID,
			"kind":    req.Kind,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Failed to prepare the upload")
		return
	}

	log.Debug("Upload presigned", map[string]interface{}{
		"user_id": userID,
		"kind":    req.Kind,
		"key":     resp.Key,
	})
	c.JSON(http.StatusOK, resp)
}
