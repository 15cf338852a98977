package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/lumeatelie/lume-backend/internal/errors"
	"github.com/lumeatelie/lume-backend/internal/middleware"
	"github.com/lumeatelie/lume-backend/internal/storage"
)

// Personalization uploads are customer photos and logos.
const maxUploadSizeBytes = 10 * 1024 * 1024

var allowedImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
}

type UploadController struct {
	storage *storage.S3Storage
}

func NewUploadController(s3 *storage.S3Storage) *UploadController {
	return &UploadController{storage: s3}
}

type PresignUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Size        int64  `json:"size" binding:"required,gt=0"`
}

// PresignUpload hands the browser a short-lived URL to PUT a personalization
// image into the pending area. The object only becomes permanent when an
// order referencing it is created.
// POST /api/v1/uploads/personalization
func (ctrl *UploadController) PresignUpload(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if ctrl.storage == nil {
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.UploadFailed,
			"Upload de imagens indisponível no momento")
		return
	}

	var req PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Dados do upload inválidos")
		return
	}

	if err := ctrl.storage.ValidateContentType(req.ContentType, allowedImageTypes); err != nil {
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Tipo de arquivo não permitido. Envie JPEG, PNG ou WebP.")
		return
	}
	if err := ctrl.storage.ValidateFileSize(req.Size, maxUploadSizeBytes); err != nil {
		apperrors.BadRequest(c, apperrors.UploadFileTooLarge, "Arquivo muito grande. O limite é 10MB.")
		return
	}

	presigned, err := ctrl.storage.GeneratePendingUploadURL(c.Request.Context(), req.Filename, req.ContentType)
	if err != nil {
		log.Error("Failed to presign upload", err, map[string]interface{}{
			"filename":     req.Filename,
			"content_type": req.ContentType,
		})
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.UploadFailed,
			"Não foi possível preparar o upload")
		return
	}

	c.JSON(http.StatusOK, presigned)
}
