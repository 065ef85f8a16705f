package v1

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/bluehaven/rentals/internal/domain"
	"github.com/bluehaven/rentals/internal/service"
	"github.com/bluehaven/rentals/internal/storage"
	"github.com/bluehaven/rentals/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (h *Handler) initImagesRoutes(api *gin.RouterGroup) {
	api.GET("/images/*path", h.optionalIdentityMiddleware, h.getImage)
}

// imageUploads opens the files sent under field and sniffs their content
// type. release closes every opened file.
func imageUploads(c *gin.Context, field string) ([]service.ImageUpload, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, func() {}, domain.NewValidationError("multipart form expected")
	}

	headers := form.File[field]
	if len(headers) == 0 {
		return nil, func() {}, domain.NewValidationError("no images provided")
	}

	files := make([]multipart.File, 0, len(headers))
	release := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	uploads := make([]service.ImageUpload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			release()
			return nil, func() {}, domain.NewValidationError("cannot read " + fh.Filename)
		}
		files = append(files, f)

		contentType, err := service.DetectContentType(f)
		if err != nil {
			release()
			return nil, func() {}, domain.NewValidationError("cannot read " + fh.Filename)
		}

		uploads = append(uploads, service.ImageUpload{
			Name:        fh.Filename,
			Size:        fh.Size,
			ContentType: contentType,
			Body:        f,
		})
	}

	return uploads, release, nil
}

// @Summary Get Image
// @Tags Images
// @Description Streams a stored image. ID documents are served to their owner and admins only.
// @ModuleID getImage
// @Produce  image/jpeg,image/png,image/webp
// @Param path path string true "storage path"
// @Success 200
// @Failure 404 {object} ErrorStruct
// @Router /images/{path} [get]
func (h *Handler) getImage(c *gin.Context) {
	objectPath := storage.CleanPath(c.Param("path"))
	if objectPath == "" {
		errorResponse(c, http.StatusNotFound, NotFoundCode)
		return
	}

	if owner, ok := storage.IDDocumentOwner(objectPath); ok {
		session, _ := getSession(c)
		if session.UserID == uuid.Nil || (session.UserID != owner && !session.IsAdmin()) {
			errorResponse(c, http.StatusNotFound, NotFoundCode)
			return
		}
		c.Header("Cache-Control", "private, no-store")
	}

	object, body, err := h.storage.Open(c.Request.Context(), objectPath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			errorResponse(c, http.StatusNotFound, NotFoundCode)
			return
		}
		logger.Error("open image failed", zap.Error(err), zap.String("path", objectPath))
		errorResponse(c, http.StatusServiceUnavailable, DependencyFailureCode)
		return
	}
	defer body.Close()

	headers := map[string]string{}
	if c.Writer.Header().Get("Cache-Control") == "" {
		headers["Cache-Control"] = "public, max-age=86400"
	}

	c.DataFromReader(http.StatusOK, object.Size, object.ContentType, body, headers)
}
