package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"alcyxob/climb-tracker/internal/service"
	"alcyxob/climb-tracker/internal/storage"
)

// DirectUploadPath is where upload URLs point when the storage backend has
// no presigned URLs of its own.
const DirectUploadPath = "/api/v1/imports/fit/objects"

type ImportHandler struct {
	imports service.ImportService
}

func NewImportHandler(imports service.ImportService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

type ConfirmImportRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// CreateUploadURL godoc
// @Summary Presigned URL for uploading a FIT activity file
// @Tags Imports
// @Produce json
// @Security BearerAuth
// @Success 201 {object} service.UploadTicket
// @Router /imports/fit/upload-url [post]
func (h *ImportHandler) CreateUploadURL(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	ticket, err := h.imports.CreateUploadURL(c.Request.Context(), p.UserID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// ConfirmImport godoc
// @Summary Import an uploaded FIT file as workout and heart rate samples
// @Tags Imports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ConfirmImportRequest true "Uploaded object key"
// @Success 201 {object} service.ImportResult
// @Failure 403 {object} gin.H "Object key belongs to another user"
// @Failure 404 {object} gin.H "Object not uploaded"
// @Failure 422 {object} gin.H "Not a FIT activity file"
// @Router /imports/fit/confirm [post]
func (h *ImportHandler) ConfirmImport(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req ConfirmImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	res, err := h.imports.ConfirmImport(c.Request.Context(), p.UserID, req.ObjectKey)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// UploadObject godoc
// @Summary Upload a FIT file to a backend without presigned URLs
// @Tags Imports
// @Accept application/octet-stream
// @Security BearerAuth
// @Param objectKey path string true "Object key from the upload ticket"
// @Success 204
// @Failure 403 {object} gin.H "Object key belongs to another user"
// @Failure 413 {object} gin.H "File too large"
// @Failure 501 {object} gin.H "Backend uses presigned URLs"
// @Router /imports/fit/objects/{objectKey} [put]
func (h *ImportHandler) UploadObject(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, storage.MaxObjectSize+1))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read upload body")
		return
	}
	key := strings.TrimPrefix(c.Param("objectKey"), "/")
	if err := h.imports.UploadObject(c.Request.Context(), p.UserID, key, data); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
