package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/daleel/daleel-backend/internal/middleware"
	"github.com/daleel/daleel-backend/internal/model"
	"github.com/daleel/daleel-backend/internal/response"
	"github.com/daleel/daleel-backend/internal/service"
	"github.com/daleel/daleel-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// multipartOverhead is the room left for form fields on top of the file.
const multipartOverhead = 1 << 20

// MaterialHandler handles material upload, metadata and download endpoints.
type MaterialHandler struct {
	materialService *service.MaterialService
	maxUploadBytes  int64
}

// NewMaterialHandler creates a new MaterialHandler.
func NewMaterialHandler(materialService *service.MaterialService, maxUploadBytes int64) *MaterialHandler {
	return &MaterialHandler{materialService: materialService, maxUploadBytes: maxUploadBytes}
}

// Upload godoc
// POST /api/v1/materials
// Multipart form: file, title, description, course_code, course_name.
func (h *MaterialHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
			return
		}
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	var req model.UploadMaterialRequest
	if fields := validator.BindForm(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	material, err := h.materialService.Upload(c.Request.Context(), middleware.GetUser(c), req, service.FileUpload{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"material": material})
}

// List godoc
// GET /api/v1/materials?page=1&per_page=20
func (h *MaterialHandler) List(c *gin.Context) {
	page, perPage := pageParams(c)

	materials, total, err := h.materialService.List(c.Request.Context(), page, perPage)
	if err != nil {
		fail(c, err)
		return
	}
	if materials == nil {
		materials = []model.Material{}
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"materials": materials}, response.NewPagination(page, perPage, total))
}

// GetByID godoc
// GET /api/v1/materials/:id
func (h *MaterialHandler) GetByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	material, err := h.materialService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"material": material})
}

// ListByCourse godoc
// GET /api/v1/materials/course/:code
func (h *MaterialHandler) ListByCourse(c *gin.Context) {
	materials, err := h.materialService.ListByCourse(c.Request.Context(), c.Param("code"))
	if err != nil {
		fail(c, err)
		return
	}
	if materials == nil {
		materials = []model.Material{}
	}
	response.Success(c, http.StatusOK, gin.H{"materials": materials})
}

// ListByUser godoc
// GET /api/v1/materials/user/:user_id
func (h *MaterialHandler) ListByUser(c *gin.Context) {
	userID, ok := paramID(c, "user_id")
	if !ok {
		return
	}

	materials, err := h.materialService.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	if materials == nil {
		materials = []model.Material{}
	}
	response.Success(c, http.StatusOK, gin.H{"materials": materials})
}

// Update godoc
// PUT /api/v1/materials/:id
func (h *MaterialHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateMaterialRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	material, err := h.materialService.Update(c.Request.Context(), middleware.GetUser(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"material": material})
}

// Delete godoc
// DELETE /api/v1/materials/:id
func (h *MaterialHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.materialService.Delete(c.Request.Context(), middleware.GetUser(c), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "material deleted successfully"})
}

// Download godoc
// GET /api/v1/materials/:id/download
// Streams the stored file as an attachment.
func (h *MaterialHandler) Download(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	material, body, err := h.materialService.Open(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, material.FileSize, service.ContentTypeOf(material.FileType), body, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", downloadName(material)),
	})
}

// downloadName prefers the original file name and falls back to the title.
func downloadName(m *model.Material) string {
	name := m.FileName
	if name == "" {
		name = m.Title + "." + m.FileType
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, name)
}
