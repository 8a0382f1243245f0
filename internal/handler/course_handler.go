package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/daleel/daleel-backend/internal/middleware"
	"github.com/daleel/daleel-backend/internal/model"
	"github.com/daleel/daleel-backend/internal/response"
	"github.com/daleel/daleel-backend/internal/service"
	"github.com/daleel/daleel-backend/internal/transcript"
	"github.com/daleel/daleel-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// CourseHandler serves course CRUD, GPA calculation and transcript export.
type CourseHandler struct {
	courseService *service.CourseService
	now           func() time.Time
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courseService *service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService, now: time.Now}
}

// Create godoc
// POST /api/v1/courses
func (h *CourseHandler) Create(c *gin.Context) {
	var req model.CreateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), middleware.GetUser(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"course": course})
}

// List godoc
// GET /api/v1/courses?page=1&per_page=20
func (h *CourseHandler) List(c *gin.Context) {
	page, perPage := pageParams(c)

	courses, total, err := h.courseService.List(c.Request.Context(), page, perPage)
	if err != nil {
		fail(c, err)
		return
	}
	if courses == nil {
		courses = []model.Course{}
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"courses": courses}, response.NewPagination(page, perPage, total))
}

// Mine godoc
// GET /api/v1/courses/mine
func (h *CourseHandler) Mine(c *gin.Context) {
	courses, err := h.courseService.ListByOwner(c.Request.Context(), middleware.GetUser(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	if courses == nil {
		courses = []model.Course{}
	}
	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// GetByID godoc
// GET /api/v1/courses/:id
func (h *CourseHandler) GetByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	course, err := h.courseService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// GetByCode godoc
// GET /api/v1/courses/code/:code
func (h *CourseHandler) GetByCode(c *gin.Context) {
	course, err := h.courseService.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// ListByDepartment godoc
// GET /api/v1/courses/department/:department
func (h *CourseHandler) ListByDepartment(c *gin.Context) {
	courses, err := h.courseService.ListByDepartment(c.Request.Context(), c.Param("department"))
	if err != nil {
		fail(c, err)
		return
	}
	if courses == nil {
		courses = []model.Course{}
	}
	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// Update godoc
// PUT /api/v1/courses/:id
func (h *CourseHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), middleware.GetUser(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// Delete godoc
// DELETE /api/v1/courses/:id
func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), middleware.GetUser(c), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "course deleted successfully"})
}

// CalculateGPA godoc
// POST /api/v1/courses/gpa
// Body is a JSON array of course IDs.
func (h *CourseHandler) CalculateGPA(c *gin.Context) {
	var ids []int
	if err := c.ShouldBindJSON(&ids); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	summary, err := h.courseService.CalculateGPA(c.Request.Context(), ids)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, summary)
}

// Transcript godoc
// GET /api/v1/courses/transcript
// Streams the caller's transcript as an XLSX workbook.
func (h *CourseHandler) Transcript(c *gin.Context) {
	user := middleware.GetUser(c)

	courses, summary, err := h.courseService.Transcript(c.Request.Context(), user)
	if err != nil {
		fail(c, err)
		return
	}

	at := h.now()
	var buf bytes.Buffer
	if err := transcript.Write(&buf, user, courses, summary, at); err != nil {
		fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", transcript.FileName(user, at)))
	c.Data(http.StatusOK, transcript.ContentType, buf.Bytes())
}
