package handler

import (
	"net/http"

	"github.com/daleel/daleel-backend/internal/middleware"
	"github.com/daleel/daleel-backend/internal/model"
	"github.com/daleel/daleel-backend/internal/response"
	"github.com/daleel/daleel-backend/internal/service"
	"github.com/daleel/daleel-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
}

func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// Create godoc
// POST /api/v1/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	var req model.ReviewRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), middleware.GetUser(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"review": review})
}

// Update godoc
// PUT /api/v1/reviews/:id
func (h *ReviewHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.ReviewRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	review, err := h.reviewService.Update(c.Request.Context(), middleware.GetUser(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"review": review})
}

// Delete godoc
// DELETE /api/v1/reviews/:id
func (h *ReviewHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), middleware.GetUser(c), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "review deleted successfully"})
}

// ListByCourse godoc
// GET /api/v1/reviews/course/:code
func (h *ReviewHandler) ListByCourse(c *gin.Context) {
	reviews, err := h.reviewService.ListByCourse(c.Request.Context(), c.Param("code"))
	if err != nil {
		fail(c, err)
		return
	}
	if reviews == nil {
		reviews = []model.Review{}
	}
	response.Success(c, http.StatusOK, gin.H{"reviews": reviews})
}

// SearchByProfessor godoc
// GET /api/v1/reviews/professor?name=
func (h *ReviewHandler) SearchByProfessor(c *gin.Context) {
	reviews, err := h.reviewService.SearchByProfessor(c.Request.Context(), c.Query("name"))
	if err != nil {
		fail(c, err)
		return
	}
	if reviews == nil {
		reviews = []model.Review{}
	}
	response.Success(c, http.StatusOK, gin.H{"reviews": reviews})
}

// AverageRating godoc
// GET /api/v1/reviews/professor/average?name=
func (h *ReviewHandler) AverageRating(c *gin.Context) {
	rating, err := h.reviewService.AverageRating(c.Request.Context(), c.Query("name"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, rating)
}
