package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/daleel/daleel-backend/internal/response"
	"github.com/daleel/daleel-backend/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// paramID parses a positive integer path parameter, writing 400 on failure.
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

func pageParams(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > maxPerPage {
		perPage = defaultPerPage
	}
	return page, perPage
}

// fail writes err as an API error. Course validation errors carry the
// offending field; unexpected errors are attached to the context for the
// request logger.
func fail(c *gin.Context, err error) {
	var invalid *service.InvalidCourseDataError
	if errors.As(err, &invalid) {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidCourseData, map[string]string{
			invalid.Field: invalid.Reason,
		})
		return
	}

	if status, _ := response.FromError(err); status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	response.Error(c, err)
}
