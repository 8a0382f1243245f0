package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/daleel/daleel-backend/internal/grade"
	"github.com/daleel/daleel-backend/internal/model"
	"github.com/daleel/daleel-backend/internal/repository"
	"github.com/daleel/daleel-backend/internal/response"
	"github.com/daleel/daleel-backend/internal/service"
	"github.com/daleel/daleel-backend/internal/transcript"
	"github.com/gin-gonic/gin"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newCourseEngine(t *testing.T, user *model.User) (*gin.Engine, pgxmock.PgxPoolIface) {
	mock := newMock(t)
	h := NewCourseHandler(service.NewCourseService(repository.NewCourseRepository(mock), zerolog.Nop()))
	h.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }

	r := newEngine()
	r.GET("/courses", h.List)
	r.POST("/courses/gpa", h.CalculateGPA)
	r.GET("/courses/:id", h.GetByID)

	authed := r.Group("", asUser(user))
	authed.POST("/courses", h.Create)
	authed.GET("/courses/transcript", h.Transcript)
	authed.DELETE("/courses/:id", h.Delete)
	return r, mock
}

func TestCourseHandler_Create(t *testing.T) {
	t.Run("binding rejects bad fields", func(t *testing.T) {
		r, _ := newCourseEngine(t, student)
		w, env := do(t, r, http.MethodPost, "/courses", map[string]interface{}{
			"course_code":  "cs-101",
			"course_name":  "Intro",
			"credit_hours": 9,
			"grade":        "E",
			"department":   "COMPUTER_SCIENCE",
		}, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, response.ErrValidation, env.Error.Code)
		assert.Contains(t, env.Error.Fields, "course_code")
		assert.Contains(t, env.Error.Fields, "credit_hours")
		assert.Contains(t, env.Error.Fields, "grade")
	})

	t.Run("prefix mismatch names the field", func(t *testing.T) {
		r, _ := newCourseEngine(t, student)
		w, env := do(t, r, http.MethodPost, "/courses", map[string]interface{}{
			"course_code":  "PH101",
			"course_name":  "Intro",
			"credit_hours": 3,
			"department":   "COMPUTER_SCIENCE",
		}, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, response.ErrInvalidCourseData, env.Error.Code)
		assert.Contains(t, env.Error.Fields["course_code"], "CS")
	})

	t.Run("created", func(t *testing.T) {
		r, mock := newCourseEngine(t, student)
		mock.ExpectQuery("INSERT INTO courses").
			WithArgs("CS101", "Intro", 3, (*string)(nil), model.DepartmentComputerScience, &student.ID).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(4, time.Now(), time.Now()))

		w, env := do(t, r, http.MethodPost, "/courses", map[string]interface{}{
			"course_code":  "CS101",
			"course_name":  "Intro",
			"credit_hours": 3,
			"department":   "COMPUTER_SCIENCE",
		}, nil)

		require.Equal(t, http.StatusCreated, w.Code)
		var data struct {
			Course model.Course `json:"course"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, 4, data.Course.ID)
		assert.Nil(t, data.Course.Grade)
	})
}

func TestCourseHandler_List(t *testing.T) {
	r, mock := newCourseEngine(t, student)
	ts := time.Now()

	mock.ExpectQuery("SELECT COUNT").WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(21))
	mock.ExpectQuery("FROM courses c ORDER BY").WithArgs(20, 20).
		WillReturnRows(pgxmock.NewRows(courseCols).
			AddRow(21, "MD101", "Anatomy", 4, (*string)(nil), model.DepartmentMedicine, (*int)(nil), 0, ts, ts))

	w, env := do(t, r, http.MethodGet, "/courses?page=2&per_page=500", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 2, env.Pagination.Page)
	assert.Equal(t, 20, env.Pagination.PerPage)
	assert.Equal(t, 2, env.Pagination.TotalPages)
}

func TestCourseHandler_GetByID_InvalidID(t *testing.T) {
	r, _ := newCourseEngine(t, student)

	w, env := do(t, r, http.MethodGet, "/courses/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrInvalidID, env.Error.Code)
}

func TestCourseHandler_CalculateGPA(t *testing.T) {
	t.Run("summary", func(t *testing.T) {
		r, mock := newCourseEngine(t, student)
		mock.ExpectQuery("SELECT COALESCE").WithArgs([]int{1, 2, 42}).
			WillReturnRows(pgxmock.NewRows([]string{"grade", "credit_hours"}).
				AddRow("A+", 3).
				AddRow("B", 3))

		w, env := do(t, r, http.MethodPost, "/courses/gpa", "[1, 2, 42]", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var sum grade.Summary
		require.NoError(t, json.Unmarshal(env.Data, &sum))
		assert.Equal(t, 3.50, sum.GPA)
		assert.Equal(t, grade.BPlus, sum.Letter)
		assert.Equal(t, 6, sum.GradedCredits)
	})

	t.Run("body must be an id array", func(t *testing.T) {
		r, _ := newCourseEngine(t, student)
		w, env := do(t, r, http.MethodPost, "/courses/gpa", `{"ids":[1]}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, response.ErrInvalidPayload, env.Error.Code)
	})
}

func TestCourseHandler_Transcript(t *testing.T) {
	r, mock := newCourseEngine(t, student)
	ts := time.Now()
	mock.ExpectQuery("FROM courses c WHERE c.owner_id").WithArgs(student.ID).
		WillReturnRows(pgxmock.NewRows(courseCols).
			AddRow(1, "CS101", "Intro", 3, ptr("A+"), model.DepartmentComputerScience, &student.ID, 0, ts, ts).
			AddRow(2, "CS102", "Data Structures", 3, ptr("B"), model.DepartmentComputerScience, &student.ID, 0, ts, ts))

	w, _ := do(t, r, http.MethodGet, "/courses/transcript", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, transcript.ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "transcript-202012345-20250301.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(transcript.SheetName)
	require.NoError(t, err)
	assert.NotEmpty(t, rows)
}

func TestCourseHandler_Delete_Forbidden(t *testing.T) {
	r, mock := newCourseEngine(t, student)
	ts := time.Now()
	owner := 99
	mock.ExpectQuery("FROM courses c WHERE c.id").WithArgs(3).
		WillReturnRows(pgxmock.NewRows(courseCols).
			AddRow(3, "CS101", "Intro", 3, (*string)(nil), model.DepartmentComputerScience, &owner, 0, ts, ts))

	w, env := do(t, r, http.MethodDelete, "/courses/3", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, response.ErrForbidden, env.Error.Code)
}

func ptr[T any](v T) *T { return &v }
