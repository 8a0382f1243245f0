package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/daleel/daleel-backend/internal/middleware"
	"github.com/daleel/daleel-backend/internal/model"
	"github.com/daleel/daleel-backend/internal/response"
	"github.com/daleel/daleel-backend/internal/token"
	"github.com/daleel/daleel-backend/internal/validator"
	ws "github.com/daleel/daleel-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret-with-at-least-32-bytes"

var (
	student = &model.User{ID: 7, Email: "sara@uoh.edu.sa", Name: "Sara", StudentID: "202012345", Role: model.RoleStudent, Active: true}
	admin   = &model.User{ID: 1, Email: "admin@uoh.edu.sa", Name: "Admin", Role: model.RoleAdmin, Active: true}
)

var userCols = []string{"id", "email", "name", "password_hash", "student_id", "department", "role", "active", "created_at", "updated_at"}

var courseCols = []string{"id", "course_code", "course_name", "credit_hours", "grade", "department", "owner_id", "material_count", "created_at", "updated_at"}

var materialCols = []string{"id", "title", "description", "course_code", "course_name", "owner_id", "name", "file_name", "file_key", "file_type", "file_size", "downloads", "upload_date"}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validator.Setup()
	os.Exit(m.Run())
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func newAuthority(t *testing.T) *token.Authority {
	t.Helper()
	a, err := token.New(token.Config{Secret: testSecret, Lifetime: time.Hour})
	require.NoError(t, err)
	return a
}

// asUser authenticates every request as u.
func asUser(u *model.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyUser, u)
		c.Next()
	}
}

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(response.RequestIDMiddleware())
	return r
}

type envelope struct {
	Data       json.RawMessage      `json:"data"`
	Error      *response.ErrorBody  `json:"error"`
	Pagination *response.Pagination `json:"pagination"`
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}, header http.Header) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if ct := w.Header().Get("Content-Type"); len(ct) >= 16 && ct[:16] == "application/json" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

type fakeFeed struct {
	events []ws.MaterialEvent
}

func (f *fakeFeed) Publish(_ context.Context, ev ws.MaterialEvent) error {
	f.events = append(f.events, ev)
	return nil
}

type fakeDownloads struct {
	ids []int
}

func (f *fakeDownloads) Enqueue(_ context.Context, id int) error {
	f.ids = append(f.ids, id)
	return nil
}
