package service

import (
	"context"
	"testing"
	"time"

	"github.com/daleel/daleel-backend/internal/model"
	"github.com/daleel/daleel-backend/internal/token"
	ws "github.com/daleel/daleel-backend/internal/websocket"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

const testSecret = "service-test-secret-with-at-least-32-bytes"

var userCols = []string{"id", "email", "name", "password_hash", "student_id", "department", "role", "active", "created_at", "updated_at"}

var courseCols = []string{"id", "course_code", "course_name", "credit_hours", "grade", "department", "owner_id", "material_count", "created_at", "updated_at"}

var materialCols = []string{"id", "title", "description", "course_code", "course_name", "owner_id", "name", "file_name", "file_key", "file_type", "file_size", "downloads", "upload_date"}

var reviewCols = []string{"id", "professor_name", "course_code", "rating", "review_text", "user_id", "name", "created_at", "updated_at"}

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

func userRow(u model.User, hash string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(userCols).
		AddRow(u.ID, u.Email, u.Name, hash, u.StudentID, u.Department, u.Role, u.Active, now, now)
}

func ptr[T any](v T) *T { return &v }

var (
	student = &model.User{ID: 7, Email: "sara@uoh.edu.sa", Name: "Sara", Role: model.RoleStudent, Active: true}
	other   = &model.User{ID: 8, Email: "omar@uoh.edu.sa", Name: "Omar", Role: model.RoleStudent, Active: true}
	admin   = &model.User{ID: 1, Email: "admin@uoh.edu.sa", Name: "Admin", Role: model.RoleAdmin, Active: true}
)

type fakeFeed struct {
	events []ws.MaterialEvent
	err    error
}

func (f *fakeFeed) Publish(_ context.Context, ev ws.MaterialEvent) error {
	f.events = append(f.events, ev)
	return f.err
}

type fakeDownloads struct {
	ids []int
	err error
}

func (f *fakeDownloads) Enqueue(_ context.Context, id int) error {
	if f.err != nil {
		return f.err
	}
	f.ids = append(f.ids, id)
	return nil
}

func now() time.Time { return time.Now() }
