package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/daleel/daleel-backend/internal/model"
	"github.com/daleel/daleel-backend/internal/repository"
	"github.com/daleel/daleel-backend/internal/response"
	"github.com/daleel/daleel-backend/internal/service"
	"github.com/daleel/daleel-backend/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type materialFixture struct {
	engine    *gin.Engine
	mock      pgxmock.PgxPoolIface
	store     *storage.LocalStorage
	feed      *fakeFeed
	downloads *fakeDownloads
}

func newMaterialFixture(t *testing.T, maxBytes int64) *materialFixture {
	mock := newMock(t)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	f := &materialFixture{mock: mock, store: store, feed: &fakeFeed{}, downloads: &fakeDownloads{}}
	svc := service.NewMaterialService(repository.NewMaterialRepository(mock), store, f.feed, f.downloads,
		maxBytes, []string{"pdf", "doc", "docx"}, zerolog.Nop())
	h := NewMaterialHandler(svc, maxBytes)

	r := newEngine()
	r.GET("/materials/:id/download", h.Download)
	r.POST("/materials", asUser(student), h.Upload)
	f.engine = r
	return f
}

func multipartUpload(t *testing.T, fields map[string]string, fileName, contentType string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/materials", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var uploadFields = map[string]string{
	"title":       "Week 1 slides",
	"description": "Lecture notes",
	"course_code": "cs101",
	"course_name": "Intro",
}

func TestMaterialHandler_Upload(t *testing.T) {
	f := newMaterialFixture(t, 1024)
	content := []byte("%PDF-1.7 test")

	f.mock.ExpectQuery("INSERT INTO materials").
		WithArgs("Week 1 slides", "Lecture notes", "CS101", "Intro", student.ID, "week1.pdf", pgxmock.AnyArg(), "pdf", int64(len(content))).
		WillReturnRows(pgxmock.NewRows([]string{"id", "downloads", "upload_date"}).AddRow(9, 0, time.Now()))

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, multipartUpload(t, uploadFields, "week1.pdf", "application/pdf", content))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "file_key")
	require.Len(t, f.feed.events, 1)
	assert.Equal(t, "CS101", f.feed.events[0].CourseCode)
}

func TestMaterialHandler_Upload_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		contentType string
		content     []byte
		status      int
		code        response.ErrCode
	}{
		{"no file", "", "", nil, http.StatusBadRequest, response.ErrFileRequired},
		{"wrong extension", "virus.exe", "application/octet-stream", []byte("MZ"), http.StatusBadRequest, response.ErrUnsupportedFile},
		{"too large", "big.pdf", "application/pdf", bytes.Repeat([]byte("x"), 2048), http.StatusRequestEntityTooLarge, response.ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMaterialFixture(t, 1024)
			w := httptest.NewRecorder()
			f.engine.ServeHTTP(w, multipartUpload(t, uploadFields, tt.fileName, tt.contentType, tt.content))

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), string(tt.code))
			assert.Empty(t, f.feed.events)
		})
	}
}

func TestMaterialHandler_Download(t *testing.T) {
	f := newMaterialFixture(t, 1024)
	content := "%PDF-1.7 body"
	require.NoError(t, f.store.Upload(context.Background(), "materials/abc.pdf", strings.NewReader(content)))

	f.mock.ExpectQuery("FROM materials m JOIN users").WithArgs(5).
		WillReturnRows(pgxmock.NewRows(materialCols).
			AddRow(5, "Week 1", "", "CS101", "Intro", student.ID, "Sara", `week "1".pdf`, "materials/abc.pdf", "pdf", int64(len(content)), 0, time.Now()))

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/materials/5/download", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, content, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="week _1_.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, []int{5}, f.downloads.ids)
}

func TestMaterialHandler_Download_NotFound(t *testing.T) {
	f := newMaterialFixture(t, 1024)
	f.mock.ExpectQuery("FROM materials m JOIN users").WithArgs(6).
		WillReturnRows(pgxmock.NewRows(materialCols))

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/materials/6/download", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, f.downloads.ids)
}

func TestDownloadName(t *testing.T) {
	assert.Equal(t, "notes.pdf", downloadName(&model.Material{FileName: "notes.pdf"}))
	assert.Equal(t, "Week 1.docx", downloadName(&model.Material{Title: "Week 1", FileType: "docx"}))
	assert.Equal(t, "a_b.pdf", downloadName(&model.Material{FileName: "a\nb.pdf"}))
}
