package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/daleel/daleel-backend/internal/model"
	"github.com/daleel/daleel-backend/internal/repository"
	"github.com/daleel/daleel-backend/internal/storage"
	"github.com/daleel/daleel-backend/internal/validator"
	ws "github.com/daleel/daleel-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// contentTypes lists the accepted MIME type for each allowed extension.
var contentTypes = map[string]string{
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ContentTypeOf returns the MIME type served for a stored file type.
func ContentTypeOf(fileType string) string {
	if ct, ok := contentTypes[fileType]; ok {
		return ct
	}
	return "application/octet-stream"
}

// FeedPublisher announces new materials to live subscribers.
type FeedPublisher interface {
	Publish(ctx context.Context, ev ws.MaterialEvent) error
}

// DownloadRecorder queues a download for asynchronous counting.
type DownloadRecorder interface {
	Enqueue(ctx context.Context, materialID int) error
}

// FileUpload is the file part of a material upload.
type FileUpload struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

// MaterialService manages material metadata, file contents and download counts.
type MaterialService struct {
	materials    *repository.MaterialRepository
	store        storage.Storage
	feed         FeedPublisher
	downloads    DownloadRecorder
	maxBytes     int64
	allowedTypes []string
	log          zerolog.Logger
}

// NewMaterialService creates a new MaterialService.
func NewMaterialService(
	materials *repository.MaterialRepository,
	store storage.Storage,
	feed FeedPublisher,
	downloads DownloadRecorder,
	maxBytes int64,
	allowedTypes []string,
	log zerolog.Logger,
) *MaterialService {
	types := make([]string, 0, len(allowedTypes))
	for _, t := range allowedTypes {
		types = append(types, strings.ToLower(strings.TrimPrefix(t, ".")))
	}
	return &MaterialService{
		materials:    materials,
		store:        store,
		feed:         feed,
		downloads:    downloads,
		maxBytes:     maxBytes,
		allowedTypes: types,
		log:          log.With().Str("component", "material_service").Logger(),
	}
}

// checkFile validates an upload and returns its normalized extension.
func (s *MaterialService) checkFile(f FileUpload) (string, error) {
	if f.Body == nil || f.Size <= 0 {
		return "", ErrFileRequired
	}
	if f.Size > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, f.Size, s.maxBytes)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Name), "."))
	if !slices.Contains(s.allowedTypes, ext) {
		return "", fmt.Errorf("%w: .%s (allowed: %s)", ErrUnsupportedFileType, ext, strings.Join(s.allowedTypes, ", "))
	}

	mediaType, _, err := mime.ParseMediaType(f.ContentType)
	if err != nil || contentTypes[ext] != mediaType {
		return "", fmt.Errorf("%w: content type %q", ErrUnsupportedFileType, f.ContentType)
	}
	return ext, nil
}

// Upload stores the file and its metadata, then announces it on the
// course feed.
func (s *MaterialService) Upload(ctx context.Context, actor *model.User, req model.UploadMaterialRequest, f FileUpload) (*model.Material, error) {
	ext, err := s.checkFile(f)
	if err != nil {
		return nil, err
	}

	m := &model.Material{
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		CourseCode:   validator.NormalizeCourseCode(req.CourseCode),
		CourseName:   strings.TrimSpace(req.CourseName),
		OwnerID:      actor.ID,
		UploaderName: actor.Name,
		FileName:     filepath.Base(f.Name),
		FileKey:      "materials/" + uuid.New().String() + "." + ext,
		FileType:     ext,
		FileSize:     f.Size,
	}

	if err := s.store.Upload(ctx, m.FileKey, f.Body); err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	if err := s.materials.Create(ctx, m); err != nil {
		if delErr := s.store.Delete(ctx, m.FileKey); delErr != nil {
			s.log.Warn().Err(delErr).Str("file_key", m.FileKey).Msg("Orphaned upload not removed")
		}
		return nil, fmt.Errorf("create material: %w", err)
	}

	s.log.Info().Int("material_id", m.ID).Str("course_code", m.CourseCode).Int64("size", m.FileSize).Msg("Material uploaded")

	if err := s.feed.Publish(ctx, ws.MaterialEvent{
		MaterialID:   m.ID,
		CourseCode:   m.CourseCode,
		Title:        m.Title,
		FileType:     m.FileType,
		UploaderName: m.UploaderName,
		UploadedAt:   m.UploadDate,
	}); err != nil {
		s.log.Warn().Err(err).Int("material_id", m.ID).Msg("Feed publish failed")
	}
	return m, nil
}

// GetByID retrieves a material.
func (s *MaterialService) GetByID(ctx context.Context, id int) (*model.Material, error) {
	m, err := s.materials.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrMaterialNotFound
	}
	return m, err
}

// List returns one page of materials, newest first.
func (s *MaterialService) List(ctx context.Context, page, perPage int) ([]model.Material, int, error) {
	return s.materials.ListPaginated(ctx, perPage, (page-1)*perPage)
}

// ListByCourse returns every material for a course code.
func (s *MaterialService) ListByCourse(ctx context.Context, courseCode string) ([]model.Material, error) {
	return s.materials.ListByCourse(ctx, validator.NormalizeCourseCode(courseCode))
}

// ListByOwner returns every material uploaded by a user.
func (s *MaterialService) ListByOwner(ctx context.Context, ownerID int) ([]model.Material, error) {
	return s.materials.ListByOwner(ctx, ownerID)
}

// Update changes material metadata. Only the uploader may do so.
func (s *MaterialService) Update(ctx context.Context, actor *model.User, id int, req model.UpdateMaterialRequest) (*model.Material, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.OwnerID != actor.ID {
		return nil, ErrNotOwner
	}

	m.Title = strings.TrimSpace(req.Title)
	m.Description = strings.TrimSpace(req.Description)
	m.CourseCode = validator.NormalizeCourseCode(req.CourseCode)
	m.CourseName = strings.TrimSpace(req.CourseName)

	if err := s.materials.Update(ctx, m); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("update material: %w", err)
	}
	return m, nil
}

// Delete removes the stored file and then the row. Only the uploader may do so.
func (s *MaterialService) Delete(ctx context.Context, actor *model.User, id int) error {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m.OwnerID != actor.ID {
		return ErrNotOwner
	}

	if err := s.store.Delete(ctx, m.FileKey); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if err := s.materials.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMaterialNotFound
		}
		return err
	}
	return nil
}

// Open returns the material and a reader over its contents, and counts the
// download. The caller must close the reader.
func (s *MaterialService) Open(ctx context.Context, id int) (*model.Material, io.ReadCloser, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.store.Download(ctx, m.FileKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			s.log.Error().Int("material_id", id).Str("file_key", m.FileKey).Msg("Stored file missing")
			return nil, nil, ErrMaterialNotFound
		}
		return nil, nil, fmt.Errorf("open file: %w", err)
	}

	s.recordDownload(ctx, id)
	return m, rc, nil
}

// recordDownload queues the increment; if the queue is unreachable the
// counter is bumped directly so no download goes uncounted.
func (s *MaterialService) recordDownload(ctx context.Context, id int) {
	err := s.downloads.Enqueue(ctx, id)
	if err == nil {
		return
	}
	s.log.Warn().Err(err).Int("material_id", id).Msg("Download queue unavailable, counting inline")

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.materials.IncrementDownloads(ctx, id, 1); err != nil {
		s.log.Error().Err(err).Int("material_id", id).Msg("Download not counted")
	}
}
