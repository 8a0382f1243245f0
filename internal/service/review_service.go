package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/daleel/daleel-backend/internal/model"
	"github.com/daleel/daleel-backend/internal/repository"
	"github.com/daleel/daleel-backend/internal/validator"
	"github.com/rs/zerolog"
)

// ReviewService manages professor reviews.
type ReviewService struct {
	reviews *repository.ReviewRepository
	log     zerolog.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviews *repository.ReviewRepository, log zerolog.Logger) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		log:     log.With().Str("component", "review_service").Logger(),
	}
}

// Create adds actor's review of a course. Each user may review a course once.
func (s *ReviewService) Create(ctx context.Context, actor *model.User, req model.ReviewRequest) (*model.Review, error) {
	rv := &model.Review{
		ProfessorName: strings.TrimSpace(req.ProfessorName),
		CourseCode:    validator.NormalizeCourseCode(req.CourseCode),
		Rating:        req.Rating,
		ReviewText:    strings.TrimSpace(req.ReviewText),
		UserID:        actor.ID,
		UserName:      actor.Name,
	}

	exists, err := s.reviews.ExistsForUserAndCourse(ctx, actor.ID, rv.CourseCode)
	if err != nil {
		return nil, fmt.Errorf("check review: %w", err)
	}
	if exists {
		return nil, ErrDuplicateReview
	}

	// The unique constraint still catches a concurrent duplicate.
	if err := s.reviews.Create(ctx, rv); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateReview
		}
		return nil, fmt.Errorf("create review: %w", err)
	}
	return rv, nil
}

// GetByID retrieves a review.
func (s *ReviewService) GetByID(ctx context.Context, id int) (*model.Review, error) {
	rv, err := s.reviews.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrReviewNotFound
	}
	return rv, err
}

// Update edits a review. Only its author may do so.
func (s *ReviewService) Update(ctx context.Context, actor *model.User, id int, req model.ReviewRequest) (*model.Review, error) {
	rv, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rv.UserID != actor.ID {
		return nil, ErrNotOwner
	}

	rv.ProfessorName = strings.TrimSpace(req.ProfessorName)
	rv.CourseCode = validator.NormalizeCourseCode(req.CourseCode)
	rv.Rating = req.Rating
	rv.ReviewText = strings.TrimSpace(req.ReviewText)

	if err := s.reviews.Update(ctx, rv); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrDuplicateReview
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("update review: %w", err)
	}
	return rv, nil
}

// Delete removes a review. Authors and admins may do so.
func (s *ReviewService) Delete(ctx context.Context, actor *model.User, id int) error {
	rv, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(rv.UserID) {
		return ErrForbidden
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	return nil
}

// ListByCourse returns the reviews of a course code.
func (s *ReviewService) ListByCourse(ctx context.Context, courseCode string) ([]model.Review, error) {
	return s.reviews.ListByCourse(ctx, validator.NormalizeCourseCode(courseCode))
}

// SearchByProfessor returns reviews whose professor name contains name.
func (s *ReviewService) SearchByProfessor(ctx context.Context, name string) ([]model.Review, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: professor name is required", ErrInvalidInput)
	}
	return s.reviews.SearchByProfessor(ctx, name)
}

// AverageRating returns the mean rating for an exact professor name.
func (s *ReviewService) AverageRating(ctx context.Context, name string) (*model.ProfessorRating, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: professor name is required", ErrInvalidInput)
	}
	avg, count, err := s.reviews.AverageRating(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("average rating: %w", err)
	}
	return &model.ProfessorRating{ProfessorName: name, Average: avg, ReviewCount: count}, nil
}
