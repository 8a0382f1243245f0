package service

import (
	"errors"
	"fmt"
)

// Domain errors. The HTTP layer maps each to a status in response.FromError.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")

	ErrCourseNotFound    = errors.New("course not found")
	ErrDuplicateCourse   = errors.New("course code already exists")
	ErrInvalidCourseData = errors.New("invalid course data")

	ErrMaterialNotFound    = errors.New("material not found")
	ErrFileRequired        = errors.New("file is required")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")

	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("course already reviewed by this user")

	ErrForbidden    = errors.New("forbidden")
	ErrNotOwner     = errors.New("not the owner")
	ErrInvalidInput = errors.New("invalid input")
)

// InvalidCourseDataError names the offending field. It matches
// ErrInvalidCourseData under errors.Is.
type InvalidCourseDataError struct {
	Field  string
	Reason string
}

func (e *InvalidCourseDataError) Error() string {
	return fmt.Sprintf("invalid course data: %s %s", e.Field, e.Reason)
}

func (e *InvalidCourseDataError) Is(target error) bool {
	return target == ErrInvalidCourseData
}
