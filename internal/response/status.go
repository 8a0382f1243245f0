package response

import (
	"errors"
	"net/http"

	"github.com/daleel/daleel-backend/internal/service"
	"github.com/daleel/daleel-backend/internal/token"
)

type errorMapping struct {
	err    error
	status int
	code   ErrCode
}

// errorTable is the single place where domain failures become HTTP statuses.
// First match wins.
var errorTable = []errorMapping{
	// ─── Token ─────────────────────────────────────────────────────────
	{token.ErrTokenMissing, http.StatusUnauthorized, ErrTokenRequired},
	{token.ErrTokenMalformed, http.StatusUnauthorized, ErrTokenInvalid},
	{token.ErrTokenUnsupported, http.StatusUnauthorized, ErrTokenUnsupported},
	{token.ErrTokenExpired, http.StatusUnauthorized, ErrTokenExpired},

	// ─── Auth ──────────────────────────────────────────────────────────
	{service.ErrInvalidCredentials, http.StatusUnauthorized, ErrInvalidCredentials},
	{service.ErrAccountDisabled, http.StatusUnauthorized, ErrAccountDisabled},
	{service.ErrForbidden, http.StatusForbidden, ErrForbidden},
	{service.ErrNotOwner, http.StatusForbidden, ErrNotOwner},

	// ─── Not found ─────────────────────────────────────────────────────
	{service.ErrUserNotFound, http.StatusNotFound, ErrNotFound},
	{service.ErrCourseNotFound, http.StatusNotFound, ErrNotFound},
	{service.ErrMaterialNotFound, http.StatusNotFound, ErrNotFound},
	{service.ErrReviewNotFound, http.StatusNotFound, ErrNotFound},

	// ─── Conflicts ─────────────────────────────────────────────────────
	{service.ErrEmailAlreadyExists, http.StatusConflict, ErrEmailExists},
	{service.ErrDuplicateCourse, http.StatusConflict, ErrDuplicateCourse},
	{service.ErrDuplicateReview, http.StatusConflict, ErrDuplicateReview},

	// ─── Input ─────────────────────────────────────────────────────────
	{service.ErrInvalidCourseData, http.StatusBadRequest, ErrInvalidCourseData},
	{service.ErrInvalidInput, http.StatusBadRequest, ErrValidation},
	{service.ErrFileRequired, http.StatusBadRequest, ErrFileRequired},
	{service.ErrUnsupportedFileType, http.StatusBadRequest, ErrUnsupportedFile},
	{service.ErrFileTooLarge, http.StatusRequestEntityTooLarge, ErrFileTooLarge},
}

// FromError returns the HTTP status and error code for err.
// Errors outside the table map to 500 INTERNAL_ERROR.
func FromError(err error) (int, ErrCode) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, ErrInternal
}
