package response

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Response is the envelope every JSON endpoint answers with. Exactly one of
// Data and Error carries content.
type Response struct {
	Data       interface{} `json:"data"`
	Error      *ErrorBody  `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Metadata   Metadata    `json:"metadata"`
}

// ErrorBody is the machine-readable part of a failed response. Fields maps a
// request field to the reason it was rejected.
type ErrorBody struct {
	Code    ErrCode           `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// NewPagination derives the page count from the item total.
func NewPagination(page, perPage, total int) *Pagination {
	pages := 0
	if perPage > 0 {
		pages = (total + perPage - 1) / perPage
	}
	return &Pagination{Page: page, PerPage: perPage, TotalItems: total, TotalPages: pages}
}

// Metadata ties a response to its request log line.
type Metadata struct {
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// ────────────────────────────────────────────────────────────────────────────
// Success
// ────────────────────────────────────────────────────────────────────────────

// Success writes data with the given status.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, envelope(c, data, nil))
}

// SuccessWithPagination writes one page of a listing.
func SuccessWithPagination(c *gin.Context, statusCode int, data interface{}, pagination *Pagination) {
	body := envelope(c, data, nil)
	body.Pagination = pagination
	c.JSON(statusCode, body)
}

// ────────────────────────────────────────────────────────────────────────────
// Failure
// ────────────────────────────────────────────────────────────────────────────

// Fail writes an error code with its standard message.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	c.JSON(statusCode, envelope(c, nil, errorBody(code, nil)))
}

// FailWithFields writes an error code together with per-field reasons.
func FailWithFields(c *gin.Context, statusCode int, code ErrCode, fields map[string]string) {
	c.JSON(statusCode, envelope(c, nil, errorBody(code, fields)))
}

// AbortFail is Fail for middleware: the remaining handlers are skipped.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	c.AbortWithStatusJSON(statusCode, envelope(c, nil, errorBody(code, nil)))
}

// Error translates err through FromError. Unknown errors become
// 500 INTERNAL_ERROR.
func Error(c *gin.Context, err error) {
	status, code := FromError(err)
	Fail(c, status, code)
}

// AbortError is Error for middleware.
func AbortError(c *gin.Context, err error) {
	status, code := FromError(err)
	AbortFail(c, status, code)
}

func errorBody(code ErrCode, fields map[string]string) *ErrorBody {
	return &ErrorBody{Code: code, Message: GetMessage(code), Fields: fields}
}

func envelope(c *gin.Context, data interface{}, errBody *ErrorBody) Response {
	id := RequestID(c)
	if id == "" {
		// Router without RequestIDMiddleware, e.g. in handler tests.
		id = uuid.New().String()
	}
	return Response{
		Data:  data,
		Error: errBody,
		Metadata: Metadata{
			RequestID: id,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
}
