package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/daleel/daleel-backend/internal/grade"
	"github.com/daleel/daleel-backend/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	uohEmailPattern   = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@uoh\.edu\.sa$`)
	courseCodePattern = regexp.MustCompile(`^[A-Z]{1,4}\d{3}$`)
	personNamePattern = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
	passwordPattern   = regexp.MustCompile(`^\S{8,}$`)
)

// IsUOHEmail reports whether email is a university address.
func IsUOHEmail(email string) bool {
	return uohEmailPattern.MatchString(email)
}

// NormalizeCourseCode trims and uppercases a course code. The coursecode
// binding tag validates the normalized form, so callers store it this way.
func NormalizeCourseCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsCourseCode reports whether code looks like "CS101": 1-4 capitals then 3 digits.
func IsCourseCode(code string) bool {
	return courseCodePattern.MatchString(code)
}

// IsStrongPassword requires 8+ characters with an upper, a lower, a digit and
// one of @#$%^&+=. Whitespace is never allowed.
func IsStrongPassword(pw string) bool {
	if !passwordPattern.MatchString(pw) {
		return false
	}
	return strings.ContainsAny(pw, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") &&
		strings.ContainsAny(pw, "abcdefghijklmnopqrstuvwxyz") &&
		strings.ContainsAny(pw, "0123456789") &&
		strings.ContainsAny(pw, "@#$%^&+=")
}

// trans is the singleton English translator for validation errors.
var trans ut.Translator

type customTag struct {
	tag     string
	fn      govalidator.Func
	message string
}

var customTags = []customTag{
	{"uohemail", func(fl govalidator.FieldLevel) bool { return IsUOHEmail(fl.Field().String()) }, "{0} must be a valid UOH email address (@uoh.edu.sa)"},
	{"coursecode", func(fl govalidator.FieldLevel) bool { return IsCourseCode(NormalizeCourseCode(fl.Field().String())) }, "{0} must look like CS101"},
	{"grade", func(fl govalidator.FieldLevel) bool { _, ok := grade.Canonical(fl.Field().String()); return ok }, "{0} must be one of " + grade.Choices()},
	{"department", func(fl govalidator.FieldLevel) bool { _, ok := model.ParseDepartment(fl.Field().String()); return ok }, "{0} is not a known department"},
	{"strongpassword", func(fl govalidator.FieldLevel) bool { return IsStrongPassword(fl.Field().String()) }, "{0} must have 8+ characters with upper, lower, digit and one of @#$%^&+="},
	{"personname", func(fl govalidator.FieldLevel) bool { return personNamePattern.MatchString(fl.Field().String()) }, "{0} can only contain letters, spaces, hyphens and apostrophes"},
}

// Setup registers the validator with English translations and the domain
// tags on Gin's binding engine. Call once during application startup.
func Setup() {
	v, ok := binding.Validator.Engine().(*govalidator.Validate)
	if !ok {
		return
	}

	// Field names in messages follow the json tag, then the form tag.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return ""
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	for _, ct := range customTags {
		_ = v.RegisterValidation(ct.tag, ct.fn)
		message := ct.message
		_ = v.RegisterTranslation(ct.tag, trans,
			func(u ut.Translator) error { return u.Add(ct.tag, message, true) },
			func(u ut.Translator, fe govalidator.FieldError) string {
				t, _ := u.T(fe.Tag(), fe.Field())
				return t
			},
		)
	}
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name to human-readable message. Anything that is not a validation
// error (bad JSON, wrong types) lands under "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)
	if err == nil {
		return fields
	}

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the JSON request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// BindForm is Bind for multipart and urlencoded forms.
func BindForm(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBind(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// BindQuery is Bind for query strings.
func BindQuery(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindQuery(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
