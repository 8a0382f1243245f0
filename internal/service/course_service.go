package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/daleel/daleel-backend/internal/grade"
	"github.com/daleel/daleel-backend/internal/model"
	"github.com/daleel/daleel-backend/internal/repository"
	"github.com/daleel/daleel-backend/internal/validator"
	"github.com/rs/zerolog"
)

// CourseService manages course records and computes GPAs from them.
type CourseService struct {
	courses *repository.CourseRepository
	log     zerolog.Logger
}

// NewCourseService creates a new CourseService.
func NewCourseService(courses *repository.CourseRepository, log zerolog.Logger) *CourseService {
	return &CourseService{
		courses: courses,
		log:     log.With().Str("component", "course_service").Logger(),
	}
}

// validCourse is the canonical form of course input after validation.
type validCourse struct {
	code       string
	grade      *string
	department model.Department
}

// validateCourse enforces the write-boundary rules every stored course obeys.
func validateCourse(code string, creditHours int, rawGrade *string, dept model.Department) (validCourse, error) {
	var out validCourse

	if creditHours < 1 || creditHours > 6 {
		return out, &InvalidCourseDataError{Field: "credit_hours", Reason: "must be between 1 and 6"}
	}

	if rawGrade != nil && strings.TrimSpace(*rawGrade) != "" {
		sym, ok := grade.Canonical(*rawGrade)
		if !ok {
			return out, &InvalidCourseDataError{Field: "grade", Reason: "must be one of " + grade.Choices()}
		}
		g := string(sym)
		out.grade = &g
	}

	d, ok := model.ParseDepartment(string(dept))
	if !ok {
		return out, &InvalidCourseDataError{Field: "department", Reason: "is not a known department"}
	}
	out.department = d

	out.code = validator.NormalizeCourseCode(code)
	if !validator.IsCourseCode(out.code) {
		return out, &InvalidCourseDataError{Field: "course_code", Reason: "must be 1-4 capital letters followed by 3 digits"}
	}
	if owner, ok := model.DepartmentOfCode(out.code); !ok || owner != d {
		return out, &InvalidCourseDataError{Field: "course_code", Reason: fmt.Sprintf("must start with department code %s", d.Code())}
	}

	return out, nil
}

// Create records a new course owned by actor.
func (s *CourseService) Create(ctx context.Context, actor *model.User, req model.CreateCourseRequest) (*model.Course, error) {
	v, err := validateCourse(req.CourseCode, req.CreditHours, req.Grade, req.Department)
	if err != nil {
		return nil, err
	}

	c := &model.Course{
		CourseCode:  v.code,
		CourseName:  strings.TrimSpace(req.CourseName),
		CreditHours: req.CreditHours,
		Grade:       v.grade,
		Department:  v.department,
		OwnerID:     &actor.ID,
	}
	if err := s.courses.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateCourse
		}
		return nil, fmt.Errorf("create course: %w", err)
	}

	s.log.Info().Str("course_code", c.CourseCode).Int("owner_id", actor.ID).Msg("Course created")
	return c, nil
}

// GetByID retrieves a course.
func (s *CourseService) GetByID(ctx context.Context, id int) (*model.Course, error) {
	c, err := s.courses.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCourseNotFound
	}
	return c, err
}

// GetByCode retrieves a course by code, ignoring case.
func (s *CourseService) GetByCode(ctx context.Context, code string) (*model.Course, error) {
	c, err := s.courses.GetByCode(ctx, validator.NormalizeCourseCode(code))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCourseNotFound
	}
	return c, err
}

// List returns one page of courses and the total count.
func (s *CourseService) List(ctx context.Context, page, perPage int) ([]model.Course, int, error) {
	return s.courses.ListPaginated(ctx, perPage, (page-1)*perPage)
}

// ListByDepartment accepts the department enum name in any case.
func (s *CourseService) ListByDepartment(ctx context.Context, raw string) ([]model.Course, error) {
	d, ok := model.ParseDepartment(raw)
	if !ok {
		return nil, &InvalidCourseDataError{Field: "department", Reason: "is not a known department"}
	}
	return s.courses.ListByDepartment(ctx, d)
}

// ListByOwner returns the courses recorded by a user.
func (s *CourseService) ListByOwner(ctx context.Context, ownerID int) ([]model.Course, error) {
	return s.courses.ListByOwner(ctx, ownerID)
}

// Update replaces the mutable fields of a course. Only the owner or an
// admin may do so; courses without an owner are admin-only.
func (s *CourseService) Update(ctx context.Context, actor *model.User, id int, req model.UpdateCourseRequest) (*model.Course, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModifyCourse(actor, c) {
		return nil, ErrForbidden
	}

	v, err := validateCourse(c.CourseCode, req.CreditHours, req.Grade, req.Department)
	if err != nil {
		return nil, err
	}

	c.CourseName = strings.TrimSpace(req.CourseName)
	c.CreditHours = req.CreditHours
	c.Grade = v.grade
	c.Department = v.department

	if err := s.courses.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("update course: %w", err)
	}
	return c, nil
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, actor *model.User, id int) error {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canModifyCourse(actor, c) {
		return ErrForbidden
	}
	if err := s.courses.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	return nil
}

func canModifyCourse(actor *model.User, c *model.Course) bool {
	if c.OwnerID == nil {
		return actor.IsAdmin()
	}
	return actor.CanModify(*c.OwnerID)
}

// CalculateGPA computes the GPA of the listed courses. Unknown IDs are ignored.
func (s *CourseService) CalculateGPA(ctx context.Context, ids []int) (grade.Summary, error) {
	records, err := s.courses.GradeRecords(ctx, ids)
	if err != nil {
		return grade.Summary{}, fmt.Errorf("load grade records: %w", err)
	}
	return grade.Summarize(records), nil
}

// Transcript returns the owner's courses and their GPA summary.
func (s *CourseService) Transcript(ctx context.Context, owner *model.User) ([]model.Course, grade.Summary, error) {
	courses, err := s.courses.ListByOwner(ctx, owner.ID)
	if err != nil {
		return nil, grade.Summary{}, fmt.Errorf("list courses: %w", err)
	}

	records := make([]grade.Record, 0, len(courses))
	for _, c := range courses {
		records = append(records, c.GradeRecord())
	}
	return courses, grade.Summarize(records), nil
}
