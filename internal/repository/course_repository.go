package repository

import (
	"context"

	"github.com/daleel/daleel-backend/internal/grade"
	"github.com/daleel/daleel-backend/internal/model"
	"github.com/jackc/pgx/v5"
)

const courseColumns = `c.id, c.course_code, c.course_name, c.credit_hours, c.grade, c.department, c.owner_id,
	(SELECT COUNT(*) FROM materials m WHERE m.course_code = c.course_code)::int AS material_count,
	c.created_at, c.updated_at`

// CourseRepository handles course data access.
type CourseRepository struct {
	db DB
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(db DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func scanCourse(row pgx.Row) (*model.Course, error) {
	c := &model.Course{}
	err := row.Scan(&c.ID, &c.CourseCode, &c.CourseName, &c.CreditHours, &c.Grade, &c.Department, &c.OwnerID, &c.MaterialCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

func collectCourses(rows pgx.Rows, err error) ([]model.Course, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

// GetByID retrieves a course by ID.
func (r *CourseRepository) GetByID(ctx context.Context, id int) (*model.Course, error) {
	return scanCourse(r.db.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses c WHERE c.id = $1`, id))
}

// GetByCode retrieves a course by its unique code.
func (r *CourseRepository) GetByCode(ctx context.Context, code string) (*model.Course, error) {
	return scanCourse(r.db.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses c WHERE c.course_code = $1`, code))
}

// ListPaginated returns one page of courses ordered by code, plus the total.
func (r *CourseRepository) ListPaginated(ctx context.Context, limit, offset int) ([]model.Course, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM courses`).Scan(&total); err != nil {
		return nil, 0, err
	}

	courses, err := collectCourses(r.db.Query(ctx,
		`SELECT `+courseColumns+` FROM courses c ORDER BY c.course_code LIMIT $1 OFFSET $2`, limit, offset))
	if err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

// ListByDepartment returns every course in a department.
func (r *CourseRepository) ListByDepartment(ctx context.Context, dept model.Department) ([]model.Course, error) {
	return collectCourses(r.db.Query(ctx,
		`SELECT `+courseColumns+` FROM courses c WHERE c.department = $1 ORDER BY c.course_code`, dept))
}

// ListByOwner returns the courses a user has recorded.
func (r *CourseRepository) ListByOwner(ctx context.Context, ownerID int) ([]model.Course, error) {
	return collectCourses(r.db.Query(ctx,
		`SELECT `+courseColumns+` FROM courses c WHERE c.owner_id = $1 ORDER BY c.course_code`, ownerID))
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO courses (course_code, course_name, credit_hours, grade, department, owner_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		c.CourseCode, c.CourseName, c.CreditHours, c.Grade, c.Department, c.OwnerID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return translate(err)
}

// Update writes the mutable columns of c.
func (r *CourseRepository) Update(ctx context.Context, c *model.Course) error {
	err := r.db.QueryRow(ctx,
		`UPDATE courses SET course_name = $1, credit_hours = $2, grade = $3, department = $4, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $5
		 RETURNING updated_at`,
		c.CourseName, c.CreditHours, c.Grade, c.Department, c.ID,
	).Scan(&c.UpdatedAt)
	return translate(err)
}

// Delete removes a course.
func (r *CourseRepository) Delete(ctx context.Context, id int) error {
	return affectedOne(r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id))
}

// GradeRecords loads the grade and credit hours of the given courses.
// IDs that do not exist are skipped.
func (r *CourseRepository) GradeRecords(ctx context.Context, ids []int) ([]grade.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx, `SELECT COALESCE(grade, ''), credit_hours FROM courses WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []grade.Record
	for rows.Next() {
		var rec grade.Record
		if err := rows.Scan(&rec.Grade, &rec.CreditHours); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
