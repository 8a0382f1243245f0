package model

import (
	"strings"
	"time"

	"github.com/daleel/daleel-backend/internal/grade"
)

// Department is an academic department. Every course code starts with the
// department's short code.
type Department string

const (
	DepartmentMathematics     Department = "MATHEMATICS"
	DepartmentComputerScience Department = "COMPUTER_SCIENCE"
	DepartmentPhysics         Department = "PHYSICS"
	DepartmentChemistry       Department = "CHEMISTRY"
	DepartmentBiology         Department = "BIOLOGY"
	DepartmentEngineering     Department = "ENGINEERING"
	DepartmentBusiness        Department = "BUSINESS"
	DepartmentMedicine        Department = "MEDICINE"
)

type departmentInfo struct {
	code string
	name string
}

var departments = map[Department]departmentInfo{
	DepartmentMathematics:     {"M", "Mathematics"},
	DepartmentComputerScience: {"CS", "Computer Science"},
	DepartmentPhysics:         {"PH", "Physics"},
	DepartmentChemistry:       {"CH", "Chemistry"},
	DepartmentBiology:         {"BI", "Biology"},
	DepartmentEngineering:     {"EN", "Engineering"},
	DepartmentBusiness:        {"BS", "Business"},
	DepartmentMedicine:        {"MD", "Medicine"},
}

// ParseDepartment accepts the enum name in any case.
func ParseDepartment(raw string) (Department, bool) {
	d := Department(strings.ToUpper(strings.TrimSpace(raw)))
	return d, d.Valid()
}

// Valid reports whether d is a known department.
func (d Department) Valid() bool {
	_, ok := departments[d]
	return ok
}

// Code is the course-code prefix, e.g. "CS".
func (d Department) Code() string {
	return departments[d].code
}

// DepartmentOfCode returns the department whose code is the longest prefix
// of courseCode, so "MD101" belongs to MEDICINE rather than MATHEMATICS.
func DepartmentOfCode(courseCode string) (Department, bool) {
	var best Department
	for d, info := range departments {
		if strings.HasPrefix(courseCode, info.code) && len(info.code) > len(best.Code()) {
			best = d
		}
	}
	return best, best != ""
}

// DisplayName is the human-readable department name.
func (d Department) DisplayName() string {
	return departments[d].name
}

// Course is a course record owned by a user. A nil Grade means the course is
// still in progress.
type Course struct {
	ID            int        `json:"id"`
	CourseCode    string     `json:"course_code"`
	CourseName    string     `json:"course_name"`
	CreditHours   int        `json:"credit_hours"`
	Grade         *string    `json:"grade"`
	Department    Department `json:"department"`
	OwnerID       *int       `json:"owner_id,omitempty"`
	MaterialCount int        `json:"material_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// GradeRecord projects the course onto the fields the GPA needs.
func (c Course) GradeRecord() grade.Record {
	r := grade.Record{CreditHours: c.CreditHours}
	if c.Grade != nil {
		r.Grade = *c.Grade
	}
	return r
}

// CreateCourseRequest is the payload for creating a course.
type CreateCourseRequest struct {
	CourseCode  string     `json:"course_code" binding:"required,coursecode"`
	CourseName  string     `json:"course_name" binding:"required,max=100"`
	CreditHours int        `json:"credit_hours" binding:"required,min=1,max=6"`
	Grade       *string    `json:"grade" binding:"omitempty,grade"`
	Department  Department `json:"department" binding:"required,department"`
}

// UpdateCourseRequest replaces the mutable fields of a course. The code is
// immutable.
type UpdateCourseRequest struct {
	CourseName  string     `json:"course_name" binding:"required,max=100"`
	CreditHours int        `json:"credit_hours" binding:"required,min=1,max=6"`
	Grade       *string    `json:"grade" binding:"omitempty,grade"`
	Department  Department `json:"department" binding:"required,department"`
}
