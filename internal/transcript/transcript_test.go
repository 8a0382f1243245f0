package transcript

import (
	"bytes"
	"testing"
	"time"

	"github.com/daleel/daleel-backend/internal/grade"
	"github.com/daleel/daleel-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func fixture() (*model.User, []model.Course, grade.Summary) {
	aPlus, b := "A+", "B"
	owner := &model.User{ID: 7, Name: "Sara", Email: "sara@uoh.edu.sa", StudentID: "202012345"}
	courses := []model.Course{
		{CourseCode: "CS101", CourseName: "Intro to Programming", CreditHours: 3, Grade: &aPlus, Department: model.DepartmentComputerScience},
		{CourseCode: "CS102", CourseName: "Data Structures", CreditHours: 3, Grade: &b, Department: model.DepartmentComputerScience},
		{CourseCode: "M201", CourseName: "Calculus II", CreditHours: 4, Department: model.DepartmentMathematics},
	}
	records := make([]grade.Record, 0, len(courses))
	for _, c := range courses {
		records = append(records, c.GradeRecord())
	}
	return owner, courses, grade.Summarize(records)
}

func TestBuild(t *testing.T) {
	owner, courses, sum := fixture()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	f, err := Build(owner, courses, sum, at)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Sara"}, rows[0])
	assert.Equal(t, []string{"Course Code", "Course Name", "Department", "Credit Hours", "Grade", "Grade Points"}, rows[5])
	assert.Equal(t, []string{"CS101", "Intro to Programming", "Computer Science", "3", "A+", "4.00"}, rows[6])
	assert.Equal(t, []string{"M201", "Calculus II", "Mathematics", "4", "IP", "-"}, rows[8])

	gpa, err := f.GetCellValue(SheetName, "B13")
	require.NoError(t, err)
	assert.Equal(t, "3.50", gpa)
	letter, err := f.GetCellValue(SheetName, "B14")
	require.NoError(t, err)
	assert.Equal(t, "B+", letter)
}

func TestWrite_ProducesReadableWorkbook(t *testing.T) {
	owner, courses, sum := fixture()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, owner, courses, sum, time.Now()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(SheetName, "A7")
	require.NoError(t, err)
	assert.Equal(t, "CS101", v)
}

func TestFileName(t *testing.T) {
	at := time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "transcript-202012345-20250301.xlsx", FileName(&model.User{StudentID: "202012345"}, at))
	assert.Equal(t, "transcript-user-4-20250301.xlsx", FileName(&model.User{ID: 4}, at))
}
