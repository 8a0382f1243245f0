// Package transcript renders a student's course list as an XLSX workbook.
package transcript

import (
	"fmt"
	"io"
	"time"

	"github.com/daleel/daleel-backend/internal/grade"
	"github.com/daleel/daleel-backend/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	// SheetName is the single worksheet in the workbook.
	SheetName = "Transcript"

	// ContentType is the MIME type of the rendered workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	inProgress = "IP"
)

var header = []interface{}{"Course Code", "Course Name", "Department", "Credit Hours", "Grade", "Grade Points"}

// Build lays out the transcript: owner details, one row per course, then the
// GPA summary. The caller must Close the returned file.
func Build(owner *model.User, courses []model.Course, sum grade.Summary, generatedAt time.Time) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create style: %w", err)
	}

	rows := [][]interface{}{
		{"Name", owner.Name},
		{"Email", owner.Email},
		{"Student ID", owner.StudentID},
		{"Generated", generatedAt.UTC().Format(time.RFC3339)},
		{},
		header,
	}
	headerRow := len(rows)

	for _, c := range courses {
		letter, points := inProgress, "-"
		if c.Grade != nil {
			if p, ok := grade.PointOf(*c.Grade); ok {
				letter = *c.Grade
				points = fmt.Sprintf("%.2f", p)
			}
		}
		rows = append(rows, []interface{}{c.CourseCode, c.CourseName, c.Department.DisplayName(), c.CreditHours, letter, points})
	}

	rows = append(rows,
		[]interface{}{},
		[]interface{}{"Graded Credits", sum.GradedCredits},
		[]interface{}{"In-Progress Credits", sum.InProgressCredits},
		[]interface{}{"GPA", fmt.Sprintf("%.2f", sum.GPA)},
		[]interface{}{"Letter", string(sum.Letter)},
	)

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	last, _ := excelize.CoordinatesToCellName(len(header), headerRow)
	if err := f.SetCellStyle(SheetName, fmt.Sprintf("A%d", headerRow), last, bold); err != nil {
		f.Close()
		return nil, fmt.Errorf("style header: %w", err)
	}
	_ = f.SetColWidth(SheetName, "B", "C", 28)

	return f, nil
}

// Write renders the transcript to w.
func Write(w io.Writer, owner *model.User, courses []model.Course, sum grade.Summary, generatedAt time.Time) error {
	f, err := Build(owner, courses, sum, generatedAt)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// FileName is the suggested download name for owner's transcript.
func FileName(owner *model.User, generatedAt time.Time) string {
	id := owner.StudentID
	if id == "" {
		id = fmt.Sprintf("user-%d", owner.ID)
	}
	return fmt.Sprintf("transcript-%s-%s.xlsx", id, generatedAt.UTC().Format("20060102"))
}
