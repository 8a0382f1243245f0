// Package grade implements the UOH grade-point scale and credit-weighted GPA.
package grade

import "strings"

// Symbol is a canonical (uppercase) letter grade.
type Symbol string

const (
	APlus Symbol = "A+"
	A     Symbol = "A"
	BPlus Symbol = "B+"
	B     Symbol = "B"
	CPlus Symbol = "C+"
	C     Symbol = "C"
	DPlus Symbol = "D+"
	D     Symbol = "D"
	F     Symbol = "F"
)

// Symbols lists every valid grade from highest to lowest.
var Symbols = []Symbol{APlus, A, BPlus, B, CPlus, C, DPlus, D, F}

// hundredths holds grade points scaled by 100 so aggregation stays exact.
var hundredths = map[Symbol]int64{
	APlus: 400,
	A:     375,
	BPlus: 350,
	B:     300,
	CPlus: 250,
	C:     200,
	DPlus: 150,
	D:     100,
	F:     0,
}

// Record is a single course's contribution to a GPA.
// An empty Grade means the course is still in progress.
type Record struct {
	Grade       string
	CreditHours int
}

// Canonical normalizes raw input and reports whether it is a known grade.
func Canonical(raw string) (Symbol, bool) {
	s := Symbol(strings.ToUpper(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// Choices lists the scale for error messages: "A+, A, B+, ..., F".
func Choices() string {
	names := make([]string, len(Symbols))
	for i, s := range Symbols {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// Points returns the grade-point value of a canonical symbol.
func (s Symbol) Points() float64 {
	return float64(hundredths[s]) / 100
}

// Valid reports whether s is one of the nine canonical symbols.
func (s Symbol) Valid() bool {
	_, ok := hundredths[s]
	return ok
}

// PointOf returns the grade point for grade. The second value is false when
// the grade is absent or not on the scale; it never fails.
func PointOf(grade string) (float64, bool) {
	if grade == "" {
		return 0, false
	}
	s, ok := Canonical(grade)
	if !ok {
		return 0, false
	}
	return s.Points(), true
}

// ComputeGPA returns the credit-weighted average of all graded records,
// rounded half-up to two decimals. Records without a grade are skipped.
// It returns 0 when no graded credits exist.
func ComputeGPA(records []Record) float64 {
	points, credits := totals(records)
	if credits == 0 {
		return 0
	}
	return float64(divRoundHalfUp(points, credits)) / 100
}

func totals(records []Record) (points, credits int64) {
	for _, r := range records {
		if r.Grade == "" {
			continue
		}
		s, ok := Canonical(r.Grade)
		if !ok {
			continue
		}
		points += hundredths[s] * int64(r.CreditHours)
		credits += int64(r.CreditHours)
	}
	return points, credits
}

// divRoundHalfUp computes n/d rounded half-up for non-negative n and positive d.
func divRoundHalfUp(n, d int64) int64 {
	return (2*n + d) / (2 * d)
}

// LetterFor maps a GPA back to a letter band. The scale has no band for A:
// anything from 3.50 up to but excluding 4.00 reports B+.
func LetterFor(gpa float64) Symbol {
	switch {
	case gpa >= 4.00:
		return APlus
	case gpa >= 3.50:
		return BPlus
	case gpa >= 3.00:
		return B
	case gpa >= 2.50:
		return CPlus
	case gpa >= 2.00:
		return C
	case gpa >= 1.50:
		return DPlus
	case gpa >= 1.00:
		return D
	default:
		return F
	}
}

// Summary aggregates a set of records for reporting.
type Summary struct {
	GPA               float64 `json:"gpa"`
	Letter            Symbol  `json:"letter_grade"`
	GradedCredits     int     `json:"graded_credits"`
	InProgressCredits int     `json:"in_progress_credits"`
}

// Summarize computes the GPA together with its letter band and credit totals.
func Summarize(records []Record) Summary {
	var sum Summary
	for _, r := range records {
		if r.Grade == "" {
			sum.InProgressCredits += r.CreditHours
		}
	}
	_, credits := totals(records)
	sum.GradedCredits = int(credits)
	sum.GPA = ComputeGPA(records)
	sum.Letter = LetterFor(sum.GPA)
	return sum
}
