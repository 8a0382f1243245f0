package model

import "time"

// Review is a student's rating of a professor for a course.
// A user may review each course code once.
type Review struct {
	ID            int       `json:"id"`
	ProfessorName string    `json:"professor_name"`
	CourseCode    string    `json:"course_code"`
	Rating        int       `json:"rating"`
	ReviewText    string    `json:"review_text"`
	UserID        int       `json:"user_id"`
	UserName      string    `json:"user_name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ReviewRequest is used for both create and update.
type ReviewRequest struct {
	ProfessorName string `json:"professor_name" binding:"required,min=2,max=100"`
	CourseCode    string `json:"course_code" binding:"required,coursecode"`
	Rating        int    `json:"rating" binding:"required,min=1,max=5"`
	ReviewText    string `json:"review_text" binding:"required,min=1,max=1000"`
}

// ProfessorRating is the average rating of a professor. Average is nil when
// the professor has no reviews.
type ProfessorRating struct {
	ProfessorName string   `json:"professor_name"`
	Average       *float64 `json:"average_rating"`
	ReviewCount   int      `json:"review_count"`
}
