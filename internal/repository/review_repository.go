package repository

import (
	"context"
	"strings"

	"github.com/daleel/daleel-backend/internal/model"
	"github.com/jackc/pgx/v5"
)

const reviewColumns = `r.id, r.professor_name, r.course_code, r.rating, r.review_text, r.user_id, u.name, r.created_at, r.updated_at`

const reviewFrom = ` FROM reviews r JOIN users u ON u.id = r.user_id`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ReviewRepository handles professor review data access.
type ReviewRepository struct {
	db DB
}

// NewReviewRepository creates a new ReviewRepository.
func NewReviewRepository(db DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func scanReview(row pgx.Row) (*model.Review, error) {
	rv := &model.Review{}
	err := row.Scan(&rv.ID, &rv.ProfessorName, &rv.CourseCode, &rv.Rating, &rv.ReviewText, &rv.UserID, &rv.UserName, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return rv, nil
}

func collectReviews(rows pgx.Rows, err error) ([]model.Review, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *rv)
	}
	return reviews, rows.Err()
}

// GetByID retrieves a review by ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id int) (*model.Review, error) {
	return scanReview(r.db.QueryRow(ctx, `SELECT `+reviewColumns+reviewFrom+` WHERE r.id = $1`, id))
}

// ListByCourse returns all reviews for a course code, newest first.
func (r *ReviewRepository) ListByCourse(ctx context.Context, courseCode string) ([]model.Review, error) {
	return collectReviews(r.db.Query(ctx,
		`SELECT `+reviewColumns+reviewFrom+` WHERE r.course_code = $1 ORDER BY r.created_at DESC`, courseCode))
}

// SearchByProfessor matches professor names containing name, ignoring case.
func (r *ReviewRepository) SearchByProfessor(ctx context.Context, name string) ([]model.Review, error) {
	return collectReviews(r.db.Query(ctx,
		`SELECT `+reviewColumns+reviewFrom+` WHERE r.professor_name ILIKE '%' || $1 || '%' ORDER BY r.created_at DESC`,
		likeEscaper.Replace(name)))
}

// AverageRating returns the mean rating for an exact professor name.
// The average is nil when there are no reviews.
func (r *ReviewRepository) AverageRating(ctx context.Context, professorName string) (*float64, int, error) {
	var avg *float64
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT AVG(rating)::float8, COUNT(*)::int FROM reviews WHERE professor_name = $1`, professorName,
	).Scan(&avg, &count)
	if err != nil {
		return nil, 0, err
	}
	return avg, count, nil
}

// ExistsForUserAndCourse reports whether the user already reviewed the course.
func (r *ReviewRepository) ExistsForUserAndCourse(ctx context.Context, userID int, courseCode string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM reviews WHERE user_id = $1 AND course_code = $2)`, userID, courseCode,
	).Scan(&exists)
	return exists, err
}

// Create inserts a review. A second review by the same user for the same
// course violates uq_reviews_user_course and returns ErrDuplicate.
func (r *ReviewRepository) Create(ctx context.Context, rv *model.Review) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO reviews (professor_name, course_code, rating, review_text, user_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		rv.ProfessorName, rv.CourseCode, rv.Rating, rv.ReviewText, rv.UserID,
	).Scan(&rv.ID, &rv.CreatedAt, &rv.UpdatedAt)
	return translate(err)
}

// Update writes the editable columns of rv.
func (r *ReviewRepository) Update(ctx context.Context, rv *model.Review) error {
	err := r.db.QueryRow(ctx,
		`UPDATE reviews SET professor_name = $1, course_code = $2, rating = $3, review_text = $4, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $5
		 RETURNING updated_at`,
		rv.ProfessorName, rv.CourseCode, rv.Rating, rv.ReviewText, rv.ID,
	).Scan(&rv.UpdatedAt)
	return translate(err)
}

// Delete removes a review.
func (r *ReviewRepository) Delete(ctx context.Context, id int) error {
	return affectedOne(r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id))
}
