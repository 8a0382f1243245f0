package repository

import (
	"context"

	"github.com/daleel/daleel-backend/internal/model"
	"github.com/jackc/pgx/v5"
)

const materialColumns = `m.id, m.title, m.description, m.course_code, m.course_name, m.owner_id, u.name,
	m.file_name, m.file_key, m.file_type, m.file_size, m.downloads, m.upload_date`

const materialFrom = ` FROM materials m JOIN users u ON u.id = m.owner_id`

// MaterialRepository handles material metadata. File bytes live in storage.
type MaterialRepository struct {
	db DB
}

// NewMaterialRepository creates a new MaterialRepository.
func NewMaterialRepository(db DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

func scanMaterial(row pgx.Row) (*model.Material, error) {
	m := &model.Material{}
	err := row.Scan(&m.ID, &m.Title, &m.Description, &m.CourseCode, &m.CourseName, &m.OwnerID, &m.UploaderName,
		&m.FileName, &m.FileKey, &m.FileType, &m.FileSize, &m.Downloads, &m.UploadDate)
	if err != nil {
		return nil, translate(err)
	}
	return m, nil
}

func collectMaterials(rows pgx.Rows, err error) ([]model.Material, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	materials := []model.Material{}
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		materials = append(materials, *m)
	}
	return materials, rows.Err()
}

// GetByID retrieves a material by ID.
func (r *MaterialRepository) GetByID(ctx context.Context, id int) (*model.Material, error) {
	return scanMaterial(r.db.QueryRow(ctx, `SELECT `+materialColumns+materialFrom+` WHERE m.id = $1`, id))
}

// ListPaginated returns the newest materials first.
func (r *MaterialRepository) ListPaginated(ctx context.Context, limit, offset int) ([]model.Material, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM materials`).Scan(&total); err != nil {
		return nil, 0, err
	}

	materials, err := collectMaterials(r.db.Query(ctx,
		`SELECT `+materialColumns+materialFrom+` ORDER BY m.upload_date DESC, m.id DESC LIMIT $1 OFFSET $2`, limit, offset))
	if err != nil {
		return nil, 0, err
	}
	return materials, total, nil
}

// ListByCourse returns all materials for a course code.
func (r *MaterialRepository) ListByCourse(ctx context.Context, courseCode string) ([]model.Material, error) {
	return collectMaterials(r.db.Query(ctx,
		`SELECT `+materialColumns+materialFrom+` WHERE m.course_code = $1 ORDER BY m.upload_date DESC`, courseCode))
}

// ListByOwner returns all materials uploaded by a user.
func (r *MaterialRepository) ListByOwner(ctx context.Context, ownerID int) ([]model.Material, error) {
	return collectMaterials(r.db.Query(ctx,
		`SELECT `+materialColumns+materialFrom+` WHERE m.owner_id = $1 ORDER BY m.upload_date DESC`, ownerID))
}

// Create inserts a new material row.
func (r *MaterialRepository) Create(ctx context.Context, m *model.Material) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO materials (title, description, course_code, course_name, owner_id, file_name, file_key, file_type, file_size)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, downloads, upload_date`,
		m.Title, m.Description, m.CourseCode, m.CourseName, m.OwnerID, m.FileName, m.FileKey, m.FileType, m.FileSize,
	).Scan(&m.ID, &m.Downloads, &m.UploadDate)
	return translate(err)
}

// Update writes the metadata columns of m.
func (r *MaterialRepository) Update(ctx context.Context, m *model.Material) error {
	return affectedOne(r.db.Exec(ctx,
		`UPDATE materials SET title = $1, description = $2, course_code = $3, course_name = $4 WHERE id = $5`,
		m.Title, m.Description, m.CourseCode, m.CourseName, m.ID,
	))
}

// Delete removes a material row.
func (r *MaterialRepository) Delete(ctx context.Context, id int) error {
	return affectedOne(r.db.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id))
}

// IncrementDownloads adds n to the download counter in a single statement.
// A material deleted in the meantime is reported as ErrNotFound.
func (r *MaterialRepository) IncrementDownloads(ctx context.Context, id, n int) error {
	return affectedOne(r.db.Exec(ctx, `UPDATE materials SET downloads = downloads + $1 WHERE id = $2`, n, id))
}
