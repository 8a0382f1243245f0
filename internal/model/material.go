package model

import "time"

// Material is an uploaded study file attached to a course code.
type Material struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	CourseCode   string    `json:"course_code"`
	CourseName   string    `json:"course_name"`
	OwnerID      int       `json:"owner_id"`
	UploaderName string    `json:"uploader_name"`
	FileName     string    `json:"file_name"`
	FileKey      string    `json:"-"`
	FileType     string    `json:"file_type"`
	FileSize     int64     `json:"file_size"`
	Downloads    int       `json:"downloads"`
	UploadDate   time.Time `json:"upload_date"`
}

// UploadMaterialRequest holds the text fields of a multipart upload.
type UploadMaterialRequest struct {
	Title       string `form:"title" binding:"required,min=3,max=100"`
	Description string `form:"description" binding:"max=500"`
	CourseCode  string `form:"course_code" binding:"required,coursecode"`
	CourseName  string `form:"course_name" binding:"required,max=100"`
}

// UpdateMaterialRequest changes metadata only; the stored file is immutable.
type UpdateMaterialRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=100"`
	Description string `json:"description" binding:"max=500"`
	CourseCode  string `json:"course_code" binding:"required,coursecode"`
	CourseName  string `json:"course_name" binding:"required,max=100"`
}
