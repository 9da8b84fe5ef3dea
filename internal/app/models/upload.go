package models

import (
	"time"

	"github.com/google/uuid"
)

// Upload is the metadata of a stored file. At most one owner column is set.
type Upload struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	OriginalName string     `json:"originalName" db:"original_name"`
	StoredName   string     `json:"-" db:"stored_name"`
	MimeType     string     `json:"mimeType" db:"mime_type"`
	Size         int64      `json:"size" db:"size"`
	UploaderID   uuid.UUID  `json:"uploaderId" db:"uploader_id"`
	SubmissionID *int64     `json:"-" db:"submission_id"`
	HomeworkID   *int64     `json:"-" db:"homework_id"`
	PostID       *int64     `json:"-" db:"post_id"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	DeletedAt    *time.Time `json:"-" db:"deleted_at"`
}

// URL is the download path of the upload
func (u Upload) URL() string {
	return "/api/v1/files/" + u.ID.String()
}
