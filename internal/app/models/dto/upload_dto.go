package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/classroom/internal/app/models"
)

// UploadResponse describes a stored file
type UploadResponse struct {
	ID           uuid.UUID `json:"id"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	URL          string    `json:"url"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewUploadResponses maps uploads to their public view
func NewUploadResponses(uploads []models.Upload) []UploadResponse {
	out := make([]UploadResponse, 0, len(uploads))
	for _, u := range uploads {
		out = append(out, UploadResponse{
			ID:           u.ID,
			OriginalName: u.OriginalName,
			MimeType:     u.MimeType,
			Size:         u.Size,
			URL:          u.URL(),
			CreatedAt:    u.CreatedAt,
		})
	}
	return out
}
