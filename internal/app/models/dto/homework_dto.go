package dto

// CreateHomeworkRequest is bound from a multipart form; files go in "files"
type CreateHomeworkRequest struct {
	CourseID    int64  `form:"courseId" json:"courseId" binding:"required,min=1"`
	Title       string `form:"title" json:"title" binding:"required,max=255"`
	Description string `form:"description" json:"description"`
	Deadline    string `form:"deadline" json:"deadline" binding:"required,dateortime" example:"2026-11-01T23:59:00Z"`
}

// UpdateHomeworkRequest changes any subset of the editable fields
type UpdateHomeworkRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Deadline    *string `json:"deadline" binding:"omitempty,dateortime"`
}
