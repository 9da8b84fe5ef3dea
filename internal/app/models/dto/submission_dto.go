package dto

// SubmitHomeworkRequest is bound from a multipart form; files go in "files"
type SubmitHomeworkRequest struct {
	HomeworkID int64 `form:"homeworkId" binding:"required,min=1"`
}

// GradeSubmissionRequest sets or replaces a grade
type GradeSubmissionRequest struct {
	Grade    *int    `json:"grade" binding:"required" example:"87"`
	Feedback *string `json:"feedback" binding:"omitempty,max=5000"`
}
