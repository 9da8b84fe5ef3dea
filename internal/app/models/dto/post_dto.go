package dto

// CreatePostRequest is bound from a multipart form; attachments go in "files"
type CreatePostRequest struct {
	Content string `form:"content" json:"content" binding:"required,max=10000"`
}

// CreateCommentRequest comments on a post
type CreateCommentRequest struct {
	PostID  int64  `json:"postId" binding:"required,min=1"`
	Content string `json:"content" binding:"required,max=5000"`
}
