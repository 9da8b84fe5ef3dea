package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is an announcement by the course teacher
type Post struct {
	ID          int64      `json:"id" db:"id"`
	CourseID    int64      `json:"courseId" db:"course_id"`
	AuthorID    uuid.UUID  `json:"authorId" db:"author_id"`
	Content     string     `json:"content" db:"content"`
	Attachments []Upload   `json:"attachments"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	DeletedAt   *time.Time `json:"-" db:"deleted_at"`
}

// Comment on a post by any course member
type Comment struct {
	ID        int64        `json:"id" db:"id"`
	PostID    int64        `json:"postId" db:"post_id"`
	AuthorID  uuid.UUID    `json:"authorId" db:"author_id"`
	Content   string       `json:"content" db:"content"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
	DeletedAt *time.Time   `json:"-" db:"deleted_at"`
	Author    *UserSummary `json:"author,omitempty"`
}
