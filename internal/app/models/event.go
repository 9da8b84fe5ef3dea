package models

import (
	"time"

	"github.com/google/uuid"
)

// CourseEventType names an activity pushed to connected course members
type CourseEventType string

const (
	EventPostCreated     CourseEventType = "post.created"
	EventCommentCreated  CourseEventType = "comment.created"
	EventHomeworkCreated CourseEventType = "homework.created"
	EventAbsenceCreated  CourseEventType = "absence.created"
)

// CourseEvent is broadcast to the members connected to a course feed
type CourseEvent struct {
	Type      CourseEventType `json:"type"`
	CourseID  int64           `json:"courseId"`
	ActorID   uuid.UUID       `json:"actorId"`
	Payload   interface{}     `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
