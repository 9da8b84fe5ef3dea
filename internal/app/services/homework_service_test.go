package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/app/models/dto"
	"github.com/yigit/classroom/internal/pkg/apperrors"
)

func TestHomeworkService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teacher := f.user(t, "tina", models.UserTypeTeacher)
	other := f.user(t, "otto", models.UserTypeTeacher)
	student := f.user(t, "sam", models.UserTypeStudent)
	outsider := f.user(t, "olga", models.UserTypeStudent)
	courseID := f.course(t, teacher, student)

	req := &dto.CreateHomeworkRequest{CourseID: courseID, Title: "Essay", Deadline: "2026-11-01T23:59:00Z"}
	_, err := f.homework.CreateHomework(ctx, other, req, files(t, "brief.pdf"))
	assertAppError(t, err, apperrors.ErrPermissionDenied, "You are not the teacher of this course")
	assert.Equal(t, 0, f.storedFiles(t))

	hw, err := f.homework.CreateHomework(ctx, teacher, req, files(t, "brief.pdf"))
	require.NoError(t, err)
	assert.Len(t, hw.Attachments, 1)
	assert.Equal(t, 1, f.storedFiles(t))
	assert.Contains(t, f.publisher.types(), models.EventHomeworkCreated)

	title := "Long essay"
	deadline := "2026-11-08"
	updated, err := f.homework.UpdateHomework(ctx, teacher, hw.ID, &dto.UpdateHomeworkRequest{Title: &title, Deadline: &deadline})
	require.NoError(t, err)
	assert.Equal(t, "Long essay", updated.Title)
	assert.Equal(t, time.Date(2026, 11, 8, 0, 0, 0, 0, time.UTC), updated.Deadline)

	_, err = f.homework.UpdateHomework(ctx, other, hw.ID, &dto.UpdateHomeworkRequest{Title: &title})
	assertAppError(t, err, apperrors.ErrPermissionDenied, "")

	got, err := f.homework.GetHomework(ctx, student, hw.ID)
	require.NoError(t, err)
	assert.Equal(t, "Long essay", got.Title)

	_, err = f.homework.GetHomework(ctx, outsider, hw.ID)
	assertAppError(t, err, apperrors.ErrPermissionDenied, "")

	forStudent, err := f.homework.ListMine(ctx, student)
	require.NoError(t, err)
	assert.Len(t, forStudent, 1)

	forTeacher, err := f.homework.ListMine(ctx, teacher)
	require.NoError(t, err)
	assert.Len(t, forTeacher, 1)

	byCourse, err := f.homework.ListByCourse(ctx, student, courseID)
	require.NoError(t, err)
	assert.Len(t, byCourse, 1)

	require.NoError(t, f.homework.DeleteHomework(ctx, teacher, hw.ID))
	_, err = f.homework.GetHomework(ctx, student, hw.ID)
	assertAppError(t, err, apperrors.ErrResourceNotFound, "Homework not found")
}

func TestPostAndCommentServices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	teacher := f.user(t, "tina", models.UserTypeTeacher)
	student := f.user(t, "sam", models.UserTypeStudent)
	outsider := f.user(t, "olga", models.UserTypeStudent)
	courseID := f.course(t, teacher, student)

	_, err := f.posts.CreatePost(ctx, student, courseID, &dto.CreatePostRequest{Content: "hi"}, nil)
	assertAppError(t, err, apperrors.ErrPermissionDenied, "You are not the teacher of this course")

	post, err := f.posts.CreatePost(ctx, teacher, courseID, &dto.CreatePostRequest{Content: "Welcome"}, files(t, "syllabus.pdf"))
	require.NoError(t, err)
	assert.Len(t, post.Attachments, 1)

	comment, err := f.comments.CreateComment(ctx, student, &dto.CreateCommentRequest{PostID: post.ID, Content: "Thanks"})
	require.NoError(t, err)
	require.NotNil(t, comment.Author)
	assert.Equal(t, "sam", comment.Author.FirstName)

	_, err = f.comments.CreateComment(ctx, outsider, &dto.CreateCommentRequest{PostID: post.ID, Content: "Hello?"})
	assertAppError(t, err, apperrors.ErrPermissionDenied, "")

	listed, err := f.comments.ListComments(ctx, teacher, post.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	err = f.comments.DeleteComment(ctx, teacher, comment.ID)
	assertAppError(t, err, apperrors.ErrPermissionDenied, "")
	require.NoError(t, f.comments.DeleteComment(ctx, student, comment.ID))

	posts, err := f.posts.ListPosts(ctx, student, courseID)
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	require.NoError(t, f.posts.DeletePost(ctx, teacher, post.ID))
	_, err = f.posts.GetPost(ctx, student, post.ID)
	assertAppError(t, err, apperrors.ErrResourceNotFound, "Post not found")

	assert.Equal(t, []models.CourseEventType{models.EventPostCreated, models.EventCommentCreated}, f.publisher.types())
}
