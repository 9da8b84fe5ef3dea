package services

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	appauth "github.com/yigit/classroom/internal/app/auth"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/app/repositories"
	"github.com/yigit/classroom/internal/app/repositories/memory"
	"github.com/yigit/classroom/internal/pkg/coursecode"
	"github.com/yigit/classroom/internal/pkg/email"
	"github.com/yigit/classroom/internal/pkg/filestorage"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.CourseEvent
}

func (p *recordingPublisher) Publish(event models.CourseEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []models.CourseEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.CourseEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []email.Message
}

func (m *fakeMailer) SendMail(_ context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) messages() []email.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]email.Message(nil), m.sent...)
}

// fixture wires every service over a fresh memory store and a temp storage dir
type fixture struct {
	repos      *repositories.Repositories
	clock      *testClock
	publisher  *recordingPublisher
	mailer     *fakeMailer
	storageDir string

	courses     CourseService
	absences    AbsenceService
	homework    HomeworkService
	submissions SubmissionService
	uploads     UploadService
	posts       PostService
	comments    CommentService
}

var baseTime = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repos:      memory.NewRepositories(),
		clock:      &testClock{t: baseTime},
		publisher:  &recordingPublisher{},
		mailer:     &fakeMailer{},
		storageDir: t.TempDir(),
	}
	storage, err := filestorage.NewLocalStorage(f.storageDir)
	require.NoError(t, err)

	log := zerolog.Nop()
	membership := appauth.NewMembershipService(f.repos.Courses)
	opts := []Option{WithClock(f.clock.now), WithPublisher(f.publisher)}

	f.uploads = NewUploadService(f.repos.Uploads, storage, UploadLimits{MaxFiles: 10, MaxFileSize: 1 << 20}, log, opts...)
	f.courses = NewCourseService(f.repos.Courses, membership, coursecode.NewGenerator(f.repos.Courses), f.mailer, time.Second, log, opts...)
	f.absences = NewAbsenceService(f.repos.Absences, f.repos.Users, membership, log, opts...)
	f.homework = NewHomeworkService(f.repos.Homework, f.uploads, membership, log, opts...)
	f.submissions = NewSubmissionService(f.repos.Submissions, f.repos.Homework, f.repos.Users, f.repos.Courses, f.uploads, membership, log, opts...)
	f.posts = NewPostService(f.repos.Posts, f.uploads, membership, log, opts...)
	f.comments = NewCommentService(f.repos.Comments, f.repos.Posts, membership, log, opts...)
	return f
}

func (f *fixture) user(t *testing.T, name string, typ models.UserType) models.Principal {
	t.Helper()
	u := models.User{FirstName: name, LastName: "Test", Email: name + "@example.com", Type: typ}
	require.NoError(t, f.repos.Users.Create(context.Background(), &u))
	return models.PrincipalFromUser(u)
}

// course creates a course owned by teacher and enrolls the students
func (f *fixture) course(t *testing.T, teacher models.Principal, students ...models.Principal) int64 {
	t.Helper()
	ctx := context.Background()
	code := uuid.NewString()
	c := models.Course{Title: "Course", TeacherID: teacher.ID, CourseCode: &code, StartDate: baseTime}
	require.NoError(t, f.repos.Courses.Create(ctx, &c))
	for _, st := range students {
		_, err := f.repos.Courses.EnrollStudent(ctx, c.ID, st.ID)
		require.NoError(t, err)
	}
	return c.ID
}

func (f *fixture) storedFiles(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(f.storageDir)
	require.NoError(t, err)
	return len(entries)
}
