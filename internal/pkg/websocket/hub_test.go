package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/middleware"
)

type fakeMembership map[uuid.UUID]models.Membership

func (f fakeMembership) IsMember(_ context.Context, userID uuid.UUID, _ int64) (models.Membership, error) {
	if m, ok := f[userID]; ok {
		return m, nil
	}
	return models.MembershipNone, nil
}

func newFeedServer(t *testing.T, hub *Hub, members fakeMembership) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewHandler(hub, members, zerolog.Nop())
	r := gin.New()
	r.GET("/courses/:id/ws", func(c *gin.Context) {
		id, err := uuid.Parse(c.Query("as"))
		require.NoError(t, err)
		middleware.SetPrincipal(c, models.Principal{ID: id, Type: models.UserTypeStudent})
		c.Next()
	}, h.HandleConnection)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func feedURL(srv *httptest.Server, courseID string, as uuid.UUID) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/courses/" + courseID + "/ws?as=" + as.String()
}

func TestHub_PublishReachesCourseMembers(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	student := uuid.New()
	srv := newFeedServer(t, hub, fakeMembership{student: models.MembershipStudent})

	conn, _, err := gws.DefaultDialer.Dial(feedURL(srv, "7", student), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.clientsCount(7) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, hub.connected(7, student))

	hub.Publish(models.CourseEvent{Type: models.EventPostCreated, CourseID: 8})
	hub.Publish(models.CourseEvent{Type: models.EventHomeworkCreated, CourseID: 7, ActorID: uuid.New()})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event models.CourseEvent
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, models.EventHomeworkCreated, event.Type)
	assert.Equal(t, int64(7), event.CourseID)
	assert.False(t, event.Timestamp.IsZero())
}

func TestHandler_RejectsNonMembers(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := newFeedServer(t, hub, fakeMembership{})

	_, resp, err := gws.DefaultDialer.Dial(feedURL(srv, "7", uuid.New()), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, resp, err = gws.DefaultDialer.Dial(feedURL(srv, "abc", uuid.New()), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHub_StopClosesClients(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	student := uuid.New()
	srv := newFeedServer(t, hub, fakeMembership{student: models.MembershipTeacher})

	conn, _, err := gws.DefaultDialer.Dial(feedURL(srv, "3", student), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.clientsCount(3) == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, hub.clientsCount(3))
}
