package websocket

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/middleware"
	"github.com/yigit/classroom/internal/pkg/apperrors"
)

// MembershipChecker resolves a user's relation to a course
type MembershipChecker interface {
	IsMember(ctx context.Context, userID uuid.UUID, courseID int64) (models.Membership, error)
}

// Handler upgrades course feed requests
type Handler struct {
	hub        *Hub
	membership MembershipChecker
	logger     zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, membership MembershipChecker, logger zerolog.Logger) *Handler {
	return &Handler{hub: hub, membership: membership, logger: logger}
}

// HandleConnection godoc
// @Summary Subscribe to a course activity feed
// @Description Upgrades to a WebSocket that receives post, comment, homework and absence events of the course
// @Tags courses, websocket
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 101 {string} string "Switching Protocols"
// @Failure 403 {object} dto.ErrorResponse "Not a member of the course"
// @Router /courses/{id}/ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	courseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || courseID <= 0 {
		middleware.HandleAPIError(c, apperrors.NewInvalidArgumentError("Invalid course ID"))
		return
	}

	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.NewUnauthorizedError("Authentication required"))
		return
	}

	membership, err := h.membership.IsMember(c.Request.Context(), principal.ID, courseID)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	if !membership.IsMember() {
		middleware.HandleAPIError(c, apperrors.NewForbiddenError("You are not a member of this course"))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("courseID", courseID).
			Str("userID", principal.ID.String()).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:      h.hub,
		conn:     conn,
		send:     make(chan []byte, 64),
		userID:   principal.ID,
		courseID: courseID,
		logger:   h.logger,
	}
	if !h.hub.attach(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
