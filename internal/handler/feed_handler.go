package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/daleel/daleel-backend/internal/feed"
	"github.com/daleel/daleel-backend/internal/middleware"
	"github.com/daleel/daleel-backend/internal/response"
	"github.com/daleel/daleel-backend/internal/validator"
	ws "github.com/daleel/daleel-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// FeedSubscriber opens a live stream of a course's material events.
type FeedSubscriber interface {
	Subscribe(ctx context.Context, courseCode string) (*feed.Subscription, error)
}

// FeedHandler streams new materials of a course over WebSocket.
type FeedHandler struct {
	feed     FeedSubscriber
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(sub FeedSubscriber, log zerolog.Logger, allowedOrigins []string) *FeedHandler {
	return &FeedHandler{
		feed:     sub,
		log:      log.With().Str("component", "feed_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// CourseMaterials godoc
// WS /ws/v1/courses/:code/materials?token=...
func (h *FeedHandler) CourseMaterials(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	code := validator.NormalizeCourseCode(c.Param("code"))
	if !validator.IsCourseCode(code) {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"code": "must be a valid course code",
		})
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Subscribe before upgrading so a Redis failure is still an HTTP error.
	sub, err := h.feed.Subscribe(ctx, code)
	if err != nil {
		fail(c, err)
		return
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Int("user_id", user.ID).Str("course_code", code).Logger()
	wsLog.Info().Msg("Feed subscriber connected")

	if err := ws.WriteTyped(conn, ws.SubscribedResponse{Event: ws.EventSubscribed, CourseCode: code}); err != nil {
		return
	}

	replies := make(chan interface{}, 4)
	done := make(chan struct{})
	go h.readLoop(ctx, conn, wsLog, replies, done)

	ticker := time.NewTicker(ws.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			wsLog.Debug().Msg("Feed subscriber disconnected")
			return
		case reply := <-replies:
			if err := ws.WriteTyped(conn, reply); err != nil {
				return
			}
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := ws.WriteTyped(conn, ev); err != nil {
				wsLog.Debug().Err(err).Msg("Event write failed")
				return
			}
		case <-ticker.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}
		}
	}
}

// readLoop handles client frames. All writes stay on the caller's goroutine;
// replies are handed over through the channel.
func (h *FeedHandler) readLoop(ctx context.Context, conn *websocket.Conn, log zerolog.Logger, replies chan<- interface{}, done chan<- struct{}) {
	defer close(done)
	ws.KeepAlive(conn)

	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("Unexpected close")
			}
			return
		}

		var reply interface{}
		switch msg.Action {
		case ws.ActionPing:
			reply = ws.PongResponse{Event: ws.EventPong}
		default:
			reply = ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(msg.Action)}
		}

		select {
		case replies <- reply:
		case <-ctx.Done():
			return
		}
	}
}
