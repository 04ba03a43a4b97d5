// Package websocket streams a match's live feed to spectators.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/matchfund/matchfund-backend/config"
	"github.com/matchfund/matchfund-backend/logger"
	"github.com/matchfund/matchfund-backend/types"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// FeedSubscriber is satisfied by events.Feed.
type FeedSubscriber interface {
	Subscribe(ctx context.Context, matchID, subscriberID string) (<-chan types.FeedMessage, error)
	Unsubscribe(matchID, subscriberID string) error
}

// MatchLookup resolves the match a spectator asks for. Its errors are
// recorded on the gin context, so they should be AppErrors.
type MatchLookup interface {
	GetMatch(ctx context.Context, id string) (*types.Match, error)
}

type Config struct {
	PingInterval time.Duration
	WriteTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		PingInterval: 30 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Handler upgrades spectators of one match and relays its feed.
type Handler struct {
	log            *zap.SugaredLogger
	feed           FeedSubscriber
	matches        MatchLookup
	config         Config
	allowedOrigins []string
	isDevelopment  bool
}

func NewHandler(feed FeedSubscriber, matches MatchLookup, serverCfg *config.ServerConfig, cfg ...Config) *Handler {
	c := DefaultConfig()
	if len(cfg) > 0 {
		c = cfg[0]
	}
	return &Handler{
		log:            logger.GetLogger().Named("live_socket"),
		feed:           feed,
		matches:        matches,
		config:         c,
		allowedOrigins: serverCfg.AllowedOrigins,
		isDevelopment:  serverCfg.Environment == config.EnvDevelopment,
	}
}

func (h *Handler) acceptOptions() *websocket.AcceptOptions {
	opts := &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionContextTakeover,
	}
	if h.isDevelopment || len(h.allowedOrigins) == 0 {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = originPatterns(h.allowedOrigins)
	}
	return opts
}

// originPatterns turns CORS origins into the host patterns Accept matches.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimPrefix(o, "https://")
		o = strings.TrimPrefix(o, "http://")
		patterns = append(patterns, o)
	}
	return patterns
}

// ServerMessage is every frame sent to a spectator.
type ServerMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type clientMessage struct {
	Type string `json:"type"`
}

// LiveFeed godoc
// @Summary Live match feed
// @Description Websocket. Sends a "connected" frame, then one "event" frame per added or removed live action.
// @Tags live-events
// @Param id path string true "Match ID"
// @Success 101 "Switching Protocols"
// @Failure 404 {object} docs.ErrorResponse "Match not found"
// @Router /matches/{id}/live [get]
func (h *Handler) LiveFeed(c *gin.Context) {
	matchID := c.Param("id")
	if _, err := h.matches.GetMatch(c.Request.Context(), matchID); err != nil {
		_ = c.Error(err)
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, h.acceptOptions())
	if err != nil {
		h.log.Warnw("Failed to accept websocket", "matchID", matchID, "error", err)
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	subscriberID := uuid.NewString()
	messages, err := h.feed.Subscribe(ctx, matchID, subscriberID)
	if err != nil {
		h.log.Errorw("Failed to subscribe to live feed", "matchID", matchID, "error", err)
		_ = conn.Close(websocket.StatusInternalError, "subscription failed")
		return
	}
	defer func() {
		if err := h.feed.Unsubscribe(matchID, subscriberID); err != nil {
			h.log.Debugw("Unsubscribe after close", "matchID", matchID, "error", err)
		}
	}()

	if err := h.write(ctx, conn, ServerMessage{
		Type:    "connected",
		Payload: map[string]string{"matchId": matchID, "subscriberId": subscriberID},
	}); err != nil {
		return
	}
	h.log.Infow("Spectator connected", "matchID", matchID, "subscriberID", subscriberID)

	errCh := make(chan error, 3)
	go func() { errCh <- h.readLoop(ctx, conn) }()
	go func() { errCh <- h.writeLoop(ctx, conn, messages) }()
	go func() { errCh <- h.pingLoop(ctx, conn) }()

	err = <-errCh
	switch {
	case err == nil:
		_ = conn.Close(websocket.StatusGoingAway, "feed closed")
	case websocket.CloseStatus(err) == websocket.StatusNormalClosure,
		websocket.CloseStatus(err) == websocket.StatusGoingAway,
		errors.Is(err, context.Canceled):
	default:
		h.log.Warnw("Spectator connection error", "matchID", matchID, "error", err)
	}
}

// readLoop answers client pings; anything else from a spectator is ignored.
func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		var msg clientMessage
		if json.Unmarshal(data, &msg) == nil && msg.Type == "ping" {
			if err := h.write(ctx, conn, ServerMessage{Type: "pong"}); err != nil {
				return err
			}
		}
	}
}

// writeLoop returns nil when the feed closes the subscription.
func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, messages <-chan types.FeedMessage) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if err := h.write(ctx, conn, ServerMessage{Type: "event", Payload: msg}); err != nil {
				return err
			}
		}
	}
}

func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn) error {
	ticker := time.NewTicker(h.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, h.config.WriteTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}

func (h *Handler) write(ctx context.Context, conn *websocket.Conn, msg ServerMessage) error {
	writeCtx, cancel := context.WithTimeout(ctx, h.config.WriteTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, msg)
}
