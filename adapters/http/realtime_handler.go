package http

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/khoahotran/folio/internal/application/guard"
	"github.com/khoahotran/folio/internal/domain/content"
	"github.com/khoahotran/folio/internal/domain/session"
	"github.com/khoahotran/folio/pkg/apperror"
	"github.com/khoahotran/folio/pkg/logger"
	"github.com/khoahotran/folio/pkg/metrics"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 5 * time.Second

	FrameChange  = "change"
	FrameSession = "session"
)

// Frame is one websocket message sent to realtime clients.
type Frame struct {
	Type     string               `json:"type"`
	Change   *content.ChangeEvent `json:"change,omitempty"`
	State    string               `json:"state,omitempty"`
	Redirect string               `json:"redirect,omitempty"`
}

type RealtimeHandler struct {
	feed     content.Subscriber
	sessions guard.SessionSource
	upgrader websocket.Upgrader
	logger   logger.Logger
}

func NewRealtimeHandler(feed content.Subscriber, sessions guard.SessionSource, allowedOrigins []string, log logger.Logger) *RealtimeHandler {
	h := &RealtimeHandler{feed: feed, sessions: sessions, logger: log.Named("realtime")}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if len(allowedOrigins) == 0 {
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			}
			return slices.Contains(allowedOrigins, origin)
		},
	}
	return h
}

// parseTables reads ?tables=a,b. Empty means every table.
func parseTables(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var out []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !slices.Contains(content.Tables, t) {
			return nil, apperror.NewValidation("unknown table " + t)
		}
		out = append(out, t)
	}
	return out, nil
}

// Stream forwards change events of the requested tables to a public
// client. Clients refetch on every frame.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	tables, err := parseTables(c.Query("tables"))
	if err != nil {
		c.Error(err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Upgrade websocket failed", zap.Error(err))
		return
	}
	defer conn.Close()
	metrics.RealtimeClients.Inc()
	defer metrics.RealtimeClients.Dec()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	log := h.logger.With(zap.String("client_ip", c.ClientIP()))

	sub, err := h.feed.Subscribe(ctx, tables...)
	if err != nil {
		log.Error("Change feed subscribe failed", err)
		writeClose(conn, websocket.CloseInternalServerErr, "subscribe failed")
		return
	}
	defer sub.Close()

	go readLoop(conn, cancel)
	if err := pump(ctx, conn, sub.Events(), nil); err != nil {
		log.Info("Realtime connection closed", zap.Error(err))
	}
}

// Live is the admin socket: it runs a guard over the caller's session and
// forwards change events of every table until the session goes away, then
// sends the redirect and closes.
func (h *RealtimeHandler) Live(c *gin.Context) {
	token := bearerToken(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Upgrade websocket failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sub, err := h.feed.Subscribe(ctx)
	if err != nil {
		h.logger.Error("Change feed subscribe failed", err)
		writeClose(conn, websocket.CloseInternalServerErr, "subscribe failed")
		return
	}
	defer sub.Close()

	// Only the latest state matters, so a pending one is replaced.
	states := make(chan guard.State, 1)
	g := guard.New(h.sessions, token, h.logger)
	g.OnChange(func(s guard.State, _ *session.Session) {
		for {
			select {
			case states <- s:
				return
			default:
				select {
				case <-states:
				default:
				}
			}
		}
	})
	go func() {
		if err := g.Run(ctx); err != nil {
			h.logger.Warn("Session watch failed", zap.Error(err))
			cancel()
		}
	}()

	go readLoop(conn, cancel)
	if err := pump(ctx, conn, sub.Events(), states); err != nil {
		h.logger.Info("Admin live connection closed", zap.Error(err))
	}
}

// pump is the connection's only writer.
func pump(ctx context.Context, conn *websocket.Conn, events <-chan content.ChangeEvent, states <-chan guard.State) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-events:
			if !ok {
				writeClose(conn, websocket.CloseGoingAway, "feed closed")
				return nil
			}
			if err := writeFrame(conn, Frame{Type: FrameChange, Change: &e}); err != nil {
				return err
			}
		case s := <-states:
			out := guard.OutcomeFor(s)
			if err := writeFrame(conn, Frame{Type: FrameSession, State: s.String(), Redirect: out.RedirectTo}); err != nil {
				return err
			}
			if out.Kind == guard.ShowRedirect {
				writeClose(conn, websocket.ClosePolicyViolation, "signed out")
				return nil
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeTimeout)); err != nil {
				return err
			}
		}
	}
}

func writeFrame(conn *websocket.Conn, f Frame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(f)
}

// readLoop discards client messages and cancels once the client goes away.
func readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeClose(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(writeTimeout))
}
