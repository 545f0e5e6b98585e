package apiclient

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/khoahotran/folio/internal/domain/session"
	"github.com/khoahotran/folio/pkg/apperror"
)

type liveFrame struct {
	Type  string `json:"type"`
	State string `json:"state"`
}

// Watch follows the session over the admin live socket. A rejected
// handshake or a dropped connection reports the session as gone.
func (c *Client) Watch(ctx context.Context, token string) (session.Subscription, error) {
	current, err := c.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}

	sub := &liveSubscription{
		changes: make(chan *session.Session, 1),
		done:    make(chan struct{}),
	}
	if current == nil {
		sub.changes <- nil
		close(sub.changes)
		return sub, nil
	}

	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/api/admin/live"
	header := http.Header{"Authorization": {"Bearer " + token}}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			sub.changes <- nil
			close(sub.changes)
			return sub, nil
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, apperror.NewUpstream("live socket unreachable", err)
	}
	sub.conn = conn

	go sub.loop(current)
	go func() {
		select {
		case <-ctx.Done():
			_ = sub.Close()
		case <-sub.done:
		}
	}()
	return sub, nil
}

type liveSubscription struct {
	conn    *websocket.Conn
	changes chan *session.Session
	done    chan struct{}
	once    sync.Once
}

func (s *liveSubscription) loop(current *session.Session) {
	defer close(s.changes)
	for {
		var f liveFrame
		if err := s.conn.ReadJSON(&f); err != nil {
			s.send(nil)
			return
		}
		if f.Type != "session" {
			continue
		}
		if f.State == "authenticated" {
			s.send(current)
		} else {
			s.send(nil)
		}
	}
}

func (s *liveSubscription) send(v *session.Session) {
	select {
	case s.changes <- v:
	case <-s.done:
	}
}

func (s *liveSubscription) Changes() <-chan *session.Session { return s.changes }

func (s *liveSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		if s.conn != nil {
			err = s.conn.Close()
		}
	})
	return err
}
