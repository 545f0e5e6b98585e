package persistence

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/folio/internal/domain/content"
	"github.com/khoahotran/folio/pkg/apperror"
	"github.com/khoahotran/folio/pkg/logger"
)

const (
	changeChanPrefix  = "content_changes:"
	changeBufferSize  = 32
	reconnectCooldown = time.Second
)

// ChangeChannel is the Redis pub/sub channel carrying change events of table.
func ChangeChannel(table string) string {
	return changeChanPrefix + table
}

type redisChangeFeed struct {
	rdb    *redis.Client
	logger logger.Logger
}

// NewRedisChangeFeed returns the realtime channel: a publisher for the
// server's writes and a subscriber for views and websocket clients.
func NewRedisChangeFeed(rdb *redis.Client, log logger.Logger) *redisChangeFeed {
	return &redisChangeFeed{rdb: rdb, logger: log.Named("change_feed")}
}

func (f *redisChangeFeed) Publish(ctx context.Context, e content.ChangeEvent) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return apperror.NewInternal("failed to encode change event", err)
	}
	if err := f.rdb.Publish(ctx, ChangeChannel(e.Table), raw).Err(); err != nil {
		return apperror.NewInternal("failed to publish change event", err)
	}
	return nil
}

// Subscribe listens on every given table, or all content tables if none
// are given. After the connection is re-established a RELOAD event is
// emitted for each table, since notifications may have been missed.
func (f *redisChangeFeed) Subscribe(ctx context.Context, tables ...string) (content.Subscription, error) {
	if len(tables) == 0 {
		tables = content.Tables
	}
	channels := make([]string, len(tables))
	for i, t := range tables {
		channels[i] = ChangeChannel(t)
	}

	ps := f.rdb.Subscribe(ctx, channels...)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, apperror.NewInternal("failed to subscribe to change feed", err)
	}

	sub := &redisChangeSubscription{
		ps:     ps,
		events: make(chan content.ChangeEvent, changeBufferSize),
		done:   make(chan struct{}),
		logger: f.logger.With(zap.Strings("tables", tables)),
	}
	go sub.loop(len(channels))
	return sub, nil
}

type redisChangeSubscription struct {
	ps     *redis.PubSub
	events chan content.ChangeEvent
	done   chan struct{}
	once   sync.Once
	logger logger.Logger
}

func (s *redisChangeSubscription) loop(channelCount int) {
	defer close(s.events)

	// The first Receive in Subscribe consumed one confirmation.
	pendingConfirms := channelCount - 1
	ctx := context.Background()

	for {
		msg, err := s.ps.Receive(ctx)
		if err != nil {
			if s.closed() {
				return
			}
			s.logger.Warn("Change feed receive failed, will reconnect", zap.Error(err))
			select {
			case <-s.done:
				return
			case <-time.After(reconnectCooldown):
			}
			continue
		}

		switch m := msg.(type) {
		case *redis.Subscription:
			if m.Kind != "subscribe" {
				continue
			}
			if pendingConfirms > 0 {
				pendingConfirms--
				continue
			}
			s.logger.Info("Change feed resubscribed, triggering reload", zap.String("channel", m.Channel))
			s.emit(content.ChangeEvent{
				Table:     strings.TrimPrefix(m.Channel, changeChanPrefix),
				Operation: content.OpReload,
				At:        time.Now().UTC(),
			})
		case *redis.Message:
			var e content.ChangeEvent
			if err := json.Unmarshal([]byte(m.Payload), &e); err != nil {
				s.logger.Warn("Dropping malformed change event", zap.String("channel", m.Channel), zap.Error(err))
				continue
			}
			s.emit(e)
		}
	}
}

func (s *redisChangeSubscription) emit(e content.ChangeEvent) {
	select {
	case s.events <- e:
	case <-s.done:
	}
}

func (s *redisChangeSubscription) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *redisChangeSubscription) Events() <-chan content.ChangeEvent { return s.events }

func (s *redisChangeSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}
