package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/khoahotran/folio/internal/domain/session"
	"github.com/khoahotran/folio/pkg/apperror"
)

const (
	sessionKeyPrefix     = "session:"
	authEventChanPrefix  = "auth_events:"
	listenerBufferLength = 4
)

type redisSessionStore struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisSessionStore(rdb *redis.Client) session.Store {
	return &redisSessionStore{rdb: rdb, now: time.Now}
}

func (s *redisSessionStore) Save(ctx context.Context, sess session.Session) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return apperror.NewInvalidInput("session already expired", nil)
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return apperror.NewInternal("failed to encode session", err)
	}
	if err := s.rdb.Set(ctx, sessionKeyPrefix+sess.ID.String(), raw, ttl).Err(); err != nil {
		return apperror.NewInternal("failed to store session", err)
	}
	return nil
}

func (s *redisSessionStore) Find(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	raw, err := s.rdb.Get(ctx, sessionKeyPrefix+id.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, apperror.NewInternal("failed to read session", err)
	}
	var sess session.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, apperror.NewInternal("failed to decode session", err)
	}
	if sess.Expired(s.now()) {
		return nil, nil
	}
	return &sess, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.rdb.Del(ctx, sessionKeyPrefix+id.String()).Err(); err != nil {
		return apperror.NewInternal("failed to delete session", err)
	}
	return nil
}

type redisAuthBroadcaster struct {
	rdb *redis.Client
}

func NewRedisAuthBroadcaster(rdb *redis.Client) session.Broadcaster {
	return &redisAuthBroadcaster{rdb: rdb}
}

func (b *redisAuthBroadcaster) Announce(ctx context.Context, e session.Event) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return apperror.NewInternal("failed to encode auth event", err)
	}
	if err := b.rdb.Publish(ctx, authEventChanPrefix+e.SessionID.String(), raw).Err(); err != nil {
		return apperror.NewInternal("failed to publish auth event", err)
	}
	return nil
}

func (b *redisAuthBroadcaster) Listen(ctx context.Context, sessionID uuid.UUID) (session.Listener, error) {
	ps := b.rdb.Subscribe(ctx, authEventChanPrefix+sessionID.String())
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, apperror.NewInternal("failed to subscribe to auth events", err)
	}

	l := &redisAuthListener{ps: ps, events: make(chan session.Event, listenerBufferLength), done: make(chan struct{})}
	go l.loop()
	return l, nil
}

type redisAuthListener struct {
	ps     *redis.PubSub
	events chan session.Event
	done   chan struct{}
	once   sync.Once
}

func (l *redisAuthListener) loop() {
	defer close(l.events)
	for msg := range l.ps.Channel() {
		var e session.Event
		if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
			continue
		}
		select {
		case l.events <- e:
		case <-l.done:
			return
		}
	}
}

func (l *redisAuthListener) Events() <-chan session.Event { return l.events }

func (l *redisAuthListener) Close() error {
	var err error
	l.once.Do(func() {
		close(l.done)
		err = l.ps.Close()
	})
	return err
}
