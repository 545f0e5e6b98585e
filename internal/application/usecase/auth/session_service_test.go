package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/folio/internal/domain/session"
	"github.com/khoahotran/folio/internal/domain/user"
	"github.com/khoahotran/folio/pkg/apperror"
	"github.com/khoahotran/folio/pkg/auth"
	"github.com/khoahotran/folio/pkg/logger"
)

type memUsers struct {
	byEmail map[string]*user.User
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*user.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, apperror.NewNotFound("user", email)
}

func (m *memUsers) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperror.NewNotFound("user", id.String())
}

func (m *memUsers) UpsertOwner(_ context.Context, email, hash string) (*user.User, error) {
	u := &user.User{ID: uuid.New(), Email: email, PasswordHash: hash}
	m.byEmail[email] = u
	return u, nil
}

type memStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]session.Session
}

func (m *memStore) Save(_ context.Context, s session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memStore) Find(_ context.Context, id uuid.UUID) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

type memBroadcaster struct {
	mu        sync.Mutex
	listeners map[uuid.UUID][]chan session.Event
}

func (b *memBroadcaster) Announce(_ context.Context, e session.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.listeners[e.SessionID] {
		ch <- e
	}
	return nil
}

func (b *memBroadcaster) Listen(_ context.Context, id uuid.UUID) (session.Listener, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan session.Event, 4)
	b.listeners[id] = append(b.listeners[id], ch)
	return memListener{ch: ch}, nil
}

type memListener struct{ ch chan session.Event }

func (l memListener) Events() <-chan session.Event { return l.ch }
func (l memListener) Close() error                 { return nil }

const ownerEmail = "owner@example.com"

func newTestService(t *testing.T, lifespan time.Duration) (*SessionService, *memStore) {
	t.Helper()
	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)

	users := &memUsers{byEmail: map[string]*user.User{
		ownerEmail: {ID: uuid.New(), Email: ownerEmail, PasswordHash: hash},
	}}
	store := &memStore{sessions: map[uuid.UUID]session.Session{}}
	events := &memBroadcaster{listeners: map[uuid.UUID][]chan session.Event{}}
	jwtSvc := auth.NewJWTService("a-test-secret-of-some-length", lifespan)
	return NewSessionService(users, store, events, jwtSvc, logger.NewNop()), store
}

func TestSignInWithPassword(t *testing.T) {
	svc, store := newTestService(t, time.Hour)
	ctx := context.Background()

	out, err := svc.SignInWithPassword(ctx, SignInInput{Email: " Owner@Example.com ", Password: "correct horse"})
	require.NoError(t, err)
	require.NotNil(t, out.Session)
	assert.NotEmpty(t, out.Session.Token)
	assert.Equal(t, ownerEmail, out.Session.Email)
	assert.Contains(t, store.sessions, out.Session.ID)

	got, err := svc.GetSession(ctx, out.Session.Token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, out.Session.ID, got.ID)
}

func TestSignInWithPassword_BadCredentials(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.SignInWithPassword(ctx, SignInInput{Email: ownerEmail, Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.SignInWithPassword(ctx, SignInInput{Email: "nobody@example.com", Password: "x"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestGetSession_AbsentForGarbageAndSignedOut(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	s, err := svc.GetSession(ctx, "garbage")
	assert.NoError(t, err)
	assert.Nil(t, s)

	out, err := svc.SignInWithPassword(ctx, SignInInput{Email: ownerEmail, Password: "correct horse"})
	require.NoError(t, err)
	require.NoError(t, svc.SignOut(ctx, out.Session.Token))

	s, err = svc.GetSession(ctx, out.Session.Token)
	assert.NoError(t, err)
	assert.Nil(t, s)

	assert.NoError(t, svc.SignOut(ctx, "garbage"))
}

func TestWatch_ReportsSignOut(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out, err := svc.SignInWithPassword(ctx, SignInInput{Email: ownerEmail, Password: "correct horse"})
	require.NoError(t, err)

	sub, err := svc.Watch(ctx, out.Session.Token)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, svc.SignOut(ctx, out.Session.Token))

	select {
	case s := <-sub.Changes():
		assert.Nil(t, s)
	case <-time.After(2 * time.Second):
		t.Fatal("no change after sign-out")
	}
}

func TestWatch_ReportsExpiry(t *testing.T) {
	svc, _ := newTestService(t, 1500*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out, err := svc.SignInWithPassword(ctx, SignInInput{Email: ownerEmail, Password: "correct horse"})
	require.NoError(t, err)

	sub, err := svc.Watch(ctx, out.Session.Token)
	require.NoError(t, err)
	defer sub.Close()

	select {
	case s := <-sub.Changes():
		assert.Nil(t, s)
	case <-time.After(5 * time.Second):
		t.Fatal("no change after expiry")
	}
}

func TestWatch_ClosesChannelOnCancel(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := svc.Watch(ctx, "garbage")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-sub.Changes():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not released")
	}
	assert.NoError(t, sub.Close())
}
