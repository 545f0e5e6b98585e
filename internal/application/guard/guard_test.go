package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/folio/internal/domain/session"
	"github.com/khoahotran/folio/pkg/logger"
)

type fakeSubscription struct {
	ch     chan *session.Session
	closed chan struct{}
}

func (f *fakeSubscription) Changes() <-chan *session.Session { return f.ch }

func (f *fakeSubscription) Close() error {
	close(f.closed)
	return nil
}

// fakeSource blocks GetSession until release is closed, so the loading
// state can be observed.
type fakeSource struct {
	release  chan struct{}
	sess     *session.Session
	err      error
	watchErr error
	sub      *fakeSubscription
}

func newFakeSource(sess *session.Session, err error) *fakeSource {
	return &fakeSource{
		release: make(chan struct{}),
		sess:    sess,
		err:     err,
		sub:     &fakeSubscription{ch: make(chan *session.Session), closed: make(chan struct{})},
	}
}

func (f *fakeSource) GetSession(ctx context.Context, _ string) (*session.Session, error) {
	select {
	case <-f.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return f.sess, f.err
}

func (f *fakeSource) Watch(context.Context, string) (session.Subscription, error) {
	if f.watchErr != nil {
		return nil, f.watchErr
	}
	return f.sub, nil
}

func liveSession() *session.Session {
	return &session.Session{ID: uuid.New(), ExpiresAt: time.Now().Add(time.Hour)}
}

func runGuard(t *testing.T, src *fakeSource) (*Guard, chan State, context.CancelFunc, chan error) {
	t.Helper()
	g := New(src, "token", logger.NewNop())
	states := make(chan State, 8)
	g.OnChange(func(s State, _ *session.Session) { states <- s })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()
	return g, states, cancel, done
}

func waitState(t *testing.T, states chan State) State {
	t.Helper()
	select {
	case s := <-states:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("guard did not transition")
		return StateLoading
	}
}

func TestGuard_PendingSessionRendersLoading(t *testing.T) {
	src := newFakeSource(liveSession(), nil)
	g, _, cancel, done := runGuard(t, src)
	defer func() { cancel(); <-done }()

	assert.Equal(t, StateLoading, g.State())
	assert.Equal(t, ShowLoading, g.Outcome().Kind)
	assert.Nil(t, g.Session())
}

func TestGuard_PresentSessionRendersChildren(t *testing.T) {
	src := newFakeSource(liveSession(), nil)
	g, states, cancel, done := runGuard(t, src)
	defer func() { cancel(); <-done }()

	close(src.release)
	assert.Equal(t, StateAuthenticated, waitState(t, states))
	assert.Equal(t, Outcome{Kind: ShowChildren}, g.Outcome())
	assert.NotNil(t, g.Session())
}

func TestGuard_AbsentSessionRedirects(t *testing.T) {
	src := newFakeSource(nil, nil)
	g, states, cancel, done := runGuard(t, src)
	defer func() { cancel(); <-done }()

	close(src.release)
	assert.Equal(t, StateUnauthenticated, waitState(t, states))
	assert.Equal(t, Outcome{Kind: ShowRedirect, RedirectTo: LoginPath}, g.Outcome())
}

func TestGuard_LookupErrorRedirects(t *testing.T) {
	src := newFakeSource(liveSession(), errors.New("auth endpoint down"))
	g, states, cancel, done := runGuard(t, src)
	defer func() { cancel(); <-done }()

	close(src.release)
	assert.Equal(t, StateUnauthenticated, waitState(t, states))
	assert.Equal(t, ShowRedirect, g.Outcome().Kind)
}

func TestGuard_WatchErrorEndsUnauthenticated(t *testing.T) {
	src := newFakeSource(liveSession(), nil)
	src.watchErr = errors.New("watch down")
	g, states, cancel, done := runGuard(t, src)
	defer cancel()

	close(src.release)
	assert.Equal(t, StateAuthenticated, waitState(t, states))
	assert.Equal(t, StateUnauthenticated, waitState(t, states))

	select {
	case err := <-done:
		assert.EqualError(t, err, "watch down")
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.Equal(t, ShowRedirect, g.Outcome().Kind)
	assert.Nil(t, g.Session())
}

func TestGuard_FollowsSessionChanges(t *testing.T) {
	src := newFakeSource(liveSession(), nil)
	g, states, cancel, done := runGuard(t, src)
	defer func() { cancel(); <-done }()

	close(src.release)
	require.Equal(t, StateAuthenticated, waitState(t, states))

	src.sub.ch <- nil
	assert.Equal(t, StateUnauthenticated, waitState(t, states))
	assert.Equal(t, ShowRedirect, g.Outcome().Kind)

	src.sub.ch <- liveSession()
	assert.Equal(t, StateAuthenticated, waitState(t, states))
	assert.Equal(t, ShowChildren, g.Outcome().Kind)
}

func TestGuard_ReleasesSubscriptionOnCancel(t *testing.T) {
	src := newFakeSource(nil, nil)
	_, states, cancel, done := runGuard(t, src)

	close(src.release)
	waitState(t, states)
	cancel()

	require.NoError(t, <-done)
	select {
	case <-src.sub.closed:
	case <-time.After(time.Second):
		t.Fatal("subscription was not released")
	}
}

func TestOutcomeFor_NeverChildrenUnlessAuthenticated(t *testing.T) {
	for _, s := range []State{StateLoading, StateUnauthenticated} {
		assert.NotEqual(t, ShowChildren, OutcomeFor(s).Kind, s.String())
	}
	assert.Equal(t, ShowChildren, OutcomeFor(StateAuthenticated).Kind)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNop()

	out, _ := Resolve(ctx, nil, "", log)
	assert.Equal(t, ShowRedirect, out.Kind)

	present := newFakeSource(liveSession(), nil)
	close(present.release)
	out, sess := Resolve(ctx, present, "t", log)
	assert.Equal(t, ShowChildren, out.Kind)
	assert.NotNil(t, sess)

	failing := newFakeSource(nil, errors.New("down"))
	close(failing.release)
	out, sess = Resolve(ctx, failing, "t", log)
	assert.Equal(t, ShowRedirect, out.Kind)
	assert.Nil(t, sess)
}
