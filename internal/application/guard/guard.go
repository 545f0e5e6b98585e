// Package guard gates protected admin surfaces behind a live session.
package guard

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/khoahotran/folio/internal/domain/session"
	"github.com/khoahotran/folio/pkg/logger"
)

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/admin/login"

type State int

const (
	StateLoading State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "loading"
	}
}

type OutcomeKind int

const (
	ShowLoading OutcomeKind = iota
	ShowChildren
	ShowRedirect
)

// Outcome is what the guarded surface should render.
type Outcome struct {
	Kind       OutcomeKind
	RedirectTo string
}

func OutcomeFor(s State) Outcome {
	switch s {
	case StateAuthenticated:
		return Outcome{Kind: ShowChildren}
	case StateUnauthenticated:
		return Outcome{Kind: ShowRedirect, RedirectTo: LoginPath}
	default:
		return Outcome{Kind: ShowLoading}
	}
}

type SessionSource interface {
	GetSession(ctx context.Context, token string) (*session.Session, error)
	Watch(ctx context.Context, token string) (session.Subscription, error)
}

type Guard struct {
	source SessionSource
	token  string
	logger logger.Logger

	mu       sync.RWMutex
	state    State
	session  *session.Session
	onChange func(State, *session.Session)
}

func New(source SessionSource, token string, log logger.Logger) *Guard {
	return &Guard{source: source, token: token, logger: log, state: StateLoading}
}

// OnChange registers fn to be called after every state transition. Must be
// called before Run.
func (g *Guard) OnChange(fn func(State, *session.Session)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onChange = fn
}

func (g *Guard) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Session is the current session, nil unless Authenticated.
func (g *Guard) Session() *session.Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session
}

func (g *Guard) Outcome() Outcome {
	return OutcomeFor(g.State())
}

// Run resolves the initial session, then follows session changes until ctx
// is done or the source ends the feed. The feed is always released before
// Run returns. A guard that cannot watch ends Unauthenticated.
func (g *Guard) Run(ctx context.Context) error {
	sess, err := g.source.GetSession(ctx, g.token)
	if err != nil {
		g.logger.Warn("Session lookup failed, treating as signed out", zap.Error(err))
		sess = nil
	}
	g.apply(sess)

	sub, err := g.source.Watch(ctx, g.token)
	if err != nil {
		g.logger.Warn("Session watch failed, treating as signed out", zap.Error(err))
		g.apply(nil)
		return err
	}
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case s, ok := <-sub.Changes():
			if !ok {
				return nil
			}
			g.apply(s)
		}
	}
}

func (g *Guard) apply(s *session.Session) {
	next := StateUnauthenticated
	if s != nil {
		next = StateAuthenticated
	}

	g.mu.Lock()
	changed := next != g.state
	g.state = next
	g.session = s
	fn := g.onChange
	g.mu.Unlock()

	if changed && fn != nil {
		fn(next, s)
	}
}

// Resolve is the one-shot form of the guard used per request. Lookup errors
// resolve to a redirect, like a missing session.
func Resolve(ctx context.Context, source SessionSource, token string, log logger.Logger) (Outcome, *session.Session) {
	if token == "" {
		return OutcomeFor(StateUnauthenticated), nil
	}
	sess, err := source.GetSession(ctx, token)
	if err != nil {
		log.Warn("Session lookup failed, treating as signed out", zap.Error(err))
		return OutcomeFor(StateUnauthenticated), nil
	}
	if sess == nil {
		return OutcomeFor(StateUnauthenticated), nil
	}
	return OutcomeFor(StateAuthenticated), sess
}
