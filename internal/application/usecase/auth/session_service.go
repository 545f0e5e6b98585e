package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/folio/internal/domain/session"
	"github.com/khoahotran/folio/internal/domain/user"
	"github.com/khoahotran/folio/pkg/apperror"
	"github.com/khoahotran/folio/pkg/auth"
	"github.com/khoahotran/folio/pkg/logger"
)

var ErrInvalidCredentials = errors.New("email or password is incorrect")

var tracer = otel.Tracer("auth_usecase")

// SessionService signs the owner in and out and answers whether a token
// still names a live session.
type SessionService struct {
	userRepo user.Repository
	store    session.Store
	events   session.Broadcaster
	jwtSvc   *auth.JWTService
	logger   logger.Logger
	now      func() time.Time
}

func NewSessionService(repo user.Repository, store session.Store, events session.Broadcaster, jwtSvc *auth.JWTService, log logger.Logger) *SessionService {
	return &SessionService{
		userRepo: repo,
		store:    store,
		events:   events,
		jwtSvc:   jwtSvc,
		logger:   log,
		now:      time.Now,
	}
}

type SignInInput struct {
	Email    string
	Password string
}

type SignInOutput struct {
	Session *session.Session
}

func (s *SessionService) SignInWithPassword(ctx context.Context, input SignInInput) (*SignInOutput, error) {
	ctx, span := tracer.Start(ctx, "SignInWithPassword")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(input.Email))
	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NewUnauthorized("unknown email", ErrInvalidCredentials)
		}
		return nil, err
	}

	if !auth.CheckPasswordHash(input.Password, u.PasswordHash) {
		err := apperror.NewUnauthorized("incorrect password", ErrInvalidCredentials)
		span.RecordError(err)
		return nil, err
	}

	sessionID := uuid.New()
	token, expiresAt, err := s.jwtSvc.GenerateToken(sessionID, u.ID, u.Email)
	if err != nil {
		s.logger.Error("Failed to generate token", err, zap.String("user_id", u.ID.String()))
		err = apperror.NewInternal("failed to generate token", err)
		span.RecordError(err)
		return nil, err
	}

	sess := session.Session{
		ID:        sessionID,
		OwnerID:   u.ID,
		Email:     u.Email,
		CreatedAt: s.now().UTC(),
		ExpiresAt: expiresAt.UTC(),
	}
	if err := s.store.Save(ctx, sess); err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.announce(ctx, session.EventSignedIn, sessionID)

	span.SetAttributes(attribute.String("user_id", u.ID.String()), attribute.String("session_id", sessionID.String()))
	s.logger.Info("Owner signed in", zap.String("session_id", sessionID.String()))

	sess.Token = token
	return &SignInOutput{Session: &sess}, nil
}

// GetSession returns the live session named by token, or nil if the token is
// malformed, expired or signed out. Only store failures are errors.
func (s *SessionService) GetSession(ctx context.Context, token string) (*session.Session, error) {
	ctx, span := tracer.Start(ctx, "GetSession")
	defer span.End()

	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, nil
	}
	sess, err := s.store.Find(ctx, claims.SessionID())
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if sess == nil || sess.Expired(s.now()) {
		return nil, nil
	}
	sess.Token = token
	return sess, nil
}

// SignOut ends the session named by token. Signing out an unknown or
// already expired session is not an error.
func (s *SessionService) SignOut(ctx context.Context, token string) error {
	ctx, span := tracer.Start(ctx, "SignOut")
	defer span.End()

	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil
	}
	if err := s.store.Delete(ctx, claims.SessionID()); err != nil {
		span.RecordError(err)
		return err
	}
	s.announce(ctx, session.EventSignedOut, claims.SessionID())
	s.logger.Info("Owner signed out", zap.String("session_id", claims.SessionID().String()))
	return nil
}

func (s *SessionService) announce(ctx context.Context, kind session.EventKind, id uuid.UUID) {
	err := s.events.Announce(ctx, session.Event{Kind: kind, SessionID: id, At: s.now().UTC()})
	if err != nil {
		s.logger.Warn("Failed to announce auth event", zap.String("kind", string(kind)), zap.Error(err))
	}
}

// Watch reports every later change of the session named by token: nil
// after sign-out or once it expires. The subscription ends when ctx is
// done or Close is called.
func (s *SessionService) Watch(ctx context.Context, token string) (session.Subscription, error) {
	sub := &watchSubscription{
		changes: make(chan *session.Session, 1),
		done:    make(chan struct{}),
	}

	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		go sub.idle(ctx)
		return sub, nil
	}

	current, err := s.store.Find(ctx, claims.SessionID())
	if err != nil {
		return nil, err
	}
	listener, err := s.events.Listen(ctx, claims.SessionID())
	if err != nil {
		return nil, err
	}

	go sub.loop(ctx, s, listener, claims.SessionID(), token, current)
	return sub, nil
}

type watchSubscription struct {
	changes chan *session.Session
	done    chan struct{}
	once    sync.Once
}

func (w *watchSubscription) Changes() <-chan *session.Session { return w.changes }

func (w *watchSubscription) Close() error {
	w.once.Do(func() { close(w.done) })
	return nil
}

func (w *watchSubscription) idle(ctx context.Context) {
	defer close(w.changes)
	select {
	case <-ctx.Done():
	case <-w.done:
	}
}

func (w *watchSubscription) send(ctx context.Context, s *session.Session) bool {
	select {
	case w.changes <- s:
		return true
	case <-ctx.Done():
	case <-w.done:
	}
	return false
}

func (w *watchSubscription) loop(ctx context.Context, svc *SessionService, listener session.Listener, id uuid.UUID, token string, current *session.Session) {
	defer close(w.changes)
	defer listener.Close()

	var expiry <-chan time.Time
	if current != nil {
		timer := time.NewTimer(current.ExpiresAt.Sub(svc.now()))
		defer timer.Stop()
		expiry = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case <-expiry:
			expiry = nil
			if !w.send(ctx, nil) {
				return
			}
		case e, ok := <-listener.Events():
			if !ok {
				return
			}
			var next *session.Session
			if e.Kind == session.EventSignedIn {
				found, err := svc.store.Find(ctx, id)
				if err != nil {
					svc.logger.Warn("Session lookup failed while watching", zap.Error(err))
				} else if found != nil {
					found.Token = token
					next = found
				}
			}
			if !w.send(ctx, next) {
				return
			}
		}
	}
}
