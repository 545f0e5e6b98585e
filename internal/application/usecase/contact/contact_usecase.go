package contact

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/folio/internal/application/service"
	"github.com/khoahotran/folio/pkg/apperror"
	"github.com/khoahotran/folio/pkg/logger"
)

const maxMessageLength = 5000

type SubmitContactUseCase struct {
	relay   service.ContactRelay
	counter service.RateCounter
	limit   int
	window  time.Duration
	logger  logger.Logger
}

func NewSubmitContactUseCase(relay service.ContactRelay, counter service.RateCounter, limit int, window time.Duration, log logger.Logger) *SubmitContactUseCase {
	return &SubmitContactUseCase{relay: relay, counter: counter, limit: limit, window: window, logger: log}
}

type SubmitContactInput struct {
	ClientIP string
	Name     string
	Email    string
	Subject  string
	Message  string
}

func (in SubmitContactInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperror.NewValidation("Name is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		return apperror.NewValidation("Email is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return apperror.NewValidation("Email is invalid")
	}
	if strings.TrimSpace(in.Message) == "" {
		return apperror.NewValidation("Message is required")
	}
	if len(in.Message) > maxMessageLength {
		return apperror.NewValidation("Message is too long")
	}
	return nil
}

// Execute relays one submission. Nothing is stored locally.
func (uc *SubmitContactUseCase) Execute(ctx context.Context, input SubmitContactInput) error {
	if err := input.validate(); err != nil {
		return err
	}

	if uc.counter != nil && uc.limit > 0 {
		count, err := uc.counter.Hit(ctx, "contact:"+input.ClientIP, uc.window)
		if err != nil {
			uc.logger.Warn("Contact rate counter unavailable", zap.Error(err))
		} else if count > int64(uc.limit) {
			return apperror.NewRateLimited("contact submissions exceeded for " + input.ClientIP)
		}
	}

	err := uc.relay.Relay(ctx, service.ContactMessage{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Subject: strings.TrimSpace(input.Subject),
		Message: strings.TrimSpace(input.Message),
	})
	if err != nil {
		uc.logger.Error("Contact relay failed", err, zap.String("client_ip", input.ClientIP))
		return err
	}
	uc.logger.Info("Contact message relayed", zap.String("client_ip", input.ClientIP))
	return nil
}
