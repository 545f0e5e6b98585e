package relay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/folio/internal/application/service"
	"github.com/khoahotran/folio/pkg/apperror"
	"github.com/khoahotran/folio/pkg/logger"
)

const defaultTimeout = 10 * time.Second

type formRelay struct {
	endpoint string
	client   *http.Client
	logger   logger.Logger
}

// NewFormRelay posts contact submissions to a form-to-email endpoint. A nil
// client gets a default with a 10s timeout.
func NewFormRelay(endpoint string, client *http.Client, log logger.Logger) (service.ContactRelay, error) {
	endpoint = strings.TrimSpace(endpoint)
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid contact relay url %q: %w", endpoint, err)
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &formRelay{endpoint: endpoint, client: client, logger: log}, nil
}

func (r *formRelay) Relay(ctx context.Context, msg service.ContactMessage) error {
	form := url.Values{}
	form.Set("name", msg.Name)
	form.Set("email", msg.Email)
	form.Set("subject", msg.Subject)
	form.Set("message", msg.Message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return apperror.NewInternal("build contact relay request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return apperror.NewUpstream("contact relay unreachable", err)
	}
	defer resp.Body.Close()
	// The body carries nothing we use; drain it so the connection is reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 8*1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.logger.Warn("Contact relay rejected submission", zap.Int("status", resp.StatusCode))
		return apperror.NewUpstream(fmt.Sprintf("contact relay status %d", resp.StatusCode), nil)
	}
	return nil
}
