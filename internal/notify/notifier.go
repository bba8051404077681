// File: internal/notify/notifier.go

// Package notify pushes progress milestones to the session manager. Delivery
// is strictly fire-and-forget: the agent's behaviour never depends on
// whether an update arrived.
package notify

import (
	"bytes"
	"context"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/meetpilot/api/schemas"
	"github.com/xkilldash9x/meetpilot/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// HTTPNotifier implements schemas.ProgressNotifier against a callback URL.
// With an empty URL every Notify is a logged no-op, which keeps standalone
// runs free of manager plumbing.
type HTTPNotifier struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

func NewHTTPNotifier(cfg config.ManagerConfig, logger *zap.Logger) *HTTPNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPNotifier{
		url:    cfg.CallbackURL,
		client: &http.Client{Timeout: timeout},
		logger: logger.Named("notify"),
	}
}

// Notify posts the progress update. All failures are logged and swallowed.
func (n *HTTPNotifier) Notify(ctx context.Context, p schemas.Progress) {
	if n.url == "" {
		n.logger.Debug("Progress update (no callback configured).",
			zap.String("status", string(p.Status)), zap.String("link", p.Link))
		return
	}

	body, err := json.Marshal(p)
	if err != nil {
		n.logger.Warn("Cannot marshal progress update.", zap.Error(err))
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		n.logger.Warn("Cannot build progress request.", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("Progress update delivery failed.",
			zap.String("status", string(p.Status)), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.logger.Warn("Progress update rejected by manager.",
			zap.String("status", string(p.Status)), zap.Int("http_status", resp.StatusCode))
		return
	}
	n.logger.Debug("Progress update delivered.",
		zap.String("status", string(p.Status)), zap.String("session_id", p.SessionID))
}
