// File: internal/notify/notifier_test.go
package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/meetpilot/api/schemas"
	"github.com/xkilldash9x/meetpilot/internal/config"
)

func TestNotify_PostsProgressJSON(t *testing.T) {
	var (
		gotBody        []byte
		gotContentType string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewHTTPNotifier(config.ManagerConfig{CallbackURL: srv.URL, Timeout: 5 * time.Second}, zap.NewNop())
	n.Notify(context.Background(), schemas.Progress{
		SessionID: "s-1",
		Status:    schemas.StatusMeetingReady,
		Link:      "https://meet.google.com/abc-defg-hij",
	})

	require.NotEmpty(t, gotBody)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"session_id":"s-1","status":"meeting_ready","gm_link":"https://meet.google.com/abc-defg-hij"}`, string(gotBody))
}

func TestNotify_OmitsEmptyOptionalFields(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	n := NewHTTPNotifier(config.ManagerConfig{CallbackURL: srv.URL}, zap.NewNop())
	n.Notify(context.Background(), schemas.Progress{SessionID: "s-2", Status: schemas.StatusConnecting})

	assert.JSONEq(t, `{"session_id":"s-2","status":"connecting_to_the_meeting"}`, string(gotBody))
}

func TestNotify_SwallowsServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewHTTPNotifier(config.ManagerConfig{CallbackURL: srv.URL}, zap.NewNop())
	// Must not panic or error out.
	n.Notify(context.Background(), schemas.Progress{Status: schemas.StatusError, Error: "boom"})
}

func TestNotify_SwallowsUnreachableManager(t *testing.T) {
	n := NewHTTPNotifier(config.ManagerConfig{CallbackURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond}, zap.NewNop())
	n.Notify(context.Background(), schemas.Progress{Status: schemas.StatusConnecting})
}

func TestNotify_NoURLIsNoOp(t *testing.T) {
	n := NewHTTPNotifier(config.ManagerConfig{}, zap.NewNop())
	n.Notify(context.Background(), schemas.Progress{Status: schemas.StatusDone})
}
