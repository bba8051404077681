// File: internal/navigator/controller.go

// Package navigator sequences the agent through the Meet UI: sign-in,
// landing, meeting creation or join, permission prompts and the in-call
// monitor. Every decision is taken from a fresh screenshot classification;
// there is no DOM inspection and no ground truth that a click worked, so
// each state re-observes and re-decides under a bounded retry budget.
package navigator

import (
	"context"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/meetpilot/api/schemas"
	"github.com/xkilldash9x/meetpilot/internal/config"
	"github.com/xkilldash9x/meetpilot/internal/screen"
	"github.com/xkilldash9x/meetpilot/internal/vision"
)

const meetLandingURL = "https://meet.google.com/"

// Page settle times, matching how long each screen takes to stop animating.
const (
	landingSettle   = 2 * time.Second
	joinSettle      = 1 * time.Second
	createSettle    = 1500 * time.Millisecond
	permitSettle    = 2 * time.Second
	inMeetingSettle = 3 * time.Second
	retrySettle     = 2 * time.Second
	approvalSettle  = 3 * time.Second
)

// promoDismissPoint is a neutral spot clicked once on call entry to dismiss
// the Gemini promo overlay Meet shows to fresh profiles.
var promoDismissPoint = image.Pt(640, 280)

// AuthFlow is the credential sign-in collaborator the login state drives.
type AuthFlow interface {
	EnsureLoggedIn(ctx context.Context) error
}

// Params wires a Controller. All dependencies are injected; the controller
// owns no process state beyond its navContext.
type Params struct {
	Config    config.SessionConfig
	SessionID string

	Screen     schemas.ScreenProvider
	Classifier schemas.VisionClassifier
	Browser    schemas.BrowserHandle
	Actor      *screen.Actor
	Auth       AuthFlow
	Notifier   schemas.ProgressNotifier
	Leave      *LeaveSignal
	Logger     *zap.Logger
}

// Controller runs the navigation state machine as an explicit trampoline:
// each state computes its successor and returns, so arbitrarily long retry
// chains never grow the stack.
type Controller struct {
	cfg       config.SessionConfig
	sessionID string

	screenProvider schemas.ScreenProvider
	classifier     schemas.VisionClassifier
	browser        schemas.BrowserHandle
	actor          *screen.Actor
	auth           AuthFlow
	notifier       schemas.ProgressNotifier
	leave          *LeaveSignal
	logger         *zap.Logger

	nav navContext

	// Latest observation. Refreshed by observe, consumed by the state logic
	// of the step that produced it.
	cur     *schemas.Classification
	lastImg image.Image

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewController(p Params) *Controller {
	leave := p.Leave
	if leave == nil {
		leave = NewLeaveSignal()
	}
	return &Controller{
		cfg:            p.Config,
		sessionID:      p.SessionID,
		screenProvider: p.Screen,
		classifier:     p.Classifier,
		browser:        p.Browser,
		actor:          p.Actor,
		auth:           p.Auth,
		notifier:       p.Notifier,
		leave:          leave,
		logger:         p.Logger.Named("navigator"),
		nav: navContext{
			restartTries:   p.Config.RestartTries,
			loginTries:     p.Config.LoginTries,
			approvalTries:  p.Config.ApprovalTries,
			inMeetingTries: p.Config.InMeetingTries,
			link:           p.Config.MeetingLink,
			host:           p.Config.Host(),
		},
		sleep: sleepCtx,
	}
}

// Leave returns the signal external tasks use to request leaving the call.
func (c *Controller) Leave() *LeaveSignal { return c.leave }

// Run drives the machine from its initial state to Stop. The returned error
// is non-nil when the session ended on a failure path; the final status has
// already been pushed to the notifier either way.
func (c *Controller) Run(ctx context.Context) error {
	var start stateID
	if c.nav.host {
		c.notify(ctx, schemas.StatusNewMeetingStarting, "")
		start = stateLanding
	} else {
		c.notify(ctx, schemas.StatusConnecting, "")
		start = stateJoinMeeting
	}

	for st := start; st != stateStop; {
		c.nav.record(st)
		next, err := c.step(ctx, st)
		if err != nil {
			// Classification and context failures are fatal by design; no
			// local retry.
			c.nav.errMsg = err.Error()
			break
		}
		if next != st {
			c.logger.Info("State transition.",
				zap.Stringer("from", st), zap.Stringer("to", next))
		}
		st = next
	}
	return c.stop(ctx)
}

func (c *Controller) step(ctx context.Context, st stateID) (stateID, error) {
	switch st {
	case stateLanding:
		return c.enterLanding(ctx)
	case stateLogin:
		return c.enterLogin(ctx)
	case stateCreateMeeting:
		return c.enterCreateMeeting(ctx)
	case stateJoinMeeting:
		return c.enterJoinMeeting(ctx)
	case stateAwaitApproval:
		return c.enterAwaitApproval(ctx)
	case statePermitMic:
		return c.enterPermitMicrophone(ctx)
	case stateInMeeting:
		return c.enterInMeeting(ctx)
	case stateInCall:
		return c.enterInCall(ctx)
	default:
		return stateStop, fmt.Errorf("no behavior for state %s", st)
	}
}

// observe grabs one screenshot and classifies it. This is the single
// suspension point of the state machine; no two classifications are ever in
// flight for one session.
func (c *Controller) observe(ctx context.Context) error {
	img, w, h, err := c.screenProvider.Capture(ctx)
	if err != nil {
		return err
	}
	cls, err := c.classifier.Classify(ctx, img, w, h)
	if err != nil {
		return err
	}
	c.cur = cls
	c.lastImg = img
	c.logger.Debug("Observation.",
		zap.String("state", string(cls.State)),
		zap.Bool("logged_in", cls.LoggedIn),
		zap.Int("elements", len(cls.Elements)))
	return nil
}

// clickExact resolves the label against the current observation and clicks
// only on an exact (confidence 100) match.
func (c *Controller) clickExact(ctx context.Context, label string, aliases ...string) bool {
	m := vision.NewResolver(c.cur.Elements).Find(label, aliases...)
	if m.Confidence != 100.0 {
		return false
	}
	return c.actor.ClickMatch(ctx, m)
}

func (c *Controller) enterLanding(ctx context.Context) (stateID, error) {
	if c.nav.restartTries <= 0 {
		return c.nav.fail(fmt.Sprintf("%v: too many attempts to reach the dashboard", ErrRetryBudgetExhausted)), nil
	}
	c.nav.restartTries--

	if err := c.browser.Navigate(ctx, meetLandingURL); err != nil {
		return stateStop, err
	}
	if err := c.sleep(ctx, landingSettle); err != nil {
		return stateStop, err
	}
	if err := c.observe(ctx); err != nil {
		return stateStop, err
	}

	switch {
	case c.cur.State == schemas.StateInitialPage && c.cur.LoggedIn:
		if c.nav.link != "" {
			return stateJoinMeeting, nil
		}
		if c.clickExact(ctx, schemas.ControlNewMeeting) {
			return stateCreateMeeting, nil
		}
		c.logger.Warn("Dashboard without a new-meeting control, reloading.")
		return stateLanding, nil
	case !c.cur.LoggedIn:
		return stateLogin, nil
	default:
		return stateLanding, nil
	}
}

func (c *Controller) enterLogin(ctx context.Context) (stateID, error) {
	if c.nav.loginTries <= 0 {
		return c.nav.fail(fmt.Sprintf("%v: cannot sign in", ErrRetryBudgetExhausted)), nil
	}
	c.nav.loginTries--

	if c.auth == nil {
		return c.nav.fail("sign-in required but no credential flow is configured"), nil
	}
	if err := c.auth.EnsureLoggedIn(ctx); err != nil {
		c.logger.Warn("Credential sign-in attempt failed.", zap.Error(err))
	}
	if err := c.observe(ctx); err != nil {
		return stateStop, err
	}

	switch c.cur.State {
	case schemas.StateWorkspacePopup, schemas.StateSignInToChrome:
		// Chrome profile dialogs after sign-in; dismiss and move on. Some
		// variants offer only a continue button instead of cancel.
		if !c.clickExact(ctx, schemas.ControlCancel) && !c.clickExact(ctx, schemas.ControlContinue) {
			return c.nav.fail(fmt.Sprintf("cannot dismiss %s after sign-in", c.cur.State)), nil
		}
		return c.afterLogin(), nil
	}
	if !c.cur.LoggedIn {
		if err := c.sleep(ctx, retrySettle); err != nil {
			return stateStop, err
		}
		return stateLogin, nil
	}
	return c.afterLogin(), nil
}

func (c *Controller) afterLogin() stateID {
	if c.nav.link != "" {
		return stateJoinMeeting
	}
	return stateLanding
}

func (c *Controller) enterCreateMeeting(ctx context.Context) (stateID, error) {
	if err := c.sleep(ctx, createSettle); err != nil {
		return stateStop, err
	}
	if err := c.observe(ctx); err != nil {
		return stateStop, err
	}
	if c.cur.State == schemas.StateInitialPage && c.cur.LoggedIn {
		if c.clickExact(ctx, schemas.ControlStartInstantMeeting) {
			return stateInMeeting, nil
		}
	}
	return stateLanding, nil
}

func (c *Controller) enterJoinMeeting(ctx context.Context) (stateID, error) {
	if c.nav.restartTries <= 0 {
		return c.nav.fail(fmt.Sprintf("%v: too many attempts to join the meeting", ErrRetryBudgetExhausted)), nil
	}
	c.nav.restartTries--

	if err := c.browser.Navigate(ctx, c.nav.link); err != nil {
		return stateStop, err
	}
	if err := c.sleep(ctx, joinSettle); err != nil {
		return stateStop, err
	}
	if err := c.observe(ctx); err != nil {
		return stateStop, err
	}

	switch {
	case c.cur.State == schemas.StateConnectionPage && c.cur.LoggedIn:
		if c.clickExact(ctx, schemas.ControlJoinMeeting) {
			return stateAwaitApproval, nil
		}
		c.logger.Warn("Pre-join page without a join control, retrying.")
		return stateJoinMeeting, nil
	case c.cur.State == schemas.StateAllowMicrophone:
		return statePermitMic, nil
	case c.cur.State == schemas.StateGettingReady && c.cur.LoggedIn:
		if c.nav.joinGettingReady < c.cfg.JoinTries {
			c.nav.joinGettingReady++
			if err := c.sleep(ctx, retrySettle); err != nil {
				return stateStop, err
			}
			return stateJoinMeeting, nil
		}
		c.logger.Warn("Stuck on the green room while joining, returning to the landing page.")
		return stateLanding, nil
	case !c.cur.LoggedIn:
		return stateLogin, nil
	default:
		c.logger.Warn("No transition for page while joining, retrying.",
			zap.String("state", string(c.cur.State)))
		return stateJoinMeeting, nil
	}
}

func (c *Controller) enterAwaitApproval(ctx context.Context) (stateID, error) {
	if !c.nav.notifiedWaiting {
		c.nav.notifiedWaiting = true
		c.notify(ctx, schemas.StatusWaitingForApproval, "")
	}
	if c.nav.approvalTries <= 0 {
		return c.nav.fail(fmt.Sprintf("%v: host never admitted us", ErrRetryBudgetExhausted)), nil
	}
	if err := c.observe(ctx); err != nil {
		return stateStop, err
	}

	switch c.cur.State {
	case schemas.StateAwaitingApproval, schemas.StateConnectionPage:
		c.nav.approvalTries--
		if err := c.sleep(ctx, approvalSettle); err != nil {
			return stateStop, err
		}
		return stateAwaitApproval, nil
	case schemas.StateAllowMicrophone:
		return statePermitMic, nil
	case schemas.StateLoadingCall:
		if err := c.sleep(ctx, retrySettle); err != nil {
			return stateStop, err
		}
		return stateInMeeting, nil
	case schemas.StateMeetingPage:
		return stateInMeeting, nil
	default:
		c.nav.approvalTries--
		c.logger.Warn("Unexpected page while awaiting approval.",
			zap.String("state", string(c.cur.State)))
		return stateAwaitApproval, nil
	}
}

func (c *Controller) enterPermitMicrophone(ctx context.Context) (stateID, error) {
	if err := c.sleep(ctx, permitSettle); err != nil {
		return stateStop, err
	}
	if err := c.observe(ctx); err != nil {
		return stateStop, err
	}

	if c.cur.State == schemas.StateAllowMicrophone {
		if c.clickExact(ctx, schemas.ControlUseMicAndCamera) ||
			c.clickExact(ctx, schemas.ControlAllowWhileVisiting) {
			// Re-enter until the permission screen stops classifying.
			return statePermitMic, nil
		}
		return stateLanding, nil
	}
	if c.nav.link != "" {
		return stateJoinMeeting, nil
	}
	return stateInMeeting, nil
}

func (c *Controller) enterInMeeting(ctx context.Context) (stateID, error) {
	if err := c.sleep(ctx, inMeetingSettle); err != nil {
		return stateStop, err
	}
	if err := c.observe(ctx); err != nil {
		return stateStop, err
	}

	switch c.cur.State {
	case schemas.StateMeetingPage:
		return stateInCall, nil
	case schemas.StateGettingReady, schemas.StateLoadingCall:
		if c.nav.inMeetingTries > 0 {
			c.nav.inMeetingTries--
			if err := c.sleep(ctx, retrySettle); err != nil {
				return stateStop, err
			}
			return stateInMeeting, nil
		}
		return c.nav.fail(fmt.Sprintf("%v: call never reached the active state (last seen %s)",
			ErrRetryBudgetExhausted, c.cur.State)), nil
	case schemas.StateAllowMicrophone:
		return statePermitMic, nil
	default:
		return stateLanding, nil
	}
}

// enterInCall marks the meeting as reachable, dismisses the promo overlay
// and hands over to the monitor loop. The monitor only returns when the
// session is over.
func (c *Controller) enterInCall(ctx context.Context) (stateID, error) {
	if url, err := c.browser.CurrentURL(ctx); err == nil && url != "" {
		c.nav.link = url
	}
	c.notify(ctx, schemas.StatusMeetingReady, c.nav.link)

	c.actor.ClickPoint(ctx, promoDismissPoint.X, promoDismissPoint.Y)

	if err := c.monitorCall(ctx); err != nil {
		c.nav.errMsg = err.Error()
	}
	return stateStop, nil
}

// stop is the terminal state: report final status, release the browser,
// end the session.
func (c *Controller) stop(ctx context.Context) error {
	c.logger.Info("Session finished.",
		zap.String("error", c.nav.errMsg),
		zap.Stringers("history", c.nav.history))

	var runErr error
	if c.nav.errMsg != "" {
		runErr = fmt.Errorf("navigator: %s", c.nav.errMsg)
		c.notifyError(ctx, c.nav.errMsg)
	} else {
		c.notify(ctx, schemas.StatusDone, c.nav.link)
	}
	if err := c.browser.Close(); err != nil {
		c.logger.Warn("Browser close failed.", zap.Error(err))
	}
	return runErr
}

func (c *Controller) notify(ctx context.Context, status schemas.Status, link string) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(ctx, schemas.Progress{
		SessionID: c.sessionID,
		Status:    status,
		Link:      link,
	})
}

func (c *Controller) notifyError(ctx context.Context, msg string) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(ctx, schemas.Progress{
		SessionID: c.sessionID,
		Status:    schemas.StatusError,
		Error:     msg,
	})
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
