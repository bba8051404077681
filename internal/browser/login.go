// File: internal/browser/login.go
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/meetpilot/internal/config"
)

// Authenticator runs the selector-driven Google credential flow on top of a
// Driver. This is the only place the agent touches the DOM; once a session
// cookie exists everything else is done visually.
type Authenticator struct {
	driver *Driver
	cfg    config.LoginConfig
	logger *zap.Logger
}

func NewAuthenticator(driver *Driver, cfg config.LoginConfig, logger *zap.Logger) *Authenticator {
	return &Authenticator{driver: driver, cfg: cfg, logger: logger.Named("login")}
}

// IsLoggedIn checks for an authenticated session by loading the account page
// and looking for the signed-in account element.
func (a *Authenticator) IsLoggedIn(ctx context.Context) bool {
	if err := a.driver.Navigate(ctx, a.cfg.CheckURL); err != nil {
		a.logger.Warn("Login check navigation failed.", zap.Error(err))
		return false
	}
	stepCtx, cancel := context.WithTimeout(ctx, a.stepTimeout())
	defer cancel()

	err := a.driver.run(stepCtx, chromedp.WaitVisible(a.cfg.LoggedInSelector, chromedp.ByQuery))
	if err != nil {
		a.logger.Debug("No signed-in account element found.", zap.Error(err))
		return false
	}
	return true
}

// Login performs the two-step email then password sign-in.
func (a *Authenticator) Login(ctx context.Context) error {
	if a.cfg.Email == "" || a.cfg.Password == "" {
		return fmt.Errorf("login: credentials are not set (MEETPILOT_GOOGLE_EMAIL / MEETPILOT_GOOGLE_PASSWORD)")
	}
	a.logger.Info("Starting credential sign-in.")

	if err := a.driver.Navigate(ctx, a.cfg.LoginURL); err != nil {
		return err
	}

	steps := []struct {
		name   string
		action chromedp.Action
	}{
		{"wait email field", chromedp.WaitVisible(a.cfg.EmailSelector, chromedp.ByQuery)},
		{"enter email", chromedp.SendKeys(a.cfg.EmailSelector, a.cfg.Email, chromedp.ByQuery)},
		{"submit email", chromedp.Click(a.cfg.EmailNextSelector, chromedp.ByQuery)},
		{"wait password field", chromedp.WaitVisible(a.cfg.PasswordSelector, chromedp.ByQuery)},
		// Google animates the password panel in; typing too early drops keys.
		{"settle", chromedp.Sleep(1500 * time.Millisecond)},
		{"enter password", chromedp.SendKeys(a.cfg.PasswordSelector, a.cfg.Password, chromedp.ByQuery)},
		{"submit password", chromedp.Click(a.cfg.PasswordNextSelector, chromedp.ByQuery)},
	}
	for _, step := range steps {
		stepCtx, cancel := context.WithTimeout(ctx, a.stepTimeout())
		err := a.driver.run(stepCtx, step.action)
		cancel()
		if err != nil {
			return fmt.Errorf("login: step %q failed: %w", step.name, err)
		}
		a.logger.Debug("Login step completed.", zap.String("step", step.name))
	}

	if !a.IsLoggedIn(ctx) {
		return fmt.Errorf("login: flow completed but no authenticated session detected")
	}
	a.logger.Info("Credential sign-in succeeded.")
	return nil
}

// EnsureLoggedIn signs in only when no session is present yet.
func (a *Authenticator) EnsureLoggedIn(ctx context.Context) error {
	if a.IsLoggedIn(ctx) {
		a.logger.Info("Existing session found, skipping sign-in.")
		return nil
	}
	return a.Login(ctx)
}

func (a *Authenticator) stepTimeout() time.Duration {
	if a.cfg.StepTimeout > 0 {
		return a.cfg.StepTimeout
	}
	return 30 * time.Second
}
