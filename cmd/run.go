// File: cmd/run.go
package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/meetpilot/internal/browser"
	"github.com/xkilldash9x/meetpilot/internal/classifier"
	"github.com/xkilldash9x/meetpilot/internal/navigator"
	"github.com/xkilldash9x/meetpilot/internal/notify"
	"github.com/xkilldash9x/meetpilot/internal/observability"
	"github.com/xkilldash9x/meetpilot/internal/screen"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a meeting session: create a new meeting, or join one via --link.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := observability.GetLogger()

		sessionID := cfg.Session.UserID
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		logger = logger.With(zap.String("session_id", sessionID))

		cls, err := classifier.NewClassifier(ctx, cfg.Classifier, logger)
		if err != nil {
			return err
		}

		driver, err := browser.NewDriver(ctx, cfg.Browser, logger)
		if err != nil {
			return err
		}

		templates := screen.NewTemplateSet(cfg.Screen.TemplateDir, cfg.Screen.TemplateThreshold, logger)
		controller := navigator.NewController(navigator.Params{
			Config:     cfg.Session,
			SessionID:  sessionID,
			Screen:     screen.NewProvider(driver.Screenshot, logger),
			Classifier: cls,
			Browser:    driver,
			Actor:      screen.NewActor(driver, templates, logger),
			Auth:       browser.NewAuthenticator(driver, cfg.Login, logger),
			Notifier:   notify.NewHTTPNotifier(cfg.Manager, logger),
			Logger:     logger,
		})

		if cfg.Session.Host() {
			logger.Info("No meeting link given, hosting a new meeting.")
		} else {
			logger.Info("Joining meeting.", zap.String("link", cfg.Session.MeetingLink))
		}

		if err := controller.Run(ctx); err != nil {
			return fmt.Errorf("session ended with error: %w", err)
		}
		logger.Info("Session completed.")
		return nil
	},
}

func init() {
	runCmd.Flags().String("link", "", "meeting link to join (empty hosts a new meeting)")
	runCmd.Flags().String("user-id", "", "session identifier reported to the manager")
	runCmd.Flags().Bool("headless", false, "run the browser headless")
	runCmd.Flags().String("callback-url", "", "manager endpoint for progress updates")

	viper.BindPFlag("session.meeting_link", runCmd.Flags().Lookup("link"))
	viper.BindPFlag("session.user_id", runCmd.Flags().Lookup("user-id"))
	viper.BindPFlag("browser.headless", runCmd.Flags().Lookup("headless"))
	viper.BindPFlag("manager.callback_url", runCmd.Flags().Lookup("callback-url"))

	rootCmd.AddCommand(runCmd)
}
