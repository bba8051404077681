// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	Browser    BrowserConfig    `mapstructure:"browser" yaml:"browser"`
	Login      LoginConfig      `mapstructure:"login" yaml:"login"`
	Classifier ClassifierConfig `mapstructure:"classifier" yaml:"classifier"`
	Screen     ScreenConfig     `mapstructure:"screen" yaml:"screen"`
	Session    SessionConfig    `mapstructure:"session" yaml:"session"`
	Manager    ManagerConfig    `mapstructure:"manager" yaml:"manager"`
}

// LoggerConfig controls the zap logger setup.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"` // "console" or "json"
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"` // megabytes
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"` // days
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig holds settings for the driven browser instance.
type BrowserConfig struct {
	Headless   bool     `mapstructure:"headless" yaml:"headless"`
	ProfileDir string   `mapstructure:"profile_dir" yaml:"profile_dir"`
	Args       []string `mapstructure:"args" yaml:"args"`
	// Window dimensions double as the screenshot resolution.
	WindowWidth  int `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight int `mapstructure:"window_height" yaml:"window_height"`
}

// LoginConfig drives the credential sign-in flow. Email and password are only
// ever read from the environment, never from the config file.
type LoginConfig struct {
	Email    string `mapstructure:"email" yaml:"-"`
	Password string `mapstructure:"password" yaml:"-"`

	LoginURL string `mapstructure:"login_url" yaml:"login_url"`
	CheckURL string `mapstructure:"check_url" yaml:"check_url"`

	EmailSelector        string `mapstructure:"email_selector" yaml:"email_selector"`
	EmailNextSelector    string `mapstructure:"email_next_selector" yaml:"email_next_selector"`
	PasswordSelector     string `mapstructure:"password_selector" yaml:"password_selector"`
	PasswordNextSelector string `mapstructure:"password_next_selector" yaml:"password_next_selector"`
	LoggedInSelector     string `mapstructure:"logged_in_selector" yaml:"logged_in_selector"`

	StepTimeout time.Duration `mapstructure:"step_timeout" yaml:"step_timeout"`
}

// ClassifierConfig configures the vision inference calls.
type ClassifierConfig struct {
	Model  string `mapstructure:"model" yaml:"model"`
	APIKey string `mapstructure:"api_key" yaml:"-"`

	// StateTemperature is used for the page-state call; ElementTemperature
	// for schema-constrained element detection. DenseTemperature applies to
	// the free-form call on the visually dense in-call screen.
	StateTemperature   float32 `mapstructure:"state_temperature" yaml:"state_temperature"`
	ElementTemperature float32 `mapstructure:"element_temperature" yaml:"element_temperature"`
	DenseTemperature   float32 `mapstructure:"dense_temperature" yaml:"dense_temperature"`

	// Debug dumps classified screenshots with element boxes drawn in.
	Debug    bool   `mapstructure:"debug" yaml:"debug"`
	DebugDir string `mapstructure:"debug_dir" yaml:"debug_dir"`
}

// ScreenConfig configures template-image click fallbacks.
type ScreenConfig struct {
	TemplateDir string `mapstructure:"template_dir" yaml:"template_dir"`
	// TemplateThreshold is the minimum normalized similarity (0..1) for a
	// template to count as located on screen.
	TemplateThreshold float64 `mapstructure:"template_threshold" yaml:"template_threshold"`
}

// SessionConfig holds the navigation retry budgets and in-call thresholds.
type SessionConfig struct {
	// MeetingLink, when set, joins an existing meeting as a guest; when
	// empty the agent hosts a new one.
	MeetingLink string `mapstructure:"meeting_link" yaml:"meeting_link"`
	UserID      string `mapstructure:"user_id" yaml:"user_id"`

	// RestartTries is the global budget shared by landing and join attempts.
	RestartTries int `mapstructure:"restart_tries" yaml:"restart_tries"`
	// Per-state budgets.
	LoginTries            int `mapstructure:"login_tries" yaml:"login_tries"`
	JoinTries             int `mapstructure:"join_tries" yaml:"join_tries"`
	ApprovalTries         int `mapstructure:"approval_tries" yaml:"approval_tries"`
	InMeetingTries        int `mapstructure:"in_meeting_tries" yaml:"in_meeting_tries"`
	GettingReadyTolerance int `mapstructure:"getting_ready_tolerance" yaml:"getting_ready_tolerance"`

	// AloneThreshold is the number of consecutive alone-in-call
	// classifications after which the agent abandons the meeting.
	AloneThreshold int           `mapstructure:"alone_threshold" yaml:"alone_threshold"`
	PollInterval   time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`

	// Confidence gates for resolver-driven clicks (0-100).
	LeaveConfidence       float64 `mapstructure:"leave_confidence" yaml:"leave_confidence"`
	AdmitConfidence       float64 `mapstructure:"admit_confidence" yaml:"admit_confidence"`
	ViewConfidence        float64 `mapstructure:"view_confidence" yaml:"view_confidence"`
	PersonAdmitConfidence float64 `mapstructure:"person_admit_confidence" yaml:"person_admit_confidence"`
	AdmitAllConfidence    float64 `mapstructure:"admit_all_confidence" yaml:"admit_all_confidence"`
}

// Host reports whether this session creates its own meeting.
func (s SessionConfig) Host() bool { return s.MeetingLink == "" }

// ManagerConfig points at the session manager's progress callback.
type ManagerConfig struct {
	// CallbackURL may be empty, in which case progress reporting is disabled.
	CallbackURL string        `mapstructure:"callback_url" yaml:"callback_url"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "meetpilot")
	v.SetDefault("logger.log_file", "meetpilot.log")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.profile_dir", "browser_profiles/meetpilot")
	v.SetDefault("browser.window_width", 1280)
	v.SetDefault("browser.window_height", 800)

	// -- Login --
	v.SetDefault("login.login_url", "https://accounts.google.com/v3/signin/identifier?flowName=GlifWebSignIn&flowEntry=ServiceLogin")
	v.SetDefault("login.check_url", "https://myaccount.google.com/")
	v.SetDefault("login.email_selector", "#identifierId")
	v.SetDefault("login.email_next_selector", "#identifierNext")
	v.SetDefault("login.password_selector", `input[name="Passwd"]`)
	v.SetDefault("login.password_next_selector", "#passwordNext")
	v.SetDefault("login.logged_in_selector", `a[aria-label*="Google Account"]`)
	v.SetDefault("login.step_timeout", "30s")

	// -- Classifier --
	v.SetDefault("classifier.model", "gemini-2.5-flash")
	v.SetDefault("classifier.state_temperature", 0.5)
	v.SetDefault("classifier.element_temperature", 0.2)
	v.SetDefault("classifier.dense_temperature", 0.7)
	v.SetDefault("classifier.debug", false)
	v.SetDefault("classifier.debug_dir", "/tmp/meetpilot_screens")

	// -- Screen --
	v.SetDefault("screen.template_dir", "assets/controls")
	v.SetDefault("screen.template_threshold", 0.65)

	// -- Session --
	v.SetDefault("session.restart_tries", 7)
	v.SetDefault("session.login_tries", 4)
	v.SetDefault("session.join_tries", 5)
	v.SetDefault("session.approval_tries", 7)
	v.SetDefault("session.in_meeting_tries", 3)
	v.SetDefault("session.getting_ready_tolerance", 3)
	v.SetDefault("session.alone_threshold", 120)
	v.SetDefault("session.poll_interval", "1s")
	v.SetDefault("session.leave_confidence", 70.0)
	v.SetDefault("session.admit_confidence", 80.0)
	v.SetDefault("session.view_confidence", 60.0)
	v.SetDefault("session.person_admit_confidence", 66.0)
	v.SetDefault("session.admit_all_confidence", 75.0)

	// -- Manager --
	v.SetDefault("manager.callback_url", "")
	v.SetDefault("manager.timeout", "10s")
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	// Sensitive values come from the environment only.
	v.BindEnv("login.email", "MEETPILOT_GOOGLE_EMAIL")
	v.BindEnv("login.password", "MEETPILOT_GOOGLE_PASSWORD")
	v.BindEnv("classifier.api_key", "GEMINI_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Session.RestartTries <= 0 {
		return fmt.Errorf("session.restart_tries must be a positive integer")
	}
	if c.Session.LoginTries <= 0 {
		return fmt.Errorf("session.login_tries must be a positive integer")
	}
	if c.Session.AloneThreshold <= 0 {
		return fmt.Errorf("session.alone_threshold must be a positive integer")
	}
	if c.Session.PollInterval < 0 {
		return fmt.Errorf("session.poll_interval must not be negative")
	}
	if c.Screen.TemplateThreshold < 0 || c.Screen.TemplateThreshold > 1 {
		return fmt.Errorf("screen.template_threshold must be between 0.0 and 1.0")
	}
	for name, gate := range map[string]float64{
		"leave_confidence":        c.Session.LeaveConfidence,
		"admit_confidence":        c.Session.AdmitConfidence,
		"view_confidence":         c.Session.ViewConfidence,
		"person_admit_confidence": c.Session.PersonAdmitConfidence,
		"admit_all_confidence":    c.Session.AdmitAllConfidence,
	} {
		if gate < 0 || gate > 100 {
			return fmt.Errorf("session.%s must be between 0 and 100", name)
		}
	}
	if c.Browser.WindowWidth <= 0 || c.Browser.WindowHeight <= 0 {
		return fmt.Errorf("browser window dimensions must be positive")
	}
	return nil
}

// NewDefaultConfig returns a configuration populated with defaults only.
// Primarily useful in tests.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}
