package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mkarlsen/planvault/internal/security"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Plan     PlanConfig        `yaml:"plan"`
	SQLite   SQLiteConfig      `yaml:"sqlite"`
	Security SecurityConfig    `yaml:"security"`
	Auth     AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Plan.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Security.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// PlanConfig holds the path to the managed plan directory.
type PlanConfig struct {
	Dir string `yaml:"dir"`
}

// Validate validates the plan configuration.
func (c *PlanConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// SQLiteConfig holds the search index database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SecurityConfig optionally overrides the validation policy limits.
// Zero values fall back to the built-in defaults.
type SecurityConfig struct {
	MaxFileSize       int64    `yaml:"max_file_size"`
	MaxContentLength  int      `yaml:"max_content_length"`
	MaxFilenameLength int      `yaml:"max_filename_length"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
}

// Validate validates the security configuration.
func (c *SecurityConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxFileSize, validation.Min(int64(0))),
		validation.Field(&c.MaxContentLength, validation.Min(0)),
		validation.Field(&c.MaxFilenameLength, validation.Min(0)),
	)
}

// Policy resolves the effective validation policy.
func (c *SecurityConfig) Policy() security.Policy {
	p := security.DefaultPolicy()
	if c.MaxFileSize > 0 {
		p.MaxFileSize = c.MaxFileSize
	}
	if c.MaxContentLength > 0 {
		p.MaxContentLength = c.MaxContentLength
	}
	if c.MaxFilenameLength > 0 {
		p.MaxFilenameLength = c.MaxFilenameLength
	}
	if len(c.AllowedExtensions) > 0 {
		p.AllowedExtensions = c.AllowedExtensions
	}
	return p
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Plan: PlanConfig{
			Dir: "./project_plan",
		},
		SQLite: SQLiteConfig{
			Path: "./planvault.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
