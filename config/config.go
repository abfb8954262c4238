// Package config holds the configuration of a provisioning run.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/goccy/go-yaml"
	"github.com/robfig/cron/v3"
	"github.com/scylladb/go-set/strset"
)

// Config holds the answers to every question the provisioner asks,
// plus a few tunables. Empty answers are prompted for during the run.
type Config struct {
	// Project is the absolute path of the Django project.
	Project string `json:"project" yaml:"project"`

	// ResetPassword pre-answers the password reset question when non-nil.
	ResetPassword *bool `json:"reset_password" yaml:"reset_password"`

	Database Database `json:"database" yaml:"database"`

	// Domain is the bare domain name the site is served on.
	Domain string `json:"domain" yaml:"domain"`

	App           App         `json:"app" yaml:"app"`
	Certificate   Certificate `json:"certificate" yaml:"certificate"`
	PasswordRetry Retry       `json:"password_retry" yaml:"password_retry"`

	// SocketWait bounds how long to wait for the Gunicorn socket.
	SocketWait Duration `json:"socket_wait" yaml:"socket_wait" default:"10000000000"`

	// User is the login name of the invoking user, filled in by Identify.
	User string `json:"-" yaml:"-"`
}

type Database struct {
	Name     string `json:"name" yaml:"name"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
}

// App describes the Django application.
type App struct {
	// Module is the Python package holding settings and wsgi.
	Module string `json:"module" yaml:"module" default:"core"`
	// Settings is the production settings file, relative to the project.
	Settings     string `json:"settings" yaml:"settings" default:"core/settings/prod.py"`
	Workers      int    `json:"workers" yaml:"workers" default:"3"`
	Requirements string `json:"requirements" yaml:"requirements" default:"requirements.txt"`
}

type Certificate struct {
	// Email makes certbot run non-interactively when set.
	Email string `json:"email" yaml:"email"`
	// RenewSchedule is a standard cron expression. When set, a renewal
	// entry is installed in /etc/cron.d.
	RenewSchedule string `json:"renew_schedule" yaml:"renew_schedule"`
}

type Retry struct {
	Delay Duration `json:"delay" yaml:"delay" default:"1000000000"`
	// MaxAttempts bounds the attempts; zero means retry forever.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`
}

// New returns a configuration holding only default values.
func New() *Config {
	cfg := new(Config)
	if err := applyDefaults(cfg); err != nil {
		panic(err)
	}
	return cfg
}

func applyDefaults(cfg *Config) error {
	for _, v := range []interface{}{cfg, &cfg.App, &cfg.PasswordRetry} {
		if err := defaults.Set(v); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the configuration file at path. Files ending in .cue are
// read as CUE; .yaml, .yml and .json files as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

// Parse parses configuration data. The name selects the format as for Load.
func Parse(name string, data []byte) (*Config, error) {
	cfg := new(Config)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".cue":
		j, err := cueToJSON(name, data)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(j, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	case ".yaml", ".yml", ".json":
		if err := yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField()); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported configuration format %q", name, ext)
	}
	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return cfg, nil
}

// Validate checks the values that are already known. Empty answers are
// not errors; they are prompted for later.
func (c *Config) Validate() error {
	if c.Project != "" && !filepath.IsAbs(c.Project) {
		return fmt.Errorf("project %q must be an absolute path", c.Project)
	}
	if filepath.IsAbs(c.App.Settings) || strings.HasPrefix(filepath.Clean(c.App.Settings), "..") {
		return fmt.Errorf("app.settings %q must be relative to the project", c.App.Settings)
	}
	if c.App.Workers <= 0 {
		return fmt.Errorf("app.workers must be positive, got %d", c.App.Workers)
	}
	if c.App.Module == "" {
		return fmt.Errorf("app.module must not be empty")
	}
	if c.Domain != "" {
		if err := ValidateDomain(c.Domain); err != nil {
			return err
		}
	}
	if _, err := c.RenewSchedule(); err != nil {
		return err
	}
	if c.PasswordRetry.MaxAttempts < 0 {
		return fmt.Errorf("password_retry.max_attempts must not be negative")
	}
	return nil
}

// ValidateDomain reports whether domain can be used as a bare host name.
func ValidateDomain(domain string) error {
	if domain == "" {
		return fmt.Errorf("domain must not be empty")
	}
	if strings.Contains(domain, "://") {
		return fmt.Errorf("domain %q must not include a protocol", domain)
	}
	if strings.ContainsAny(domain, "/ \t\r\n;") {
		return fmt.Errorf("domain %q is not a bare host name", domain)
	}
	return nil
}

// renewParser accepts the five-field expressions understood by the
// system cron daemon that reads /etc/cron.d.
var renewParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// cronMacros are the descriptors supported by both cron.Parser and the
// system cron daemon.
var cronMacros = strset.New("@yearly", "@annually", "@monthly", "@weekly", "@daily", "@midnight", "@hourly")

// RenewSchedule parses the certificate renewal schedule. It returns
// nil when no schedule is configured.
func (c *Config) RenewSchedule() (cron.Schedule, error) {
	spec := c.Certificate.RenewSchedule
	if spec == "" {
		return nil, nil
	}
	switch {
	case strings.HasPrefix(spec, "TZ="), strings.HasPrefix(spec, "CRON_TZ="):
		return nil, fmt.Errorf("certificate.renew_schedule: time zone prefix in %q is not supported by cron.d", spec)
	case strings.HasPrefix(spec, "@") && !cronMacros.Has(spec):
		return nil, fmt.Errorf("certificate.renew_schedule: %q is not supported by cron.d", spec)
	}
	s, err := renewParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("certificate.renew_schedule: %w", err)
	}
	return s, nil
}

// SettingsModule returns the dotted Python module of the settings file.
func (c *Config) SettingsModule() string {
	mod := strings.TrimSuffix(filepath.ToSlash(filepath.Clean(c.App.Settings)), ".py")
	return strings.ReplaceAll(mod, "/", ".")
}

// Duration is a time.Duration read from either a duration string
// such as "10s" or a number of nanoseconds.
type Duration time.Duration

// D returns d as a time.Duration.
func (d Duration) D() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d *Duration) parse(s string) error {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(n)
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return d.parse(string(data))
	}
	return d.parse(s)
}

func (d *Duration) UnmarshalYAML(data []byte) error {
	var v interface{}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return err
	}
	if s, ok := v.(string); ok {
		return d.parse(s)
	}
	return d.parse(fmt.Sprint(v))
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}
