package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// LookupFunc resolves a variable name. It has the shape of os.LookupEnv.
type LookupFunc func(name string) (string, bool)

// Load reads configuration from the process environment, applies defaults
// and validates the result.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom is Load with an explicit variable source. Every malformed or
// missing variable is reported, not just the first.
func LoadFrom(lookup LookupFunc) (*Config, error) {
	cfg := &Config{}

	l := loader{lookup: lookup}
	l.walk(reflect.ValueOf(cfg).Elem())
	if err := errors.Join(l.errs...); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

type loader struct {
	lookup LookupFunc
	errs   []error
}

var durationType = reflect.TypeOf(time.Duration(0))

// walk fills tagged fields of v, descending into nested structs.
func (l *loader) walk(v reflect.Value) {
	t := v.Type()
	for i := range t.NumField() {
		sf, fv := t.Field(i), v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if sf.Type.Kind() == reflect.Struct {
			l.walk(fv)
			continue
		}

		name := sf.Tag.Get("env")
		if name == "" {
			continue
		}
		raw, ok := l.value(name, sf.Tag.Get("envAlt"))
		if !ok {
			if sf.Tag.Get("required") == "true" {
				l.errs = append(l.errs, fmt.Errorf("%s is required", name))
				continue
			}
			raw = sf.Tag.Get("default")
		}
		if raw == "" {
			continue
		}
		if err := assign(fv, raw); err != nil {
			l.errs = append(l.errs, fmt.Errorf("%s=%q: %w", name, raw, err))
		}
	}
}

// value returns the first non-empty of name and alt.
func (l *loader) value(name, alt string) (string, bool) {
	for _, n := range []string{name, alt} {
		if n == "" {
			continue
		}
		if s, ok := l.lookup(n); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

func assign(fv reflect.Value, raw string) error {
	if fv.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		fv.SetInt(int64(d))
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		fv.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.Slice:
		if fv.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice of %s", fv.Type().Elem())
		}
		fv.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported kind %s", fv.Kind())
	}
	return nil
}

// splitList parses "a, b,,c" as [a b c].
func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	checks := []struct {
		bad bool
		msg string
	}{
		{c.Server.Port <= 0 || c.Server.Port > 65535, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port)},
		{c.Server.ReadTimeout < 0, "SERVER_READ_TIMEOUT must be non-negative"},
		{c.Server.ShutdownTimeout <= 0, "SERVER_SHUTDOWN_TIMEOUT must be positive"},

		{c.Session.MaxHistory < 0, "SESSION_MAX_HISTORY must be non-negative"},
		{c.Session.MaxSessions <= 0, "SESSION_MAX_SESSIONS must be positive"},
		{c.Session.IdleTimeout <= 0, "SESSION_IDLE_TIMEOUT must be positive"},
		{c.Session.SweepInterval <= 0, "SESSION_SWEEP_INTERVAL must be positive"},
		{c.Session.PreviewRows <= 0, "SESSION_PREVIEW_ROWS must be positive"},

		{c.Upload.MaxFileSize <= 0, "UPLOAD_MAX_FILE_SIZE must be positive"},
		{c.Upload.MaxConcurrent <= 0, "UPLOAD_MAX_CONCURRENT must be positive"},
		{c.Upload.MaxWaitTime <= 0, "UPLOAD_MAX_WAIT_TIME must be positive"},

		{c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled"},

		{c.Export.PostgresEnabled() && c.Export.MaxConns <= 0, "EXPORT_DB_MAX_CONNS must be positive"},
		{c.Export.Timeout <= 0, "EXPORT_TIMEOUT must be positive"},

		{c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0, "REQUIRE_API_KEY is set but API_KEYS is empty"},

		{!oneOf(c.Logging.Level, "debug", "info", "warn", "error"), fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level)},
		{!oneOf(c.Logging.Format, "text", "json"), fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format)},
	}

	var errs []string
	for _, ch := range checks {
		if ch.bad {
			errs = append(errs, ch.msg)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func oneOf(v string, allowed ...string) bool {
	v = strings.ToLower(v)
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// String renders the config for logging with secrets masked.
func (c *Config) String() string {
	pg := "disabled"
	if c.Export.PostgresEnabled() {
		pg = "[MASKED]"
	}
	return fmt.Sprintf("Config{Server: {Addr: %q}, "+
		"Session: {MaxHistory: %d, MaxSessions: %d, IdleTimeout: %s}, "+
		"Upload: {MaxFileSize: %d, MaxConcurrent: %d}, "+
		"Rate: {Enabled: %v, RequestsPerMinute: %d}, "+
		"Security: {RequireAPIKey: %v, APIKeys: %d}, "+
		"Export: {DatabaseURL: %s, SQLitePath: %q}, "+
		"Logging: {Level: %q, Format: %q}}",
		c.Server.Addr(),
		c.Session.MaxHistory, c.Session.MaxSessions, c.Session.IdleTimeout,
		c.Upload.MaxFileSize, c.Upload.MaxConcurrent,
		c.Rate.Enabled, c.Rate.RequestsPerMinute,
		c.Security.RequireAPIKey, len(c.Security.APIKeys),
		pg, c.Export.SQLitePath,
		c.Logging.Level, c.Logging.Format,
	)
}
