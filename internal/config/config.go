package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	verifier "github.com/unlimitedverifier/free-email-verifier"
)

// ErrInvalidConfig is wrapped by the errors New returns.
var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	LogLevel     slog.Level
	RateLimit    time.Duration
	SMTPTimeout  time.Duration
	DNSTimeout   time.Duration
	HeloHostname string
	MailFrom     string
	SMTPPort     string
	Nameservers  []string
}

// New reads the configuration from the environment. Unparsable values are
// logged and replaced by their defaults; values that cannot be sent on an
// SMTP command line are an error wrapping ErrInvalidConfig.
func New() (*Config, error) {
	cfg := Config{
		LogLevel:     slog.LevelInfo,
		RateLimit:    verifier.DefaultRateLimit,
		SMTPTimeout:  verifier.DefaultSMTPTimeout,
		DNSTimeout:   verifier.DefaultDNSTimeout,
		HeloHostname: verifier.DefaultHeloHostname,
		MailFrom:     strings.TrimSpace(os.Getenv("VERIFIER_MAIL_FROM")),
		SMTPPort:     verifier.DefaultSMTPPort,
		Nameservers:  []string{},
	}

	if levelStr := os.Getenv("VERIFIER_LOG_LEVEL"); levelStr != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(levelStr)); err == nil {
			cfg.LogLevel = level
		} else {
			slog.Warn("invalid VERIFIER_LOG_LEVEL, using default", "value", levelStr, "default", "info")
		}
	}

	cfg.RateLimit = duration("VERIFIER_RATE_LIMIT", cfg.RateLimit)
	cfg.SMTPTimeout = duration("VERIFIER_SMTP_TIMEOUT", cfg.SMTPTimeout)
	cfg.DNSTimeout = duration("VERIFIER_DNS_TIMEOUT", cfg.DNSTimeout)

	if helo := strings.TrimSpace(os.Getenv("VERIFIER_HELO_HOSTNAME")); helo != "" {
		cfg.HeloHostname = helo
	}

	if portStr := strings.TrimSpace(os.Getenv("VERIFIER_SMTP_PORT")); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 && port < 65536 {
			cfg.SMTPPort = portStr
		} else {
			slog.Warn("invalid VERIFIER_SMTP_PORT, using default", "value", portStr, "default", verifier.DefaultSMTPPort)
		}
	}

	nsStr := strings.TrimSpace(os.Getenv("VERIFIER_NAMESERVERS"))
	if nsStr != "" {
		for _, ns := range strings.Split(nsStr, ",") {
			if ns = strings.TrimSpace(ns); ns != "" {
				cfg.Nameservers = append(cfg.Nameservers, ns)
			}
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate rejects values that cannot be sent on an SMTP command line.
func (c *Config) validate() error {
	if strings.ContainsAny(c.HeloHostname, "\r\n \t") {
		return fmt.Errorf("%w: VERIFIER_HELO_HOSTNAME %q contains whitespace or a line break", ErrInvalidConfig, c.HeloHostname)
	}
	if strings.ContainsAny(c.MailFrom, "\r\n<>") {
		return fmt.Errorf("%w: VERIFIER_MAIL_FROM %q contains a line break or angle bracket", ErrInvalidConfig, c.MailFrom)
	}
	return nil
}

// duration parses a non-negative duration from key. A bare integer is
// taken as seconds.
func duration(key string, def time.Duration) time.Duration {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def
	}
	if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return d
	}
	slog.Warn("invalid "+key+", using default", "value", s, "default", def.String())
	return def
}
