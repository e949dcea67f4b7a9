package config

import (
	"errors"
	"fmt"
	"strings"
)

type Config struct {
	Log       LogConfig       `toml:"log"`
	Transport TransportConfig `toml:"transport"`
	Display   DisplayConfig   `toml:"display"`
	Audit     AuditConfig     `toml:"audit"`
	Query     QueryConfig     `toml:"query"`
}

type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text, json
	File   string `toml:"file"`   // empty means stderr
}

const (
	TransportAMQP   = "amqp"
	TransportMemory = "memory"
)

type TransportConfig struct {
	Kind           string   `toml:"kind"`
	URL            string   `toml:"url"`
	Exchange       string   `toml:"exchange"`
	RetryAttempts  int      `toml:"retry_attempts"`
	RetryDelay     Duration `toml:"retry_delay"`
	Prefetch       int      `toml:"prefetch"`
	Workers        int      `toml:"workers"`
	Buffer         int      `toml:"buffer"`
	HandlerTimeout Duration `toml:"handler_timeout"`
	// Failed deliveries are dead-lettered when both names are set.
	DeadLetterExchange string `toml:"dead_letter_exchange"`
	DeadLetterQueue    string `toml:"dead_letter_queue"`
}

type DisplayConfig struct {
	Channel         string `toml:"channel"`
	MaxDisplayCount int    `toml:"max_display_count"`
	HistorySize     int    `toml:"history_size"`
}

type AuditConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// QueryConfig points the panels at the CRM store they read from.
type QueryConfig struct {
	Enabled bool     `toml:"enabled"`
	Path    string   `toml:"path"`
	Timeout Duration `toml:"timeout"`
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	switch c.Transport.Kind {
	case TransportAMQP:
		if c.Transport.URL == "" {
			errs = append(errs, errors.New("transport.url: required for amqp"))
		}
		if c.Transport.Exchange == "" {
			errs = append(errs, errors.New("transport.exchange: required for amqp"))
		}
		if (c.Transport.DeadLetterExchange == "") != (c.Transport.DeadLetterQueue == "") {
			errs = append(errs, errors.New("transport.dead_letter_*: exchange and queue must be set together"))
		}
	case TransportMemory:
	default:
		errs = append(errs, fmt.Errorf("transport.kind: unknown kind %q", c.Transport.Kind))
	}
	if c.Display.Channel == "" {
		errs = append(errs, errors.New("display.channel: required"))
	}
	if c.Display.MaxDisplayCount < 1 {
		errs = append(errs, errors.New("display.max_display_count: must be at least 1"))
	}
	if c.Display.HistorySize < 1 {
		errs = append(errs, errors.New("display.history_size: must be at least 1"))
	}
	if c.Audit.Enabled && c.Audit.Path == "" {
		errs = append(errs, errors.New("audit.path: required when audit is enabled"))
	}
	if c.Query.Enabled && c.Query.Path == "" {
		errs = append(errs, errors.New("query.path: required when query is enabled"))
	}
	return errors.Join(errs...)
}
