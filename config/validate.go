package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/hupe1980/supportmesh/logging"
	"github.com/hupe1980/supportmesh/tool/courier"
)

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	add := func(format string, args ...any) {
		result = multierror.Append(result, fmt.Errorf(format, args...))
	}

	switch c.Model.Provider {
	case "openai", "anthropic":
	default:
		add("model.provider: unsupported provider %q", c.Model.Provider)
	}
	if strings.TrimSpace(c.Model.Name) == "" {
		add("model.name: required")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		add("model.temperature: must be between 0 and 2, got %v", c.Model.Temperature)
	}
	if c.Model.MaxTokens <= 0 {
		add("model.max_tokens: must be positive")
	}

	if c.Engine.MaxIterations < 1 {
		add("engine.max_iterations: must be at least 1")
	}

	if c.Tools.Timeout <= 0 {
		add("tools.timeout: must be positive")
	}
	for _, name := range c.Tools.Enabled {
		if !slices.Contains(courier.Names(), name) {
			add("tools.enabled: unknown tool %q", name)
		}
	}
	enabled := func(name string) bool {
		return len(c.Tools.Enabled) == 0 || slices.Contains(c.Tools.Enabled, name)
	}
	if enabled(courier.TrackPackage) {
		if err := checkURL(c.Tools.TrackingURL); err != nil {
			add("tools.tracking_url: %v", err)
		}
		switch strings.ToUpper(c.Tools.TrackingMethod) {
		case "", "GET", "POST":
		default:
			add("tools.tracking_method: must be GET or POST")
		}
	}
	if enabled(courier.CreateSupportTicket) {
		if err := checkURL(c.Tools.TicketURL); err != nil {
			add("tools.ticket_url: %v", err)
		}
	}
	if enabled(courier.SearchKnowledgeBase) {
		if err := checkURL(c.Tools.KnowledgeURL); err != nil {
			add("tools.knowledge_url: %v", err)
		}
	}

	switch c.Session.Backend {
	case "memory":
	case "sqlite":
		if strings.TrimSpace(c.Session.SQLitePath) == "" {
			add("session.sqlite_path: required for sqlite backend")
		}
	case "s3":
		if strings.TrimSpace(c.Session.S3.Bucket) == "" {
			add("session.s3.bucket: required for s3 backend")
		}
	default:
		add("session.backend: unsupported backend %q", c.Session.Backend)
	}

	if strings.TrimSpace(c.Server.Addr) == "" {
		add("server.addr: required")
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		add("logging.level: %v", err)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		add("logging.format: must be json or text")
	}

	return result.ErrorOrNil()
}

func checkURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}
