package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SUPPORTMESH_"

// ApplyEnv overrides cfg from SUPPORTMESH_* variables. Unparseable values
// are collected and returned together.
func ApplyEnv(cfg *Config) error {
	var result *multierror.Error

	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := lookup(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	float := func(name string, dst *float64) {
		if v, ok := lookup(name); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = f
		}
	}
	duration := func(name string, dst *time.Duration) {
		if v, ok := lookup(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = d
		}
	}

	str("MODEL_PROVIDER", &cfg.Model.Provider)
	str("MODEL_NAME", &cfg.Model.Name)
	str("MODEL_API_KEY", &cfg.Model.APIKey)
	float("MODEL_TEMPERATURE", &cfg.Model.Temperature)
	integer("MAX_ITERATIONS", &cfg.Engine.MaxIterations)
	str("INSTRUCTIONS", &cfg.Engine.Instructions)

	if v, ok := lookup("TOOLS_ENABLED"); ok {
		cfg.Tools.Enabled = splitList(v)
	}
	duration("TOOL_TIMEOUT", &cfg.Tools.Timeout)
	str("TRACKING_URL", &cfg.Tools.TrackingURL)
	str("TRACKING_METHOD", &cfg.Tools.TrackingMethod)
	str("TICKET_URL", &cfg.Tools.TicketURL)
	str("KNOWLEDGE_URL", &cfg.Tools.KnowledgeURL)

	str("SESSION_BACKEND", &cfg.Session.Backend)
	str("SQLITE_PATH", &cfg.Session.SQLitePath)
	str("S3_BUCKET", &cfg.Session.S3.Bucket)
	str("S3_PREFIX", &cfg.Session.S3.Prefix)
	str("S3_REGION", &cfg.Session.S3.Region)
	str("S3_ENDPOINT", &cfg.Session.S3.Endpoint)

	str("SERVER_ADDR", &cfg.Server.Addr)
	str("BACKENDS_ADDR", &cfg.Server.BackendsAddr)
	str("LOG_LEVEL", &cfg.Logging.Level)
	str("LOG_FORMAT", &cfg.Logging.Format)

	return result.ErrorOrNil()
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
