package ratelimit

import (
	"strconv"
	"strings"
	"time"
)

// Rule limits one endpoint. Requests to endpoints without a rule are not limited.
type Rule struct {
	Method string
	Path   string
	Limit  int           // requests per Window
	Window time.Duration // period Limit applies to
	Burst  int           // defaults to Limit when 0
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	Rules           []Rule
	Whitelist       map[string]bool
	CleanupInterval time.Duration
	// IdleTTL is how long an idle client's state is kept.
	IdleTTL time.Duration
}

// Defaults for LoadConfig.
const (
	DefaultAnalysesPerHour = 30
	DefaultCleanupInterval = 5 * time.Minute
	DefaultIdleTTL         = time.Hour
)

// DefaultRules limits the endpoints that spend model quota, and password guessing.
func DefaultRules(analysesPerHour int) []Rule {
	burst := max(1, analysesPerHour/10)
	return []Rule{
		{Method: "POST", Path: "/analyses", Limit: analysesPerHour, Window: time.Hour, Burst: burst},
		{Method: "POST", Path: "/analyses/stream", Limit: analysesPerHour, Window: time.Hour, Burst: burst},
		{Method: "POST", Path: "/headshots", Limit: analysesPerHour, Window: time.Hour, Burst: burst},
		{Method: "POST", Path: "/auth/token", Limit: 10, Window: time.Minute, Burst: 5},
	}
}

// LoadConfig reads RATE_LIMIT_ENABLED (default true),
// RATE_LIMIT_ANALYSES_PER_HOUR and RATE_LIMIT_WHITELIST (comma-separated IPs).
func LoadConfig(getenv func(string) string) *Config {
	enabled := true
	if v, err := strconv.ParseBool(strings.TrimSpace(getenv("RATE_LIMIT_ENABLED"))); err == nil {
		enabled = v
	}
	if !enabled {
		return &Config{Enabled: false}
	}

	perHour := DefaultAnalysesPerHour
	if v, err := strconv.Atoi(strings.TrimSpace(getenv("RATE_LIMIT_ANALYSES_PER_HOUR"))); err == nil && v > 0 {
		perHour = v
	}

	return &Config{
		Enabled:         true,
		Rules:           DefaultRules(perHour),
		Whitelist:       parseIPList(getenv("RATE_LIMIT_WHITELIST")),
		CleanupInterval: DefaultCleanupInterval,
		IdleTTL:         DefaultIdleTTL,
	}
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}

// Match returns the rule for method and path, or nil.
func Match(method, path string, rules []Rule) *Rule {
	for i := range rules {
		if rules[i].Method == method && rules[i].Path == path {
			return &rules[i]
		}
	}
	return nil
}
