package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides overrides cfg fields with environment variables that are
// set. Env takes precedence over a config file; flags are applied after it.
// Unparsable numbers and durations are ignored.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	setInt := func(dst *int, key string) {
		if s := strings.TrimSpace(os.Getenv(key)); s != "" {
			if n, err := strconv.Atoi(s); err == nil {
				*dst = n
			}
		}
	}
	setDuration := func(dst *time.Duration, key string) {
		if s := strings.TrimSpace(os.Getenv(key)); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				*dst = d
			}
		}
	}
	setBool := func(dst *bool, key string) {
		if s := strings.ToLower(strings.TrimSpace(os.Getenv(key))); s != "" {
			switch s {
			case "1", "true", "yes", "on":
				*dst = true
			case "0", "false", "no", "off":
				*dst = false
			}
		}
	}

	// ANTHROPIC_API_KEY wins over the generic LLM_API_KEY.
	setString(&cfg.LLMAPIKey, "ANTHROPIC_API_KEY", "LLM_API_KEY")
	setString(&cfg.LLMBaseURL, "LLM_BASE_URL")
	setString(&cfg.LLMModel, "LLM_MODEL")
	setInt(&cfg.LLMMaxTokens, "LLM_MAX_TOKENS")
	setString(&cfg.SystemPrompt, "LLM_SYSTEM_PROMPT")
	setDuration(&cfg.AnalysisTimeout, "ANALYSIS_TIMEOUT")

	setInt(&cfg.ExtractMinChars, "EXTRACT_MIN_CHARS")
	setString(&cfg.ExtractMode, "EXTRACT_MODE")
	setDuration(&cfg.FetchTimeout, "FETCH_TIMEOUT")
	setString(&cfg.UserAgent, "FETCH_USER_AGENT")

	setInt(&cfg.CacheMaxEntries, "CACHE_MAX_ENTRIES")
	setDuration(&cfg.CacheMaxAge, "CACHE_MAX_AGE")

	setString(&cfg.ServeAddr, "SERVE_ADDR")
	setString(&cfg.LogFile, "LOG_FILE")
	setBool(&cfg.Verbose, "VERBOSE")
}
