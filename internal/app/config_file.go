package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/biaslens/internal/extract"
)

// FileConfig is the single-file configuration schema. Nested sections map to
// the dotted flag names.
type FileConfig struct {
	Output    string `yaml:"output" json:"output"`
	OutputPDF string `yaml:"outputPDF" json:"outputPDF"`
	Format    string `yaml:"format" json:"format"`
	Serve     string `yaml:"serve" json:"serve"`
	Verbose   bool   `yaml:"verbose" json:"verbose"`

	LLM struct {
		BaseURL      string `yaml:"base" json:"base"`
		Model        string `yaml:"model" json:"model"`
		APIKey       string `yaml:"key" json:"key"`
		MaxTokens    int    `yaml:"maxTokens" json:"maxTokens"`
		SystemPrompt string `yaml:"systemPrompt" json:"systemPrompt"`
	} `yaml:"llm" json:"llm"`

	Analysis struct {
		Timeout duration `yaml:"timeout" json:"timeout"`
	} `yaml:"analysis" json:"analysis"`

	Extract struct {
		MinChars int    `yaml:"minChars" json:"minChars"`
		Mode     string `yaml:"mode" json:"mode"`
	} `yaml:"extract" json:"extract"`

	Fetch struct {
		Timeout   duration `yaml:"timeout" json:"timeout"`
		UserAgent string   `yaml:"userAgent" json:"userAgent"`
	} `yaml:"fetch" json:"fetch"`

	Cache struct {
		MaxEntries int      `yaml:"maxEntries" json:"maxEntries"`
		MaxAge     duration `yaml:"maxAge" json:"maxAge"`
	} `yaml:"cache" json:"cache"`

	Log struct {
		File string `yaml:"file" json:"file"`
	} `yaml:"log" json:"log"`
}

// duration accepts Go duration strings ("90s", "30m") in both YAML and JSON.
type duration time.Duration

func (d *duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	return d.set(s)
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.set(s)
}

func (d *duration) set(s string) error {
	if strings.TrimSpace(s) == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = duration(v)
	return nil
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays non-zero file values onto cfg. Call it on the
// defaults, before env and flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	setString := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	setInt := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}
	setDuration := func(dst *time.Duration, v duration) {
		if v != 0 {
			*dst = time.Duration(v)
		}
	}

	setString(&cfg.OutputPath, fc.Output)
	setString(&cfg.OutputPDFPath, fc.OutputPDF)
	setString(&cfg.Format, fc.Format)
	setString(&cfg.ServeAddr, fc.Serve)
	if fc.Verbose {
		cfg.Verbose = true
	}

	setString(&cfg.LLMBaseURL, fc.LLM.BaseURL)
	setString(&cfg.LLMModel, fc.LLM.Model)
	setString(&cfg.LLMAPIKey, fc.LLM.APIKey)
	setInt(&cfg.LLMMaxTokens, fc.LLM.MaxTokens)
	if strings.TrimSpace(fc.LLM.SystemPrompt) != "" {
		cfg.SystemPrompt = fc.LLM.SystemPrompt
	}
	setDuration(&cfg.AnalysisTimeout, fc.Analysis.Timeout)

	setInt(&cfg.ExtractMinChars, fc.Extract.MinChars)
	setString(&cfg.ExtractMode, fc.Extract.Mode)
	setDuration(&cfg.FetchTimeout, fc.Fetch.Timeout)
	setString(&cfg.UserAgent, fc.Fetch.UserAgent)

	setInt(&cfg.CacheMaxEntries, fc.Cache.MaxEntries)
	setDuration(&cfg.CacheMaxAge, fc.Cache.MaxAge)

	setString(&cfg.LogFile, fc.Log.File)
}

// ValidateConfig rejects settings that can never work. A missing API key is
// not an error: it may be supplied later through the settings endpoint.
func ValidateConfig(cfg Config) error {
	if cfg.URL != "" && cfg.HTMLPath != "" {
		return errors.New("config: -url and -html are mutually exclusive")
	}
	if cfg.HTMLPath != "" && strings.TrimSpace(cfg.PageURL) == "" {
		return errors.New("config: -page.url is required with -html")
	}
	if cfg.LLMMaxTokens < 0 || cfg.ExtractMinChars < 0 || cfg.CacheMaxEntries < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if cfg.AnalysisTimeout < 0 || cfg.FetchTimeout < 0 || cfg.CacheMaxAge < 0 {
		return errors.New("config: negative durations are not allowed")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.ExtractMode)) {
	case "", extract.ModeCascade, extract.ModeReadability:
	default:
		return fmt.Errorf("config: unknown extract mode %q (want %s or %s)", cfg.ExtractMode, extract.ModeCascade, extract.ModeReadability)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", FormatMarkdown, FormatJSON:
	default:
		return fmt.Errorf("config: unknown format %q (want %s or %s)", cfg.Format, FormatMarkdown, FormatJSON)
	}
	return nil
}
