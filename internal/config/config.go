package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/uaenergy/news/internal/utils/headers"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// HTTP/Scraping
	SiteURL     string
	HTTPTimeout time.Duration
	UserAgent   string
	Headers     http.Header
	Proxies     []string
	Concurrency int

	// Rate Limiting
	RateLimitRPS   float64
	RateLimitBurst int
	RetryAttempts  int

	// Caching
	CacheTTL          time.Duration
	CacheMaxSizeBytes int64

	// OpenAI
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	OpenAISeed    int
	OpenAITimeout time.Duration
	OpenAIRPS     float64
}

// fileConfig mirrors the optional YAML configuration file
type fileConfig struct {
	LogLevel       string   `yaml:"log_level"`
	SiteURL        string   `yaml:"site_url"`
	UserAgent      string   `yaml:"user_agent"`
	Headers        []string `yaml:"headers"`
	Timeout        string   `yaml:"timeout"`
	Proxies        []string `yaml:"proxies"`
	Concurrency    int      `yaml:"concurrency"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst"`
	RetryAttempts  int      `yaml:"retry_attempts"`
	CacheTTL       string   `yaml:"cache_ttl"`
	OpenAI         struct {
		BaseURL string  `yaml:"base_url"`
		Model   string  `yaml:"model"`
		Seed    *int    `yaml:"seed"`
		Timeout string  `yaml:"timeout"`
		RPS     float64 `yaml:"rps"`
	} `yaml:"openai"`
}

// Load builds a Config by combining defaults, an optional config file, environment variables, and CLI flags.
// Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Default()

	if cmd != nil {
		// persistent flags may not be merged into Flags() yet
		cmd.Flags().AddFlagSet(cmd.PersistentFlags())

		if f := cmd.Flags().Lookup("config"); f != nil && f.Value.String() != "" {
			if err := cfg.applyFile(f.Value.String()); err != nil {
				return nil, err
			}
		}
	}

	// A missing .env file is the common case
	_ = godotenv.Load()
	cfg.applyEnv()

	if cmd != nil {
		if f := cmd.Flags().Lookup("user-agent"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.UserAgent = s
			}
		}
		if lines, err := cmd.Flags().GetStringArray("header"); err == nil && len(lines) > 0 {
			h, err := headers.Parse(lines)
			if err != nil {
				return nil, fmt.Errorf("invalid config: %w", err)
			}
			c := cfg.Headers.Clone()
			if c == nil {
				c = make(http.Header)
			}
			for k, v := range h {
				c[k] = v
			}
			cfg.Headers = c
		}
		if f := cmd.Flags().Lookup("proxy"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.Proxies = SplitList(s)
			}
		}
		if f := cmd.Flags().Lookup("timeout"); f != nil && f.Changed {
			if d, err := time.ParseDuration(f.Value.String()); err == nil {
				cfg.HTTPTimeout = d
			}
		}
		if f := cmd.Flags().Lookup("concurrency"); f != nil && f.Changed {
			if n, err := strconv.Atoi(f.Value.String()); err == nil {
				cfg.Concurrency = n
			}
		}
		if f := cmd.Flags().Lookup("model"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.OpenAIModel = s
			}
		}
		if f := cmd.Flags().Lookup("json"); f != nil {
			if f.Value.String() == "true" {
				cfg.JSONLog = true
			}
		}
		if f := cmd.Flags().Lookup("quiet"); f != nil {
			if f.Value.String() == "true" {
				cfg.LogLevel = "error"
			}
		}
		if f := cmd.Flags().Lookup("verbose"); f != nil {
			if f.Value.String() == "true" {
				cfg.LogLevel = "debug"
			}
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config populated with default values only
func Default() *Config {
	return &Config{
		LogLevel:          DefaultLogLevel,
		JSONLog:           DefaultJSONLog,
		SiteURL:           DefaultSiteURL,
		HTTPTimeout:       DefaultHTTPTimeout,
		UserAgent:         DefaultUserAgent,
		Concurrency:       DefaultConcurrency,
		RateLimitRPS:      DefaultRateLimitRPS,
		RateLimitBurst:    DefaultRateLimitBurst,
		RetryAttempts:     DefaultRetryAttempts,
		CacheTTL:          DefaultCacheTTL,
		CacheMaxSizeBytes: DefaultCacheMaxSizeBytes,
		OpenAIBaseURL:     DefaultOpenAIBaseURL,
		OpenAIModel:       DefaultOpenAIModel,
		OpenAISeed:        DefaultOpenAISeed,
		OpenAITimeout:     DefaultOpenAITimeout,
		OpenAIRPS:         DefaultOpenAIRPS,
	}
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.SiteURL != "" {
		c.SiteURL = strings.TrimRight(fc.SiteURL, "/")
	}
	if fc.UserAgent != "" {
		c.UserAgent = fc.UserAgent
	}
	if len(fc.Headers) > 0 {
		h, err := headers.Parse(fc.Headers)
		if err != nil {
			return fmt.Errorf("invalid headers in config file: %w", err)
		}
		c.Headers = h
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout in config file: %w", err)
		}
		c.HTTPTimeout = d
	}
	if len(fc.Proxies) > 0 {
		c.Proxies = fc.Proxies
	}
	if fc.Concurrency != 0 {
		c.Concurrency = fc.Concurrency
	}
	if fc.RateLimitRPS != 0 {
		c.RateLimitRPS = fc.RateLimitRPS
	}
	if fc.RateLimitBurst != 0 {
		c.RateLimitBurst = fc.RateLimitBurst
	}
	if fc.RetryAttempts != 0 {
		c.RetryAttempts = fc.RetryAttempts
	}
	if fc.CacheTTL != "" {
		d, err := time.ParseDuration(fc.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid cache_ttl in config file: %w", err)
		}
		c.CacheTTL = d
	}
	if fc.OpenAI.BaseURL != "" {
		c.OpenAIBaseURL = fc.OpenAI.BaseURL
	}
	if fc.OpenAI.Model != "" {
		c.OpenAIModel = fc.OpenAI.Model
	}
	if fc.OpenAI.Seed != nil {
		c.OpenAISeed = *fc.OpenAI.Seed
	}
	if fc.OpenAI.Timeout != "" {
		d, err := time.ParseDuration(fc.OpenAI.Timeout)
		if err != nil {
			return fmt.Errorf("invalid openai.timeout in config file: %w", err)
		}
		c.OpenAITimeout = d
	}
	if fc.OpenAI.RPS != 0 {
		c.OpenAIRPS = fc.OpenAI.RPS
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("UAENERGY_SITE_URL"); v != "" {
		c.SiteURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("UAENERGY_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("UAENERGY_PROXY"); v != "" {
		c.Proxies = SplitList(v)
	}
	if v := os.Getenv("UAENERGY_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Concurrency = n
		}
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAIAPIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.OpenAIBaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.OpenAIModel = v
	}
}

// SplitList splits a comma separated list, dropping blanks
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
