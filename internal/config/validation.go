package config

import (
	"fmt"
	"strings"
)

func validate(c *Config) error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.Concurrency <= 0 || c.Concurrency > DefaultMaxConcurrency {
		return fmt.Errorf("concurrency must be between 1 and %d", DefaultMaxConcurrency)
	}
	if c.CacheMaxSizeBytes <= 0 {
		return fmt.Errorf("cache max size must be > 0")
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit must be > 0")
	}
	if c.RetryAttempts <= 0 {
		return fmt.Errorf("retry attempts must be > 0")
	}
	if !isHTTP(c.SiteURL) {
		return fmt.Errorf("site url must start with http:// or https://")
	}
	if !isHTTP(c.OpenAIBaseURL) {
		return fmt.Errorf("openai base url must start with http:// or https://")
	}
	return nil
}

func isHTTP(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
