package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel          = "info"
	DefaultJSONLog           = false
	DefaultSiteURL           = "https://ua-energy.org"
	DefaultUserAgent         = "uaenergy/1.0 (+https://github.com/uaenergy/news)"
	DefaultCacheTTL          = 30 * time.Minute
	DefaultHTTPTimeout       = 30 * time.Second
	DefaultRateLimitRPS      = 2.0
	DefaultRateLimitBurst    = 4
	DefaultConcurrency       = 4
	DefaultMaxConcurrency    = 32
	DefaultCacheMaxSizeBytes = 100 * 1024 * 1024 // 100MB
	DefaultRetryAttempts     = 3
	DefaultOpenAIBaseURL     = "https://api.openai.com/v1"
	DefaultOpenAIModel       = "gpt-4o-mini"
	DefaultOpenAISeed        = 5
	DefaultOpenAITimeout     = 2 * time.Minute
	DefaultOpenAIRPS         = 1.0
)
