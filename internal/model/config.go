package model

import "time"

// Config is the complete service configuration, constructed once at
// startup and passed by reference into each component's constructor.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	HTTP    HTTPConfig    `yaml:"http"`
	Browser BrowserConfig `yaml:"browser"`
	LLM     LLMConfig     `yaml:"llm"`
	Solver  SolverConfig  `yaml:"solver"`
	Auth    AuthConfig    `yaml:"auth"`
}

// ServerConfig configures the inbound HTTP surface
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	ChainWorkers int    `yaml:"chain_workers"` // max chains solved concurrently
}

// HTTPConfig configures outbound plain-HTTP fetching
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	UserAgent     string        `yaml:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes"`
	InsecureTLS   bool          `yaml:"insecure_tls"`
	RespectRobots bool          `yaml:"respect_robots"` // politeness check on resource fetches
	RatePerSecond float64       `yaml:"rate_per_second"`
	RateBurst     int           `yaml:"rate_burst"`
}

// BrowserConfig configures the rendered acquisition path
type BrowserConfig struct {
	Headless    bool          `yaml:"headless"`
	Timeout     time.Duration `yaml:"timeout"`      // navigation budget
	SettleDelay time.Duration `yaml:"settle_delay"` // wait after network quiescence
	Disabled    bool          `yaml:"disabled"`     // force the fallback path
}

// LLMConfig configures the reasoning backends. The models form an
// ordered escalation list: primary first, then fallbacks by rank.
type LLMConfig struct {
	APIKey         string        `yaml:"-"` // env only, never written to a config file
	BaseURL        string        `yaml:"base_url"`
	PrimaryModel   string        `yaml:"primary_model"`
	FallbackModels []string      `yaml:"fallback_models"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxTokens      int           `yaml:"max_tokens"`
}

// SolverConfig bounds the solve loop
type SolverConfig struct {
	MaxAttempts int           `yaml:"max_attempts"` // reasoning+submission cycles per question
	RetryDelay  time.Duration `yaml:"retry_delay"`  // sleep between wrong-answer attempts
	TotalBudget time.Duration `yaml:"total_budget"` // wall clock per chain
}

// AuthConfig holds the reference credential pair solve callers must match
type AuthConfig struct {
	Email  string `yaml:"-"`
	Secret string `yaml:"-"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ChainWorkers: 4,
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "Solvent/0.1 (+https://github.com/ppiankov/solvent)",
			MaxBodyBytes:  10_000_000,
			RatePerSecond: 4,
			RateBurst:     5,
		},
		Browser: BrowserConfig{
			Headless:    true,
			Timeout:     30 * time.Second,
			SettleDelay: 2 * time.Second,
		},
		LLM: LLMConfig{
			// Gemini's OpenAI-compatible surface; cheaper models first to
			// dodge rate limits, escalation handled per attempt.
			BaseURL:      "https://generativelanguage.googleapis.com/v1beta/openai",
			PrimaryModel: "gemini-2.0-flash-lite",
			FallbackModels: []string{
				"gemini-2.0-flash",
				"gemini-2.5-flash",
				"gemini-2.5-pro",
			},
			Timeout:   30 * time.Second,
			MaxTokens: 1000,
		},
		Solver: SolverConfig{
			MaxAttempts: 3,
			RetryDelay:  2 * time.Second,
			TotalBudget: 180 * time.Second,
		},
	}
}

// ValidateCredentials reports whether the supplied pair matches the
// configured reference values exactly, both fields.
func (c *Config) ValidateCredentials(email, secret string) bool {
	return email == c.Auth.Email && secret == c.Auth.Secret
}
