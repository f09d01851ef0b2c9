package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Client  ClientConfig  `yaml:"client"`
	LLM     LLMConfig     `yaml:"llm"`
	Prompt  PromptConfig  `yaml:"prompt"`
	Canvas  CanvasConfig  `yaml:"canvas"`
	History HistoryConfig `yaml:"history"`
	Logger  LoggerConfig  `yaml:"logger"`
	Tracer  TracerConfig  `yaml:"tracer"`
}

// ServerConfig holds settings for the /prompt HTTP service.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	RateLimitPerMin int           `yaml:"rate_limit_per_min"` // 0 disables rate limiting
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	WSEnabled       bool          `yaml:"ws_enabled"`
	// WSToken, when set, must be passed as ?token= to open /ws.
	WSToken         string        `yaml:"ws_token"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
}

// ClientConfig holds settings for the prompt clients (tui, wasm).
type ClientConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// FailoverConfig holds LLM failover settings.
type FailoverConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Fallbacks []string `yaml:"fallbacks"`
}

// LLMConfig holds LLM provider settings.
type LLMConfig struct {
	DefaultProvider string               `yaml:"default_provider"`
	Providers       []ProviderConfig     `yaml:"providers"`
	Failover        FailoverConfig       `yaml:"failover"`
	CircuitBreaker  CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// CircuitBreakerConfig holds circuit breaker settings for LLM providers.
type CircuitBreakerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
}

// PoolConfig holds HTTP connection pool settings for LLM providers.
type PoolConfig struct {
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `yaml:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout"`
}

// ProviderConfig holds settings for a single LLM provider.
type ProviderConfig struct {
	Name        string        `yaml:"name"`
	Type        string        `yaml:"type"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	Region      string        `yaml:"region,omitempty"`
	ConnTimeout time.Duration `yaml:"conn_timeout"`
	RespTimeout time.Duration `yaml:"resp_timeout"`
	Pool        PoolConfig    `yaml:"pool"`
}

// PromptConfig tunes the LLM request built for each prompt.
type PromptConfig struct {
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	// MaxPromptChars bounds the user prompt length; 0 means unbounded.
	MaxPromptChars int `yaml:"max_prompt_chars"`
}

// CanvasConfig holds drawing surface defaults.
type CanvasConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Background string `yaml:"background"`
}

// HistoryConfig holds the prompt log settings.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	Output    string `yaml:"output"`
	AddSource bool   `yaml:"add_source"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Exporter    string `yaml:"exporter"`
	ServiceName string `yaml:"service_name"`
}

// defaultDataDir returns the persistent data directory under $XDG_DATA_HOME.
// Falls back to "./data" if $HOME cannot be determined.
func defaultDataDir() string {
	return filepath.Join(xdg.DataHome, "canvas-ai")
}

// DefaultPath returns where the config file is looked for when neither
// --config nor CANVASAI_CONFIG names one: ./config.yaml if present, otherwise
// the XDG config directory.
func DefaultPath() string {
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	return filepath.Join(xdg.ConfigHome, "canvas-ai", "config.yaml")
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            "127.0.0.1:8000",
			CORSOrigins:     []string{"http://localhost:8080", "http://127.0.0.1:8080"},
			RateLimitPerMin: 60,
			RateLimitBurst:  10,
			MaxBodyBytes:    1 << 20,
			WSEnabled:       true,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    180 * time.Second,
		},
		Client: ClientConfig{
			Endpoint: "http://127.0.0.1:8000/prompt",
			Timeout:  120 * time.Second,
		},
		LLM: LLMConfig{
			DefaultProvider: "gemini",
			Providers: []ProviderConfig{
				{
					Name:        "gemini",
					Type:        "gemini",
					BaseURL:     "https://generativelanguage.googleapis.com/v1beta",
					Model:       "gemini-1.5-pro-latest",
					ConnTimeout: 10 * time.Second,
					RespTimeout: 120 * time.Second,
				},
			},
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:     true,
				MaxFailures: 5,
				Timeout:     30 * time.Second,
				Interval:    60 * time.Second,
			},
		},
		Prompt: PromptConfig{
			MaxTokens:      8192,
			MaxPromptChars: 4000,
		},
		Canvas: CanvasConfig{
			Width:      1920,
			Height:     1080,
			Background: "#000000",
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(defaultDataDir(), "history.db"),
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Exporter:    "noop",
			ServiceName: "canvas-ai",
		},
	}
}

// Load reads a YAML config file over the defaults, applies env var overrides,
// decrypts secrets and validates. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := validatePermissions(path); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	ApplyEnvOverrides(cfg)

	if passphrase := os.Getenv("CANVASAI_CONFIG_KEY"); passphrase != "" {
		if err := decryptSecrets(cfg, passphrase); err != nil {
			return nil, fmt.Errorf("decrypt secrets: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides maps CANVASAI_* env vars to config fields.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CANVASAI_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("CANVASAI_SERVER_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitAndTrim(v, ",")
	}
	if v := os.Getenv("CANVASAI_SERVER_RATE_LIMIT_PER_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimitPerMin = n
		}
	}
	if v := os.Getenv("CANVASAI_SERVER_WS_TOKEN"); v != "" {
		cfg.Server.WSToken = v
	}
	if v := os.Getenv("CANVASAI_CLIENT_ENDPOINT"); v != "" {
		cfg.Client.Endpoint = v
	}
	if v := os.Getenv("CANVASAI_CLIENT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Client.Timeout = d
		}
	}
	if v := os.Getenv("CANVASAI_LLM_DEFAULT_PROVIDER"); v != "" {
		cfg.LLM.DefaultProvider = v
	}
	if v := os.Getenv("CANVASAI_HISTORY_ENABLED"); v != "" {
		cfg.History.Enabled = v == "true"
	}
	if v := os.Getenv("CANVASAI_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}
	if v := os.Getenv("CANVASAI_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("CANVASAI_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("CANVASAI_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("CANVASAI_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}

	// Per-provider API key overrides: CANVASAI_LLM_PROVIDER_<NAME>_API_KEY.
	// GEMINI_API_KEY fills any gemini provider left without a key.
	gemini := os.Getenv("GEMINI_API_KEY")
	for i := range cfg.LLM.Providers {
		p := &cfg.LLM.Providers[i]
		envKey := fmt.Sprintf("CANVASAI_LLM_PROVIDER_%s_API_KEY",
			strings.ToUpper(strings.ReplaceAll(p.Name, "-", "_")))
		if v := os.Getenv(envKey); v != "" {
			p.APIKey = v
		}
		if p.APIKey == "" && p.Type == "gemini" && gemini != "" {
			p.APIKey = gemini
		}
	}
}

// Provider returns the provider config with the given name.
func (c *Config) Provider(name string) (ProviderConfig, bool) {
	for _, p := range c.LLM.Providers {
		if p.Name == name {
			return p, true
		}
	}
	return ProviderConfig{}, false
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// validatePermissions checks the config file has restrictive permissions.
func validatePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	mode := info.Mode().Perm()
	// Allow 0600 and 0644 (readable by others but not writable)
	if mode&0o077 > 0o044 {
		return fmt.Errorf("config file %s has insecure permissions %o (want 0600 or 0644)", path, mode)
	}
	return nil
}
