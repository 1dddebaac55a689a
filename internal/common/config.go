package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Atlassian AtlassianConfig `toml:"atlassian"`
	Search    SearchConfig    `toml:"search"`
	Ticket    TicketConfig    `toml:"ticket"`
	Answer    AnswerConfig    `toml:"answer"`
	Storage   StorageConfig   `toml:"storage"`
	Logging   LoggingConfig   `toml:"logging"`
	MCP       MCPConfig       `toml:"mcp"`
	Gemini    GeminiConfig    `toml:"gemini"`
	Claude    ClaudeConfig    `toml:"claude"`
	OpenAI    OpenAIConfig    `toml:"openai"`
	LLM       LLMConfig       `toml:"llm"`
}

// AtlassianConfig holds the Confluence/Jira connection settings.
// Credentials may also come from the connection store; see connections.Resolve.
type AtlassianConfig struct {
	BaseURL    string        `toml:"base_url"`    // Confluence site, e.g. https://example.atlassian.net
	Username   string        `toml:"username"`    // Atlassian account email (basic auth)
	APIToken   string        `toml:"api_token"`   // API token or personal access token
	JiraURL    string        `toml:"jira_url"`    // Jira site (default: base_url)
	AuthType   string        `toml:"auth_type"`   // "basic" (cloud) or "bearer" (data center PAT)
	Connection string        `toml:"connection"`  // Name of the stored key/value connection
	Timeout    time.Duration `toml:"timeout"`     // HTTP request timeout
	RateLimit  int           `toml:"rate_limit"`  // Requests per second against the Atlassian APIs
	UserAgent  string        `toml:"user_agent"`  // User-Agent header
}

// SearchConfig controls page search defaults
type SearchConfig struct {
	DefaultLimit     int    `toml:"default_limit"`     // Pages returned by a plain search (default: 5)
	ContributorLimit int    `toml:"contributor_limit"` // Pages scanned by a contributor search (default: 20)
	ContextChars     int    `toml:"context_chars"`     // Characters either side of a contributor match (default: 120)
	PreviewChars     int    `toml:"preview_chars"`     // Body preview length in search reports (default: 300)
	PreviewFormat    string `toml:"preview_format"`    // "text" (markup stripped) or "raw" storage markup in previews
}

// TicketConfig controls how tickets are resolved
type TicketConfig struct {
	Source       string `toml:"source"`        // "confluence" (page title = summary) or "jira"
	ContextLimit int    `toml:"context_limit"` // Pages searched for ticket context (default: 5)
}

// AnswerConfig controls question answering over retrieved pages
type AnswerConfig struct {
	ContextFormat string  `toml:"context_format"` // "markdown" or "raw" page bodies in the prompt
	Model         string  `toml:"model"`          // Model override, provider prefixes allowed (claude/, gemini/, openai/)
	Temperature   float32 `toml:"temperature"`    // Answer temperature (default: 0)
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path string `toml:"path"` // Database directory path for stored connections
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "stderr", "file"
}

// MCPConfig configures the tool server transport
type MCPConfig struct {
	HTTPAddr string `toml:"http_addr"` // Serve streamable HTTP + /metrics on this address instead of stdio
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey    string `toml:"api_key"`
	Model     string `toml:"model"`
	MaxTokens int    `toml:"max_tokens"`
}

// OpenAIConfig contains configuration for OpenAI-compatible chat endpoints
type OpenAIConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"` // Optional, for compatible gateways
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	LLMProviderGemini LLMProvider = "gemini"
	LLMProviderClaude LLMProvider = "claude"
	LLMProviderOpenAI LLMProvider = "openai"
)

// LLMConfig selects the provider used when a model string carries no prefix
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"`
	Timeout         string      `toml:"timeout"`
}

// Ticket sources
const (
	TicketSourceConfluence = "confluence"
	TicketSourceJira       = "jira"
)

// Preview formats for page bodies in search and ticket reports
const (
	PreviewFormatText = "text"
	PreviewFormatRaw  = "raw"
)

// Environment variables read for the Atlassian connection. These names are
// shared with the stored key/value connection.
const (
	EnvConfluenceURL = "CONFLUENCE_URL"
	EnvUsername      = "ATLASSIAN_USERNAME"
	EnvAPIToken      = "ATLASSIAN_API_TOKEN"
	EnvJiraURL       = "JIRA_URL"
)

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Atlassian: AtlassianConfig{
			AuthType:   "basic",
			Connection: "confluence_creds",
			Timeout:    30 * time.Second,
			RateLimit:  5,
			UserAgent:  "ticketctx/" + Version,
		},
		Search: SearchConfig{
			DefaultLimit:     5,
			ContributorLimit: 20,
			ContextChars:     120,
			PreviewChars:     300,
			PreviewFormat:    PreviewFormatText,
		},
		Ticket: TicketConfig{
			Source:       TicketSourceConfluence,
			ContextLimit: 5,
		},
		Answer: AnswerConfig{
			ContextFormat: "markdown",
			Temperature:   0,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/connections",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stderr"},
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash",
		},
		Claude: ClaudeConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 4096,
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o",
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderOpenAI,
			Timeout:         "2m",
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2 -> ... -> .env -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// .env never overrides variables already present in the process environment
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if v := os.Getenv(EnvConfluenceURL); v != "" {
		config.Atlassian.BaseURL = v
	}
	if v := os.Getenv(EnvUsername); v != "" {
		config.Atlassian.Username = v
	}
	if v := os.Getenv(EnvAPIToken); v != "" {
		config.Atlassian.APIToken = v
	}
	if v := os.Getenv(EnvJiraURL); v != "" {
		config.Atlassian.JiraURL = v
	}
	if v := os.Getenv("TICKETCTX_AUTH_TYPE"); v != "" {
		config.Atlassian.AuthType = v
	}
	if v := os.Getenv("TICKETCTX_CONNECTION"); v != "" {
		config.Atlassian.Connection = v
	}
	if v := os.Getenv("TICKETCTX_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.Atlassian.Timeout = d
		}
	}
	if v := os.Getenv("TICKETCTX_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Atlassian.RateLimit = n
		}
	}

	if v := os.Getenv("TICKETCTX_TICKET_SOURCE"); v != "" {
		config.Ticket.Source = v
	}
	if v := os.Getenv("TICKETCTX_BADGER_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}

	if v := os.Getenv("TICKETCTX_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("TICKETCTX_LOG_OUTPUT"); v != "" {
		outputs := []string{}
		for _, o := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	if v := os.Getenv("TICKETCTX_MCP_HTTP_ADDR"); v != "" {
		config.MCP.HTTPAddr = v
	}

	// LLM keys: provider-standard names first, TICKETCTX_ prefix takes priority
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		config.Claude.APIKey = v
	}
	if v := os.Getenv("TICKETCTX_CLAUDE_API_KEY"); v != "" {
		config.Claude.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		config.Gemini.APIKey = v
	}
	if v := os.Getenv("TICKETCTX_GEMINI_API_KEY"); v != "" {
		config.Gemini.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		config.OpenAI.APIKey = v
	}
	if v := os.Getenv("TICKETCTX_OPENAI_API_KEY"); v != "" {
		config.OpenAI.APIKey = v
	}
	if v := os.Getenv("TICKETCTX_LLM_DEFAULT_PROVIDER"); v != "" {
		config.LLM.DefaultProvider = LLMProvider(v)
	}
	if v := os.Getenv("TICKETCTX_ANSWER_MODEL"); v != "" {
		config.Answer.Model = v
	}
}

// Validate checks the non-credential settings. Missing credentials are not an
// error here: they are reported per operation as configuration errors.
func (c *Config) Validate() error {
	v := validator.New()

	settings := struct {
		AuthType      string `validate:"oneof=basic bearer"`
		RateLimit     int    `validate:"gte=1"`
		TicketSource  string `validate:"oneof=confluence jira"`
		ContextLimit  int    `validate:"gte=1"`
		DefaultLimit  int    `validate:"gte=1"`
		ContribLimit  int    `validate:"gte=1"`
		ContextChars  int    `validate:"gte=0"`
		PreviewFormat string `validate:"oneof=text raw"`
		ContextFormat string `validate:"oneof=markdown raw"`
		Provider      string `validate:"oneof=gemini claude openai"`
	}{
		AuthType:      c.Atlassian.AuthType,
		RateLimit:     c.Atlassian.RateLimit,
		TicketSource:  c.Ticket.Source,
		ContextLimit:  c.Ticket.ContextLimit,
		DefaultLimit:  c.Search.DefaultLimit,
		ContribLimit:  c.Search.ContributorLimit,
		ContextChars:  c.Search.ContextChars,
		PreviewFormat: c.Search.PreviewFormat,
		ContextFormat: c.Answer.ContextFormat,
		Provider:      string(c.LLM.DefaultProvider),
	}

	if err := v.Struct(settings); err != nil {
		return NewError(KindConfiguration, "config.validate", err)
	}
	return nil
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, ticketSource, logLevel string) {
	if ticketSource != "" {
		config.Ticket.Source = ticketSource
	}
	if logLevel != "" {
		config.Logging.Level = logLevel
	}
}
