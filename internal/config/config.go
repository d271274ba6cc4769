package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"csvquery/internal/errors"
	"csvquery/internal/profiling"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	AI       AIConfig
	Agent    AgentConfig
	Server   ServerConfig
	Overview OverviewConfig
	Database DatabaseConfig
}

// AIConfig holds the hosted agent settings
type AIConfig struct {
	GroqKey     string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// AgentConfig bounds how much of a table is sent with each question
type AgentConfig struct {
	MaxRows      int
	MaxColumns   int
	MaxCellChars int
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port           string
	GinMode        string
	MaxUploadBytes int64
	SessionIdle    time.Duration
	SecureCookie   bool
}

// OverviewConfig selects the overview sections rendered after an upload
type OverviewConfig struct {
	Sections    []profiling.Section
	PreviewRows int
}

// DatabaseConfig holds the optional question log connection
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether a question log database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// Load reads configuration from environment variables. Values from the YAML
// file named by CONFIG_FILE act as defaults that the environment overrides.
func Load() (*Config, error) {
	src := source{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		overlay, err := readOverlay(path)
		if err != nil {
			return nil, err
		}
		src.file = overlay
	}
	return load(src)
}

func load(src source) (*Config, error) {
	config := &Config{}

	aiConfig, err := loadAIConfig(src)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AI configuration")
	}
	config.AI = *aiConfig

	config.Agent = AgentConfig{
		MaxRows:      src.getEnvIntOrDefault("AGENT_MAX_ROWS", 500),
		MaxColumns:   src.getEnvIntOrDefault("AGENT_MAX_COLUMNS", 50),
		MaxCellChars: src.getEnvIntOrDefault("AGENT_MAX_CELL_CHARS", 200),
	}

	config.Server = ServerConfig{
		Port:           src.getEnvOrDefault("PORT", "8080"),
		GinMode:        src.getEnvOrDefault("GIN_MODE", "release"),
		MaxUploadBytes: int64(src.getEnvIntOrDefault("MAX_UPLOAD_BYTES", 50<<20)),
		SessionIdle:    src.getEnvDurationOrDefault("SESSION_IDLE_TIMEOUT", 24*time.Hour),
		SecureCookie:   src.getEnvBoolOrDefault("COOKIE_SECURE", false),
	}

	overviewConfig, err := loadOverviewConfig(src)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load overview configuration")
	}
	config.Overview = *overviewConfig

	config.Database = DatabaseConfig{
		URL: src.getEnvOrDefault("DATABASE_URL", ""),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadAIConfig(src source) (*AIConfig, error) {
	groqKey := strings.TrimSpace(src.getEnvOrDefault("GROQ_API_KEY", ""))
	if groqKey == "" {
		return nil, errors.ConfigInvalid("GROQ_API_KEY is required")
	}

	return &AIConfig{
		GroqKey:     groqKey,
		Model:       src.getEnvOrDefault("LLM_MODEL", "llama3-70b-8192"),
		BaseURL:     src.getEnvOrDefault("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		MaxTokens:   src.getEnvIntOrDefault("LLM_MAX_TOKENS", 1024),
		Temperature: src.getEnvFloatOrDefault("LLM_TEMPERATURE", 0.0),
		Timeout:     src.getEnvDurationOrDefault("AGENT_TIMEOUT", 60*time.Second),
	}, nil
}

func loadOverviewConfig(src source) (*OverviewConfig, error) {
	sections := profiling.AllSections()
	if raw := src.getEnvOrDefault("OVERVIEW_SECTIONS", ""); raw != "" {
		parsed, err := profiling.ParseSections(strings.Split(raw, ","))
		if err != nil {
			return nil, errors.ConfigInvalid(err.Error())
		}
		sections = parsed
	}

	return &OverviewConfig{
		Sections:    sections,
		PreviewRows: src.getEnvIntOrDefault("OVERVIEW_PREVIEW_ROWS", 5),
	}, nil
}

func validateConfig(config *Config) error {
	if config.AI.Timeout <= 0 {
		return errors.ConfigInvalid("AGENT_TIMEOUT must be positive")
	}
	if config.AI.MaxTokens <= 0 {
		return errors.ConfigInvalid("LLM_MAX_TOKENS must be positive")
	}
	if config.Server.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_BYTES must be positive")
	}
	if config.Agent.MaxRows < 0 || config.Agent.MaxColumns < 0 || config.Agent.MaxCellChars < 0 {
		return errors.ConfigInvalid("agent limits cannot be negative")
	}
	return nil
}

// readOverlay reads a flat YAML mapping of variable names to values
func readOverlay(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &errors.AppError{Code: errors.CodeConfigInvalid, Message: fmt.Sprintf("cannot read config file %s", path), Cause: err}
	}

	var values map[string]interface{}
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, &errors.AppError{Code: errors.CodeConfigInvalid, Message: fmt.Sprintf("config file %s is not valid YAML", path), Cause: err}
	}

	overlay := make(map[string]string, len(values))
	for key, value := range values {
		switch v := value.(type) {
		case nil:
		case []interface{}:
			parts := make([]string, len(v))
			for i, p := range v {
				parts[i] = fmt.Sprint(p)
			}
			overlay[strings.ToUpper(key)] = strings.Join(parts, ",")
		default:
			overlay[strings.ToUpper(key)] = fmt.Sprint(v)
		}
	}
	return overlay, nil
}

// source resolves a variable from the environment, then the overlay file
type source struct {
	file map[string]string
}

func (s source) lookup(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return s.file[key]
}

// Helper functions for environment variable parsing
func (s source) getEnvOrDefault(key, defaultValue string) string {
	if value := s.lookup(key); value != "" {
		return value
	}
	return defaultValue
}

func (s source) getEnvIntOrDefault(key string, defaultValue int) int {
	if value := s.lookup(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (s source) getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := s.lookup(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func (s source) getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := s.lookup(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func (s source) getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := s.lookup(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
