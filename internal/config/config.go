package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"painel/internal/log"
)

// Data backends
const (
	BackendFiles  = "files"
	BackendHTTP   = "http"
	BackendSheets = "sheets"
	BackendXLSX   = "xlsx"
)

var validBackends = []string{BackendFiles, BackendHTTP, BackendSheets, BackendXLSX}

type Config struct {
	// HTTP Server
	Port               string `yaml:"port"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`

	// Backend selection
	DataBackend string `yaml:"data_backend"`

	// JSON documents (files and http backends)
	DataDir         string `yaml:"data_dir"`
	DataBaseURL     string `yaml:"data_base_url"`
	StructuredDoc   string `yaml:"structured_doc"`
	VerificationDoc string `yaml:"verification_doc"`

	// Workbook (xlsx backend)
	WorkbookPath string `yaml:"workbook_path"`

	// Google Sheets (sheets backend)
	GoogleSpreadsheetID   string `yaml:"google_spreadsheet_id"`
	GoogleCredentialsFile string `yaml:"google_credentials_file"`
	GoogleCredentialsJSON string `yaml:"-"`
	GoogleOAuthClientFile string `yaml:"google_oauth_client_file"`
	GoogleOAuthClientJSON string `yaml:"-"`
	GoogleOAuthTokenFile  string `yaml:"google_oauth_token_file"`

	// Dashboard
	PageSize    int           `yaml:"page_size"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
	LoadTimeout time.Duration `yaml:"load_timeout"`

	// AMQP load events (optional)
	AMQPURL      string `yaml:"amqp_url"`
	AMQPExchange string `yaml:"amqp_exchange"`

	LogLevel string `yaml:"log_level"`

	// ConfigFile is the YAML overlay that was applied, if any.
	ConfigFile string `yaml:"-"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Port:               "8080",
		RateLimitPerMinute: 60,
		DataBackend:        BackendFiles,
		DataDir:            "./data",
		PageSize:           15,
		CacheTTL:           5 * time.Minute,
		LoadTimeout:        30 * time.Second,
		AMQPExchange:       "painel",
		LogLevel:           "info",
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE (if set), then environment variables.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	c.ConfigFile = path
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute)

	c.DataBackend = getEnv("DATA_BACKEND", c.DataBackend)
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.DataBaseURL = getEnv("DATA_BASE_URL", c.DataBaseURL)
	c.StructuredDoc = getEnv("STRUCTURED_DOC", c.StructuredDoc)
	c.VerificationDoc = getEnv("VERIFICATION_DOC", c.VerificationDoc)
	c.WorkbookPath = getEnv("WORKBOOK_PATH", c.WorkbookPath)

	c.GoogleSpreadsheetID = getEnv("GOOGLE_SPREADSHEET_ID", c.GoogleSpreadsheetID)
	c.GoogleCredentialsFile = getEnv("GOOGLE_APPLICATION_CREDENTIALS", c.GoogleCredentialsFile)
	c.GoogleCredentialsJSON = getEnv("GOOGLE_CREDENTIALS_JSON", c.GoogleCredentialsJSON)
	c.GoogleOAuthClientFile = getEnv("GOOGLE_OAUTH_CLIENT_FILE", c.GoogleOAuthClientFile)
	c.GoogleOAuthClientJSON = getEnv("GOOGLE_OAUTH_CLIENT_JSON", c.GoogleOAuthClientJSON)
	c.GoogleOAuthTokenFile = getEnv("GOOGLE_OAUTH_TOKEN_FILE", c.GoogleOAuthTokenFile)

	c.PageSize = getEnvInt("PAGE_SIZE", c.PageSize)
	c.CacheTTL = getEnvDuration("CACHE_TTL", c.CacheTTL)
	c.LoadTimeout = getEnvDuration("LOAD_TIMEOUT", c.LoadTimeout)

	c.AMQPURL = getEnv("AMQP_URL", c.AMQPURL)
	c.AMQPExchange = getEnv("AMQP_EXCHANGE", c.AMQPExchange)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendFiles:
		if c.DataDir == "" {
			errors = append(errors, "data directory cannot be empty when using files backend")
		} else if info, err := os.Stat(c.DataDir); err != nil || !info.IsDir() {
			errors = append(errors, fmt.Sprintf("data directory does not exist: %s", c.DataDir))
		}
	case BackendHTTP:
		if u, err := url.Parse(c.DataBaseURL); err != nil || c.DataBaseURL == "" {
			errors = append(errors, fmt.Sprintf("invalid data base URL '%s'", c.DataBaseURL))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid data base URL scheme '%s': must be 'http' or 'https'", u.Scheme))
		}
	case BackendXLSX:
		if c.WorkbookPath == "" {
			errors = append(errors, "workbook path is required when using xlsx backend")
		} else if _, err := os.Stat(c.WorkbookPath); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("workbook does not exist: %s", c.WorkbookPath))
		}
	case BackendSheets:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		hasServiceAccount := c.GoogleCredentialsFile != "" || c.GoogleCredentialsJSON != ""
		hasOAuth := (c.GoogleOAuthClientFile != "" || c.GoogleOAuthClientJSON != "") && c.GoogleOAuthTokenFile != ""
		if !hasServiceAccount && !hasOAuth {
			errors = append(errors, "either GOOGLE_APPLICATION_CREDENTIALS, GOOGLE_CREDENTIALS_JSON or an OAuth client with GOOGLE_OAUTH_TOKEN_FILE must be provided for sheets backend")
		}
		if c.GoogleCredentialsFile != "" {
			if _, err := os.Stat(c.GoogleCredentialsFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google credentials file does not exist: %s", c.GoogleCredentialsFile))
			}
		}
	}

	if c.PageSize < 1 || c.PageSize > 100 {
		errors = append(errors, fmt.Sprintf("invalid page size %d: must be between 1 and 100", c.PageSize))
	}
	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}
	if c.LoadTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid load timeout %v: must be at least 1 second", c.LoadTimeout))
	} else if c.LoadTimeout > 10*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid load timeout %v: must be at most 10 minutes", c.LoadTimeout))
	}
	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
