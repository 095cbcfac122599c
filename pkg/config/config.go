package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultAPIBaseURL is the Twitter REST API v1.1 root
	DefaultAPIBaseURL = "https://api.twitter.com/1.1"

	// MaxCount is the largest page the favorites endpoint returns
	MaxCount = 200
)

// Strategies understood by the duplicate detector
var validStrategies = map[string]bool{
	"id": true, "text": true, "url": true,
}

// Config holds all configuration options for favdupes
type Config struct {
	// Twitter API credentials and transport
	Twitter TwitterConfig `yaml:"twitter" toml:"twitter" json:"twitter"`

	// Which favorites to fetch
	Favorites FavoritesConfig `yaml:"favorites" toml:"favorites" json:"favorites"`

	// Duplicate detection
	Dupes DupesConfig `yaml:"dupes" toml:"dupes" json:"dupes"`

	// SQLite export
	Export ExportConfig `yaml:"export" toml:"export" json:"export"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" toml:"logging" json:"logging"`
}

// TwitterConfig holds the four OAuth 1.0a secrets and client settings
type TwitterConfig struct {
	ConsumerKey       string `yaml:"consumer_key" toml:"consumer_key" json:"consumer_key"`
	ConsumerSecret    string `yaml:"consumer_secret" toml:"consumer_secret" json:"consumer_secret"`
	AccessToken       string `yaml:"access_token" toml:"access_token" json:"access_token"`
	AccessTokenSecret string `yaml:"access_token_secret" toml:"access_token_secret" json:"access_token_secret"`
	APIBaseURL        string `yaml:"api_base_url" toml:"api_base_url" json:"api_base_url"`
	TimeoutSeconds    int    `yaml:"timeout_seconds" toml:"timeout_seconds" json:"timeout_seconds"`
}

// FavoritesConfig selects whose likes are fetched and how many
type FavoritesConfig struct {
	// ScreenName is empty for the authenticated user
	ScreenName string `yaml:"screen_name" toml:"screen_name" json:"screen_name"`
	Count      int    `yaml:"count" toml:"count" json:"count"`
}

// DupesConfig holds duplicate detection settings
type DupesConfig struct {
	Strategy string `yaml:"strategy" toml:"strategy" json:"strategy"`
	DryRun   bool   `yaml:"dry_run" toml:"dry_run" json:"dry_run"`
}

// ExportConfig holds the SQLite export location
type ExportConfig struct {
	DatabasePath string `yaml:"database_path" toml:"database_path" json:"database_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" toml:"level" json:"level"`
	// Format is "console" or "json"
	Format string `yaml:"format" toml:"format" json:"format"`
	File   string `yaml:"file" toml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Twitter: TwitterConfig{
			APIBaseURL:     DefaultAPIBaseURL,
			TimeoutSeconds: 30,
		},
		Favorites: FavoritesConfig{
			Count: MaxCount,
		},
		Dupes: DupesConfig{
			Strategy: "text",
			DryRun:   true,
		},
		Export: ExportConfig{
			DatabasePath: "./favdupes.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("FAVDUPES_CONSUMER_KEY"); v != "" {
		c.Twitter.ConsumerKey = v
	}
	if v := os.Getenv("FAVDUPES_CONSUMER_SECRET"); v != "" {
		c.Twitter.ConsumerSecret = v
	}
	if v := os.Getenv("FAVDUPES_ACCESS_TOKEN"); v != "" {
		c.Twitter.AccessToken = v
	}
	if v := os.Getenv("FAVDUPES_ACCESS_TOKEN_SECRET"); v != "" {
		c.Twitter.AccessTokenSecret = v
	}
	if v := os.Getenv("FAVDUPES_API_BASE_URL"); v != "" {
		c.Twitter.APIBaseURL = v
	}
	if v := os.Getenv("FAVDUPES_SCREEN_NAME"); v != "" {
		c.Favorites.ScreenName = v
	}
	if v := os.Getenv("FAVDUPES_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FAVDUPES_COUNT: %w", err)
		}
		c.Favorites.Count = n
	}
	if v := os.Getenv("FAVDUPES_DUPE_STRATEGY"); v != "" {
		c.Dupes.Strategy = strings.ToLower(v)
	}
	if v := os.Getenv("FAVDUPES_DATABASE"); v != "" {
		c.Export.DatabasePath = v
	}
	if v := os.Getenv("FAVDUPES_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or TOML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return nil
}

// findConfigFile searches for a config file in standard locations
func findConfigFile() string {
	home := os.Getenv("HOME")
	var locations []string
	for _, ext := range []string{"yaml", "yml", "toml"} {
		locations = append(locations, ".favdupes."+ext)
	}
	for _, ext := range []string{"yaml", "yml", "toml"} {
		locations = append(locations, filepath.Join(home, ".config", "favdupes", "config."+ext))
	}
	for _, ext := range []string{"yaml", "yml", "toml"} {
		locations = append(locations, filepath.Join(home, ".favdupes."+ext))
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks that the configuration is structurally valid.
// Credentials are not required here, see ValidateForAPI.
func (c *Config) Validate() error {
	var errs []error

	if c.Twitter.APIBaseURL == "" {
		errs = append(errs, errors.New("API base URL is required"))
	}
	if c.Twitter.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}

	if c.Favorites.Count <= 0 || c.Favorites.Count > MaxCount {
		errs = append(errs, fmt.Errorf("count must be between 1 and %d", MaxCount))
	}

	if !validStrategies[strings.ToLower(c.Dupes.Strategy)] {
		errs = append(errs, fmt.Errorf("invalid dupe strategy %q (id, text or url)", c.Dupes.Strategy))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}
	if f := strings.ToLower(c.Logging.Format); f != "console" && f != "json" {
		errs = append(errs, errors.New("invalid log format"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// HasCredentials reports whether all four secrets are set
func (c *Config) HasCredentials() bool {
	t := c.Twitter
	return t.ConsumerKey != "" && t.ConsumerSecret != "" && t.AccessToken != "" && t.AccessTokenSecret != ""
}

// ValidateForAPI checks the configuration needed to call the API.
func (c *Config) ValidateForAPI() error {
	if err := c.Validate(); err != nil {
		return err
	}

	var errs []error
	if c.Twitter.ConsumerKey == "" {
		errs = append(errs, errors.New("consumer key is required"))
	}
	if c.Twitter.ConsumerSecret == "" {
		errs = append(errs, errors.New("consumer secret is required"))
	}
	if c.Twitter.AccessToken == "" {
		errs = append(errs, errors.New("access token is required"))
	}
	if c.Twitter.AccessTokenSecret == "" {
		errs = append(errs, errors.New("access token secret is required"))
	}

	return errors.Join(errs...)
}

// Save saves the configuration to a file, TOML or YAML by extension
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		data, err = toml.Marshal(c)
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["screen-name"].(string); ok && v != "" {
		c.Favorites.ScreenName = v
	}
	if v, ok := flags["count"].(int); ok && v != 0 {
		c.Favorites.Count = v
	}
	if v, ok := flags["strategy"].(string); ok && v != "" {
		c.Dupes.Strategy = strings.ToLower(v)
	}
	if v, ok := flags["dry-run"].(bool); ok {
		c.Dupes.DryRun = v
	}
	if v, ok := flags["database"].(string); ok && v != "" {
		c.Export.DatabasePath = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// godotenv never overrides variables that are already set
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".favdupes.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
