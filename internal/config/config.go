package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/petr-muller/jironimo/internal/jironimo/jira"
)

const (
	envPrefix = "JIRONIMO"

	// DefaultMaxResults is the default page size of a workspace
	DefaultMaxResults = 16
)

// Option customizes the viper instance before the configuration is read
type Option func(v *viper.Viper) error

// Load loads the configuration from configPath, or from the default location
// when configPath is empty. A missing default file is not an error.
func Load(configPath string, opts ...Option) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigFile()
	}
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	normalizeTimeout(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	normalize(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("account.url", "")
	v.SetDefault("account.login", "")
	v.SetDefault("account.password", "")
	v.SetDefault("account.timeout", jira.DefaultTimeoutSeconds)
	v.SetDefault("account.http.login", "")
	v.SetDefault("account.http.password", "")
	v.SetDefault("account.rate_limit", 0)

	v.SetDefault("search.max_results", DefaultMaxResults)

	v.SetDefault("timer.workspace", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
}

// normalizeTimeout replaces a timeout that is not an integer with the default
func normalizeTimeout(v *viper.Viper) {
	raw := strings.TrimSpace(v.GetString("account.timeout"))
	timeout, err := strconv.Atoi(raw)
	if err != nil {
		timeout = jira.DefaultTimeoutSeconds
	}
	v.Set("account.timeout", timeout)
}

func normalize(cfg *Config) {
	cfg.Account.URL = strings.TrimRight(strings.TrimSpace(cfg.Account.URL), "/")
	if cfg.Account.Timeout < 1 {
		cfg.Account.Timeout = jira.DefaultTimeoutSeconds
	}
	if cfg.Search.MaxResults < 1 {
		cfg.Search.MaxResults = DefaultMaxResults
	}
	if cfg.Timer.Workspace < 0 {
		cfg.Timer.Workspace = 0
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Account.URL == "" {
		return fmt.Errorf("account.url is required")
	}

	u, err := url.Parse(cfg.Account.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("account.url must be an absolute URL: %q", cfg.Account.URL)
	}

	if cfg.Account.Login == "" {
		return fmt.Errorf("account.login is required")
	}

	if cfg.Account.RateLimit < 0 {
		return fmt.Errorf("account.rate_limit must not be negative")
	}

	if _, err := logrus.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}

// JiraAccount converts the account section to client credentials
func (a AccountConfig) JiraAccount() jira.Account {
	account := jira.Account{
		BaseURL:        a.URL,
		Login:          a.Login,
		Password:       a.Password,
		TimeoutSeconds: a.Timeout,
	}
	if a.HTTP.Login != "" {
		account.HTTPAuth = &jira.BasicAuth{Login: a.HTTP.Login, Password: a.HTTP.Password}
	}
	return account.Normalized()
}
