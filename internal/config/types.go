package config

// Config is the account, search, timer and logging configuration
type Config struct {
	Account AccountConfig `mapstructure:"account"`
	Search  SearchConfig  `mapstructure:"search"`
	Timer   TimerConfig   `mapstructure:"timer"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// AccountConfig holds the JIRA server and credentials
type AccountConfig struct {
	URL      string         `mapstructure:"url"`
	Login    string         `mapstructure:"login"`
	Password string         `mapstructure:"password"`
	Timeout  int            `mapstructure:"timeout"`
	HTTP     HTTPAuthConfig `mapstructure:"http"`
	// RateLimit is the maximum number of requests per second, 0 disables it
	RateLimit float64 `mapstructure:"rate_limit"`
}

// HTTPAuthConfig holds credentials for an HTTP auth gate in front of JIRA
type HTTPAuthConfig struct {
	Login    string `mapstructure:"login"`
	Password string `mapstructure:"password"`
}

// SearchConfig holds the search defaults
type SearchConfig struct {
	MaxResults int `mapstructure:"max_results"`
}

// TimerConfig holds the polling configuration
type TimerConfig struct {
	// Workspace is the refresh interval of the active workspace in minutes, 0 disables polling
	Workspace int `mapstructure:"workspace"`
}

// LoggingConfig holds the logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}
