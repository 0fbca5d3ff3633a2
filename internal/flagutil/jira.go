package flagutil

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/petr-muller/jironimo/internal/config"
)

// JiraOptions holds the command line overrides of the account configuration
type JiraOptions struct {
	ConfigFile   string
	endpoint     string
	login        string
	passwordFile string
	timeout      int

	fs *pflag.FlagSet
}

// AddPFlags injects Jira options into the given pflag.FlagSet
func (o *JiraOptions) AddPFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.ConfigFile, "config", "", fmt.Sprintf("Path to the configuration file (default %s)", config.DefaultConfigFile()))
	fs.StringVar(&o.endpoint, "jira.url", "", "Jira server URL, overrides account.url")
	fs.StringVar(&o.login, "jira.login", "", "Jira login, overrides account.login")
	fs.StringVar(&o.passwordFile, "jira.password-file", "", "Path to a file containing the Jira password, overrides account.password")
	fs.IntVar(&o.timeout, "jira.timeout", 0, "Request timeout in seconds, overrides account.timeout")

	o.fs = fs
}

// Validate checks the flag values that can be checked before loading the configuration
func (o *JiraOptions) Validate() error {
	if o.timeout < 0 {
		return fmt.Errorf("--jira.timeout must not be negative")
	}
	if o.passwordFile != "" {
		if _, err := os.Stat(o.passwordFile); err != nil {
			return fmt.Errorf("cannot use --jira.password-file: %w", err)
		}
	}
	return nil
}

// ConfigOption returns a config.Option applying the flags that were set on
// the command line over the configuration file
func (o *JiraOptions) ConfigOption() config.Option {
	return func(v *viper.Viper) error {
		if o.changed("jira.url") {
			v.Set("account.url", o.endpoint)
		}
		if o.changed("jira.login") {
			v.Set("account.login", o.login)
		}
		if o.changed("jira.timeout") {
			v.Set("account.timeout", o.timeout)
		}
		if o.passwordFile != "" {
			raw, err := os.ReadFile(o.passwordFile)
			if err != nil {
				return fmt.Errorf("cannot read password file: %w", err)
			}
			v.Set("account.password", strings.TrimRight(string(raw), "\r\n"))
		}
		return nil
	}
}

func (o *JiraOptions) changed(name string) bool {
	return o.fs != nil && o.fs.Changed(name)
}
