package jira

import (
	"strings"
)

const (
	// DefaultTimeoutSeconds is used when the configured timeout is unset or not positive
	DefaultTimeoutSeconds = 10
)

// BasicAuth is a login/password pair
type BasicAuth struct {
	Login    string
	Password string
}

// Account holds the credentials and endpoint of a JIRA server
type Account struct {
	// BaseURL is the server root, never ending with a slash
	BaseURL        string
	Login          string
	Password       string
	TimeoutSeconds int
	// HTTPAuth are optional credentials for an HTTP auth gate in front of JIRA
	HTTPAuth *BasicAuth
}

// Normalized returns a copy of the account with the base URL trimmed of
// trailing slashes and the timeout defaulted
func (a Account) Normalized() Account {
	a.BaseURL = strings.TrimRight(a.BaseURL, "/")
	if a.TimeoutSeconds < 1 {
		a.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if a.HTTPAuth != nil && a.HTTPAuth.Login == "" {
		a.HTTPAuth = nil
	}
	return a
}

// IssueURL returns the browser URL of an issue
func (a Account) IssueURL(key string) string {
	return a.BaseURL + "/browse/" + key
}
