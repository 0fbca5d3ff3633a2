package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"

	gojira "github.com/andygrunwald/go-jira"
)

// LoginReasonHeader is set by JIRA's Seraph filter when authentication fails
const LoginReasonHeader = "X-Seraph-LoginReason"

// ErrNoSession is returned when the session identity is requested before a
// session check succeeded
var ErrNoSession = errors.New("no authenticated session")

// Kind classifies a failed request
type Kind int

const (
	// KindUnknown is a failure with no recognizable explanation
	KindUnknown Kind = iota
	// KindTransport is a network failure or a timeout, without an HTTP status
	KindTransport
	// KindAuth is a 4xx response with a recognized login reason
	KindAuth
	// KindServerConfig is an HTTP 500, usually remote API calls being disabled
	KindServerConfig
	// KindAPI is a response carrying JIRA's own error messages
	KindAPI
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAuth:
		return "auth"
	case KindServerConfig:
		return "server-config"
	case KindAPI:
		return "api"
	default:
		return "unknown"
	}
}

var loginReasons = map[string]string{
	"AUTHENTICATION_DENIED": "The user is not allowed to even attempt a login.",
	"AUTHENTICATED_FAILED":  "The user could not be authenticated.",
	"AUTHORISATION_FAILED":  "The user could not be authorised.",
	"OUT":                   `The user has in fact logged "out"`,
}

const (
	serverConfigMessage = `Check the JIRA configuration. Make sure the "Allow Remote API Calls" is turned ON under Administration > General Configuration.`
	unknownMessage      = "Unknown response from the JIRA API"
	checkSettingsHint   = "Please check the settings!"
)

// Error is the normalized form of every failed request. Messages is never empty.
type Error struct {
	Kind       Kind
	StatusCode int
	StatusText string
	Messages   []string
	// Err is the underlying transport error, if any
	Err error
}

func (e *Error) Error() string {
	status := e.StatusText
	if e.StatusCode != 0 {
		status = fmt.Sprintf("%d %s", e.StatusCode, e.StatusText)
	}
	return fmt.Sprintf("jira request failed (%s): %s", status, strings.Join(e.Messages, "; "))
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify normalizes a non-successful HTTP response. It never fails: an empty
// or malformed body falls back to the default messages.
func Classify(statusCode int, statusText string, header http.Header, body []byte) *Error {
	e := &Error{StatusCode: statusCode, StatusText: statusText}

	if statusCode > 400 && statusCode < 500 {
		if message, ok := loginReasons[header.Get(LoginReasonHeader)]; ok {
			e.Kind = KindAuth
			e.Messages = []string{message}
			return e
		}
	}

	if statusCode == http.StatusInternalServerError {
		e.Kind = KindServerConfig
		e.Messages = []string{serverConfigMessage}
		return e
	}

	if messages := apiMessages(body); len(messages) > 0 {
		e.Kind = KindAPI
		e.Messages = messages
		return e
	}

	e.Kind = KindUnknown
	e.Messages = defaultMessages()
	return e
}

// ClassifyTransport normalizes a request that never produced an HTTP response
func ClassifyTransport(err error) *Error {
	statusText := "error"
	switch {
	case isTimeout(err):
		statusText = "timeout"
	case errors.Is(err, context.Canceled):
		statusText = "abort"
	}
	return &Error{
		Kind:       KindTransport,
		StatusText: statusText,
		Messages:   defaultMessages(),
		Err:        err,
	}
}

// apiMessages extracts JIRA's error list; field errors are used when the
// list itself is empty
func apiMessages(body []byte) []string {
	if len(body) == 0 {
		return nil
	}

	var apiErr gojira.Error
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return nil
	}
	if len(apiErr.ErrorMessages) > 0 {
		return apiErr.ErrorMessages
	}

	fields := make([]string, 0, len(apiErr.Errors))
	for field := range apiErr.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var messages []string
	for _, field := range fields {
		messages = append(messages, fmt.Sprintf("%s: %s", field, apiErr.Errors[field]))
	}
	return messages
}

func defaultMessages() []string {
	return []string{unknownMessage, checkSettingsHint}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// statusText returns the reason phrase of a response, e.g. "Not Found"
func statusText(resp *http.Response) string {
	if text, ok := strings.CutPrefix(resp.Status, fmt.Sprintf("%d ", resp.StatusCode)); ok {
		return text
	}
	if resp.Status != "" {
		return resp.Status
	}
	return http.StatusText(resp.StatusCode)
}
