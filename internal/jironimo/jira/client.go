package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	gojira "github.com/andygrunwald/go-jira"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	sessionURN        = "/auth/latest/session"
	searchURN         = "/api/latest/search"
	favouriteURN      = "/api/latest/filter/favourite"
	assigneeURNFormat = "/api/latest/issue/%s/assignee"
	worklogURNFormat  = "/api/latest/issue/%s/worklog?adjustEstimate=auto"
	transitionsFormat = "/api/latest/issue/%s/transitions?expand=transitions.fields"
)

// SearchResult is a page of issues matching a JQL query
type SearchResult struct {
	StartAt    int            `json:"startAt"`
	MaxResults int            `json:"maxResults"`
	Total      int            `json:"total"`
	Issues     []gojira.Issue `json:"issues"`
}

type transitionsResult struct {
	Transitions []gojira.Transition `json:"transitions"`
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the HTTP client used to execute requests
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit limits the client to rps requests per second. A non-positive
// rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger used to report failed requests
func WithLogger(logger *logrus.Entry) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client talks to the JIRA REST API on behalf of a single account
type Client struct {
	account    Account
	httpClient *http.Client
	executor   *gojira.Client
	sessions   *SessionCache
	notifier   *Notifier
	limiter    *rate.Limiter
	logger     *logrus.Entry
}

// NewClient creates a client for the account
func NewClient(account Account, opts ...Option) (*Client, error) {
	account = account.Normalized()
	if account.BaseURL == "" {
		return nil, fmt.Errorf("jira URL is required")
	}

	c := &Client{
		account:    account,
		httpClient: &http.Client{},
		sessions:   NewSessionCache(),
		notifier:   NewNotifier(),
		logger:     logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(c)
	}

	httpClient := c.httpClient
	if account.HTTPAuth != nil {
		gated := *httpClient
		gated.Transport = newGateTransport(httpClient.Transport, *account.HTTPAuth)
		httpClient = &gated
	}

	executor, err := gojira.NewClient(httpClient, account.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create JIRA client: %w", err)
	}
	c.executor = executor

	return c, nil
}

// Account returns the normalized account the client works with
func (c *Client) Account() Account {
	return c.account
}

// Notifier returns the notifier receiving the client's request failures
func (c *Client) Notifier() *Notifier {
	return c.notifier
}

// Call performs a request against the REST resource urn and decodes a JSON
// response into v, which may be nil. Failed requests return an *Error and are
// published to the notifier; an undecodable success body is returned as a
// plain error.
func (c *Client) Call(ctx context.Context, urn string, payload Payload, v any) error {
	d, err := BuildRequest(c.account, urn, payload)
	if err != nil {
		return err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return ClassifyTransport(err)
			}
			return c.fail(d, ClassifyTransport(err))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	req, err := d.HTTPRequest(ctx)
	if err != nil {
		return err
	}

	resp, err := c.executor.Do(req, nil)
	if resp == nil || resp.Response == nil {
		if errors.Is(err, context.Canceled) {
			// aborted by the caller, nobody needs to be told
			return ClassifyTransport(err)
		}
		return c.fail(d, ClassifyTransport(err))
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(d, Classify(resp.StatusCode, statusText(resp.Response), resp.Header, body))
	}
	if readErr != nil {
		return c.fail(d, ClassifyTransport(readErr))
	}

	if v == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode response of %s: %w", urn, err)
	}
	return nil
}

func (c *Client) fail(d *Descriptor, e *Error) error {
	entry := c.logger.WithFields(logrus.Fields{
		"method": d.Method,
		"url":    d.URL,
		"status": e.StatusCode,
		"kind":   e.Kind.String(),
	})
	if e.Err != nil {
		entry = entry.WithError(e.Err)
	}
	entry.Warnf("JIRA request failed: %s", e.StatusText)

	if e.Kind == KindAuth {
		// the credentials were rejected, the cached identity is no longer valid
		c.sessions.Reset()
	}

	messages := make([]string, len(e.Messages))
	copy(messages, e.Messages)
	c.notifier.Publish(RequestFailed{StatusText: e.StatusText, Messages: messages})

	return e
}

// CheckSession returns the cached session, verifying the credentials with
// the server on first use
func (c *Client) CheckSession(ctx context.Context) (*gojira.Session, error) {
	return c.sessions.Get(ctx, func(ctx context.Context) (*gojira.Session, error) {
		var session gojira.Session
		if err := c.Call(ctx, sessionURN, Get(nil), &session); err != nil {
			return nil, err
		}
		return &session, nil
	})
}

// Me returns the identity from a previously successful session check
func (c *Client) Me() (*gojira.Session, error) {
	return c.sessions.Me()
}

// Search executes a JQL query, returning a page of issues with their
// transitions and navigable fields. The session is verified first.
func (c *Client) Search(ctx context.Context, jql string, startAt, maxResults int) (*SearchResult, error) {
	if _, err := c.CheckSession(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("jql", jql)
	params.Set("startAt", strconv.Itoa(startAt))
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("expand", "transitions")
	params.Set("fields", "*navigable")

	var result SearchResult
	if err := c.Call(ctx, searchURN, Get(params), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FavouriteFilters returns the favourite filters of the logged-in user
func (c *Client) FavouriteFilters(ctx context.Context) ([]gojira.Filter, error) {
	var filters []gojira.Filter
	if err := c.Call(ctx, favouriteURN, Get(nil), &filters); err != nil {
		return nil, err
	}
	return filters, nil
}

// SetAssignee assigns an issue, see AssigneePayload
func (c *Client) SetAssignee(ctx context.Context, issueID string, payload Payload) error {
	return c.Call(ctx, fmt.Sprintf(assigneeURNFormat, url.PathEscape(issueID)), payload, nil)
}

// AddWorklog adds a worklog entry to an issue, adjusting the remaining
// estimate automatically. See WorklogPayload.
func (c *Client) AddWorklog(ctx context.Context, issueID string, payload Payload) (*gojira.WorklogRecord, error) {
	var record gojira.WorklogRecord
	if err := c.Call(ctx, fmt.Sprintf(worklogURNFormat, url.PathEscape(issueID)), payload, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Transition performs a workflow transition on an issue, see TransitionPayload
func (c *Client) Transition(ctx context.Context, issueID string, payload Payload) error {
	return c.Call(ctx, fmt.Sprintf(transitionsFormat, url.PathEscape(issueID)), payload, nil)
}

// Transitions lists the transitions currently available for an issue
func (c *Client) Transitions(ctx context.Context, issueID string) ([]gojira.Transition, error) {
	var result transitionsResult
	if err := c.Call(ctx, fmt.Sprintf(transitionsFormat, url.PathEscape(issueID)), Get(nil), &result); err != nil {
		return nil, err
	}
	return result.Transitions, nil
}

// AssigneePayload assigns an issue to the user with the given login
func AssigneePayload(login string) Payload {
	return Mutate(http.MethodPut, map[string]string{"name": login})
}

// TransitionPayload performs the transition with the given id
func TransitionPayload(transitionID string) Payload {
	return Mutate(http.MethodPost, map[string]any{
		"transition": map[string]string{"id": transitionID},
	})
}

// WorklogPayload logs timeSpentSeconds of work with an optional comment
func WorklogPayload(timeSpentSeconds int, comment string) Payload {
	body := map[string]any{"timeSpentSeconds": timeSpentSeconds}
	if comment != "" {
		body["comment"] = comment
	}
	return Mutate(http.MethodPost, body)
}
