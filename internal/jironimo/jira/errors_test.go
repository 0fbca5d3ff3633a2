package jira

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reasonHeader(reason string) http.Header {
	h := http.Header{}
	if reason != "" {
		h.Set(LoginReasonHeader, reason)
	}
	return h
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		header       http.Header
		body         string
		wantKind     Kind
		wantMessages []string
	}{
		{
			name:         "logged out",
			status:       401,
			header:       reasonHeader("OUT"),
			wantKind:     KindAuth,
			wantMessages: []string{`The user has in fact logged "out"`},
		},
		{
			name:         "authentication denied wins over body",
			status:       403,
			header:       reasonHeader("AUTHENTICATION_DENIED"),
			body:         `{"errorMessages":["ignored"]}`,
			wantKind:     KindAuth,
			wantMessages: []string{"The user is not allowed to even attempt a login."},
		},
		{
			name:         "authentication failed",
			status:       401,
			header:       reasonHeader("AUTHENTICATED_FAILED"),
			wantKind:     KindAuth,
			wantMessages: []string{"The user could not be authenticated."},
		},
		{
			name:         "authorisation failed",
			status:       499,
			header:       reasonHeader("AUTHORISATION_FAILED"),
			wantKind:     KindAuth,
			wantMessages: []string{"The user could not be authorised."},
		},
		{
			name:         "login reason ignored on 400",
			status:       400,
			header:       reasonHeader("OUT"),
			body:         `{"errorMessages":["A","B"]}`,
			wantKind:     KindAPI,
			wantMessages: []string{"A", "B"},
		},
		{
			name:         "unrecognized login reason falls through",
			status:       401,
			header:       reasonHeader("SOMETHING_ELSE"),
			wantKind:     KindUnknown,
			wantMessages: []string{unknownMessage, checkSettingsHint},
		},
		{
			name:         "server error ignores body",
			status:       500,
			body:         `{"errorMessages":["A"]}`,
			wantKind:     KindServerConfig,
			wantMessages: []string{serverConfigMessage},
		},
		{
			name:         "api error messages verbatim",
			status:       400,
			body:         `{"errorMessages":["A","B"]}`,
			wantKind:     KindAPI,
			wantMessages: []string{"A", "B"},
		},
		{
			name:         "field errors when message list is empty",
			status:       400,
			body:         `{"errorMessages":[],"errors":{"summary":"required","assignee":"unknown user"}}`,
			wantKind:     KindAPI,
			wantMessages: []string{"assignee: unknown user", "summary: required"},
		},
		{
			name:         "json without error messages",
			status:       404,
			body:         `{"foo":"bar"}`,
			wantKind:     KindUnknown,
			wantMessages: []string{unknownMessage, checkSettingsHint},
		},
		{
			name:         "html body",
			status:       502,
			body:         `<html><body>Bad Gateway</body></html>`,
			wantKind:     KindUnknown,
			wantMessages: []string{unknownMessage, checkSettingsHint},
		},
		{
			name:         "empty body",
			status:       404,
			wantKind:     KindUnknown,
			wantMessages: []string{unknownMessage, checkSettingsHint},
		},
		{
			name:         "json null",
			status:       400,
			body:         `null`,
			wantKind:     KindUnknown,
			wantMessages: []string{unknownMessage, checkSettingsHint},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := tt.header
			if header == nil {
				header = http.Header{}
			}
			got := Classify(tt.status, "Some Status", header, []byte(tt.body))

			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantMessages, got.Messages)
			assert.Equal(t, "Some Status", got.StatusText)
			assert.Equal(t, tt.status, got.StatusCode)
		})
	}
}

func TestClassifyIsTotal(t *testing.T) {
	bodies := []string{"", "{", "[]", `"x"`, `{"errorMessages":"nope"}`, `{"errorMessages":[]}`, "\x00\xff"}
	for status := 0; status <= 600; status += 7 {
		for _, body := range bodies {
			for _, reason := range []string{"", "OUT", "garbage"} {
				got := Classify(status, "", reasonHeader(reason), []byte(body))
				require.NotNil(t, got)
				require.NotEmpty(t, got.Messages, "status %d body %q reason %q", status, body, reason)
			}
		}
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyTransport(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantStatusText string
	}{
		{name: "deadline", err: fmt.Errorf("wrapped: %w", context.DeadlineExceeded), wantStatusText: "timeout"},
		{name: "net timeout", err: timeoutErr{}, wantStatusText: "timeout"},
		{name: "canceled", err: context.Canceled, wantStatusText: "abort"},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), wantStatusText: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyTransport(tt.err)
			assert.Equal(t, KindTransport, got.Kind)
			assert.Equal(t, tt.wantStatusText, got.StatusText)
			assert.Equal(t, 0, got.StatusCode)
			assert.Len(t, got.Messages, 2)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestErrorString(t *testing.T) {
	e := Classify(400, "Bad Request", http.Header{}, []byte(`{"errorMessages":["A","B"]}`))
	assert.Equal(t, "jira request failed (400 Bad Request): A; B", e.Error())

	var target *Error
	require.True(t, errors.As(fmt.Errorf("search: %w", e), &target))
	assert.Equal(t, KindAPI, target.Kind)
}
