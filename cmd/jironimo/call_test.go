package main

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petr-muller/jironimo/internal/jironimo/jira"
)

func TestCallData(t *testing.T) {
	testCases := []struct {
		name     string
		method   string
		args     []string
		expected jira.Payload
	}{
		{
			name:     "query",
			args:     []string{"fields=summary", "expand=transitions"},
			expected: jira.Query{Params: url.Values{"fields": {"summary"}, "expand": {"transitions"}}},
		},
		{
			name:     "query keeps JSON-looking values as text",
			args:     []string{"maxResults=5"},
			expected: jira.Query{Params: url.Values{"maxResults": {"5"}}},
		},
		{
			name:   "mutation decodes JSON values",
			method: "post",
			args:   []string{`transition={"id":"11"}`, "comment=done"},
			expected: jira.Mutation{Method: "post", Body: map[string]any{
				"transition": map[string]any{"id": "11"},
				"comment":    "done",
			}},
		},
		{
			name:     "mutation without arguments",
			method:   http.MethodDelete,
			expected: jira.Mutation{Method: http.MethodDelete, Body: map[string]any{}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := callData(tc.method, tc.args)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, jira.PayloadFromMap(data))
		})
	}
}

func TestCallDataRejectsMalformedArgument(t *testing.T) {
	_, err := callData("", []string{"summary"})
	require.Error(t, err)

	_, err = callData("", []string{"=value"})
	require.Error(t, err)
}
