package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petr-muller/jironimo/internal/jironimo/jira"
)

func newCallCmd() *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "call <resource> [key=value...]",
		Short: "Call a JIRA REST resource and print the JSON response",
		Long: `Call a JIRA REST resource, e.g. /api/latest/myself, and print the JSON
response. Without --method, the key=value pairs become query parameters of a
GET request. With --method, they form the JSON body; values that parse as JSON
are sent as such, everything else as a string.`,
		Example: `  jironimo call /api/latest/issue/ABC-1 fields=summary
  jironimo call /api/latest/issue/ABC-1/transitions --method POST 'transition={"id":"11"}'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := callData(method, args[1:])
			if err != nil {
				return err
			}

			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			var response json.RawMessage
			if err := a.client.Call(cmd.Context(), args[0], jira.PayloadFromMap(data), &response); err != nil {
				return err
			}
			if len(response) == 0 {
				return nil
			}

			var out bytes.Buffer
			if err := json.Indent(&out, response, "", "  "); err != nil {
				return fmt.Errorf("cannot format response: %w", err)
			}
			out.WriteByte('\n')
			_, err = out.WriteTo(os.Stdout)
			return err
		},
	}

	cmd.Flags().StringVarP(&method, "method", "X", "", "Request method other than GET (POST, PUT, DELETE)")

	return cmd
}

// callData turns key=value arguments into the loose payload understood by
// jira.PayloadFromMap
func callData(method string, args []string) (map[string]any, error) {
	data := make(map[string]any, len(args)+1)
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q, expected key=value", arg)
		}
		if method == "" {
			data[key] = value
			continue
		}
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			data[key] = decoded
		} else {
			data[key] = value
		}
	}
	if method != "" {
		data["_method"] = method
	}
	return data, nil
}
