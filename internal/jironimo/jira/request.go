package jira

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	restPrefix      = "/rest"
	jsonContentType = "application/json; charset=UTF-8"
	methodOverride  = "_method"
)

// Payload is the data sent with a request. It is either a Query, whose
// parameters end up in the URL of a GET request, or a Mutation, whose body is
// serialized to JSON and sent with an explicit verb.
type Payload interface {
	isPayload()
}

// Query is a GET payload
type Query struct {
	Params url.Values
}

// Mutation is a payload sent with a verb other than GET
type Mutation struct {
	Method string
	Body   any
}

func (Query) isPayload()    {}
func (Mutation) isPayload() {}

// Get returns a GET payload with the given query parameters
func Get(params url.Values) Payload {
	return Query{Params: params}
}

// Mutate returns a payload sent with the given verb and JSON body
func Mutate(method string, body any) Payload {
	return Mutation{Method: method, Body: body}
}

// PayloadFromMap converts a loosely typed payload into a typed one. A non-empty
// "_method" entry selects the verb and is removed from the body; without it the
// entries become query parameters.
func PayloadFromMap(data map[string]any) Payload {
	method, _ := data[methodOverride].(string)
	if method == "" {
		params := url.Values{}
		for k, v := range data {
			if k == methodOverride {
				continue
			}
			params.Set(k, fmt.Sprint(v))
		}
		return Query{Params: params}
	}

	body := make(map[string]any, len(data))
	for k, v := range data {
		if k != methodOverride {
			body[k] = v
		}
	}
	return Mutation{Method: method, Body: body}
}

// Descriptor fully specifies an HTTP request against the REST API
type Descriptor struct {
	Method  string
	URL     string
	Header  http.Header
	Body    []byte
	Timeout time.Duration
}

// BuildRequest creates the request descriptor for the REST resource urn
// (e.g. "/api/latest/search") on the given account
func BuildRequest(account Account, urn string, payload Payload) (*Descriptor, error) {
	account = account.Normalized()

	d := &Descriptor{
		Method:  http.MethodGet,
		URL:     account.BaseURL + restPrefix + urn,
		Header:  http.Header{},
		Timeout: time.Duration(account.TimeoutSeconds) * time.Second,
	}
	d.Header.Set("Accept", "application/json")
	d.Header.Set("Authorization", "Basic "+basicToken(account.Login, account.Password))

	switch p := payload.(type) {
	case nil:
	case Query:
		if encoded := p.Params.Encode(); encoded != "" {
			d.URL += querySeparator(d.URL) + encoded
		}
	case Mutation:
		method, err := normalizeMethod(p.Method)
		if err != nil {
			return nil, err
		}
		body := p.Body
		if body == nil {
			body = struct{}{}
		}
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize request body: %w", err)
		}
		d.Method = method
		d.Body = data
		d.Header.Set("Content-Type", jsonContentType)
	default:
		return nil, fmt.Errorf("unsupported payload type %T", payload)
	}

	return d, nil
}

// HTTPRequest converts the descriptor to an *http.Request bound to ctx
func (d *Descriptor) HTTPRequest(ctx context.Context) (*http.Request, error) {
	var body *bytes.Reader
	if d.Body != nil {
		body = bytes.NewReader(d.Body)
	}

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, d.Method, d.URL, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, d.Method, d.URL, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = d.Header.Clone()

	return req, nil
}

func normalizeMethod(method string) (string, error) {
	switch upper := strings.ToUpper(method); upper {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		return upper, nil
	default:
		return "", fmt.Errorf("unsupported request method %q", method)
	}
}

func querySeparator(rawURL string) string {
	if strings.Contains(rawURL, "?") {
		return "&"
	}
	return "?"
}

func basicToken(login, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(login + ":" + password))
}
