package jira

import (
	"io"
	"net/http"
	"strings"
)

// gateTransport answers the HTTP Basic challenge of an authenticating gate in
// front of JIRA, such as a reverse proxy. The request first goes out with the
// JIRA credentials only; a 401 carrying a Basic challenge is retried once with
// the gate credentials in the Authorization header.
type gateTransport struct {
	base http.RoundTripper
	auth BasicAuth
}

func newGateTransport(base http.RoundTripper, auth BasicAuth) *gateTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &gateTransport{base: base, auth: auth}
}

func (t *gateTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized || !basicChallenge(resp.Header) {
		return resp, err
	}

	token := "Basic " + basicToken(t.auth.Login, t.auth.Password)
	if req.Header.Get("Authorization") == token {
		return resp, nil
	}

	retry := req.Clone(req.Context())
	if req.Body != nil && req.Body != http.NoBody {
		if req.GetBody == nil {
			return resp, nil
		}
		body, err := req.GetBody()
		if err != nil {
			return resp, nil
		}
		retry.Body = body
	}
	retry.Header.Set("Authorization", token)

	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	return t.base.RoundTrip(retry)
}

func basicChallenge(header http.Header) bool {
	for _, challenge := range header.Values("WWW-Authenticate") {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(challenge)), "basic") {
			return true
		}
	}
	return false
}
