// internal/github/client.go
//
// Thin client for a GitHub-compatible REST API. It knows how to
// authenticate, page-size and decode; which endpoints to hit lives in
// directory.go, branches.go and commits.go.

package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/commitquiz/commitquiz/internal/config"
	"github.com/commitquiz/commitquiz/internal/logbook"
)

const acceptHeader = "application/vnd.github.v3+json"

// Client issues authenticated GETs against one API surface. It is
// stateless apart from the credential baked into its transport, so one
// Client may serve any number of concurrent requests.
type Client struct {
	base             string
	http             *http.Client
	log              *logbook.Logbook
	pageSize         int
	commitSample     int
	fallbackBranches []string
}

// NewClient builds a client for the given bearer token. The token type
// "token" makes the oauth2 transport emit the classic
// "Authorization: token <credential>" header GitHub documents for
// personal access tokens.
func NewClient(token string, cfg *config.Config, log *logbook.Logbook) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "token",
	})
	httpClient := oauth2.NewClient(context.Background(), src)
	httpClient.Timeout = 30 * time.Second
	return &Client{
		base:             cfg.Settings.API.BaseURL,
		http:             httpClient,
		log:              log,
		pageSize:         cfg.Settings.API.PageSize,
		commitSample:     cfg.Settings.API.CommitSampleSize,
		fallbackBranches: cfg.Settings.API.FallbackBranches,
	}
}

// get fetches base+path and decodes the JSON body into out. Non-2xx
// responses map onto the package error taxonomy; no retries happen here.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("github: build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", acceptHeader)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("github: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrBadToken
	case resp.StatusCode == http.StatusForbidden:
		return ErrRateLimited
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &StatusError{Status: resp.StatusCode, Reason: apiMessage(resp.Body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DecodeError{Path: path, Err: err}
	}
	return nil
}

// apiMessage pulls the "message" field GitHub puts on error bodies.
func apiMessage(body io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 4096)).Decode(&payload); err != nil {
		return ""
	}
	return payload.Message
}
