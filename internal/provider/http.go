// Package provider holds the clients for the external weather and places APIs.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	ierr "github.com/neexbeast/flysen-catalog/internal/errors"
)

// newHTTPClient returns an http.Client with the given timeout.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// doGet performs a GET request and decodes the JSON response into dst.
// Errors are marked ErrHTTPClient; the query string never appears in them
// because it carries the API key.
func doGet(ctx context.Context, client *http.Client, endpoint string, query url.Values, dst any) error {
	target := endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return markHTTP(fmt.Errorf("creating request for %s: %w", endpoint, err))
	}

	resp, err := client.Do(req)
	if err != nil {
		return markHTTP(fmt.Errorf("GET %s: %w", endpoint, redact(err)))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return markHTTP(fmt.Errorf("GET %s returned status %d", endpoint, resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return markHTTP(fmt.Errorf("decoding response from %s: %w", endpoint, err))
	}

	return nil
}

func markHTTP(err error) error {
	return ierr.WithError(err).Mark(ierr.ErrHTTPClient)
}

// redact drops the request URL that transport errors embed.
func redact(err error) error {
	var uerr *url.Error
	if ierr.As(err, &uerr) {
		return uerr.Err
	}
	return err
}
