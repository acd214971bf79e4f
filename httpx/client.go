// Package httpx wraps the HTTP plumbing shared by the SDK's API calls.
package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

// StatusError is a non-200 response from the API.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.Status, http.StatusText(e.Status))
}

type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient builds a client for the API at host ("https://app.example.com").
// The timeout bounds every request end to end; there is no retry and no
// cancellation of an outstanding request.
func NewClient(host string, timeout time.Duration) (*Client, error) {
	base, err := url.Parse(host)
	if err != nil {
		return nil, errors.Wrap(err, "httpx.host")
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout},
	}, nil
}

// GetJSON issues a GET for path with the given query and decodes the JSON
// body into out. A non-200 status or an unparseable body is an error.
func (c *Client) GetJSON(path string, query url.Values, out any) error {
	target := *c.base
	target.Path = path
	target.RawQuery = query.Encode()

	resp, err := c.http.Get(target.String())
	if err != nil {
		return errors.Wrap(err, "httpx.get")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Status: resp.StatusCode}
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	return errors.Wrap(err, "httpx.decode")
}
