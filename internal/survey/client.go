package survey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Query describes one survey request.
type Query struct {
	// Since, when non-zero, limits results to submissions after this Unix epoch.
	Since int64
}

// Client fetches raw responses from a Typeform-style survey endpoint.
type Client struct {
	endpoint      string
	key           string
	completedOnly bool
	client        *http.Client
}

// NewClient creates a new survey client.
func NewClient(endpoint, key string, completedOnly bool, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint:      endpoint,
		key:           key,
		completedOnly: completedOnly,
		client:        &http.Client{Timeout: timeout},
	}
}

// StatusError is returned when the survey API answers with a non-success status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("survey API returned %d %s", e.Code, http.StatusText(e.Code))
}

// Fetch issues exactly one request and returns the full payload.
// Any transport, status or decoding failure is returned as-is; retrying is up
// to the caller.
func (c *Client) Fetch(ctx context.Context, q Query) (*Payload, error) {
	if c.endpoint == "" {
		return nil, errors.New("survey endpoint not configured")
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing survey endpoint: %w", err)
	}
	params := u.Query()
	if c.key != "" {
		params.Set("key", c.key)
	}
	if c.completedOnly {
		params.Set("completed", "true")
	}
	if q.Since != 0 {
		params.Set("since", strconv.FormatInt(q.Since, 10))
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("survey request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var p Payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding survey payload: %w", err)
	}
	if p.Questions == nil {
		return nil, errors.New("decoding survey payload: missing questions")
	}

	log.Printf("Fetched %d responses (%d questions)", len(p.Responses), len(p.Questions))
	return &p, nil
}
