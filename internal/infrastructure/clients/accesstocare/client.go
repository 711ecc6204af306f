package accesstocare

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/facilities-collector/pkg/retry"
)

// HTTPClient reads the access-to-care wait-time and satisfaction feeds
type HTTPClient struct {
	accessToCareURL string
	accessToPwtURL  string
	httpClient      *http.Client
	retry           retry.Config
}

// NewClient creates an access-to-care client
func NewClient(accessToCareURL, accessToPwtURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		accessToCareURL: strings.TrimSpace(accessToCareURL),
		accessToPwtURL:  strings.TrimSpace(accessToPwtURL),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retry: retry.UpstreamConfig(),
	}
}

// ListAccessToCare returns every wait-time entry
func (c *HTTPClient) ListAccessToCare(ctx context.Context) ([]AccessToCareEntry, error) {
	var entries []AccessToCareEntry
	if err := c.fetch(ctx, "access to care", c.accessToCareURL, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListAccessToPwt returns every satisfaction entry
func (c *HTTPClient) ListAccessToPwt(ctx context.Context) ([]AccessToPwtEntry, error) {
	var entries []AccessToPwtEntry
	if err := c.fetch(ctx, "access to pwt", c.accessToPwtURL, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *HTTPClient) fetch(ctx context.Context, name, endpoint string, out interface{}) error {
	if endpoint == "" {
		return fmt.Errorf("%s endpoint not configured", name)
	}
	return retry.DoWithLog(ctx, c.retry, name, func() error {
		return c.doJSON(ctx, endpoint, out)
	}, func(attempt int, err error, nextDelay time.Duration) {
		log.Warn().Err(err).Str("source", name).Int("attempt", attempt).Dur("retry_in", nextDelay).Msg("upstream fetch failed")
	})
}

func (c *HTTPClient) doJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return retry.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("access to care returned status %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return retry.Permanent(fmt.Errorf("access to care returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return retry.Permanent(fmt.Errorf("malformed access to care payload: %w", err))
	}
	return nil
}
