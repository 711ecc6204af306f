package arcgis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/facilities-collector/pkg/retry"
)

// Endpoints holds the feature layer query URLs
type Endpoints struct {
	Health     string
	Benefits   string
	Cemeteries string
}

// HTTPClient queries ArcGIS feature layers
type HTTPClient struct {
	endpoints  Endpoints
	httpClient *http.Client
	retry      retry.Config
}

// NewClient creates an ArcGIS client
func NewClient(endpoints Endpoints, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		endpoints: endpoints,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retry: retry.UpstreamConfig(),
	}
}

// QueryHealth returns every VHA facility feature
func (c *HTTPClient) QueryHealth(ctx context.Context) ([]HealthFeature, error) {
	return queryFeatures[HealthAttributes](ctx, c, "arcgis health", c.endpoints.Health)
}

// QueryBenefits returns every VBA facility feature
func (c *HTTPClient) QueryBenefits(ctx context.Context) ([]BenefitsFeature, error) {
	return queryFeatures[BenefitsAttributes](ctx, c, "arcgis benefits", c.endpoints.Benefits)
}

// QueryCemeteries returns every national cemetery feature
func (c *HTTPClient) QueryCemeteries(ctx context.Context) ([]CemeteryFeature, error) {
	return queryFeatures[CemeteryAttributes](ctx, c, "arcgis cemeteries", c.endpoints.Cemeteries)
}

func queryFeatures[A any](ctx context.Context, c *HTTPClient, name, endpoint string) ([]Feature[A], error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("%s endpoint not configured", name)
	}

	queryURL, err := withDefaultQuery(endpoint)
	if err != nil {
		return nil, err
	}

	var collection FeatureCollection[A]
	err = retry.DoWithLog(ctx, c.retry, name, func() error {
		collection = FeatureCollection[A]{}
		return c.getJSON(ctx, queryURL, &collection)
	}, func(attempt int, err error, nextDelay time.Duration) {
		log.Warn().Err(err).Str("source", name).Int("attempt", attempt).Dur("retry_in", nextDelay).Msg("upstream fetch failed")
	})
	if err != nil {
		return nil, err
	}
	if collection.Error != nil {
		return nil, collection.Error
	}
	return collection.Features, nil
}

// withDefaultQuery fills in the query parameters of a bare layer query URL
func withDefaultQuery(endpoint string) (string, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	if query.Get("f") == "" {
		query.Set("f", "json")
	}
	if query.Get("where") == "" {
		query.Set("where", "1=1")
	}
	if query.Get("outFields") == "" {
		query.Set("outFields", "*")
	}
	if query.Get("outSR") == "" {
		query.Set("outSR", "4326")
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (c *HTTPClient) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return retry.Permanent(err)
	}
	req.Header.Set("Accept", "application/json, text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("arcgis returned status %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return retry.Permanent(fmt.Errorf("arcgis returned status %d", resp.StatusCode))
	}
	if err := checkContentType(resp.Header.Get("Content-Type")); err != nil {
		return retry.Permanent(err)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return retry.Permanent(fmt.Errorf("malformed arcgis payload: %w", err))
	}
	return nil
}

// checkContentType accepts JSON and JSON served as text/plain
func checkContentType(header string) error {
	if header == "" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return fmt.Errorf("invalid content type %q: %w", header, err)
	}
	switch {
	case mediaType == "application/json", mediaType == "text/plain", strings.HasSuffix(mediaType, "+json"):
		return nil
	default:
		return fmt.Errorf("unexpected content type %q", mediaType)
	}
}
