package statecemetery

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/facilities-collector/pkg/retry"
)

// Text is an XML attribute value trimmed on decode. An empty value is
// indistinguishable from a missing attribute.
type Text string

// UnmarshalXMLAttr implements xml.UnmarshalerAttr
func (t *Text) UnmarshalXMLAttr(attr xml.Attr) error {
	*t = Text(strings.TrimSpace(attr.Value))
	return nil
}

// Present reports whether the attribute carried a non-blank value
func (t Text) Present() bool {
	return t != ""
}

func (t Text) String() string {
	return string(t)
}

// Cemeteries is the root of the state cemetery feed
type Cemeteries struct {
	XMLName xml.Name   `xml:"cems"`
	Cem     []Cemetery `xml:"cem"`
}

// Cemetery is one state cemetery
type Cemetery struct {
	ID           Text `xml:"fac_id,attr"`
	Name         Text `xml:"cem_name,attr"`
	Latitude     Text `xml:"lat,attr"`
	Longitude    Text `xml:"long,attr"`
	URL          Text `xml:"cem_url,attr"`
	StateCode    Text `xml:"statecode,attr"`
	AddressLine1 Text `xml:"address_line1,attr"`
	AddressLine2 Text `xml:"address_line2,attr"`
	AddressLine3 Text `xml:"address_line3,attr"`
	MailingLine1 Text `xml:"mailing_line1,attr"`
	MailingLine2 Text `xml:"mailing_line2,attr"`
	MailingLine3 Text `xml:"mailing_line3,attr"`
	Phone        Text `xml:"phone,attr"`
	Fax          Text `xml:"fax,attr"`
}

// Decode reads a state cemetery document
func Decode(r io.Reader) (*Cemeteries, error) {
	var cems Cemeteries
	if err := xml.NewDecoder(r).Decode(&cems); err != nil {
		return nil, fmt.Errorf("malformed state cemetery payload: %w", err)
	}
	return &cems, nil
}

// HTTPClient fetches the state cemetery feed
type HTTPClient struct {
	url        string
	httpClient *http.Client
	retry      retry.Config
}

// NewClient creates a state cemetery client
func NewClient(url string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		url: strings.TrimSpace(url),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retry: retry.UpstreamConfig(),
	}
}

// ListStateCemeteries returns every cemetery of the feed
func (c *HTTPClient) ListStateCemeteries(ctx context.Context) ([]Cemetery, error) {
	if c.url == "" {
		return nil, fmt.Errorf("state cemeteries endpoint not configured")
	}

	var cems *Cemeteries
	err := retry.DoWithLog(ctx, c.retry, "state cemeteries", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
		if err != nil {
			return retry.Permanent(err)
		}
		req.Header.Set("Accept", "application/xml, text/xml")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("state cemeteries returned status %d", resp.StatusCode)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return retry.Permanent(fmt.Errorf("state cemeteries returned status %d", resp.StatusCode))
		}

		decoded, err := Decode(resp.Body)
		if err != nil {
			return retry.Permanent(err)
		}
		cems = decoded
		return nil
	}, func(attempt int, err error, nextDelay time.Duration) {
		log.Warn().Err(err).Str("source", "state cemeteries").Int("attempt", attempt).Dur("retry_in", nextDelay).Msg("upstream fetch failed")
	})
	if err != nil {
		return nil, err
	}
	return cems.Cem, nil
}
