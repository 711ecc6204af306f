package arcgis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/facilities-collector/pkg/retry"
)

func fastClient(endpoints Endpoints) *HTTPClient {
	client := NewClient(endpoints, time.Second)
	client.retry = retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1}
	return client
}

func TestQueryHealth(t *testing.T) {
	var query url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		// ArcGIS serves JSON as text/plain
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(`{"features":[{"attributes":{"StationNum":666,"StationName":"Manila VA Clinic","CocClassificationId":5.0,"Zip":"01302","Mobile":0},"geometry":{"x":120.99,"y":14.544}}]}`))
	}))
	defer server.Close()

	features, err := fastClient(Endpoints{Health: server.URL + "/query"}).QueryHealth(context.Background())
	require.NoError(t, err)
	require.Len(t, features, 1)

	attrs := features[0].Attributes
	assert.Equal(t, "666", attrs.StationNum.String())
	assert.Equal(t, "5", attrs.CocClassificationID.String())
	assert.Equal(t, "01302", attrs.Zip.String())
	assert.Equal(t, "0", attrs.Mobile.String())
	require.NotNil(t, features[0].Geometry.Latitude())
	assert.Equal(t, 14.544, *features[0].Geometry.Latitude())
	assert.Equal(t, 120.99, *features[0].Geometry.Longitude())

	assert.Equal(t, "json", query.Get("f"))
	assert.Equal(t, "1=1", query.Get("where"))
	assert.Equal(t, "*", query.Get("outFields"))
}

func TestQueryKeepsExplicitParameters(t *testing.T) {
	got, err := withDefaultQuery("https://example.test/query?where=S_Abbr%3D%27VAMC%27&f=pjson")
	require.NoError(t, err)

	parsed, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "S_Abbr='VAMC'", parsed.Query().Get("where"))
	assert.Equal(t, "pjson", parsed.Query().Get("f"))
	assert.Equal(t, "4326", parsed.Query().Get("outSR"))
}

func TestQueryErrors(t *testing.T) {
	t.Run("endpoint not configured", func(t *testing.T) {
		_, err := fastClient(Endpoints{}).QueryCemeteries(context.Background())
		require.Error(t, err)
	})

	t.Run("query error in a 200 body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"error":{"code":400,"message":"Invalid query"}}`))
		}))
		defer server.Close()

		_, err := fastClient(Endpoints{Benefits: server.URL}).QueryBenefits(context.Background())
		var queryErr *QueryError
		require.ErrorAs(t, err, &queryErr)
		assert.Equal(t, 400, queryErr.Code)
	})

	t.Run("html is rejected without retry", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html></html>`))
		}))
		defer server.Close()

		_, err := fastClient(Endpoints{Cemeteries: server.URL}).QueryCemeteries(context.Background())
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("server errors are retried", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		_, err := fastClient(Endpoints{Cemeteries: server.URL}).QueryCemeteries(context.Background())
		require.Error(t, err)
		assert.Equal(t, 3, calls)
	})
}

func TestFlexString(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{`"  A  "`, "A"},
		{`17`, "17"},
		{`17.0`, "17"},
		{`2.5`, "2.5"},
		{`true`, "true"},
		{`null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var f FlexString
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &f))
			assert.Equal(t, tt.expected, f.String())
		})
	}

	var f FlexString
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &f))
}

func TestGeometryNil(t *testing.T) {
	var g *Geometry
	assert.Nil(t, g.Latitude())
	assert.Nil(t, g.Longitude())
}
