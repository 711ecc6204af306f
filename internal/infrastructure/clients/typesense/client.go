package typesense

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/facilities-collector/pkg/config"
	"github.com/zatekoja/facilities-collector/pkg/retry"
)

const (
	FacilitiesCollection = "va_facilities"
)

// Client represents a Typesense client
type Client struct {
	client *typesense.Client
}

// NewClient creates a new Typesense client with exponential backoff retry
func NewClient(ctx context.Context, cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	err := retry.DoWithLog(
		ctx,
		retry.DefaultConfig(),
		"typesense",
		func() error {
			healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			_, err := client.Health(healthCtx, 2*time.Second)
			return err
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", nextDelay).Msg("typesense connection failed")
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	log.Info().Str("url", cfg.URL).Msg("connected to Typesense")
	return &Client{client: client}, nil
}

// NewClientFromTypesense wraps an existing typesense client
func NewClientFromTypesense(client *typesense.Client) *Client {
	return &Client{client: client}
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// Health reports whether the Typesense node is ready
func (c *Client) Health(ctx context.Context) error {
	ok, err := c.client.Health(ctx, 2*time.Second)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("typesense reported unhealthy")
	}
	return nil
}

// FacilitiesSchema is the collection schema of indexed facilities
func FacilitiesSchema() *api.CollectionSchema {
	return &api.CollectionSchema{
		Name: FacilitiesCollection,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "name", Type: "string"},
			{Name: "domain", Type: "string", Facet: pointer.True()},
			{Name: "facility_type", Type: "string", Facet: pointer.True()},
			{Name: "classification", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "city", Type: "string", Optional: pointer.True()},
			{Name: "state", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "location", Type: "geopoint", Optional: pointer.True()},
			{Name: "health_services", Type: "string[]", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "benefits_services", Type: "string[]", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "active", Type: "bool", Optional: pointer.True()},
			{Name: "visn", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "collected_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("collected_at"),
	}
}

// InitSchema ensures the facilities collection exists
func (c *Client) InitSchema(ctx context.Context) error {
	collections, err := c.client.Collections().Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve collections: %w", err)
	}

	for _, col := range collections {
		if col.Name == FacilitiesCollection {
			log.Debug().Str("collection", FacilitiesCollection).Msg("typesense collection already exists")
			return nil
		}
	}

	if _, err := c.client.Collections().Create(ctx, FacilitiesSchema()); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Info().Str("collection", FacilitiesCollection).Msg("created typesense collection")
	return nil
}

// IndexFacility upserts a facility document
func (c *Client) IndexFacility(ctx context.Context, document map[string]interface{}) error {
	_, err := c.client.Collection(FacilitiesCollection).Documents().Upsert(ctx, document)
	return err
}
