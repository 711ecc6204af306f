package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	"github.com/zatekoja/facilities-collector/internal/domain/providers"
	tsclient "github.com/zatekoja/facilities-collector/internal/infrastructure/clients/typesense"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 250
	pruneBatchSize     = 250
)

// TypesenseAdapter indexes collected facilities in Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements SearchIndexer
var _ providers.SearchIndexer = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	return a.client.InitSchema(ctx)
}

// IndexSnapshot upserts every facility of the snapshot, then removes the
// documents an earlier run of the same domain left behind.
func (a *TypesenseAdapter) IndexSnapshot(ctx context.Context, snapshot *entities.DomainSnapshot) error {
	if snapshot == nil {
		return nil
	}

	collectedAt := snapshot.CollectedAt.Unix()
	for _, facility := range snapshot.Facilities {
		document := buildFacilityDocument(snapshot.Domain, facility, collectedAt)
		if document == nil {
			continue
		}
		if err := a.client.IndexFacility(ctx, document); err != nil {
			return fmt.Errorf("failed to index facility %s: %w", facility.ID, err)
		}
	}

	pruned, err := a.pruneStale(ctx, snapshot.Domain, collectedAt)
	if err != nil {
		return err
	}

	log.Info().
		Str("domain", string(snapshot.Domain)).
		Int("indexed", len(snapshot.Facilities)).
		Int("pruned", pruned).
		Msg("indexed domain snapshot")
	return nil
}

func (a *TypesenseAdapter) pruneStale(ctx context.Context, domain entities.Domain, collectedAt int64) (int, error) {
	filter := fmt.Sprintf("domain:=%s && collected_at:<%d", domain, collectedAt)
	pruned := 0
	for {
		result, err := a.client.Client().Collection(tsclient.FacilitiesCollection).Documents().Search(ctx, &api.SearchCollectionParams{
			Q:        pointer.String("*"),
			QueryBy:  pointer.String("name"),
			FilterBy: pointer.String(filter),
			PerPage:  pointer.Int(pruneBatchSize),
		})
		if err != nil {
			return pruned, fmt.Errorf("failed to find stale documents: %w", err)
		}
		if result.Hits == nil || len(*result.Hits) == 0 {
			return pruned, nil
		}

		for _, hit := range *result.Hits {
			if hit.Document == nil {
				continue
			}
			id, _ := (*hit.Document)["id"].(string)
			if id == "" {
				continue
			}
			if _, err := a.client.Client().Collection(tsclient.FacilitiesCollection).Document(id).Delete(ctx); err != nil {
				return pruned, fmt.Errorf("failed to delete stale document %s: %w", id, err)
			}
			pruned++
		}
	}
}

// Search queries indexed facilities
func (a *TypesenseAdapter) Search(ctx context.Context, params providers.SearchParams) (*providers.SearchResult, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	query := strings.TrimSpace(params.Query)
	if query == "" {
		query = "*"
	}

	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String("name,city,classification"),
		Page:    pointer.Int(params.Offset/limit + 1),
		PerPage: pointer.Int(limit),
	}
	if filter := buildFilter(params); filter != "" {
		searchParams.FilterBy = pointer.String(filter)
	}

	result, err := a.client.Client().Collection(tsclient.FacilitiesCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search facilities: %w", err)
	}

	out := &providers.SearchResult{Hits: []providers.SearchHit{}}
	if result.Found != nil {
		out.Found = *result.Found
	}
	if result.Hits == nil {
		return out, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		out.Hits = append(out.Hits, hitFromDocument(*hit.Document))
	}
	return out, nil
}

func buildFilter(params providers.SearchParams) string {
	var clauses []string
	if params.Domain != "" {
		clauses = append(clauses, "domain:="+string(params.Domain))
	}
	if params.FacilityType != "" {
		clauses = append(clauses, "facility_type:="+string(params.FacilityType))
	}
	if state := strings.ToUpper(strings.TrimSpace(params.State)); state != "" {
		clauses = append(clauses, "state:="+state)
	}
	return strings.Join(clauses, " && ")
}

func buildFacilityDocument(domain entities.Domain, facility *entities.Facility, collectedAt int64) map[string]interface{} {
	if facility == nil || facility.ID == "" {
		return nil
	}

	document := map[string]interface{}{
		"id":           facility.ID,
		"name":         "",
		"domain":       string(domain),
		"collected_at": collectedAt,
	}

	attrs := facility.Attributes
	if attrs == nil {
		document["facility_type"] = ""
		return document
	}

	document["name"] = attrs.Name
	document["facility_type"] = string(attrs.FacilityType)
	if attrs.Classification != "" {
		document["classification"] = attrs.Classification
	}
	if attrs.Visn != "" {
		document["visn"] = attrs.Visn
	}
	if attrs.Latitude != nil && attrs.Longitude != nil {
		document["location"] = []float64{*attrs.Latitude, *attrs.Longitude}
	}
	if attrs.ActiveStatus != nil {
		document["active"] = *attrs.ActiveStatus == entities.ActiveStatusActive
	}
	if attrs.Address != nil && attrs.Address.Physical != nil {
		if city := attrs.Address.Physical.City; city != "" {
			document["city"] = city
		}
		if state := attrs.Address.Physical.State; state != "" {
			document["state"] = state
		}
	}
	if attrs.Services != nil {
		if len(attrs.Services.Health) > 0 {
			health := make([]string, 0, len(attrs.Services.Health))
			for _, s := range attrs.Services.Health {
				health = append(health, string(s))
			}
			document["health_services"] = health
		}
		if len(attrs.Services.Benefits) > 0 {
			benefits := make([]string, 0, len(attrs.Services.Benefits))
			for _, s := range attrs.Services.Benefits {
				benefits = append(benefits, string(s))
			}
			document["benefits_services"] = benefits
		}
	}
	return document
}

// Typesense returns map[string]interface{}, so every field is read defensively
func hitFromDocument(doc map[string]interface{}) providers.SearchHit {
	hit := providers.SearchHit{
		ID:             stringField(doc, "id"),
		Name:           stringField(doc, "name"),
		Domain:         stringField(doc, "domain"),
		FacilityType:   stringField(doc, "facility_type"),
		Classification: stringField(doc, "classification"),
		City:           stringField(doc, "city"),
		State:          stringField(doc, "state"),
	}
	if location, ok := doc["location"].([]interface{}); ok && len(location) == 2 {
		lat, latOK := location[0].(float64)
		lon, lonOK := location[1].(float64)
		if latOK && lonOK {
			hit.Latitude = &lat
			hit.Longitude = &lon
		}
	}
	return hit
}

func stringField(doc map[string]interface{}, key string) string {
	value, _ := doc[key].(string)
	return value
}
