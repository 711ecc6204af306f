package collectors

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/statecemetery"
	apperrors "github.com/zatekoja/facilities-collector/pkg/errors"
	"github.com/zatekoja/facilities-collector/pkg/utils"
	"golang.org/x/sync/errgroup"
)

const (
	stateCemeteryClassification = "State Cemetery"
	// The state cemetery XML carries no visitation attributes, so every
	// record gets the same dawn-to-dusk week.
	stateCemeteryHours = "Sunrise - Sunset"
)

// Matches "City, ST 12345" and "City, ST, 12345-6789"
var cityStateZipPattern = regexp.MustCompile(`^(.+?),\s*([A-Za-z]{2}),?\s+(\d{5}(?:-\d{4})?)$`)

type cityStateZip struct {
	city  string
	state string
	zip   string
}

func parseCityStateZip(line string) (cityStateZip, bool) {
	match := cityStateZipPattern.FindStringSubmatch(strings.TrimSpace(line))
	if match == nil {
		return cityStateZip{}, false
	}
	return cityStateZip{
		city:  strings.TrimSpace(match[1]),
		state: strings.ToUpper(match[2]),
		zip:   match[3],
	}, true
}

// stateCemeteryAddress finds the city/state/zip line, preferring line1, then
// line2, then line3. The remaining lines keep their order as street lines.
// When no line matches every non-blank line is a street line and the state
// comes from the record's state code.
func stateCemeteryAddress(line1, line2, line3, stateCode string) *entities.Address {
	lines := []string{strings.TrimSpace(line1), strings.TrimSpace(line2), strings.TrimSpace(line3)}
	if utils.AllBlank(lines...) {
		return nil
	}

	for i, line := range lines {
		parsed, ok := parseCityStateZip(line)
		if !ok {
			continue
		}
		var street []string
		for j, other := range lines {
			if j != i {
				street = append(street, other)
			}
		}
		return entities.PresentOrNil(&entities.Address{
			Address1: street[0],
			Address2: street[1],
			City:     parsed.city,
			State:    parsed.state,
			Zip:      parsed.zip,
		})
	}

	var street []string
	for _, line := range lines {
		if line != "" {
			street = append(street, line)
		}
	}
	for len(street) < 3 {
		street = append(street, "")
	}
	return entities.PresentOrNil(&entities.Address{
		Address1: street[0],
		Address2: street[1],
		Address3: street[2],
		State:    utils.UpperTrim(stateCode),
	})
}

// StateCemeteriesTransformer turns one state cemetery record into a facility
type StateCemeteriesTransformer struct {
	Websites WebsiteIndex
}

// ToFacility returns nil when the record has no facility id
func (t *StateCemeteriesTransformer) ToFacility(cemetery statecemetery.Cemetery) *entities.Facility {
	if !cemetery.ID.Present() {
		return nil
	}
	id := "nca_s" + cemetery.ID.String()

	website := cemetery.URL.String()
	if !cemetery.URL.Present() {
		website = t.Websites.Lookup(id)
	}

	return entities.NewFacility(id, &entities.FacilityAttributes{
		Name:           cemetery.Name.String(),
		FacilityType:   entities.FacilityTypeCemetery,
		Classification: stateCemeteryClassification,
		Latitude:       coordinate(id, "lat", cemetery.Latitude),
		Longitude:      coordinate(id, "long", cemetery.Longitude),
		Website:        website,
		Address: addressesOrNil(
			stateCemeteryAddress(
				cemetery.AddressLine1.String(), cemetery.AddressLine2.String(), cemetery.AddressLine3.String(),
				cemetery.StateCode.String(),
			),
			stateCemeteryAddress(
				cemetery.MailingLine1.String(), cemetery.MailingLine2.String(), cemetery.MailingLine3.String(),
				cemetery.StateCode.String(),
			),
		),
		Phone: entities.PresentOrNil(&entities.Phone{
			Main: trimPhone(cemetery.Phone.String()),
			Fax:  trimPhone(cemetery.Fax.String()),
		}),
		Hours: entities.EveryDay(stateCemeteryHours),
	})
}

func coordinate(id, name string, value statecemetery.Text) *float64 {
	parsed, ok := parseFloat(value.String())
	if !ok {
		log.Warn().Str("facility", id).Str("field", name).Str("value", value.String()).Msg("dropping malformed coordinate")
	}
	return parsed
}

// StateCemeteriesCollector reads the state cemetery feed
type StateCemeteriesCollector struct {
	cemeteries StateCemeterySource
	websites   WebsiteSource
}

// NewStateCemeteriesCollector creates a state cemeteries collector
func NewStateCemeteriesCollector(cemeteries StateCemeterySource, websites WebsiteSource) *StateCemeteriesCollector {
	return &StateCemeteriesCollector{cemeteries: cemeteries, websites: websites}
}

// Domain implements Collector
func (c *StateCemeteriesCollector) Domain() entities.Domain {
	return entities.DomainStateCemeteries
}

// Collect implements Collector
func (c *StateCemeteriesCollector) Collect(ctx context.Context) (*Result, error) {
	var (
		cemeteries []statecemetery.Cemetery
		websites   map[string]string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cemeteries, err = c.cemeteries.ListStateCemeteries(gctx)
		return err
	})
	g.Go(func() (err error) {
		websites, err = c.websites.Websites(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewCollectorError(string(c.Domain()), err)
	}

	transformer := &StateCemeteriesTransformer{Websites: NewWebsiteIndex(websites)}
	return transformAll(cemeteries, transformer.ToFacility), nil
}
