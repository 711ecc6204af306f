package collectors

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/cdw"
	"github.com/zatekoja/facilities-collector/pkg/utils"
)

const stationKeyPrefix = "VHA_"

// stationKey normalizes a station number into the join key shared by every
// health input. Numbers that already carry the prefix are not prefixed twice.
func stationKey(stationNumber string) string {
	key := utils.UpperTrim(stationNumber)
	if key == "" {
		return ""
	}
	if strings.HasPrefix(key, stationKeyPrefix) {
		return key
	}
	return stationKeyPrefix + key
}

// StationIndex is a read-only multimap from station key to records. It is
// built once per run and never mutated afterwards.
type StationIndex[T any] struct {
	entries map[string][]T
}

// NewStationIndex groups items by the station number returned by station.
// Items without a station number are skipped with a warning.
func NewStationIndex[T any](name string, items []T, station func(T) string) StationIndex[T] {
	entries := make(map[string][]T)
	skipped := 0
	for _, item := range items {
		key := stationKey(station(item))
		if key == "" {
			skipped++
			continue
		}
		entries[key] = append(entries[key], item)
	}
	if skipped > 0 {
		log.Warn().Str("index", name).Int("skipped", skipped).Msg("skipped records without a facility id")
	}
	return StationIndex[T]{entries: entries}
}

// Lookup returns the records of a station. The result must not be modified.
func (i StationIndex[T]) Lookup(stationNumber string) []T {
	return i.entries[stationKey(stationNumber)]
}

// Len returns the number of distinct stations
func (i StationIndex[T]) Len() int {
	return len(i.entries)
}

// PhoneIndex maps a station key to its mental health clinic phone
type PhoneIndex struct {
	phones map[string]string
}

// NewPhoneIndex builds the mental health phone index. A station listed
// twice keeps its last phone and logs a warning.
func NewPhoneIndex(contacts []cdw.MentalHealthContact) PhoneIndex {
	phones := make(map[string]string, len(contacts))
	for _, contact := range contacts {
		key := stationKey(contact.StationNumber)
		if key == "" {
			log.Warn().Msg("skipped mental health contact without a station number")
			continue
		}
		phone := mentalHealthPhone(contact)
		if phone == "" {
			continue
		}
		if previous, exists := phones[key]; exists {
			log.Warn().Str("station", key).Str("previous", previous).Str("phone", phone).Msg("duplicate mental health contact")
		}
		phones[key] = phone
	}
	return PhoneIndex{phones: phones}
}

func mentalHealthPhone(contact cdw.MentalHealthContact) string {
	phone := trimPhone(contact.MHPhone)
	if phone == "" {
		return ""
	}
	extension := strings.TrimSpace(contact.Extension)
	if extension == "" || extension == "0" {
		return phone
	}
	return phone + " x " + extension
}

// Lookup returns the phone of a station, or an empty string
func (i PhoneIndex) Lookup(stationNumber string) string {
	return i.phones[stationKey(stationNumber)]
}

// WebsiteIndex maps a facility id to its curated website
type WebsiteIndex struct {
	urls map[string]string
}

// NewWebsiteIndex builds a case-insensitive website index
func NewWebsiteIndex(urls map[string]string) WebsiteIndex {
	index := make(map[string]string, len(urls))
	for id, url := range urls {
		if key := strings.ToLower(strings.TrimSpace(id)); key != "" {
			index[key] = strings.TrimSpace(url)
		}
	}
	return WebsiteIndex{urls: index}
}

// Lookup returns the website of a facility id, or an empty string
func (i WebsiteIndex) Lookup(facilityID string) string {
	return i.urls[strings.ToLower(strings.TrimSpace(facilityID))]
}
