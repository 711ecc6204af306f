package accesstocare

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// AccessToCareEntry is one wait-time row of the access-to-care feed
type AccessToCareEntry struct {
	FacilityID    string
	ApptTypeName  string
	EstWaitTime   *float64
	NewWaitTime   *float64
	EmergencyCare *bool
	UrgentCare    *bool
	SliceEndDate  string
}

// AccessToPwtEntry is one patient-satisfaction row of the access-to-pwt feed
type AccessToPwtEntry struct {
	FacilityID   string
	ApptTypeName string
	ShepScore    *float64
	SliceEndDate string
}

// fieldRule routes one upstream key to a setter. Rules are evaluated in
// order against the normalized key and the first match wins.
type fieldRule[T any] struct {
	name  string
	match func(key string) bool
	set   func(entry *T, value json.RawMessage) error
}

func keyEquals(names ...string) func(string) bool {
	return func(key string) bool {
		for _, name := range names {
			if key == name {
				return true
			}
		}
		return false
	}
}

func keyContains(fragment string) func(string) bool {
	return func(key string) bool {
		return strings.Contains(key, fragment)
	}
}

var accessToCareRules = []fieldRule[AccessToCareEntry]{
	{
		name:  "facility id",
		match: isStationKey,
		set: func(e *AccessToCareEntry, v json.RawMessage) error {
			return setStationOnce(&e.FacilityID, v)
		},
	},
	{
		name:  "appointment type",
		match: keyContains("appttypename"),
		set: func(e *AccessToCareEntry, v json.RawMessage) error {
			return decodeText(&e.ApptTypeName, v)
		},
	},
	{
		name:  "established wait time",
		match: keyContains("estwaittime"),
		set: func(e *AccessToCareEntry, v json.RawMessage) error {
			return decodeNumber(&e.EstWaitTime, v)
		},
	},
	{
		name:  "new wait time",
		match: keyContains("newwaittime"),
		set: func(e *AccessToCareEntry, v json.RawMessage) error {
			return decodeNumber(&e.NewWaitTime, v)
		},
	},
	{
		name:  "emergency care",
		match: keyEquals("ed", "emergencycare"),
		set: func(e *AccessToCareEntry, v json.RawMessage) error {
			return decodeFlag(&e.EmergencyCare, v)
		},
	},
	{
		name:  "urgent care",
		match: keyEquals("uc", "urgentcare"),
		set: func(e *AccessToCareEntry, v json.RawMessage) error {
			return decodeFlag(&e.UrgentCare, v)
		},
	},
	{
		name:  "slice end date",
		match: keyContains("sliceenddate"),
		set: func(e *AccessToCareEntry, v json.RawMessage) error {
			return decodeText(&e.SliceEndDate, v)
		},
	},
}

var accessToPwtRules = []fieldRule[AccessToPwtEntry]{
	{
		name:  "facility id",
		match: isStationKey,
		set: func(e *AccessToPwtEntry, v json.RawMessage) error {
			return setStationOnce(&e.FacilityID, v)
		},
	},
	{
		name:  "appointment type",
		match: keyContains("appttypename"),
		set: func(e *AccessToPwtEntry, v json.RawMessage) error {
			return decodeText(&e.ApptTypeName, v)
		},
	},
	{
		name:  "shep score",
		match: keyContains("shepscore"),
		set: func(e *AccessToPwtEntry, v json.RawMessage) error {
			return decodeNumber(&e.ShepScore, v)
		},
	},
	{
		name:  "slice end date",
		match: keyContains("sliceenddate"),
		set: func(e *AccessToPwtEntry, v json.RawMessage) error {
			return decodeText(&e.SliceEndDate, v)
		},
	},
}

func isStationKey(key string) bool {
	return key == "facilityid" || key == "facility_id" || key == "stationid" || key == "stationnumber"
}

// UnmarshalJSON decodes an entry through the access-to-care rule list
func (e *AccessToCareEntry) UnmarshalJSON(data []byte) error {
	return applyRules(data, accessToCareRules, e)
}

// UnmarshalJSON decodes an entry through the access-to-pwt rule list
func (e *AccessToPwtEntry) UnmarshalJSON(data []byte) error {
	return applyRules(data, accessToPwtRules, e)
}

// applyRules feeds every key of a JSON object to the first matching rule.
// Keys are visited in payload order, so where several keys feed one field
// the earliest in the document wins. A value a rule cannot decode drops
// that field only.
func applyRules[T any](data []byte, rules []fieldRule[T], entry *T) error {
	if isNull(data) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}

		normalized := strings.ToLower(strings.TrimSpace(key))
		for _, rule := range rules {
			if !rule.match(normalized) {
				continue
			}
			if err := rule.set(entry, value); err != nil {
				log.Warn().Err(err).Str("key", key).Str("field", rule.name).Msg("dropping unparseable field")
			}
			break
		}
	}
	return expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func isNull(v json.RawMessage) bool {
	trimmed := bytes.TrimSpace(v)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func setStationOnce(target *string, v json.RawMessage) error {
	if *target != "" {
		return nil
	}
	return decodeText(target, v)
}

// decodeText accepts strings and numbers
func decodeText(target *string, v json.RawMessage) error {
	if isNull(v) {
		return nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		*target = strings.TrimSpace(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		*target = n.String()
		return nil
	}
	return fmt.Errorf("not a text value: %s", string(v))
}

// decodeNumber accepts numbers and numeric strings
func decodeNumber(target **float64, v json.RawMessage) error {
	if isNull(v) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(v, &f); err == nil {
		*target = &f
		return nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return fmt.Errorf("not a numeric value: %s", string(v))
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a numeric value: %q", s)
	}
	*target = &parsed
	return nil
}

// decodeFlag accepts booleans and the textual flags the feed uses
func decodeFlag(target **bool, v json.RawMessage) error {
	if isNull(v) {
		return nil
	}
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		*target = &b
		return nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		var n float64
		if numErr := json.Unmarshal(v, &n); numErr != nil {
			return fmt.Errorf("not a flag value: %s", string(v))
		}
		flag := n != 0
		*target = &flag
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return nil
	case "true", "yes", "y", "1":
		flag := true
		*target = &flag
	case "false", "no", "n", "0":
		flag := false
		*target = &flag
	default:
		return fmt.Errorf("not a flag value: %q", s)
	}
	return nil
}
