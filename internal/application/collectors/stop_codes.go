package collectors

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/clients/cdw"
)

// StopCode is one clinical service offered at a station
type StopCode struct {
	StationNumber string
	Code          string
	Name          string
	WaitTimeNew   *float64
}

type stopCodeSet map[string]struct{}

func newStopCodeSet(codes ...string) stopCodeSet {
	set := make(stopCodeSet, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return set
}

func (s stopCodeSet) contains(code string) bool {
	_, ok := s[strings.TrimSpace(code)]
	return ok
}

var (
	nutritionStopCodes = newStopCodeSet("123", "124")
	podiatryStopCodes  = newStopCodeSet("411")
	dentistryStopCodes = newStopCodeSet("180", "181", "182")
)

// NewStopCodes converts warehouse rows. A row whose wait time is present
// but not numeric is skipped with a warning.
func NewStopCodes(rows []cdw.StopCodeRow) []StopCode {
	stopCodes := make([]StopCode, 0, len(rows))
	for _, row := range rows {
		waitTime, ok := parseFloat(row.AvgWaitTimeNew)
		if !ok {
			log.Warn().
				Str("station", row.Sta6a).
				Str("stop_code", row.PrimaryStopCode).
				Str("wait_time", row.AvgWaitTimeNew).
				Msg("skipping stop code with non-numeric wait time")
			continue
		}
		stopCodes = append(stopCodes, StopCode{
			StationNumber: strings.TrimSpace(row.Sta6a),
			Code:          strings.TrimSpace(row.PrimaryStopCode),
			Name:          strings.TrimSpace(row.PrimaryStopCodeName),
			WaitTimeNew:   waitTime,
		})
	}
	return stopCodes
}

// stopCodeServices infers the services signalled by a station's stop codes
func stopCodeServices(stopCodes []StopCode) []entities.HealthService {
	var services []entities.HealthService
	if anyStopCode(stopCodes, dentistryStopCodes) {
		services = append(services, entities.HealthServiceDentalServices)
	}
	if anyStopCode(stopCodes, nutritionStopCodes) {
		services = append(services, entities.HealthServiceNutrition)
	}
	if anyStopCode(stopCodes, podiatryStopCodes) {
		services = append(services, entities.HealthServicePodiatry)
	}
	return services
}

func anyStopCode(stopCodes []StopCode, set stopCodeSet) bool {
	for _, stopCode := range stopCodes {
		if set.contains(stopCode.Code) {
			return true
		}
	}
	return false
}
