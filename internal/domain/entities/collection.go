package entities

import (
	"time"
)

// Domain names one independent collection pipeline
type Domain string

const (
	DomainHealth          Domain = "health"
	DomainBenefits        Domain = "benefits"
	DomainCemeteries      Domain = "cemeteries"
	DomainStateCemeteries Domain = "state_cemeteries"
	DomainVetCenters      Domain = "vet_centers"
)

// AllDomains lists every domain in reporting order
func AllDomains() []Domain {
	return []Domain{
		DomainHealth,
		DomainBenefits,
		DomainCemeteries,
		DomainStateCemeteries,
		DomainVetCenters,
	}
}

// ParseDomain resolves a domain name, accepting dashes for underscores
func ParseDomain(value string) (Domain, bool) {
	for _, d := range AllDomains() {
		if string(d) == value || dashed(d) == value {
			return d, true
		}
	}
	return "", false
}

func dashed(d Domain) string {
	out := []byte(d)
	for i, c := range out {
		if c == '_' {
			out[i] = '-'
		}
	}
	return string(out)
}

// DomainSummary is the outcome of one domain within a collection run
type DomainSummary struct {
	Domain     Domain        `json:"domain"`
	Facilities int           `json:"facilities"`
	Duration   time.Duration `json:"duration_ns"`
	Error      string        `json:"error,omitempty"`
}

// Succeeded reports whether the domain produced a snapshot
func (s DomainSummary) Succeeded() bool {
	return s.Error == ""
}

// CollectionResult is one batch run over one or more domains
type CollectionResult struct {
	RunID      string                 `json:"run_id"`
	StartedAt  time.Time              `json:"started_at"`
	FinishedAt time.Time              `json:"finished_at"`
	Domains    []DomainSummary        `json:"domains"`
	Facilities []*Facility            `json:"facilities"`
	ByDomain   map[Domain][]*Facility `json:"-"`
}

// Failed returns the summaries of the domains that produced no snapshot
func (r *CollectionResult) Failed() []DomainSummary {
	var failed []DomainSummary
	for _, summary := range r.Domains {
		if !summary.Succeeded() {
			failed = append(failed, summary)
		}
	}
	return failed
}

// DomainSnapshot is the complete output of one domain in one run. It
// replaces the previous snapshot of the domain wholesale.
type DomainSnapshot struct {
	RunID       string
	Domain      Domain
	CollectedAt time.Time
	Facilities  []*Facility
}

// Snapshots splits a run into one snapshot per succeeded domain
func (r *CollectionResult) Snapshots() []*DomainSnapshot {
	var snapshots []*DomainSnapshot
	for _, summary := range r.Domains {
		if !summary.Succeeded() {
			continue
		}
		snapshots = append(snapshots, &DomainSnapshot{
			RunID:       r.RunID,
			Domain:      summary.Domain,
			CollectedAt: r.FinishedAt,
			Facilities:  r.ByDomain[summary.Domain],
		})
	}
	return snapshots
}
