package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/facilities-collector/internal/domain/entities"
)

func TestWriteResult(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "facilities.json")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	result := &entities.CollectionResult{
		RunID:      "run-7",
		StartedAt:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 3, 1, 0, 2, 0, 0, time.UTC),
		Domains:    []entities.DomainSummary{{Domain: entities.DomainCemeteries, Facilities: 1}},
		Facilities: []*entities.Facility{entities.NewFacility("nca_907", &entities.FacilityAttributes{Name: "Togus National Cemetery"})},
	}
	require.NoError(t, writeResult(path, result))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded entities.CollectionResult
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "run-7", decoded.RunID)
	require.Len(t, decoded.Facilities, 1)
	assert.Equal(t, "nca_907", decoded.Facilities[0].ID)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestWriteResultMissingDirectory(t *testing.T) {
	err := writeResult(filepath.Join(t.TempDir(), "missing", "out.json"), &entities.CollectionResult{})
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"health", "vet-centers"}, splitList(" health,,vet-centers "))
	assert.Nil(t, splitList(""))
}
