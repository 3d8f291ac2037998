package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mco-dev/mco/internal/types"
)

func TestWriteStateFileRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "state.json")

	marker := StateMarker{
		TaskID:   "20260729T000000-abcd1234",
		Mode:     types.ModeReview,
		Decision: types.DecisionPass,
		EndedAt:  time.Date(2026, 7, 29, 0, 0, 1, 0, time.UTC),
	}
	if err := WriteStateFile(path, marker); err != nil {
		t.Fatalf("WriteStateFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	var got StateMarker
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.TaskID != marker.TaskID || got.Decision != marker.Decision {
		t.Errorf("WriteStateFile round trip = %+v, want %+v", got, marker)
	}
}

func TestWriteStateFileOverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	first := StateMarker{TaskID: "first", Decision: types.DecisionFail}
	second := StateMarker{TaskID: "second", Decision: types.DecisionPass}

	if err := WriteStateFile(path, first); err != nil {
		t.Fatalf("WriteStateFile first: %v", err)
	}
	if err := WriteStateFile(path, second); err != nil {
		t.Fatalf("WriteStateFile second: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var got StateMarker
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.TaskID != "second" {
		t.Errorf("got TaskID %q, want %q after overwrite", got.TaskID, "second")
	}
}
