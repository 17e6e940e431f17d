package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleFixtures = `
covs: ["101", "102"]
events:
  - Summer Encampment
  - Summer Encampment
inspections:
  - van_number: "101"
    date: "2024-07-10T08:15"
    inspector_id: "555001"
    event_name: Summer Encampment
    odometer_in: "48213"
    video_filename: cov101.mov
  - van_number: "103"
    date: "2024-07-11T09:00"
    inspector_id: "555002"
`

func TestLoadFixtures(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	n, err := LoadFixtures(ctx, st, strings.NewReader(sampleFixtures))
	if err != nil {
		t.Fatalf("LoadFixtures: %v", err)
	}
	if n != 2 {
		t.Errorf("inserted = %d, want 2", n)
	}

	events, _ := st.ListEvents(ctx)
	if len(events) != 1 {
		t.Errorf("events = %d, want 1 (duplicates skipped)", len(events))
	}
	covs, _ := st.ListCOVs(ctx)
	if len(covs) != 3 {
		t.Errorf("covs = %d, want 3 (103 registered by its inspection)", len(covs))
	}
	missing, _ := st.MissingVideos(ctx)
	if len(missing) != 1 || missing[0].VanNumber != "103" {
		t.Errorf("missing = %+v", missing)
	}
}

func TestLoadFixturesFile(t *testing.T) {
	st := testStore(t)
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	if err := os.WriteFile(path, []byte(sampleFixtures), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFixturesFile(context.Background(), st, path); err != nil {
		t.Fatalf("LoadFixturesFile: %v", err)
	}
	if _, err := LoadFixturesFile(context.Background(), st, path+".missing"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFixtures_Empty(t *testing.T) {
	st := testStore(t)
	n, err := LoadFixtures(context.Background(), st, strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFixtures empty: %v", err)
	}
	if n != 0 {
		t.Errorf("inserted = %d, want 0", n)
	}
}

func TestLoadFixtures_Malformed(t *testing.T) {
	st := testStore(t)
	if _, err := LoadFixtures(context.Background(), st, strings.NewReader("covs: {not: [a list")); err == nil {
		t.Fatal("expected decode error")
	}
}
