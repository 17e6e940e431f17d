package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/me/covweb/pkg/model"
	"gopkg.in/yaml.v3"
)

// Fixtures is seed data for a fresh database.
type Fixtures struct {
	COVs        []string            `yaml:"covs"`
	Events      []string            `yaml:"events"`
	Inspections []FixtureInspection `yaml:"inspections"`
}

// FixtureInspection is the YAML form of an inspection record.
type FixtureInspection struct {
	VanNumber     string `yaml:"van_number"`
	Date          string `yaml:"date"`
	InspectorID   string `yaml:"inspector_id"`
	EventName     string `yaml:"event_name"`
	OdometerIn    string `yaml:"odometer_in"`
	VideoFilename string `yaml:"video_filename"`
	LicensePlate  string `yaml:"license_plate"`
	Comments      string `yaml:"comments"`
	CreatedAt     string `yaml:"created_at"`
}

// LoadFixturesFile reads YAML fixtures from path and inserts them into st.
func LoadFixturesFile(ctx context.Context, st Store, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()
	return LoadFixtures(ctx, st, f)
}

// LoadFixtures decodes YAML fixtures from r and inserts them into st.
// Events that already exist are skipped. Returns the number of inspections inserted.
func LoadFixtures(ctx context.Context, st Store, r io.Reader) (int, error) {
	var fx Fixtures
	if err := yaml.NewDecoder(r).Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("decode fixtures: %w", err)
	}

	for _, number := range fx.COVs {
		if err := st.UpsertCOV(ctx, number); err != nil {
			return 0, err
		}
	}
	for _, name := range fx.Events {
		err := st.CreateEvent(ctx, &model.Event{Name: name, CreatedBy: "fixtures"})
		if err != nil && !errors.Is(err, ErrDuplicateEvent) {
			return 0, fmt.Errorf("event %q: %w", name, err)
		}
	}
	for i, in := range fx.Inspections {
		rec := &model.InspectionRecord{
			VanNumber:     in.VanNumber,
			Date:          in.Date,
			InspectorID:   in.InspectorID,
			EventName:     in.EventName,
			OdometerIn:    in.OdometerIn,
			VideoFilename: in.VideoFilename,
			LicensePlate:  in.LicensePlate,
			Comments:      in.Comments,
			CreatedAt:     in.CreatedAt,
		}
		if err := st.CreateInspection(ctx, rec); err != nil {
			return i, fmt.Errorf("inspection %d: %w", i, err)
		}
	}
	return len(fx.Inspections), nil
}
