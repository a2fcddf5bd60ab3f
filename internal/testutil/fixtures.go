package testutil

import (
	"context"
	"path/filepath"
	"runtime"

	"github.com/ben-daghir/hercap/internal/domain/portfolio"
)

// StaticFetcher serves a fixed company list, or Err when set.
type StaticFetcher struct {
	Companies []portfolio.Company
	Err       error
}

func (f StaticFetcher) Load(context.Context) ([]portfolio.Company, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Companies, nil
}

// Companies returns the rows FeedFixturePath parses to.  Websites and
// descriptions are omitted.
func Companies() []portfolio.Company {
	return []portfolio.Company{
		{ID: 1, Name: "Aurelia Health", Stage: portfolio.StageEarly, Location: "New York, NY", Primary: "Healthcare", Secondary: portfolio.OptionalString("AI")},
		{ID: 2, Name: "Bloom Robotics", Stage: portfolio.StageGrowth, Location: "San Francisco, CA", Primary: "Climate", Secondary: portfolio.OptionalString("Robotics"), Tertiary: portfolio.OptionalString("AI")},
		{ID: 3, Name: "Cadence Pay", Stage: portfolio.StageAngel, Location: "London, United Kingdom", Primary: "Fintech"},
		{ID: 6, Name: "Delta Learn", Stage: portfolio.StageEarly, Location: "Austin", Primary: "Education", Secondary: portfolio.OptionalString("AI")},
		{ID: 8, Name: "Fathom Bio", Stage: portfolio.StagePublic, Location: "Unknown City", Primary: "Biotech", Secondary: portfolio.OptionalString("Healthcare")},
	}
}

// FeedFixturePath is the absolute path of the shared portfolio CSV fixture.
func FeedFixturePath() string {
	return filepath.Join(repoRoot(), "internal", "infrastructure", "feed", "testdata", "portfolio.csv")
}

// WorldFixturePath is the absolute path of the shared GeoJSON fixture.
func WorldFixturePath() string {
	return filepath.Join(repoRoot(), "internal", "infrastructure", "geometry", "testdata", "world.geojson")
}

func repoRoot() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..")
}

//Personal.AI order the ending
