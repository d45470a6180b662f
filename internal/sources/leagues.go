package sources

import (
	"strings"

	"github.com/OptionsTradingUni/aipredixt/internal/models"
)

// StaticLeagueDirectory serves league metadata from a built-in table.
// Lookup is pure and never fails.
type StaticLeagueDirectory struct {
	leagues     map[string]models.LeagueMetadata
	defaultMeta models.LeagueMetadata
}

// NewLeagueDirectory builds the directory with the bundled league table.
func NewLeagueDirectory() *StaticLeagueDirectory {
	return &StaticLeagueDirectory{
		leagues: map[string]models.LeagueMetadata{
			"premier league": {Name: "Premier League", Country: "England", Tier: 1, AvgGoals: 2.8, AvgCorners: 10.4, AvgCards: 3.6, DrawRate: 0.24},
			"la liga":        {Name: "La Liga", Country: "Spain", Tier: 1, AvgGoals: 2.6, AvgCorners: 9.8, AvgCards: 4.9, DrawRate: 0.26, StrictReferee: true},
			"serie a":        {Name: "Serie A", Country: "Italy", Tier: 1, AvgGoals: 2.9, AvgCorners: 10.1, AvgCards: 4.5, DrawRate: 0.27, StrictReferee: true},
			"bundesliga":     {Name: "Bundesliga", Country: "Germany", Tier: 1, AvgGoals: 3.2, AvgCorners: 9.6, AvgCards: 3.8, DrawRate: 0.23},
			"ligue 1":        {Name: "Ligue 1", Country: "France", Tier: 1, AvgGoals: 2.7, AvgCorners: 9.9, AvgCards: 4.0, DrawRate: 0.27},
			"championship":   {Name: "Championship", Country: "England", Tier: 2, AvgGoals: 2.5, AvgCorners: 10.8, AvgCards: 3.9, DrawRate: 0.28},
		},
		defaultMeta: models.LeagueMetadata{
			Name:       "Unknown League",
			Tier:       3,
			AvgGoals:   2.6,
			AvgCorners: 10.0,
			AvgCards:   4.0,
			DrawRate:   0.26,
		},
	}
}

// Lookup returns the metadata for a league name, or the default.
func (d *StaticLeagueDirectory) Lookup(league string) models.LeagueMetadata {
	if meta, ok := d.leagues[strings.ToLower(strings.TrimSpace(league))]; ok {
		return meta
	}
	meta := d.defaultMeta
	if league != "" {
		meta.Name = league
	}
	return meta
}
