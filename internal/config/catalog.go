package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// SeasonFull is the sentinel season list entry that expands to the shared
// full season ID list.
const SeasonFull = "FULL"

// Catalog is the league and season document driving an ingest run. It is
// loaded from catalog.yaml rather than the environment so the league set
// can be versioned alongside the code.
type Catalog struct {
	Leagues       []LeagueEntry `mapstructure:"leagues"`
	FullSeasonIDs []string      `mapstructure:"full_season_ids"`
	Blacklist     []string      `mapstructure:"blacklist"`
}

// LeagueEntry is one configured league with the seasons to ingest.
type LeagueEntry struct {
	LeagueID   string   `mapstructure:"league_id"`
	LeagueName string   `mapstructure:"league_name"`
	SeasonIDs  []string `mapstructure:"season_ids"`
}

// LoadCatalog reads catalog.yaml from dir.
func LoadCatalog(dir string) (Catalog, error) {
	v := viper.New()
	v.SetConfigName("catalog")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		return Catalog{}, fmt.Errorf("read catalog config: %w", err)
	}

	var catalog Catalog
	if err := v.Unmarshal(&catalog); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog config: %w", err)
	}

	if err := catalog.Validate(); err != nil {
		return Catalog{}, err
	}
	return catalog, nil
}

func (c Catalog) Validate() error {
	if len(c.Leagues) == 0 {
		return fmt.Errorf("catalog has no leagues")
	}
	for _, league := range c.Leagues {
		if strings.TrimSpace(league.LeagueID) == "" {
			return fmt.Errorf("catalog league %q has no league_id", league.LeagueName)
		}
		if strings.TrimSpace(league.LeagueName) == "" {
			return fmt.Errorf("catalog league %s has no league_name", league.LeagueID)
		}
		if len(league.SeasonIDs) == 0 {
			return fmt.Errorf("catalog league %s has no season_ids", league.LeagueID)
		}
		if usesFullSeasons(league.SeasonIDs) && len(c.FullSeasonIDs) == 0 {
			return fmt.Errorf("catalog league %s uses %s but full_season_ids is empty", league.LeagueID, SeasonFull)
		}
	}
	return nil
}

// Seasons resolves the season list for one league, expanding the FULL
// sentinel. The configured order is preserved and duplicates are kept.
func (c Catalog) Seasons(league LeagueEntry) []string {
	if usesFullSeasons(league.SeasonIDs) {
		return append([]string(nil), c.FullSeasonIDs...)
	}
	return append([]string(nil), league.SeasonIDs...)
}

func usesFullSeasons(seasonIDs []string) bool {
	return len(seasonIDs) == 1 && seasonIDs[0] == SeasonFull
}
