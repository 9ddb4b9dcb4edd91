package reconcile

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"nfl_games/reconciler/internal/models"
	"nfl_games/reconciler/internal/teams"
)

// AllTeams selects every team
const AllTeams = "all"

// Filter narrows a run to some seasons and one team. A nil Years or an
// empty Team selects everything. A filter bound to a team directory matches
// the team by id, so records naming it by a legacy franchise name match too.
type Filter struct {
	Years []int
	Team  string

	dir    *teams.Directory
	teamID int
}

// ParseYears parses "all", "2015", "2015-2018" or "2015,2017-2018".
// "all" returns nil.
func ParseYears(spec string) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" || strings.EqualFold(spec, "all") {
		return nil, nil
	}

	seen := make(map[int]struct{})
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		from, to := part, part
		if i := strings.Index(part, "-"); i > 0 {
			from, to = part[:i], part[i+1:]
		}

		lo, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return nil, fmt.Errorf("invalid year %q", part)
		}
		hi, err := strconv.Atoi(strings.TrimSpace(to))
		if err != nil {
			return nil, fmt.Errorf("invalid year %q", part)
		}
		if lo > hi {
			return nil, fmt.Errorf("invalid year range %q", part)
		}
		for y := lo; y <= hi; y++ {
			seen[y] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return nil, fmt.Errorf("no years in %q", spec)
	}

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years, nil
}

// NewFilter builds a filter from the --years and --team flag values
func NewFilter(years, team string) (Filter, error) {
	parsed, err := ParseYears(years)
	if err != nil {
		return Filter{}, err
	}
	if strings.EqualFold(strings.TrimSpace(team), AllTeams) {
		team = ""
	}
	return Filter{Years: parsed, Team: strings.TrimSpace(team)}, nil
}

// Year reports whether a season is selected
func (f Filter) Year(year int) bool {
	if f.Years == nil {
		return true
	}
	for _, y := range f.Years {
		if y == year {
			return true
		}
	}
	return false
}

// SeasonLabel reports whether a textual season is selected
func (f Filter) SeasonLabel(season string) bool {
	if f.Years == nil {
		return true
	}
	year, err := strconv.Atoi(strings.TrimSpace(season))
	return err == nil && f.Year(year)
}

// SelectYears keeps the selected seasons of available
func (f Filter) SelectYears(available []int) []int {
	var out []int
	for _, y := range available {
		if f.Year(y) {
			out = append(out, y)
		}
	}
	return out
}

// Bind resolves the filter's team through the directory
func (f Filter) Bind(dir *teams.Directory) (Filter, error) {
	if f.Team == "" {
		return f, nil
	}
	team, err := dir.Resolve(f.Team)
	if err != nil {
		return f, fmt.Errorf("--team: %w", err)
	}
	f.dir = dir
	f.teamID = team.ID
	return f, nil
}

// Collection reports whether a team collection is selected
func (f Filter) Collection(collection string) bool {
	if f.Team == "" {
		return true
	}
	if f.dir != nil {
		key, _ := f.dir.CollectionFor(f.teamID)
		return key == collection
	}
	return teams.CollectionKey(f.Team) == collection
}

// Record reports whether a season record involves the selected team
func (f Filter) Record(rec *models.SeasonRecord) bool {
	if f.Team == "" {
		return true
	}
	if f.dir == nil {
		return rec.Involves(f.Team)
	}

	for _, id := range []*int{rec.WinnerID, rec.LoserID, rec.HomeTeamID, rec.VisitorTeamID} {
		if id != nil && *id == f.teamID {
			return true
		}
	}
	for _, name := range []string{rec.Winner, rec.Loser, rec.HomeTeam, rec.VisitorTeam} {
		if name == "" {
			continue
		}
		if team, err := f.dir.Resolve(name); err == nil && team.ID == f.teamID {
			return true
		}
	}
	return false
}
