package reconcile

import (
	"context"
	"sort"
)

// MissingCounts holds, per team collection, the number of games missing
// stage or week in each season
type MissingCounts map[string]map[string]int

// Total returns the number of games counted
func (m MissingCounts) Total() int {
	n := 0
	for _, seasons := range m {
		for _, c := range seasons {
			n += c
		}
	}
	return n
}

// Teams returns the counted team collections, sorted
func (m MissingCounts) Teams() []string {
	out := make([]string, 0, len(m))
	for team := range m {
		out = append(out, team)
	}
	sort.Strings(out)
	return out
}

// Seasons returns the counted seasons of a team, sorted
func (m MissingCounts) Seasons(team string) []string {
	out := make([]string, 0, len(m[team]))
	for s := range m[team] {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Check counts the database games that still miss stage or week
func (p *Pipeline) Check(ctx context.Context, filter Filter) (MissingCounts, error) {
	collections, err := p.collections(ctx, filter)
	if err != nil {
		return nil, err
	}

	counts := make(MissingCounts)
	for _, collection := range collections {
		refs, err := p.games.MissingStageOrWeek(ctx, collection)
		if err != nil {
			return nil, err
		}
		for _, ref := range refs {
			season := ref.Entry.League.SeasonLabel()
			if !filter.SeasonLabel(season) {
				continue
			}
			if counts[collection] == nil {
				counts[collection] = make(map[string]int)
			}
			counts[collection][season]++
		}
	}
	return counts, nil
}
