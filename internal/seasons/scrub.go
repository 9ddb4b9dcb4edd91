package seasons

import (
	"sort"
	"strings"

	"nfl_games/reconciler/internal/labels"
	"nfl_games/reconciler/internal/models"

	"github.com/rs/zerolog/log"
)

// headerWeek is the week cell of header rows the source repeats inside the table
const headerWeek = "Week"

// Selector picks the records a scrub may touch. A nil Selector picks all.
type Selector func(rec *models.SeasonRecord) bool

// Scrub normalizes one season's records: duplicates and header rows are
// dropped, stage and week labels canonicalized, loose dates resolved to ISO
// and the result sorted by date. Records the selector skips keep their
// fields as they are. It returns the cleaned records and the number of
// changes made.
func Scrub(year int, records []*models.SeasonRecord, selected Selector) ([]*models.SeasonRecord, int) {
	changes := 0
	seen := make(map[string]struct{}, len(records))
	cleaned := make([]*models.SeasonRecord, 0, len(records))

	for _, rec := range records {
		if selected != nil && !selected(rec) {
			seen[rec.Key()] = struct{}{}
			cleaned = append(cleaned, rec)
			continue
		}

		if rec.WeekNum == headerWeek {
			changes++
			continue
		}

		if strings.TrimSpace(rec.WeekNum) == "" {
			if rec.HomeTeam == "" || rec.VisitorTeam == "" {
				changes++
				continue
			}
			rec.WeekNum = labels.HallOfFameGame
			changes++
		}

		if rec.Stage == "" {
			rec.Stage = labels.StageFor(rec.WeekNum)
			changes++
		} else if normalized := labels.NormalizeStage(rec.Stage); normalized != rec.Stage {
			rec.Stage = normalized
			changes++
		}

		if canonical := labels.CanonicalWeekLabel(rec.WeekNum); canonical != rec.WeekNum {
			rec.WeekNum = canonical
			changes++
		}

		if rec.GameDate != "" && !labels.IsISODate(rec.GameDate) {
			var (
				date string
				err  error
			)
			if rec.IsPreSeason() {
				date, err = labels.ParseLooseDate(rec.GameDate, year)
			} else {
				date, err = labels.SeasonDate(rec.GameDate, year)
			}
			if err != nil {
				log.Warn().
					Err(err).
					Int("season", year).
					Str("date", rec.GameDate).
					Str("week", rec.WeekNum).
					Msg("Keeping record with unparseable date")
			} else {
				rec.GameDate = date
				changes++
			}
		}

		// duplicates are judged on the normalized record, so a raw copy
		// merged after an earlier scrub collapses into the clean one
		key := rec.Key()
		if _, dup := seen[key]; dup {
			changes++
			continue
		}
		seen[key] = struct{}{}

		cleaned = append(cleaned, rec)
	}

	SortByDate(cleaned)
	return cleaned, changes
}

// SortByDate orders records by ISO date; records without one sort first
func SortByDate(records []*models.SeasonRecord) {
	sortKey := func(r *models.SeasonRecord) string {
		if labels.IsISODate(r.GameDate) {
			return r.GameDate
		}
		return ""
	}
	sort.SliceStable(records, func(i, j int) bool {
		return sortKey(records[i]) < sortKey(records[j])
	})
}

// ScrubYear scrubs a stored season file in place and returns the number of changes
func (s *Store) ScrubYear(year int, selected Selector) (int, error) {
	records, err := s.Load(year)
	if err != nil {
		return 0, err
	}

	before := keys(records)
	cleaned, changes := Scrub(year, records, selected)
	if changes == 0 && equalKeys(before, keys(cleaned)) {
		log.Debug().Int("season", year).Msg("Season file already clean")
		return 0, nil
	}

	if err := s.Save(year, cleaned); err != nil {
		return 0, err
	}

	log.Info().Int("season", year).Int("changes", changes).Int("records", len(cleaned)).Msg("Season file scrubbed")
	return changes, nil
}

func keys(records []*models.SeasonRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Key()
	}
	return out
}

func equalKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
