package seasons

import (
	"testing"

	"nfl_games/reconciler/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrub(t *testing.T) {
	records := []*models.SeasonRecord{
		{WeekNum: "SuperBowl", GameDate: "February 7", Winner: "Denver Broncos", Loser: "Carolina Panthers"},
		{WeekNum: "Week"},
		{WeekNum: "1", GameDate: "September 10", Winner: "New England Patriots", Loser: "Pittsburgh Steelers"},
		{WeekNum: "1", GameDate: "September 10", Winner: "New England Patriots", Loser: "Pittsburgh Steelers"},
		{Stage: models.StagePreSeason, GameDate: "August 9", HomeTeam: "Minnesota Vikings", VisitorTeam: "Pittsburgh Steelers"},
		{Stage: models.StagePreSeason, GameDate: "August 13"},
		{WeekNum: "WildCard", GameDate: "2016-01-09", Winner: "Kansas City Chiefs", Loser: "Houston Texans"},
		{Stage: "Preseason", WeekNum: "Pre Week 1", GameDate: "sometime", HomeTeam: "A", VisitorTeam: "B"},
	}

	cleaned, changes := Scrub(2015, records, nil)
	assert.Positive(t, changes)
	require.Len(t, cleaned, 5)

	// unparseable dates sort first and are kept verbatim
	assert.Equal(t, "sometime", cleaned[0].GameDate)
	assert.Equal(t, models.StagePreSeason, cleaned[0].Stage)

	assert.Equal(t, "2015-08-09", cleaned[1].GameDate)
	assert.Equal(t, "Hall of Fame Game", cleaned[1].WeekNum)
	assert.Equal(t, models.StagePreSeason, cleaned[1].Stage)

	assert.Equal(t, "2015-09-10", cleaned[2].GameDate)
	assert.Equal(t, models.StageRegularSeason, cleaned[2].Stage)

	assert.Equal(t, "2016-01-09", cleaned[3].GameDate)
	assert.Equal(t, "WildCard", cleaned[3].WeekNum)
	assert.Equal(t, models.StagePostSeason, cleaned[3].Stage)

	assert.Equal(t, "2016-02-07", cleaned[4].GameDate)
	assert.Equal(t, "Super Bowl", cleaned[4].WeekNum)
	assert.Equal(t, models.StagePostSeason, cleaned[4].Stage)
}

func TestScrub_Idempotent(t *testing.T) {
	records := []*models.SeasonRecord{
		{WeekNum: "Division", GameDate: "January 16", Winner: "Arizona Cardinals", Loser: "Green Bay Packers"},
		{WeekNum: "3", GameDate: "September 27", Winner: "Green Bay Packers", Loser: "Kansas City Chiefs"},
	}
	cleaned, _ := Scrub(2015, records, nil)

	again, changes := Scrub(2015, cleaned, nil)
	assert.Zero(t, changes)
	assert.Equal(t, cleaned, again)
}

func TestStore_ScrubYear(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Save(2015, []*models.SeasonRecord{
		{WeekNum: "ConfChamp", GameDate: "January 24", Winner: "Denver Broncos", Loser: "New England Patriots"},
		{WeekNum: "Week"},
	}))

	changes, err := store.ScrubYear(2015, nil)
	require.NoError(t, err)
	assert.Positive(t, changes)

	got, err := store.Load(2015)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Conference Championships", got[0].WeekNum)
	assert.Equal(t, "2016-01-24", got[0].GameDate)

	changes, err = store.ScrubYear(2015, nil)
	require.NoError(t, err)
	assert.Zero(t, changes)
}

func TestStore_ScrubAfterRedownload(t *testing.T) {
	store := NewStore(t.TempDir())
	raw := func() []*models.SeasonRecord {
		return []*models.SeasonRecord{
			{WeekNum: "Division", GameDate: "January 17", Winner: "Arizona Cardinals", Loser: "Green Bay Packers"},
		}
	}

	_, err := store.Merge(2015, raw())
	require.NoError(t, err)
	_, err = store.ScrubYear(2015, nil)
	require.NoError(t, err)

	// the same page downloaded again differs from the scrubbed copy until scrubbed
	added, err := store.Merge(2015, raw())
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	_, err = store.ScrubYear(2015, nil)
	require.NoError(t, err)

	got, err := store.Load(2015)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.StagePostSeason, got[0].Stage)
	assert.Equal(t, "Divisional Round", got[0].WeekNum)
	assert.Equal(t, "2016-01-17", got[0].GameDate)
}

func TestScrub_SelectorLeavesOtherRecords(t *testing.T) {
	records := []*models.SeasonRecord{
		{WeekNum: "Division", GameDate: "January 17", Winner: "Arizona Cardinals", Loser: "Green Bay Packers"},
		{WeekNum: "Division", GameDate: "January 16", Winner: "Carolina Panthers", Loser: "Seattle Seahawks"},
	}
	packers := func(rec *models.SeasonRecord) bool { return rec.Involves("Green Bay Packers") }

	cleaned, changes := Scrub(2015, records, packers)
	assert.Positive(t, changes)
	require.Len(t, cleaned, 2)

	// the untouched record keeps its loose date and sorts first
	assert.Equal(t, "January 16", cleaned[0].GameDate)
	assert.Equal(t, "Division", cleaned[0].WeekNum)
	assert.Empty(t, cleaned[0].Stage)

	assert.Equal(t, "2016-01-17", cleaned[1].GameDate)
	assert.Equal(t, "Divisional Round", cleaned[1].WeekNum)
}
