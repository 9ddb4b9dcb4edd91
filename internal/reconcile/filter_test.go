package reconcile

import (
	"testing"

	"nfl_games/reconciler/internal/models"
	"nfl_games/reconciler/internal/teams"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYears(t *testing.T) {
	tests := []struct {
		in   string
		want []int
	}{
		{"all", nil},
		{"", nil},
		{"2015", []int{2015}},
		{"2015-2018", []int{2015, 2016, 2017, 2018}},
		{"2015, 2017-2018", []int{2015, 2017, 2018}},
		{"2018,2015,2015", []int{2015, 2018}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseYears(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"20x5", "2018-2015", "2015-", ","} {
		_, err := ParseYears(bad)
		assert.Error(t, err, bad)
	}
}

func TestFilter(t *testing.T) {
	f, err := NewFilter("2015-2016", "Green Bay Packers")
	require.NoError(t, err)

	assert.True(t, f.Year(2016))
	assert.False(t, f.Year(2017))
	assert.True(t, f.SeasonLabel("2015"))
	assert.False(t, f.SeasonLabel("n/a"))
	assert.Equal(t, []int{2015, 2016}, f.SelectYears([]int{2014, 2015, 2016, 2017}))
	assert.True(t, f.Collection("Green_Bay_Packers"))
	assert.False(t, f.Collection("Chicago_Bears"))
	assert.True(t, f.Record(&models.SeasonRecord{Loser: "Green Bay Packers"}))
	assert.False(t, f.Record(&models.SeasonRecord{Winner: "Chicago Bears"}))

	all, err := NewFilter("all", "all")
	require.NoError(t, err)
	assert.True(t, all.Year(1970))
	assert.True(t, all.Collection("Chicago_Bears"))
	assert.True(t, all.Record(&models.SeasonRecord{}))
}

func TestFilter_BoundMatchesLegacyNames(t *testing.T) {
	dir, err := teams.New([]models.Team{
		{ID: 5, Name: "Los Angeles Rams"},
		{ID: 7, Name: "Chicago Bears"},
	})
	require.NoError(t, err)

	f, err := NewFilter("all", "Los Angeles Rams")
	require.NoError(t, err)
	f, err = f.Bind(dir)
	require.NoError(t, err)

	assert.True(t, f.Record(&models.SeasonRecord{Winner: "St. Louis Rams", Loser: "Chicago Bears"}))
	assert.True(t, f.Record(&models.SeasonRecord{HomeTeam: "Chicago Bears", VisitorTeamID: models.IntPtr(5)}))
	assert.False(t, f.Record(&models.SeasonRecord{Winner: "Chicago Bears", Loser: "Green Bay Packers"}))
	assert.True(t, f.Collection("Los_Angeles_Rams"))
	assert.False(t, f.Collection("St._Louis_Rams"))

	// a legacy name on the command line selects the current franchise
	legacy, err := NewFilter("all", "St. Louis Rams")
	require.NoError(t, err)
	legacy, err = legacy.Bind(dir)
	require.NoError(t, err)
	assert.True(t, legacy.Collection("Los_Angeles_Rams"))
	assert.True(t, legacy.Record(&models.SeasonRecord{Loser: "Los Angeles Rams"}))

	unknown, err := NewFilter("all", "Nobody")
	require.NoError(t, err)
	_, err = unknown.Bind(dir)
	var unknownTeam *teams.UnknownTeamError
	assert.ErrorAs(t, err, &unknownTeam)

	all, err := NewFilter("all", "all")
	require.NoError(t, err)
	all, err = all.Bind(dir)
	require.NoError(t, err)
	assert.True(t, all.Record(&models.SeasonRecord{Winner: "Anyone"}))
}

func TestResult_Summary(t *testing.T) {
	r := Result{Stage: "match", Examined: 3, Updated: 2}
	r.Add(Result{Unresolved: 1, Errors: []string{"x"}})
	r.AddErrorf("season %d", 2015)

	assert.Equal(t, "match: examined=3 updated=2 corrected=0 skipped=0 unresolved=1 errors=2", r.Summary())
}
