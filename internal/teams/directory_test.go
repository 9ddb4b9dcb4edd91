package teams

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"nfl_games/reconciler/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTeams() []models.Team {
	return []models.Team{
		{ID: 1, Name: "Pittsburgh Steelers", Logo: "https://logos/pit.png"},
		{ID: 2, Name: "Green Bay Packers", Logo: "https://logos/gb.png"},
		{ID: 3, Name: "San Francisco 49ers", Logo: "https://logos/sf.png"},
		{ID: 4, Name: "Washington Commanders", Logo: "https://logos/was.png"},
		{ID: 5, Name: "Los Angeles Rams", Logo: "https://logos/lar.png"},
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teams.json")
	body := `{"response":[{"id":1,"name":"Pittsburgh Steelers","logo":"https://logos/pit.png"}]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	dir, err := Load(path)
	require.NoError(t, err)

	team, err := dir.Resolve("Pittsburgh Steelers")
	require.NoError(t, err)
	assert.Equal(t, 1, team.ID)
}

func TestLoad_ReferenceDataErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, ErrReferenceData))

	path := filepath.Join(t.TempDir(), "teams.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err = Load(path)
	assert.True(t, errors.Is(err, ErrReferenceData))

	require.NoError(t, os.WriteFile(path, []byte(`{"response":[]}`), 0o644))
	_, err = Load(path)
	assert.True(t, errors.Is(err, ErrReferenceData))
}

func TestResolve(t *testing.T) {
	dir, err := New(testTeams())
	require.NoError(t, err)

	team, err := dir.Resolve("Green Bay Packers")
	require.NoError(t, err)
	assert.Equal(t, 2, team.ID)

	team, err = dir.Resolve("St. Louis Rams")
	require.NoError(t, err, "legacy franchise names resolve through the alias table")
	assert.Equal(t, 5, team.ID)

	_, err = dir.Resolve("green bay packers")
	var unknown *UnknownTeamError
	require.True(t, errors.As(err, &unknown), "resolution is exact")
	assert.Equal(t, "green bay packers", unknown.Name)
}

func TestNew_RejectsDuplicates(t *testing.T) {
	_, err := New([]models.Team{{ID: 1, Name: "A"}, {ID: 2, Name: "A"}})
	assert.True(t, errors.Is(err, ErrReferenceData))
}

func TestCollectionKey(t *testing.T) {
	assert.Equal(t, "Pittsburgh_Steelers", CollectionKey("Pittsburgh Steelers"))
	assert.Equal(t, "San_Francisco_49ers", CollectionKey("San Francisco 49ers"))
	assert.Equal(t, "San_Francisco_49ers", CollectionKey("SAN FRANCISCO 49ERS"))
	assert.Equal(t, "New_York_Jets", CollectionKey("new york jets"))

	// deterministic across calls
	for i := 0; i < 3; i++ {
		assert.Equal(t, "Green_Bay_Packers", CollectionKey("Green Bay Packers"))
	}
	assert.Equal(t, "Green Bay Packers", DisplayName(CollectionKey("Green Bay Packers")))
}

func TestCollectionFor(t *testing.T) {
	dir, err := New(testTeams())
	require.NoError(t, err)

	key, ok := dir.CollectionFor(3)
	require.True(t, ok)
	assert.Equal(t, "San_Francisco_49ers", key)

	_, ok = dir.CollectionFor(99)
	assert.False(t, ok)
}

func TestLogo(t *testing.T) {
	dir, err := New(testTeams())
	require.NoError(t, err)

	assert.Equal(t, "https://logos/was.png", dir.Logo(4, "Washington Commanders"))
	assert.Equal(t, logoOverrides["Washington Redskins"], dir.Logo(4, "Washington Redskins"))
	assert.Equal(t, "", dir.Logo(99, "Nobody"))
}
