// Package teams loads the team reference file and maps team display names
// to numeric ids, database collection keys and logos.
package teams

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"nfl_games/reconciler/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrReferenceData marks a missing or corrupt team reference file. Nothing
// can be reconciled without it.
var ErrReferenceData = errors.New("team reference data unavailable")

// UnknownTeamError is returned when a name is not in the directory
type UnknownTeamError struct {
	Name string
}

func (e *UnknownTeamError) Error() string {
	return fmt.Sprintf("unknown team %q", e.Name)
}

// Directory is the immutable team lookup built once per run
type Directory struct {
	teams  []models.Team
	byName map[string]models.Team
	byID   map[int]models.Team
}

// Load reads the team reference file ({"response": [{name, id, logo}]})
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrReferenceData, path, err)
	}

	var file models.TeamsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrReferenceData, path, err)
	}

	dir, err := New(file.Response)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("file", path).
		Int("teams", len(dir.teams)).
		Int("tables_version", TablesVersion).
		Msg("Team directory loaded")

	return dir, nil
}

// New builds a directory from reference entries
func New(teams []models.Team) (*Directory, error) {
	if len(teams) == 0 {
		return nil, fmt.Errorf("%w: no teams", ErrReferenceData)
	}

	d := &Directory{
		teams:  make([]models.Team, 0, len(teams)),
		byName: make(map[string]models.Team, len(teams)),
		byID:   make(map[int]models.Team, len(teams)),
	}
	for _, t := range teams {
		if t.Name == "" {
			return nil, fmt.Errorf("%w: team id %d has no name", ErrReferenceData, t.ID)
		}
		if _, dup := d.byName[t.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate team name %q", ErrReferenceData, t.Name)
		}
		d.teams = append(d.teams, t)
		d.byName[t.Name] = t
		d.byID[t.ID] = t
	}
	return d, nil
}

// Resolve finds a team by its exact display name, falling back to the
// legacy franchise-name table.
func (d *Directory) Resolve(name string) (models.Team, error) {
	if t, ok := d.byName[name]; ok {
		return t, nil
	}
	if current, ok := legacyNames[name]; ok {
		if t, ok := d.byName[current]; ok {
			return t, nil
		}
	}
	return models.Team{}, &UnknownTeamError{Name: name}
}

// Teams returns the reference entries in file order
func (d *Directory) Teams() []models.Team {
	out := make([]models.Team, len(d.teams))
	copy(out, d.teams)
	return out
}

// CollectionFor returns the collection key of the team with the given id
func (d *Directory) CollectionFor(id int) (string, bool) {
	t, ok := d.byID[id]
	if !ok {
		return "", false
	}
	return CollectionKey(t.Name), true
}

// Logo returns the logo to display for a team id under the given display
// name. Historical names with a pinned logo take precedence.
func (d *Directory) Logo(id int, displayName string) string {
	if logo, ok := logoOverrides[displayName]; ok {
		return logo
	}
	return d.byID[id].Logo
}

// CollectionKey normalizes a team name to its database collection name:
// title case, key fixes, then spaces to underscores.
func CollectionKey(name string) string {
	key := cases.Title(language.English).String(strings.TrimSpace(name))
	for _, fix := range keyFixes {
		key = strings.ReplaceAll(key, fix.From, fix.To)
	}
	return strings.ReplaceAll(key, " ", "_")
}

// DisplayName reverses CollectionKey's underscore substitution for logging
func DisplayName(collection string) string {
	return strings.ReplaceAll(collection, "_", " ")
}
