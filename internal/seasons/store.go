// Package seasons stores scraped game records as one JSON array per season
// under a base directory (games_in_<year>.json).
package seasons

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"nfl_games/reconciler/internal/models"

	"github.com/rs/zerolog/log"
)

const (
	filePrefix = "games_in_"
	fileSuffix = ".json"
)

// ErrSeasonFileNotFound is returned when no file exists for a year
var ErrSeasonFileNotFound = errors.New("season file not found")

// Store reads and writes season files. Every write replaces the whole file.
type Store struct {
	dir string
}

// NewStore constructs a store rooted at dir
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the base directory
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path for a season
func (s *Store) Path(year int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s%d%s", filePrefix, year, fileSuffix))
}

// Years lists the seasons that have a file, ascending
func (s *Store) Years() ([]int, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list season files: %w", err)
	}

	var years []int
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		year, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix))
		if err != nil {
			log.Debug().Str("file", name).Msg("Ignoring file with non-numeric season")
			continue
		}
		years = append(years, year)
	}
	sort.Ints(years)
	return years, nil
}

// Load reads all records of a season
func (s *Store) Load(year int) ([]*models.SeasonRecord, error) {
	path := s.Path(year)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSeasonFileNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var records []*models.SeasonRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	log.Debug().Int("season", year).Int("records", len(records)).Msg("Season file loaded")
	return records, nil
}

// Save overwrites a season file with the given records
func (s *Store) Save(year int, records []*models.SeasonRecord) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.dir, err)
	}
	if records == nil {
		records = []*models.SeasonRecord{}
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode season %d: %w", year, err)
	}

	path := s.Path(year)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	log.Debug().Int("season", year).Int("records", len(records)).Msg("Season file saved")
	return nil
}

// Merge adds incoming records to a season file, suppressing records that
// are structurally identical to one already stored or seen earlier in
// incoming. It returns the number of records added.
func (s *Store) Merge(year int, incoming []*models.SeasonRecord) (int, error) {
	existing, err := s.Load(year)
	if err != nil && !errors.Is(err, ErrSeasonFileNotFound) {
		return 0, err
	}

	merged, added := merge(existing, incoming)
	if err := s.Save(year, merged); err != nil {
		return 0, err
	}

	log.Info().
		Int("season", year).
		Int("incoming", len(incoming)).
		Int("added", added).
		Int("total", len(merged)).
		Msg("Season records merged")
	return added, nil
}

func merge(existing, incoming []*models.SeasonRecord) ([]*models.SeasonRecord, int) {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	out := make([]*models.SeasonRecord, 0, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.Key()] = struct{}{}
		out = append(out, r)
	}

	added := 0
	for _, r := range incoming {
		key := r.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
		added++
	}
	return out, added
}

// Dedupe drops records structurally identical to an earlier one, keeping order
func Dedupe(records []*models.SeasonRecord) ([]*models.SeasonRecord, int) {
	out, _ := merge(nil, records)
	return out, len(records) - len(out)
}
