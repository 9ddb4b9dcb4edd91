package reconcile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// reportTimestamp is the layout of the timestamp in report file names
const reportTimestamp = "20060102150405"

// ReportEntry is one unresolved record
type ReportEntry struct {
	Team     string `json:"team"`
	Opponent string `json:"opponent,omitempty"`
	Date     string `json:"game_date"`
	Season   string `json:"season"`
	Reason   string `json:"error"`
}

// Report accumulates unresolved records over a run
type Report struct {
	mu      sync.Mutex
	RunID   string        `json:"run_id"`
	Started time.Time     `json:"started_at"`
	Entries []ReportEntry `json:"unresolved"`
}

// NewReport starts a report for a new run
func NewReport(now time.Time) *Report {
	return &Report{RunID: uuid.NewString(), Started: now}
}

// Add records an unresolved error
func (r *Report) Add(err *UnresolvedError, opponent string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, ReportEntry{
		Team:     err.Team,
		Opponent: opponent,
		Date:     err.Date,
		Season:   err.Season,
		Reason:   err.Reason,
	})
}

// Len returns the number of unresolved entries
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Entries)
}

// Write saves the report as id_errors_<timestamp>.json under dir. Nothing
// is written for an empty report; the returned path is then empty.
func (r *Report) Write(dir string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.Entries) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("id_errors_%s.json", r.Started.Format(reportTimestamp)))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	log.Info().Str("file", path).Str("run_id", r.RunID).Int("unresolved", len(r.Entries)).Msg("Error report written")
	return path, nil
}
