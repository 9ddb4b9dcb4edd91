package models

import (
	"encoding/json"
	"reflect"
	"strings"
)

// Stage values as stored in both the season files and the database
const (
	StagePreSeason     = "Pre Season"
	StageRegularSeason = "Regular Season"
	StagePostSeason    = "Post Season"
)

// Record flags requiring manual resolution
const (
	FlagTiedScore = "tied_score"
)

// SeasonRecord is one scraped game entry of a games_in_<year>.json file.
// Regular and post-season rows carry winner/loser; pre-season rows carry
// home/visitor with points (visitor) and points_opp (home).
type SeasonRecord struct {
	Stage     string `json:"stage,omitempty"`
	WeekNum   string `json:"week_num,omitempty"`
	DayOfWeek string `json:"game_day_of_week,omitempty"`
	GameDate  string `json:"game_date,omitempty"`
	GameTime  string `json:"gametime,omitempty"`

	Winner    string `json:"winner,omitempty"`
	Loser     string `json:"loser,omitempty"`
	PtsWin    string `json:"pts_win,omitempty"`
	PtsLose   string `json:"pts_lose,omitempty"`
	YardsWin  string `json:"yards_win,omitempty"`
	YardsLose string `json:"yards_lose,omitempty"`

	HomeTeam    string `json:"home_team,omitempty"`
	VisitorTeam string `json:"visitor_team,omitempty"`
	Points      string `json:"points,omitempty"`
	PointsOpp   string `json:"points_opp,omitempty"`

	Season        string `json:"season,omitempty"`
	HomeTeamID    *int   `json:"home_team_id,omitempty"`
	VisitorTeamID *int   `json:"visitor_team_id,omitempty"`
	WinnerID      *int   `json:"winner_id,omitempty"`
	LoserID       *int   `json:"loser_id,omitempty"`
	GameID        *int   `json:"game_id,omitempty"`

	Flag string `json:"flag,omitempty"`

	// Extra holds the fields of a stored record that SeasonRecord does not
	// model. They are written back unchanged.
	Extra map[string]json.RawMessage `json:"-"`
}

// seasonRecordFields has SeasonRecord's fields without its JSON methods
type seasonRecordFields SeasonRecord

// knownFields are the JSON names of SeasonRecord's modelled fields
var knownFields = func() map[string]struct{} {
	out := make(map[string]struct{})
	t := reflect.TypeOf(seasonRecordFields{})
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			out[name] = struct{}{}
		}
	}
	return out
}()

// UnmarshalJSON decodes a record, keeping unmodelled fields in Extra
func (r *SeasonRecord) UnmarshalJSON(data []byte) error {
	var fields seasonRecordFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for name := range knownFields {
		delete(all, name)
	}

	*r = SeasonRecord(fields)
	r.Extra = nil
	if len(all) > 0 {
		r.Extra = all
	}
	return nil
}

// MarshalJSON encodes a record together with its Extra fields
func (r SeasonRecord) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(seasonRecordFields(r))
	if err != nil || len(r.Extra) == 0 {
		return data, err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for name, raw := range r.Extra {
		if _, known := knownFields[name]; !known {
			all[name] = raw
		}
	}
	return json.Marshal(all)
}

// HasGameID reports whether a database game id has been assigned
func (r *SeasonRecord) HasGameID() bool {
	return r.GameID != nil
}

// IsPreSeason returns true for pre-season rows
func (r *SeasonRecord) IsPreSeason() bool {
	return r.Stage == StagePreSeason
}

// HasResult reports whether winner and loser ids are both known
func (r *SeasonRecord) HasResult() bool {
	return r.WinnerID != nil && r.LoserID != nil
}

// Involves reports whether the named team played in this game
func (r *SeasonRecord) Involves(team string) bool {
	if team == "" {
		return false
	}
	return r.Winner == team || r.Loser == team || r.HomeTeam == team || r.VisitorTeam == team
}

// Key returns the structural identity of the record. Two records with
// identical field sets produce the same key.
func (r *SeasonRecord) Key() string {
	b, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	return string(b)
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}
