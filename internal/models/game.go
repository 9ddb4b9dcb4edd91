package models

import (
	"fmt"
	"math"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SeasonDocument is one team's games for one season. Each team collection
// holds one document per season keyed by parameters.season.
type SeasonDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	Parameters Parameters         `bson:"parameters"`
	Games      []GameEntry        `bson:"games"`
}

// Parameters mirrors the query parameters the document was fetched with
type Parameters struct {
	Team   interface{} `bson:"team,omitempty"`
	Season string      `bson:"season"`
}

// GameEntry is one element of a SeasonDocument's games array
type GameEntry struct {
	Game   GameInfo `bson:"game"`
	League League   `bson:"league"`
	Teams  Matchup  `bson:"teams"`
	Scores Scores   `bson:"scores"`
}

// GameInfo holds the identity and schedule fields of a game.
// Week is stored as a string, a number, or null depending on provenance.
type GameInfo struct {
	ID    int         `bson:"id"`
	Stage *string     `bson:"stage"`
	Week  interface{} `bson:"week"`
	Date  GameDate    `bson:"date"`
}

// GameDate is the nested date object; only Date (YYYY-MM-DD) is used
type GameDate struct {
	Timezone string `bson:"timezone,omitempty"`
	Date     string `bson:"date"`
	Time     string `bson:"time,omitempty"`
}

// League carries the season label the game is indexed under
type League struct {
	ID     int         `bson:"id,omitempty"`
	Name   string      `bson:"name,omitempty"`
	Season interface{} `bson:"season"`
}

// Matchup holds both sides of a game
type Matchup struct {
	Home TeamRef `bson:"home"`
	Away TeamRef `bson:"away"`
}

// TeamRef is a team as embedded in a game
type TeamRef struct {
	ID   int    `bson:"id"`
	Name string `bson:"name"`
	Logo string `bson:"logo"`
}

// Scores holds both sides' score lines
type Scores struct {
	Home ScoreLine `bson:"home"`
	Away ScoreLine `bson:"away"`
}

// ScoreLine is a team's score; Total is null for unplayed games
type ScoreLine struct {
	Total *int `bson:"total"`
}

// GameRef addresses a single game inside a team collection
type GameRef struct {
	Collection string
	DocID      primitive.ObjectID
	Entry      GameEntry
}

// GameUpdate is a targeted field-level update of one game. Nil fields are left untouched.
type GameUpdate struct {
	Stage    *string
	Week     *string
	Date     *string
	HomeName *string
	HomeLogo *string
	AwayName *string
	AwayLogo *string
}

// IsEmpty returns true when the update sets nothing
func (u GameUpdate) IsEmpty() bool {
	return u.Stage == nil && u.Week == nil && u.Date == nil &&
		u.HomeName == nil && u.HomeLogo == nil && u.AwayName == nil && u.AwayLogo == nil
}

// WeekUpdate rewrites a single game's week label
type WeekUpdate struct {
	DocID  primitive.ObjectID
	GameID int
	Week   string
}

// StageMissing reports whether game.stage is null or empty
func (g *GameInfo) StageMissing() bool {
	return g.Stage == nil || *g.Stage == ""
}

// WeekMissing reports whether game.week is null or empty
func (g *GameInfo) WeekMissing() bool {
	if g.Week == nil {
		return true
	}
	s, ok := g.Week.(string)
	return ok && s == ""
}

// WeekText renders the stored week value as text.
// Integral numbers render without a decimal part.
func (g *GameInfo) WeekText() (string, bool) {
	switch v := g.Week.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case int32:
		return strconv.Itoa(int(v)), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case int:
		return strconv.Itoa(v), true
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10), true
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return fmt.Sprint(v), true
	}
}

// SeasonLabel returns league.season as a string
func (l League) SeasonLabel() string {
	switch v := l.Season.(type) {
	case nil:
		return ""
	case string:
		return v
	case int32:
		return strconv.Itoa(int(v))
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return fmt.Sprint(v)
	}
}

// Result returns the implied winner and loser ids from the score totals.
// ok is false for unplayed or tied games.
func (e *GameEntry) Result() (winnerID, loserID int, ok bool) {
	home, away := e.Scores.Home.Total, e.Scores.Away.Total
	if home == nil || away == nil || *home == *away {
		return 0, 0, false
	}
	if *home > *away {
		return e.Teams.Home.ID, e.Teams.Away.ID, true
	}
	return e.Teams.Away.ID, e.Teams.Home.ID, true
}

// FindGame returns the index of the game with the given id, or -1
func (d *SeasonDocument) FindGame(gameID int) int {
	for i := range d.Games {
		if d.Games[i].Game.ID == gameID {
			return i
		}
	}
	return -1
}
