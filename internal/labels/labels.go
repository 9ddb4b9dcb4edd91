// Package labels canonicalizes stage and week labels and normalizes
// the date formats found in scraped season pages.
package labels

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"nfl_games/reconciler/internal/models"
)

// ISODate is the layout of every canonical date
const ISODate = "2006-01-02"

// Raw playoff week labels as scraped
const (
	WeekWildCard  = "WildCard"
	WeekDivision  = "Division"
	WeekConfChamp = "ConfChamp"
	WeekSuperBowl = "SuperBowl"
)

// HallOfFameGame labels the pre-season opener, which the source leaves unlabelled
const HallOfFameGame = "Hall of Fame Game"

// playoffWeeks maps scraped playoff labels to their canonical display label.
// WildCard is a playoff round but keeps its label.
var playoffWeeks = map[string]string{
	WeekWildCard:  WeekWildCard,
	WeekDivision:  "Divisional Round",
	WeekConfChamp: "Conference Championships",
	WeekSuperBowl: "Super Bowl",
}

// StageFor derives the stage from a raw week label. Pre-season cannot be
// derived from the label and is assigned from the pre-season table instead.
func StageFor(week string) string {
	if _, ok := playoffWeeks[week]; ok {
		return models.StagePostSeason
	}
	return models.StageRegularSeason
}

// CanonicalWeekLabel renames the raw playoff labels to their display form
func CanonicalWeekLabel(week string) string {
	if label, ok := playoffWeeks[week]; ok {
		return label
	}
	return week
}

// DisplayWeek rewrites a bare week number ("3") to "Week 3".
// Anything that is not purely digits is returned unchanged.
func DisplayWeek(week string) string {
	w := strings.TrimSpace(week)
	if w == "" || !isDigits(w) {
		return week
	}
	n, err := strconv.Atoi(w)
	if err != nil {
		return week
	}
	return fmt.Sprintf("Week %d", n)
}

// Canonicalize applies CanonicalWeekLabel then DisplayWeek
func Canonicalize(week string) string {
	return DisplayWeek(CanonicalWeekLabel(week))
}

// NormalizeStage maps legacy stage spellings onto the stored values
func NormalizeStage(stage string) string {
	switch strings.ToLower(strings.ReplaceAll(stage, " ", "")) {
	case "preseason":
		return models.StagePreSeason
	case "regularseason":
		return models.StageRegularSeason
	case "postseason":
		return models.StagePostSeason
	}
	return stage
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// DateParseError reports a date string that could not be parsed
type DateParseError struct {
	Text string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("unparseable date %q", e.Text)
}

var looseLayouts = []string{"January 2", "Jan 2"}

// ParseLooseDate parses a "Month Day" string against the given year and
// returns it as YYYY-MM-DD.
func ParseLooseDate(text string, year int) (string, error) {
	month, day, err := parseMonthDay(text)
	if err != nil {
		return "", err
	}
	return buildDate(text, year, month, day)
}

// SeasonDate resolves a date belonging to a season. ISO dates pass through.
// "Month Day" dates from January to July belong to the following calendar
// year, since a season starts in August.
func SeasonDate(text string, season int) (string, error) {
	if IsISODate(text) {
		return strings.TrimSpace(text), nil
	}
	month, day, err := parseMonthDay(text)
	if err != nil {
		return "", err
	}
	year := season
	if month < time.August {
		year++
	}
	return buildDate(text, year, month, day)
}

func parseMonthDay(text string) (time.Month, int, error) {
	t := strings.TrimSpace(text)
	for _, layout := range looseLayouts {
		if parsed, err := time.Parse(layout, t); err == nil {
			return parsed.Month(), parsed.Day(), nil
		}
	}
	return 0, 0, &DateParseError{Text: text}
}

func buildDate(text string, year int, month time.Month, day int) (string, error) {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// February 29 in a non-leap year normalizes into March
	if d.Month() != month || d.Day() != day {
		return "", &DateParseError{Text: text}
	}
	return d.Format(ISODate), nil
}

// IsISODate reports whether s is a valid YYYY-MM-DD date
func IsISODate(s string) bool {
	_, err := time.Parse(ISODate, strings.TrimSpace(s))
	return err == nil
}

// ShiftDate moves an ISO date by the given number of days
func ShiftDate(date string, days int) (string, error) {
	t, err := time.Parse(ISODate, date)
	if err != nil {
		return "", &DateParseError{Text: date}
	}
	return t.AddDate(0, 0, days).Format(ISODate), nil
}

// Year returns the calendar year of an ISO date
func Year(date string) (int, error) {
	t, err := time.Parse(ISODate, date)
	if err != nil {
		return 0, &DateParseError{Text: date}
	}
	return t.Year(), nil
}

// DaysBetween returns the absolute number of days between two ISO dates
func DaysBetween(a, b string) (int, error) {
	ta, err := time.Parse(ISODate, a)
	if err != nil {
		return 0, &DateParseError{Text: a}
	}
	tb, err := time.Parse(ISODate, b)
	if err != nil {
		return 0, &DateParseError{Text: b}
	}
	d := int(ta.Sub(tb).Hours() / 24)
	if d < 0 {
		d = -d
	}
	return d, nil
}
