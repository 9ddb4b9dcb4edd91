package client

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"nfl_games/reconciler/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// FetchSeason downloads and parses the regular and post-season schedule of a year
func (c *Client) FetchSeason(ctx context.Context, year int) ([]*models.SeasonRecord, error) {
	body, err := c.get(ctx, "season", fmt.Sprintf("years/%d/games.htm", year))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch season %d: %w", year, err)
	}
	records, err := ParseSeasonPage(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse season %d: %w", year, err)
	}
	log.Info().Int("season", year).Int("records", len(records)).Msg("Season page parsed")
	return records, nil
}

// FetchPreseason downloads and parses the pre-season schedule of a year
func (c *Client) FetchPreseason(ctx context.Context, year int) ([]*models.SeasonRecord, error) {
	body, err := c.get(ctx, "preseason", fmt.Sprintf("years/%d/preseason.htm", year))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pre-season %d: %w", year, err)
	}
	records, err := ParsePreseasonPage(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pre-season %d: %w", year, err)
	}
	log.Info().Int("season", year).Int("records", len(records)).Msg("Pre-season page parsed")
	return records, nil
}

// ParseSeasonPage extracts the winner/loser rows of the #games table
func ParseSeasonPage(html []byte) ([]*models.SeasonRecord, error) {
	var records []*models.SeasonRecord
	err := eachGameRow(html, func(cell func(string) string) {
		records = append(records, &models.SeasonRecord{
			WeekNum:   cell("week_num"),
			DayOfWeek: cell("game_day_of_week"),
			GameDate:  cell("game_date"),
			GameTime:  cell("gametime"),
			Winner:    cell("winner"),
			Loser:     cell("loser"),
			PtsWin:    cell("pts_win"),
			PtsLose:   cell("pts_lose"),
			YardsWin:  cell("yards_win"),
			YardsLose: cell("yards_lose"),
		})
	})
	return records, err
}

// ParsePreseasonPage extracts the home/visitor rows of the pre-season #games
// table. The visitor's score goes to points and the home score to points_opp.
func ParsePreseasonPage(html []byte) ([]*models.SeasonRecord, error) {
	var records []*models.SeasonRecord
	err := eachGameRow(html, func(cell func(string) string) {
		records = append(records, &models.SeasonRecord{
			Stage:       models.StagePreSeason,
			WeekNum:     cell("week_num"),
			DayOfWeek:   cell("game_day_of_week"),
			GameDate:    cell("game_date"),
			GameTime:    cell("gametime"),
			VisitorTeam: cell("visitor_team"),
			HomeTeam:    cell("home_team"),
			Points:      cell("pts_visitor"),
			PointsOpp:   cell("pts_home"),
		})
	})
	return records, err
}

// eachGameRow calls fn for every data row of table#games. Header rows
// repeated inside the body carry a "thead" class and are skipped.
func eachGameRow(html []byte, fn func(cell func(string) string)) error {
	// pro-football-reference ships some tables inside HTML comments
	clean := bytes.ReplaceAll(html, []byte("<!--"), nil)
	clean = bytes.ReplaceAll(clean, []byte("-->"), nil)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(clean))
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}

	table := doc.Find("table#games").First()
	if table.Length() == 0 {
		log.Warn().Msg("No games table found on page")
		return nil
	}

	table.Find("tr[data-row]").Each(func(_ int, tr *goquery.Selection) {
		if tr.HasClass("thead") {
			return
		}
		cells := make(map[string]string)
		tr.Find("th[data-stat], td[data-stat]").Each(func(_ int, s *goquery.Selection) {
			cells[s.AttrOr("data-stat", "")] = strings.TrimSpace(s.Text())
		})
		if len(cells) == 0 {
			return
		}
		fn(func(stat string) string { return cells[stat] })
	})
	return nil
}
