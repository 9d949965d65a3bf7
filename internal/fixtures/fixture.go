// Package fixtures fetches football fixtures from the upstream sports API.
package fixtures

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/matchday-bet/matchday/internal/models"
)

// StatusFinished is the upstream event_status of a completed match.
const StatusFinished = "Finished"

// Key is an upstream identifier that arrives as either a JSON number or a string.
type Key string

// UnmarshalJSON accepts numbers, strings and null.
func (k *Key) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*k = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*k = Key(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*k = Key(n.String())
	return nil
}

// Odds are display-only prices attached when a fixture is fetched.
type Odds struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

// Fixture is one upstream match record.
type Fixture struct {
	EventKey            Key    `json:"event_key"`
	EventDate           string `json:"event_date"`
	EventTime           string `json:"event_time"`
	EventHomeTeam       string `json:"event_home_team"`
	HomeTeamKey         Key    `json:"home_team_key"`
	EventAwayTeam       string `json:"event_away_team"`
	AwayTeamKey         Key    `json:"away_team_key"`
	EventHalftimeResult string `json:"event_halftime_result"`
	EventFinalResult    string `json:"event_final_result"`
	EventStatus         string `json:"event_status"`
	EventLive           Key    `json:"event_live"`
	CountryName         string `json:"country_name"`
	LeagueName          string `json:"league_name"`
	LeagueKey           Key    `json:"league_key"`
	LeagueRound         string `json:"league_round"`
	LeagueLogo          string `json:"league_logo"`
	HomeTeamLogo        string `json:"home_team_logo"`
	AwayTeamLogo        string `json:"away_team_logo"`
	Odds                *Odds  `json:"odds,omitempty"`
}

// ID returns the fixture's event key as a match id.
func (f Fixture) ID() string {
	return string(f.EventKey)
}

// Live reports whether the upstream marks the fixture as in play.
func (f Fixture) Live() bool {
	return f.EventLive == "1"
}

// Outcome returns the observed result of a finished fixture. The second return is false
// when the fixture is not finished or its final result is not "<int> - <int>".
func (f Fixture) Outcome() (models.Prediction, bool) {
	if f.EventStatus != StatusFinished {
		return "", false
	}
	home, away, ok := ParseScore(f.EventFinalResult)
	if !ok {
		return "", false
	}
	switch {
	case home > away:
		return models.PredictionHome, true
	case home < away:
		return models.PredictionAway, true
	default:
		return models.PredictionDraw, true
	}
}

// ParseScore splits "h - a" into two integers.
func ParseScore(result string) (home, away int, ok bool) {
	parts := strings.Split(result, "-")
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, errHome := strconv.Atoi(strings.TrimSpace(parts[0]))
	a, errAway := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errHome != nil || errAway != nil || h < 0 || a < 0 {
		return 0, 0, false
	}
	return h, a, true
}
