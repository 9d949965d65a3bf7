package fixtures

import (
	"encoding/json"
	"testing"

	"github.com/matchday-bet/matchday/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	cases := []struct {
		name   string
		status string
		result string
		want   models.Prediction
		ok     bool
	}{
		{"home win", StatusFinished, "2 - 1", models.PredictionHome, true},
		{"away win", StatusFinished, "0 - 3", models.PredictionAway, true},
		{"draw", StatusFinished, "1 - 1", models.PredictionDraw, true},
		{"no spaces", StatusFinished, "4-2", models.PredictionHome, true},
		{"in play", "45", "1 - 0", "", false},
		{"postponed", "Postponed", "", "", false},
		{"empty result", StatusFinished, "", "", false},
		{"three parts", StatusFinished, "1 - 1 - 1", "", false},
		{"not numeric", StatusFinished, "a - b", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Fixture{EventStatus: tc.status, EventFinalResult: tc.result}.Outcome()
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFixtureDecodesNumericKeys(t *testing.T) {
	raw := `{"event_key": 1188834, "home_team_key": "77", "league_key": 152, "event_live": "1", "event_status": "Finished", "event_final_result": "2 - 0"}`
	var f Fixture
	require.NoError(t, json.Unmarshal([]byte(raw), &f))
	assert.Equal(t, "1188834", f.ID())
	assert.Equal(t, Key("77"), f.HomeTeamKey)
	assert.Equal(t, Key("152"), f.LeagueKey)
	assert.True(t, f.Live())
}

func TestRandomOddsRanges(t *testing.T) {
	for i := 0; i < 500; i++ {
		odds := RandomOdds()
		assert.GreaterOrEqual(t, odds.Home, 1.0)
		assert.LessOrEqual(t, odds.Home, 4.0)
		assert.GreaterOrEqual(t, odds.Draw, 2.0)
		assert.LessOrEqual(t, odds.Draw, 4.0)
		assert.GreaterOrEqual(t, odds.Away, 1.0)
		assert.LessOrEqual(t, odds.Away, 5.0)
	}
	fixed := oddsFrom(func() float64 { return 0.5 })
	assert.Equal(t, Odds{Home: 2.5, Draw: 3, Away: 3}, fixed)
}

func TestMergeUpcomingDropsDuplicates(t *testing.T) {
	live := []Fixture{{EventKey: "1"}, {EventKey: "2"}}
	scheduled := []Fixture{{EventKey: "2"}, {EventKey: "3"}, {EventKey: "3"}}
	merged := MergeUpcoming(live, scheduled)
	ids := make([]string, 0, len(merged))
	for _, f := range merged {
		ids = append(ids, f.ID())
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids)
}
