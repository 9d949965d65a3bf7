package fixtures

import (
	"math"
	"math/rand/v2"
)

// OddsGenerator produces display odds for a fixture.
type OddsGenerator func() Odds

// RandomOdds draws home in [1,4), draw in [2,4) and away in [1,5), rounded to two decimals.
func RandomOdds() Odds {
	return oddsFrom(rand.Float64)
}

func oddsFrom(rnd func() float64) Odds {
	return Odds{
		Home: round2(1 + rnd()*3),
		Draw: round2(2 + rnd()*2),
		Away: round2(1 + rnd()*4),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
