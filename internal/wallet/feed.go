package wallet

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/matchday-bet/matchday/internal/models"
	log "github.com/sirupsen/logrus"
)

var (
	feedUsernames = []string{
		"SoccerPro", "FootieKing", "BetMaster", "GoalHunter", "BallWizard",
		"StrikerFC", "PitchMaster", "TopScorer", "FootballFan", "BettingKing",
		"LuckyWinner", "GoalScorer", "CupWinner", "ChampionBet", "BigWinner",
		"PremiumUser", "EliteGamer", "FootballGuru", "SportsMaster", "WinnerCircle",
		"TopBettor", "GoldenBoot", "PremierFan", "VictoryLane", "ChampionsLeague",
		"WorldCupFan", "TrophyWinner", "SportsBaron", "LeagueMaster", "PenaltyKing",
		"FreeKickPro", "HeaderSpecialist", "MidfielderPro", "DefenderElite", "GoalieKing",
		"CornerTaker", "PenaltyTaker", "FootballIcon", "SportsStar", "LeagueHero",
		"Johnson_123", "SportsKing", "FootieExpert", "BettingPro", "PredictionGuru",
	}
	feedAmounts = []int64{3000, 4000, 5000, 6000, 7000, 8000, 9000, 10000, 12000, 15000, 18000, 20000, 26000, 30000}
)

// ListFeed returns the newest feed entries. Non-positive limits use the default.
func (s *Service) ListFeed(ctx context.Context, limit int) ([]models.VirtualTransaction, error) {
	return s.store.ListVirtualTransactions(ctx, clampLimit(limit, defaultFeedLimit))
}

// SeedFeed fills an empty feed with count fabricated withdrawals spread back in time.
// It returns the number of entries written.
func (s *Service) SeedFeed(ctx context.Context, count int) (int, error) {
	if count <= 0 {
		return 0, nil
	}
	existing, errCount := s.store.CountVirtualTransactions(ctx)
	if errCount != nil {
		return 0, errCount
	}
	if existing > 0 {
		return 0, nil
	}

	entries := fabricateFeed(s.now(), count, rand.IntN)
	if errCreate := s.store.CreateVirtualTransactions(ctx, entries); errCreate != nil {
		return 0, errCreate
	}
	log.Infof("wallet: seeded withdrawal feed with %d entries", len(entries))
	return len(entries), nil
}

// fabricateFeed draws count entries; entry i lies i*[0,30)+1 minutes before now.
func fabricateFeed(now time.Time, count int, intn func(int) int) []models.VirtualTransaction {
	entries := make([]models.VirtualTransaction, 0, count)
	for i := 0; i < count; i++ {
		back := time.Duration(i*intn(30)+1) * time.Minute
		entries = append(entries, models.VirtualTransaction{
			Username:  feedUsernames[intn(len(feedUsernames))],
			Type:      string(models.TransactionTypeWithdrawal),
			Amount:    feedAmounts[intn(len(feedAmounts))],
			CreatedAt: now.Add(-back).UTC(),
		})
	}
	return entries
}
