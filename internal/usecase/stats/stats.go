package stats

import (
	"context"

	"go.uber.org/zap"

	"naval_exe/internal/domain/match"
	"naval_exe/internal/statuses"
)

// MatchProvider — срез хранилища партий, достаточный для статистики.
type MatchProvider interface {
	MatchesByUser(ctx context.Context, userID string) ([]match.Match, error)
	SlotsByMatch(ctx context.Context, matchID string) ([]match.PlayerSlot, error)
}

type UserStats struct {
	Won  int `json:"won"`
	Lost int `json:"lost"`
}

type StatsUseCase struct {
	store MatchProvider
	log   *zap.SugaredLogger
}

func NewStatsUseCase(store MatchProvider, log *zap.SugaredLogger) *StatsUseCase {
	return &StatsUseCase{store: store, log: log}
}

// UserStats считает выигранные и проигранные завершённые партии игрока.
func (s *StatsUseCase) UserStats(ctx context.Context, userID string) (UserStats, error) {
	matches, err := s.store.MatchesByUser(ctx, userID)
	if err != nil {
		return UserStats{}, err
	}

	var stats UserStats
	for _, m := range matches {
		if m.Status != statuses.StatusFinished {
			continue
		}
		if m.WinnerID == userID {
			stats.Won++
		} else {
			stats.Lost++
		}
	}
	return stats, nil
}

// MatchesByResult возвращает завершённые партии игрока с нужным исходом
// ("won" или "lost") вместе с идентификатором оппонента.
func (s *StatsUseCase) MatchesByResult(ctx context.Context, userID, result string) ([]match.Summary, error) {
	matches, err := s.store.MatchesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]match.Summary, 0)
	for _, m := range matches {
		if m.Status != statuses.StatusFinished {
			continue
		}

		matchResult := match.ResultLost
		if m.WinnerID == userID {
			matchResult = match.ResultWon
		}
		if matchResult != result {
			continue
		}

		opponentID := ""
		slots, err := s.store.SlotsByMatch(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		for _, slot := range slots {
			if slot.UserID != userID {
				opponentID = slot.UserID
			}
		}

		summaries = append(summaries, match.Summary{
			ID:          m.ID,
			Name:        m.Name,
			Status:      m.Status,
			Result:      matchResult,
			OpponentID:  opponentID,
			PlayerCount: len(slots),
			CreatedAt:   m.CreatedAt,
		})
	}
	return summaries, nil
}
