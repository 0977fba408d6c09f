package match

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"naval_exe/internal/domain/match"
	errs "naval_exe/internal/errors"
	"naval_exe/internal/statuses"
)

// Fire разрешает один выстрел. Проверки идут строго по порядку, каждая
// со своей ошибкой: партия существует; идёт; стрелок участвует; его ход;
// оппонент есть; в эту клетку ещё не стреляли. Повторный выстрел в ту же
// клетку — всегда ErrDuplicateShot, независимо от исхода первого.
func (u *MatchUseCase) Fire(ctx context.Context, matchID, userID, position string) (match.ShotResult, error) {
	coord, err := u.grid.Parse(position)
	if err != nil {
		return match.ShotResult{}, err
	}

	l := u.lockFor(matchID)
	l.Lock()
	defer l.Unlock()

	m, err := u.store.GetMatch(ctx, matchID)
	if err != nil {
		return match.ShotResult{}, err
	}

	if m.Status != statuses.StatusInProgress {
		return match.ShotResult{}, errs.ErrMatchNotActive
	}

	attacker, ok, err := u.store.SlotByMatchAndUser(ctx, matchID, userID)
	if err != nil {
		return match.ShotResult{}, err
	}
	if !ok {
		return match.ShotResult{}, errs.ErrNotParticipant
	}

	if !attacker.IsTurn {
		return match.ShotResult{}, errs.ErrNotYourTurn
	}

	slots, err := u.store.SlotsByMatch(ctx, matchID)
	if err != nil {
		return match.ShotResult{}, err
	}
	var defender match.PlayerSlot
	found := false
	for _, s := range slots {
		if s.ID != attacker.ID {
			defender = s
			found = true
		}
	}
	if !found {
		return match.ShotResult{}, errs.ErrNoOpponent
	}

	already, err := u.store.HasShot(ctx, matchID, attacker.ID, defender.ID, coord.String())
	if err != nil {
		return match.ShotResult{}, err
	}
	if already {
		return match.ShotResult{}, errs.ErrDuplicateShot
	}

	// Клетка однопалубная: попадание и потопление — одно событие.
	hit := false
	ships, err := u.store.ShipsBySlot(ctx, defender.ID)
	if err != nil {
		return match.ShotResult{}, err
	}
	for _, ship := range ships {
		if ship.Coordinate == coord.String() && !ship.Sunk {
			ship.Sunk = true
			if err := u.store.UpdateShip(ctx, ship); err != nil {
				return match.ShotResult{}, err
			}
			hit = true
			break
		}
	}

	shot := match.Shot{
		ID:         uuid.New().String(),
		MatchID:    matchID,
		AttackerID: attacker.ID,
		DefenderID: defender.ID,
		Coordinate: coord.String(),
		Hit:        hit,
		CreatedAt:  time.Now(),
	}
	if err := u.store.PutShot(ctx, shot); err != nil {
		return match.ShotResult{}, err
	}

	remaining, err := u.store.CountUnsunkShips(ctx, defender.ID)
	if err != nil {
		return match.ShotResult{}, err
	}

	outcome := match.OutcomeMiss
	if hit {
		outcome = match.OutcomeSunk
	}

	result := match.ShotResult{
		Outcome:        outcome,
		Position:       coord.String(),
		Hit:            hit,
		RemainingShips: remaining,
	}

	if remaining == 0 {
		m.Status = statuses.StatusFinished
		m.WinnerID = userID
		if err := u.store.UpdateMatch(ctx, m); err != nil {
			return match.ShotResult{}, err
		}

		attacker.IsTurn = false
		defender.IsTurn = false
		if err := u.store.UpdateSlot(ctx, attacker); err != nil {
			return match.ShotResult{}, err
		}
		if err := u.store.UpdateSlot(ctx, defender); err != nil {
			return match.ShotResult{}, err
		}

		result.GameOver = true
		result.Winner = &match.GameResult{UserID: userID, IsWinner: true}
		result.Loser = &match.GameResult{UserID: defender.UserID}

		u.log.Infof("партия %s завершена, победил %s", matchID, userID)
	} else {
		attacker.IsTurn = false
		defender.IsTurn = true
		if err := u.store.UpdateSlot(ctx, attacker); err != nil {
			return match.ShotResult{}, err
		}
		if err := u.store.UpdateSlot(ctx, defender); err != nil {
			return match.ShotResult{}, err
		}
		result.NextTurnSlotID = defender.ID
	}

	if entry, err := json.Marshal(shot); err == nil {
		if err := u.store.AppendShotFeed(ctx, matchID, entry); err != nil {
			// лента — кэш, партию из-за неё не валим
			u.log.Errorf("не удалось дописать ленту выстрелов %s: %v", matchID, err)
		}
	}

	return result, nil
}
