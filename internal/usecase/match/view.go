package match

import (
	"context"
	"math"

	"naval_exe/internal/domain/match"
	errs "naval_exe/internal/errors"
	"naval_exe/internal/statuses"
)

// BoardView строит проекцию партии глазами одного игрока. Ничего не
// мутирует; берёт замок партии, чтобы не увидеть полусмененный ход.
func (u *MatchUseCase) BoardView(ctx context.Context, matchID, userID string) (match.BoardViewResponse, error) {
	l := u.lockFor(matchID)
	l.Lock()
	defer l.Unlock()

	m, err := u.store.GetMatch(ctx, matchID)
	if err != nil {
		return match.BoardViewResponse{}, err
	}

	if m.Status == statuses.StatusWaiting {
		return match.BoardViewResponse{}, errs.ErrMatchNotActive
	}

	viewer, ok, err := u.store.SlotByMatchAndUser(ctx, matchID, userID)
	if err != nil {
		return match.BoardViewResponse{}, err
	}
	if !ok {
		return match.BoardViewResponse{}, errs.ErrNotParticipant
	}

	slots, err := u.store.SlotsByMatch(ctx, matchID)
	if err != nil {
		return match.BoardViewResponse{}, err
	}
	var opponent match.PlayerSlot
	found := false
	for _, s := range slots {
		if s.ID != viewer.ID {
			opponent = s
			found = true
		}
	}
	if !found {
		return match.BoardViewResponse{}, errs.ErrNoOpponent
	}

	myShips, err := u.store.ShipsBySlot(ctx, viewer.ID)
	if err != nil {
		return match.BoardViewResponse{}, err
	}
	oppShips, err := u.store.ShipsBySlot(ctx, opponent.ID)
	if err != nil {
		return match.BoardViewResponse{}, err
	}

	shots, err := u.store.ShotsByMatch(ctx, matchID)
	if err != nil {
		return match.BoardViewResponse{}, err
	}

	var myShots, shotsAtMe []match.Shot
	for _, s := range shots {
		if s.AttackerID == viewer.ID {
			myShots = append(myShots, s)
		}
		if s.DefenderID == viewer.ID {
			shotsAtMe = append(shotsAtMe, s)
		}
	}

	myCoords := make([]string, 0, len(myShips))
	for _, ship := range myShips {
		myCoords = append(myCoords, ship.Coordinate)
	}

	// Чужой корабль виден только после попадания в его клетку.
	visibleOppCoords := make([]string, 0)
	for _, s := range myShots {
		if s.Hit {
			visibleOppCoords = append(visibleOppCoords, s.Coordinate)
		}
	}

	gameOver := m.Status == statuses.StatusFinished
	canFire := viewer.IsTurn && !gameOver

	resp := match.BoardViewResponse{
		Match: m,
		OwnBoard: match.BoardSide{
			Ships:      myCoords,
			ShotViews:  formatShots(shotsAtMe, myShips),
			Stats:      computeStats(shotsAtMe),
			Own:        true,
			ShowsShips: true,
			CanFire:    false,
		},
		OpponentBoard: match.BoardSide{
			Ships:      visibleOppCoords,
			ShotViews:  formatShots(myShots, oppShips),
			Stats:      computeStats(myShots),
			Own:        false,
			ShowsShips: false,
			CanFire:    canFire,
		},
		IsMyTurn: canFire,
		GameOver: gameOver,
	}

	if gameOver {
		resp.WinnerID = m.WinnerID
		loserID := opponent.UserID
		if m.WinnerID == opponent.UserID {
			loserID = viewer.UserID
		}
		resp.Winner = &match.GameResult{UserID: m.WinnerID, IsWinner: true}
		resp.Loser = &match.GameResult{UserID: loserID}
	}

	return resp, nil
}

// formatShots помечает каждый выстрел как miss/hit/sunk по состоянию
// корабля защитника в этой клетке.
func formatShots(shots []match.Shot, defenderShips []match.Ship) []match.ShotView {
	sunkByCoord := make(map[string]bool, len(defenderShips))
	for _, ship := range defenderShips {
		sunkByCoord[ship.Coordinate] = ship.Sunk
	}

	views := make([]match.ShotView, 0, len(shots))
	for _, s := range shots {
		sunk := s.Hit && sunkByCoord[s.Coordinate]
		result := match.OutcomeMiss
		if sunk {
			result = match.OutcomeSunk
		} else if s.Hit {
			result = "hit"
		}
		views = append(views, match.ShotView{
			Position: s.Coordinate,
			Hit:      s.Hit,
			Sunk:     sunk,
			Result:   result,
		})
	}
	return views
}

// computeStats считает точность с округлением до одного знака.
// Ноль выстрелов — это 0.0, а не деление на ноль.
func computeStats(shots []match.Shot) match.BoardStats {
	stats := match.BoardStats{Shots: len(shots)}
	for _, s := range shots {
		if s.Hit {
			stats.Hits++
		}
	}
	if stats.Shots > 0 {
		stats.Accuracy = math.Round(float64(stats.Hits)/float64(stats.Shots)*100*10) / 10
	}
	return stats
}
