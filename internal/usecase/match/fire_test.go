package match

import (
	"context"
	"errors"
	"testing"

	"naval_exe/internal/domain/board"
	"naval_exe/internal/domain/match"
	errs "naval_exe/internal/errors"
	"naval_exe/internal/statuses"
)

// shipCoords — координаты кораблей слота по данным хранилища.
func shipCoords(t *testing.T, uc *MatchUseCase, slotID string) []string {
	t.Helper()
	ships, err := uc.store.ShipsBySlot(context.Background(), slotID)
	if err != nil {
		t.Fatalf("ShipsBySlot: %v", err)
	}
	coords := make([]string, 0, len(ships))
	for _, ship := range ships {
		coords = append(coords, ship.Coordinate)
	}
	return coords
}

// emptyCoords — клетки поля, где у слота нет кораблей.
func emptyCoords(t *testing.T, uc *MatchUseCase, slotID string) []string {
	t.Helper()
	occupied := make(map[string]bool)
	for _, c := range shipCoords(t, uc, slotID) {
		occupied[c] = true
	}
	var out []string
	for _, c := range uc.grid.AllCoordinates() {
		if !occupied[c.String()] {
			out = append(out, c.String())
		}
	}
	return out
}

func TestFireBadCoordinate(t *testing.T) {
	uc, _ := newTestUseCase(board.DefaultConfig())
	matchID, _, _ := setupActiveMatch(t, uc)

	for _, pos := range []string{"", "A", "Z1", "A9", "A0", "AA", "B12"} {
		_, err := uc.Fire(context.Background(), matchID, "alice", pos)
		if !errors.Is(err, errs.ErrBadCoordinate) {
			t.Errorf("Fire(%q): ошибка = %v, ожидали ErrBadCoordinate", pos, err)
		}
	}
}

func TestFireMatchNotFound(t *testing.T) {
	uc, _ := newTestUseCase(board.DefaultConfig())

	_, err := uc.Fire(context.Background(), "no-such-match", "alice", "A1")
	if !errors.Is(err, errs.ErrMatchNotFound) {
		t.Errorf("ошибка = %v, ожидали ErrMatchNotFound", err)
	}
}

func TestFireMatchNotActive(t *testing.T) {
	uc, _ := newTestUseCase(board.DefaultConfig())
	ctx := context.Background()

	created, _ := uc.CreateMatch(ctx, match.CreateMatchRequest{}, "alice")

	_, err := uc.Fire(ctx, created.Match.ID, "alice", "A1")
	if !errors.Is(err, errs.ErrMatchNotActive) {
		t.Errorf("ошибка = %v, ожидали ErrMatchNotActive", err)
	}
}

func TestFireNotParticipant(t *testing.T) {
	uc, _ := newTestUseCase(board.DefaultConfig())
	matchID, _, _ := setupActiveMatch(t, uc)

	_, err := uc.Fire(context.Background(), matchID, "stranger", "A1")
	if !errors.Is(err, errs.ErrNotParticipant) {
		t.Errorf("ошибка = %v, ожидали ErrNotParticipant", err)
	}
}

func TestFireNotYourTurn(t *testing.T) {
	uc, _ := newTestUseCase(board.DefaultConfig())
	matchID, _, _ := setupActiveMatch(t, uc)

	// первым ходит alice, bob обязан ждать
	_, err := uc.Fire(context.Background(), matchID, "bob", "A1")
	if !errors.Is(err, errs.ErrNotYourTurn) {
		t.Errorf("ошибка = %v, ожидали ErrNotYourTurn", err)
	}
}

func TestFireNoOpponent(t *testing.T) {
	uc, store := newTestUseCase(board.DefaultConfig())
	ctx := context.Background()

	// кривое состояние: партия идёт, а слот всего один
	m := match.Match{ID: "m1", Status: statuses.StatusInProgress}
	if err := store.PutMatch(ctx, m); err != nil {
		t.Fatalf("PutMatch: %v", err)
	}
	slot := match.PlayerSlot{ID: "s1", MatchID: "m1", UserID: "alice", IsTurn: true}
	if err := store.PutSlot(ctx, slot); err != nil {
		t.Fatalf("PutSlot: %v", err)
	}

	_, err := uc.Fire(ctx, "m1", "alice", "A1")
	if !errors.Is(err, errs.ErrNoOpponent) {
		t.Errorf("ошибка = %v, ожидали ErrNoOpponent", err)
	}
}

func TestFireHitFlipsTurn(t *testing.T) {
	uc, store := newTestUseCase(board.DefaultConfig())
	ctx := context.Background()
	matchID, aliceSlot, bobSlot := setupActiveMatch(t, uc)

	target := shipCoords(t, uc, bobSlot.ID)[0]
	result, err := uc.Fire(ctx, matchID, "alice", target)
	if err != nil {
		t.Fatalf("Fire: %v", err)
	}

	if !result.Hit || result.Outcome != match.OutcomeSunk {
		t.Errorf("результат %+v, ожидали попадание с потоплением", result)
	}
	if result.RemainingShips != 14 {
		t.Errorf("осталось %d кораблей, ожидали 14", result.RemainingShips)
	}
	if result.NextTurnSlotID != bobSlot.ID {
		t.Errorf("ход у %s, ожидали %s", result.NextTurnSlotID, bobSlot.ID)
	}

	slots, _ := store.SlotsByMatch(ctx, matchID)
	for _, s := range slots {
		switch s.ID {
		case aliceSlot.ID:
			if s.IsTurn {
				t.Error("после выстрела ход уходит сопернику даже при попадании")
			}
		case bobSlot.ID:
			if !s.IsTurn {
				t.Error("ход должен перейти bob")
			}
		}
	}
}

func TestFireMiss(t *testing.T) {
	uc, _ := newTestUseCase(board.DefaultConfig())
	matchID, _, bobSlot := setupActiveMatch(t, uc)

	target := emptyCoords(t, uc, bobSlot.ID)[0]
	result, err := uc.Fire(context.Background(), matchID, "alice", target)
	if err != nil {
		t.Fatalf("Fire: %v", err)
	}

	if result.Hit || result.Outcome != match.OutcomeMiss {
		t.Errorf("результат %+v, ожидали промах", result)
	}
	if result.RemainingShips != 15 {
		t.Errorf("осталось %d кораблей, ожидали 15", result.RemainingShips)
	}
	if result.NextTurnSlotID != bobSlot.ID {
		t.Error("ход должен перейти сопернику")
	}
}

func TestFireDuplicateShot(t *testing.T) {
	uc, _ := newTestUseCase(board.DefaultConfig())
	ctx := context.Background()
	matchID, _, bobSlot := setupActiveMatch(t, uc)

	hitTarget := shipCoords(t, uc, bobSlot.ID)[0]
	missTarget := emptyCoords(t, uc, bobSlot.ID)[0]
	bobTarget := emptyCoords(t, uc, bobSlot.ID)[1] // bob просто ходит, исход не важен

	if _, err := uc.Fire(ctx, matchID, "alice", hitTarget); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	if _, err := uc.Fire(ctx, matchID, "bob", bobTarget); err != nil {
		t.Fatalf("Fire bob: %v", err)
	}

	// повтор по потопленной клетке
	if _, err := uc.Fire(ctx, matchID, "alice", hitTarget); !errors.Is(err, errs.ErrDuplicateShot) {
		t.Errorf("повтор после попадания: %v, ожидали ErrDuplicateShot", err)
	}

	if _, err := uc.Fire(ctx, matchID, "alice", missTarget); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	if _, err := uc.Fire(ctx, matchID, "bob", bobTarget); !errors.Is(err, errs.ErrDuplicateShot) {
		t.Errorf("повтор после промаха: %v, ожидали ErrDuplicateShot", err)
	}
}

func TestFireAppendsShotFeed(t *testing.T) {
	uc, _ := newTestUseCase(board.DefaultConfig())
	ctx := context.Background()
	matchID, _, bobSlot := setupActiveMatch(t, uc)

	target := emptyCoords(t, uc, bobSlot.ID)[0]
	if _, err := uc.Fire(ctx, matchID, "alice", target); err != nil {
		t.Fatalf("Fire: %v", err)
	}

	entries, err := uc.LastShots(ctx, matchID, 10)
	if err != nil {
		t.Fatalf("LastShots: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("в ленте %d записей, ожидали 1", len(entries))
	}
}

// TestFullGame гоняет партию до победы на маленьком флоте: alice топит
// корабли bob, bob промахивается. Проверяем завершение, победителя и то,
// что стрелять в законченную партию больше нельзя.
func TestFullGame(t *testing.T) {
	grid := board.Config{Letters: 8, Numbers: 8, FleetSize: 3}
	uc, store := newTestUseCase(grid)
	ctx := context.Background()
	matchID, aliceSlot, bobSlot := setupActiveMatch(t, uc)

	targets := shipCoords(t, uc, bobSlot.ID)
	bobMisses := emptyCoords(t, uc, aliceSlot.ID)

	var last match.ShotResult
	for i, target := range targets {
		result, err := uc.Fire(ctx, matchID, "alice", target)
		if err != nil {
			t.Fatalf("Fire alice #%d: %v", i, err)
		}
		if !result.Hit {
			t.Fatalf("выстрел по %s должен был попасть", target)
		}
		last = result

		if result.GameOver {
			break
		}
		if _, err := uc.Fire(ctx, matchID, "bob", bobMisses[i]); err != nil {
			t.Fatalf("Fire bob #%d: %v", i, err)
		}
	}

	if !last.GameOver {
		t.Fatal("после потопления всего флота партия должна закончиться")
	}
	if last.RemainingShips != 0 {
		t.Errorf("осталось %d кораблей", last.RemainingShips)
	}
	if last.Winner == nil || last.Winner.UserID != "alice" || !last.Winner.IsWinner {
		t.Errorf("победитель %+v", last.Winner)
	}
	if last.Loser == nil || last.Loser.UserID != "bob" {
		t.Errorf("проигравший %+v", last.Loser)
	}

	m, _ := store.GetMatch(ctx, matchID)
	if m.Status != statuses.StatusFinished {
		t.Errorf("статус = %q, ожидали %q", m.Status, statuses.StatusFinished)
	}
	if m.WinnerID != "alice" {
		t.Errorf("WinnerID = %q", m.WinnerID)
	}

	slots, _ := store.SlotsByMatch(ctx, matchID)
	for _, s := range slots {
		if s.IsTurn {
			t.Errorf("в законченной партии ход у %s", s.UserID)
		}
	}

	_, err := uc.Fire(ctx, matchID, "bob", bobMisses[len(targets)])
	if !errors.Is(err, errs.ErrMatchNotActive) {
		t.Errorf("выстрел после конца: %v, ожидали ErrMatchNotActive", err)
	}
}
