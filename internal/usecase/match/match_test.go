package match

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"naval_exe/internal/domain/board"
	"naval_exe/internal/domain/match"
	errs "naval_exe/internal/errors"
	"naval_exe/internal/repository"
	"naval_exe/internal/statuses"
)

func newTestUseCase(grid board.Config) (*MatchUseCase, *repository.MatchMapStorage) {
	store := repository.NewMatchMapStorage()
	return NewMatchUseCase(store, grid, zap.NewNop().Sugar()), store
}

// setupActiveMatch создаёт партию alice и приводит bob: партия in_progress,
// ход у alice (её слот создан первым).
func setupActiveMatch(t *testing.T, uc *MatchUseCase) (matchID string, aliceSlot, bobSlot match.PlayerSlot) {
	t.Helper()
	ctx := context.Background()

	created, err := uc.CreateMatch(ctx, match.CreateMatchRequest{Name: "тест"}, "alice")
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}

	joined, err := uc.JoinMatch(ctx, created.Match.ID, "bob")
	if err != nil {
		t.Fatalf("JoinMatch: %v", err)
	}
	if !joined.Started {
		t.Fatal("партия должна начаться после второго игрока")
	}

	slots, err := uc.store.SlotsByMatch(ctx, created.Match.ID)
	if err != nil || len(slots) != 2 {
		t.Fatalf("SlotsByMatch: %v, слотов %d", err, len(slots))
	}
	return created.Match.ID, slots[0], slots[1]
}

func TestCreateMatch(t *testing.T) {
	uc, store := newTestUseCase(board.DefaultConfig())
	ctx := context.Background()

	resp, err := uc.CreateMatch(ctx, match.CreateMatchRequest{Name: "морской бой", Description: "до победы"}, "alice")
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}

	if resp.Match.Status != statuses.StatusWaiting {
		t.Errorf("статус = %q, ожидали %q", resp.Match.Status, statuses.StatusWaiting)
	}
	if resp.Slot.UserID != "alice" {
		t.Errorf("UserID слота = %q", resp.Slot.UserID)
	}
	if resp.Slot.IsTurn {
		t.Error("до начала партии ход не назначается")
	}

	ships, err := store.ShipsBySlot(ctx, resp.Slot.ID)
	if err != nil {
		t.Fatalf("ShipsBySlot: %v", err)
	}
	if len(ships) != 15 {
		t.Errorf("флот из %d кораблей, ожидали 15", len(ships))
	}
	for _, ship := range ships {
		if ship.Sunk {
			t.Errorf("новый корабль %s не может быть потоплен", ship.Coordinate)
		}
	}
}

func TestCreateMatchDefaultName(t *testing.T) {
	uc, _ := newTestUseCase(board.DefaultConfig())

	resp, err := uc.CreateMatch(context.Background(), match.CreateMatchRequest{}, "alice")
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}
	if resp.Match.Name == "" {
		t.Error("имя партии должно подставляться по умолчанию")
	}
}

func TestJoinMatchStartsGame(t *testing.T) {
	uc, store := newTestUseCase(board.DefaultConfig())
	ctx := context.Background()

	matchID, aliceSlot, bobSlot := setupActiveMatch(t, uc)

	m, err := store.GetMatch(ctx, matchID)
	if err != nil {
		t.Fatalf("GetMatch: %v", err)
	}
	if m.Status != statuses.StatusInProgress {
		t.Errorf("статус = %q, ожидали %q", m.Status, statuses.StatusInProgress)
	}
	if !aliceSlot.IsTurn {
		t.Error("первый ход у слота, созданного раньше всех")
	}
	if bobSlot.IsTurn {
		t.Error("второй игрок не ходит первым")
	}
}

func TestJoinMatchIdempotent(t *testing.T) {
	uc, store := newTestUseCase(board.DefaultConfig())
	ctx := context.Background()

	created, err := uc.CreateMatch(ctx, match.CreateMatchRequest{}, "alice")
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}

	joined, err := uc.JoinMatch(ctx, created.Match.ID, "alice")
	if err != nil {
		t.Fatalf("повторный JoinMatch: %v", err)
	}
	if !joined.AlreadyJoined {
		t.Error("повторный join своего же матча должен быть идемпотентным")
	}
	if joined.Slot.ID != created.Slot.ID {
		t.Error("слот не должен дублироваться")
	}

	slots, _ := store.SlotsByMatch(ctx, created.Match.ID)
	if len(slots) != 1 {
		t.Errorf("слотов %d, ожидали 1", len(slots))
	}

	m, _ := store.GetMatch(ctx, created.Match.ID)
	if m.Status != statuses.StatusWaiting {
		t.Errorf("статус = %q, партия не должна начаться", m.Status)
	}
}

func TestJoinMatchRegeneratesMissingFleet(t *testing.T) {
	uc, store := newTestUseCase(board.DefaultConfig())
	ctx := context.Background()

	created, err := uc.CreateMatch(ctx, match.CreateMatchRequest{}, "alice")
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}
	if err := store.DeleteShipsBySlot(ctx, created.Slot.ID); err != nil {
		t.Fatalf("DeleteShipsBySlot: %v", err)
	}

	if _, err := uc.JoinMatch(ctx, created.Match.ID, "alice"); err != nil {
		t.Fatalf("JoinMatch: %v", err)
	}

	ships, _ := store.ShipsBySlot(ctx, created.Slot.ID)
	if len(ships) != 15 {
		t.Errorf("флот из %d кораблей после дорасстановки, ожидали 15", len(ships))
	}
}

func TestJoinMatchFull(t *testing.T) {
	uc, _ := newTestUseCase(board.DefaultConfig())
	ctx := context.Background()

	created, _ := uc.CreateMatch(ctx, match.CreateMatchRequest{}, "alice")

	// bob занимает второй слот, партия стартует, carol опоздала
	if _, err := uc.JoinMatch(ctx, created.Match.ID, "bob"); err != nil {
		t.Fatalf("JoinMatch bob: %v", err)
	}
	_, err := uc.JoinMatch(ctx, created.Match.ID, "carol")
	if !errors.Is(err, errs.ErrMatchAlreadyStarted) {
		t.Errorf("ошибка = %v, ожидали ErrMatchAlreadyStarted", err)
	}
}

func TestJoinMatchFullWhileWaiting(t *testing.T) {
	uc, store := newTestUseCase(board.DefaultConfig())
	ctx := context.Background()

	created, _ := uc.CreateMatch(ctx, match.CreateMatchRequest{}, "alice")

	// два слота, но партия ещё waiting — третьему места нет
	stale := match.PlayerSlot{ID: "slot-bob", MatchID: created.Match.ID, UserID: "bob"}
	if err := store.PutSlot(ctx, stale); err != nil {
		t.Fatalf("PutSlot: %v", err)
	}

	_, err := uc.JoinMatch(ctx, created.Match.ID, "carol")
	if !errors.Is(err, errs.ErrMatchFull) {
		t.Errorf("ошибка = %v, ожидали ErrMatchFull", err)
	}
}

func TestJoinMatchNotFound(t *testing.T) {
	uc, _ := newTestUseCase(board.DefaultConfig())

	_, err := uc.JoinMatch(context.Background(), "no-such-match", "bob")
	if !errors.Is(err, errs.ErrMatchNotFound) {
		t.Errorf("ошибка = %v, ожидали ErrMatchNotFound", err)
	}
}

func TestCheckReadiness(t *testing.T) {
	uc, _ := newTestUseCase(board.DefaultConfig())
	ctx := context.Background()

	created, _ := uc.CreateMatch(ctx, match.CreateMatchRequest{}, "alice")

	status, err := uc.CheckReadiness(ctx, created.Match.ID)
	if err != nil {
		t.Fatalf("CheckReadiness: %v", err)
	}
	if status.CanStart || status.ShouldRedirect {
		t.Error("с одним игроком партия не готова")
	}
	if status.PlayerCount != 1 {
		t.Errorf("PlayerCount = %d", status.PlayerCount)
	}
}

func TestCheckReadinessRepairsStaleWaiting(t *testing.T) {
	uc, store := newTestUseCase(board.DefaultConfig())
	ctx := context.Background()

	created, _ := uc.CreateMatch(ctx, match.CreateMatchRequest{}, "alice")

	// второй слот записан в обход JoinMatch — партия застряла в waiting
	stale := match.PlayerSlot{ID: "slot-bob", MatchID: created.Match.ID, UserID: "bob"}
	if err := store.PutSlot(ctx, stale); err != nil {
		t.Fatalf("PutSlot: %v", err)
	}

	status, err := uc.CheckReadiness(ctx, created.Match.ID)
	if err != nil {
		t.Fatalf("CheckReadiness: %v", err)
	}
	if status.Status != statuses.StatusInProgress {
		t.Errorf("статус = %q, поллинг должен был починить партию", status.Status)
	}
	if !status.ShouldRedirect {
		t.Error("при двух игроках и in_progress ожидали ShouldRedirect")
	}

	slots, _ := store.SlotsByMatch(ctx, created.Match.ID)
	if !slots[0].IsTurn {
		t.Error("первый ход у слота, созданного раньше всех")
	}
}

func TestLeaveMatchDeletesEmptyMatch(t *testing.T) {
	uc, store := newTestUseCase(board.DefaultConfig())
	ctx := context.Background()

	created, _ := uc.CreateMatch(ctx, match.CreateMatchRequest{}, "alice")

	if err := uc.LeaveMatch(ctx, created.Match.ID, "alice"); err != nil {
		t.Fatalf("LeaveMatch: %v", err)
	}

	if _, err := store.GetMatch(ctx, created.Match.ID); !errors.Is(err, errs.ErrMatchNotFound) {
		t.Errorf("пустая партия должна удаляться, GetMatch = %v", err)
	}
	if ships, _ := store.ShipsBySlot(ctx, created.Slot.ID); len(ships) != 0 {
		t.Error("флот вышедшего игрока должен удаляться")
	}
}

func TestLeaveMatchInProgress(t *testing.T) {
	uc, _ := newTestUseCase(board.DefaultConfig())

	matchID, _, _ := setupActiveMatch(t, uc)

	err := uc.LeaveMatch(context.Background(), matchID, "alice")
	if !errors.Is(err, errs.ErrMatchAlreadyStarted) {
		t.Errorf("ошибка = %v, ожидали ErrMatchAlreadyStarted", err)
	}
}

func TestLeaveMatchNotParticipant(t *testing.T) {
	uc, store := newTestUseCase(board.DefaultConfig())
	ctx := context.Background()

	created, _ := uc.CreateMatch(ctx, match.CreateMatchRequest{}, "alice")

	if err := uc.LeaveMatch(ctx, created.Match.ID, "stranger"); err != nil {
		t.Fatalf("выход не участника должен быть no-op, ошибка: %v", err)
	}
	if _, err := store.GetMatch(ctx, created.Match.ID); err != nil {
		t.Errorf("партия не должна пострадать: %v", err)
	}
}

func TestOpenMatches(t *testing.T) {
	uc, _ := newTestUseCase(board.DefaultConfig())
	ctx := context.Background()

	waitingMatch, _ := uc.CreateMatch(ctx, match.CreateMatchRequest{Name: "открытая"}, "alice")
	full, _ := uc.CreateMatch(ctx, match.CreateMatchRequest{Name: "полная"}, "carol")
	if _, err := uc.JoinMatch(ctx, full.Match.ID, "dave"); err != nil {
		t.Fatalf("JoinMatch: %v", err)
	}

	summaries, err := uc.OpenMatches(ctx)
	if err != nil {
		t.Fatalf("OpenMatches: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("открытых партий %d, ожидали 1", len(summaries))
	}
	if summaries[0].ID != waitingMatch.Match.ID {
		t.Errorf("в списке не та партия: %s", summaries[0].ID)
	}
	if summaries[0].PlayerCount != 1 {
		t.Errorf("PlayerCount = %d", summaries[0].PlayerCount)
	}
}

func TestMyMatches(t *testing.T) {
	uc, store := newTestUseCase(board.DefaultConfig())
	ctx := context.Background()

	matchID, _, _ := setupActiveMatch(t, uc)

	m, _ := store.GetMatch(ctx, matchID)
	m.Status = statuses.StatusFinished
	m.WinnerID = "alice"
	if err := store.UpdateMatch(ctx, m); err != nil {
		t.Fatalf("UpdateMatch: %v", err)
	}

	aliceView, err := uc.MyMatches(ctx, "alice")
	if err != nil {
		t.Fatalf("MyMatches: %v", err)
	}
	if len(aliceView) != 1 || aliceView[0].Result != match.ResultWon {
		t.Errorf("у alice результат %+v, ожидали won", aliceView)
	}
	if aliceView[0].OpponentID != "bob" {
		t.Errorf("OpponentID = %q", aliceView[0].OpponentID)
	}

	bobView, _ := uc.MyMatches(ctx, "bob")
	if len(bobView) != 1 || bobView[0].Result != match.ResultLost {
		t.Errorf("у bob результат %+v, ожидали lost", bobView)
	}

	strangerView, _ := uc.MyMatches(ctx, "stranger")
	if len(strangerView) != 0 {
		t.Errorf("у стороннего игрока %d партий", len(strangerView))
	}
}

func TestMatchDetail(t *testing.T) {
	uc, _ := newTestUseCase(board.DefaultConfig())
	ctx := context.Background()

	matchID, _, _ := setupActiveMatch(t, uc)

	detail, err := uc.MatchDetail(ctx, matchID)
	if err != nil {
		t.Fatalf("MatchDetail: %v", err)
	}
	if len(detail.Slots) != 2 {
		t.Errorf("слотов %d", len(detail.Slots))
	}
	if len(detail.Ships) != 30 {
		t.Errorf("кораблей %d, ожидали 30 на двоих", len(detail.Ships))
	}
	if len(detail.Shots) != 0 {
		t.Errorf("выстрелов %d в свежей партии", len(detail.Shots))
	}

	aliceSlot := detail.Slots[0]
	bobSlot := detail.Slots[1]
	target := shipCoords(t, uc, bobSlot.ID)[0]
	if _, err := uc.Fire(ctx, matchID, "alice", target); err != nil {
		t.Fatalf("Fire: %v", err)
	}

	detail, err = uc.MatchDetail(ctx, matchID)
	if err != nil {
		t.Fatalf("MatchDetail: %v", err)
	}
	if len(detail.Shots) != 1 {
		t.Fatalf("выстрелов %d", len(detail.Shots))
	}
	stats, ok := detail.Stats[aliceSlot.ID]
	if !ok {
		t.Fatal("нет агрегата по стрелявшему слоту")
	}
	if stats.Shots != 1 || stats.Hits != 1 || stats.Accuracy != 100.0 {
		t.Errorf("агрегат %+v, ожидали 1/1/100.0", stats)
	}
}
