package match

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"naval_exe/internal/domain/board"
	"naval_exe/internal/domain/match"
	errs "naval_exe/internal/errors"
	"naval_exe/internal/statuses"
)

// MatchStore — хранилище четырёх отношений: партии, слоты, корабли, выстрелы.
// SlotsByMatch обязан возвращать слоты в порядке создания.
type MatchStore interface {
	PutMatch(ctx context.Context, m match.Match) error
	GetMatch(ctx context.Context, matchID string) (match.Match, error)
	UpdateMatch(ctx context.Context, m match.Match) error
	DeleteMatch(ctx context.Context, matchID string) error

	PutSlot(ctx context.Context, s match.PlayerSlot) error
	UpdateSlot(ctx context.Context, s match.PlayerSlot) error
	DeleteSlot(ctx context.Context, slotID string) error
	SlotsByMatch(ctx context.Context, matchID string) ([]match.PlayerSlot, error)
	SlotByMatchAndUser(ctx context.Context, matchID, userID string) (match.PlayerSlot, bool, error)

	PutShips(ctx context.Context, ships []match.Ship) error
	UpdateShip(ctx context.Context, s match.Ship) error
	ShipsBySlot(ctx context.Context, slotID string) ([]match.Ship, error)
	DeleteShipsBySlot(ctx context.Context, slotID string) error
	CountUnsunkShips(ctx context.Context, slotID string) (int, error)

	PutShot(ctx context.Context, s match.Shot) error
	ShotsByMatch(ctx context.Context, matchID string) ([]match.Shot, error)
	HasShot(ctx context.Context, matchID, attackerID, defenderID, coordinate string) (bool, error)
	DeleteShotsByMatch(ctx context.Context, matchID string) error

	OpenMatches(ctx context.Context) ([]match.Match, error)
	MatchesByUser(ctx context.Context, userID string) ([]match.Match, error)

	AppendShotFeed(ctx context.Context, matchID string, entry []byte) error
	LoadShotFeed(ctx context.Context, matchID string, limit int64) ([]string, error)
}

type MatchUseCase struct {
	store MatchStore
	grid  board.Config
	log   *zap.SugaredLogger

	// Критическая секция на одну партию: два игрока и поллинг
	// готовности не должны гоняться за общим состоянием. Разные
	// партии друг другу не мешают.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewMatchUseCase(store MatchStore, grid board.Config, log *zap.SugaredLogger) *MatchUseCase {
	return &MatchUseCase{
		store: store,
		grid:  grid,
		log:   log,
		locks: make(map[string]*sync.Mutex),
	}
}

func (u *MatchUseCase) lockFor(matchID string) *sync.Mutex {
	u.mu.Lock()
	defer u.mu.Unlock()
	l, ok := u.locks[matchID]
	if !ok {
		l = &sync.Mutex{}
		u.locks[matchID] = l
	}
	return l
}

func (u *MatchUseCase) forgetLock(matchID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.locks, matchID)
}

// CreateMatch создаёт партию в статусе waiting с одним слотом создателя
// и сразу расставляет его флот.
func (u *MatchUseCase) CreateMatch(ctx context.Context, req match.CreateMatchRequest, creatorID string) (match.CreateMatchResponse, error) {
	name := req.Name
	if name == "" {
		name = fmt.Sprintf("Партия игрока %s", creatorID)
	}

	newMatch := match.Match{
		ID:          uuid.New().String(),
		Name:        name,
		Description: req.Description,
		Status:      statuses.StatusWaiting,
		CreatedAt:   time.Now(),
	}
	if err := u.store.PutMatch(ctx, newMatch); err != nil {
		return match.CreateMatchResponse{}, err
	}

	slot := match.PlayerSlot{
		ID:        uuid.New().String(),
		MatchID:   newMatch.ID,
		UserID:    creatorID,
		IsTurn:    false,
		CreatedAt: time.Now(),
	}
	if err := u.store.PutSlot(ctx, slot); err != nil {
		return match.CreateMatchResponse{}, err
	}

	if err := u.generateFleet(ctx, slot.ID); err != nil {
		return match.CreateMatchResponse{}, err
	}

	u.log.Infof("создана партия %s игроком %s", newMatch.ID, creatorID)

	return match.CreateMatchResponse{Match: newMatch, Slot: slot}, nil
}

// generateFleet расставляет флот для слота. Вызывается один раз на слот.
func (u *MatchUseCase) generateFleet(ctx context.Context, slotID string) error {
	coords := u.grid.RandomFleet()
	ships := make([]match.Ship, 0, len(coords))
	for _, c := range coords {
		ships = append(ships, match.Ship{
			ID:         uuid.New().String(),
			SlotID:     slotID,
			Coordinate: c.String(),
			Sunk:       false,
		})
	}
	return u.store.PutShips(ctx, ships)
}

// JoinMatch добавляет второго игрока. Повторный join того же игрока
// идемпотентен: слот не дублируется, флот дорасставляется, если его нет.
func (u *MatchUseCase) JoinMatch(ctx context.Context, matchID, userID string) (match.JoinResult, error) {
	l := u.lockFor(matchID)
	l.Lock()
	defer l.Unlock()

	m, err := u.store.GetMatch(ctx, matchID)
	if err != nil {
		return match.JoinResult{}, err
	}

	if m.Status != statuses.StatusWaiting {
		return match.JoinResult{}, errs.ErrMatchAlreadyStarted
	}

	slots, err := u.store.SlotsByMatch(ctx, matchID)
	if err != nil {
		return match.JoinResult{}, err
	}

	for _, s := range slots {
		if s.UserID == userID {
			ships, err := u.store.ShipsBySlot(ctx, s.ID)
			if err != nil {
				return match.JoinResult{}, err
			}
			if len(ships) == 0 {
				if err := u.generateFleet(ctx, s.ID); err != nil {
					return match.JoinResult{}, err
				}
			}
			return match.JoinResult{Match: m, Slot: s, AlreadyJoined: true}, nil
		}
	}

	if len(slots) >= 2 {
		return match.JoinResult{}, errs.ErrMatchFull
	}

	slot := match.PlayerSlot{
		ID:        uuid.New().String(),
		MatchID:   matchID,
		UserID:    userID,
		IsTurn:    false,
		CreatedAt: time.Now(),
	}
	if err := u.store.PutSlot(ctx, slot); err != nil {
		return match.JoinResult{}, err
	}
	if err := u.generateFleet(ctx, slot.ID); err != nil {
		return match.JoinResult{}, err
	}

	started := false
	if len(slots)+1 >= 2 {
		m, err = u.startMatch(ctx, m)
		if err != nil {
			return match.JoinResult{}, err
		}
		started = true
	}

	u.log.Infof("игрок %s присоединился к партии %s", userID, matchID)

	return match.JoinResult{Match: m, Slot: slot, Started: started}, nil
}

// startMatch переводит партию в in_progress и отдаёт ход слоту,
// созданному раньше всех.
func (u *MatchUseCase) startMatch(ctx context.Context, m match.Match) (match.Match, error) {
	m.Status = statuses.StatusInProgress
	if err := u.store.UpdateMatch(ctx, m); err != nil {
		return m, err
	}

	slots, err := u.store.SlotsByMatch(ctx, m.ID)
	if err != nil {
		return m, err
	}
	if len(slots) < 2 {
		// Инвариант: in_progress всегда с двумя слотами.
		u.log.Errorf("партия %s переводится в in_progress с %d слотами", m.ID, len(slots))
		return m, errs.ErrInternal
	}

	first := slots[0]
	first.IsTurn = true
	if err := u.store.UpdateSlot(ctx, first); err != nil {
		return m, err
	}

	u.log.Infof("партия %s началась, первым ходит %s", m.ID, first.UserID)
	return m, nil
}

// CheckReadiness — идемпотентная проверка готовности: если два слота уже
// есть, а партия застряла в waiting, переводим её в in_progress здесь же.
func (u *MatchUseCase) CheckReadiness(ctx context.Context, matchID string) (match.ReadinessStatus, error) {
	l := u.lockFor(matchID)
	l.Lock()
	defer l.Unlock()

	m, err := u.store.GetMatch(ctx, matchID)
	if err != nil {
		return match.ReadinessStatus{}, err
	}

	slots, err := u.store.SlotsByMatch(ctx, matchID)
	if err != nil {
		return match.ReadinessStatus{}, err
	}

	if len(slots) >= 2 && m.Status == statuses.StatusWaiting {
		m, err = u.startMatch(ctx, m)
		if err != nil {
			return match.ReadinessStatus{}, err
		}
	}

	return match.ReadinessStatus{
		Status:         m.Status,
		PlayerCount:    len(slots),
		CanStart:       len(slots) >= 2,
		ShouldRedirect: len(slots) >= 2 && m.Status == statuses.StatusInProgress,
	}, nil
}

// LeaveMatch убирает игрока из партии, пока она не началась. Слот и флот
// удаляются; пустая партия удаляется целиком вместе с журналом выстрелов.
func (u *MatchUseCase) LeaveMatch(ctx context.Context, matchID, userID string) error {
	l := u.lockFor(matchID)
	l.Lock()
	defer l.Unlock()

	m, err := u.store.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}

	if m.Status != statuses.StatusWaiting {
		return errs.ErrMatchAlreadyStarted
	}

	slot, ok, err := u.store.SlotByMatchAndUser(ctx, matchID, userID)
	if err != nil {
		return err
	}
	if !ok {
		// выход не участника — ничего не делаем, как и оригинал
		return nil
	}

	if err := u.store.DeleteShipsBySlot(ctx, slot.ID); err != nil {
		return err
	}
	if err := u.store.DeleteSlot(ctx, slot.ID); err != nil {
		return err
	}

	slots, err := u.store.SlotsByMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		if err := u.store.DeleteShotsByMatch(ctx, matchID); err != nil {
			return err
		}
		if err := u.store.DeleteMatch(ctx, matchID); err != nil {
			return err
		}
		u.forgetLock(matchID)
		u.log.Infof("партия %s удалена: последний игрок вышел", matchID)
	}

	return nil
}

// OpenMatches возвращает партии, ждущие второго игрока.
func (u *MatchUseCase) OpenMatches(ctx context.Context) ([]match.Summary, error) {
	matches, err := u.store.OpenMatches(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]match.Summary, 0, len(matches))
	for _, m := range matches {
		slots, err := u.store.SlotsByMatch(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		if len(slots) >= 2 {
			continue
		}
		summaries = append(summaries, match.Summary{
			ID:          m.ID,
			Name:        m.Name,
			Status:      m.Status,
			PlayerCount: len(slots),
			CreatedAt:   m.CreatedAt,
		})
	}
	return summaries, nil
}

// MyMatches возвращает партии игрока с исходом глазами этого игрока.
func (u *MatchUseCase) MyMatches(ctx context.Context, userID string) ([]match.Summary, error) {
	matches, err := u.store.MatchesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]match.Summary, 0, len(matches))
	for _, m := range matches {
		result := match.ResultPending
		if m.Status == statuses.StatusFinished {
			if m.WinnerID == userID {
				result = match.ResultWon
			} else {
				result = match.ResultLost
			}
		}

		opponentID := ""
		slots, err := u.store.SlotsByMatch(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		for _, s := range slots {
			if s.UserID != userID {
				opponentID = s.UserID
			}
		}

		summaries = append(summaries, match.Summary{
			ID:          m.ID,
			Name:        m.Name,
			Status:      m.Status,
			Result:      result,
			OpponentID:  opponentID,
			PlayerCount: len(slots),
			CreatedAt:   m.CreatedAt,
		})
	}
	return summaries, nil
}

// MatchDetail отдаёт партию целиком: слоты, корабли, выстрелы.
// Только чтение, для истории и статистики.
func (u *MatchUseCase) MatchDetail(ctx context.Context, matchID string) (match.Detail, error) {
	m, err := u.store.GetMatch(ctx, matchID)
	if err != nil {
		return match.Detail{}, err
	}

	slots, err := u.store.SlotsByMatch(ctx, matchID)
	if err != nil {
		return match.Detail{}, err
	}

	var ships []match.Ship
	for _, s := range slots {
		slotShips, err := u.store.ShipsBySlot(ctx, s.ID)
		if err != nil {
			return match.Detail{}, err
		}
		ships = append(ships, slotShips...)
	}

	shots, err := u.store.ShotsByMatch(ctx, matchID)
	if err != nil {
		return match.Detail{}, err
	}

	// агрегат точности по каждому стрелявшему слоту
	byAttacker := make(map[string][]match.Shot)
	for _, s := range shots {
		byAttacker[s.AttackerID] = append(byAttacker[s.AttackerID], s)
	}
	stats := make(map[string]match.BoardStats, len(byAttacker))
	for slotID, attackerShots := range byAttacker {
		stats[slotID] = computeStats(attackerShots)
	}

	return match.Detail{Match: m, Slots: slots, Ships: ships, Shots: shots, Stats: stats}, nil
}

// LastShots читает хвост ленты выстрелов из быстрого хранилища.
func (u *MatchUseCase) LastShots(ctx context.Context, matchID string, limit int64) ([]string, error) {
	if _, err := u.store.GetMatch(ctx, matchID); err != nil {
		return nil, err
	}
	return u.store.LoadShotFeed(ctx, matchID, limit)
}
