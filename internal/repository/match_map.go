package repository

import (
	"context"
	"sort"
	"sync"

	"naval_exe/internal/domain/match"
	errs "naval_exe/internal/errors"
	"naval_exe/internal/statuses"
)

// MatchMapStorage — хранилище в памяти, двойник MatchMongoStorage.
// Используется в тестах и для локального запуска без базы.
type MatchMapStorage struct {
	mu      sync.RWMutex
	matches map[string]match.Match
	slots   map[string][]match.PlayerSlot // по партии, в порядке создания
	ships   map[string][]match.Ship       // по слоту
	shots   map[string][]match.Shot       // по партии, в порядке выстрелов
	feed    map[string][]string
}

func NewMatchMapStorage() *MatchMapStorage {
	return &MatchMapStorage{
		matches: make(map[string]match.Match),
		slots:   make(map[string][]match.PlayerSlot),
		ships:   make(map[string][]match.Ship),
		shots:   make(map[string][]match.Shot),
		feed:    make(map[string][]string),
	}
}

func (s *MatchMapStorage) PutMatch(_ context.Context, m match.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[m.ID] = m
	return nil
}

func (s *MatchMapStorage) GetMatch(_ context.Context, matchID string) (match.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[matchID]
	if !ok {
		return match.Match{}, errs.ErrMatchNotFound
	}
	return m, nil
}

func (s *MatchMapStorage) UpdateMatch(_ context.Context, m match.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[m.ID]; !ok {
		return errs.ErrMatchNotFound
	}
	s.matches[m.ID] = m
	return nil
}

func (s *MatchMapStorage) DeleteMatch(_ context.Context, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.matches, matchID)
	delete(s.slots, matchID)
	delete(s.shots, matchID)
	delete(s.feed, matchID)
	return nil
}

func (s *MatchMapStorage) PutSlot(_ context.Context, slot match.PlayerSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[slot.MatchID] = append(s.slots[slot.MatchID], slot)
	return nil
}

func (s *MatchMapStorage) UpdateSlot(_ context.Context, slot match.PlayerSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slots := s.slots[slot.MatchID]
	for i := range slots {
		if slots[i].ID == slot.ID {
			slots[i] = slot
			return nil
		}
	}
	return errs.ErrMatchNotFound
}

func (s *MatchMapStorage) DeleteSlot(_ context.Context, slotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for matchID, slots := range s.slots {
		for i := range slots {
			if slots[i].ID == slotID {
				s.slots[matchID] = append(slots[:i], slots[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (s *MatchMapStorage) SlotsByMatch(_ context.Context, matchID string) ([]match.PlayerSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slots := s.slots[matchID]
	out := make([]match.PlayerSlot, len(slots))
	copy(out, slots)
	return out, nil
}

func (s *MatchMapStorage) SlotByMatchAndUser(_ context.Context, matchID, userID string) (match.PlayerSlot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, slot := range s.slots[matchID] {
		if slot.UserID == userID {
			return slot, true, nil
		}
	}
	return match.PlayerSlot{}, false, nil
}

func (s *MatchMapStorage) PutShips(_ context.Context, ships []match.Ship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ship := range ships {
		s.ships[ship.SlotID] = append(s.ships[ship.SlotID], ship)
	}
	return nil
}

func (s *MatchMapStorage) UpdateShip(_ context.Context, ship match.Ship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ships := s.ships[ship.SlotID]
	for i := range ships {
		if ships[i].ID == ship.ID {
			ships[i] = ship
			return nil
		}
	}
	return errs.ErrMatchNotFound
}

func (s *MatchMapStorage) ShipsBySlot(_ context.Context, slotID string) ([]match.Ship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ships := s.ships[slotID]
	out := make([]match.Ship, len(ships))
	copy(out, ships)
	return out, nil
}

func (s *MatchMapStorage) DeleteShipsBySlot(_ context.Context, slotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ships, slotID)
	return nil
}

func (s *MatchMapStorage) CountUnsunkShips(_ context.Context, slotID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, ship := range s.ships[slotID] {
		if !ship.Sunk {
			count++
		}
	}
	return count, nil
}

func (s *MatchMapStorage) PutShot(_ context.Context, shot match.Shot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shots[shot.MatchID] = append(s.shots[shot.MatchID], shot)
	return nil
}

func (s *MatchMapStorage) ShotsByMatch(_ context.Context, matchID string) ([]match.Shot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	shots := s.shots[matchID]
	out := make([]match.Shot, len(shots))
	copy(out, shots)
	return out, nil
}

func (s *MatchMapStorage) HasShot(_ context.Context, matchID, attackerID, defenderID, coordinate string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, shot := range s.shots[matchID] {
		if shot.AttackerID == attackerID && shot.DefenderID == defenderID && shot.Coordinate == coordinate {
			return true, nil
		}
	}
	return false, nil
}

func (s *MatchMapStorage) DeleteShotsByMatch(_ context.Context, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.shots, matchID)
	return nil
}

func (s *MatchMapStorage) OpenMatches(_ context.Context) ([]match.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []match.Match
	for _, m := range s.matches {
		if m.Status == statuses.StatusWaiting {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MatchMapStorage) MatchesByUser(_ context.Context, userID string) ([]match.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []match.Match
	for matchID, slots := range s.slots {
		for _, slot := range slots {
			if slot.UserID == userID {
				if m, ok := s.matches[matchID]; ok {
					out = append(out, m)
				}
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MatchMapStorage) AppendShotFeed(_ context.Context, matchID string, entry []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feed[matchID] = append(s.feed[matchID], string(entry))
	return nil
}

func (s *MatchMapStorage) LoadShotFeed(_ context.Context, matchID string, limit int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	feed := s.feed[matchID]
	if limit > 0 && int64(len(feed)) > limit {
		feed = feed[int64(len(feed))-limit:]
	}
	out := make([]string, len(feed))
	copy(out, feed)
	return out, nil
}
