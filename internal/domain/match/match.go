package match

import (
	"time"
)

// Match — корень агрегата. Владеет слотами игроков и журналом выстрелов.
type Match struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Status      string    `json:"status" bson:"status"`
	WinnerID    string    `json:"winner_id,omitempty" bson:"winner_id,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// PlayerSlot — место игрока в партии. Пока партия идёт, флаг хода
// стоит ровно у одного слота.
type PlayerSlot struct {
	ID        string    `json:"id" bson:"_id"`
	MatchID   string    `json:"match_id" bson:"match_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	IsTurn    bool      `json:"is_turn" bson:"is_turn"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Ship занимает ровно одну клетку и тонет с первого попадания.
type Ship struct {
	ID         string `json:"id" bson:"_id"`
	SlotID     string `json:"slot_id" bson:"slot_id"`
	Coordinate string `json:"coordinate" bson:"coordinate"`
	Sunk       bool   `json:"sunk" bson:"sunk"`
}

// Shot — неизменяемая запись одного выстрела, append-only журнал.
type Shot struct {
	ID         string    `json:"id" bson:"_id"`
	MatchID    string    `json:"match_id" bson:"match_id"`
	AttackerID string    `json:"attacker_id" bson:"attacker_id"`
	DefenderID string    `json:"defender_id" bson:"defender_id"`
	Coordinate string    `json:"coordinate" bson:"coordinate"`
	Hit        bool      `json:"hit" bson:"hit"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

const (
	OutcomeMiss = "miss"
	OutcomeSunk = "sunk"
)

type CreateMatchRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CreateMatchResponse struct {
	Match Match      `json:"match"`
	Slot  PlayerSlot `json:"slot"`
}

type JoinMatchRequest struct {
	MatchID string `json:"match_id"`
}

type JoinResult struct {
	Match         Match      `json:"match"`
	Slot          PlayerSlot `json:"slot"`
	AlreadyJoined bool       `json:"already_joined"`
	Started       bool       `json:"started"`
}

type ReadinessStatus struct {
	Status         string `json:"status"`
	PlayerCount    int    `json:"player_count"`
	CanStart       bool   `json:"can_start"`
	ShouldRedirect bool   `json:"should_redirect"`
}

type FireRequest struct {
	MatchID  string `json:"match_id"`
	Position string `json:"position"`
}

type ShotResult struct {
	Outcome        string      `json:"outcome"`
	Position       string      `json:"position"`
	Hit            bool        `json:"hit"`
	GameOver       bool        `json:"game_over"`
	RemainingShips int         `json:"remaining_ships"`
	NextTurnSlotID string      `json:"next_turn_slot_id,omitempty"`
	Winner         *GameResult `json:"winner,omitempty"`
	Loser          *GameResult `json:"loser,omitempty"`
}

type GameResult struct {
	UserID   string `json:"user_id"`
	IsWinner bool   `json:"is_winner"`
}

// ShotView — выстрел глазами конкретного игрока.
type ShotView struct {
	Position string `json:"position"`
	Hit      bool   `json:"hit"`
	Sunk     bool   `json:"sunk"`
	Result   string `json:"result"`
}

type BoardStats struct {
	Shots    int     `json:"shots"`
	Hits     int     `json:"hits"`
	Accuracy float64 `json:"accuracy"`
}

type BoardSide struct {
	Ships      []string   `json:"ships"`
	ShotViews  []ShotView `json:"shots"`
	Stats      BoardStats `json:"stats"`
	Own        bool       `json:"own"`
	ShowsShips bool       `json:"shows_ships"`
	CanFire    bool       `json:"can_fire"`
}

type BoardViewResponse struct {
	Match         Match       `json:"match"`
	OwnBoard      BoardSide   `json:"own_board"`
	OpponentBoard BoardSide   `json:"opponent_board"`
	IsMyTurn      bool        `json:"is_my_turn"`
	GameOver      bool        `json:"game_over"`
	WinnerID      string      `json:"winner_id,omitempty"`
	Winner        *GameResult `json:"winner,omitempty"`
	Loser         *GameResult `json:"loser,omitempty"`
}

const (
	ResultWon     = "won"
	ResultLost    = "lost"
	ResultPending = "pending"
)

type Summary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	Result      string    `json:"result,omitempty"`
	OpponentID  string    `json:"opponent_id,omitempty"`
	PlayerCount int       `json:"player_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type Detail struct {
	Match Match                 `json:"match"`
	Slots []PlayerSlot          `json:"slots"`
	Ships []Ship                `json:"ships"`
	Shots []Shot                `json:"shots"`
	Stats map[string]BoardStats `json:"stats"` // точность по слоту стрелявшего
}
