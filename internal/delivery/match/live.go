package match

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"naval_exe/internal/httpresponse"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type liveMatch struct {
	conns map[string]*websocket.Conn // соединение каждого игрока по userID
}

var activeMatches = make(map[string]*liveMatch)
var activeMatchesMu sync.Mutex

type livePosition struct {
	Position string `json:"position"`
}

// HandleLiveMatch — живой канал партии: оба игрока подключаются по
// вебсокету, шлют координаты, результат выстрела уходит обоим.
func (h *MatchHandler) HandleLiveMatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	matchID := r.URL.Query().Get("match_id")

	userID := h.authHandler.GetUserID(w, r)
	if userID == "" {
		return
	}
	if matchID == "" {
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, "отсутствует параметр match_id")
		return
	}

	detail, err := h.matchUC.MatchDetail(ctx, matchID)
	if err != nil {
		h.writeError(w, "HandleLiveMatch", err)
		return
	}
	participant := false
	for _, slot := range detail.Slots {
		if slot.UserID == userID {
			participant = true
		}
	}
	if !participant {
		h.log.Errorf("HandleLiveMatch: игрок %s не в партии %s", userID, matchID)
		httpresponse.WriteErrorWithStatus(w, http.StatusForbidden, "Вы не участник этой партии")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("HandleLiveMatch: upgrade error: ", err)
		return
	}

	activeMatchesMu.Lock()
	lm, ok := activeMatches[matchID]
	if !ok {
		lm = &liveMatch{conns: make(map[string]*websocket.Conn)}
		activeMatches[matchID] = lm
	}
	if prev := lm.conns[userID]; prev != nil {
		prev.WriteMessage(websocket.TextMessage, []byte("Вы были отключены, новое соединение создано."))
		prev.Close()
	}
	lm.conns[userID] = conn
	activeMatchesMu.Unlock()

	defer func() {
		conn.Close()
		activeMatchesMu.Lock()
		if lm.conns[userID] == conn {
			delete(lm.conns, userID)
		}
		if len(lm.conns) == 0 {
			delete(activeMatches, matchID)
		}
		activeMatchesMu.Unlock()
	}()

	for {
		var msg livePosition
		if err = conn.ReadJSON(&msg); err != nil {
			h.log.Error("HandleLiveMatch: read error: ", err)
			return
		}

		result, err := h.matchUC.Fire(ctx, matchID, userID, msg.Position)
		if err != nil {
			conn.WriteMessage(websocket.TextMessage, []byte(err.Error()))
			continue
		}

		activeMatchesMu.Lock()
		for id, c := range lm.conns {
			if err := c.WriteJSON(result); err != nil {
				h.log.Error("HandleLiveMatch: write error: ", err)
				c.Close()
				delete(lm.conns, id)
			}
		}
		activeMatchesMu.Unlock()

		if result.GameOver {
			return
		}
	}
}
