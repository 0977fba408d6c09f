package match

import (
	"net/http"

	"naval_exe/internal/domain/match"
	"naval_exe/internal/httpresponse"
	"naval_exe/internal/utils"
)

// HandleBoard отдаёт обе доски глазами запрашивающего игрока: своя —
// со всеми кораблями, чужая — только с уже подбитыми клетками.
func (h *MatchHandler) HandleBoard(w http.ResponseWriter, r *http.Request) {
	userID := h.authHandler.GetUserID(w, r)
	if userID == "" {
		return
	}

	matchID := r.URL.Query().Get("match_id")
	if matchID == "" {
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, "отсутствует параметр match_id")
		return
	}

	view, err := h.matchUC.BoardView(r.Context(), matchID, userID)
	if err != nil {
		h.writeError(w, "HandleBoard", err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, view)
}

func (h *MatchHandler) HandleFire(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.log.Error("HandleFire: only POST method is allowed")
		httpresponse.WriteResponseWithStatus(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	userID := h.authHandler.GetUserID(w, r)
	if userID == "" {
		return
	}

	var req match.FireRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		h.log.Error("HandleFire: JSON decode error: ", err)
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc)
		return
	}
	if req.MatchID == "" || req.Position == "" {
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, "отсутствуют поля match_id или position")
		return
	}

	result, err := h.matchUC.Fire(r.Context(), req.MatchID, userID, req.Position)
	if err != nil {
		h.writeError(w, "HandleFire", err)
		return
	}

	h.log.Infof("выстрел %s по %s в партии %s: %s", userID, result.Position, req.MatchID, result.Outcome)
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, result)
}
