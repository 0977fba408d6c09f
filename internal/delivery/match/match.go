package match

import (
	"net/http"

	"go.uber.org/zap"

	"naval_exe/internal/bootstrap"
	authDelivery "naval_exe/internal/delivery/auth"
	"naval_exe/internal/domain/match"
	errs "naval_exe/internal/errors"
	"naval_exe/internal/httpresponse"
	matchUC "naval_exe/internal/usecase/match"
	"naval_exe/internal/utils"
)

type MatchHandler struct {
	cfg         bootstrap.Config
	log         *zap.SugaredLogger
	matchUC     *matchUC.MatchUseCase
	authHandler *authDelivery.AuthHandler
}

func NewMatchHandler(cfg bootstrap.Config, log *zap.SugaredLogger, uc *matchUC.MatchUseCase, authHandler *authDelivery.AuthHandler) *MatchHandler {
	return &MatchHandler{
		cfg:         cfg,
		log:         log,
		matchUC:     uc,
		authHandler: authHandler,
	}
}

func (h *MatchHandler) writeError(w http.ResponseWriter, op string, err error) {
	h.log.Errorf("%s: %v", op, err)
	httpresponse.WriteErrorWithStatus(w, errs.HTTPStatus(err), err.Error())
}

func (h *MatchHandler) HandleNewMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.log.Error("HandleNewMatch: only POST method is allowed")
		httpresponse.WriteResponseWithStatus(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	userID := h.authHandler.GetUserID(w, r)
	if userID == "" {
		return
	}

	var req match.CreateMatchRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		h.log.Error("HandleNewMatch: JSON decode error: ", err)
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc)
		return
	}

	resp, err := h.matchUC.CreateMatch(r.Context(), req, userID)
	if err != nil {
		h.writeError(w, "HandleNewMatch", err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusCreated, resp)
}

func (h *MatchHandler) HandleJoinMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.log.Error("HandleJoinMatch: only POST method is allowed")
		httpresponse.WriteResponseWithStatus(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	userID := h.authHandler.GetUserID(w, r)
	if userID == "" {
		return
	}

	var req match.JoinMatchRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		h.log.Error("HandleJoinMatch: JSON decode error: ", err)
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc)
		return
	}
	if req.MatchID == "" {
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, "отсутствует поле match_id")
		return
	}

	result, err := h.matchUC.JoinMatch(r.Context(), req.MatchID, userID)
	if err != nil {
		h.writeError(w, "HandleJoinMatch", err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, result)
}

func (h *MatchHandler) HandleLeaveMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.log.Error("HandleLeaveMatch: only POST method is allowed")
		httpresponse.WriteResponseWithStatus(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	userID := h.authHandler.GetUserID(w, r)
	if userID == "" {
		return
	}

	var req match.JoinMatchRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		h.log.Error("HandleLeaveMatch: JSON decode error: ", err)
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc)
		return
	}
	if req.MatchID == "" {
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, "отсутствует поле match_id")
		return
	}

	if err := h.matchUC.LeaveMatch(r.Context(), req.MatchID, userID); err != nil {
		h.writeError(w, "HandleLeaveMatch", err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, "Вы вышли из партии")
}

// HandleMatchStatus — поллинг комнаты ожидания. Заодно чинит партию,
// застрявшую в waiting при двух игроках.
func (h *MatchHandler) HandleMatchStatus(w http.ResponseWriter, r *http.Request) {
	matchID := r.URL.Query().Get("match_id")
	if matchID == "" {
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, "отсутствует параметр match_id")
		return
	}

	status, err := h.matchUC.CheckReadiness(r.Context(), matchID)
	if err != nil {
		h.writeError(w, "HandleMatchStatus", err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, status)
}

func (h *MatchHandler) HandleOpenMatches(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.matchUC.OpenMatches(r.Context())
	if err != nil {
		h.writeError(w, "HandleOpenMatches", err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, h.limitPage(summaries))
}

// limitPage обрезает список по PAGE_LIMIT_MATCHES из конфига.
func (h *MatchHandler) limitPage(summaries []match.Summary) []match.Summary {
	if h.cfg.PageLimitMatches > 0 && len(summaries) > h.cfg.PageLimitMatches {
		return summaries[:h.cfg.PageLimitMatches]
	}
	return summaries
}

func (h *MatchHandler) HandleMyMatches(w http.ResponseWriter, r *http.Request) {
	userID := h.authHandler.GetUserID(w, r)
	if userID == "" {
		return
	}

	summaries, err := h.matchUC.MyMatches(r.Context(), userID)
	if err != nil {
		h.writeError(w, "HandleMyMatches", err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, h.limitPage(summaries))
}

// HandleMatchDetail отдаёт партию целиком — история для экрана статистики.
func (h *MatchHandler) HandleMatchDetail(w http.ResponseWriter, r *http.Request) {
	userID := h.authHandler.GetUserID(w, r)
	if userID == "" {
		return
	}

	matchID := r.URL.Query().Get("match_id")
	if matchID == "" {
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, "отсутствует параметр match_id")
		return
	}

	detail, err := h.matchUC.MatchDetail(r.Context(), matchID)
	if err != nil {
		h.writeError(w, "HandleMatchDetail", err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, detail)
}

// HandleShotFeed — хвост ленты выстрелов из Redis для дешёвого поллинга.
func (h *MatchHandler) HandleShotFeed(w http.ResponseWriter, r *http.Request) {
	userID := h.authHandler.GetUserID(w, r)
	if userID == "" {
		return
	}

	matchID := r.URL.Query().Get("match_id")
	if matchID == "" {
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, "отсутствует параметр match_id")
		return
	}

	entries, err := h.matchUC.LastShots(r.Context(), matchID, 10)
	if err != nil {
		h.writeError(w, "HandleShotFeed", err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, entries)
}
