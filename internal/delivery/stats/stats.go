package stats

import (
	"net/http"

	"go.uber.org/zap"

	authDelivery "naval_exe/internal/delivery/auth"
	"naval_exe/internal/domain/match"
	errs "naval_exe/internal/errors"
	"naval_exe/internal/httpresponse"
	statsUC "naval_exe/internal/usecase/stats"
)

type StatsHandler struct {
	log         *zap.SugaredLogger
	statsUC     *statsUC.StatsUseCase
	authHandler *authDelivery.AuthHandler
}

func NewStatsHandler(log *zap.SugaredLogger, uc *statsUC.StatsUseCase, authHandler *authDelivery.AuthHandler) *StatsHandler {
	return &StatsHandler{
		log:         log,
		statsUC:     uc,
		authHandler: authHandler,
	}
}

// HandleUserStats — счётчики выигранных и проигранных партий игрока.
func (h *StatsHandler) HandleUserStats(w http.ResponseWriter, r *http.Request) {
	userID := h.authHandler.GetUserID(w, r)
	if userID == "" {
		return
	}

	stats, err := h.statsUC.UserStats(r.Context(), userID)
	if err != nil {
		h.log.Error("HandleUserStats: ", err)
		httpresponse.WriteErrorWithStatus(w, errs.HTTPStatus(err), err.Error())
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, stats)
}

// HandleMatchesByResult — завершённые партии с исходом won или lost.
func (h *StatsHandler) HandleMatchesByResult(w http.ResponseWriter, r *http.Request) {
	userID := h.authHandler.GetUserID(w, r)
	if userID == "" {
		return
	}

	result := r.URL.Query().Get("result")
	if result != match.ResultWon && result != match.ResultLost {
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, "параметр result должен быть won или lost")
		return
	}

	summaries, err := h.statsUC.MatchesByResult(r.Context(), userID, result)
	if err != nil {
		h.log.Error("HandleMatchesByResult: ", err)
		httpresponse.WriteErrorWithStatus(w, errs.HTTPStatus(err), err.Error())
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, summaries)
}
