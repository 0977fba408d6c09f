package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"naval_exe/internal/adapters"
	"naval_exe/internal/bootstrap"
	authDelivery "naval_exe/internal/delivery/auth"
	matchDelivery "naval_exe/internal/delivery/match"
	statsDelivery "naval_exe/internal/delivery/stats"
	"naval_exe/internal/domain/board"
	ownMiddleware "naval_exe/internal/middleware"
	"naval_exe/internal/repository"
	matchUC "naval_exe/internal/usecase/match"
	statsUC "naval_exe/internal/usecase/stats"
)

type mainDeliveryHandler struct {
	auth  *authDelivery.AuthHandler
	match *matchDelivery.MatchHandler
	stats *statsDelivery.StatsHandler
}

type dataBaseAdapters struct {
	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

func main() {
	logger := NewLogger()
	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Error("Failed to setup configuration", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel, logger)

	databaseAdapters := initDatabaseAdapters(ctx, logger, cfg)
	defer databaseAdapters.mongoAdapter.Close(ctx)
	defer databaseAdapters.redisAdapter.Close(ctx)

	r := chi.NewRouter()
	handlers := initializeDeliveryHandlers(*cfg, logger, databaseAdapters)
	handlers.Router(r, cfg.IsLocalCors)

	logger.Infof("Server is running on port %s", cfg.ServerPort)
	if err := http.ListenAndServe(cfg.ServerPort, r); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func (h *mainDeliveryHandler) Router(r *chi.Mux, isLocalCors bool) {
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)

	r.Post("/register", h.auth.Register)
	r.Post("/login", h.auth.Login)
	r.Delete("/logout", h.auth.Logout)
	r.Get("/me", h.auth.Me)

	r.Post("/NewMatch", h.match.HandleNewMatch)
	r.Post("/JoinMatch", h.match.HandleJoinMatch)
	r.Post("/LeaveMatch", h.match.HandleLeaveMatch)
	r.Get("/matchStatus", h.match.HandleMatchStatus)
	r.Get("/OpenMatches", h.match.HandleOpenMatches)
	r.Get("/MyMatches", h.match.HandleMyMatches)
	r.Get("/matchDetail", h.match.HandleMatchDetail)
	r.Get("/shotFeed", h.match.HandleShotFeed)

	r.Get("/board", h.match.HandleBoard)
	r.Post("/Fire", h.match.HandleFire)
	r.Get("/liveMatch", h.match.HandleLiveMatch)

	r.Get("/stats", h.stats.HandleUserStats)
	r.Get("/stats/matches", h.stats.HandleMatchesByResult)
}

func initDatabaseAdapters(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) *dataBaseAdapters {
	mongoAdapter := adapters.NewAdapterMongo(cfg)
	if err := mongoAdapter.Init(ctx); err != nil {
		log.Fatal("Не удалось инициализировать MongoDB", zap.Error(err))
	}

	redisAdapter := adapters.NewAdapterRedis(cfg)
	if err := redisAdapter.Init(ctx); err != nil {
		log.Fatal("Не удалось инициализировать Redis", zap.Error(err))
	}

	log.Info("Адаптеры баз данных инициализированы")
	return &dataBaseAdapters{
		redisAdapter: redisAdapter,
		mongoAdapter: mongoAdapter,
	}
}

func initializeDeliveryHandlers(
	cfg bootstrap.Config,
	log *zap.SugaredLogger,
	databaseAdapters *dataBaseAdapters,
) *mainDeliveryHandler {
	authDeliveryHandler := authDelivery.NewAuthHandler(
		repository.NewMongoUserStorage(databaseAdapters.mongoAdapter, log),
		repository.NewSessionRedisStorage(databaseAdapters.redisAdapter.GetClient(), log),
		log,
	)

	grid := board.Config{
		Letters:   cfg.GridLetters,
		Numbers:   cfg.GridNumbers,
		FleetSize: cfg.FleetSize,
	}

	matchStore := repository.NewMatchMongoStorage(
		log,
		databaseAdapters.mongoAdapter.Database,
		databaseAdapters.redisAdapter.GetClient(),
	)

	matchUseCase := matchUC.NewMatchUseCase(matchStore, grid, log)
	matchDeliveryHandler := matchDelivery.NewMatchHandler(cfg, log, matchUseCase, authDeliveryHandler)

	statsUseCase := statsUC.NewStatsUseCase(matchStore, log)
	statsDeliveryHandler := statsDelivery.NewStatsHandler(log, statsUseCase, authDeliveryHandler)

	return &mainDeliveryHandler{
		auth:  authDeliveryHandler,
		match: matchDeliveryHandler,
		stats: statsDeliveryHandler,
	}
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()
	time.Sleep(1 * time.Second) // дать время закрыть соединения
}
