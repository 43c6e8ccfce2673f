package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cardforge/card-arena/internal/api"
	"github.com/cardforge/card-arena/internal/arena"
	"github.com/cardforge/card-arena/internal/constants"
	"github.com/cardforge/card-arena/internal/events"
	"github.com/cardforge/card-arena/internal/logging"
	"github.com/cardforge/card-arena/internal/registry"
	"github.com/cardforge/card-arena/internal/rng"
	"github.com/cardforge/card-arena/internal/version"
)

func main() {
	// Path may be provided via ARENA_CONFIG or defaults to
	// ./arena_config.json in the current working directory.
	configPath := os.Getenv(constants.EnvConfigPath)
	if configPath == "" {
		configPath = "./arena_config.json"
	}
	cfg := loadConfigOrExit(configPath)

	// Allow the DB path to be configured via ARENA_DB, falling back to the
	// config file and then to a data/ directory for local development.
	dbPath := os.Getenv(constants.EnvDBPath)
	if dbPath == "" {
		dbPath = cfg.DBPath
	}
	repo := createRepositoryOrExit(dbPath)

	reg := registry.New(repo, cfg.Classes)
	svc := arena.NewService(repo, reg, cfg.Classes, rng.NewEntropy(), events.LogPublisher{}, arena.Options{
		BattleTimeout: cfg.BattleTimeout,
		TurnTimeout:   cfg.TurnTimeout,
		OperatorID:    cfg.OperatorID,
	})
	if err := svc.Rebuild(); err != nil {
		logging.Fatal("Failed to rebuild active battle index", err, nil)
	}

	startTimeoutScanner(repo, svc, uuid.NewString())

	handler := api.NewArenaHandler(svc, reg)
	topWins := api.NewTopWinsHandler(repo)

	router := gin.Default()

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		// Public endpoints
		apiRoutes.GET(constants.RouteVersion, api.GetVersion)
		apiRoutes.GET(constants.RouteTopWins, topWins.ListTopWins)

		// Endpoints requiring a caller identity
		protected := apiRoutes.Group("")
		protected.Use(api.IdentityRequired())

		protected.POST(constants.RouteQueueJoin, handler.JoinQueue)
		protected.POST(constants.RouteQueueLeave, handler.LeaveQueue)

		protected.POST(constants.RouteChallenges, handler.IssueChallenge)
		protected.POST(constants.RouteChallengeAccept, handler.AcceptChallenge)
		protected.POST(constants.RouteChallengeReject, handler.RejectChallenge)

		protected.GET(constants.RouteBattleByID, handler.GetBattle)
		protected.GET(constants.RouteBattleActions, handler.GetBattleActions)
		protected.POST(constants.RouteBattleAttack, handler.PerformAttack)
		protected.POST(constants.RouteBattleEndTurn, handler.EndTurn)
		protected.POST(constants.RouteBattleForfeit, handler.Forfeit)

		protected.GET(constants.RouteCharacterByID, handler.GetCharacter)
		protected.GET(constants.RouteCharacterDerived, handler.GetCombatStats)
		protected.POST(constants.RouteCharacterSpend, handler.SpendStatPoints)

		protected.PUT(constants.RouteAdminTimeouts, handler.UpdateTimeouts)
		protected.POST(constants.RouteAdminCancelBattle, handler.EmergencyCancel)
	}

	addr := cfg.ServerAddress
	logging.Info("Server started", logging.Fields{constants.LogFieldAddr: addr, "version": version.Version})
	if err := router.Run(addr); err != nil {
		logging.Fatal("Failed to start server", err, nil)
	}
}
