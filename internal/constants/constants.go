package constants

// Centralized constants for env keys, headers and route paths.
const (
	// Environment variable keys
	EnvConfigPath = "ARENA_CONFIG"
	EnvDBPath     = "ARENA_DB"
	EnvLogLevel   = "ARENA_LOG_LEVEL"

	// HTTP headers and content types
	HeaderPlayerID    = "X-Player-ID"
	HeaderContentType = "Content-Type"

	ContentTypeJSON = "application/json"
)

// Routes used by the backend router
const (
	RouteAPIPrefix = "/api"

	RouteQueueJoin  = "/queue/join"
	RouteQueueLeave = "/queue/leave"

	RouteChallenges      = "/challenges"
	RouteChallengeAccept = "/challenges/accept"
	RouteChallengeReject = "/challenges/reject"

	RouteBattleByID    = "/battles/:battleID"
	RouteBattleActions = "/battles/:battleID/actions"
	RouteBattleAttack  = "/battles/:battleID/attack"
	RouteBattleEndTurn = "/battles/:battleID/end-turn"
	RouteBattleForfeit = "/battles/:battleID/forfeit"

	RouteCharacterByID    = "/characters/:characterID"
	RouteCharacterDerived = "/characters/:characterID/combat-stats"
	RouteCharacterSpend   = "/characters/:characterID/spend-points"

	RouteTopWins = "/top-wins"
	RouteVersion = "/version"

	RouteAdminTimeouts     = "/admin/timeouts"
	RouteAdminCancelBattle = "/admin/battles/:battleID/cancel"
)

// Common JSON response keys
const (
	JSONKeyError   = "error"
	JSONKeyMessage = "message"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest  = "Invalid request"
	ErrInvalidBattleID = "Invalid battle ID"
	ErrInvalidCharID   = "Invalid character ID"
	ErrAuthRequired    = "Caller identity required"

	ErrFailedFetchTopWins = "Failed to fetch top players"

	ErrNotCharacterOwner = "Caller does not own this character"
)

// Logging field names
const (
	LogFieldBattleID = "battle_id"
	LogFieldCharID   = "character_id"
	LogFieldAddr     = "addr"
	LogFieldEvent    = "event"
	LogFieldReason   = "reason"
	LogFieldWinner   = "winner"
)
