package constants

// Centralized constants for env keys, routes, JSON keys and log fields.
const (
	// Environment variable keys
	EnvConfigPath   = "MONSTER_ARENA_CONFIG"
	EnvDatabasePath = "MONSTER_ARENA_DB"

	DefaultConfigPath = "./monster_arena.yaml"

	// HTTP headers and content types
	HeaderContentType = "Content-Type"
	ContentTypeJSON   = "application/json"

	CacheControlHeader  = "Cache-Control"
	CacheControlNoCache = "no-cache, no-store, must-revalidate"
)

// Routes used by the backend router
const (
	RouteAPIPrefix    = "/api"
	RouteVersion      = "/version"
	RouteBattles      = "/battles"
	RouteBattleByID   = "/battles/:battleID"
	RouteBattleSocket = "/battles/:battleID/ws"
	RouteLeaderboard  = "/leaderboard"
	RouteStats        = "/participants/:participantID/stats"

	QueryParticipant   = "participant"
	QueryLimit         = "limit"
	ParamBattleID      = "battleID"
	ParamParticipantID = "participantID"
)

// Common JSON response keys
const (
	JSONKeyError   = "error"
	JSONKeyMessage = "message"
	JSONKeyDetails = "details"
	JSONKeyStatus  = "status"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest         = "Invalid request"
	ErrInvalidBattleID        = "Invalid battle ID"
	ErrBattleNotFound         = "Battle not found"
	ErrParticipantRequired    = "participant query parameter is required"
	ErrParticipantNotInGame   = "Participant not in this battle"
	ErrParticipantConnected   = "Participant already connected"
	ErrFailedCreateBattle     = "Failed to create battle"
	ErrFailedUpgradeSocket    = "Failed to upgrade connection"
	ErrBattleAlreadyFinished  = "Battle already finished"
	ErrFailedFetchBattle      = "Failed to fetch battle"
	ErrFailedFetchStats       = "Failed to fetch participant stats"
	ErrFailedFetchLeaderboard = "Failed to fetch leaderboard"
)

// Reasons attached to negative acknowledgements
const (
	ReasonNotSelecting    = "not accepting selections now"
	ReasonEmptySlot       = "slot is empty"
	ReasonBadMoveSlot     = "no such move slot"
	ReasonNoPP            = "move has no remaining uses"
	ReasonBadTarget       = "target is outside the field"
	ReasonUnknownItem     = "unknown item"
	ReasonItemNotHeld     = "item not in bag"
	ReasonNotWild         = "capture is only allowed in wild battles"
	ReasonCannotEnter     = "creature cannot enter"
	ReasonSlotOccupied    = "slot is not empty"
	ReasonNoGrant         = "move is not learnable"
	ReasonBadForgetSlot   = "no such move slot to forget"
	ReasonUnknownRequest  = "unknown request"
	ReasonNoTarget        = "no target"
	ReasonActorGone       = "actor left the field"
	ReasonAsleep          = "asleep"
	ReasonFrozen          = "frozen"
	ReasonParalyzed       = "paralyzed"
	ReasonFlinched        = "flinched"
	ReasonBurn            = "burn"
	ReasonPoison          = "poison"
	ReasonResolutionError = "resolution failed"
)

// Logging field names
const (
	LogFieldBattleID      = "battle_id"
	LogFieldParticipantID = "participant_id"
	LogFieldTeam          = "team"
	LogFieldSlot          = "slot"
	LogFieldPhase         = "phase"
	LogFieldTurn          = "turn"
	LogFieldAction        = "action"
	LogFieldRequest       = "request"
	LogFieldReason        = "reason"
	LogFieldWinner        = "winner"
	LogFieldSource        = "source"
	LogFieldKey           = "key"
	LogFieldAddr          = "addr"
)
