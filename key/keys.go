// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount represents the total cardinality of the application configuration schema.
const DefinedFieldsCount = 24

// Platform API - these keys govern communication with the e-learning backend.
const (
	APIBaseURL       = "api.base_url"
	APIClientTimeout = "api.client_timeout"
)

// Media Playback - these keys maintain the state and configuration for external video players.
const (
	Player                     = "player.default"
	PlayerSeekStep             = "player.seek_step"
	PlayerCompletionPercentage = "player.completion_percentage"
)

// State Coordination - these keys tune the playback state reconciliation core.
const (
	CoordinatorTimeTolerance      = "coordinator.time_tolerance"
	CoordinatorDuplicateThreshold = "coordinator.duplicate_threshold"
)

// Clip Selection - these keys configure in/out point and transcript selection behavior.
const (
	SelectionThrottle = "selection.throttle"
)

// Transcripts - these keys govern transcript retrieval and caching.
const (
	TranscriptFetch = "transcript.fetch"
)

// Checkpoints - these keys configure instructor checkpoint interactions.
const (
	CheckpointsEnable     = "checkpoints.enable"
	CheckpointsLuaGraders = "checkpoints.lua_graders"
)

// Agent Integration - these keys manage the AI assistant session controller.
const (
	AgentEnable        = "agent.enable"
	AgentQueueFailures = "agent.queue_failures"
)

// History Tracking - these keys configure the persistence of watch progress.
const (
	HistorySaveOnWatch = "history.save_on_watch"
)

// Search Interaction - these keys define the UI/UX parameters for course discovery.
const (
	SearchShowQuerySuggestions = "search.show_query_suggestions"
)

// Terminal User Interface (TUI) - these keys define the primary interactive environment's styling and logic.
const (
	TUIItemSpacing        = "tui.item_spacing"
	TUISearchPromptString = "tui.search_prompt"
	TUIShowTimestamps     = "tui.show_timestamps"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
