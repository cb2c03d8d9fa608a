package constant

// Error codes sent to clients in error events and RPC results.
const (
	ErrCodeInvalidPayload     = "invalid-payload"
	ErrCodeChainNotFound      = "chain-not-found"
	ErrCodeRunNotFound        = "run-not-found"
	ErrCodeUnknownCommand     = "unknown-command"
	ErrCodeGenerationError    = "generation-error"
	ErrCodeGenerationTimeout  = "generation-timeout"
	ErrCodePersistenceError   = "persistence-error"
	ErrCodeBiasDetectionError = "bias-detection-error"
	ErrCodeInternalError      = "internal-error"
)

// Commands accepted on the session socket.
const (
	CommandChainCreate = "chain.create"
	CommandChainGet    = "chain.get"
	CommandRunExecute  = "run.execute"
	CommandAnalyze     = "analyze"
)

// Outbound session event types.
const (
	EventStream       = "stream"
	EventComplete     = "complete"
	EventStepComplete = "stepComplete"
	EventCacheHit     = "cache-hit"
	EventBiases       = "biases"
	EventError        = "error"
	EventRpcResponse  = "rpc-response"
)

type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusDone    RunStatus = "done"
	RunStatusFailed  RunStatus = "failed"
	RunStatusAborted RunStatus = "aborted"
)

// Run lifecycle audit events published on NATS.
const (
	AuditRunStarted = "RUN_STARTED"
	AuditRunDone    = "RUN_DONE"
	AuditRunFailed  = "RUN_FAILED"
	AuditRunAborted = "RUN_ABORTED"
)

const (
	SessionRelayChannel = "riff_session_events"
	MinAnalyzeTextRunes = 10
)
