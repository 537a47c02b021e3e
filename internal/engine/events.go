package engine

// EventType names the notifications the engine emits after a transaction
// commits. Achievement and UI layers subscribe instead of being called
// inline from the summon path.
type EventType string

const (
	EventSummonCompleted    EventType = "summon.completed"
	EventPityTriggered      EventType = "pity.triggered"
	EventGuaranteeTriggered EventType = "guarantee.triggered"
)

// Event is one post-commit notification.
type Event struct {
	Type     EventType
	PlayerID string
	BannerID string
	// Record is the committed transaction for summon.completed; for
	// trigger events it is the same record the trigger occurred in.
	Record Record
	// RuleID is set for guarantee.triggered.
	RuleID string
}

// Listener receives events after commit, outside the engine lock. A
// listener must not assume it runs before the summon caller sees the
// result.
type Listener func(Event)
