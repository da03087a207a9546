package model

import (
	"time"

	"gorm.io/datatypes"
)

// EventType enumerates every fact kind the event log accepts.
type EventType = string

const (
	EventNpcKilled              EventType = "NpcKilled"
	EventNpcMet                 EventType = "NpcMet"
	EventNpcRelationshipChanged EventType = "NpcRelationshipChanged"
	EventQuestStarted           EventType = "QuestStarted"
	EventQuestCompleted         EventType = "QuestCompleted"
	EventQuestFailed            EventType = "QuestFailed"
	EventQuestStateChanged      EventType = "QuestStateChanged"
	EventItemGained             EventType = "ItemGained"
	EventItemLost               EventType = "ItemLost"
	EventItemUsed               EventType = "ItemUsed"
	EventItemEquipped           EventType = "ItemEquipped"
	EventItemUnequipped         EventType = "ItemUnequipped"
	EventLocationDiscovered     EventType = "LocationDiscovered"
	EventLocationDestroyed      EventType = "LocationDestroyed"
	EventLocationEntered        EventType = "LocationEntered"
	EventSceneEntered           EventType = "SceneEntered"
	EventDialogChoiceMade       EventType = "DialogChoiceMade"
	EventCombatStarted          EventType = "CombatStarted"
	EventCombatEnded            EventType = "CombatEnded"
	EventPcLeveledUp            EventType = "PcLeveledUp"
	EventPcDamaged              EventType = "PcDamaged"
	EventPcHealed               EventType = "PcHealed"
	EventPcDied                 EventType = "PcDied"
	EventWorldFlagChanged       EventType = "WorldFlagChanged"
	EventBranchCreated          EventType = "BranchCreated"
	EventCustom                 EventType = "Custom"
)

var eventTypes = map[string]struct{}{
	EventNpcKilled: {}, EventNpcMet: {}, EventNpcRelationshipChanged: {},
	EventQuestStarted: {}, EventQuestCompleted: {}, EventQuestFailed: {},
	EventQuestStateChanged: {}, EventItemGained: {}, EventItemLost: {},
	EventItemUsed: {}, EventItemEquipped: {}, EventItemUnequipped: {},
	EventLocationDiscovered: {}, EventLocationDestroyed: {}, EventLocationEntered: {},
	EventSceneEntered: {}, EventDialogChoiceMade: {}, EventCombatStarted: {},
	EventCombatEnded: {}, EventPcLeveledUp: {}, EventPcDamaged: {},
	EventPcHealed: {}, EventPcDied: {}, EventWorldFlagChanged: {},
	EventBranchCreated: {}, EventCustom: {},
}

// ValidEventType reports whether t is one of the known event types.
func ValidEventType(t string) bool {
	_, ok := eventTypes[t]
	return ok
}

// Event is an immutable fact on an (instance, branch) timeline.
// Sequence starts at 1 and is gapless per branch; BranchCreated events
// sit at sequence 0.
type Event struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	InstanceID int64          `gorm:"uniqueIndex:idx_event_seq;index:idx_event_instance;not null" json:"instanceId"`
	BranchID   string         `gorm:"uniqueIndex:idx_event_seq;size:100;not null" json:"branchId"`
	Sequence   int64          `gorm:"uniqueIndex:idx_event_seq;not null" json:"sequence"`
	Type       string         `gorm:"index:idx_event_type;size:32;not null" json:"type"`
	Payload    datatypes.JSON `json:"payload"`
	CreatedAt  time.Time      `gorm:"autoCreateTime:milli" json:"createdAt"`
}

// ---- payloads the server itself emits ----

// ItemLocation names one side of an inventory transfer.
type ItemLocation struct {
	Type       string `json:"type"` // pc | party | world
	ID         string `json:"id,omitempty"`
	LocationID string `json:"locationId,omitempty"`
}

// BranchCreatedPayload records the provenance of a forked branch.
type BranchCreatedPayload struct {
	ParentBranchID   string `json:"parentBranchId"`
	ParentInstanceID int64  `json:"parentInstanceId"`
	FromSnapshotID   *int64 `json:"fromSnapshotId,omitempty"`
}

// ItemMovedPayload is shared by ItemLost (From set) and ItemGained (To set).
type ItemMovedPayload struct {
	InstanceItemID string        `json:"instanceItemId"`
	From           *ItemLocation `json:"from,omitempty"`
	To             *ItemLocation `json:"to,omitempty"`
	Quantity       int           `json:"quantity"`
}

// ItemUsedPayload records a consumable use.
type ItemUsedPayload struct {
	InstanceItemID string `json:"instanceItemId"`
	UsedByPcID     string `json:"usedByPcId"`
	TargetID       string `json:"targetId,omitempty"`
	Quantity       int    `json:"quantity"`
}
