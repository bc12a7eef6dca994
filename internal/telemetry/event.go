package telemetry

import "time"

type EventType string

const (
	EventActivity       EventType = "activity"
	EventLootCollected  EventType = "loot_collected"
	EventFined          EventType = "fined"
	EventToolBroke      EventType = "tool_broke"
	EventTransfer       EventType = "transfer"
	EventPurchase       EventType = "purchase"
	EventSale           EventType = "sale"
	EventItemUsed       EventType = "item_used"
	EventJobApplied     EventType = "job_applied"
	EventShiftWorked    EventType = "shift_worked"
	EventJobQuit        EventType = "job_quit"
	EventPlanted        EventType = "planted"
	EventHarvested      EventType = "harvested"
	EventLevelUp        EventType = "level_up"
	EventAchievement    EventType = "achievement_unlocked"
	EventShopRotated    EventType = "shop_rotated"
	EventSaveFailed     EventType = "save_failed"
	EventStateImported  EventType = "state_imported"
	EventStateReset     EventType = "state_reset"
	EventTitleEquipped  EventType = "title_equipped"
	EventProfileRenamed EventType = "profile_renamed"
)

type Event struct {
	ID        int       `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}
