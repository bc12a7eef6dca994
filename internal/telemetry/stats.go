package telemetry

import (
	"encoding/json"
	"time"
)

type Stats struct {
	Period         string            `json:"period"`
	EventCounts    map[EventType]int `json:"event_counts"`
	ActivityRuns   map[string]int    `json:"activity_runs"`
	LootByItem     map[string]int    `json:"loot_by_item"`
	WTCEarned      int64             `json:"wtc_earned"`
	WTCFined       int64             `json:"wtc_fined"`
	WTCSpent       int64             `json:"wtc_spent"`
	ToolsBroken    int               `json:"tools_broken"`
	LevelUps       int               `json:"level_ups"`
	Achievements   int               `json:"achievements"`
	SaveFailures   int               `json:"save_failures"`
	EarnedPerRun   float64           `json:"earned_per_run"`
	ActivitiesSeen int               `json:"activities_seen"`
}

func metaInt(m EventMetadata, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// CalculateStats computes balance stats from events
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Period:       since.Format("2006-01-02"),
		EventCounts:  make(map[EventType]int),
		ActivityRuns: make(map[string]int),
		LootByItem:   make(map[string]int),
	}

	for _, event := range events {
		stats.EventCounts[event.Type]++

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			continue
		}

		switch event.Type {
		case EventActivity:
			if id, ok := metadata["activity"].(string); ok {
				stats.ActivityRuns[id]++
			}
		case EventLootCollected:
			if item, ok := metadata["item"].(string); ok && item != "" {
				stats.LootByItem[item] += int(metaInt(metadata, "qty"))
			}
			stats.WTCEarned += metaInt(metadata, "wtc")
		case EventShiftWorked, EventSale:
			stats.WTCEarned += metaInt(metadata, "wtc")
		case EventFined:
			stats.WTCFined += metaInt(metadata, "wtc")
		case EventPurchase:
			stats.WTCSpent += metaInt(metadata, "wtc")
		case EventToolBroke:
			stats.ToolsBroken++
		case EventLevelUp:
			stats.LevelUps++
		case EventAchievement:
			stats.Achievements++
		case EventSaveFailed:
			stats.SaveFailures++
		}
	}

	for _, n := range stats.ActivityRuns {
		stats.ActivitiesSeen += n
	}
	if stats.ActivitiesSeen > 0 {
		stats.EarnedPerRun = float64(stats.WTCEarned) / float64(stats.ActivitiesSeen)
	}

	return stats, nil
}
