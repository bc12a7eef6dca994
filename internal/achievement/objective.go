package achievement

import (
	"fmt"

	"github.com/codenameoperative/what-is-life-sub001/internal/catalog"
)

// Snapshot is the slice of game state requirements are checked against.
type Snapshot struct {
	Level       int
	TotalEarned int64
	TotalSpent  int64
	NetWorth    int64
	Activity    map[string]int64
	Items       map[string]int
	Unlocked    int
}

// Progress tracks how close a requirement is to being met.
type Progress struct {
	Current  int64 `json:"current"`
	Required int64 `json:"required"`
	Complete bool  `json:"complete"`
}

// Evaluator checks requirements.
type Evaluator interface {
	Evaluate(req catalog.Requirement) (Progress, error)
}

// SnapshotEvaluator evaluates against a fixed snapshot.
type SnapshotEvaluator struct {
	S Snapshot
}

func (e SnapshotEvaluator) Evaluate(req catalog.Requirement) (Progress, error) {
	var current int64

	switch req.Kind {
	case catalog.ReqActivityCount:
		current = e.S.Activity[req.Activity]
	case catalog.ReqLevel:
		current = int64(e.S.Level)
	case catalog.ReqTotalEarned:
		current = e.S.TotalEarned
	case catalog.ReqTotalSpent:
		current = e.S.TotalSpent
	case catalog.ReqNetWorth:
		current = e.S.NetWorth
	case catalog.ReqItemCount:
		current = int64(e.S.Items[req.Item])
	case catalog.ReqAchievements:
		current = int64(e.S.Unlocked)
	default:
		return Progress{}, fmt.Errorf("unknown requirement kind: %s", req.Kind)
	}

	return Progress{
		Current:  current,
		Required: req.Count,
		Complete: current >= req.Count,
	}, nil
}
