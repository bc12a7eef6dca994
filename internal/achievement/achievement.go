package achievement

import (
	"fmt"

	"github.com/codenameoperative/what-is-life-sub001/internal/catalog"
)

// Status is one row of the achievement board.
type Status struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Reward      catalog.Reward `json:"reward"`
	Progress    Progress       `json:"progress"`
	Unlocked    bool           `json:"unlocked"`
}

// Newly returns the definitions whose requirement is met and which are not yet unlocked,
// in catalog order.
func Newly(defs []catalog.Achievement, unlocked func(id string) bool, eval Evaluator) ([]catalog.Achievement, error) {
	var out []catalog.Achievement
	for _, a := range defs {
		if unlocked(a.ID) {
			continue
		}
		p, err := eval.Evaluate(a.Requirement)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", a.ID, err)
		}
		if p.Complete {
			out = append(out, a)
		}
	}
	return out, nil
}

// Board reports progress on every definition.
func Board(defs []catalog.Achievement, unlocked func(id string) bool, eval Evaluator) ([]Status, error) {
	out := make([]Status, 0, len(defs))
	for _, a := range defs {
		p, err := eval.Evaluate(a.Requirement)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", a.ID, err)
		}
		done := unlocked(a.ID)
		if done {
			p.Complete = true
			if p.Current < p.Required {
				p.Current = p.Required
			}
		}
		out = append(out, Status{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Reward:      a.Reward,
			Progress:    p,
			Unlocked:    done,
		})
	}
	return out, nil
}
