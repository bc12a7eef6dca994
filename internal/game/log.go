package game

import (
	"encoding/json"
	"time"
)

func (e Engine) logJSON(m map[string]any) {
	if e.Logger == nil {
		return
	}
	if _, ok := m["ts"]; !ok {
		m["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	}
	b, err := json.Marshal(m)
	if err != nil {
		e.Logger.Printf("game log marshal error: %v", err)
		return
	}
	e.Logger.Print(string(b))
}
