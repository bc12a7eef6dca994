package wallet

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount turns player input into a whole amount. "all"/"max" mean the
// full available balance and "half" means half of it, floored.
func ParseAmount(input string, available int64) (int64, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "_", "")
	if s == "" {
		return 0, ErrInvalidAmount
	}

	switch s {
	case "all", "max":
		if available < 0 {
			return 0, nil
		}
		return available, nil
	case "half":
		if available < 0 {
			return 0, nil
		}
		return available / 2, nil
	}

	mult := 1.0
	switch {
	case strings.HasSuffix(s, "k"):
		mult = 1e3
		s = strings.TrimSuffix(s, "k")
	case strings.HasSuffix(s, "m"):
		mult = 1e6
		s = strings.TrimSuffix(s, "m")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	f *= mult
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt64/2 {
		return 0, ErrInvalidAmount
	}
	return int64(math.Floor(f)), nil
}
