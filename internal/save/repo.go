package save

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

var (
	ErrNotFound        = errors.New("save not found")
	ErrInvalidPlayerID = errors.New("invalid player id")
)

// Repository stores opaque state blobs keyed by player id and remembers the
// player this device plays as.
type Repository interface {
	Load(ctx context.Context, playerID string) ([]byte, error)
	Save(ctx context.Context, playerID string, blob []byte) error
	Delete(ctx context.Context, playerID string) error
	List(ctx context.Context) ([]Entry, error)
	CurrentPlayer(ctx context.Context) (string, error)
	SetCurrentPlayer(ctx context.Context, playerID string) error
	Close() error
}

// Entry describes one stored save.
type Entry struct {
	PlayerID  string    `json:"player_id"`
	UpdatedAt time.Time `json:"updated_at"`
	Size      int       `json:"size"`
	Summary   Summary   `json:"summary"`
}

// Summary is read straight out of the blob without decoding the whole state.
type Summary struct {
	Username string `json:"username"`
	Level    int    `json:"level"`
	Wallet   int64  `json:"wallet"`
	Bank     int64  `json:"bank"`
}

func Summarize(blob []byte) Summary {
	r := gjson.GetManyBytes(blob, "profile.username", "profile.level", "balances.wallet", "balances.bank")
	return Summary{
		Username: r[0].String(),
		Level:    int(r[1].Int()),
		Wallet:   r[2].Int(),
		Bank:     r[3].Int(),
	}
}

// Peek returns the value at a gjson path inside a blob.
func Peek(blob []byte, path string) (string, bool) {
	r := gjson.GetBytes(blob, path)
	if !r.Exists() {
		return "", false
	}
	return r.String(), true
}

func NewPlayerID() string {
	return uuid.NewString()
}

// ValidatePlayerID accepts UUIDs and short [A-Za-z0-9_-] handles.
func ValidatePlayerID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidPlayerID)
	}
	if u, err := uuid.Parse(id); err == nil {
		return u.String(), nil
	}
	if len(id) > 64 {
		return "", fmt.Errorf("%w: too long", ErrInvalidPlayerID)
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidPlayerID, id)
		}
	}
	return id, nil
}

// EnsurePlayer returns the remembered player, creating and remembering a fresh id on first start.
func EnsurePlayer(ctx context.Context, r Repository) (string, bool, error) {
	id, err := r.CurrentPlayer(ctx)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", false, err
	}
	id = NewPlayerID()
	if err := r.SetCurrentPlayer(ctx, id); err != nil {
		return "", false, err
	}
	return id, true, nil
}
