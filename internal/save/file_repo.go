package save

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	savesDir    = "saves"
	currentFile = "current"
)

// FileRepo keeps one JSON file per player under dataDir/saves and the current
// player id in dataDir/current.
type FileRepo struct {
	mu  sync.RWMutex
	dir string
}

func NewFileRepo(dataDir string) (*FileRepo, error) {
	if strings.TrimSpace(dataDir) == "" {
		return nil, fmt.Errorf("data dir is required")
	}
	if err := os.MkdirAll(filepath.Join(dataDir, savesDir), 0o755); err != nil {
		return nil, err
	}
	return &FileRepo{dir: dataDir}, nil
}

func (r *FileRepo) pathFor(playerID string) (string, string, error) {
	id, err := ValidatePlayerID(playerID)
	if err != nil {
		return "", "", err
	}
	return id, filepath.Join(r.dir, savesDir, id+".json"), nil
}

// writeFileAtomic writes through a temp file in the same directory and renames it into place.
func writeFileAtomic(path string, b []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		_ = os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}

func (r *FileRepo) Load(ctx context.Context, playerID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, path, err := r.pathFor(playerID)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return b, nil
}

func (r *FileRepo) Save(ctx context.Context, playerID string, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, path, err := r.pathFor(playerID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return writeFileAtomic(path, blob)
}

func (r *FileRepo) Delete(ctx context.Context, playerID string) error {
	id, path, err := r.pathFor(playerID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return err
	}
	return nil
}

func (r *FileRepo) List(ctx context.Context) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(r.dir, savesDir))
	if err != nil {
		return nil, err
	}
	out := []Entry{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		b, err := os.ReadFile(filepath.Join(r.dir, savesDir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{
			PlayerID:  strings.TrimSuffix(name, ".json"),
			UpdatedAt: info.ModTime().UTC(),
			Size:      len(b),
			Summary:   Summarize(b),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

func (r *FileRepo) CurrentPlayer(ctx context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, err := os.ReadFile(filepath.Join(r.dir, currentFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: no current player", ErrNotFound)
		}
		return "", err
	}
	return ValidatePlayerID(string(bytes.TrimSpace(b)))
}

func (r *FileRepo) SetCurrentPlayer(ctx context.Context, playerID string) error {
	id, err := ValidatePlayerID(playerID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return writeFileAtomic(filepath.Join(r.dir, currentFile), []byte(id+"\n"))
}

func (r *FileRepo) Close() error { return nil }
