package save

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Open returns the repository for a storage kind: "file", "sqlite" or "memory".
func Open(ctx context.Context, kind, dataDir string) (Repository, error) {
	switch kind {
	case "memory":
		return NewMemoryRepo(), nil
	case "sqlite":
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, err
		}
		return OpenSQLite(ctx, filepath.Join(dataDir, "saves.db"))
	case "file", "":
		return NewFileRepo(dataDir)
	default:
		return nil, fmt.Errorf("unsupported storage %q", kind)
	}
}
