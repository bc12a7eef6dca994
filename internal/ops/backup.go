package ops

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/codenameoperative/what-is-life-sub001/internal/save"
	"github.com/tidwall/gjson"
)

const (
	manifestName = "manifest.json"
	savesPrefix  = "saves/"

	// largest single save accepted from an archive
	maxEntryBytes = 16 << 20
)

// Manifest describes a backup archive.
type Manifest struct {
	CreatedAt     time.Time         `json:"created_at"`
	Version       string            `json:"version"`
	CurrentPlayer string            `json:"current_player,omitempty"`
	Digests       map[string]string `json:"digests"`
}

// Players returns the player ids in the archive in sorted order.
func (m Manifest) Players() []string {
	out := make([]string, 0, len(m.Digests))
	for id := range m.Digests {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Digest hashes every save in the manifest into one value so two archives or
// an archive and a live repository can be compared.
func (m Manifest) Digest() string {
	h := sha256.New()
	for _, id := range m.Players() {
		_, _ = io.WriteString(h, id)
		_, _ = io.WriteString(h, "\n")
		_, _ = io.WriteString(h, m.Digests[id])
		_, _ = io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil))
}

func digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Backup writes every save in repo to w as a gzipped tar archive.
func Backup(ctx context.Context, repo save.Repository, w io.Writer, version string) (Manifest, error) {
	entries, err := repo.List(ctx)
	if err != nil {
		return Manifest{}, fmt.Errorf("list saves: %w", err)
	}

	m := Manifest{
		CreatedAt: time.Now().UTC(),
		Version:   version,
		Digests:   map[string]string{},
	}
	if id, err := repo.CurrentPlayer(ctx); err == nil {
		m.CurrentPlayer = id
	} else if !errors.Is(err, save.ErrNotFound) {
		return Manifest{}, fmt.Errorf("current player: %w", err)
	}

	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return Manifest{}, err
		}
		blob, err := repo.Load(ctx, e.PlayerID)
		if err != nil {
			return Manifest{}, fmt.Errorf("load %s: %w", e.PlayerID, err)
		}
		if err := writeEntry(tw, savesPrefix+e.PlayerID+".json", e.UpdatedAt, blob); err != nil {
			return Manifest{}, err
		}
		m.Digests[e.PlayerID] = digest(blob)
	}

	mb, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return Manifest{}, err
	}
	if err := writeEntry(tw, manifestName, m.CreatedAt, mb); err != nil {
		return Manifest{}, err
	}
	if err := tw.Close(); err != nil {
		return Manifest{}, err
	}
	if err := gz.Close(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

func writeEntry(tw *tar.Writer, name string, mod time.Time, b []byte) error {
	if mod.IsZero() {
		mod = time.Now().UTC()
	}
	hdr := &tar.Header{
		Name:     name,
		Typeflag: tar.TypeReg,
		Mode:     0o644,
		Size:     int64(len(b)),
		ModTime:  mod,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := tw.Write(b)
	return err
}

// Archive is a backup read back into memory.
type Archive struct {
	Manifest Manifest
	Saves    map[string][]byte
}

// Read parses and verifies an archive: every save must be valid JSON and
// match the digest the manifest recorded for it.
func Read(r io.Reader) (Archive, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return Archive{}, err
	}
	defer gz.Close()

	a := Archive{Saves: map[string][]byte{}}
	var manifest []byte

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Archive{}, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		name, err := sanitizeArchiveRelPath(hdr.Name)
		if err != nil {
			return Archive{}, err
		}
		if hdr.Size > maxEntryBytes {
			return Archive{}, fmt.Errorf("archive entry too large: %s", name)
		}
		b, err := io.ReadAll(io.LimitReader(tr, maxEntryBytes+1))
		if err != nil {
			return Archive{}, err
		}

		switch {
		case name == manifestName:
			manifest = b
		case strings.HasPrefix(name, savesPrefix) && path.Ext(name) == ".json":
			id, err := save.ValidatePlayerID(strings.TrimSuffix(strings.TrimPrefix(name, savesPrefix), ".json"))
			if err != nil {
				return Archive{}, err
			}
			if !gjson.ValidBytes(b) {
				return Archive{}, fmt.Errorf("save %s is not valid JSON", id)
			}
			a.Saves[id] = b
		default:
			// Ignore unknown entries.
		}
	}

	if manifest == nil {
		return Archive{}, fmt.Errorf("archive has no %s", manifestName)
	}
	if err := json.Unmarshal(manifest, &a.Manifest); err != nil {
		return Archive{}, fmt.Errorf("decode manifest: %w", err)
	}
	if len(a.Manifest.Digests) != len(a.Saves) {
		return Archive{}, fmt.Errorf("manifest lists %d saves, archive holds %d", len(a.Manifest.Digests), len(a.Saves))
	}
	for id, b := range a.Saves {
		want, ok := a.Manifest.Digests[id]
		if !ok {
			return Archive{}, fmt.Errorf("save %s missing from manifest", id)
		}
		if got := digest(b); got != want {
			return Archive{}, fmt.Errorf("digest mismatch for %s: manifest=%s archive=%s", id, want, got)
		}
	}
	return a, nil
}

// Restore verifies an archive and writes its saves into repo. Saves already in
// repo that the archive does not mention are left alone.
func Restore(ctx context.Context, repo save.Repository, r io.Reader) (Manifest, error) {
	a, err := Read(r)
	if err != nil {
		return Manifest{}, err
	}
	for _, id := range a.Manifest.Players() {
		if err := repo.Save(ctx, id, a.Saves[id]); err != nil {
			return Manifest{}, fmt.Errorf("restore %s: %w", id, err)
		}
	}
	if a.Manifest.CurrentPlayer != "" {
		if err := repo.SetCurrentPlayer(ctx, a.Manifest.CurrentPlayer); err != nil {
			return Manifest{}, err
		}
	}
	return a.Manifest, nil
}

// BackupFile writes a backup of repo to archivePath, creating parent dirs.
func BackupFile(ctx context.Context, repo save.Repository, archivePath, version string) (Manifest, error) {
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	if archivePath == "" || archivePath == "." {
		return Manifest{}, fmt.Errorf("archivePath is required")
	}
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return Manifest{}, err
	}
	f, err := os.Create(archivePath)
	if err != nil {
		return Manifest{}, err
	}
	m, err := Backup(ctx, repo, f, version)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(archivePath)
		return Manifest{}, err
	}
	return m, nil
}

func RestoreFile(ctx context.Context, repo save.Repository, archivePath string) (Manifest, error) {
	f, err := os.Open(filepath.Clean(strings.TrimSpace(archivePath)))
	if err != nil {
		return Manifest{}, err
	}
	defer f.Close()
	return Restore(ctx, repo, f)
}

// RepoDigest hashes the saves currently in repo the same way Manifest.Digest does.
func RepoDigest(ctx context.Context, repo save.Repository) (string, error) {
	entries, err := repo.List(ctx)
	if err != nil {
		return "", err
	}
	m := Manifest{Digests: map[string]string{}}
	for _, e := range entries {
		b, err := repo.Load(ctx, e.PlayerID)
		if err != nil {
			return "", err
		}
		m.Digests[e.PlayerID] = digest(b)
	}
	return m.Digest(), nil
}

func sanitizeArchiveRelPath(name string) (string, error) {
	name = path.Clean(strings.TrimSpace(filepath.ToSlash(name)))
	if name == "." || name == "" {
		return "", fmt.Errorf("invalid archive entry path")
	}
	if path.IsAbs(name) {
		return "", fmt.Errorf("invalid absolute archive entry path: %s", name)
	}
	if strings.HasPrefix(name, "../") || name == ".." {
		return "", fmt.Errorf("invalid archive entry path traversal: %s", name)
	}
	return name, nil
}
