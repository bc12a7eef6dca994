package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/codenameoperative/what-is-life-sub001/internal/config"
	"github.com/codenameoperative/what-is-life-sub001/internal/notice"
	"github.com/codenameoperative/what-is-life-sub001/internal/ops"
	"github.com/codenameoperative/what-is-life-sub001/internal/save"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(2)
	}
	if err := run(context.Background(), os.Args[1], os.Args[2:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string, stdin io.Reader, stdout io.Writer) error {
	switch cmd {
	case "backup":
		return cmdBackup(ctx, args, stdout)
	case "restore":
		return cmdRestore(ctx, args, stdout)
	case "drill":
		return cmdDrill(ctx, args, stdout)
	case "list":
		return cmdList(ctx, args, stdout)
	case "inspect":
		return cmdInspect(ctx, args, stdout)
	case "export":
		return cmdExport(ctx, args, stdout)
	case "import":
		return cmdImport(ctx, args, stdin, stdout)
	default:
		printUsage(stdout)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// storageFlags binds the flags every command uses to find the saves.
type storageFlags struct {
	storage string
	dataDir string
	catalog string
}

func (s *storageFlags) bind(fs *flag.FlagSet) {
	env, _ := config.FromEnv()
	if env.Storage == "" {
		env.Storage = "file"
	}
	if env.DataDir == "" {
		env.DataDir = "data"
	}
	fs.StringVar(&s.storage, "storage", env.Storage, "storage kind: file, sqlite")
	fs.StringVar(&s.dataDir, "data-dir", env.DataDir, "path to data directory")
	fs.StringVar(&s.catalog, "catalog", env.CatalogPath, "catalog YAML (default: built in)")
}

func (s storageFlags) open(ctx context.Context) (save.Repository, error) {
	return save.Open(ctx, s.storage, s.dataDir)
}

func (s storageFlags) version() (string, error) {
	cfg, err := config.LoadOrDefault(s.catalog)
	if err != nil {
		return "", err
	}
	return cfg.Version, nil
}

func cmdBackup(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("backup", flag.ContinueOnError)
	var sf storageFlags
	sf.bind(fs)
	out := fs.String("out", "", "output archive path (.tar.gz)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		ts := time.Now().UTC().Format("20060102T150405Z")
		*out = filepath.Join("backups", "wil-"+ts+".tar.gz")
	}

	repo, err := sf.open(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()
	version, err := sf.version()
	if err != nil {
		return err
	}

	m, err := ops.BackupFile(ctx, repo, *out, version)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, *out)
	fmt.Fprintf(stdout, "saves: %d digest: %s\n", len(m.Digests), m.Digest())
	return nil
}

func cmdRestore(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	var sf storageFlags
	sf.bind(fs)
	archive := fs.String("archive", "", "input backup archive (.tar.gz)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *archive == "" {
		return fmt.Errorf("archive is required")
	}

	repo, err := sf.open(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	m, err := ops.RestoreFile(ctx, repo, *archive)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "restored %d saves (version %s)\n", len(m.Digests), m.Version)
	return nil
}

// cmdDrill backs up, restores into a scratch store and compares digests.
func cmdDrill(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("drill", flag.ContinueOnError)
	var sf storageFlags
	sf.bind(fs)
	workDir := fs.String("work-dir", os.TempDir(), "temporary workspace for drill artifacts")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := os.MkdirAll(*workDir, 0o755); err != nil {
		return err
	}

	repo, err := sf.open(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()
	version, err := sf.version()
	if err != nil {
		return err
	}

	ts := time.Now().UTC().Format("20060102T150405Z")
	archive := filepath.Join(*workDir, "wil-drill-"+ts+".tar.gz")
	m, err := ops.BackupFile(ctx, repo, archive, version)
	if err != nil {
		return err
	}

	scratch := save.NewMemoryRepo()
	if _, err := ops.RestoreFile(ctx, scratch, archive); err != nil {
		return err
	}
	srcDigest, err := ops.RepoDigest(ctx, repo)
	if err != nil {
		return err
	}
	restoreDigest, err := ops.RepoDigest(ctx, scratch)
	if err != nil {
		return err
	}
	if srcDigest != restoreDigest || srcDigest != m.Digest() {
		return fmt.Errorf("digest mismatch after restore: src=%s restored=%s manifest=%s", srcDigest, restoreDigest, m.Digest())
	}

	fmt.Fprintln(stdout, "backup:", archive)
	fmt.Fprintln(stdout, "digest:", srcDigest)
	return nil
}

func cmdList(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	var sf storageFlags
	sf.bind(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	repo, err := sf.open(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	entries, err := repo.List(ctx)
	if err != nil {
		return err
	}
	current, _ := repo.CurrentPlayer(ctx)

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tPLAYER\tNAME\tLEVEL\tWALLET\tBANK\tUPDATED")
	for _, e := range entries {
		mark := ""
		if e.PlayerID == current {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			mark, e.PlayerID, e.Summary.Username, e.Summary.Level,
			notice.FormatWTC(e.Summary.Wallet), notice.FormatWTC(e.Summary.Bank),
			e.UpdatedAt.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}

func cmdInspect(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	var sf storageFlags
	sf.bind(fs)
	player := fs.String("player", "", "player id (default: current player)")
	path := fs.String("path", "", "gjson path, e.g. profile.level or inventory.records.#.item_id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	repo, err := sf.open(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	id, err := resolvePlayer(ctx, repo, *player)
	if err != nil {
		return err
	}
	blob, err := repo.Load(ctx, id)
	if err != nil {
		return err
	}
	if *path == "" {
		_, err := stdout.Write(append(blob, '\n'))
		return err
	}
	v, ok := save.Peek(blob, *path)
	if !ok {
		return fmt.Errorf("%s not found in save %s", *path, id)
	}
	fmt.Fprintln(stdout, v)
	return nil
}

func cmdExport(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	var sf storageFlags
	sf.bind(fs)
	player := fs.String("player", "", "player id (default: current player)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	repo, err := sf.open(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()
	version, err := sf.version()
	if err != nil {
		return err
	}

	id, err := resolvePlayer(ctx, repo, *player)
	if err != nil {
		return err
	}
	blob, err := repo.Load(ctx, id)
	if err != nil {
		return err
	}
	enc, err := save.Encode(version, blob)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, enc)
	return nil
}

// cmdImport validates an exported blob and stores it as the player's save.
// The engine normalizes it on the next load.
func cmdImport(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	var sf storageFlags
	sf.bind(fs)
	player := fs.String("player", "", "player id (default: current player)")
	file := fs.String("file", "-", "file holding the exported blob, - for stdin")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var raw []byte
	var err error
	if *file == "-" {
		raw, err = io.ReadAll(io.LimitReader(stdin, 16<<20))
	} else {
		raw, err = os.ReadFile(*file)
	}
	if err != nil {
		return err
	}

	version, err := sf.version()
	if err != nil {
		return err
	}
	env, err := save.Decode(strings.TrimSpace(string(raw)), version)
	if err != nil {
		return err
	}

	repo, err := sf.open(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()
	id, err := resolvePlayer(ctx, repo, *player)
	if err != nil {
		return err
	}
	if err := repo.Save(ctx, id, env.State); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "imported save for %s (version %s)\n", id, env.Version)
	return nil
}

func resolvePlayer(ctx context.Context, repo save.Repository, id string) (string, error) {
	if strings.TrimSpace(id) != "" {
		return save.ValidatePlayerID(id)
	}
	id, err := repo.CurrentPlayer(ctx)
	if err != nil {
		return "", fmt.Errorf("no --player given and no current player: %w", err)
	}
	return id, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage:")
	fmt.Fprintln(w, "  wil-ops backup  --data-dir data --out backups/backup.tar.gz")
	fmt.Fprintln(w, "  wil-ops restore --data-dir data --archive backups/backup.tar.gz")
	fmt.Fprintln(w, "  wil-ops drill   --data-dir data --work-dir /tmp")
	fmt.Fprintln(w, "  wil-ops list    --data-dir data")
	fmt.Fprintln(w, "  wil-ops inspect --data-dir data [--player id] [--path profile.level]")
	fmt.Fprintln(w, "  wil-ops export  --data-dir data [--player id]")
	fmt.Fprintln(w, "  wil-ops import  --data-dir data [--player id] [--file blob.txt]")
	fmt.Fprintln(w, "all commands accept --storage file|sqlite and --catalog path.yml")
}
