package containersync

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
	"golang.org/x/sync/errgroup"
)

const backupTimeLayout = "20060102-150405"

type Report struct {
	Containers  []string
	FilesCopied int
	Backups     []string
}

// Syncer overwrites the manifest files in every tenant directory under ContainersDir.
type Syncer struct {
	manifest Manifest
	now      func() time.Time
	debounce time.Duration
	logger   *logger_i.Logger
}

type Option func(*Syncer)

func WithClock(now func() time.Time) Option {
	return func(s *Syncer) { s.now = now }
}

// WithDebounce sets how long Watch waits for writes to settle before syncing.
func WithDebounce(d time.Duration) Option {
	return func(s *Syncer) { s.debounce = d }
}

func NewSyncer(m Manifest, opts ...Option) *Syncer {
	s := &Syncer{
		manifest: m,
		now:      time.Now,
		debounce: 500 * time.Millisecond,
		logger:   logger_i.NewLogger("ContainerSync"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run copies every manifest file into every tenant. Source files are checked before any
// tenant is touched so a missing file never leaves tenants half synced.
func (s *Syncer) Run(ctx context.Context) (Report, error) {
	var report Report
	if err := s.manifest.Validate(); err != nil {
		return report, err
	}
	for _, f := range s.manifest.Files {
		info, err := os.Stat(filepath.Join(s.manifest.SourceDir, f))
		if err != nil {
			return report, fmt.Errorf("source file %s: %w", f, err)
		}
		if info.IsDir() {
			return report, fmt.Errorf("source file %s is a directory", f)
		}
	}

	tenants, err := s.tenants()
	if err != nil {
		return report, err
	}
	stamp := s.now().Format(backupTimeLayout)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	if s.manifest.Concurrency > 0 {
		g.SetLimit(s.manifest.Concurrency)
	}
	for _, tenant := range tenants {
		g.Go(func() error {
			copied, backups, err := s.syncTenant(gctx, tenant, stamp)
			mu.Lock()
			report.FilesCopied += copied
			report.Backups = append(report.Backups, backups...)
			mu.Unlock()
			if err != nil {
				return fmt.Errorf("container %s: %w", tenant, err)
			}
			return nil
		})
	}
	err = g.Wait()

	report.Containers = tenants
	sort.Strings(report.Backups)
	if err != nil {
		s.logger.Error("Sync failed", "error", err)
		return report, err
	}
	s.logger.Info("Sync complete", "containers", len(tenants), "files", report.FilesCopied, "backups", len(report.Backups))
	return report, nil
}

func (s *Syncer) tenants() ([]string, error) {
	entries, err := os.ReadDir(s.manifest.ContainersDir)
	if err != nil {
		return nil, fmt.Errorf("read containers dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

func (s *Syncer) syncTenant(ctx context.Context, tenant string, stamp string) (int, []string, error) {
	log := s.logger.With("container", tenant)
	var backups []string
	copied := 0
	for _, f := range s.manifest.Files {
		if err := ctx.Err(); err != nil {
			return copied, backups, err
		}
		src := filepath.Join(s.manifest.SourceDir, f)
		dst := filepath.Join(s.manifest.ContainersDir, tenant, f)

		if s.manifest.Backup {
			backup := dst + ".backup-" + stamp
			ok, err := backupFile(dst, backup)
			if err != nil {
				return copied, backups, fmt.Errorf("backup %s: %w", f, err)
			}
			if ok {
				backups = append(backups, backup)
			}
		}
		if err := copyFileAtomic(src, dst); err != nil {
			return copied, backups, fmt.Errorf("copy %s: %w", f, err)
		}
		copied++
		log.Debug("File synced", "file", f)
	}
	return copied, backups, nil
}

// backupFile reports false when there is nothing to back up.
func backupFile(path, backup string) (bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, copyFileAtomic(path, backup)
}

// copyFileAtomic writes to a temp file next to dst and renames it over dst.
func copyFileAtomic(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Rename(tmpName, dst)
}
