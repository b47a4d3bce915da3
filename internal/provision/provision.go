// Package provision downloads external tools into the app-data cache and
// verifies their layout.
package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"

	"convertsave/internal/archive"
	"convertsave/internal/config"
	"convertsave/internal/execute"
	"convertsave/internal/fileutil"
	"convertsave/internal/logging"
	"convertsave/internal/platform"
	"convertsave/internal/tools"
	"convertsave/internal/updates"
)

// Status identifies a phase of the install pipeline.
type Status string

const (
	StatusChecking    Status = "checking"
	StatusDownloading Status = "downloading"
	StatusExtracting  Status = "extracting"
	StatusInstalling  Status = "installing"
	StatusUpgrading   Status = "upgrading"
	StatusComplete    Status = "complete"
)

// Event is a single progress report sent to the UI shell.
type Event struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Events receives progress reports during an install.
type Events interface {
	Progress(Event)
}

// EventFunc adapts a function to the Events interface.
type EventFunc func(Event)

func (f EventFunc) Progress(ev Event) { f(ev) }

// ErrNotProvisionable marks tools that have no automated install path.
var ErrNotProvisionable = errors.New("tool cannot be installed automatically")

const (
	downloadTimeout   = 5 * time.Minute
	downloadUserAgent = "ConvertSave/1.0"
)

// Provisioner installs tools into the per-tool cache directory.
type Provisioner struct {
	cfg        *config.Config
	logger     *slog.Logger
	updates    *updates.Client
	httpClient *http.Client
	runner     execute.Runner
	events     Events

	// sourceFn is swapped by tests to avoid touching real release feeds.
	sourceFn func(ctx context.Context, id tools.ID) (source, error)
}

// Option adjusts a Provisioner.
type Option func(*Provisioner)

// WithEvents registers a progress sink.
func WithEvents(ev Events) Option {
	return func(p *Provisioner) { p.events = ev }
}

// WithHTTPClient substitutes the download client, primarily for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(p *Provisioner) { p.httpClient = hc }
}

// WithRunner substitutes the subprocess runner used for package-manager
// delegation.
func WithRunner(r execute.Runner) Option {
	return func(p *Provisioner) { p.runner = r }
}

func New(cfg *config.Config, logger *slog.Logger, upd *updates.Client, opts ...Option) *Provisioner {
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Provisioner{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "provision"),
		updates:    upd,
		httpClient: &http.Client{Timeout: downloadTimeout},
		runner:     execute.CommandRunner{},
	}
	p.sourceFn = p.lookupSource
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Install downloads (or delegates to the system package manager for) the tool
// and returns the path of the installed binary. A per-tool file lock
// serializes concurrent installs of the same tool.
func (p *Provisioner) Install(ctx context.Context, id tools.ID) (string, error) {
	if id == tools.Rename || id == tools.LibreOffice {
		return "", fmt.Errorf("%s: %w", id.DisplayName(), ErrNotProvisionable)
	}

	p.emit(StatusChecking, fmt.Sprintf("Checking for the latest %s...", id.DisplayName()))

	if platform.IsDarwin() && platform.BrewAvailable() && id.BrewPackage() != "" {
		return p.installWithBrew(ctx, id)
	}

	cacheDir := p.cfg.ToolCacheDir(string(id))
	if err := os.MkdirAll(filepath.Dir(cacheDir), 0o755); err != nil {
		return "", fmt.Errorf("create cache directory: %w", err)
	}

	lock := flock.New(cacheDir + ".lock")
	if err := lock.Lock(); err != nil {
		return "", fmt.Errorf("lock tool cache: %w", err)
	}
	defer lock.Unlock()

	src, err := p.sourceFn(ctx, id)
	if err != nil {
		return "", err
	}

	upgrading := false
	if _, statErr := os.Stat(cacheDir); statErr == nil {
		upgrading = true
		if err := os.RemoveAll(cacheDir); err != nil {
			return "", fmt.Errorf("remove previous installation: %w", err)
		}
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create tool cache: %w", err)
	}

	action := "Installing"
	if upgrading {
		action = "Upgrading"
	}
	p.logger.Info("installing tool",
		logging.String(logging.FieldTool, string(id)),
		logging.String("url", src.url),
		logging.Bool("upgrade", upgrading))

	p.emit(StatusDownloading, fmt.Sprintf("Downloading %s...", id.DisplayName()))
	archivePath, size, err := p.download(ctx, src.url)
	if err != nil {
		return "", err
	}
	defer os.Remove(archivePath)

	p.emit(StatusExtracting, fmt.Sprintf("%s %s (%s)...", action, id.DisplayName(), humanize.Bytes(uint64(size))))

	binPath := filepath.Join(cacheDir, id.CacheSubpath())
	if err := p.layOut(id, src, archivePath, cacheDir, binPath); err != nil {
		return "", err
	}

	if !platform.RegularFileExists(binPath) {
		return "", fmt.Errorf("%s missing after extraction; cache contains: %s",
			binPath, strings.Join(listDir(cacheDir), ", "))
	}

	p.emit(StatusComplete, fmt.Sprintf("%s is ready.", id.DisplayName()))
	return binPath, nil
}

func (p *Provisioner) installWithBrew(ctx context.Context, id tools.ID) (string, error) {
	pkg := id.BrewPackage()
	verb := "install"
	if _, installed := platform.BrewInstalled(pkg, id.ExecutableName()); installed {
		verb = "upgrade"
		p.emit(StatusUpgrading, fmt.Sprintf("Upgrading %s via Homebrew...", id.DisplayName()))
	} else {
		p.emit(StatusInstalling, fmt.Sprintf("Installing %s via Homebrew...", id.DisplayName()))
	}

	res, err := p.runner.Run(ctx, "brew", []string{verb, pkg}, nil)
	if err != nil {
		return "", fmt.Errorf("brew %s %s: %w", verb, pkg, err)
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("brew %s %s: %s", verb, pkg, strings.TrimSpace(res.Stderr))
	}

	path, ok := platform.BrewInstalled(pkg, id.ExecutableName())
	if !ok {
		return "", fmt.Errorf("brew reported success but %s was not found", id.ExecutableName())
	}
	p.emit(StatusComplete, fmt.Sprintf("%s is ready.", id.DisplayName()))
	return path, nil
}

// download stores the payload in the system temp directory. It must not
// touch the tool's cache directory: layOut extracts whole archives there
// and hoisting assumes only extracted entries are present.
func (p *Provisioner) download(ctx context.Context, url string) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("User-Agent", downloadUserAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", 0, fmt.Errorf("download %s: HTTP %d", url, resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "convertsave-download-*")
	if err != nil {
		return "", 0, fmt.Errorf("create temp archive: %w", err)
	}
	size, err := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if err != nil {
		os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("write archive: %w", err)
	}
	if closeErr != nil {
		os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("write archive: %w", closeErr)
	}
	return tmp.Name(), size, nil
}

// layOut places the downloaded payload into the cache directory according to
// the tool's layout. Most tools need a single executable pulled out of the
// archive; ImageMagick ships a whole directory tree.
func (p *Provisioner) layOut(id tools.ID, src source, archivePath, cacheDir, binPath string) error {
	switch {
	case src.kind == archive.Raw:
		return installRawBinary(archivePath, binPath)
	case id == tools.ImageMagick && src.kind == archive.SevenZip:
		if err := archive.ExtractAll7z(archivePath, cacheDir); err != nil {
			return err
		}
		return hoistBinaryDir(cacheDir, id.ExecutableName())
	case id == tools.ImageMagick:
		if err := archive.ExtractAllTar(archivePath, cacheDir, src.kind); err != nil {
			return err
		}
		return hoistVersionedRoot(cacheDir)
	case src.kind == archive.Zip:
		return archive.ExtractFileZip(archivePath, binPath, id.ExecutableName())
	default:
		return archive.ExtractFileTar(archivePath, binPath, id.ExecutableName(), src.kind)
	}
}

func installRawBinary(src, dest string) error {
	if err := fileutil.CopyFile(src, dest); err != nil {
		return err
	}
	return os.Chmod(dest, 0o755)
}

// hoistVersionedRoot flattens a tree like cache/ImageMagick-7.1.1/{bin,lib}
// into cache/{bin,lib}.
func hoistVersionedRoot(cacheDir string) error {
	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		return err
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return nil
	}
	root := filepath.Join(cacheDir, entries[0].Name())
	children, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	for _, child := range children {
		from := filepath.Join(root, child.Name())
		to := filepath.Join(cacheDir, child.Name())
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("hoist %s: %w", child.Name(), err)
		}
	}
	return os.Remove(root)
}

// hoistBinaryDir moves the directory containing the executable, plus its
// siblings, up to the cache root when the archive unpacked into a subfolder.
func hoistBinaryDir(cacheDir, executable string) error {
	if platform.RegularFileExists(filepath.Join(cacheDir, executable)) {
		return nil
	}
	var holder string
	err := filepath.WalkDir(cacheDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == executable {
			holder = filepath.Dir(path)
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return err
	}
	if holder == "" || holder == cacheDir {
		return nil
	}
	children, err := os.ReadDir(holder)
	if err != nil {
		return err
	}
	for _, child := range children {
		from := filepath.Join(holder, child.Name())
		to := filepath.Join(cacheDir, child.Name())
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("hoist %s: %w", child.Name(), err)
		}
	}
	return os.Remove(holder)
}

func listDir(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []string{err.Error()}
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func (p *Provisioner) emit(status Status, message string) {
	p.logger.Debug("progress",
		logging.String("status", string(status)),
		logging.String("message", message))
	if p.events != nil {
		p.events.Progress(Event{Status: status, Message: message})
	}
}
