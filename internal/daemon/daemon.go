// Package daemon wires the conversion service together and owns runtime
// state shared across IPC connections.
package daemon

import (
	"fmt"
	"log/slog"
	"os"

	"convertsave/internal/api"
	"convertsave/internal/config"
	"convertsave/internal/history"
	"convertsave/internal/license"
	"convertsave/internal/logging"
	"convertsave/internal/provision"
	"convertsave/internal/resolver"
	"convertsave/internal/updates"
)

// Daemon hosts the conversion service for IPC clients.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	svc    *api.Service
	events *EventBuffer
	store  *history.Store
}

// New constructs a fully wired daemon.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("daemon requires configuration")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	store, err := history.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}

	events := NewEventBuffer()
	upd := updates.New(logger)
	svc := api.New(api.Deps{
		Config:      cfg,
		Logger:      logger,
		Resolver:    resolver.New(cfg, logger),
		Provisioner: provision.New(cfg, logger, upd, provision.WithEvents(events)),
		Updates:     upd,
		License:     license.NewManager(cfg, logger),
		History:     store,
	})

	return &Daemon{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "daemon"),
		svc:    svc,
		events: events,
		store:  store,
	}, nil
}

// Service returns the command surface.
func (d *Daemon) Service() *api.Service { return d.svc }

// Events returns buffered progress events with sequence numbers greater
// than after.
func (d *Daemon) Events(after int64) ([]SeqEvent, int64) {
	return d.events.Since(after)
}

// Status describes the running daemon.
type Status struct {
	PID           int
	SocketPath    string
	DataDir       string
	HistoryDBPath string
}

// Status reports the daemon's runtime details.
func (d *Daemon) Status() Status {
	return Status{
		PID:           os.Getpid(),
		SocketPath:    d.cfg.SocketPath(),
		DataDir:       d.cfg.AppDataDir(),
		HistoryDBPath: d.cfg.HistoryDBPath(),
	}
}

// Close releases daemon resources.
func (d *Daemon) Close() {
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			d.logger.Warn("closing history store", logging.Error(err))
		}
	}
}
