package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"convertsave/internal/config"
	"convertsave/internal/daemon"
	"convertsave/internal/ipc"
	"convertsave/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(os.Getenv("CONVERTSAVE_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare data directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	d, err := daemon.New(cfg, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		os.Exit(1)
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(ctx, buildSocketPath(cfg), d, logger)
	if err != nil {
		logger.Error("start IPC server", logging.Error(err))
		os.Exit(1)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	logger.Info("convertsaved ready",
		logging.Int("pid", os.Getpid()),
		logging.String("socket", buildSocketPath(cfg)))

	<-ctx.Done()
	logger.Info("convertsaved shutting down")
}
