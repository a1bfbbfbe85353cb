package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bacoco/la-famille-agentui/internal/health"
	"github.com/bacoco/la-famille-agentui/internal/presets"
	"github.com/bacoco/la-famille-agentui/internal/proxy"
	"github.com/bacoco/la-famille-agentui/internal/transport"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the proxy server and background health monitor",
	RunE:  runServe,
}

func writePIDFile(dataDir string) (string, error) {
	pidPath := filepath.Join(dataDir, "famille.pid")
	pid := os.Getpid()
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return "", fmt.Errorf("write PID file: %w", err)
	}
	return pidPath, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	st, err := openStores(cfg)
	if err != nil {
		return err
	}

	pidPath, err := writePIDFile(cfg.DataDir)
	if err != nil {
		return err
	}
	defer os.Remove(pidPath)

	if added := st.agents.SeedPresets(presets.Agents()); added > 0 {
		slog.Info("seeded preset agents", "count", added)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Health monitor
	interval := time.Duration(cfg.Health.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	monitor := health.New(st.backends, transport.New(), interval, cfg.Health.MaxConcurrentProbes)
	go monitor.Run(ctx)

	// Forwarding proxy
	httpServer := &http.Server{
		Addr:    cfg.HTTP.Listen,
		Handler: proxy.NewServer(),
	}
	go func() {
		slog.Info("proxy server started", "listen", cfg.HTTP.Listen)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("proxy server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()

	slog.Info("famille started",
		"data_dir", cfg.DataDir,
		"log_level", cfg.LogLevel,
		"health_interval", interval,
		"pid_file", pidPath,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	slog.Info("shutting down", "signal", sig)
	return nil
}
