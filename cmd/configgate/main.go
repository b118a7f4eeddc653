package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"configgate/internal/config"
	"configgate/internal/logging"
	"configgate/internal/metrics"
	"configgate/internal/web"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logging.Init("configgate", nil)
	if err := run(os.Args[1:], serveHTTP); err != nil {
		fatalf("configgate: %v", err)
	}
}

var serveHTTP = func(srv *http.Server) error { return srv.ListenAndServe() }
var fatalf = func(format string, args ...any) {
	slog.Error("fatal", "error", fmt.Sprintf(format, args...))
	os.Exit(1)
}
var newServer = web.NewServer

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadConfig(path)
	}
	cfg := config.Default()
	config.ApplyEnv(&cfg)
	return cfg, cfg.Validate()
}

func run(args []string, serve func(*http.Server) error) error {
	fs := flag.NewFlagSet("configgate", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config JSON or YAML")
	envFile := fs.String("env-file", "", "dotenv file with CONFIGGATE_* overrides")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := config.LoadDotEnv(*envFile); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	settings, err := cfg.Settings()
	if err != nil {
		return err
	}
	metrics.ArtifactBytes.Set(float64(settings.ArtifactSize()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	srv := newServer(settings, slog.Default())
	mainSrv := &http.Server{
		Addr:              cfg.Service.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errCh <- serve(mainSrv)
	}()

	var adminSrv *http.Server
	if cfg.Service.AdminAddr != "" && cfg.Service.AdminAddr != cfg.Service.HTTPAddr {
		adminSrv = &http.Server{
			Addr:              cfg.Service.AdminAddr,
			Handler:           web.NewAdminMux(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh <- serve(adminSrv)
		}()
		slog.Info("admin listening", "addr", cfg.Service.AdminAddr)
	}

	slog.Info("configgate listening", "addr", cfg.Service.HTTPAddr, "artifact_bytes", settings.ArtifactSize())
	// Either listener exiting, or a signal, stops both.
	var runErr error
	select {
	case err := <-errCh:
		runErr = listenerErr(err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = mainSrv.Shutdown(shutdownCtx)
	if adminSrv != nil {
		_ = adminSrv.Shutdown(shutdownCtx)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if runErr == nil {
			runErr = listenerErr(err)
		}
	}
	return runErr
}

func listenerErr(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
