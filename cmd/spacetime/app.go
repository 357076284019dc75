package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/OCAP2/spacetime/internal/config"
	"github.com/OCAP2/spacetime/internal/database"
	"github.com/OCAP2/spacetime/internal/dispatcher"
	"github.com/OCAP2/spacetime/internal/influx"
	"github.com/OCAP2/spacetime/internal/logging"
	"github.com/OCAP2/spacetime/internal/model"
	"github.com/OCAP2/spacetime/internal/monitor"
	intOtel "github.com/OCAP2/spacetime/internal/otel"
	"github.com/OCAP2/spacetime/internal/shell"
	"github.com/OCAP2/spacetime/internal/timemap"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// app holds everything built during startup, torn down in reverse by close.
type app struct {
	start     time.Time
	sessionID uuid.UUID

	logFile     *os.File
	remotes     []io.WriteCloser
	otel        *intOtel.Provider
	slogManager *logging.SlogManager
	log         *slog.Logger

	ix         *timemap.Index[string]
	dispatcher *dispatcher.Dispatcher
	monitor    *monitor.Service
	db         *gorm.DB
	influx     *influx.Manager
}

func newApp() *app {
	return &app{
		start:       time.Now(),
		sessionID:   uuid.New(),
		slogManager: logging.NewSlogManager(),
	}
}

// setupLogging opens the session log file, the OTel provider and any remote
// sinks, then rebuilds the slog pipeline on top of them.
func (a *app) setupLogging() error {
	lc := config.GetLoggingConfig()

	a.slogManager.Setup(os.Stderr, lc.Level, nil)
	a.log = a.slogManager.Logger()

	if err := os.MkdirAll(lc.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create logs dir: %w", err)
	}
	path := logging.LogFilePath(lc.Dir, AppName, a.start)
	if _, err := os.Stat(path); err == nil {
		_ = os.Rename(path, path+".old")
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	a.logFile = f

	oc := config.GetOTelConfig()
	mc := config.GetMetricsConfig()
	a.otel, err = intOtel.New(intOtel.Config{
		Enabled:        oc.Enabled,
		MetricsEnabled: mc.Enabled,
		ServiceName:    oc.ServiceName,
		BatchTimeout:   oc.BatchTimeout,
		LogWriter:      f,
		Endpoint:       oc.Endpoint,
		Insecure:       oc.Insecure,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize OTel provider: %w", err)
	}

	var remotes []io.Writer
	if lc.GraylogEnabled {
		w, err := logging.NewGraylogWriter(lc.GraylogAddress)
		if err != nil {
			a.log.Warn("Graylog unavailable, continuing without it", "address", lc.GraylogAddress, "error", err)
		} else {
			a.remotes = append(a.remotes, w)
			remotes = append(remotes, w)
		}
	}

	var otelLogProvider *sdklog.LoggerProvider
	if a.otel != nil {
		otelLogProvider = a.otel.LoggerProvider()
	}
	a.slogManager.Setup(f, lc.Level, otelLogProvider, remotes...)
	a.slogManager.WithSession(a.sessionID.String())
	a.log = a.slogManager.Logger()
	a.log.Info("Logging to file", "path", path, "version", Version)
	return nil
}

func (a *app) buildIndex() error {
	ic := config.GetIndexConfig()
	ix, err := timemap.New[string](timemap.Config{
		Capacity:        ic.Capacity,
		SpaceResolution: ic.SpaceResolution,
		TimeResolution:  ic.TimeResolution,
	}, timemap.WithLogger(a.log))
	if err != nil {
		return err
	}
	a.ix = ix
	// The clock takes ix.mu on every record, so nothing may log while
	// holding ix.mu or the caller deadlocks.
	a.slogManager.AttachClock(ix)
	a.log.Info("Index ready",
		"capacity", ic.Capacity,
		"spaceResolution", ic.SpaceResolution,
		"timeResolution", ic.TimeResolution,
	)

	if ic.AutoStep {
		ix.SetAutoStep(true)
	}
	return nil
}

func (a *app) buildDispatcher() error {
	d, err := dispatcher.New(logging.NewCommandLogger(a.logFile, config.GetLoggingConfig().Level))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	a.dispatcher = d
	return nil
}

// setupMonitor connects the configured sample sinks and starts sampling. A
// sink that cannot be reached is logged and skipped.
func (a *app) setupMonitor(ctx context.Context) error {
	mc := config.GetMonitorConfig()
	if !mc.Enabled {
		return nil
	}

	var sinks []monitor.Sink

	dc := config.GetDatabaseConfig()
	if dc.Type != "none" {
		db, err := database.Open(dc, a.log)
		if err != nil {
			a.log.Error("Sample database unavailable", "type", dc.Type, "error", err)
		} else if err := database.Migrate(db); err != nil {
			a.log.Error("Sample database migration failed", "error", err)
			_ = database.Close(db)
		} else {
			a.db = db
			sink := monitor.NewGormSink(db, mc.BatchSize)
			if err := sink.CreateSession(ctx, a.session()); err != nil {
				a.log.Error("Failed to record session", "error", err)
			} else {
				sinks = append(sinks, sink)
			}
		}
	}

	ic := config.GetInfluxConfig()
	if ic.Enabled {
		lc := config.GetLoggingConfig()
		backup := filepath.Join(lc.Dir, fmt.Sprintf("%s.%s.influx.gz", AppName, a.start.Format("20060102_150405")))
		zl := zerolog.New(a.logFile).With().Timestamp().Str("component", "influx").Logger()
		m := influx.NewManager(ic, zl, backup)
		if err := m.Connect(ctx); err != nil {
			a.log.Error("InfluxDB unavailable", "error", err)
		} else {
			a.influx = m
			sinks = append(sinks, monitor.NewInfluxSink(m))
		}
	}

	a.monitor = monitor.NewService(monitor.Dependencies{
		Source:    a.ix,
		Sinks:     sinks,
		Logger:    a.log,
		SessionID: a.sessionID,
		Interval:  mc.Interval,
		BatchSize: mc.BatchSize,
	})
	if err := a.monitor.Start(ctx); err != nil {
		return fmt.Errorf("failed to start monitor: %w", err)
	}
	a.log.Info("Index monitor started", "interval", mc.Interval, "sinks", len(sinks))
	return nil
}

func (a *app) session() *model.Session {
	host, _ := os.Hostname()
	return &model.Session{
		ID:               a.sessionID,
		StartedAt:        a.start.UTC(),
		Host:             host,
		Capacity:         a.ix.Capacity(),
		SpaceResolution:  a.ix.SpaceResolution(),
		TimeResolutionMs: a.ix.TimeResolution().Milliseconds(),
	}
}

func (a *app) metricsServer() *http.Server {
	mc := config.GetMetricsConfig()
	if !mc.Enabled || a.otel == nil || a.otel.MetricsHandler() == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.otel.MetricsHandler())
	return &http.Server{
		Addr:              mc.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// close stops background work before releasing the stores it writes to.
func (a *app) close() error {
	var errs []error

	if a.ix != nil {
		a.ix.SetAutoStep(false)
	}
	if a.monitor != nil {
		a.monitor.Stop()
	}
	if a.dispatcher != nil {
		a.dispatcher.Close()
	}
	if a.ix != nil {
		errs = append(errs, a.ix.Close())
	}
	if a.influx != nil {
		errs = append(errs, a.influx.Close())
	}
	if a.db != nil {
		errs = append(errs, database.Close(a.db))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if a.otel != nil {
		errs = append(errs, a.otel.Shutdown(ctx))
	}
	for _, r := range a.remotes {
		errs = append(errs, r.Close())
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
	}
	return errors.Join(errs...)
}

func runShell(cmd *cobra.Command, args []string) error {
	a := newApp()

	configErr := config.Load(configDir)
	if err := a.setupLogging(); err != nil {
		return err
	}
	if configErr != nil {
		a.log.Warn("Failed to load config, using defaults!", "error", configErr)
	} else {
		a.log.Info("Loaded config", "dir", configDir)
	}

	defer func() {
		if err := a.close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "shutdown: %v\n", err)
		}
	}()

	if err := a.buildIndex(); err != nil {
		return err
	}
	if err := a.buildDispatcher(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.setupMonitor(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if srv := a.metricsServer(); srv != nil {
		g.Go(func() error {
			a.log.Info("Serving metrics", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	shellOpts := []shell.Option{shell.WithLogger(a.log)}
	if sc := config.GetShellConfig(); sc.AsyncWrites > 0 {
		shellOpts = append(shellOpts, shell.WithAsyncWrites(sc.AsyncWrites))
		a.log.Info("Shell writes are queued", "buffer", sc.AsyncWrites)
	}
	sh := shell.New(a.ix, a.dispatcher, shellOpts...)
	g.Go(func() error {
		defer stop()
		err := sh.Run(gctx, cmd.InOrStdin(), cmd.OutOrStdout())
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	err := g.Wait()
	a.log.Info("Shutting down", "advances", a.ix.Stats().Advances)
	return err
}
