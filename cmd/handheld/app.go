package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/handheld"
	"github.com/aretw0/handheld/internal/config"
	"github.com/aretw0/handheld/internal/logging"
	"github.com/aretw0/handheld/pkg/adapters/dom"
	"github.com/aretw0/handheld/pkg/adapters/file"
	httpAdapter "github.com/aretw0/handheld/pkg/adapters/http"
	"github.com/aretw0/handheld/pkg/adapters/memory"
	"github.com/aretw0/handheld/pkg/adapters/redis"
	"github.com/aretw0/handheld/pkg/domain"
	"github.com/aretw0/handheld/pkg/observability"
	"github.com/aretw0/handheld/pkg/persistence/middleware"
	"github.com/aretw0/handheld/pkg/ports"
	"github.com/aretw0/handheld/pkg/session"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// app holds everything a command builds from the configuration.
type app struct {
	cfg    *config.Config
	fs     afero.Fs
	logger *slog.Logger

	journal *session.Manager
	metrics *observability.Metrics
	streams *httpAdapter.StreamManager
	runtime *handheld.Runtime

	closers []func() error
}

// loadConfig reads --config (or the defaults) and applies flag overrides.
func loadConfig(cmd *cobra.Command, fs afero.Fs) (*config.Config, error) {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		if cfg, err = config.Load(fs, path); err != nil {
			return nil, err
		}
	}

	if v, _ := cmd.Flags().GetString("backend"); v != "" {
		cfg.Backend.URL = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v, _ := cmd.Flags().GetString("station"); v != "" {
		cfg.Station = v
	}
	if cmd.Flags().Lookup("addr") != nil && cmd.Flags().Changed("addr") {
		cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
	}
	return cfg, cfg.Validate()
}

// newApp loads the configuration, the logger and the journal.
func newApp(cmd *cobra.Command) (*app, error) {
	fs := afero.NewOsFs()
	cfg, err := loadConfig(cmd, fs)
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewWithFormat(cfg.Log.Format, level)
	if err != nil {
		return nil, err
	}
	logger = logger.With("station", cfg.Station)

	a := &app{cfg: cfg, fs: fs, logger: logger}
	if err := a.openJournal(); err != nil {
		return nil, err
	}
	return a, nil
}

// openJournal builds the snapshot store chain selected by journal.driver.
func (a *app) openJournal() error {
	jc := a.cfg.Journal
	var (
		store  ports.SnapshotStore
		locker ports.DistributedLocker
	)
	switch jc.Driver {
	case config.DriverNone:
		return nil
	case config.DriverMemory:
		store = memory.NewStore()
	case config.DriverFile:
		store = file.New(jc.Path)
	case config.DriverRedis:
		rs := redis.New(jc.Redis.Addr, jc.Redis.Password, jc.Redis.DB,
			redis.WithPrefix(jc.Redis.Prefix),
			redis.WithTTL(jc.Redis.TTL.D()),
		)
		a.closers = append(a.closers, rs.Close)
		store = rs
		locker = redis.NewLocker(rs.Client(), rs.Prefix())
	default:
		return fmt.Errorf("unknown journal driver %q", jc.Driver)
	}

	var mws []middleware.Middleware
	if len(jc.Mask) > 0 {
		mw, err := middleware.NewPIIMiddleware(jc.Mask)
		if err != nil {
			return err
		}
		mws = append(mws, mw)
	}
	if jc.EncryptionKey != "" {
		enc, err := encryptionConfig(jc)
		if err != nil {
			return err
		}
		mw, err := middleware.NewEncryptionMiddleware(enc)
		if err != nil {
			return err
		}
		mws = append(mws, mw)
	}

	opts := []session.Option{session.WithLogger(a.logger)}
	if locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}
	a.journal = session.NewManager(middleware.Chain(store, mws...), opts...)
	return nil
}

func encryptionConfig(jc config.Journal) (middleware.EncryptionConfig, error) {
	decode := func(s string) ([]byte, error) {
		key, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("journal key is not base64: %w", err)
		}
		return key, nil
	}

	active, err := decode(jc.EncryptionKey)
	if err != nil {
		return middleware.EncryptionConfig{}, err
	}
	cfg := middleware.EncryptionConfig{ActiveKey: active}
	for _, s := range jc.FallbackKeys {
		key, err := decode(s)
		if err != nil {
			return middleware.EncryptionConfig{}, err
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, key)
	}
	return cfg, nil
}

// buildRuntime wires the kiosk runtime over the operator document.
func (a *app) buildRuntime(ctx context.Context) error {
	cfg := a.cfg

	raw, err := a.fs.Open(cfg.UI.Document)
	if err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	doc, err := dom.Parse(raw)
	_ = raw.Close()
	if err != nil {
		return fmt.Errorf("failed to parse document %s: %w", cfg.UI.Document, err)
	}
	views, err := handheld.DocumentViews(doc)
	if err != nil {
		return err
	}

	client := httpAdapter.NewClient(cfg.Backend.URL, httpAdapter.WithClientLogger(a.logger))

	var (
		templates    ports.TemplateSource
		templatePath = cfg.Report.Template
	)
	switch cfg.Report.TemplateSource {
	case config.TemplateSourceBackend:
		templates = client
	default:
		templates = dom.NewFSSource(a.fs, filepath.Dir(cfg.Report.Template))
		templatePath = filepath.Base(cfg.Report.Template)
	}

	a.metrics = observability.NewMetrics()
	a.streams = httpAdapter.NewStreamManager(16, a.logger)

	opts := []handheld.Option{
		handheld.WithLogger(a.logger),
		handheld.WithHooks(a.metrics.Hooks()),
		handheld.WithInitialState(domain.NewState(cfg.Sync.InitialState)),
		handheld.WithTimeout(cfg.Backend.Timeout.D()),
		handheld.WithUIState(cfg.UI.InitialState),
		handheld.WithScreenSource(cfg.Screen.Source),
		handheld.WithInitialPage(cfg.Report.InitialPage),
		handheld.WithResetTexts(cfg.UI.ResetTexts),
		handheld.WithDeleteEndpoint(cfg.Report.DeleteEndpoint),
		handheld.WithControls(cfg.Controls...),
		handheld.WithTemplate(templates, templatePath),
		handheld.WithPageObserver(a.metrics.ObservePages),
		handheld.WithObservers(a.streams),
		handheld.WithEditModeObserver(a.streams.NotifyEditMode),
	}

	if a.journal != nil {
		opts = append(opts, handheld.WithObservers(
			session.NewRecorder(a.journal, cfg.Station, session.WithRecorderLogger(a.logger)),
		))
		if cfg.Journal.Restore {
			record, err := a.journal.Load(ctx, cfg.Station)
			switch {
			case err == nil:
				opts = append(opts, handheld.WithRestoredState(record.State))
			case !errors.Is(err, domain.ErrRecordNotFound):
				a.logger.Warn("Journal restore failed, starting fresh", "err", err)
			}
		}
	}

	a.runtime = handheld.New(client, views, opts...)
	a.closers = append(a.closers, a.runtime.Close)
	return a.runtime.Start(ctx)
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
