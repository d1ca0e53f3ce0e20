package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"FuyouSentinel/internal/collector"
	"FuyouSentinel/internal/config"
	"FuyouSentinel/internal/engine"
	"FuyouSentinel/internal/ledger"
	"FuyouSentinel/internal/metrics"
	"FuyouSentinel/internal/notifier"
	"FuyouSentinel/internal/recorder"
	"FuyouSentinel/internal/scheduler"
	"FuyouSentinel/internal/server"
	"FuyouSentinel/internal/store"
)

func main() {
	if err := run(); err != nil {
		logrus.Fatal(err)
	}
}

// run returns instead of exiting so deferred closes always happen.
func run() error {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	log := cfg.NewLogger()
	log.Info("FuyouSentinel starting...")

	limits, err := cfg.EngineLimits()
	if err != nil {
		return fmt.Errorf("resolve limits: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}
	clock := engine.SystemClock{Location: loc}
	eng := engine.New(limits, clock)
	log.WithFields(logrus.Fields{
		"preset":    cfg.Limits.Preset,
		"dependent": limits.Dependent,
		"timezone":  loc.String(),
	}).Info("engine configured")

	// Init shift source
	var source collector.Source
	if cfg.DataSource.BaseURL != "" {
		source = collector.NewRESTSource(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.DataSource.UserID, cfg.Proxy)
	} else {
		st, err := store.NewSQLiteStore(cfg.Database.SQLitePath, log)
		if err != nil {
			return fmt.Errorf("open shift store: %w", err)
		}
		defer st.Close()
		if path := os.Getenv("IMPORT_FILE"); path != "" {
			if err := importExport(log, st, path); err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}
		}
		source = st
	}
	log.WithField("source", source.Name()).Info("data source selected")
	col := collector.NewCollector(source, log)

	// Init ledger
	lm, err := ledger.NewManager(cfg.Ledger.StateFile, clock.Now().Year(), log)
	if err != nil {
		return fmt.Errorf("init ledger: %w", err)
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.WithError(err).Warn("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	mc := metrics.NewCollector()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := scheduler.Deps{
		Collector: col,
		Engine:    eng,
		Clock:     clock,
		Ledger:    lm,
		Recorder:  rec,
		Metrics:   mc,
		Log:       log,
	}
	var tn *notifier.TelegramNotifier
	if cfg.NotificationsEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		deps.Notifier = tn
	} else {
		log.Warn("telegram not configured, notifications disabled")
	}

	sched := scheduler.NewScheduler(ctx, deps)
	if err := sched.RegisterAll(cfg.Schedule.DailyCron, cfg.Schedule.MonthlyCron, cfg.Schedule.YearlyCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info("telegram polling started")
	}

	srv := server.New(eng, clock, mc, rec, log)
	go func() {
		if err := srv.ListenAndServe(cfg.Server.Addr); err != nil {
			log.WithError(err).Error("http server stopped")
			cancel()
		}
	}()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info("RUN_ON_START enabled, executing daily check now")
		go sched.RunDailyNow()
	}

	log.Info("FuyouSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info("shutdown signal received, stopping...")
	case <-ctx.Done():
	}

	cancel()
	if err := srv.Shutdown(); err != nil {
		log.WithError(err).Warn("http server shutdown")
	}
	log.Info("FuyouSentinel stopped")
	return nil
}

// importExport loads a dashboard export into the shift store. Shifts
// already present are skipped, so the same file can be imported on every boot.
func importExport(log *logrus.Logger, st *store.SQLiteStore, path string) error {
	exp, err := collector.LoadExport(path)
	if err != nil {
		return err
	}
	for _, w := range exp.Workplaces {
		if err := st.UpsertWorkplace(w); err != nil {
			return fmt.Errorf("workplace %s: %w", w.ID, err)
		}
	}
	ids, err := st.ImportShifts(exp.Shifts)
	if err != nil {
		return err
	}
	if exp.CurrentIncome != nil {
		log.WithField("current_income", *exp.CurrentIncome).
			Warn("export currentIncome is not stored, income is summed from shifts")
	}
	log.WithFields(logrus.Fields{
		"path":       path,
		"workplaces": len(exp.Workplaces),
		"shifts":     len(exp.Shifts),
		"inserted":   len(ids),
	}).Info("export imported")
	return nil
}
