package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"healthwatch/internal/config"
	"healthwatch/internal/history"
	"healthwatch/internal/httpapi"
	"healthwatch/internal/logging"
	"healthwatch/internal/notify"
	"healthwatch/internal/probe"
	"healthwatch/internal/supervisor"
)

func main() {
	cfg := config.FromEnv()

	// Flags override the environment; defaults come from it.
	flag.StringVar(&cfg.TargetURL, "url", cfg.TargetURL, "health endpoint to probe, e.g. http://127.0.0.1:8000/health")
	flag.DurationVar(&cfg.Interval, "interval", cfg.Interval, "time between probes")
	flag.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "max wait per probe")
	flag.DurationVar(&cfg.StartPeriod, "start-period", cfg.StartPeriod, "grace window after start")
	flag.IntVar(&cfg.Retries, "retries", cfg.Retries, "consecutive failures before unhealthy")
	addrDefault := cfg.Addr
	if addrDefault == "" {
		addrDefault = ":8081"
	}
	flag.StringVar(&cfg.Addr, "addr", addrDefault, "status API bind address (empty disables)")
	once := flag.Bool("once", false, "probe once and exit 0 on success, 1 otherwise")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	prober := probe.NewHTTPProber()

	if *once {
		out := prober.Probe(context.Background(), cfg.TargetURL, cfg.Timeout)
		fmt.Fprintf(os.Stderr, "%s %s (%.0f ms)\n", out.Kind, out.Reason, out.LatencyMS)
		if out.Kind.Failed() {
			os.Exit(1)
		}
		return
	}

	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store history.Store = history.NewMemory(cfg.HistorySize)
	if cfg.DatabaseURL != "" {
		pg, err := history.NewPostgres(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("history_postgres_error", zap.Error(err))
		}
		defer pg.Close()
		store = pg
	}

	var notifier notify.Notifier
	if s := notify.NewSlack(cfg.SlackWebhook); s != nil {
		notifier = notify.Multi{s}
	}

	sup := supervisor.New(logger, prober, store, notifier, cfg)

	if cfg.Addr != "" {
		api := httpapi.NewServer(logger, sup, store, 10)
		go func() {
			logger.Info("status_api_listen", zap.String("addr", cfg.Addr))
			if err := http.ListenAndServe(cfg.Addr, api.Router()); err != nil {
				logger.Fatal("status_api_error", zap.Error(err))
			}
		}()
	}

	logger.Info("supervisor_start",
		zap.String("url", cfg.TargetURL),
		zap.Duration("interval", cfg.Interval),
		zap.Duration("timeout", cfg.Timeout),
		zap.Duration("start_period", cfg.StartPeriod),
		zap.Int("retries", cfg.Retries),
	)
	sup.Run(ctx)

	if sup.CurrentVerdict() == supervisor.VerdictUnhealthy {
		os.Exit(1)
	}
}
