package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/subscription-bot/server/internal/core"
	"github.com/subscription-bot/server/internal/dialogue/actions"
	"github.com/subscription-bot/server/internal/dialogue/engine"
	"github.com/subscription-bot/server/internal/dialogue/graph"
	"github.com/subscription-bot/server/internal/dialogue/model"
	"github.com/subscription-bot/server/internal/dialogue/repo"
	"github.com/subscription-bot/server/internal/dialogue/threads"
	"github.com/subscription-bot/server/internal/records"
	"github.com/subscription-bot/server/internal/records/mirror"
	"github.com/subscription-bot/server/internal/transport/telegram"
	logx "github.com/subscription-bot/server/pkg/logger"
)

func runBot(parent context.Context) error {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return errors.Wrap(err, "process environment config")
	}

	closer, err := logx.Init(logx.LoggerOpts{
		Environment: core.ParseEnvironment(cfg.Environment),
		File:        cfg.LogFile,
	})
	if err != nil {
		return errors.Wrapf(err, "open log file %s", cfg.LogFile)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	disk := mirror.NewYandexDisk(cfg.Disk)
	if err := checkDisk(ctx, disk, cfg); err != nil {
		return err
	}

	store := records.New(cfg.Records, records.WithMirror(disk, cfg.Disk.Dir, cfg.Disk.RetryDelay))
	registry := actions.NewRegistry(actions.Deps{Records: store})
	g, graphErr := loadGraph(cfg.GraphFile, registry)

	sessions, closeSessions, err := openSessions(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	bot, err := telegram.New(cfg.Telegram)
	if err != nil {
		return err
	}

	eng := engine.New(engine.Deps{
		Graph:     g,
		GraphErr:  graphErr,
		Actions:   registry,
		Sessions:  sessions,
		Threads:   threads.New(),
		Transport: bot,
		Config: engine.Config{
			OperatorChatID: cfg.OperatorChatID,
			AdminIDs:       parseAdminIDs(cfg.AdminIDs),
			MediaDir:       cfg.MediaDir,
		},
	})
	if eng.Degraded() != nil {
		eng.NotifyDegraded(ctx)
	}
	if cfg.OperatorChatID == 0 {
		logx.Warn().Msg("ADMIN_GROUP_ID is not set, operator relay is disabled")
	}

	dispatcher := engine.NewDispatcher(eng.Handle)
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return bot.Poll(gctx, dispatcher.Submit)
	})
	group.Go(func() error {
		<-gctx.Done()
		logx.Info().Msg("shutting down, waiting for in-flight updates")
		dispatcher.Wait()
		return nil
	})

	logx.Info().Str("bot", bot.Username()).Str("graph", cfg.GraphFile).Msg("bot started")
	return group.Wait()
}

// checkDisk refuses to start when the mirror token cannot be verified
// within the startup timeout.
func checkDisk(ctx context.Context, disk *mirror.YandexDisk, cfg AppConfig) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.StartupTimeout)
	defer cancel()

	ok, err := disk.CheckToken(ctx)
	if err != nil {
		return errors.Wrap(err, "verify YANDEX_TOKEN")
	}
	if !ok {
		return fmt.Errorf("YANDEX_TOKEN is invalid or expired: %s", mirror.Remediation(mirror.ErrTokenExpired))
	}
	logx.Info().Str("dir", cfg.Disk.Dir).Msg("disk token verified")
	return nil
}

// loadGraph loads the dialogue document. A failure is returned as the
// engine's degraded-mode error, never as a startup failure.
func loadGraph(path string, registry *actions.Registry) (*model.Graph, error) {
	g, err := graph.Load(path)
	if err != nil {
		logx.Error().Err(err).Str("path", path).Msg("failed to load dialogue graph, starting degraded")
		return nil, err
	}
	for _, p := range graph.Problems(g) {
		logx.Warn().Str("path", path).Msg(p)
	}
	if err := registry.Validate(g); err != nil {
		logx.Error().Err(err).Str("path", path).Msg("dialogue graph references unknown actions, starting degraded")
		return nil, err
	}
	logx.Info().Str("path", path).Int("states", len(g.Nodes)).Msg("dialogue graph loaded")
	return g, nil
}

func openSessions(ctx context.Context, cfg AppConfig) (model.SessionStore, func(), error) {
	switch cfg.SessionBackend {
	case "", "memory":
		return repo.NewMemorySessionStore(), func() {}, nil
	case "redis":
		rdb, err := cfg.Redis.New(ctx)
		if err != nil {
			return nil, nil, errors.Wrap(err, "connect to redis")
		}
		logx.Info().Dur("ttl", cfg.SessionTTL).Msg("sessions are kept in redis")
		return repo.NewRedisSessionStore(rdb, cfg.SessionTTL), func() { _ = rdb.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}
}
