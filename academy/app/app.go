// Package app wires configuration, storage, the registration engine and the
// Telegram runtime into one runnable bot.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/iteachbot/academy/bot"
	"github.com/m3rciful/iteachbot/academy/registration"
	"github.com/m3rciful/iteachbot/academy/store"
	"github.com/m3rciful/iteachbot/core/bootstrap"
	"github.com/m3rciful/iteachbot/core/cmd"
	"github.com/m3rciful/iteachbot/core/health"
	"github.com/m3rciful/iteachbot/core/logger"
	"github.com/m3rciful/iteachbot/core/scheduler"
	tg "github.com/m3rciful/iteachbot/core/telegram"
	"github.com/m3rciful/iteachbot/core/telegram/router"
	"github.com/m3rciful/iteachbot/core/telegram/state"
	"github.com/m3rciful/iteachbot/core/telegram/sender"
)

// App owns every long-lived component of the bot.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	store    *store.Store
	sessions *state.Manager[registration.Draft]
	engine   *registration.Engine
	handlers *bot.Handlers
	registry *tg.Registry
	sched    *scheduler.Scheduler
	health   *health.Server
}

// Bootstrap is the cmd.Options hook: logger, migrations, connection, then New.
func Bootstrap(ctx context.Context, carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}
	res, err := bootstrap.Run(ctx, bootstrap.Options{
		Logging:  cfg.Logging,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}
	a, err := New(cfg, res.DB)
	if err != nil {
		_ = res.DB.Close()
		return nil, err
	}
	return a, nil
}

// New assembles the app over an open, migrated database.
func New(cfg *Config, db *sqlx.DB) (*App, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("app: config and database are required")
	}
	a := &App{
		cfg:      cfg,
		db:       db,
		store:    store.New(db),
		sessions: state.NewManager[registration.Draft](),
		registry: tg.NewRegistry(),
		sched:    scheduler.New(cfg.Location()),
	}

	engine, err := registration.NewEngine(registration.Options{
		Sessions: a.sessions,
		Store:    a.store,
		Location: cfg.Location(),
	})
	if err != nil {
		return nil, err
	}
	a.engine = engine
	a.handlers = bot.New(engine, a.store)
	if err := a.handlers.Register(a.registry); err != nil {
		return nil, fmt.Errorf("app: register handlers: %w", err)
	}

	if cfg.Health.Listen != "" {
		a.health = health.NewServer(cfg.Health.Listen, a.store)
	}
	return a, nil
}

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(a.handlers, a.registry, router.TextOptions{
		UnknownText:    a.handlers.ManagerHandler,
		UnknownContact: a.handlers.ManagerHandler,
	})...)

	return tg.RunOptions{
		Config:            &a.cfg.Config,
		Registry:          a.registry,
		DispatcherOptions: sender.Options{MaxRetries: 2},
		Middlewares:       tg.DefaultMiddlewares(&a.cfg.Config, nil),
		Routes:            routes,
		AllowedUpdates:    []string{"message", "callback_query"},
		OnStart:           a.onStart,
		OnStop:            a.onStop,
	}, nil
}

func (a *App) onStart(ctx context.Context, rt tg.Runtime) error {
	if rt.Bot != nil {
		a.engine.SetNotifier(bot.NewAdminNotifier(rt.Bot, a.cfg.Telegram.AdminID))
	}

	if ttl := a.cfg.Sessions.IdleTTL; ttl > 0 {
		if _, err := a.sched.Schedule("sessions.sweep", a.cfg.Sessions.SweepSpec, a.sweep); err != nil {
			return fmt.Errorf("app: schedule session sweep: %w", err)
		}
	}
	a.sched.Start()

	if a.health != nil {
		if err := a.health.Start(); err != nil {
			return fmt.Errorf("app: health server: %w", err)
		}
	}
	return nil
}

func (a *App) onStop(ctx context.Context, _ tg.Runtime) error {
	a.sched.Stop(ctx)
	if a.health != nil {
		if err := a.health.Shutdown(ctx); err != nil {
			logger.Warn(ctx, "health", "health.shutdown",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		}
	}
	return nil
}

// sweep drops conversations idle for longer than the configured TTL.
func (a *App) sweep(ctx context.Context) error {
	removed := a.sessions.Sweep(a.cfg.Sessions.IdleTTL)
	logger.Info(ctx, "sessions", "sessions.sweep",
		slog.Int("removed", removed),
		slog.Int("active", a.sessions.Len()),
	)
	return nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.db.Close()
}

var _ interface {
	cmd.TelegramApp
	Close() error
} = (*App)(nil)

var _ router.FSM = (*bot.Handlers)(nil)
