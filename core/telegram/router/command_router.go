package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/iteachbot/core/logger"
	tg "github.com/m3rciful/iteachbot/core/telegram"
	"github.com/m3rciful/iteachbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes prepares command handlers wrapped with shared middleware.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	admin := middleware.AdminOnly(middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	})

	cmds := reg.Commands()
	routes := make([]tg.Route, 0, len(cmds))
	for name, def := range cmds {
		name, inner := normalizeHandlerName(name), def.Handler
		h := func(c tele.Context) error {
			return handleWithSummary(c, "command."+name, time.Now(), func() error {
				return inner(c)
			})
		}
		if def.AdminOnly {
			h = admin(h)
		}
		h = middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
		routes = append(routes, tg.Route{Endpoint: "/" + name, Handler: h})
	}

	logger.Info(context.Background(), "tg.wire", "wire.complete",
		slog.String("status", "ok"),
		slog.Int("commands", len(cmds)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}
