package cmd

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/m3rciful/iteachbot/core/config"
	coretelegram "github.com/m3rciful/iteachbot/core/telegram"
)

type carrier struct{ cfg *coreconfig.Config }

func (c carrier) CoreConfig() *coreconfig.Config { return c.cfg }

type fakeApp struct {
	started, stopped, closed bool
}

func (a *fakeApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{
		OnStart: func(context.Context, coretelegram.Runtime) error { a.started = true; return nil },
		OnStop:  func(context.Context, coretelegram.Runtime) error { a.stopped = true; return nil },
	}, nil
}

func (a *fakeApp) Close() error {
	a.closed = true
	return nil
}

func TestRunWiresLifecycle(t *testing.T) {
	t.Setenv("CONFIG_PATH", "custom.yaml")
	app := &fakeApp{}
	var loadedPath string

	err := Run(Options{
		DefaultConfigPath: "config.yaml",
		Context:           context.Background(),
		LoadConfig: func(path string) (ConfigCarrier, error) {
			loadedPath = path
			return carrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap:      func(context.Context, ConfigCarrier) (TelegramApp, error) { return app, nil },
		ShutdownLogger: func() error { return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			if err := opts.OnStart(ctx, coretelegram.Runtime{}); err != nil {
				return err
			}
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if loadedPath != "custom.yaml" {
		t.Fatalf("config path = %q", loadedPath)
	}
	if !app.started || !app.stopped || !app.closed {
		t.Fatalf("lifecycle incomplete: %+v", app)
	}
}

func TestRunFailsOnMissingCoreConfig(t *testing.T) {
	err := Run(Options{
		Context:        context.Background(),
		LoadConfig:     func(string) (ConfigCarrier, error) { return carrier{}, nil },
		Bootstrap:      func(context.Context, ConfigCarrier) (TelegramApp, error) { return &fakeApp{}, nil },
		ShutdownLogger: func() error { return nil },
	})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRunPropagatesBootstrapError(t *testing.T) {
	boom := errors.New("db down")
	err := Run(Options{
		Context:        context.Background(),
		LoadConfig:     func(string) (ConfigCarrier, error) { return carrier{cfg: &coreconfig.Config{}}, nil },
		Bootstrap:      func(context.Context, ConfigCarrier) (TelegramApp, error) { return nil, boom },
		ShutdownLogger: func() error { return nil },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
