package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/specialistvlad/scriptbridge/internal/bridge"
	"github.com/specialistvlad/scriptbridge/internal/config"
	"github.com/specialistvlad/scriptbridge/internal/ctxlog"
	"github.com/specialistvlad/scriptbridge/internal/executor"
	"github.com/specialistvlad/scriptbridge/internal/jsexecutor"
	"github.com/specialistvlad/scriptbridge/internal/proxyexecutor"
	"github.com/specialistvlad/scriptbridge/internal/queue"
	"github.com/specialistvlad/scriptbridge/internal/transfer"
	"github.com/specialistvlad/scriptbridge/internal/weakref"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	ctx    context.Context
	logger *slog.Logger
	config *Config
	model  *config.Model

	// engine owns the bridge; every bridge operation runs there.
	engine    *queue.Thread
	callbacks *queue.Thread

	sink        *logSink
	sinkOwner   *weakref.Owner[bridge.Callback]
	threadOwner *weakref.Owner[bridge.Poster]
	bridge      *bridge.Bridge

	phase      atomic.Value // string
	httpServer *http.Server
	httpClient *http.Client
}

// NewApp is the constructor for the main application. It loads the
// configuration, starts the engine and callback threads and creates the
// bridge. A nil loader selects one by file extension.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loadModel(ctx, loader, appConfig.ConfigPaths)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	a := &App{
		outW:   outW,
		ctx:    ctx,
		logger: logger,
		config: appConfig,
		model:  model,
		sink:   newLogSink(logger),

		httpClient: transfer.NewClient(0),
	}
	a.setPhase("starting")

	a.engine = queue.NewThread(ctx, "engine")
	a.callbacks = queue.NewThread(ctx, "callbacks")
	a.sinkOwner = weakref.NewOwner[bridge.Callback](a.sink)
	a.threadOwner = weakref.NewOwner[bridge.Poster](a.callbacks)

	factory := newExecutorFactory(model.Executor)
	err = a.engine.RunSync(ctx, func() error {
		b, err := bridge.New(ctx, factory, a.sinkOwner.Weak(), a.threadOwner.Weak())
		if err != nil {
			return err
		}
		a.bridge = b
		return nil
	})
	if err != nil {
		a.stopThreads()
		return nil, fmt.Errorf("failed to create bridge: %w", err)
	}
	logger.Debug("Bridge created.", "executor", model.Executor.Kind)
	return a, nil
}

// Model returns the loaded configuration. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}

// Stats returns the bridge's dispatch counters.
func (a *App) Stats() bridge.Stats {
	return a.bridge.Stats()
}

// Calls returns the number of script-to-host calls delivered so far.
func (a *App) Calls() int64 {
	return a.sink.calls.Load()
}

func (a *App) setPhase(p string) {
	a.phase.Store(p)
}

func (a *App) currentPhase() string {
	p, _ := a.phase.Load().(string)
	return p
}

func newExecutorFactory(cfg config.Executor) executor.Factory {
	if cfg.Kind == config.ExecutorProxy {
		dial := func(ctx context.Context) (proxyexecutor.Conn, error) {
			return proxyexecutor.Dial(ctx, proxyexecutor.DialOptions{
				URL:                cfg.URL,
				Namespace:          cfg.Namespace,
				InsecureSkipVerify: cfg.InsecureSkipVerify,
				Timeout:            cfg.Timeout,
			})
		}
		return proxyexecutor.NewOneTimeFactory(dial, cfg.Timeout)
	}

	opts := []jsexecutor.Option{jsexecutor.WithBridgeName(cfg.BridgeName)}
	if cfg.Runtime {
		opts = append(opts, jsexecutor.WithRuntime())
	}
	return jsexecutor.NewFactory(opts...)
}
