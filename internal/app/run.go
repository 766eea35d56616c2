package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/scriptbridge/internal/ctxlog"
	"github.com/specialistvlad/scriptbridge/internal/dynamic"
	"github.com/specialistvlad/scriptbridge/internal/native"
	"github.com/specialistvlad/scriptbridge/internal/transfer"
	"golang.org/x/sync/errgroup"
)

// Run drives one script session: install globals, load the bundle, make the
// configured calls, wait for their callbacks and tear everything down.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")
	defer a.shutdown()

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(sessionCtx)

	if a.config.StatusPort > 0 {
		a.startStatusServer(gctx)
		g.Go(func() error {
			<-gctx.Done()
			return a.closeStatusServer()
		})
	}

	g.Go(func() error {
		defer cancel()
		return a.session(gctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	stats := a.Stats()
	a.logger.Info("🏁 Session finished.",
		"calls", a.Calls(),
		"posted", stats.Posted,
		"delivered", stats.Delivered,
		"dropped", stats.Dropped,
		"aborted", stats.Aborted,
	)
	return nil
}

func (a *App) session(ctx context.Context) error {
	m := a.model

	a.setPhase("globals")
	for _, g := range m.Globals {
		text, err := dynamic.ToJSON(g.Value)
		if err != nil {
			return fmt.Errorf("global %s: %w", g.Name, err)
		}
		if err := a.onEngine(ctx, func() error { return a.bridge.SetGlobalVariable(ctx, g.Name, text) }); err != nil {
			return fmt.Errorf("failed to set global %s: %w", g.Name, err)
		}
	}

	profiling := false
	if m.Profile != nil {
		err := a.onEngine(ctx, func() error {
			if !a.bridge.SupportsProfiling() {
				a.logger.Warn("Profiling requested but the executor does not support it.", "executor", m.Executor.Kind)
				return nil
			}
			profiling = true
			return a.bridge.StartProfiler(m.Profile.Title)
		})
		if err != nil {
			return fmt.Errorf("failed to start profiler: %w", err)
		}
	}

	if m.Bundle.Fetch {
		a.setPhase("fetching")
		if _, err := transfer.FetchBundle(ctx, a.httpClient, m.Bundle.SourceURL, m.Bundle.Path); err != nil {
			return fmt.Errorf("failed to fetch bundle: %w", err)
		}
	}

	a.setPhase("loading")
	a.logger.Info("🚀 Loading bundle...")
	if err := a.onEngine(ctx, func() error { return a.loadBundle(ctx) }); err != nil {
		return fmt.Errorf("failed to load bundle: %w", err)
	}

	a.setPhase("calling")
	for i, c := range m.Calls {
		args, err := native.ToArray(c.Args)
		if err != nil {
			return fmt.Errorf("call %d: %w", i, err)
		}
		err = a.onEngine(ctx, func() error { return a.bridge.CallFunction(ctx, c.Module, c.Method, args) })
		if err != nil {
			return fmt.Errorf("call %d (module %d, method %d) failed: %w", i, c.Module, c.Method, err)
		}
	}

	if profiling {
		err := a.onEngine(ctx, func() error { return a.bridge.StopProfiler(m.Profile.Title, m.Profile.Output) })
		if err != nil {
			return fmt.Errorf("failed to stop profiler: %w", err)
		}
		a.logger.Info("Profile written.", "output", m.Profile.Output)

		if m.Profile.UploadURL != "" {
			if err := transfer.Upload(ctx, a.httpClient, m.Profile.Output, m.Profile.UploadURL); err != nil {
				return fmt.Errorf("failed to upload profile: %w", err)
			}
		}
	}

	a.setPhase("settling")
	return a.settle(ctx)
}

func (a *App) loadBundle(ctx context.Context) error {
	b := a.model.Bundle
	switch {
	case b.Asset != "":
		return a.bridge.LoadScriptFromAssets(ctx, os.DirFS(b.AssetDir), filepath.ToSlash(b.Asset))
	case b.SourceURL != "":
		return a.bridge.LoadScriptFromNetworkCached(ctx, b.SourceURL, b.Path)
	default:
		src, err := os.ReadFile(b.Path)
		if err != nil {
			return err
		}
		return a.bridge.LoadScript(ctx, src, b.Path)
	}
}

// settle waits until every batch posted so far has run on the callback
// thread. The queue is FIFO, so a marker posted now runs after them.
func (a *App) settle(ctx context.Context) error {
	settleCtx, cancel := context.WithTimeout(ctx, a.model.SettleTimeout)
	defer cancel()
	if err := a.callbacks.RunSync(settleCtx, func() error { return nil }); err != nil {
		return fmt.Errorf("callbacks did not settle within %v: %w", a.model.SettleTimeout, err)
	}
	return nil
}

func (a *App) onEngine(ctx context.Context, fn func() error) error {
	return a.engine.RunSync(ctx, fn)
}

// shutdown destroys the bridge, releases the weak targets and stops both
// threads. Work still queued on the callback thread is dropped.
func (a *App) shutdown() {
	a.setPhase("shutting down")
	err := a.engine.RunSync(a.ctx, func() error { return a.bridge.Destroy() })
	if err != nil {
		a.logger.Warn("Bridge teardown failed.", "error", err)
	}
	a.httpClient.CloseIdleConnections()
	a.sinkOwner.Release()
	a.threadOwner.Release()
	a.stopThreads()
	a.setPhase("done")
	a.logger.Debug("App shut down.")
}

func (a *App) stopThreads() {
	a.engine.Quit()
	a.callbacks.Quit()
	a.engine.Wait()
	a.callbacks.Wait()
}
