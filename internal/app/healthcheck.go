package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/specialistvlad/scriptbridge/internal/bridge"
)

// Status is the body of the /status endpoint.
type Status struct {
	Phase            string       `json:"phase"`
	Calls            int64        `json:"calls"`
	Batches          bridge.Stats `json:"batches"`
	PendingEngine    int          `json:"pendingEngine"`
	PendingCallbacks int          `json:"pendingCallbacks"`
}

// healthHandler reports liveness.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// statusHandler reports the session's progress as JSON.
func (a *App) statusHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Status endpoint hit.", "remote_addr", r.RemoteAddr)
	status := Status{
		Phase:            a.currentPhase(),
		Calls:            a.Calls(),
		Batches:          a.Stats(),
		PendingEngine:    a.engine.Len(),
		PendingCallbacks: a.callbacks.Len(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		a.logger.Warn("Failed to write status.", "error", err)
	}
}

// StatusHandler returns the mux served on the status port.
func (a *App) StatusHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/status", a.statusHandler)
	return mux
}

// startStatusServer runs the health and status server in the background.
func (a *App) startStatusServer(ctx context.Context) {
	a.logger.Debug("Configuring status server.")
	addr := fmt.Sprintf(":%d", a.config.StatusPort)
	a.httpServer = &http.Server{
		Addr:    addr,
		Handler: a.StatusHandler(),
	}

	srv := a.httpServer
	go func() {
		a.logger.Info("🩺 Status server starting", "address", fmt.Sprintf("http://localhost%s/status", addr))
		// ListenAndServe will return an error on graceful shutdown.
		// We check for this specific error to avoid logging a false positive.
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Status server failed unexpectedly", "error", err)
		}
	}()
}

func (a *App) closeStatusServer() error {
	if a.httpServer == nil {
		a.logger.Debug("Status server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a.logger.Info("🩺 Shutting down status server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("Status server shutdown failed", "error", err)
		return err
	}
	a.logger.Debug("Status server shut down gracefully.")
	return nil
}
