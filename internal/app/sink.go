package app

import (
	"log/slog"
	"sync/atomic"

	"github.com/specialistvlad/scriptbridge/internal/bridge"
	"github.com/specialistvlad/scriptbridge/internal/dynamic"
	"github.com/specialistvlad/scriptbridge/internal/native"
)

// logSink is the host callback: it logs every call the script makes.
type logSink struct {
	logger  *slog.Logger
	calls   atomic.Int64
	batches atomic.Int64
}

var _ bridge.Callback = (*logSink)(nil)

func newLogSink(logger *slog.Logger) *logSink {
	return &logSink{logger: logger.With("component", "host")}
}

func (s *logSink) Call(moduleID, methodID int, args *native.Array) error {
	text := "[]"
	if args != nil {
		v, err := args.Value()
		if err != nil {
			return err
		}
		if text, err = dynamic.ToJSON(v); err != nil {
			return err
		}
	}
	s.calls.Add(1)
	s.logger.Info("Script called host.", "moduleID", moduleID, "methodID", methodID, "args", text)
	return nil
}

func (s *logSink) OnBatchComplete() {
	s.batches.Add(1)
	s.logger.Debug("Call batch complete.", "batches", s.batches.Load())
}
