package proxyexecutor

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/scriptbridge/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Event names of the proxy protocol.
const (
	EventRequest = "request"
	EventReply   = "reply"
)

// Conn is the message transport the executor needs.
type Conn interface {
	Emit(event string, payload []byte)
	On(event string, handler func(args ...any))
	Close()
}

// DialOptions configures Dial.
type DialOptions struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// Dial connects a socket.io client and waits for the connect event.
func Dial(ctx context.Context, opts DialOptions) (Conn, error) {
	ctx = ctxlog.With(ctx, "component", "proxyexecutor", "url", opts.URL)
	logger := ctxlog.FromContext(ctx)
	logger.Info("Connecting to remote engine...")

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	ioOpts := socket.DefaultOptions()
	ioOpts.SetPath(parsedURL.Path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		ioOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	ioOpts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, ioOpts)
	io := manager.Socket(opts.Namespace, ioOpts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to remote engine", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &socketConn{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %v waiting for socket.io connection", timeout)
	}
}

type socketConn struct {
	io *socket.Socket
}

func (c *socketConn) Emit(event string, payload []byte) {
	c.io.Emit(event, payload)
}

func (c *socketConn) On(event string, handler func(args ...any)) {
	c.io.On(types.EventName(event), handler)
}

func (c *socketConn) Close() {
	c.io.Disconnect()
}
