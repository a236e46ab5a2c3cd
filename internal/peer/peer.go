package peer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/park285/cheese-connect4/internal/obslog"
)

const (
	TransportTCP = "tcp"
	TransportWS  = "ws"

	// PlayPath is the WebSocket upgrade route served by the host.
	PlayPath = "/play"
)

var ErrUnknownTransport = errors.New("unknown transport")

// Listen binds addr, reports the bound address through onBound and waits for
// exactly one peer. The listener is closed once a peer is connected or ctx
// ends.
func Listen(ctx context.Context, transport, addr string, onBound func(net.Addr)) (net.Conn, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	if onBound != nil {
		onBound(ln.Addr())
	}
	obslog.L().Info("peer_listening", zap.String("transport", transport), zap.Stringer("addr", ln.Addr()))

	switch transport {
	case TransportTCP:
		return acceptTCP(ctx, ln)
	case TransportWS:
		return acceptWS(ctx, ln)
	default:
		_ = ln.Close()
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, transport)
	}
}

func acceptTCP(ctx context.Context, ln net.Listener) (net.Conn, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		c, err := ln.Accept()
		ch <- result{c, err}
	}()

	select {
	case <-ctx.Done():
		_ = ln.Close()
		if r := <-ch; r.conn != nil {
			_ = r.conn.Close()
		}
		return nil, ctx.Err()
	case r := <-ch:
		_ = ln.Close()
		if r.err != nil {
			return nil, fmt.Errorf("accept: %w", r.err)
		}
		obslog.L().Info("peer_connected", zap.Stringer("remote", r.conn.RemoteAddr()))
		return r.conn, nil
	}
}

func acceptWS(ctx context.Context, ln net.Listener) (net.Conn, error) {
	conns := make(chan net.Conn, 1)

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get(PlayPath, func(w http.ResponseWriter, req *http.Request) {
		c, err := websocket.Accept(w, req, &websocket.AcceptOptions{
			CompressionMode: websocket.CompressionDisabled,
		})
		if err != nil {
			obslog.L().Warn("ws_accept_failed", zap.Error(err))
			return
		}
		// The socket outlives this handler, so it is bound to Background.
		nc := websocket.NetConn(context.Background(), c, websocket.MessageBinary)
		select {
		case conns <- nc:
			obslog.L().Info("peer_connected", zap.String("remote", req.RemoteAddr))
		default:
			_ = c.Close(websocket.StatusPolicyViolation, "match already has two players")
		}
	})

	srv := &http.Server{Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			obslog.L().Warn("ws_serve_failed", zap.Error(err))
		}
	}()

	select {
	case <-ctx.Done():
		_ = srv.Close()
		return nil, ctx.Err()
	case c := <-conns:
		// Hijacked sockets are not tracked by the server; closing it only
		// stops further upgrades.
		_ = srv.Close()
		return c, nil
	}
}

// Dial connects to a hosting peer, giving up after timeout.
func Dial(ctx context.Context, transport, addr string, timeout time.Duration) (net.Conn, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	switch transport {
	case TransportTCP:
		var d net.Dialer
		c, err := d.DialContext(dialCtx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", addr, err)
		}
		obslog.L().Info("peer_connected", zap.Stringer("remote", c.RemoteAddr()))
		return c, nil
	case TransportWS:
		url := "ws://" + addr + PlayPath
		c, _, err := websocket.Dial(dialCtx, url, &websocket.DialOptions{
			CompressionMode: websocket.CompressionDisabled,
		})
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", url, err)
		}
		obslog.L().Info("peer_connected", zap.String("remote", url))
		return websocket.NetConn(context.Background(), c, websocket.MessageBinary), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, transport)
	}
}
