package peer

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/park285/cheese-connect4/internal/board"
	"github.com/park285/cheese-connect4/internal/link"
	"github.com/park285/cheese-connect4/internal/session"
)

func connectPair(t *testing.T, transport string) (host, guest net.Conn) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bound := make(chan net.Addr, 1)
	type result struct {
		conn net.Conn
		err  error
	}
	hostCh := make(chan result, 1)
	go func() {
		c, err := Listen(ctx, transport, "127.0.0.1:0", func(a net.Addr) { bound <- a })
		hostCh <- result{c, err}
	}()

	addr := (<-bound).String()
	guest, err := Dial(ctx, transport, addr, time.Second)
	require.NoError(t, err)
	r := <-hostCh
	require.NoError(t, r.err)
	t.Cleanup(func() {
		_ = r.conn.Close()
		_ = guest.Close()
	})
	return r.conn, guest
}

func exchange(t *testing.T, host, guest net.Conn) {
	t.Helper()
	hl, gl := link.New(host), link.New(guest)

	got := make(chan session.Move, 4)
	done := make(chan error, 1)
	go func() { done <- hl.Receive(func(m session.Move) { got <- m }) }()

	require.NoError(t, gl.Send(session.Move{Sender: board.PlayerB, Column: 5}))
	select {
	case m := <-got:
		assert.Equal(t, session.Move{Sender: board.PlayerB, Column: 5}, m)
	case <-time.After(2 * time.Second):
		t.Fatal("move not delivered")
	}

	require.NoError(t, gl.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("host did not observe peer close")
	}
}

func TestTCPListenDial(t *testing.T) {
	host, guest := connectPair(t, TransportTCP)
	exchange(t, host, guest)
}

func TestWebSocketListenDial(t *testing.T) {
	host, guest := connectPair(t, TransportWS)
	exchange(t, host, guest)
}

func TestListenCancelled(t *testing.T) {
	for _, tr := range []string{TransportTCP, TransportWS} {
		t.Run(tr, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			bound := make(chan net.Addr, 1)
			done := make(chan error, 1)
			go func() {
				_, err := Listen(ctx, tr, "127.0.0.1:0", func(a net.Addr) { bound <- a })
				done <- err
			}()
			addr := <-bound
			cancel()
			require.ErrorIs(t, <-done, context.Canceled)

			// listener is gone
			_, err := net.DialTimeout("tcp", addr.String(), 200*time.Millisecond)
			assert.Error(t, err)
		})
	}
}

func TestUnknownTransport(t *testing.T) {
	_, err := Dial(context.Background(), "udp", "127.0.0.1:1", time.Second)
	assert.True(t, errors.Is(err, ErrUnknownTransport))
	_, err = Listen(context.Background(), "udp", "127.0.0.1:0", nil)
	assert.ErrorIs(t, err, ErrUnknownTransport)
}

func TestDialRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = Dial(context.Background(), TransportTCP, addr, 500*time.Millisecond)
	require.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF))
}
