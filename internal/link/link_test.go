package link

import (
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/park285/cheese-connect4/internal/board"
	"github.com/park285/cheese-connect4/internal/session"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, sender := range []board.Player{board.PlayerA, board.PlayerB} {
		for col := 0; col < board.Cols; col++ {
			m := session.Move{Sender: sender, Column: col}
			rec, err := Encode(m)
			require.NoError(t, err)
			assert.Equal(t, Record{byte(sender), byte(col)}, rec)
			got, err := Decode(rec)
			require.NoError(t, err)
			assert.Equal(t, m, got)
		}
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	for _, rec := range []Record{{2, 9}, {1, 7}, {0, 3}, {3, 0}, {255, 255}} {
		_, err := Decode(rec)
		assert.ErrorIs(t, err, ErrMalformedRecord, "record % x", rec[:])
	}
	_, err := Encode(session.Move{Sender: board.None, Column: 1})
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func collect(t *testing.T, l *Link) (<-chan []session.Move, <-chan error) {
	t.Helper()
	movesCh := make(chan []session.Move, 1)
	errCh := make(chan error, 1)
	go func() {
		var got []session.Move
		err := l.Receive(func(m session.Move) { got = append(got, m) })
		movesCh <- got
		errCh <- err
	}()
	return movesCh, errCh
}

func TestReceiveDiscardsMalformedAndContinues(t *testing.T) {
	local, remote := net.Pipe()
	l := New(local)
	movesCh, errCh := collect(t, l)

	_, err := remote.Write([]byte{2, 9, 2, 4, 1, 0})
	require.NoError(t, err)
	require.NoError(t, remote.Close())

	select {
	case got := <-movesCh:
		assert.Equal(t, []session.Move{
			{Sender: board.PlayerB, Column: 4},
			{Sender: board.PlayerA, Column: 0},
		}, got)
	case <-time.After(2 * time.Second):
		t.Fatal("receive loop did not exit after EOF")
	}
	assert.NoError(t, <-errCh)
	assert.EqualValues(t, 1, l.Discarded())
}

func TestSendReachesPeer(t *testing.T) {
	a, b := net.Pipe()
	sender, receiver := New(a), New(b)
	movesCh, errCh := collect(t, receiver)

	require.NoError(t, sender.Send(session.Move{Sender: board.PlayerA, Column: 3}))
	require.NoError(t, sender.Send(session.Move{Sender: board.PlayerA, Column: 6}))
	require.NoError(t, sender.Close())

	got := <-movesCh
	assert.Equal(t, []session.Move{
		{Sender: board.PlayerA, Column: 3},
		{Sender: board.PlayerA, Column: 6},
	}, got)
	assert.NoError(t, <-errCh)
}

func TestSendFailsWhenPeerGone(t *testing.T) {
	a, b := net.Pipe()
	require.NoError(t, b.Close())
	err := New(a).Send(session.Move{Sender: board.PlayerA, Column: 0})
	assert.ErrorIs(t, err, ErrSend)
}

type shortWriter struct{ io.ReadCloser }

func (shortWriter) Write(p []byte) (int, error) { return 1, nil }

func TestSendShortWrite(t *testing.T) {
	l := New(shortWriter{ReadCloser: io.NopCloser(nil)})
	err := l.Send(session.Move{Sender: board.PlayerB, Column: 2})
	assert.ErrorIs(t, err, ErrSend)
}

func TestCloseUnblocksReceive(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()
	l := New(a)
	_, errCh := collect(t, l)

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not unblock Receive")
	}
}

func TestReceiveReportsPartialRecord(t *testing.T) {
	a, b := net.Pipe()
	l := New(a)
	_, errCh := collect(t, l)
	_, err := b.Write([]byte{1})
	require.NoError(t, err)
	require.NoError(t, b.Close())
	err = <-errCh
	require.Error(t, err)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}
