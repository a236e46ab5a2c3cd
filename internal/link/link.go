package link

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/park285/cheese-connect4/internal/obslog"
	"github.com/park285/cheese-connect4/internal/session"
)

// ErrSend marks a move that could not be written in full.
var ErrSend = errors.New("send move")

// Link carries moves over an established byte stream. Send may be called
// from one goroutine while Receive runs in another.
type Link struct {
	rw io.ReadWriteCloser

	wmu       sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error

	discarded atomic.Int64
}

func New(rw io.ReadWriteCloser) *Link {
	return &Link{rw: rw}
}

// Send writes one record. A short write or a write error is reported as ErrSend.
func (l *Link) Send(m session.Move) error {
	rec, err := Encode(m)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSend, err)
	}
	l.wmu.Lock()
	n, err := l.rw.Write(rec[:])
	l.wmu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSend, err)
	}
	if n != RecordSize {
		return fmt.Errorf("%w: short write %d/%d", ErrSend, n, RecordSize)
	}
	return nil
}

// Receive reads records until the stream ends, invoking onMove for each
// well-formed one before reading the next. Malformed records are dropped.
// It returns nil when the peer closes the stream or Close was called.
func (l *Link) Receive(onMove func(session.Move)) error {
	var rec Record
	for {
		if _, err := io.ReadFull(l.rw, rec[:]); err != nil {
			if errors.Is(err, io.EOF) || l.closed.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("receive move: %w", err)
		}
		m, err := Decode(rec)
		if err != nil {
			l.discarded.Add(1)
			obslog.L().Debug("link_record_discarded", zap.Binary("record", rec[:]), zap.Error(err))
			continue
		}
		onMove(m)
	}
}

// Discarded returns how many malformed records Receive has dropped.
func (l *Link) Discarded() int64 { return l.discarded.Load() }

// Close closes the underlying stream once; a pending Receive unblocks.
func (l *Link) Close() error {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		l.closeErr = l.rw.Close()
	})
	return l.closeErr
}
