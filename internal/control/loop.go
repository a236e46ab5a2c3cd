package control

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/park285/cheese-connect4/internal/obslog"
	"github.com/park285/cheese-connect4/internal/session"
)

// Intent is a discrete input event delivered by the input collaborator.
type Intent int

const (
	MoveCursorLeft Intent = iota + 1
	MoveCursorRight
	PlaceAtCursor
	Quit
)

func (i Intent) String() string {
	switch i {
	case MoveCursorLeft:
		return "left"
	case MoveCursorRight:
		return "right"
	case PlaceAtCursor:
		return "place"
	case Quit:
		return "quit"
	default:
		return "unknown"
	}
}

// NoticeKind tells the renderer why a frame was produced besides the board.
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeRejected
	NoticeSendFailed
	NoticePeerLost
)

type Notice struct {
	Kind NoticeKind
	Err  error
}

// Renderer consumes immutable snapshots. Render must not block for long; it
// is called from both the input and receive activities.
type Renderer interface {
	Render(snap session.Snapshot, notice Notice)
}

// Transport is the move stream to the peer.
type Transport interface {
	Send(m session.Move) error
	Receive(onMove func(session.Move)) error
	Close() error
}

// FinishFunc receives the terminal snapshot and the full move log.
type FinishFunc func(ctx context.Context, snap session.Snapshot, moves []session.Placement)

type Options struct {
	OnFinish FinishFunc
}

// Loop drives one side of a match.
type Loop struct {
	sess     *session.Session
	tr       Transport
	renderer Renderer
	onFinish FinishFunc

	renderMu   sync.Mutex
	quitting   atomic.Bool
	finishOnce sync.Once
	wg         sync.WaitGroup
	ctx        context.Context
}

func New(sess *session.Session, tr Transport, r Renderer, opts Options) *Loop {
	return &Loop{
		sess:     sess,
		tr:       tr,
		renderer: r,
		onFinish: opts.OnFinish,
	}
}

// Run starts the receive activity and processes intents until Quit, a closed
// intent channel or ctx cancellation. It always tears down before returning.
func (l *Loop) Run(ctx context.Context, intents <-chan Intent) error {
	l.ctx = context.WithoutCancel(ctx)
	l.wg.Add(1)
	go l.receive()

	l.render(Notice{})
	for {
		select {
		case <-ctx.Done():
			l.teardown()
			return ctx.Err()
		case in, ok := <-intents:
			if !ok || in == Quit {
				l.teardown()
				return nil
			}
			l.handle(in)
		}
	}
}

func (l *Loop) handle(in Intent) {
	switch in {
	case MoveCursorLeft:
		l.sess.MoveCursor(-1)
		l.render(Notice{})
	case MoveCursorRight:
		l.sess.MoveCursor(+1)
		l.render(Notice{})
	case PlaceAtCursor:
		l.place()
	}
}

// place applies the local move before sending it so a failed send still
// leaves the local board consistent.
func (l *Loop) place() {
	col := l.sess.Cursor()
	row, err := l.sess.ApplyLocal(col)
	if err != nil {
		obslog.L().Debug("local_move_rejected", zap.Int("column", col), zap.Error(err))
		l.render(Notice{Kind: NoticeRejected, Err: err})
		return
	}
	obslog.L().Info("local_move_applied", zap.Int("column", col), zap.Int("row", row))

	if err := l.tr.Send(session.Move{Sender: l.sess.Local(), Column: col}); err != nil {
		obslog.L().Warn("send_failed", zap.Int("column", col), zap.Error(err))
		l.sess.MarkPeerLost()
		_ = l.tr.Close()
		l.render(Notice{Kind: NoticeSendFailed, Err: err})
		l.finishIfTerminal()
		return
	}
	l.render(Notice{})
	l.finishIfTerminal()
}

func (l *Loop) receive() {
	defer l.wg.Done()
	err := l.tr.Receive(l.applyRemote)
	if l.quitting.Load() {
		return
	}
	if err != nil {
		obslog.L().Warn("receive_failed", zap.Error(err))
	} else {
		obslog.L().Info("peer_closed")
	}
	if l.sess.MarkPeerLost() {
		l.render(Notice{Kind: NoticePeerLost, Err: err})
	}
	l.finishIfTerminal()
}

func (l *Loop) applyRemote(m session.Move) {
	row, err := l.sess.ApplyRemote(m)
	if err != nil {
		// Rejected remote moves are dropped without a notice.
		obslog.L().Debug("remote_move_rejected", zap.Stringer("sender", m.Sender), zap.Int("column", m.Column), zap.Error(err))
		return
	}
	obslog.L().Info("remote_move_applied", zap.Stringer("sender", m.Sender), zap.Int("column", m.Column), zap.Int("row", row))
	l.render(Notice{})
	l.finishIfTerminal()
}

// render snapshots and hands off under renderMu so frames reach the renderer
// in session order.
func (l *Loop) render(n Notice) {
	if l.renderer == nil {
		return
	}
	l.renderMu.Lock()
	defer l.renderMu.Unlock()
	l.renderer.Render(l.sess.Snapshot(), n)
}

func (l *Loop) finishIfTerminal() {
	snap := l.sess.Snapshot()
	if !snap.Outcome.Terminal() {
		return
	}
	l.finishOnce.Do(func() {
		obslog.L().Info("game_finished", zap.Stringer("outcome", snap.Outcome), zap.Int("moves", snap.Moves))
		if l.onFinish != nil {
			l.onFinish(l.ctx, snap, l.sess.Moves())
		}
	})
}

// teardown closes the stream to unblock the receive activity and waits for it.
func (l *Loop) teardown() {
	l.quitting.Store(true)
	if err := l.tr.Close(); err != nil {
		obslog.L().Debug("transport_close", zap.Error(err))
	}
	l.wg.Wait()
	l.finishIfTerminal()
}
