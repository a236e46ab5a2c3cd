package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/park285/cheese-connect4/internal/control"
	"github.com/park285/cheese-connect4/internal/session"
)

// FrameMsg carries a snapshot from the control loop into the program.
type FrameMsg struct {
	Snap   session.Snapshot
	Notice control.Notice
}

// Bridge implements control.Renderer without ever blocking the caller. Frames
// are coalesced: only the newest snapshot is delivered, together with the
// most recent notice that has not been shown yet. A snapshot older than one
// already accepted is dropped; its notice rides on the newer snapshot.
type Bridge struct {
	mu      sync.Mutex
	pending FrameMsg
	has     bool
	wake    chan struct{}
}

func NewBridge() *Bridge {
	return &Bridge{wake: make(chan struct{}, 1)}
}

func (b *Bridge) Render(snap session.Snapshot, notice control.Notice) {
	b.mu.Lock()
	if snap.Version < b.pending.Snap.Version {
		if notice.Kind == control.NoticeNone {
			b.mu.Unlock()
			return
		}
		snap = b.pending.Snap
	}
	if notice.Kind == control.NoticeNone && b.has {
		notice = b.pending.Notice
	}
	b.pending = FrameMsg{Snap: snap, Notice: notice}
	b.has = true
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Pump delivers pending frames through send until ctx ends. send is
// typically (*tea.Program).Send.
func (b *Bridge) Pump(ctx context.Context, send func(tea.Msg)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.wake:
		}
		b.mu.Lock()
		msg, ok := b.pending, b.has
		b.has = false
		b.mu.Unlock()
		if ok {
			send(msg)
		}
	}
}
