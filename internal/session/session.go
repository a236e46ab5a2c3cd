package session

import (
	"sync"

	"github.com/park285/cheese-connect4/internal/board"
)

// Session owns one side's copy of the game. Every method takes the lock for
// the duration of the call only; nothing here performs I/O.
type Session struct {
	local board.Player

	mu      sync.Mutex
	cells   board.Board
	turn    board.Player
	outcome Outcome
	cursor  int
	moves   []Placement
	version uint64
}

// New creates a session with an empty board. PlayerA always moves first.
func New(local board.Player) (*Session, error) {
	if !local.Valid() {
		return nil, ErrInvalidIdentity
	}
	return &Session{
		local:   local,
		turn:    board.PlayerA,
		outcome: Outcome{Status: StatusInProgress},
		cursor:  board.Cols / 2,
		moves:   make([]Placement, 0, board.Rows*board.Cols),
	}, nil
}

// Local returns the player this process controls.
func (s *Session) Local() board.Player { return s.local }

// ApplyLocal drops a disc for the local player and returns the landing row.
func (s *Session) ApplyLocal(col int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcome.Terminal() {
		return -1, ErrGameOver
	}
	if s.turn != s.local {
		return -1, ErrNotYourTurn
	}
	return s.apply(s.local, col, s.local.Opponent())
}

// ApplyRemote applies a move received from the peer. The sender field decides
// whose disc lands; afterwards the turn returns to the local player.
func (s *Session) ApplyRemote(m Move) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcome.Terminal() {
		return -1, ErrGameOver
	}
	if !m.Sender.Valid() {
		return -1, ErrBadSender
	}
	if m.Sender == s.local {
		return -1, ErrOwnMove
	}
	return s.apply(m.Sender, m.Column, s.local)
}

// apply must be called with mu held. State is untouched on error.
func (s *Session) apply(p board.Player, col int, next board.Player) (int, error) {
	if !board.InRange(col) {
		return -1, ErrColumnRange
	}
	row, err := s.cells.DropRow(col)
	if err != nil {
		return -1, ErrColumnFull
	}
	s.cells.Place(row, col, p)
	s.moves = append(s.moves, Placement{Sender: p, Column: col, Row: row})
	s.version++

	switch {
	case s.cells.CheckWin(row, col, p):
		s.outcome = Outcome{Status: StatusWin, Winner: p}
	case s.cells.IsFull():
		s.outcome = Outcome{Status: StatusDraw}
	default:
		s.turn = next
	}
	return row, nil
}

// MarkPeerLost ends an in-progress game without a winner. It reports whether
// the transition happened; a finished game keeps its outcome.
func (s *Session) MarkPeerLost() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome.Terminal() {
		return false
	}
	s.outcome = Outcome{Status: StatusPeerLost}
	s.version++
	return true
}

// MoveCursor shifts the advisory column hint, clamped to the board.
func (s *Session) MoveCursor(delta int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome.Terminal() {
		return s.cursor
	}
	c := s.cursor + delta
	if c < 0 {
		c = 0
	}
	if c > board.Cols-1 {
		c = board.Cols - 1
	}
	if c != s.cursor {
		s.cursor = c
		s.version++
	}
	return c
}

func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

func (s *Session) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// Snapshot copies board, turn, outcome and cursor under one acquisition.
// Version orders snapshots: a larger value reflects every earlier change.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Cells:   s.cells,
		Turn:    s.turn,
		Outcome: s.outcome,
		Cursor:  s.cursor,
		Local:   s.local,
		Moves:   len(s.moves),
		Version: s.version,
	}
	if n := len(s.moves); n > 0 {
		snap.Last = s.moves[n-1]
	}
	return snap
}

// Moves returns a copy of the applied move log in order.
func (s *Session) Moves() []Placement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Placement(nil), s.moves...)
}
