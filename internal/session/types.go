package session

import (
	"errors"
	"fmt"

	"github.com/park285/cheese-connect4/internal/board"
)

// Status represents the lifecycle of a session.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusWin        Status = "WIN"
	StatusDraw       Status = "DRAW"
	StatusPeerLost   Status = "PEER_LOST"
)

// Outcome is InProgress, Win(Winner), Draw or PeerLost.
type Outcome struct {
	Status Status
	Winner board.Player
}

func (o Outcome) Terminal() bool { return o.Status != StatusInProgress }

func (o Outcome) String() string {
	if o.Status == StatusWin {
		return fmt.Sprintf("%s(%s)", o.Status, o.Winner)
	}
	return string(o.Status)
}

// Move is a single disc drop. Sender is authoritative on the receiving side.
type Move struct {
	Sender board.Player
	Column int
}

// Placement records an applied move with its landing row.
type Placement struct {
	Sender board.Player
	Column int
	Row    int
}

// Snapshot is an immutable copy of everything a renderer needs.
type Snapshot struct {
	Cells   board.Board
	Turn    board.Player
	Outcome Outcome
	Cursor  int
	Local   board.Player
	Moves   int
	Last    Placement // valid when Moves > 0
	Version uint64
}

// MyTurn reports whether the local player may move in this snapshot.
func (s Snapshot) MyTurn() bool {
	return !s.Outcome.Terminal() && s.Turn == s.Local
}

// Rejection reasons. All of them wrap ErrRejected.
var (
	ErrRejected    = errors.New("move rejected")
	ErrGameOver    = fmt.Errorf("%w: game is over", ErrRejected)
	ErrNotYourTurn = fmt.Errorf("%w: not your turn", ErrRejected)
	ErrColumnFull  = fmt.Errorf("%w: column is full", ErrRejected)
	ErrColumnRange = fmt.Errorf("%w: column out of range", ErrRejected)
	ErrOwnMove     = fmt.Errorf("%w: remote move claims local identity", ErrRejected)
	ErrBadSender   = fmt.Errorf("%w: unknown sender", ErrRejected)
)

var ErrInvalidIdentity = errors.New("local identity must be PlayerA or PlayerB")
