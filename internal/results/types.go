package results

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/park285/cheese-connect4/internal/board"
	"github.com/park285/cheese-connect4/internal/session"
)

// Result is one side's record of a finished match. Each process records its
// own copy; the wire protocol carries no shared match id.
type Result struct {
	MatchID    string              `json:"match_id"`
	PlayerName string              `json:"player_name"`
	Local      board.Player        `json:"local"`
	Status     session.Status      `json:"status"`
	Winner     board.Player        `json:"winner"`
	Moves      []session.Placement `json:"moves"`
	FinalBoard string              `json:"final_board"`
	StartedAt  time.Time           `json:"started_at"`
	EndedAt    time.Time           `json:"ended_at"`
}

func NewMatchID() string { return uuid.NewString() }

// FromSnapshot builds a Result from the terminal snapshot and move log.
func FromSnapshot(matchID, name string, snap session.Snapshot, moves []session.Placement, startedAt, endedAt time.Time) *Result {
	return &Result{
		MatchID:    matchID,
		PlayerName: name,
		Local:      snap.Local,
		Status:     snap.Outcome.Status,
		Winner:     snap.Outcome.Winner,
		Moves:      append([]session.Placement(nil), moves...),
		FinalBoard: snap.Cells.String(),
		StartedAt:  startedAt,
		EndedAt:    endedAt,
	}
}

// Token is the short result code: "A", "B", "draw" or "abandoned".
func (r *Result) Token() string {
	switch r.Status {
	case session.StatusWin:
		return r.Winner.String()
	case session.StatusDraw:
		return "draw"
	default:
		return "abandoned"
	}
}

// Notation renders moves as space separated sender+column pairs with 1-based
// columns, e.g. "A4 B4 A5".
func Notation(moves []session.Placement) string {
	var b strings.Builder
	for i, m := range moves {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(m.Sender.String())
		b.WriteString(strconv.Itoa(m.Column + 1))
	}
	return b.String()
}

// ParseNotation is the inverse of Notation. Rows are recomputed by replay.
func ParseNotation(s string) ([]session.Placement, error) {
	var (
		out   []session.Placement
		cells board.Board
	)
	for _, tok := range strings.Fields(s) {
		if len(tok) < 2 {
			return nil, &NotationError{Token: tok}
		}
		var p board.Player
		switch tok[0] {
		case 'A':
			p = board.PlayerA
		case 'B':
			p = board.PlayerB
		default:
			return nil, &NotationError{Token: tok}
		}
		col, err := strconv.Atoi(tok[1:])
		if err != nil {
			return nil, &NotationError{Token: tok}
		}
		row, err := cells.DropRow(col - 1)
		if err != nil {
			return nil, &NotationError{Token: tok, Err: err}
		}
		cells.Place(row, col-1, p)
		out = append(out, session.Placement{Sender: p, Column: col - 1, Row: row})
	}
	return out, nil
}

type NotationError struct {
	Token string
	Err   error
}

func (e *NotationError) Error() string {
	if e.Err != nil {
		return "bad move " + strconv.Quote(e.Token) + ": " + e.Err.Error()
	}
	return "bad move " + strconv.Quote(e.Token)
}

func (e *NotationError) Unwrap() error { return e.Err }
