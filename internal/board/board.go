package board

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Rows      = 6
	Cols      = 7
	WinLength = 4
)

var (
	ErrColumnFull  = errors.New("column is full")
	ErrColumnRange = errors.New("column is out of range")
)

// Player identifies the occupant of a cell. The numeric values match the
// sender ids used on the wire.
type Player uint8

const (
	None    Player = 0
	PlayerA Player = 1
	PlayerB Player = 2
)

// Valid reports whether p is one of the two players.
func (p Player) Valid() bool { return p == PlayerA || p == PlayerB }

// Opponent returns the other player. None maps to None.
func (p Player) Opponent() Player {
	switch p {
	case PlayerA:
		return PlayerB
	case PlayerB:
		return PlayerA
	default:
		return None
	}
}

func (p Player) String() string {
	switch p {
	case PlayerA:
		return "A"
	case PlayerB:
		return "B"
	default:
		return "-"
	}
}

// Board is a value type; copying it yields an independent snapshot.
// Row 0 is the top row, Rows-1 the bottom.
type Board [Rows][Cols]Player

// InRange reports whether col addresses a column of the board.
func InRange(col int) bool { return col >= 0 && col < Cols }

// Cell returns the occupant at (row, col).
func (b *Board) Cell(row, col int) Player { return b[row][col] }

// DropRow scans col bottom-up and returns the first empty row.
func (b *Board) DropRow(col int) (int, error) {
	if !InRange(col) {
		return -1, fmt.Errorf("%w: %d", ErrColumnRange, col)
	}
	for r := Rows - 1; r >= 0; r-- {
		if b[r][col] == None {
			return r, nil
		}
	}
	return -1, fmt.Errorf("%w: %d", ErrColumnFull, col)
}

// Place writes p at (row, col). The row must come from DropRow.
func (b *Board) Place(row, col int, p Player) {
	b[row][col] = p
}

var axes = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// CheckWin reports whether the disc at (row, col) completes a run of
// WinLength for p on any axis. Only lines through (row, col) are inspected.
func (b *Board) CheckWin(row, col int, p Player) bool {
	if !p.Valid() {
		return false
	}
	for _, d := range axes {
		if b.countRun(row, col, d[0], d[1], p) >= WinLength {
			return true
		}
	}
	return false
}

// countRun counts contiguous p cells through (row, col) along (dr, dc) in
// both directions; the origin is counted once.
func (b *Board) countRun(row, col, dr, dc int, p Player) int {
	count := 0
	for r, c := row, col; inBounds(r, c) && b[r][c] == p; r, c = r+dr, c+dc {
		count++
	}
	for r, c := row-dr, col-dc; inBounds(r, c) && b[r][c] == p; r, c = r-dr, c-dc {
		count++
	}
	return count
}

// IsFull relies on gravity: a full top row means every column is full.
func (b *Board) IsFull() bool {
	for c := 0; c < Cols; c++ {
		if b[0][c] == None {
			return false
		}
	}
	return true
}

// Count returns how many cells p occupies.
func (b *Board) Count(p Player) int {
	n := 0
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if b[r][c] == p {
				n++
			}
		}
	}
	return n
}

// Settled reports whether the gravity invariant holds for every column.
func (b *Board) Settled() bool {
	for c := 0; c < Cols; c++ {
		for r := 0; r < Rows-1; r++ {
			if b[r][c] != None && b[r+1][c] == None {
				return false
			}
		}
	}
	return true
}

// String renders one line per row using '.', 'A' and 'B'.
func (b *Board) String() string {
	var sb strings.Builder
	sb.Grow(Rows * (Cols + 1))
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			switch b[r][c] {
			case PlayerA:
				sb.WriteByte('A')
			case PlayerB:
				sb.WriteByte('B')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Parse builds a board from the String form. Blank lines are ignored.
func Parse(s string) (Board, error) {
	var b Board
	lines := make([]string, 0, Rows)
	for _, ln := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(ln); t != "" {
			lines = append(lines, t)
		}
	}
	if len(lines) != Rows {
		return b, fmt.Errorf("parse board: want %d rows, got %d", Rows, len(lines))
	}
	for r, ln := range lines {
		if len(ln) != Cols {
			return b, fmt.Errorf("parse board: row %d has %d cells", r, len(ln))
		}
		for c := 0; c < Cols; c++ {
			switch ln[c] {
			case 'A':
				b[r][c] = PlayerA
			case 'B':
				b[r][c] = PlayerB
			case '.':
			default:
				return b, fmt.Errorf("parse board: bad cell %q at %d,%d", ln[c], r, c)
			}
		}
	}
	return b, nil
}

func inBounds(r, c int) bool { return r >= 0 && r < Rows && c >= 0 && c < Cols }
