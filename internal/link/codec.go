package link

import (
	"errors"
	"fmt"

	"github.com/park285/cheese-connect4/internal/board"
	"github.com/park285/cheese-connect4/internal/session"
)

// RecordSize is the fixed length of one wire record: [sender][column].
const RecordSize = 2

// Record is a single encoded move.
type Record [RecordSize]byte

var ErrMalformedRecord = errors.New("malformed record")

// Encode packs m into its wire form.
func Encode(m session.Move) (Record, error) {
	if !m.Sender.Valid() || !board.InRange(m.Column) {
		return Record{}, fmt.Errorf("%w: sender=%d column=%d", ErrMalformedRecord, m.Sender, m.Column)
	}
	return Record{byte(m.Sender), byte(m.Column)}, nil
}

// Decode unpacks a record. A sender outside {1,2} or a column outside the
// board yields ErrMalformedRecord.
func Decode(r Record) (session.Move, error) {
	m := session.Move{Sender: board.Player(r[0]), Column: int(r[1])}
	if !m.Sender.Valid() || !board.InRange(m.Column) {
		return session.Move{}, fmt.Errorf("%w: % x", ErrMalformedRecord, r[:])
	}
	return m, nil
}
