package announce

import (
	"context"
	"encoding/base64"
	"fmt"

	"go.uber.org/zap"

	"github.com/park285/cheese-connect4/internal/board"
	"github.com/park285/cheese-connect4/internal/msgcat"
	"github.com/park285/cheese-connect4/internal/obslog"
	"github.com/park285/cheese-connect4/internal/results"
	"github.com/park285/cheese-connect4/internal/session"
)

// Egress sends text and images to a chat room. *Client implements it.
type Egress interface {
	SendText(ctx context.Context, room, message string) error
	SendImage(ctx context.Context, room, imageBase64 string) error
}

// Announcer posts a one-line summary, and optionally the final board image,
// to a chat room when a match ends.
type Announcer struct {
	client Egress
	cat    *msgcat.Catalog
	room   string
}

func NewAnnouncer(client Egress, cat *msgcat.Catalog, room string) *Announcer {
	return &Announcer{client: client, cat: cat, room: room}
}

// Text renders the summary for r.
func (a *Announcer) Text(r *results.Result) (string, error) {
	label := func(p board.Player) string {
		if p == r.Local {
			return fmt.Sprintf("%s (%s)", r.PlayerName, p)
		}
		return fmt.Sprintf("peer (%s)", p)
	}
	data := map[string]any{
		"MatchID": r.MatchID,
		"Moves":   len(r.Moves),
		"A":       label(board.PlayerA),
		"B":       label(board.PlayerB),
	}
	switch r.Status {
	case session.StatusWin:
		data["Winner"] = label(r.Winner)
		data["Loser"] = label(r.Winner.Opponent())
		return a.cat.Render("announce.win", data)
	case session.StatusDraw:
		return a.cat.Render("announce.draw", data)
	default:
		return a.cat.Render("announce.peer_lost", data)
	}
}

// Announce sends the text and, when png is non-empty, the board image.
func (a *Announcer) Announce(ctx context.Context, r *results.Result, png []byte) error {
	msg, err := a.Text(r)
	if err != nil {
		return fmt.Errorf("render announcement: %w", err)
	}
	if err := a.client.SendText(ctx, a.room, msg); err != nil {
		return fmt.Errorf("announce text: %w", err)
	}
	if len(png) > 0 {
		if err := a.client.SendImage(ctx, a.room, base64.StdEncoding.EncodeToString(png)); err != nil {
			return fmt.Errorf("announce image: %w", err)
		}
	}
	obslog.L().Info("match_announced", zap.String("match_id", r.MatchID), zap.String("room", a.room))
	return nil
}
