package announce

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/park285/cheese-connect4/internal/board"
	"github.com/park285/cheese-connect4/internal/msgcat"
	"github.com/park285/cheese-connect4/internal/results"
	"github.com/park285/cheese-connect4/internal/session"
)

type relay struct {
	mu       sync.Mutex
	requests []replyRequest
	headers  []string
	statuses []int // consumed per request; 200 afterwards
}

func (r *relay) handle(ctx *fasthttp.RequestCtx) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if string(ctx.Path()) != "/reply" || !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		return
	}
	var req replyRequest
	_ = json.Unmarshal(ctx.PostBody(), &req)
	r.requests = append(r.requests, req)
	r.headers = append(r.headers, string(ctx.Request.Header.Peek("X-User-ID")))
	if len(r.statuses) > 0 {
		code := r.statuses[0]
		r.statuses = r.statuses[1:]
		ctx.SetStatusCode(code)
		ctx.SetBodyString("nope")
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
}

func startRelay(t *testing.T, statuses ...int) (*relay, *Client) {
	t.Helper()
	rl := &relay{statuses: statuses}
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: rl.handle}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })

	c := NewClient("http://relay.local/",
		WithDial(func(string) (net.Conn, error) { return ln.Dial() }),
		WithTimeout(2*time.Second),
		WithHeaderProvider(func() map[string]string { return map[string]string{"X-User-ID": "bot", "X-Empty": " "} }),
	)
	return rl, c
}

func winResult() *results.Result {
	return &results.Result{
		MatchID:    "m-1",
		PlayerName: "alice",
		Local:      board.PlayerA,
		Status:     session.StatusWin,
		Winner:     board.PlayerA,
		Moves:      make([]session.Placement, 7),
	}
}

func TestSendTextPostsReply(t *testing.T) {
	rl, c := startRelay(t)
	require.NoError(t, c.SendText(context.Background(), "room-1", "hello"))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	require.Len(t, rl.requests, 1)
	assert.Equal(t, replyRequest{Type: "text", Room: "room-1", Data: "hello"}, rl.requests[0])
	assert.Equal(t, "bot", rl.headers[0])
}

func TestRetryOnServerError(t *testing.T) {
	rl, c := startRelay(t, 503, 502)
	require.NoError(t, c.SendText(context.Background(), "r", "x"))
	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.requests, 3)
}

func TestNoRetryOnClientError(t *testing.T) {
	rl, c := startRelay(t, 400)
	err := c.SendText(context.Background(), "r", "x")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 400, se.Code)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.requests, 1)
}

func TestAnnounceTextAndImage(t *testing.T) {
	rl, c := startRelay(t)
	cat, err := msgcat.New("")
	require.NoError(t, err)
	a := NewAnnouncer(c, cat, "room-9")

	require.NoError(t, a.Announce(context.Background(), winResult(), []byte{0x89, 'P', 'N', 'G'}))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	require.Len(t, rl.requests, 2)
	assert.Equal(t, "text", rl.requests[0].Type)
	assert.Contains(t, rl.requests[0].Data, "alice (A) won against peer (B) in 7 moves")
	assert.Equal(t, "image", rl.requests[1].Type)
	assert.Equal(t, "iVBORw==", rl.requests[1].Data)
}

func TestAnnouncementTexts(t *testing.T) {
	cat, err := msgcat.New("")
	require.NoError(t, err)
	a := NewAnnouncer(nil, cat, "")

	r := winResult()
	r.Local = board.PlayerB
	txt, err := a.Text(r)
	require.NoError(t, err)
	assert.Contains(t, txt, "peer (A) won against alice (B)")

	r.Status = session.StatusDraw
	txt, err = a.Text(r)
	require.NoError(t, err)
	assert.Contains(t, txt, "drew")

	r.Status = session.StatusPeerLost
	txt, err = a.Text(r)
	require.NoError(t, err)
	assert.True(t, strings.Contains(txt, "connection lost"))
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, backoffDuration(0))
	assert.Equal(t, 400*time.Millisecond, backoffDuration(3))
	assert.Equal(t, backoffDuration(6), backoffDuration(10))
}
