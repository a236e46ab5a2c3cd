package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/park285/cheese-connect4/internal/announce"
	"github.com/park285/cheese-connect4/internal/board"
	appcfg "github.com/park285/cheese-connect4/internal/config"
	"github.com/park285/cheese-connect4/internal/control"
	"github.com/park285/cheese-connect4/internal/export"
	"github.com/park285/cheese-connect4/internal/link"
	"github.com/park285/cheese-connect4/internal/msgcat"
	"github.com/park285/cheese-connect4/internal/obslog"
	"github.com/park285/cheese-connect4/internal/peer"
	"github.com/park285/cheese-connect4/internal/results"
	"github.com/park285/cheese-connect4/internal/session"
	"github.com/park285/cheese-connect4/internal/tui"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := appcfg.Load()
	if err == nil {
		err = cfg.ApplyArgs(os.Args[1:])
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, appcfg.ErrUsage) {
			return 2
		}
		return 1
	}
	if err := obslog.InitFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		return 1
	}
	defer obslog.Sync()

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "messages error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, local, err := connect(ctx, cfg, cat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect error: %v\n", err)
		return 1
	}
	fmt.Fprintln(os.Stderr, cat.Text("peer.connected", map[string]any{
		"Addr": conn.RemoteAddr().String(), "Player": local.String(),
	}))

	sess, err := session.New(local)
	if err != nil {
		_ = conn.Close()
		fmt.Fprintf(os.Stderr, "session error: %v\n", err)
		return 1
	}

	fin := newFinisher(ctx, cfg, cat)
	defer fin.close()

	bridge := tui.NewBridge()
	intents := make(chan control.Intent, 16)
	loopDone := make(chan struct{})
	loop := control.New(sess, link.New(conn), bridge, control.Options{OnFinish: fin.finish})

	model := tui.NewModel(cat, cfg.PlayerName, sess.Snapshot(), intents, loopDone)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	pumpCtx, stopPump := context.WithCancel(ctx)
	go bridge.Pump(pumpCtx, p.Send)

	var loopErr error
	go func() {
		defer close(loopDone)
		loopErr = loop.Run(ctx, intents)
		p.Quit()
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		obslog.L().Warn("tui_exit", zap.Error(err))
	}
	stopPump()
	select {
	case intents <- control.Quit:
	case <-loopDone:
	}
	<-loopDone
	fin.wait()

	if loopErr != nil && !errors.Is(loopErr, context.Canceled) {
		fmt.Fprintf(os.Stderr, "game loop error: %v\n", loopErr)
		return 1
	}
	fmt.Println(summary(cat, cfg.PlayerName, sess.Snapshot()))
	return 0
}

func connect(ctx context.Context, cfg *appcfg.AppConfig, cat *msgcat.Catalog) (net.Conn, board.Player, error) {
	if cfg.Role == appcfg.RoleJoin {
		fmt.Fprintln(os.Stderr, cat.Text("peer.dialing", map[string]any{"Addr": cfg.PeerAddr, "Transport": cfg.Transport}))
		c, err := peer.Dial(ctx, cfg.Transport, cfg.PeerAddr, cfg.DialTimeout)
		return c, board.PlayerB, err
	}
	c, err := peer.Listen(ctx, cfg.Transport, cfg.ListenAddr, func(a net.Addr) {
		fmt.Fprintln(os.Stderr, cat.Text("peer.listening", map[string]any{"Addr": a.String(), "Transport": cfg.Transport}))
	})
	return c, board.PlayerA, err
}

func summary(cat *msgcat.Catalog, name string, snap session.Snapshot) string {
	data := map[string]any{"Name": name, "Player": snap.Outcome.Winner.String()}
	switch snap.Outcome.Status {
	case session.StatusWin:
		if snap.Outcome.Winner == snap.Local {
			return cat.Text("status.win_local", data)
		}
		return cat.Text("status.win_remote", data)
	case session.StatusDraw:
		return cat.Text("status.draw", data)
	case session.StatusPeerLost:
		return cat.Text("status.peer_lost", data)
	default:
		return ""
	}
}

// finisher records, exports and announces a finished match off the game's
// goroutines.
type finisher struct {
	cfg       *appcfg.AppConfig
	cat       *msgcat.Catalog
	matchID   string
	startedAt time.Time

	recorders results.Multi
	closers   []func() error
	announcer *announce.Announcer

	wg sync.WaitGroup
}

func newFinisher(ctx context.Context, cfg *appcfg.AppConfig, cat *msgcat.Catalog) *finisher {
	f := &finisher{cfg: cfg, cat: cat, matchID: results.NewMatchID(), startedAt: time.Now()}

	if cfg.RedisURL != "" {
		store, err := results.OpenStore(ctx, cfg.RedisURL)
		if err != nil {
			obslog.L().Warn("results_store_unavailable", zap.Error(err))
		} else {
			f.recorders = append(f.recorders, store)
			f.closers = append(f.closers, store.Close)
		}
	}
	if cfg.DatabaseURL != "" {
		repo, err := results.NewRepository(ctx, cfg.DatabaseURL)
		if err == nil {
			err = repo.EnsureSchema(ctx)
			if err != nil {
				_ = repo.Close()
			}
		}
		if err != nil {
			obslog.L().Warn("results_repository_unavailable", zap.Error(err))
		} else {
			f.recorders = append(f.recorders, repo)
			f.closers = append(f.closers, repo.Close)
		}
	}
	if cfg.AnnounceRoom != "" {
		client := announce.NewClient(cfg.IrisBaseURL, announce.WithHeaderProvider(func() map[string]string {
			h := map[string]string{}
			if cfg.XUserID != "" {
				h["X-User-Id"] = cfg.XUserID
			}
			if cfg.XUserEmail != "" {
				h["X-User-Email"] = cfg.XUserEmail
			}
			if cfg.XSessionID != "" {
				h["X-Session-Id"] = cfg.XSessionID
			}
			return h
		}))
		f.announcer = announce.NewAnnouncer(client, cat, cfg.AnnounceRoom)
	}
	obslog.L().Info("match_started", zap.String("match_id", f.matchID), zap.Int("recorders", len(f.recorders)))
	return f
}

func (f *finisher) finish(ctx context.Context, snap session.Snapshot, moves []session.Placement) {
	res := results.FromSnapshot(f.matchID, f.cfg.PlayerName, snap, moves, f.startedAt, time.Now())
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		if len(f.recorders) > 0 {
			if err := f.recorders.Save(ctx, res); err != nil {
				obslog.L().Warn("result_save_failed", zap.String("match_id", res.MatchID), zap.Error(err))
			}
		}

		var png []byte
		if f.cfg.BoardExportPath != "" || f.announcer != nil {
			opts := export.Options{
				Title:   f.cat.Text("title", nil),
				Caption: fmt.Sprintf("%s - %s - %d moves", f.cfg.PlayerName, snap.Outcome, snap.Moves),
			}
			var err error
			if f.cfg.BoardExportPath != "" {
				png, err = export.WriteFile(ctx, f.cfg.BoardExportPath, snap, opts)
			} else {
				png, err = export.RenderPNG(ctx, snap, opts)
			}
			if err != nil {
				obslog.L().Warn("board_export_failed", zap.Error(err))
			}
		}

		if f.announcer != nil {
			if err := f.announcer.Announce(ctx, res, png); err != nil {
				obslog.L().Warn("announce_failed", zap.String("match_id", res.MatchID), zap.Error(err))
			}
		}
	}()
}

func (f *finisher) wait() { f.wg.Wait() }

func (f *finisher) close() {
	for _, c := range f.closers {
		_ = c()
	}
}
