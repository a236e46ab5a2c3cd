package config

import (
	"errors"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONNECT4_ROLE", "CONNECT4_LISTEN_ADDR", "CONNECT4_PEER_ADDR", "CONNECT4_TRANSPORT",
		"CONNECT4_PLAYER_NAME", "CONNECT4_DIAL_TIMEOUT_SEC", "REDIS_URL", "DATABASE_URL",
		"IRIS_BASE_URL", "ANNOUNCE_ROOM", "X_USER_ID", "X_USER_EMAIL", "X_SESSION_ID",
		"BOARD_EXPORT_PATH", "MESSAGES_DIR",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Role != RoleHost || cfg.ListenAddr != ":0" || cfg.Transport != TransportTCP {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.DialTimeout != 10*time.Second {
		t.Fatalf("dial timeout = %s", cfg.DialTimeout)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONNECT4_ROLE", "JOIN")
	t.Setenv("CONNECT4_PEER_ADDR", "10.0.0.2:7000")
	t.Setenv("CONNECT4_TRANSPORT", "ws")
	t.Setenv("CONNECT4_DIAL_TIMEOUT_SEC", "3")
	t.Setenv("IRIS_BASE_URL", "http://iris:3000/")
	t.Setenv("ANNOUNCE_ROOM", "room-1")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Role != RoleJoin || cfg.PeerAddr != "10.0.0.2:7000" || cfg.Transport != TransportWS {
		t.Fatalf("unexpected %+v", cfg)
	}
	if cfg.DialTimeout != 3*time.Second || cfg.IrisBaseURL != "http://iris:3000" {
		t.Fatalf("unexpected %+v", cfg)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad role", map[string]string{"CONNECT4_ROLE": "spectate"}},
		{"bad transport", map[string]string{"CONNECT4_TRANSPORT": "udp"}},
		{"announce without iris", map[string]string{"ANNOUNCE_ROOM": "r"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestApplyArgs(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.ApplyArgs([]string{"alice"}); err != nil {
		t.Fatalf("host args: %v", err)
	}
	if cfg.PlayerName != "alice" || cfg.Role != RoleHost {
		t.Fatalf("unexpected %+v", cfg)
	}
	if err := cfg.ApplyArgs([]string{"bob", "::1", "4000"}); err != nil {
		t.Fatalf("join args: %v", err)
	}
	if cfg.Role != RoleJoin || cfg.PeerAddr != "[::1]:4000" {
		t.Fatalf("unexpected %+v", cfg)
	}

	for _, args := range [][]string{{"a", "b"}, {"a", "host", "port"}, {"a", "host", "70000"}} {
		if err := cfg.ApplyArgs(args); !errors.Is(err, ErrUsage) {
			t.Fatalf("ApplyArgs(%v) err = %v", args, err)
		}
	}
	fresh := &AppConfig{Role: RoleHost, Transport: TransportTCP}
	if err := fresh.ApplyArgs(nil); !errors.Is(err, ErrUsage) {
		t.Fatalf("missing name err = %v", err)
	}
}

func TestJoinRoleTakesPeerFromArgs(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONNECT4_ROLE", "join")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.ApplyArgs([]string{"alice", "host", "4000"}); err != nil {
		t.Fatalf("join args: %v", err)
	}
	if cfg.Role != RoleJoin || cfg.PeerAddr != "host:4000" {
		t.Fatalf("unexpected %+v", cfg)
	}
}

func TestJoinWithoutPeerFailsAfterArgs(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONNECT4_ROLE", "join")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.ApplyArgs([]string{"alice"}); err == nil || errors.Is(err, ErrUsage) {
		t.Fatalf("expected missing peer error, got %v", err)
	}
}
