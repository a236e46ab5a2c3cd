package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

type Role string

const (
	RoleHost Role = "host"
	RoleJoin Role = "join"
)

const (
	TransportTCP = "tcp"
	TransportWS  = "ws"
)

var ErrUsage = errors.New("usage: connect4 <username> [<peer-host> <peer-port>]")

type AppConfig struct {
	Role        Role
	PlayerName  string
	ListenAddr  string
	PeerAddr    string
	Transport   string
	DialTimeout time.Duration

	RedisURL    string
	DatabaseURL string

	IrisBaseURL  string
	AnnounceRoom string
	XUserID      string
	XUserEmail   string
	XSessionID   string

	BoardExportPath string
	MessagesDir     string
}

// Load reads CONNECT4_* and collaborator settings from the environment.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Role:        RoleHost,
		ListenAddr:  ":0",
		Transport:   TransportTCP,
		DialTimeout: 10 * time.Second,
	}

	if v := strings.ToLower(strings.TrimSpace(os.Getenv("CONNECT4_ROLE"))); v != "" {
		cfg.Role = Role(v)
	}
	if v := strings.TrimSpace(os.Getenv("CONNECT4_LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	cfg.PeerAddr = strings.TrimSpace(os.Getenv("CONNECT4_PEER_ADDR"))
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("CONNECT4_TRANSPORT"))); v != "" {
		cfg.Transport = v
	}
	cfg.PlayerName = strings.TrimSpace(os.Getenv("CONNECT4_PLAYER_NAME"))
	if v := strings.TrimSpace(os.Getenv("CONNECT4_DIAL_TIMEOUT_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DialTimeout = time.Duration(n) * time.Second
		}
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	cfg.IrisBaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("IRIS_BASE_URL")), "/")
	cfg.AnnounceRoom = strings.TrimSpace(os.Getenv("ANNOUNCE_ROOM"))
	cfg.XUserID = strings.TrimSpace(os.Getenv("X_USER_ID"))
	cfg.XUserEmail = strings.TrimSpace(os.Getenv("X_USER_EMAIL"))
	cfg.XSessionID = strings.TrimSpace(os.Getenv("X_SESSION_ID"))

	cfg.BoardExportPath = strings.TrimSpace(os.Getenv("BOARD_EXPORT_PATH"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))

	// The peer address may still arrive through ApplyArgs.
	if err := cfg.validateSettings(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyArgs applies the positional form <username> [<peer-host> <peer-port>].
// A peer address switches the role to join.
func (c *AppConfig) ApplyArgs(args []string) error {
	switch len(args) {
	case 0:
	case 1:
		c.PlayerName = strings.TrimSpace(args[0])
	case 3:
		c.PlayerName = strings.TrimSpace(args[0])
		port, err := strconv.Atoi(args[2])
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("%w: invalid port %q", ErrUsage, args[2])
		}
		c.PeerAddr = net.JoinHostPort(args[1], strconv.Itoa(port))
		c.Role = RoleJoin
	default:
		return ErrUsage
	}
	if c.PlayerName == "" {
		return ErrUsage
	}
	return c.Validate()
}

// Validate checks a fully assembled config.
func (c *AppConfig) Validate() error {
	if err := c.validateSettings(); err != nil {
		return err
	}
	if c.Role == RoleJoin && c.PeerAddr == "" {
		return errors.New("CONNECT4_PEER_ADDR is required to join")
	}
	return nil
}

func (c *AppConfig) validateSettings() error {
	switch c.Role {
	case RoleHost, RoleJoin:
	default:
		return fmt.Errorf("CONNECT4_ROLE must be host or join, got %q", c.Role)
	}
	switch c.Transport {
	case TransportTCP, TransportWS:
	default:
		return fmt.Errorf("CONNECT4_TRANSPORT must be tcp or ws, got %q", c.Transport)
	}
	if c.AnnounceRoom != "" && c.IrisBaseURL == "" {
		return errors.New("IRIS_BASE_URL is required when ANNOUNCE_ROOM is set")
	}
	return nil
}
