package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultTCPAddr      = "0.0.0.0:1927"
	DefaultRecvBuffer   = 1024
	DefaultOutBuffer    = 256
	DefaultWriteTimeout = 10 * time.Second
	DefaultLogPath      = "server.log"
	DefaultMOTDPath     = "motd.txt"
	DefaultRedisStream  = "chat:transcript"
)

var (
	ErrInvalidAddr     = errors.New("config: invalid listen address")
	ErrInvalidBuffer   = errors.New("config: buffer sizes must be positive")
	ErrInvalidAttempts = errors.New("config: name attempts must not be negative")
	ErrInvalidTimeout  = errors.New("config: write timeout must not be negative")
)

type Config struct {
	TCPAddr      string
	RecvBuffer   int
	OutBuffer    int
	WriteTimeout time.Duration

	LogEnabled bool
	LogPath    string
	MOTDPath   string
	BaseDir    string

	// MaxNameAttempts bounds nickname retries; 0 means unlimited.
	MaxNameAttempts int

	MetricsAddr string
	RedisAddr   string
	RedisStream string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func getBool(key string, def bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

// executableDir is where the server binary lives; relative files are looked up there.
func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// Load reads the configuration from CHAT_* environment variables.
func Load() *Config {
	return &Config{
		TCPAddr:         getEnv("CHAT_TCP_ADDR", DefaultTCPAddr),
		RecvBuffer:      getInt("CHAT_RECV_BUFFER", DefaultRecvBuffer),
		OutBuffer:       getInt("CHAT_OUTBUF", DefaultOutBuffer),
		WriteTimeout:    getDuration("CHAT_WRITE_TIMEOUT", DefaultWriteTimeout),
		LogEnabled:      getBool("CHAT_LOG_ENABLE", false),
		LogPath:         getEnv("CHAT_LOG_PATH", DefaultLogPath),
		MOTDPath:        getEnv("CHAT_MOTD_PATH", DefaultMOTDPath),
		BaseDir:         getEnv("CHAT_BASE_DIR", executableDir()),
		MaxNameAttempts: getInt("CHAT_NAME_ATTEMPTS", 0),
		MetricsAddr:     getEnv("CHAT_METRICS_ADDR", ""),
		RedisAddr:       getEnv("CHAT_REDIS_ADDR", ""),
		RedisStream:     getEnv("CHAT_REDIS_STREAM", DefaultRedisStream),
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.TCPAddr); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidAddr, c.TCPAddr, err)
	}
	if c.RecvBuffer <= 0 || c.OutBuffer <= 0 {
		return ErrInvalidBuffer
	}
	if c.MaxNameAttempts < 0 {
		return ErrInvalidAttempts
	}
	if c.WriteTimeout < 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// Resolve returns p unchanged when absolute, otherwise joined to BaseDir.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// Banner is printed at startup.
func (c *Config) Banner() string {
	host, port, err := net.SplitHostPort(c.TCPAddr)
	if err != nil {
		host, port = c.TCPAddr, "?"
	}
	var b strings.Builder
	b.WriteString("Server [")
	b.WriteString("\n\tHOST: " + host)
	b.WriteString("\n\tPORT: " + port)
	b.WriteString("\n\tBUFF: " + strconv.Itoa(c.RecvBuffer))
	b.WriteString("\n]")
	return b.String()
}
