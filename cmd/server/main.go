package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hongjun500/linechat/internal/bus/redisstream"
	"github.com/hongjun500/linechat/internal/chat"
	"github.com/hongjun500/linechat/internal/chatlog"
	"github.com/hongjun500/linechat/internal/config"
	"github.com/hongjun500/linechat/internal/motd"
	"github.com/hongjun500/linechat/internal/observe"
	"github.com/hongjun500/linechat/internal/transport"
	"github.com/hongjun500/linechat/pkg/logger"
)

const shutdownGrace = 5 * time.Second

func parseFlags(cfg *config.Config) {
	flag.StringVar(&cfg.TCPAddr, "addr", cfg.TCPAddr, "listen address host:port")
	flag.IntVar(&cfg.RecvBuffer, "buffer", cfg.RecvBuffer, "receive buffer size in bytes")
	flag.IntVar(&cfg.OutBuffer, "outbuf", cfg.OutBuffer, "outgoing queue length per client")
	flag.DurationVar(&cfg.WriteTimeout, "write-timeout", cfg.WriteTimeout, "per-write deadline, 0 disables")
	flag.BoolVar(&cfg.LogEnabled, "log", cfg.LogEnabled, "append the transcript to the log file")
	flag.StringVar(&cfg.LogPath, "log-path", cfg.LogPath, "transcript file, relative to the binary unless absolute")
	flag.StringVar(&cfg.MOTDPath, "motd", cfg.MOTDPath, "message of the day file, relative to the binary unless absolute")
	flag.IntVar(&cfg.MaxNameAttempts, "name-attempts", cfg.MaxNameAttempts, "invalid nicknames before disconnect, 0 for unlimited")
	flag.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "serve /metrics and /healthz on this address")
	flag.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "mirror the transcript to a Redis stream at this address")
	flag.Parse()
}

func main() {
	cfg := config.Load()
	parseFlags(cfg)
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.S().Errorw("server_exit", "err", err)
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logOpts := []chatlog.Option{}
	if cfg.LogEnabled {
		logOpts = append(logOpts, chatlog.WithFile(cfg.Resolve(cfg.LogPath)))
	}
	if cfg.RedisAddr != "" {
		bus := redisstream.New(cfg.RedisAddr, 0, cfg.RedisStream)
		defer bus.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := bus.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.S().Warnw("redis_unreachable", "addr", cfg.RedisAddr, "err", err, "mirror", false)
		} else {
			logOpts = append(logOpts, chatlog.WithMirror(bus, 0))
		}
	}
	transcript := chatlog.New(logOpts...)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := transcript.Close(closeCtx); err != nil {
			logger.S().Warnw("transcript_mirror_flush", "err", err)
		}
	}()

	lines, err := motd.Load(cfg.Resolve(cfg.MOTDPath))
	if err != nil {
		logger.S().Warnw("motd_load_error", "path", cfg.MOTDPath, "err", err)
	}

	srv, err := chat.NewServer(
		chat.WithRecvBuffer(cfg.RecvBuffer),
		chat.WithOutBuffer(cfg.OutBuffer),
		chat.WithWriteTimeout(cfg.WriteTimeout),
		chat.WithMaxNameAttempts(cfg.MaxNameAttempts),
		chat.WithMOTD(lines),
		chat.WithTranscript(transcript),
	)
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	ln, err := transport.Listen(cfg.TCPAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.TCPAddr, err)
	}
	fmt.Println(cfg.Banner())
	fmt.Println()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := observe.StartHTTP(ctx, cfg.MetricsAddr); err != nil {
				logger.S().Warnw("metrics_http_error", "addr", cfg.MetricsAddr, "err", err)
			}
		}()
	}

	served := make(chan error, 1)
	// the listener closes in Shutdown, after the closing notice
	go func() { served <- srv.Serve(context.Background(), ln) }()
	logger.S().Infow("server_started", "addr", ln.Addr().String(), "motd_lines", len(lines), "log", cfg.LogEnabled)

	select {
	case <-ctx.Done():
		logger.S().Infow("server_stopping")
	case err := <-served:
		if !errors.Is(err, transport.ErrListenerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, chat.ErrServerClosed) {
		logger.S().Warnw("shutdown_incomplete", "err", err)
	}
	logger.S().Infow("server_stopped")
	return nil
}
