// Command logtail prints the chat transcript mirrored to Redis by the server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/hongjun500/linechat/internal/bus/redisstream"
	"github.com/hongjun500/linechat/internal/chatlog"
	"github.com/hongjun500/linechat/internal/config"
)

func main() {
	cfg := config.Load()
	addr := flag.String("redis", cfg.RedisAddr, "redis address")
	stream := flag.String("stream", cfg.RedisStream, "stream key")
	all := flag.Bool("all", false, "print the whole stream instead of new entries only")
	flag.Parse()
	if *addr == "" {
		*addr = "127.0.0.1:6379"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bus := redisstream.New(*addr, 0, *stream)
	defer bus.Close()

	from := "$"
	if *all {
		from = "0"
	}
	err := bus.Tail(ctx, from, func(_ context.Context, m *redisstream.Message) error {
		fmt.Print(chatlog.Format(m.When.Local(), m.Text))
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "logtail: %v\n", err)
		os.Exit(1)
	}
}
