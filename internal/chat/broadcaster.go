package chat

import (
	"context"

	"github.com/hongjun500/linechat/internal/chatlog"
	"github.com/hongjun500/linechat/internal/observe"
)

// Broadcaster delivers envelopes to every registered session.
type Broadcaster struct {
	reg *Registry
	log *chatlog.Logger
}

func NewBroadcaster(reg *Registry, log *chatlog.Logger) *Broadcaster {
	return &Broadcaster{reg: reg, log: log}
}

// Broadcast writes env to the transcript, then queues it for every member.
// Queuing happens under the registry lock, so a concurrent join or leave is
// seen either entirely before or entirely after the message. A failing member
// is skipped; its own session removes it.
func (b *Broadcaster) Broadcast(env Envelope) {
	line := env.String()
	b.log.Log(line)
	observe.IncMessage(env.kind())
	b.reg.each(func(m Member) {
		m.Client.Send(line)
	})
}

// Notify broadcasts a SERVER notice.
func (b *Broadcaster) Notify(body string) { b.Broadcast(Notice(body)) }

// Drain waits until every member's queue has been written or ctx is done.
func (b *Broadcaster) Drain(ctx context.Context) error {
	for _, m := range b.reg.Snapshot() {
		if err := m.Client.Flush(ctx); err != nil {
			return err
		}
	}
	return nil
}
