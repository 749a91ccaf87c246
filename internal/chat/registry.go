package chat

import (
	"sync"

	"github.com/hongjun500/linechat/internal/observe"
)

// Member is one joined session.
type Member struct {
	Client   *Client
	Nickname string
}

// Registry holds joined sessions and the remote address of every live
// connection. One mutex guards both maps and every broadcast enumeration.
type Registry struct {
	mu      sync.Mutex
	members map[*Client]string
	order   []*Client
	addrs   map[*Client]string
}

func NewRegistry() *Registry {
	return &Registry{
		members: make(map[*Client]string),
		addrs:   make(map[*Client]string),
	}
}

// Register adds c under nick.
func (r *Registry) Register(c *Client, nick string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[c]; ok {
		return ErrAlreadyRegistered
	}
	r.members[c] = nick
	r.order = append(r.order, c)
	observe.SetOnline(len(r.members))
	return nil
}

// Unregister removes c and reports whether it was present.
func (r *Registry) Unregister(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[c]; !ok {
		return false
	}
	delete(r.members, c)
	for i, o := range r.order {
		if o == c {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	observe.SetOnline(len(r.members))
	return true
}

// Snapshot copies the members in join order.
func (r *Registry) Snapshot() []Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Member, 0, len(r.order))
	for _, c := range r.order {
		out = append(out, Member{Client: c, Nickname: r.members[c]})
	}
	return out
}

// each calls fn for every member with the lock held; fn must not touch the registry.
func (r *Registry) each(fn func(Member)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.order {
		fn(Member{Client: c, Nickname: r.members[c]})
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Nicknames lists nicknames in join order.
func (r *Registry) Nicknames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.order))
	for _, c := range r.order {
		out = append(out, r.members[c])
	}
	return out
}

// TrackAddr records the remote address of a freshly accepted connection.
func (r *Registry) TrackAddr(c *Client, addr string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addrs[c] = addr
}

// ForgetAddr drops the address entry and reports whether it was present.
func (r *Registry) ForgetAddr(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.addrs[c]; !ok {
		return false
	}
	delete(r.addrs, c)
	return true
}

// Connections counts tracked addresses, joined or not.
func (r *Registry) Connections() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.addrs)
}
