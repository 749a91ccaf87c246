package command

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hongjun500/linechat/internal/observe"
)

// Target is the session a command runs against.
type Target interface {
	Nickname() string
	// Leave starts the clean-leave path of the session.
	Leave()
}

type Context struct {
	Target Target
	Args   []string
	Raw    string
}

type HandlerFunc func(ctx *Context) error

type Command struct {
	Name    string
	Aliases []string
	Help    string
	// Exact commands match only when written without arguments.
	Exact   bool
	Handler HandlerFunc
}

type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Command
	list   []*Command
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Command),
		list:   make([]*Command, 0),
	}
}

func (r *Registry) Register(cmd *Command) (err error) {
	if cmd == nil {
		return errors.New("command is nil")
	}
	if cmd.Handler == nil {
		return fmt.Errorf("command %s has no handler", cmd.Name)
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return errors.New("command name is empty")
	}
	if strings.Contains(name, "/") {
		return fmt.Errorf("command name must not contain '/':%s", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("command %s already registered", name)
	}
	aliases := make([]string, 0, len(cmd.Aliases))
	for _, item := range cmd.Aliases {
		alias := strings.TrimSpace(item)
		if alias == "" {
			continue
		}
		if _, exists := r.byName[alias]; exists || alias == name {
			return fmt.Errorf("command alias %s already registered", alias)
		}
		aliases = append(aliases, alias)
	}
	r.byName[name] = cmd
	for _, alias := range aliases {
		r.byName[alias] = cmd
	}
	r.list = append(r.list, cmd)
	return nil
}

// Get looks name up as written; "/LEAVE" does not match "leave".
func (r *Registry) Get(name string) (*Command, bool) {
	k := strings.TrimPrefix(strings.TrimSpace(name), "/")
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.byName[k]
	return cmd, ok
}

func (r *Registry) List() []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Command, len(r.list))
	copy(out, r.list)
	return out
}

// Execute runs raw when it names a registered command. Anything else,
// including unknown slash words, is reported as not handled so the caller
// can treat it as ordinary chat text.
func (r *Registry) Execute(raw string, ctx *Context) (handled bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") {
		return false, nil
	}
	parts := strings.Fields(raw)
	cmd, ok := r.Get(parts[0])
	if !ok || (cmd.Exact && len(parts) > 1) {
		return false, nil
	}
	if ctx == nil {
		ctx = &Context{}
	}
	ctx.Raw = raw
	ctx.Args = parts[1:]
	observe.IncCommand(cmd.Name)
	if err := cmd.Handler(ctx); err != nil {
		observe.IncCommandError("handler")
		return true, err
	}
	return true, nil
}
