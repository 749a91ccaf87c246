package command

import "errors"

var errNoTarget = errors.New("command needs a session")

// RegisterBuiltins installs the commands every session understands.
func RegisterBuiltins(r *Registry) error {
	return r.Register(&Command{
		Name:  "leave",
		Help:  "leave the server",
		Exact: true,
		Handler: func(ctx *Context) error {
			if ctx.Target == nil {
				return errNoTarget
			}
			ctx.Target.Leave()
			return nil
		},
	})
}

// Builtins returns a registry holding only the builtin commands.
func Builtins() *Registry {
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		panic(err)
	}
	return r
}
