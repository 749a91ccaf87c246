package chat

import "strings"

// ServerLabel marks notices generated by the server itself.
const ServerLabel = "SERVER"

// Envelope is one outgoing chat message. An empty Label means the body is sent as is.
type Envelope struct {
	Label string
	Body  string
}

// Raw is an unlabeled envelope.
func Raw(body string) Envelope { return Envelope{Body: body} }

// Notice is an envelope labeled SERVER.
func Notice(body string) Envelope { return Envelope{Label: ServerLabel, Body: body} }

// From is an envelope labeled with the sender's nickname.
func From(nick, body string) Envelope { return Envelope{Label: nick, Body: body} }

// String is the wire form: "[<label>] <body>" or the bare body.
func (e Envelope) String() string {
	if e.Label == "" {
		return e.Body
	}
	return "[" + e.Label + "] " + strings.TrimSpace(e.Body)
}

func (e Envelope) kind() string {
	switch e.Label {
	case "":
		return "raw"
	case ServerLabel:
		return "server"
	default:
		return "user"
	}
}
