package consumer

import (
	"strings"

	"tcpchat/internal/chat"
)

// Action is what one line of user input asks for.
type Action struct {
	Command chat.Command // nil when there is nothing to send
	Quit    bool
}

// ParseInput maps a typed line to an Action:
//
//	/nick <name>, /nickname <name>  change nickname
//	/quit                           leave
//	anything else                   send as a message
//
// Surrounding whitespace is trimmed; a blank line yields an empty Action.
func ParseInput(line string) Action {
	line = strings.TrimSpace(line)
	if line == "" {
		return Action{}
	}

	word, rest, _ := strings.Cut(line, " ")
	switch word {
	case "/quit":
		return Action{Quit: true}
	case "/nick", "/nickname":
		name := strings.TrimSpace(rest)
		if name == "" {
			return Action{}
		}
		return Action{Command: chat.ChangeNickname{Name: name}}
	default:
		return Action{Command: chat.SendMessage{Text: line}}
	}
}
