// Package access gates every inbound command: a channel-scope filter first,
// then the allow-list. The scope filter rejects silently so group chats are
// not cluttered with denial replies; the allow-list denial is user-visible.
package access

import (
	"strings"

	"github.com/okmeder/mailgate/internal/settings"
)

// Commands usable outside a private chat (inside supergroup topics).
var topicCommands = map[string]bool{
	"/bindtopic": true,
}

// ScopeAllowed reports whether a command may run in the given chat type.
// A false result means the interaction is dropped without any reply.
func ScopeAllowed(chatType, text string) bool {
	if chatType == "private" {
		return true
	}
	command := strings.ToLower(strings.SplitN(strings.TrimSpace(text), " ", 2)[0])
	// Strip a /cmd@botname suffix
	if i := strings.Index(command, "@"); i > 0 {
		command = command[:i]
	}
	return topicCommands[command]
}

// Admit enforces the allow-list. It runs before every handler, including
// read-only ones.
func Admit(s settings.Settings, userID string) bool {
	return s.Allowed(userID)
}
