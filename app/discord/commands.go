package discord

import (
	"strings"
	"unicode"
)

// Command names understood by the bot, without prefix.
const (
	CommandPing    = "ping"
	CommandTrack   = "track"
	CommandUntrack = "untrack"
)

// Command is a parsed chat command.
type Command struct {
	Name string
	Args string
}

// ParseCommand splits content on its first whitespace into a command word and
// the remainder. It reports false when content does not start with prefix
// or names an unknown command. The remainder is trimmed at both ends with
// its inner spacing kept, so "!track Hide on bush" has Args "Hide on bush".
func ParseCommand(content, prefix string) (Command, bool) {
	content = strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return Command{}, false
	}

	word, rest := content, ""
	if i := strings.IndexFunc(content, unicode.IsSpace); i >= 0 {
		word, rest = content[:i], content[i:]
	}
	name := strings.TrimPrefix(word, prefix)

	switch name {
	case CommandPing, CommandTrack, CommandUntrack:
		return Command{Name: name, Args: strings.TrimSpace(rest)}, true
	default:
		return Command{}, false
	}
}
