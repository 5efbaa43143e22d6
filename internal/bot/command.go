package bot

import (
	"strings"

	"github.com/botwire/botwire/internal/botapi"
)

// Command is one entry of the bot's ordered command table. Enabled may be
// toggled at runtime by the embedding application; it has a single writer
// and is read by dispatch on every message. Disabled commands are skipped
// by dispatch but still listed by help.
type Command struct {
	Name        string
	Description string
	Enabled     bool
	Handler     func(botapi.Message) Action
}

// assembleTable prepends the implicit help command to the registered ones.
// The help handler lists every command, enabled or not.
func assembleTable(commands []*Command) []*Command {
	help := &Command{
		Name:        "help",
		Description: "Show this message",
		Enabled:     true,
	}
	table := append([]*Command{help}, commands...)
	help.Handler = func(msg botapi.Message) Action {
		return SendMessage{ChatID: msg.Chat.ID, Text: helpText(table)}
	}
	return table
}

// helpText renders one "/name - description" line per command, in
// registration order, regardless of the Enabled flag.
func helpText(table []*Command) string {
	var sb strings.Builder
	for _, cmd := range table {
		sb.WriteString("/")
		sb.WriteString(cmd.Name)
		sb.WriteString(" - ")
		sb.WriteString(cmd.Description)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Match resolves an inbound message against the command table. A message is
// eligible only if its text starts with "/". The first whitespace-delimited
// token is compared case-sensitively against "/"+name after stripping any
// "@botname" suffix, so "/cmd@thisbot" addresses the command in shared group
// chats. The first enabled match wins, in registration order. When nothing
// matches, Match returns (Nothing, false).
func Match(msg botapi.Message, table []*Command) (Action, bool) {
	if msg.Text == "" || !strings.HasPrefix(msg.Text, "/") {
		return Nothing{}, false
	}

	token := msg.Text
	if fields := strings.Fields(msg.Text); len(fields) > 0 {
		token = fields[0]
	}
	token, _, _ = strings.Cut(token, "@")

	for _, cmd := range table {
		if !cmd.Enabled {
			continue
		}
		if token != "/"+cmd.Name {
			continue
		}
		if cmd.Handler == nil {
			return Nothing{}, true
		}
		if a := cmd.Handler(msg); a != nil {
			return a, true
		}
		return Nothing{}, true
	}
	return Nothing{}, false
}
