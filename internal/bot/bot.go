package bot

import (
	"log/slog"
	"time"

	"github.com/botwire/botwire/internal/botapi"
)

// Bot owns everything one polling session needs: the API client, the ordered
// command table, the optional inline-query handler, and the offset cursor.
// The cursor and the Enabled flags are deliberately unsynchronized: the poll
// loop is the only writer, and it runs strictly sequentially.
type Bot struct {
	client *botapi.Client
	logger *slog.Logger
	inline func(botapi.InlineQuery) Action

	commands []*Command

	// offset is the acknowledgment watermark: last observed update_id + 1.
	// Written only by the poll loop; monotonically non-decreasing; held in
	// memory only, so a restart may re-deliver the last unacknowledged
	// update (at-least-once).
	offset int64

	// idle is how long Run sleeps after an empty fetch.
	idle time.Duration

	stats Stats
}

// Options configures a Bot.
type Options struct {
	// Commands is the application's command table, in dispatch order.
	// An implicit help command is always prepended.
	Commands []*Command

	// InlineHandler, when set, receives every inline query during dispatch.
	InlineHandler func(botapi.InlineQuery) Action

	// IdleInterval is the pause between polls when the backlog is empty.
	// Zero means the default.
	IdleInterval time.Duration
}

// New assembles a Bot around a client. logger may be nil.
func New(client *botapi.Client, logger *slog.Logger, opts Options) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	idle := opts.IdleInterval
	if idle <= 0 {
		idle = defaultIdleInterval
	}
	return &Bot{
		client:   client,
		logger:   logger,
		inline:   opts.InlineHandler,
		commands: assembleTable(opts.Commands),
		idle:     idle,
	}
}

// Commands returns the assembled table, help included. The slice is shared:
// callers may toggle Enabled on its entries (single writer), not reorder it.
func (b *Bot) Commands() []*Command {
	return b.commands
}

// Offset returns the current acknowledgment watermark.
func (b *Bot) Offset() int64 {
	return b.offset
}

// Stats returns the bot's counters for status reporting.
func (b *Bot) Stats() *Stats {
	return &b.stats
}
