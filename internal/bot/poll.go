package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/botwire/botwire/internal/botapi"
	"github.com/botwire/botwire/internal/metrics"
	"github.com/botwire/botwire/internal/wire"
)

const (
	maxConsecutivePollErrors = 5
	errorPauseDuration       = 30 * time.Second
	defaultIdleInterval      = 2 * time.Second
)

// noUpdateDescription is the sentinel failure for "the backlog was empty".
// Callers treat it as no data, not as a real error.
const noUpdateDescription = "Could not get head"

// IsNoUpdate reports whether a poll failure is the empty-backlog sentinel,
// so callers do not have to compare description strings.
func IsNoUpdate(err error) bool {
	var apiErr *wire.APIError
	return errors.As(err, &apiErr) && apiErr.Description == noUpdateDescription
}

// peekUpdate fetches the oldest unacknowledged update without advancing the
// cursor or acknowledging anything.
func (b *Bot) peekUpdate(ctx context.Context) (wire.Result[botapi.Update], error) {
	return b.fetchOne(ctx, 0)
}

// fetchOne requests at most one update at the given offset and extracts the
// head of the returned list.
func (b *Bot) fetchOne(ctx context.Context, offset int64) (wire.Result[botapi.Update], error) {
	body, err := wire.Object(
		wire.Req("offset", offset),
		wire.Req("limit", 1),
	)
	if err != nil {
		return wire.Result[botapi.Update]{}, err
	}

	res, err := b.client.Invoke(ctx, "getUpdates", body)
	if err != nil {
		return wire.Result[botapi.Update]{}, err
	}

	updates := wire.DecodeAs[[]botapi.Update](res)
	if !updates.OK() {
		return wire.Fail[botapi.Update](updates.Err()), nil
	}
	if len(updates.Value()) == 0 {
		return wire.Fail[botapi.Update](&wire.APIError{Description: noUpdateDescription}), nil
	}
	return wire.Ok(updates.Value()[0]), nil
}

// PollOnce runs one poll step: fetch at most one update at the current
// offset, advance the cursor past it, acknowledge it, and, when dispatch is
// set, route it to the inline handler or the command table.
//
// Dispatch precedence is inline query first, then command match, then
// pass-through; exactly one path runs. The first two paths return a stub
// Update carrying only the update id; pass-through returns the update
// unchanged. An empty backlog returns the no-update sentinel failure.
//
// Acknowledgment is a second getUpdates call with the advanced offset and
// limit 0, issued purely so the remote drops the observed update; its result
// is discarded. The two calls are not atomic: a crash between them
// re-delivers the update on restart. That at-least-once property is
// deliberate, not a bug.
func (b *Bot) PollOnce(ctx context.Context, dispatch bool) (wire.Result[botapi.Update], error) {
	res, err := b.fetchOne(ctx, b.offset)
	if err != nil {
		return wire.Result[botapi.Update]{}, err
	}
	if !res.OK() {
		if IsNoUpdate(res.Err()) {
			metrics.IncUpdate("empty")
		}
		return res, nil
	}

	update := res.Value()
	if next := update.UpdateID + 1; next > b.offset {
		b.offset = next
	}
	b.stats.RecordUpdate(update.UpdateID)
	metrics.IncUpdate(updateKind(update))

	ack, err := wire.Object(
		wire.Req("offset", b.offset),
		wire.Req("limit", 0),
	)
	if err != nil {
		return wire.Result[botapi.Update]{}, err
	}
	if _, err := b.client.Invoke(ctx, "getUpdates", ack); err != nil {
		return wire.Result[botapi.Update]{}, err
	}

	if !dispatch {
		return wire.Ok(update), nil
	}
	return b.dispatch(ctx, update)
}

// dispatch routes one update. Only one of the three paths runs.
func (b *Bot) dispatch(ctx context.Context, update botapi.Update) (wire.Result[botapi.Update], error) {
	stub := botapi.Update{UpdateID: update.UpdateID}

	if update.InlineQuery != nil && b.inline != nil {
		b.stats.RecordInline()
		if err := b.Evaluate(ctx, b.inline(*update.InlineQuery)); err != nil {
			return wire.Result[botapi.Update]{}, err
		}
		return wire.Ok(stub), nil
	}

	if update.Message != nil {
		if action, matched := Match(*update.Message, b.commands); matched {
			b.stats.RecordCommand()
			metrics.IncCommand(commandToken(update.Message.Text))
			if err := b.Evaluate(ctx, action); err != nil {
				return wire.Result[botapi.Update]{}, err
			}
			return wire.Ok(stub), nil
		}
	}

	return wire.Ok(update), nil
}

// Run polls until the context is cancelled, dispatching every update. The
// no-update sentinel idles briefly instead of hammering the API; repeated
// transport failures pause polling before trying again.
func (b *Bot) Run(ctx context.Context) error {
	consecutiveErrors := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		res, err := b.PollOnce(ctx, true)
		if err != nil {
			consecutiveErrors++
			b.stats.RecordPollError()
			metrics.IncPollError()
			b.logger.Error("poll failed",
				"error", err,
				"consecutive_errors", consecutiveErrors,
			)

			if consecutiveErrors >= maxConsecutivePollErrors {
				b.logger.Warn("polling paused after consecutive errors",
					"pause", errorPauseDuration,
				)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(errorPauseDuration):
				}
				consecutiveErrors = 0
			}
			continue
		}
		consecutiveErrors = 0

		if !res.OK() {
			if !IsNoUpdate(res.Err()) {
				b.logger.Warn("poll returned failure", "description", res.Description())
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.idle):
			}
			continue
		}

		b.logger.Debug("update handled", "update_id", res.Value().UpdateID)
	}
}

// updateKind names the populated payload field of an update.
func updateKind(u botapi.Update) string {
	switch {
	case u.Message != nil:
		return "message"
	case u.InlineQuery != nil:
		return "inline_query"
	case u.ChosenInlineResult != nil:
		return "chosen_inline_result"
	case u.CallbackQuery != nil:
		return "callback_query"
	default:
		return "unknown"
	}
}

// commandToken extracts the bare command name from message text for metric
// labels: first token, leading slash and @suffix stripped.
func commandToken(text string) string {
	token := text
	if fields := strings.Fields(text); len(fields) > 0 {
		token = fields[0]
	}
	token, _, _ = strings.Cut(token, "@")
	return strings.TrimPrefix(token, "/")
}
