// Package bot contains the parts of the client with real control flow: the
// deferred-action algebra, the evaluator that turns action values into
// sequenced API calls, the long-polling loop with offset acknowledgment, and
// command dispatch.
package bot

import (
	"github.com/botwire/botwire/internal/botapi"
	"github.com/botwire/botwire/internal/wire"
)

// Action is one deferred unit of work. Actions are plain values: constructing
// one never performs I/O, and handlers compose them freely before anything
// touches the network. Each value is meant to be evaluated exactly once;
// evaluating it again repeats its side effect.
//
// The set of variants is closed (unexported marker method). Continuation-
// bearing variants carry a Then function from the call's decoded result to
// the next Action; a nil Then, or a nil Action returned from it, terminates
// the chain like Nothing.
type Action interface {
	isAction()
}

// Nothing is the terminal no-op.
type Nothing struct{}

// Chain sequences two actions, discarding the first's outcome.
type Chain struct {
	First  Action
	Second Action
}

// SendMessage posts a text message. Fire-and-forget: a failure is logged and
// dropped. Use a continuation-bearing variant when the outcome matters.
type SendMessage struct {
	ChatID         int64
	Text           string
	DisablePreview bool
	ReplyTo        *int
}

// ForwardMessage forwards an existing message to another chat.
type ForwardMessage struct {
	ChatID     int64
	FromChatID int64
	MessageID  int
}

// SendChatAction broadcasts a chat action such as "typing".
type SendChatAction struct {
	ChatID int64
	Action string
}

// SendLocation posts a point on the map.
type SendLocation struct {
	ChatID    int64
	Latitude  float64
	Longitude float64
	ReplyTo   *int
}

// AnswerInlineQuery replies to an inline query with article results.
type AnswerInlineQuery struct {
	QueryID   string
	Results   []botapi.InlineQueryResultArticle
	CacheTime *int
}

// ResendPhoto sends a photo the API already holds, by file id. No upload
// happens; pair it with a SendPhoto continuation that captured the id.
type ResendPhoto struct {
	ChatID  int64
	FileID  string
	Caption string
	ReplyTo *int
}

// ResendAudio sends an already-uploaded audio file by file id.
type ResendAudio struct {
	ChatID  int64
	FileID  string
	ReplyTo *int
}

// ResendVoice sends an already-uploaded voice note by file id.
type ResendVoice struct {
	ChatID  int64
	FileID  string
	ReplyTo *int
}

// ResendDocument sends an already-uploaded document by file id.
type ResendDocument struct {
	ChatID  int64
	FileID  string
	Caption string
	ReplyTo *int
}

// ResendSticker sends an already-uploaded sticker by file id.
type ResendSticker struct {
	ChatID  int64
	FileID  string
	ReplyTo *int
}

// ResendVideo sends an already-uploaded video by file id.
type ResendVideo struct {
	ChatID  int64
	FileID  string
	Caption string
	ReplyTo *int
}

// GetMe fetches the bot's own account and hands it to Then.
type GetMe struct {
	Then func(wire.Result[botapi.User]) Action
}

// SendPhoto uploads a local photo. Then receives the file id the API
// assigned, so later sends can use ResendPhoto.
type SendPhoto struct {
	ChatID  int64
	Path    string
	Caption string
	Then    func(wire.Result[string]) Action
}

// SendAudio uploads a local audio file. Then receives the new file id.
type SendAudio struct {
	ChatID int64
	Path   string
	Then   func(wire.Result[string]) Action
}

// SendVoice uploads a local voice note. Then receives the new file id.
type SendVoice struct {
	ChatID int64
	Path   string
	Then   func(wire.Result[string]) Action
}

// SendDocument uploads a local document. Then receives the new file id.
type SendDocument struct {
	ChatID  int64
	Path    string
	Caption string
	Then    func(wire.Result[string]) Action
}

// SendSticker uploads a local sticker. Then receives the new file id.
type SendSticker struct {
	ChatID int64
	Path   string
	Then   func(wire.Result[string]) Action
}

// SendVideo uploads a local video. Then receives the new file id.
type SendVideo struct {
	ChatID  int64
	Path    string
	Caption string
	Then    func(wire.Result[string]) Action
}

// GetUserProfilePhotos fetches a user's profile photos.
type GetUserProfilePhotos struct {
	UserID int64
	Offset *int
	Limit  *int
	Then   func(wire.Result[botapi.UserProfilePhotos]) Action
}

// GetFile resolves a file id to a downloadable path.
type GetFile struct {
	FileID string
	Then   func(wire.Result[botapi.File]) Action
}

// GetFileData resolves a file id and downloads its bytes in one step.
// Then receives (nil, false) when the file has no path or resolution fails;
// this side channel carries no failure description.
type GetFileData struct {
	FileID string
	Then   func(data []byte, ok bool) Action
}

// DownloadFile fetches raw bytes for an already-resolved file path.
// Then receives (nil, false) when the path is empty.
type DownloadFile struct {
	FilePath string
	Then     func(data []byte, ok bool) Action
}

// GetUpdates fetches a batch of pending updates without touching the
// poll loop's offset cursor.
type GetUpdates struct {
	Offset  *int64
	Limit   *int
	Timeout *int
	Then    func(wire.Result[[]botapi.Update]) Action
}

// PeekUpdate fetches the oldest unacknowledged update without advancing or
// acknowledging anything.
type PeekUpdate struct {
	Then func(wire.Result[botapi.Update]) Action
}

// PopUpdate runs one full poll step (fetch, advance the offset, acknowledge,
// and optionally dispatch) and hands the externally visible update to Then.
type PopUpdate struct {
	RunCommands bool
	Then        func(wire.Result[botapi.Update]) Action
}

func (Nothing) isAction()              {}
func (Chain) isAction()                {}
func (SendMessage) isAction()          {}
func (ForwardMessage) isAction()       {}
func (SendChatAction) isAction()       {}
func (SendLocation) isAction()         {}
func (AnswerInlineQuery) isAction()    {}
func (ResendPhoto) isAction()          {}
func (ResendAudio) isAction()          {}
func (ResendVoice) isAction()          {}
func (ResendDocument) isAction()       {}
func (ResendSticker) isAction()        {}
func (ResendVideo) isAction()          {}
func (GetMe) isAction()                {}
func (SendPhoto) isAction()            {}
func (SendAudio) isAction()            {}
func (SendVoice) isAction()            {}
func (SendDocument) isAction()         {}
func (SendSticker) isAction()          {}
func (SendVideo) isAction()            {}
func (GetUserProfilePhotos) isAction() {}
func (GetFile) isAction()              {}
func (GetFileData) isAction()          {}
func (DownloadFile) isAction()         {}
func (GetUpdates) isAction()           {}
func (PeekUpdate) isAction()           {}
func (PopUpdate) isAction()            {}

// continueWith feeds a result to a continuation, treating a nil continuation
// or a nil returned Action as Nothing.
func continueWith[T any](then func(wire.Result[T]) Action, r wire.Result[T]) Action {
	if then == nil {
		return Nothing{}
	}
	if next := then(r); next != nil {
		return next
	}
	return Nothing{}
}

// continueWithData is continueWith for the two side-channel download actions.
func continueWithData(then func([]byte, bool) Action, data []byte, ok bool) Action {
	if then == nil {
		return Nothing{}
	}
	if next := then(data, ok); next != nil {
		return next
	}
	return Nothing{}
}
