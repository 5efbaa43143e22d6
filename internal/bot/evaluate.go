package bot

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/botwire/botwire/internal/botapi"
	"github.com/botwire/botwire/internal/wire"
)

// Evaluate executes an action chain against the API: one call at a time,
// trampolined, until Nothing is reached. The returned error is a transport
// failure only; envelope failures (ok:false) and decode failures travel into
// continuations as failed Results, and it is the continuation's business to
// branch on them. No call is ever retried here.
//
// Fire-and-forget sends have nowhere to report a failed envelope, so those
// are logged and dropped.
func (b *Bot) Evaluate(ctx context.Context, a Action) error {
	for {
		if a == nil {
			return nil
		}

		switch act := a.(type) {
		case Nothing:
			return nil

		case Chain:
			if err := b.Evaluate(ctx, act.First); err != nil {
				return err
			}
			a = act.Second

		case SendMessage:
			return b.send(ctx, "sendMessage",
				wire.Req("chat_id", act.ChatID),
				wire.Req("text", act.Text),
				wire.OptIf("disable_web_page_preview", true, act.DisablePreview),
				wire.Opt("reply_to_message_id", act.ReplyTo),
			)

		case ForwardMessage:
			return b.send(ctx, "forwardMessage",
				wire.Req("chat_id", act.ChatID),
				wire.Req("from_chat_id", act.FromChatID),
				wire.Req("message_id", act.MessageID),
			)

		case SendChatAction:
			return b.send(ctx, "sendChatAction",
				wire.Req("chat_id", act.ChatID),
				wire.Req("action", act.Action),
			)

		case SendLocation:
			return b.send(ctx, "sendLocation",
				wire.Req("chat_id", act.ChatID),
				wire.Req("latitude", act.Latitude),
				wire.Req("longitude", act.Longitude),
				wire.Opt("reply_to_message_id", act.ReplyTo),
			)

		case AnswerInlineQuery:
			results, err := json.Marshal(act.Results)
			if err != nil {
				return err
			}
			return b.send(ctx, "answerInlineQuery",
				wire.Req("inline_query_id", act.QueryID),
				wire.Req("results", json.RawMessage(results)),
				wire.Opt("cache_time", act.CacheTime),
			)

		case ResendPhoto:
			return b.resend(ctx, "sendPhoto", "photo", act.ChatID, act.FileID, act.Caption, act.ReplyTo)
		case ResendAudio:
			return b.resend(ctx, "sendAudio", "audio", act.ChatID, act.FileID, "", act.ReplyTo)
		case ResendVoice:
			return b.resend(ctx, "sendVoice", "voice", act.ChatID, act.FileID, "", act.ReplyTo)
		case ResendDocument:
			return b.resend(ctx, "sendDocument", "document", act.ChatID, act.FileID, act.Caption, act.ReplyTo)
		case ResendSticker:
			return b.resend(ctx, "sendSticker", "sticker", act.ChatID, act.FileID, "", act.ReplyTo)
		case ResendVideo:
			return b.resend(ctx, "sendVideo", "video", act.ChatID, act.FileID, act.Caption, act.ReplyTo)

		case GetMe:
			res, err := b.client.Get(ctx, "getMe")
			if err != nil {
				return err
			}
			a = continueWith(act.Then, wire.DecodeAs[botapi.User](res))

		case SendPhoto:
			next, err := b.upload(ctx, "sendPhoto", "photo", act.ChatID, act.Path, act.Caption, act.Then)
			if err != nil {
				return err
			}
			a = next
		case SendAudio:
			next, err := b.upload(ctx, "sendAudio", "audio", act.ChatID, act.Path, "", act.Then)
			if err != nil {
				return err
			}
			a = next
		case SendVoice:
			next, err := b.upload(ctx, "sendVoice", "voice", act.ChatID, act.Path, "", act.Then)
			if err != nil {
				return err
			}
			a = next
		case SendDocument:
			next, err := b.upload(ctx, "sendDocument", "document", act.ChatID, act.Path, act.Caption, act.Then)
			if err != nil {
				return err
			}
			a = next
		case SendSticker:
			next, err := b.upload(ctx, "sendSticker", "sticker", act.ChatID, act.Path, "", act.Then)
			if err != nil {
				return err
			}
			a = next
		case SendVideo:
			next, err := b.upload(ctx, "sendVideo", "video", act.ChatID, act.Path, act.Caption, act.Then)
			if err != nil {
				return err
			}
			a = next

		case GetUserProfilePhotos:
			body, err := wire.Object(
				wire.Req("user_id", act.UserID),
				wire.Opt("offset", act.Offset),
				wire.Opt("limit", act.Limit),
			)
			if err != nil {
				return err
			}
			res, err := b.client.Invoke(ctx, "getUserProfilePhotos", body)
			if err != nil {
				return err
			}
			a = continueWith(act.Then, wire.DecodeAs[botapi.UserProfilePhotos](res))

		case GetFile:
			res, err := b.getFile(ctx, act.FileID)
			if err != nil {
				return err
			}
			a = continueWith(act.Then, res)

		case GetFileData:
			res, err := b.getFile(ctx, act.FileID)
			if err != nil {
				return err
			}
			if !res.OK() || res.Value().FilePath == "" {
				a = continueWithData(act.Then, nil, false)
				break
			}
			data, err := b.client.Download(ctx, res.Value().FilePath)
			if err != nil {
				return err
			}
			a = continueWithData(act.Then, data, true)

		case DownloadFile:
			if act.FilePath == "" {
				a = continueWithData(act.Then, nil, false)
				break
			}
			data, err := b.client.Download(ctx, act.FilePath)
			if err != nil {
				return err
			}
			a = continueWithData(act.Then, data, true)

		case GetUpdates:
			body, err := wire.Object(
				wire.Opt("offset", act.Offset),
				wire.Opt("limit", act.Limit),
				wire.Opt("timeout", act.Timeout),
			)
			if err != nil {
				return err
			}
			res, err := b.client.Invoke(ctx, "getUpdates", body)
			if err != nil {
				return err
			}
			a = continueWith(act.Then, wire.DecodeAs[[]botapi.Update](res))

		case PeekUpdate:
			res, err := b.peekUpdate(ctx)
			if err != nil {
				return err
			}
			a = continueWith(act.Then, res)

		case PopUpdate:
			res, err := b.PollOnce(ctx, act.RunCommands)
			if err != nil {
				return err
			}
			a = continueWith(act.Then, res)

		default:
			return errors.New("bot: unknown action variant")
		}
	}
}

// send issues one fire-and-forget call. An envelope failure is logged and
// dropped; only transport failures come back.
func (b *Bot) send(ctx context.Context, method string, fields ...wire.Field) error {
	body, err := wire.Object(fields...)
	if err != nil {
		return err
	}
	res, err := b.client.Invoke(ctx, method, body)
	if err != nil {
		return err
	}
	if !res.OK() {
		b.logger.Warn("send failed", "method", method, "description", res.Description())
	}
	return nil
}

// resend sends media the API already holds, by file id.
func (b *Bot) resend(ctx context.Context, method, field string, chatID int64, fileID, caption string, replyTo *int) error {
	return b.send(ctx, method,
		wire.Req("chat_id", chatID),
		wire.Req(field, fileID),
		wire.OptIf("caption", caption, caption != ""),
		wire.Opt("reply_to_message_id", replyTo),
	)
}

// upload sends a local file as multipart form data and resolves the file id
// the API assigned to it for the continuation.
func (b *Bot) upload(ctx context.Context, method, field string, chatID int64, path, caption string, then func(wire.Result[string]) Action) (Action, error) {
	fields := []wire.FormField{{Name: "chat_id", Value: strconv.FormatInt(chatID, 10)}}
	if caption != "" {
		fields = append(fields, wire.FormField{Name: "caption", Value: caption})
	}

	boundary := wire.Boundary()
	body, err := wire.EncodeMultipart(boundary, fields, wire.FilePart{
		FieldName: field,
		Path:      path,
		MIMEType:  wire.MIMEForPath(path),
	})
	if err != nil {
		// Unreadable local file: surfaced to the caller, not retried.
		return nil, err
	}

	res, err := b.client.InvokeMultipart(ctx, method, boundary, body)
	if err != nil {
		return nil, err
	}
	return continueWith(then, uploadedFileID(field, wire.DecodeAs[botapi.Message](res))), nil
}

// uploadedFileID extracts the file id of freshly uploaded media from the
// message the API echoes back.
func uploadedFileID(field string, r wire.Result[botapi.Message]) wire.Result[string] {
	if !r.OK() {
		return wire.Fail[string](r.Err())
	}

	m := r.Value()
	switch field {
	case "photo":
		// Largest size last.
		if n := len(m.Photo); n > 0 {
			return wire.Ok(m.Photo[n-1].FileID)
		}
	case "audio":
		if m.Audio != nil {
			return wire.Ok(m.Audio.FileID)
		}
	case "voice":
		if m.Voice != nil {
			return wire.Ok(m.Voice.FileID)
		}
	case "document":
		if m.Document != nil {
			return wire.Ok(m.Document.FileID)
		}
	case "sticker":
		if m.Sticker != nil {
			return wire.Ok(m.Sticker.FileID)
		}
	case "video":
		if m.Video != nil {
			return wire.Ok(m.Video.FileID)
		}
	}
	return wire.Fail[string](&wire.DecodeError{
		Expected: field + " file_id",
		Cause:    errors.New("no matching media in response message"),
	})
}

// getFile resolves a file id to a downloadable path.
func (b *Bot) getFile(ctx context.Context, fileID string) (wire.Result[botapi.File], error) {
	body, err := wire.Object(wire.Req("file_id", fileID))
	if err != nil {
		return wire.Result[botapi.File]{}, err
	}
	res, err := b.client.Invoke(ctx, "getFile", body)
	if err != nil {
		return wire.Result[botapi.File]{}, err
	}
	return wire.DecodeAs[botapi.File](res), nil
}
