package main

import (
	"fmt"
	"strings"

	"github.com/botwire/botwire/internal/bot"
	"github.com/botwire/botwire/internal/botapi"
	"github.com/botwire/botwire/internal/wire"
)

// builtinCommands is the demo command table. Real deployments replace this
// with their own handlers; the poll loop and dispatch rules stay the same.
func builtinCommands(_ *botapi.Client) []*bot.Command {
	return []*bot.Command{
		{
			Name:        "ping",
			Description: "Check that the bot is alive",
			Enabled:     true,
			Handler: func(msg botapi.Message) bot.Action {
				return bot.SendMessage{ChatID: msg.Chat.ID, Text: "pong"}
			},
		},
		{
			Name:        "echo",
			Description: "Repeat the message text",
			Enabled:     true,
			Handler: func(msg botapi.Message) bot.Action {
				_, rest, _ := strings.Cut(msg.Text, " ")
				if rest == "" {
					rest = "(nothing to echo)"
				}
				return bot.SendMessage{ChatID: msg.Chat.ID, Text: rest}
			},
		},
		{
			Name:        "whoami",
			Description: "Show the bot account this process runs as",
			Enabled:     true,
			Handler: func(msg botapi.Message) bot.Action {
				return bot.GetMe{Then: func(res wire.Result[botapi.User]) bot.Action {
					if !res.OK() {
						return bot.SendMessage{
							ChatID: msg.Chat.ID,
							Text:   "Could not fetch my own account: " + res.Description(),
						}
					}
					me := res.Value()
					return bot.SendMessage{
						ChatID: msg.Chat.ID,
						Text:   fmt.Sprintf("I am %s (@%s, id %d)", me.FirstName, me.Username, me.ID),
					}
				}}
			},
		},
		{
			Name:        "photos",
			Description: "Count your profile photos",
			Enabled:     true,
			Handler: func(msg botapi.Message) bot.Action {
				if msg.From == nil {
					return bot.Nothing{}
				}
				userID := msg.From.ID
				return bot.GetUserProfilePhotos{
					UserID: userID,
					Then: func(res wire.Result[botapi.UserProfilePhotos]) bot.Action {
						if !res.OK() {
							return bot.SendMessage{
								ChatID: msg.Chat.ID,
								Text:   "Could not fetch profile photos: " + res.Description(),
							}
						}
						return bot.SendMessage{
							ChatID: msg.Chat.ID,
							Text:   fmt.Sprintf("You have %d profile photos", res.Value().TotalCount),
						}
					},
				}
			},
		},
	}
}

// echoInlineHandler answers every inline query with a single article that
// repeats the query text.
func echoInlineHandler() func(botapi.InlineQuery) bot.Action {
	return func(q botapi.InlineQuery) bot.Action {
		text := q.Query
		if text == "" {
			text = "(empty query)"
		}
		return bot.AnswerInlineQuery{
			QueryID: q.ID,
			Results: []botapi.InlineQueryResultArticle{{
				Type:        "article",
				ID:          "echo-1",
				Title:       "Echo",
				MessageText: text,
			}},
		}
	}
}
