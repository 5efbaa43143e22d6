package sched

import (
	"context"
	"fmt"

	"github.com/botwire/botwire/internal/bot"
)

// Evaluator runs a bot action to completion. *bot.Bot satisfies it; tests
// substitute their own.
type Evaluator interface {
	Evaluate(ctx context.Context, a bot.Action) error
}

// AnnouncementJob posts a fixed message to a chat on a schedule.
type AnnouncementJob struct {
	JobName      string
	ScheduleExpr string // empty = default "0 9 * * *"
	ChatID       int64
	Text         string
	Bot          Evaluator
}

// Compile-time interface check.
var _ Job = (*AnnouncementJob)(nil)

// Name implements Job.
func (j *AnnouncementJob) Name() string {
	if j.JobName != "" {
		return "announcement:" + j.JobName
	}
	return fmt.Sprintf("announcement:%d", j.ChatID)
}

// Schedule implements Job.
func (j *AnnouncementJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "0 9 * * *"
}

// Run sends the announcement text to the configured chat.
func (j *AnnouncementJob) Run(ctx context.Context) error {
	return j.Bot.Evaluate(ctx, bot.SendMessage{ChatID: j.ChatID, Text: j.Text})
}
