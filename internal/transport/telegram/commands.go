package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	deliveryDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/delivery/domain"
	filterDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/domain"
	flowDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/flow/domain"
	flowService "github.com/reshetovitsme/keyword-share-bot/internal/modules/flow/service"
	"github.com/samber/lo"
)

const messageLimit = 4000

const bannedText = "🚫 You are banned from using this bot."

const adminHelp = `🌟 Welcome, Admin! Here are your commands:

/filter or /button - Create a new button filter.
/edit [name] - Edit an existing filter.
/delete_filter [name] - Delete a filter.
/rename [old new] - Rename a filter.
/merge_filters - Merge file filters into a new one.
/broadcast - Reply to a message with this command to broadcast it to all users.
/restrict - Toggle forwarding restriction (ON/OFF).
/ban <user_id> - Ban a user.
/unban <user_id> - Unban a user.
/auto_delete <time> - Auto-delete delivered files (30m, 1h, 12h, 24h, off).
/channel_id - Get the ID of a channel by forwarding a message from it.
/list - List filters with share links.
/stats - Show bot statistics.
/cancel - Stop the current action.`

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg.From == nil {
		return
	}
	_, payload, _ := parseCommand(msg.Text)

	isNew, err := h.users.Touch(ctx, msg.From.ID)
	if err != nil {
		slog.Error("Failed to record user", "error", err, "user_id", msg.From.ID)
	}
	if isNew {
		h.notify(ctx, fmt.Sprintf("🆕 New user\n%s", describeUser(msg.From)))
	}
	if h.users.IsBanned(msg.From.ID) {
		h.send(ctx, b, msg.Chat.ID, bannedText, nil)
		return
	}

	if payload != "" {
		keyword := filterDomain.NormalizeKeyword(payload)
		h.notify(ctx, fmt.Sprintf("🔗 New deep link open!\n%s\nLink: %s",
			describeUser(msg.From), filterDomain.ShareLink(h.cfg.BotUsername, keyword)))
		h.serveKeyword(ctx, b, msg.Chat.ID, msg.From, keyword)
		return
	}

	if h.cfg.IsAdmin(msg.From.ID) {
		h.send(ctx, b, msg.Chat.ID, adminHelp, nil)
		return
	}
	if missing := h.membership.Missing(ctx, msg.From.ID); len(missing) > 0 {
		h.send(ctx, b, msg.Chat.ID, "❌ You must join the following channels to use this bot:",
			JoinKeyboard(missing, h.cfg.BotUsername, ""))
		return
	}
	h.send(ctx, b, msg.Chat.ID, "👋 Welcome! You can access files via special links.", nil)
}

func (h *Handler) handleCreate(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.startFlow(ctx, b, update.Message, flowDomain.StepFilterName, "")
}

func (h *Handler) handleEdit(ctx context.Context, b *bot.Bot, update *models.Update) {
	_, args, _ := parseCommand(update.Message.Text)
	if args == "" {
		h.startFlow(ctx, b, update.Message, flowDomain.StepEditName, "")
		return
	}

	f, ok := h.filters.Get(args)
	if !ok {
		h.send(ctx, b, update.Message.Chat.ID, fmt.Sprintf("❌ Filter '%s' not found.", filterDomain.NormalizeKeyword(args)), nil)
		return
	}
	h.send(ctx, b, update.Message.Chat.ID,
		fmt.Sprintf("✏️ Choose what to edit in '%s'.", f.Keyword), h.keyboard(f, 0, true))
}

func (h *Handler) handleDelete(ctx context.Context, b *bot.Bot, update *models.Update) {
	_, args, _ := parseCommand(update.Message.Text)
	if args == "" {
		h.startFlow(ctx, b, update.Message, flowDomain.StepDeleteName, "")
		return
	}

	keyword := filterDomain.NormalizeKeyword(args)
	if err := h.filters.Delete(ctx, keyword); err != nil {
		h.send(ctx, b, update.Message.Chat.ID, flowService.ErrorText(err), nil)
		return
	}
	h.send(ctx, b, update.Message.Chat.ID, fmt.Sprintf("✅ Filter '%s' deleted.", keyword), nil)
}

func (h *Handler) handleRename(ctx context.Context, b *bot.Bot, update *models.Update) {
	_, args, _ := parseCommand(update.Message.Text)
	parts := strings.Fields(args)
	if len(parts) != 2 {
		h.startFlow(ctx, b, update.Message, flowDomain.StepRenameFrom, "")
		return
	}

	if err := h.filters.Rename(ctx, parts[0], parts[1]); err != nil {
		h.send(ctx, b, update.Message.Chat.ID, flowService.ErrorText(err), nil)
		return
	}
	h.send(ctx, b, update.Message.Chat.ID, fmt.Sprintf("✅ Filter '%s' renamed to '%s'.",
		filterDomain.NormalizeKeyword(parts[0]), filterDomain.NormalizeKeyword(parts[1])), nil)
}

func (h *Handler) handleMerge(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.startFlow(ctx, b, update.Message, flowDomain.StepMergeTarget, "")
}

func (h *Handler) handleBroadcast(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg.ReplyToMessage == nil {
		h.send(ctx, b, msg.Chat.ID, "📌 Reply to a message with /broadcast.", nil)
		return
	}

	recipients := h.users.Recipients()
	total := humanize.Comma(int64(len(recipients)))
	progressMsg := h.send(ctx, b, msg.Chat.ID, fmt.Sprintf("📢 Broadcasting to %s users...", total), nil)

	edit := func(text string) {
		if progressMsg == nil {
			return
		}
		if _, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    msg.Chat.ID,
			MessageID: progressMsg.ID,
			Text:      text,
		}); err != nil {
			slog.Debug("Failed to update broadcast progress", "error", err)
		}
	}

	// updates are handled one at a time; a broadcast must not hold the queue
	go func() {
		report, err := h.delivery.Broadcast(ctx, msg.Chat.ID, msg.ReplyToMessage.ID, recipients,
			func(done, _ int, report deliveryDomain.Report) {
				edit(fmt.Sprintf("📢 Broadcasting...\n✅ Sent: %s\n❌ Failed: %s\nTotal: %s",
					humanize.Comma(int64(report.Sent)), humanize.Comma(int64(report.Failed)), total))
			})
		if err != nil {
			slog.Error("Broadcast interrupted", "error", err)
			edit(fmt.Sprintf("⚠️ Broadcast interrupted: %s.", report))
			return
		}
		edit(fmt.Sprintf("✅ Broadcast complete!\n%s.", report))
	}()
}

func (h *Handler) handleRestrict(ctx context.Context, b *bot.Bot, update *models.Update) {
	protect, err := h.settings.ToggleProtect(ctx)
	if err != nil {
		slog.Error("Failed to toggle protection", "error", err)
		h.send(ctx, b, update.Message.Chat.ID, flowService.ErrorText(err), nil)
		return
	}
	state := "OFF"
	if protect {
		state = "ON"
	}
	h.send(ctx, b, update.Message.Chat.ID, fmt.Sprintf("🔒 Forwarding restriction is now %s.", state), nil)
}

func (h *Handler) handleBan(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.runWithArgs(ctx, b, update.Message, flowDomain.StepBanId, "")
}

func (h *Handler) handleUnban(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.runWithArgs(ctx, b, update.Message, flowDomain.StepUnbanId, "")
}

func (h *Handler) handleAutoDelete(ctx context.Context, b *bot.Bot, update *models.Update) {
	current := flowService.AutoDeleteText(h.settings.AutoDelete())
	h.runWithArgs(ctx, b, update.Message, flowDomain.StepAutoDelete, current)
}

func (h *Handler) handleChannelID(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.startFlow(ctx, b, update.Message, flowDomain.StepChannelForward, "")
}

func (h *Handler) handleList(ctx context.Context, b *bot.Bot, update *models.Update) {
	filters := h.filters.All()
	if len(filters) == 0 {
		h.send(ctx, b, update.Message.Chat.ID, "📭 No filters yet.", nil)
		return
	}

	lines := lo.Map(filters, func(f *filterDomain.Filter, i int) string {
		return fmt.Sprintf("%d. %s (%s, %d)\n%s", i+1, f.Keyword, f.Kind, f.Len(),
			filterDomain.ShareLink(h.cfg.BotUsername, f.Keyword))
	})
	for _, chunk := range chunkLines(lines, messageLimit) {
		h.send(ctx, b, update.Message.Chat.ID, chunk, nil)
	}
}

func (h *Handler) handleStats(ctx context.Context, b *bot.Bot, update *models.Update) {
	users, banned := h.users.Counts()
	filters := h.filters.All()
	files := lo.SumBy(filters, func(f *filterDomain.Filter) int { return len(f.Files) })
	buttons := lo.SumBy(filters, func(f *filterDomain.Filter) int { return len(f.Buttons) })
	active := "none"
	if kw, ok := h.intake.Active(); ok {
		active = kw
	}

	text := fmt.Sprintf(`📊 Bot Status:

Users: %s (banned: %s)
Filters: %s
Files: %s
Buttons: %s
Active channel filter: %s
Forwarding restriction: %t
%s`,
		humanize.Comma(int64(users)), humanize.Comma(int64(banned)),
		humanize.Comma(int64(len(filters))), humanize.Comma(int64(files)), humanize.Comma(int64(buttons)),
		active, h.settings.Protect(), flowService.AutoDeleteText(h.settings.AutoDelete()))

	h.send(ctx, b, update.Message.Chat.ID, text, nil)
}

func (h *Handler) handleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	cancelled, err := h.flow.Cancel(ctx, update.Message.From.ID)
	switch {
	case err != nil:
		h.send(ctx, b, update.Message.Chat.ID, flowService.ErrorText(err), nil)
	case cancelled:
		h.send(ctx, b, update.Message.Chat.ID, "❎ Cancelled.", nil)
	default:
		h.send(ctx, b, update.Message.Chat.ID, "Nothing to cancel.", nil)
	}
}

// runWithArgs answers the step directly when the command carries its
// argument, otherwise asks for it with intro above the prompt
func (h *Handler) runWithArgs(ctx context.Context, b *bot.Bot, msg *models.Message, step flowDomain.Step, intro string) {
	_, args, _ := parseCommand(msg.Text)
	if _, err := h.flow.Start(ctx, msg.From.ID, step, "", 0); err != nil {
		slog.Error("Failed to start flow", "error", err, "step", step)
		h.send(ctx, b, msg.Chat.ID, flowService.ErrorText(err), nil)
		return
	}
	if args == "" {
		prompt := flowService.Prompt(step)
		if intro != "" {
			prompt = intro + "\n\n" + prompt
		}
		h.send(ctx, b, msg.Chat.ID, prompt, nil)
		return
	}

	reply, _, err := h.flow.Handle(ctx, msg.From.ID, flowService.Input{Text: args})
	if err != nil {
		slog.Error("Admin flow failed", "error", err, "step", step)
		h.send(ctx, b, msg.Chat.ID, flowService.ErrorText(err), nil)
		return
	}
	h.sendFlowReply(ctx, b, msg.Chat.ID, reply)
}

func (h *Handler) startFlow(ctx context.Context, b *bot.Bot, msg *models.Message, step flowDomain.Step, keyword string) {
	reply, err := h.flow.Start(ctx, msg.From.ID, step, keyword, 0)
	if err != nil {
		slog.Error("Failed to start flow", "error", err, "step", step)
		h.send(ctx, b, msg.Chat.ID, flowService.ErrorText(err), nil)
		return
	}
	h.send(ctx, b, msg.Chat.ID, reply.Text, nil)
}

func describeUser(u *models.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	text := fmt.Sprintf("User: %s\nID: %d", name, u.ID)
	if u.Username != "" {
		text += "\nUsername: @" + u.Username
	}
	return text
}

// chunkLines joins lines into messages no longer than limit
func chunkLines(lines []string, limit int) []string {
	var chunks []string
	var current strings.Builder
	for _, line := range lines {
		if current.Len() > 0 && current.Len()+len(line)+2 > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
