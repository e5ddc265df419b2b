package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	deliveryService "github.com/reshetovitsme/keyword-share-bot/internal/modules/delivery/service"
	filterDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/domain"
	"github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/pager"
	filterService "github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/service"
	flowService "github.com/reshetovitsme/keyword-share-bot/internal/modules/flow/service"
	intakeService "github.com/reshetovitsme/keyword-share-bot/internal/modules/intake/service"
	membershipService "github.com/reshetovitsme/keyword-share-bot/internal/modules/membership/service"
	settingsService "github.com/reshetovitsme/keyword-share-bot/internal/modules/settings/service"
	userService "github.com/reshetovitsme/keyword-share-bot/internal/modules/user/service"
	"github.com/reshetovitsme/keyword-share-bot/internal/shared/config"
	"github.com/reshetovitsme/keyword-share-bot/internal/shared/metrics"
)

// Handler handles Telegram bot interactions
type Handler struct {
	cfg        *config.Config
	filters    *filterService.Service
	intake     *intakeService.Service
	membership *membershipService.Service
	flow       *flowService.Engine
	delivery   *deliveryService.Service
	users      *userService.Service
	settings   *settingsService.Service
	notifier   intakeService.Notifier
}

// New creates a new Telegram handler
func New(
	cfg *config.Config,
	filters *filterService.Service,
	intake *intakeService.Service,
	membership *membershipService.Service,
	flow *flowService.Engine,
	delivery *deliveryService.Service,
	users *userService.Service,
	settings *settingsService.Service,
	notifier intakeService.Notifier,
) *Handler {
	return &Handler{
		cfg:        cfg,
		filters:    filters,
		intake:     intake,
		membership: membership,
		flow:       flow,
		delivery:   delivery,
		users:      users,
		settings:   settings,
		notifier:   notifier,
	}
}

// RegisterCommands registers bot commands and callback handlers
func (h *Handler) RegisterCommands(b *bot.Bot) {
	b.RegisterHandlerMatchFunc(matchCommand("start"), h.handleStart)

	admin := func(names ...string) bot.MatchFunc { return matchCommand(names...) }
	b.RegisterHandlerMatchFunc(admin("filter", "button"), h.adminOnly(h.handleCreate))
	b.RegisterHandlerMatchFunc(admin("edit", "editbutton"), h.adminOnly(h.handleEdit))
	b.RegisterHandlerMatchFunc(admin("delete_filter", "delete"), h.adminOnly(h.handleDelete))
	b.RegisterHandlerMatchFunc(admin("rename", "change_filter_name"), h.adminOnly(h.handleRename))
	b.RegisterHandlerMatchFunc(admin("merge_filter", "merge_filters"), h.adminOnly(h.handleMerge))
	b.RegisterHandlerMatchFunc(admin("broadcast"), h.adminOnly(h.handleBroadcast))
	b.RegisterHandlerMatchFunc(admin("restrict"), h.adminOnly(h.handleRestrict))
	b.RegisterHandlerMatchFunc(admin("ban"), h.adminOnly(h.handleBan))
	b.RegisterHandlerMatchFunc(admin("unban"), h.adminOnly(h.handleUnban))
	b.RegisterHandlerMatchFunc(admin("auto_delete"), h.adminOnly(h.handleAutoDelete))
	b.RegisterHandlerMatchFunc(admin("channel_id"), h.adminOnly(h.handleChannelID))
	b.RegisterHandlerMatchFunc(admin("list"), h.adminOnly(h.handleList))
	b.RegisterHandlerMatchFunc(admin("stats"), h.adminOnly(h.handleStats))
	b.RegisterHandlerMatchFunc(admin("cancel"), h.adminOnly(h.handleCancel))

	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, actionPage+":", bot.MatchTypePrefix, h.onPage)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, actionSendFile+":", bot.MatchTypePrefix, h.onSendFile)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, actionAdd+":", bot.MatchTypePrefix, h.onStartEdit)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, actionDelete+":", bot.MatchTypePrefix, h.onStartEdit)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, actionSwap+":", bot.MatchTypePrefix, h.onStartEdit)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, actionReplace+":", bot.MatchTypePrefix, h.onStartEdit)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, actionDeleteFilter+":", bot.MatchTypePrefix, h.onDeleteFilter)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, actionDeleteFinal+":", bot.MatchTypePrefix, h.onDeleteFinal)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, actionCheckJoin+":", bot.MatchTypePrefix, h.onCheckJoin)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, actionNoop, bot.MatchTypeExact, h.onNoop)
}

// HandleUpdate processes updates no registered handler matched
func (h *Handler) HandleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	switch {
	case update.ChannelPost != nil:
		h.processChannelPost(ctx, update.ChannelPost)
	case update.EditedChannelPost != nil:
		h.processEditedChannelPost(ctx, update.EditedChannelPost)
	case update.Message != nil && update.Message.Chat.Type == models.ChatTypePrivate:
		h.processPrivateMessage(ctx, b, update.Message)
	}
}

func (h *Handler) processChannelPost(ctx context.Context, msg *models.Message) {
	if msg.Chat.ID != h.cfg.SourceChannelID {
		return
	}

	var err error
	switch {
	case hasMedia(msg):
		err = h.intake.HandleMedia(ctx, msg.ID)
	case msg.Text != "":
		err = h.intake.HandleText(ctx, msg.ID, msg.Text)
	default:
		return
	}
	if err != nil {
		slog.Error("Error processing channel post", "error", err, "post_id", msg.ID)
		h.notify(ctx, fmt.Sprintf("⚠️ Channel post %d could not be saved: %v", msg.ID, err))
	}
}

func (h *Handler) processEditedChannelPost(ctx context.Context, msg *models.Message) {
	if msg.Chat.ID != h.cfg.SourceChannelID || hasMedia(msg) {
		return
	}
	if err := h.intake.HandleEdited(ctx, msg.ID, msg.Text); err != nil {
		slog.Error("Error processing edited channel post", "error", err, "post_id", msg.ID)
	}
}

func (h *Handler) processPrivateMessage(ctx context.Context, b *bot.Bot, msg *models.Message) {
	if msg.From == nil {
		return
	}
	userID := msg.From.ID

	if h.cfg.IsAdmin(userID) {
		reply, handled, err := h.flow.Handle(ctx, userID, flowInput(msg))
		if handled {
			if err != nil {
				slog.Error("Admin flow failed", "error", err, "user_id", userID)
				h.send(ctx, b, msg.Chat.ID, flowService.ErrorText(err), nil)
				return
			}
			h.sendFlowReply(ctx, b, msg.Chat.ID, reply)
			return
		}
	}

	if msg.Text == "" || strings.HasPrefix(msg.Text, "/") {
		return
	}
	h.serveKeyword(ctx, b, msg.Chat.ID, msg.From, msg.Text)
}

// serveKeyword answers a keyword request: lookup, ban check, membership
// gate, then delivery
func (h *Handler) serveKeyword(ctx context.Context, b *bot.Bot, chatID int64, user *models.User, text string) {
	keyword := filterDomain.NormalizeKeyword(text)
	f, ok := h.filters.Get(keyword)
	if !ok {
		metrics.Lookups.WithLabelValues("miss").Inc()
		h.send(ctx, b, chatID, "❌ No filter found with this name.", nil)
		return
	}

	if h.users.IsBanned(user.ID) {
		metrics.Lookups.WithLabelValues("banned").Inc()
		h.send(ctx, b, chatID, bannedText, nil)
		return
	}

	if missing := h.membership.Missing(ctx, user.ID); len(missing) > 0 {
		metrics.Lookups.WithLabelValues("denied").Inc()
		h.send(ctx, b, chatID, "❌ You must join the following channels to use this bot:",
			JoinKeyboard(missing, h.cfg.BotUsername, f.Keyword))
		return
	}

	metrics.Lookups.WithLabelValues("hit").Inc()
	if f.Kind == filterDomain.KindFile {
		h.sendFiles(ctx, b, chatID, f, f.Files)
		return
	}

	if f.Len() == 0 {
		h.send(ctx, b, chatID, fmt.Sprintf("❌ No files or links found for '%s'.", f.Keyword), nil)
		return
	}
	h.send(ctx, b, chatID, fmt.Sprintf("🎬 Links for '%s':", f.Keyword), h.keyboard(f, 0, false))
}

func (h *Handler) sendFiles(ctx context.Context, b *bot.Bot, chatID int64, f *filterDomain.Filter, refs []filterDomain.FileRef) {
	if len(refs) == 0 {
		h.send(ctx, b, chatID, fmt.Sprintf("❌ No files found for '%s'.", f.Keyword), nil)
		return
	}

	report, err := h.delivery.SendFiles(ctx, chatID, refs)
	if err != nil {
		slog.Error("File delivery failed", "error", err, "keyword", f.Keyword, "chat_id", chatID)
	}
	if report.Sent == 0 {
		h.send(ctx, b, chatID, "❌ Error sending files.", nil)
		return
	}
	if d := h.settings.AutoDelete(); d > 0 {
		h.send(ctx, b, chatID, fmt.Sprintf("⏳ These files will be deleted after %s. Save them somewhere else.", flowService.FormatDuration(d)), nil)
	}
}

func (h *Handler) sendFlowReply(ctx context.Context, b *bot.Bot, chatID int64, reply flowService.Reply) {
	var markup *models.InlineKeyboardMarkup
	if reply.View != nil {
		if f, ok := h.filters.Get(reply.View.Keyword); ok {
			markup = h.keyboard(f, reply.View.Page, reply.View.Edit)
		}
	}
	if reply.Text == "" && markup == nil {
		return
	}
	text := reply.Text
	if text == "" {
		text = "✅ Done."
	}
	h.send(ctx, b, chatID, text, markup)
}

func (h *Handler) keyboard(f *filterDomain.Filter, page int, edit bool) *models.InlineKeyboardMarkup {
	return FilterKeyboard(f, pager.New(f.Len(), page, h.cfg.PageSize), edit)
}

func (h *Handler) adminOnly(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message.From == nil || !h.cfg.IsAdmin(update.Message.From.ID) {
			h.send(ctx, b, update.Message.Chat.ID, "❌ Unauthorized", nil)
			return
		}
		next(ctx, b, update)
	}
}

func (h *Handler) send(ctx context.Context, b *bot.Bot, chatID int64, text string, markup *models.InlineKeyboardMarkup) *models.Message {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	msg, err := b.SendMessage(ctx, params)
	if err != nil {
		slog.Error("Failed to send message", "error", err, "chat_id", chatID)
		return nil
	}
	return msg
}

func (h *Handler) notify(ctx context.Context, text string) {
	if err := h.notifier.Notify(ctx, text); err != nil {
		slog.Error("Failed to send log channel notice", "error", err)
	}
}

// matchCommand matches private messages starting with one of the commands,
// with or without a bot mention
func matchCommand(names ...string) bot.MatchFunc {
	return func(update *models.Update) bool {
		if update.Message == nil || update.Message.Chat.Type != models.ChatTypePrivate {
			return false
		}
		name, _, ok := parseCommand(update.Message.Text)
		if !ok {
			return false
		}
		for _, n := range names {
			if name == n {
				return true
			}
		}
		return false
	}
}

// parseCommand splits "/name@bot args" into name and args
func parseCommand(text string) (string, string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, args, _ := strings.Cut(text, " ")
	head, _, _ = strings.Cut(head[1:], "@")
	if head == "" {
		return "", "", false
	}
	return strings.ToLower(head), strings.TrimSpace(args), true
}

func flowInput(msg *models.Message) flowService.Input {
	in := flowService.Input{Text: msg.Text}
	if origin := msg.ForwardOrigin; origin != nil {
		switch {
		case origin.MessageOriginChannel != nil:
			in.ForwardChatID = origin.MessageOriginChannel.Chat.ID
			in.ForwardChatTitle = origin.MessageOriginChannel.Chat.Title
		case origin.MessageOriginChat != nil:
			in.ForwardChatID = origin.MessageOriginChat.SenderChat.ID
			in.ForwardChatTitle = origin.MessageOriginChat.SenderChat.Title
		}
	}
	return in
}

func hasMedia(msg *models.Message) bool {
	return len(msg.Photo) > 0 ||
		msg.Video != nil ||
		msg.Document != nil ||
		msg.Audio != nil ||
		msg.Animation != nil ||
		msg.Voice != nil ||
		msg.VideoNote != nil ||
		msg.Sticker != nil
}
