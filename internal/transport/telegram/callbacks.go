package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	filterDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/filter/domain"
	flowDomain "github.com/reshetovitsme/keyword-share-bot/internal/modules/flow/domain"
	flowService "github.com/reshetovitsme/keyword-share-bot/internal/modules/flow/service"
)

var editSteps = map[string]flowDomain.Step{
	actionAdd:     flowDomain.StepAddButtons,
	actionDelete:  flowDomain.StepDeleteIndices,
	actionSwap:    flowDomain.StepSwapPairs,
	actionReplace: flowDomain.StepReplaceButtons,
}

// callbackContext resolves the chat and message a callback came from
type callbackContext struct {
	query     *models.CallbackQuery
	data      callback
	chatID    int64
	messageID int
}

func (h *Handler) decode(ctx context.Context, b *bot.Bot, update *models.Update) (callbackContext, bool) {
	query := update.CallbackQuery
	cc := callbackContext{query: query, chatID: query.From.ID}
	if msg := query.Message.Message; msg != nil {
		cc.chatID = msg.Chat.ID
		cc.messageID = msg.ID
	}

	data, err := parseCallback(query.Data)
	if err != nil {
		slog.Warn("Unknown callback data", "data", query.Data, "user_id", query.From.ID)
		h.answer(ctx, b, query, "", false)
		return cc, false
	}
	cc.data = data
	return cc, true
}

// filter resolves the callback's filter and answers the query when it is gone
func (h *Handler) filter(ctx context.Context, b *bot.Bot, cc callbackContext) (*filterDomain.Filter, bool) {
	f, ok := h.filters.ByShortID(cc.data.ID)
	if !ok {
		h.answer(ctx, b, cc.query, "❌ This filter no longer exists.", true)
	}
	return f, ok
}

func (h *Handler) requireAdmin(ctx context.Context, b *bot.Bot, cc callbackContext) bool {
	if h.cfg.IsAdmin(cc.query.From.ID) {
		return true
	}
	h.answer(ctx, b, cc.query, "❌ Unauthorized", true)
	return false
}

func (h *Handler) onPage(ctx context.Context, b *bot.Bot, update *models.Update) {
	cc, ok := h.decode(ctx, b, update)
	if !ok {
		return
	}
	if cc.data.Edit && !h.requireAdmin(ctx, b, cc) {
		return
	}
	f, ok := h.filter(ctx, b, cc)
	if !ok {
		return
	}

	h.answer(ctx, b, cc.query, "", false)
	if _, err := b.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:      cc.chatID,
		MessageID:   cc.messageID,
		ReplyMarkup: h.keyboard(f, cc.data.Page, cc.data.Edit),
	}); err != nil {
		slog.Debug("Failed to switch page", "error", err, "keyword", f.Keyword)
	}
}

func (h *Handler) onSendFile(ctx context.Context, b *bot.Bot, update *models.Update) {
	cc, ok := h.decode(ctx, b, update)
	if !ok {
		return
	}
	f, ok := h.filter(ctx, b, cc)
	if !ok {
		return
	}
	if !slices.Contains(f.Files, cc.data.Ref) {
		h.answer(ctx, b, cc.query, "❌ This file is no longer available.", true)
		return
	}

	userID := cc.query.From.ID
	if h.users.IsBanned(userID) {
		h.answer(ctx, b, cc.query, bannedText, true)
		return
	}
	if !h.cfg.IsAdmin(userID) && !h.membership.IsMember(ctx, userID) {
		h.answer(ctx, b, cc.query, "❌ Join the required channels first.", true)
		return
	}

	h.answer(ctx, b, cc.query, "Sending your file...", false)
	h.sendFiles(ctx, b, userID, f, []filterDomain.FileRef{cc.data.Ref})
}

func (h *Handler) onStartEdit(ctx context.Context, b *bot.Bot, update *models.Update) {
	cc, ok := h.decode(ctx, b, update)
	if !ok || !h.requireAdmin(ctx, b, cc) {
		return
	}
	f, ok := h.filter(ctx, b, cc)
	if !ok {
		return
	}

	step := editSteps[cc.data.Action]
	reply, err := h.flow.Start(ctx, cc.query.From.ID, step, f.Keyword, cc.data.Page)
	if err != nil {
		slog.Error("Failed to start flow", "error", err, "step", step)
		h.answer(ctx, b, cc.query, flowService.ErrorText(err), true)
		return
	}
	h.answer(ctx, b, cc.query, "", false)
	h.send(ctx, b, cc.chatID, reply.Text, nil)
}

func (h *Handler) onDeleteFilter(ctx context.Context, b *bot.Bot, update *models.Update) {
	cc, ok := h.decode(ctx, b, update)
	if !ok || !h.requireAdmin(ctx, b, cc) {
		return
	}
	f, ok := h.filter(ctx, b, cc)
	if !ok {
		return
	}

	h.answer(ctx, b, cc.query, "", false)
	h.editText(ctx, b, cc, fmt.Sprintf("⚠️ Delete filter '%s' with %d item(s)?", f.Keyword, f.Len()), ConfirmDeleteKeyboard(f))
}

func (h *Handler) onDeleteFinal(ctx context.Context, b *bot.Bot, update *models.Update) {
	cc, ok := h.decode(ctx, b, update)
	if !ok || !h.requireAdmin(ctx, b, cc) {
		return
	}
	f, ok := h.filter(ctx, b, cc)
	if !ok {
		return
	}

	if err := h.filters.Delete(ctx, f.Keyword); err != nil {
		slog.Error("Failed to delete filter", "error", err, "keyword", f.Keyword)
		h.answer(ctx, b, cc.query, flowService.ErrorText(err), true)
		return
	}
	h.answer(ctx, b, cc.query, "Deleted", false)
	h.editText(ctx, b, cc, fmt.Sprintf("🗑️ Filter '%s' has been deleted.", f.Keyword), nil)
}

func (h *Handler) onCheckJoin(ctx context.Context, b *bot.Bot, update *models.Update) {
	cc, ok := h.decode(ctx, b, update)
	if !ok {
		return
	}

	userID := cc.query.From.ID
	keyword := ""
	if f, found := h.filters.ByShortID(cc.data.ID); cc.data.ID != "" && found {
		keyword = f.Keyword
	}

	if missing := h.membership.Missing(ctx, userID); len(missing) > 0 {
		h.answer(ctx, b, cc.query, "❌ You are still not a member.", true)
		h.editText(ctx, b, cc, "❌ You are still not a member of:", JoinKeyboard(missing, h.cfg.BotUsername, keyword))
		return
	}

	h.answer(ctx, b, cc.query, "✅ Thanks for joining!", false)
	h.editText(ctx, b, cc, "✅ You have successfully joined!", nil)
	if keyword != "" {
		h.serveKeyword(ctx, b, userID, &cc.query.From, keyword)
	}
}

func (h *Handler) onNoop(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answer(ctx, b, update.CallbackQuery, "", false)
}

func (h *Handler) answer(ctx context.Context, b *bot.Bot, query *models.CallbackQuery, text string, alert bool) {
	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: query.ID,
		Text:            text,
		ShowAlert:       alert,
	}); err != nil {
		slog.Debug("Failed to answer callback", "error", err)
	}
}

func (h *Handler) editText(ctx context.Context, b *bot.Bot, cc callbackContext, text string, markup *models.InlineKeyboardMarkup) {
	if cc.messageID == 0 {
		h.send(ctx, b, cc.chatID, text, markup)
		return
	}
	params := &bot.EditMessageTextParams{
		ChatID:    cc.chatID,
		MessageID: cc.messageID,
		Text:      text,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := b.EditMessageText(ctx, params); err != nil {
		slog.Debug("Failed to edit message", "error", err)
	}
}
