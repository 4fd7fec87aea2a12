package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/vedasos/support-bot/internal/domain"
	"github.com/vedasos/support-bot/internal/locale"
	"github.com/vedasos/support-bot/internal/storage"
)

// telegramAPI is the narrow slice of the Telegram client the handlers use,
// kept small so tests can substitute a recorder.
type telegramAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

// BotHandler routes inbound Telegram updates to the ticket dialog, the
// settings store and the localizer.
type BotHandler struct {
	api       telegramAPI
	settings  *storage.SettingsStore
	localizer *locale.Resolver
	ticketFSM *TicketFSM
	logger    domain.Logger
}

// NewBotHandler creates a new BotHandler with all dependencies
func NewBotHandler(
	api telegramAPI,
	settings *storage.SettingsStore,
	localizer *locale.Resolver,
	ticketFSM *TicketFSM,
	logger domain.Logger,
) *BotHandler {
	return &BotHandler{
		api:       api,
		settings:  settings,
		localizer: localizer,
		ticketFSM: ticketFSM,
		logger:    logger,
	}
}

func isGroupChat(chat models.Chat) bool {
	return chat.Type == "group" || chat.Type == "supergroup"
}

// displayName renders a user the way the support team should see them.
func displayName(user *models.User) string {
	name := strings.TrimSpace(strings.TrimSpace(user.FirstName) + " " + strings.TrimSpace(user.LastName))
	if name != "" {
		return name
	}
	if user.Username != "" {
		return "@" + user.Username
	}
	return fmt.Sprintf("User id%d", user.ID)
}

// callbackOrigin extracts the chat and message a callback button lives on.
// Buttons on messages Telegram no longer exposes are skipped.
func callbackOrigin(callback *models.CallbackQuery) (chatID int64, messageID int, ok bool) {
	if callback.Message.Message == nil {
		return 0, 0, false
	}
	m := callback.Message.Message
	return m.Chat.ID, m.ID, true
}

func (h *BotHandler) text(userID int64, key string, params map[string]string) string {
	return h.localizer.Resolve(h.settings.GetUserLanguage(userID), key, params)
}

func (h *BotHandler) reply(ctx context.Context, chatID int64, text string, kb models.ReplyMarkup) {
	_, err := h.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: kb,
	})
	if err != nil {
		h.logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}

func (h *BotHandler) edit(ctx context.Context, chatID int64, messageID int, text string, kb models.ReplyMarkup) {
	_, err := h.api.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: kb,
	})
	if err != nil {
		h.logger.Error("failed to edit message", "chat_id", chatID, "message_id", messageID, "error", err)
	}
}

// guard converts a panic anywhere below a handler into a log entry and, when
// the chat is known, a generic error response. Nothing in the event flow may
// take down the process.
func (h *BotHandler) guard(ctx context.Context, chatID, userID int64, event string) {
	if r := recover(); r != nil {
		h.logger.Error("recovered from panic in handler", "event", event, "user_id", userID, "panic", r)
		if chatID != 0 {
			h.reply(ctx, chatID, h.text(userID, locale.ErrorGeneral, nil), nil)
		}
	}
}

// HandleStart greets a group and records it; outside a group it only explains
// that the bot works in groups.
func (h *BotHandler) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	userID := update.Message.From.ID
	chat := update.Message.Chat
	defer h.guard(ctx, chat.ID, userID, "start")

	if !isGroupChat(chat) {
		h.reply(ctx, chat.ID, h.text(userID, locale.ErrorGroupOnly, nil), nil)
		return
	}

	if err := h.settings.RecordGroupSeen(chat.ID, chat.Title, time.Now()); err != nil {
		h.logger.Error("failed to persist group record", "chat_id", chat.ID, "error", err)
	}

	welcome := strings.Join([]string{
		h.text(userID, locale.WelcomeTitle, nil),
		h.text(userID, locale.WelcomeDescription, nil),
		h.text(userID, locale.WelcomeFeatures, nil),
		h.text(userID, locale.WelcomeCommands, nil),
		h.text(userID, locale.WelcomeWarning, nil),
	}, "\n\n")

	kb := &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{{
		{Text: h.text(userID, locale.MenuSelectLanguage, nil), CallbackData: cbSelectLanguage},
	}}}

	h.reply(ctx, chat.ID, welcome, kb)
	h.reply(ctx, chat.ID, h.text(userID, locale.TicketGroupSaved, nil), nil)
}

// HandleLanguage shows the language selection keyboard.
func (h *BotHandler) HandleLanguage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	defer h.guard(ctx, chatID, userID, "language")

	h.sendLanguageMenu(ctx, chatID, userID, 0)
}

// HandleHelp replies with the localized help text.
func (h *BotHandler) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	defer h.guard(ctx, chatID, userID, "help")

	h.reply(ctx, chatID, h.text(userID, locale.HelpText, nil), nil)
}

// HandleSOS starts the ticket dialog.
func (h *BotHandler) HandleSOS(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	defer h.guard(ctx, update.Message.Chat.ID, update.Message.From.ID, "sos")

	h.ticketFSM.Start(ctx, update.Message)
}

// HandleCancel cancels the ticket dialog. Cancelling with no dialog in flight
// still acknowledges.
func (h *BotHandler) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	defer h.guard(ctx, update.Message.Chat.ID, update.Message.From.ID, "cancel")

	h.ticketFSM.Cancel(ctx, update.Message.From.ID, update.Message.Chat.ID)
}

// HandleMessage feeds free-text replies to the ticket dialog.
func (h *BotHandler) HandleMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}
	defer h.guard(ctx, update.Message.Chat.ID, update.Message.From.ID, "message")

	h.ticketFSM.HandleMessage(ctx, update.Message)
}

// HandleCallback decodes a button press and dispatches it.
func (h *BotHandler) HandleCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	callback := update.CallbackQuery
	userID := callback.From.ID

	chatID, messageID, hasOrigin := callbackOrigin(callback)
	defer h.guard(ctx, chatID, userID, "callback")

	// Answer first so the client drops the loading spinner.
	_, _ = h.api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callback.ID,
	})

	action, arg := decodeCallback(callback.Data)
	switch action {
	case actionSelectLanguage:
		if hasOrigin {
			h.sendLanguageMenu(ctx, chatID, userID, messageID)
		}
	case actionSetLanguage:
		h.handleSetLanguage(ctx, callback, arg)
	case actionNoBranch:
		h.ticketFSM.SkipBranch(ctx, callback)
	case actionConfirmTicket:
		h.ticketFSM.Confirm(ctx, callback)
	case actionCancelTicket:
		h.ticketFSM.CancelFromCallback(ctx, callback)
	case actionUnknown:
		h.logger.Warn("unknown callback payload", "user_id", userID, "data", callback.Data)
	}
}

func (h *BotHandler) languageKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{{
		{Text: "🇷🇺 Русский", CallbackData: cbLangPrefix + locale.Ru},
		{Text: "🇺🇿 O'zbekcha", CallbackData: cbLangPrefix + locale.Uz},
	}}}
}

// sendLanguageMenu renders the language keyboard, editing the triggering
// message in place when it came from a button.
func (h *BotHandler) sendLanguageMenu(ctx context.Context, chatID, userID int64, editMessageID int) {
	text := h.text(userID, locale.LanguageSelect, nil)
	if editMessageID > 0 {
		h.edit(ctx, chatID, editMessageID, text, h.languageKeyboard())
	} else {
		h.reply(ctx, chatID, text, h.languageKeyboard())
	}
}

func (h *BotHandler) handleSetLanguage(ctx context.Context, callback *models.CallbackQuery, lang string) {
	userID := callback.From.ID

	if !locale.IsSupported(lang) {
		h.logger.Warn("unsupported language selected", "user_id", userID, "language", lang)
		return
	}

	if err := h.settings.SetUserLanguage(userID, lang); err != nil {
		h.logger.Error("failed to persist language preference", "user_id", userID, "error", err)
	}

	if chatID, messageID, ok := callbackOrigin(callback); ok {
		h.edit(ctx, chatID, messageID, h.text(userID, locale.LanguageChanged, nil), nil)
	}
}
