package bot

import (
	"context"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"

	"github.com/vedasos/support-bot/internal/domain"
	"github.com/vedasos/support-bot/internal/locale"
	"github.com/vedasos/support-bot/internal/session"
	"github.com/vedasos/support-bot/internal/storage"
)

// Dispatcher sends a completed draft to the ticketing backend.
type Dispatcher interface {
	Dispatch(ctx context.Context, draft domain.TicketDraft) error
}

// TicketArchive records the outcome of every confirm decision.
type TicketArchive interface {
	SaveTicket(ctx context.Context, rec *domain.TicketRecord) error
}

// TicketFSM drives the /sos ticket dialog: branch, then description, then an
// explicit confirm or cancel. Dialog state lives on the draft in the session
// store; a user without a draft is idle.
type TicketFSM struct {
	api        telegramAPI
	sessions   *session.Store
	settings   *storage.SettingsStore
	dispatcher Dispatcher
	archive    TicketArchive
	localizer  *locale.Resolver
	logger     domain.Logger
}

// NewTicketFSM creates the ticket dialog state machine.
func NewTicketFSM(
	api telegramAPI,
	sessions *session.Store,
	settings *storage.SettingsStore,
	dispatcher Dispatcher,
	archive TicketArchive,
	localizer *locale.Resolver,
	logger domain.Logger,
) *TicketFSM {
	return &TicketFSM{
		api:        api,
		sessions:   sessions,
		settings:   settings,
		dispatcher: dispatcher,
		archive:    archive,
		localizer:  localizer,
		logger:     logger,
	}
}

func (f *TicketFSM) text(userID int64, key string, params map[string]string) string {
	return f.localizer.Resolve(f.settings.GetUserLanguage(userID), key, params)
}

func (f *TicketFSM) reply(ctx context.Context, chatID int64, text string, kb models.ReplyMarkup) {
	_, err := f.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: kb,
	})
	if err != nil {
		f.logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}

func (f *TicketFSM) edit(ctx context.Context, chatID int64, messageID int, text string) {
	_, err := f.api.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	})
	if err != nil {
		f.logger.Error("failed to edit message", "chat_id", chatID, "message_id", messageID, "error", err)
	}
}

// Start begins a new ticket dialog. Only group chats can open tickets; a
// fresh start silently replaces any draft the user abandoned earlier.
func (f *TicketFSM) Start(ctx context.Context, msg *models.Message) {
	userID := msg.From.ID
	chat := msg.Chat

	if !isGroupChat(chat) {
		f.reply(ctx, chat.ID, f.text(userID, locale.ErrorGroupOnly, nil), nil)
		return
	}

	if err := f.settings.RecordGroupSeen(chat.ID, chat.Title, time.Now()); err != nil {
		f.logger.Error("failed to persist group record", "chat_id", chat.ID, "error", err)
	}

	f.sessions.Begin(userID, chat.ID, chat.Title, displayName(msg.From))

	kb := &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{{
		{Text: f.text(userID, locale.TicketNoBranch, nil), CallbackData: cbNoBranch},
	}}}
	f.reply(ctx, chat.ID, f.text(userID, locale.TicketEnterBranchName, nil), kb)

	f.logger.Info("ticket dialog started", "user_id", userID, "chat_id", chat.ID, "chat_title", chat.Title)
}

// HandleMessage routes a free-text reply to the state the user's draft is
// waiting in. Messages from users without a draft are ignored.
func (f *TicketFSM) HandleMessage(ctx context.Context, msg *models.Message) {
	userID := msg.From.ID

	draft, ok := f.sessions.Get(userID)
	if !ok {
		return
	}

	switch draft.State {
	case domain.StateAwaitBranch:
		f.receiveBranch(ctx, msg)
	case domain.StateAwaitDescription:
		f.receiveDescription(ctx, msg)
	case domain.StateAwaitConfirm:
		// Waiting on the confirm/cancel buttons; free text is ignored.
	default:
		f.logger.Warn("unexpected dialog state", "user_id", userID, "state", draft.State)
	}
}

func (f *TicketFSM) receiveBranch(ctx context.Context, msg *models.Message) {
	userID := msg.From.ID

	branch := strings.TrimSpace(msg.Text)
	if branch == "" {
		f.reply(ctx, msg.Chat.ID, f.text(userID, locale.ErrorEmptyBranch, nil), nil)
		return
	}

	f.setBranch(ctx, userID, msg.Chat.ID, branch, 0)
}

// SkipBranch handles the "no branch" shortcut button.
func (f *TicketFSM) SkipBranch(ctx context.Context, callback *models.CallbackQuery) {
	chatID, messageID, ok := callbackOrigin(callback)
	if !ok {
		return
	}

	f.setBranch(ctx, callback.From.ID, chatID, domain.BranchNotSpecified, messageID)
}

// setBranch records the branch and advances to the description step. The
// prompt edits the triggering message when the branch came from a button.
func (f *TicketFSM) setBranch(ctx context.Context, userID, chatID int64, branch string, editMessageID int) {
	err := f.sessions.Update(userID, func(d *domain.TicketDraft) {
		d.Branch = branch
		d.State = domain.StateAwaitDescription
	})
	if err != nil {
		f.abort(ctx, userID, chatID, editMessageID, err)
		return
	}

	prompt := f.text(userID, locale.TicketDescribeProblem, nil)
	if editMessageID > 0 {
		f.edit(ctx, chatID, editMessageID, prompt)
	} else {
		f.reply(ctx, chatID, prompt, nil)
	}

	f.logger.Debug("branch recorded", "user_id", userID, "branch", branch)
}

func (f *TicketFSM) receiveDescription(ctx context.Context, msg *models.Message) {
	userID := msg.From.ID

	description := strings.TrimSpace(msg.Text)
	if description == "" {
		f.reply(ctx, msg.Chat.ID, f.text(userID, locale.ErrorEmptyDescription, nil), nil)
		return
	}

	err := f.sessions.Update(userID, func(d *domain.TicketDraft) {
		d.Description = description
		d.State = domain.StateAwaitConfirm
	})
	if err != nil {
		f.abort(ctx, userID, msg.Chat.ID, 0, err)
		return
	}

	draft, ok := f.sessions.Get(userID)
	if !ok {
		f.abort(ctx, userID, msg.Chat.ID, 0, session.ErrNoActiveDraft)
		return
	}

	summary := f.text(userID, locale.TicketConfirmDetails, map[string]string{
		"user_name":   draft.SubmitterName,
		"group_name":  draft.GroupName,
		"branch":      draft.Branch,
		"description": draft.Description,
	})

	kb := &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{{Text: f.text(userID, locale.TicketBtnConfirm, nil), CallbackData: cbConfirmTicket}},
		{{Text: f.text(userID, locale.TicketBtnCancel, nil), CallbackData: cbCancelTicket}},
	}}

	f.reply(ctx, msg.Chat.ID, f.text(userID, locale.TicketConfirmTitle, nil)+"\n\n"+summary, kb)
}

// Confirm dispatches the draft to the ticketing backend, reports the outcome
// and discards the draft either way. The draft is taken out of the store
// before dispatching, so a double tap on the confirm button dispatches at
// most once; the losing tap sees no draft. A failed dispatch needs a fresh
// /sos.
func (f *TicketFSM) Confirm(ctx context.Context, callback *models.CallbackQuery) {
	userID := callback.From.ID

	chatID, messageID, ok := callbackOrigin(callback)
	if !ok {
		return
	}

	draft, ok := f.sessions.Take(userID)
	if !ok {
		f.edit(ctx, chatID, messageID, f.text(userID, locale.ErrorGeneral, nil))
		return
	}

	dispatchErr := f.dispatcher.Dispatch(ctx, draft)
	if dispatchErr != nil {
		f.edit(ctx, chatID, messageID, f.text(userID, locale.ErrorDispatchFailed, nil))
	} else {
		f.edit(ctx, chatID, messageID, f.text(userID, locale.TicketCreated, nil))
	}

	f.archiveOutcome(ctx, draft, dispatchErr)
}

// Cancel discards any draft and acknowledges. From the user's point of view
// cancellation always succeeds, draft or no draft.
func (f *TicketFSM) Cancel(ctx context.Context, userID, chatID int64) {
	f.sessions.Discard(userID)
	f.reply(ctx, chatID, f.text(userID, locale.TicketCancelled, nil), nil)
	f.logger.Info("ticket dialog cancelled", "user_id", userID)
}

// CancelFromCallback is Cancel for the inline cancel button; it edits the
// confirmation message in place.
func (f *TicketFSM) CancelFromCallback(ctx context.Context, callback *models.CallbackQuery) {
	chatID, messageID, ok := callbackOrigin(callback)
	if !ok {
		return
	}

	userID := callback.From.ID
	f.sessions.Discard(userID)
	f.edit(ctx, chatID, messageID, f.text(userID, locale.TicketCancelled, nil))
	f.logger.Info("ticket dialog cancelled", "user_id", userID)
}

// abort ends the dialog with the generic error, leaving no partial state.
func (f *TicketFSM) abort(ctx context.Context, userID, chatID int64, editMessageID int, err error) {
	f.logger.Error("ticket dialog aborted", "user_id", userID, "error", err)
	f.sessions.Discard(userID)

	text := f.text(userID, locale.ErrorGeneral, nil)
	if editMessageID > 0 {
		f.edit(ctx, chatID, editMessageID, text)
	} else {
		f.reply(ctx, chatID, text, nil)
	}
}

func (f *TicketFSM) archiveOutcome(ctx context.Context, draft domain.TicketDraft, dispatchErr error) {
	rec := &domain.TicketRecord{
		ID:            uuid.NewString(),
		UserID:        draft.UserID,
		SubmitterName: draft.SubmitterName,
		GroupID:       draft.GroupID,
		GroupName:     draft.GroupName,
		Branch:        draft.Branch,
		Description:   draft.Description,
		Dispatched:    dispatchErr == nil,
		CreatedAt:     time.Now(),
	}
	if dispatchErr != nil {
		rec.DispatchError = dispatchErr.Error()
	}

	if err := f.archive.SaveTicket(ctx, rec); err != nil {
		f.logger.Error("failed to archive ticket", "user_id", draft.UserID, "error", err)
	}
}
