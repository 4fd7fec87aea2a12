package bot

import "strings"

// callbackAction is the closed set of inline button actions the bot
// understands. Payloads are decoded once at the boundary so handlers switch
// over tagged actions instead of matching raw strings.
type callbackAction int

const (
	actionUnknown callbackAction = iota
	actionSelectLanguage
	actionSetLanguage
	actionNoBranch
	actionConfirmTicket
	actionCancelTicket
)

// Wire values of the callback payloads.
const (
	cbSelectLanguage = "select_language"
	cbLangPrefix     = "lang:"
	cbNoBranch       = "no_branch"
	cbConfirmTicket  = "confirm_ticket"
	cbCancelTicket   = "cancel_ticket"
)

// decodeCallback turns an opaque callback payload into a tagged action plus
// its argument, if any.
func decodeCallback(data string) (callbackAction, string) {
	switch {
	case data == cbSelectLanguage:
		return actionSelectLanguage, ""
	case strings.HasPrefix(data, cbLangPrefix):
		return actionSetLanguage, strings.TrimPrefix(data, cbLangPrefix)
	case data == cbNoBranch:
		return actionNoBranch, ""
	case data == cbConfirmTicket:
		return actionConfirmTicket, ""
	case data == cbCancelTicket:
		return actionCancelTicket, ""
	default:
		return actionUnknown, ""
	}
}
