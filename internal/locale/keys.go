package locale

// Message key constants for localization.
// All user-facing messages go through these constants so a renamed key is a
// compile error, not a silent missing-translation placeholder.

const (
	WelcomeTitle       = "welcome.title"
	WelcomeDescription = "welcome.description"
	WelcomeFeatures    = "welcome.features"
	WelcomeCommands    = "welcome.commands"
	WelcomeWarning     = "welcome.warning"

	MenuSelectLanguage = "menu.select_language"

	LanguageSelect  = "language.select"
	LanguageChanged = "language.changed"

	TicketGroupSaved      = "ticket.group_saved"
	TicketEnterBranchName = "ticket.enter_branch_name"
	TicketNoBranch        = "ticket.no_branch"
	TicketDescribeProblem = "ticket.describe_problem"
	TicketConfirmTitle    = "ticket.confirm_title"
	TicketConfirmDetails  = "ticket.confirm_details"
	TicketBtnConfirm      = "ticket.btn_confirm"
	TicketBtnCancel       = "ticket.btn_cancel"
	TicketCreated         = "ticket.created"
	TicketCancelled       = "ticket.cancelled"

	ErrorGroupOnly        = "errors.group_only"
	ErrorEmptyBranch      = "errors.empty_branch"
	ErrorEmptyDescription = "errors.empty_description"
	ErrorGeneral          = "errors.general_error"
	ErrorDispatchFailed   = "errors.dispatch_failed"

	HelpText = "help.text"
)
