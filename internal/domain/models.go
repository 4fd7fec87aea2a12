package domain

import "time"

// DialogState marks which input the ticket dialog is waiting for. A user with
// no draft in the session store is implicitly idle.
type DialogState string

const (
	StateAwaitBranch      DialogState = "await_branch"
	StateAwaitDescription DialogState = "await_description"
	StateAwaitConfirm     DialogState = "await_confirm"
)

// BranchNotSpecified is stored as the branch when the user skips the branch
// step. The value is what the support form on the backend expects.
const BranchNotSpecified = "Не указан"

// TicketDraft is one user's in-flight support ticket. The session store owns
// all live drafts; there is at most one per user.
type TicketDraft struct {
	UserID        int64
	GroupID       int64
	GroupName     string
	SubmitterName string
	Branch        string
	Description   string
	State         DialogState
}

// GroupRecord describes a group chat the bot has seen. Records are created on
// first observation and only updated afterwards, never deleted.
type GroupRecord struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	AddedAt      time.Time `json:"added_at"`
	LastActivity time.Time `json:"last_activity"`
}

// UserPreference holds per-user settings. Currently only the chosen language.
type UserPreference struct {
	Language string `json:"language"`
}

// TicketRecord is the archived outcome of a confirm decision, kept for
// operator inspection. It is written whether or not the dispatch to the
// ticketing backend succeeded.
type TicketRecord struct {
	ID            string
	UserID        int64
	SubmitterName string
	GroupID       int64
	GroupName     string
	Branch        string
	Description   string
	Dispatched    bool
	DispatchError string
	CreatedAt     time.Time
}

// Logger interface for logging
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}
