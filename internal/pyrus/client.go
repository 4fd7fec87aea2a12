package pyrus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vedasos/support-bot/internal/domain"
)

// Field ids in the support form.
const (
	fieldGroup       = 1
	fieldBranch      = 2
	fieldDescription = 3
)

type taskField struct {
	ID    int    `json:"id"`
	Value string `json:"value"`
}

type taskRequest struct {
	FormID string      `json:"form_id"`
	Text   string      `json:"text"`
	Fields []taskField `json:"fields"`
}

// Client dispatches completed ticket drafts to the Pyrus task API. A dispatch
// either succeeds or fails; there is no retry — a failed dispatch surfaces to
// the user immediately so they can resubmit.
type Client struct {
	httpClient *http.Client
	apiURL     string
	token      string
	formID     string
	logger     domain.Logger
}

// NewClient creates a dispatcher with a bounded request timeout.
func NewClient(apiURL, token, formID string, timeout time.Duration, log domain.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     apiURL,
		token:      token,
		formID:     formID,
		logger:     log,
	}
}

// Dispatch sends one task creation request for the draft. Any non-200 status,
// transport fault or timeout is a failure.
func (c *Client) Dispatch(ctx context.Context, draft domain.TicketDraft) error {
	payload := taskRequest{
		FormID: c.formID,
		Text:   fmt.Sprintf("Новая заявка от %s из группы %s", draft.SubmitterName, draft.GroupName),
		Fields: []taskField{
			{ID: fieldGroup, Value: draft.GroupName},
			{ID: fieldBranch, Value: draft.Branch},
			{ID: fieldDescription, Value: draft.Description},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal task request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build task request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("ticket dispatch failed", "user", draft.SubmitterName, "group", draft.GroupName, "error", err)
		return fmt.Errorf("dispatch ticket: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		diag, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("ticket dispatch rejected", "status", resp.StatusCode, "response", string(diag))
		return fmt.Errorf("pyrus api status %d: %s", resp.StatusCode, diag)
	}

	c.logger.Info("ticket dispatched", "user", draft.SubmitterName, "group", draft.GroupName, "branch", draft.Branch)
	return nil
}
