package bot

import "testing"

func TestDecodeCallback(t *testing.T) {
	tests := []struct {
		data   string
		action callbackAction
		arg    string
	}{
		{"select_language", actionSelectLanguage, ""},
		{"lang:RU", actionSetLanguage, "RU"},
		{"lang:UZ", actionSetLanguage, "UZ"},
		{"lang:", actionSetLanguage, ""},
		{"no_branch", actionNoBranch, ""},
		{"confirm_ticket", actionConfirmTicket, ""},
		{"cancel_ticket", actionCancelTicket, ""},
		{"", actionUnknown, ""},
		{"something_else", actionUnknown, ""},
		{"select_language_extra", actionUnknown, ""},
	}

	for _, tc := range tests {
		action, arg := decodeCallback(tc.data)
		if action != tc.action || arg != tc.arg {
			t.Errorf("decodeCallback(%q) = (%v, %q), want (%v, %q)",
				tc.data, action, arg, tc.action, tc.arg)
		}
	}
}
