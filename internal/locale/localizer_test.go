package locale

import (
	"io"
	"strings"
	"testing"

	"github.com/vedasos/support-bot/internal/logger"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()

	r, err := NewResolver(Ru, logger.NewWithWriter("ERROR", io.Discard))
	if err != nil {
		t.Fatalf("failed to build resolver: %v", err)
	}
	return r
}

func TestResolveRussianKey(t *testing.T) {
	r := newTestResolver(t)

	got := r.Resolve(Ru, TicketCreated, nil)
	if !strings.Contains(got, "Заявка создана") {
		t.Errorf("unexpected RU text for %s: %q", TicketCreated, got)
	}
}

func TestResolveUzbekDiffersFromRussian(t *testing.T) {
	r := newTestResolver(t)

	ru := r.Resolve(Ru, TicketCancelled, nil)
	uz := r.Resolve(Uz, TicketCancelled, nil)
	if ru == uz {
		t.Errorf("expected distinct translations, both were %q", ru)
	}
}

func TestParamSubstitution(t *testing.T) {
	r := newTestResolver(t)

	got := r.Resolve(Ru, TicketConfirmDetails, map[string]string{
		"user_name":   "Ivan",
		"group_name":  "Branch-12",
		"branch":      "Central",
		"description": "Printer jammed",
	})

	for _, want := range []string{"Ivan", "Branch-12", "Central", "Printer jammed"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in rendered summary %q", want, got)
		}
	}
	if strings.Contains(got, "{user_name}") {
		t.Error("placeholders with params must be substituted")
	}
}

func TestUnresolvedPlaceholderStaysVerbatim(t *testing.T) {
	r := newTestResolver(t)

	got := r.Resolve(Ru, TicketConfirmDetails, map[string]string{"user_name": "Ivan"})
	if !strings.Contains(got, "{branch}") {
		t.Errorf("placeholder without a param must stay verbatim, got %q", got)
	}
}

func TestUnknownLanguageFallsBackToDefault(t *testing.T) {
	r := newTestResolver(t)

	fr := r.Resolve("FR", TicketCreated, nil)
	ru := r.Resolve(Ru, TicketCreated, nil)
	if fr != ru {
		t.Errorf("FR must fall back to RU: got %q, want %q", fr, ru)
	}
}

func TestMissingKeyYieldsVisiblePlaceholder(t *testing.T) {
	r := newTestResolver(t)

	got := r.Resolve(Ru, "ticket.definitely_not_a_key", nil)
	want := "[Missing translation: ticket.definitely_not_a_key]"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEveryKeyPresentInBothCatalogs(t *testing.T) {
	r := newTestResolver(t)

	keys := []string{
		WelcomeTitle, WelcomeDescription, WelcomeFeatures, WelcomeCommands, WelcomeWarning,
		MenuSelectLanguage,
		LanguageSelect, LanguageChanged,
		TicketGroupSaved, TicketEnterBranchName, TicketNoBranch, TicketDescribeProblem,
		TicketConfirmTitle, TicketConfirmDetails, TicketBtnConfirm, TicketBtnCancel,
		TicketCreated, TicketCancelled,
		ErrorGroupOnly, ErrorEmptyBranch, ErrorEmptyDescription, ErrorGeneral, ErrorDispatchFailed,
		HelpText,
	}

	for _, lang := range Supported {
		for _, key := range keys {
			if got := r.Resolve(lang, key, nil); strings.HasPrefix(got, "[Missing translation:") {
				t.Errorf("%s catalog is missing %s", lang, key)
			}
		}
	}
}

func TestIsSupported(t *testing.T) {
	if !IsSupported("uz") || !IsSupported("RU") {
		t.Error("bundled languages must be supported regardless of case")
	}
	if IsSupported("FR") {
		t.Error("FR has no catalog")
	}
}
