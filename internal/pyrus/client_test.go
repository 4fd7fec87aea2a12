package pyrus

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vedasos/support-bot/internal/domain"
	"github.com/vedasos/support-bot/internal/logger"
)

func testLogger() domain.Logger {
	return logger.NewWithWriter("ERROR", io.Discard)
}

func sampleDraft() domain.TicketDraft {
	return domain.TicketDraft{
		UserID:        42,
		GroupID:       -100500,
		GroupName:     "Branch-12",
		SubmitterName: "Ivan",
		Branch:        "Central",
		Description:   "Printer jammed",
		State:         domain.StateAwaitConfirm,
	}
}

func TestDispatchSuccess(t *testing.T) {
	var gotAuth, gotContentType string
	var gotBody taskRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-token", "form-77", 5*time.Second, testLogger())

	if err := client.Dispatch(context.Background(), sampleDraft()); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	if gotAuth != "Bearer secret-token" {
		t.Errorf("unexpected authorization header: %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Errorf("unexpected content type: %q", gotContentType)
	}
	if gotBody.FormID != "form-77" {
		t.Errorf("unexpected form id: %q", gotBody.FormID)
	}
	if !strings.Contains(gotBody.Text, "Ivan") || !strings.Contains(gotBody.Text, "Branch-12") {
		t.Errorf("summary text missing submitter or group: %q", gotBody.Text)
	}
	want := []taskField{
		{ID: fieldGroup, Value: "Branch-12"},
		{ID: fieldBranch, Value: "Central"},
		{ID: fieldDescription, Value: "Printer jammed"},
	}
	if len(gotBody.Fields) != len(want) {
		t.Fatalf("got %d fields, want %d", len(gotBody.Fields), len(want))
	}
	for i, field := range want {
		if gotBody.Fields[i] != field {
			t.Errorf("field %d = %+v, want %+v", i, gotBody.Fields[i], field)
		}
	}
}

func TestDispatchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"invalid token"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bad-token", "form-77", 5*time.Second, testLogger())

	err := client.Dispatch(context.Background(), sampleDraft())
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error should carry the status code: %v", err)
	}
	if !strings.Contains(err.Error(), "invalid token") {
		t.Errorf("error should carry the response diagnostic: %v", err)
	}
}

func TestDispatchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(srv.URL, "secret-token", "form-77", 50*time.Millisecond, testLogger())

	err := client.Dispatch(context.Background(), sampleDraft())
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestDispatchContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(srv.URL, "secret-token", "form-77", 5*time.Second, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := client.Dispatch(ctx, sampleDraft()); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
