package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	schedulex "github.com/pattarachai/medisched/schedule"
)

func TestNewClientDisabledWhenURLEmpty(t *testing.T) {
	t.Parallel()

	client, err := NewClient(Config{})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if client != nil {
		t.Fatalf("expected nil client for empty URL, got %v", client)
	}

	// A nil client must accept notifications without panicking.
	if err := client.NotifyBooking(context.Background(), "set", schedulex.Slot{}); err != nil {
		t.Fatalf("nil client NotifyBooking() error = %v", err)
	}
}

func TestNewClientRejectsInvalidURL(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{URL: "://not-a-url"}); err == nil {
		t.Fatal("expected error for invalid URL")
	}
}

func TestNotifyBookingPostsEvent(t *testing.T) {
	t.Parallel()

	var got BookingEvent
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL, Token: "secret", Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	slot := schedulex.Slot{
		Doctor:    "john doe",
		Date:      "02-01-2024",
		Time:      "9:00",
		PatientID: 1000760,
	}
	if err := client.NotifyBooking(context.Background(), "set", slot); err != nil {
		t.Fatalf("NotifyBooking() error = %v", err)
	}

	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer secret")
	}
	if got.Action != "set" || got.Doctor != "john doe" || got.PatientID != 1000760 {
		t.Errorf("unexpected event payload: %+v", got)
	}
}

func TestNotifyBookingReportsServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if err := client.NotifyBooking(context.Background(), "cancel", schedulex.Slot{}); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
