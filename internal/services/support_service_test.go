package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func newSupportService(t *testing.T) *SupportService {
	t.Helper()
	svc, err := NewSupportService(SupportServiceDeps{Delay: -1})
	if err != nil {
		t.Fatalf("NewSupportService: %v", err)
	}
	return svc
}

func TestSupportGreetingSeeded(t *testing.T) {
	svc := newSupportService(t)
	messages, err := svc.Transcript(context.Background())
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if len(messages) != 1 || messages[0].Role != chatRoleBot {
		t.Fatalf("transcript = %+v", messages)
	}
}

func TestSupportKeywordReplies(t *testing.T) {
	ctx := context.Background()
	svc := newSupportService(t)

	cases := []struct {
		message string
		substr  string
	}{
		{"hello there", "Welcome to Card Ghar"},
		{"how do kp points work?", "Kim Points"},
		{"can I pay with qr?", "QR code"},
		{"got a promo code?", "KIMNEW2"},
		{"is robux out of stock?", "restock"},
		{"i need a refund", "support@cardghar.com"},
		{"how long is delivery", "instant delivery"},
		{"can i play a game", "Play & Win"},
		{"what is the meaning of life", "not sure"},
	}
	for _, tc := range cases {
		reply, err := svc.Send(ctx, tc.message)
		if err != nil {
			t.Errorf("Send(%q): %v", tc.message, err)
			continue
		}
		if !strings.Contains(reply.Text, tc.substr) {
			t.Errorf("Send(%q) = %q, want it to mention %q", tc.message, reply.Text, tc.substr)
		}
	}
}

func TestSupportTranscriptGrows(t *testing.T) {
	ctx := context.Background()
	svc := newSupportService(t)

	if _, err := svc.Send(ctx, "hi"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	messages, err := svc.Transcript(ctx)
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	// Greeting, user message, bot reply.
	if len(messages) != 3 {
		t.Fatalf("len = %d, want 3", len(messages))
	}
	if messages[1].Role != chatRoleUser || messages[2].Role != chatRoleBot {
		t.Errorf("roles = %s, %s", messages[1].Role, messages[2].Role)
	}
}

func TestSupportRejectsEmptyMessage(t *testing.T) {
	svc := newSupportService(t)
	if _, err := svc.Send(context.Background(), "   "); !errors.Is(err, ErrChatEmptyMessage) {
		t.Errorf("Send blank = %v, want ErrChatEmptyMessage", err)
	}
	if _, err := svc.Send(context.Background(), strings.Repeat("a", 301)); err == nil {
		t.Error("expected error for oversized message")
	}
}
