package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/scrimteamx/Card-Ghar/internal/domain"
)

var (
	// ErrChatEmptyMessage rejects blank chat input.
	ErrChatEmptyMessage = errors.New("support: empty message")
	// ErrChatMessageTooLong rejects oversized chat input.
	ErrChatMessageTooLong = errors.New("support: message too long")
)

const (
	chatRoleUser = "user"
	chatRoleBot  = "bot"

	maxChatMessageLength = 300
	chatGreeting         = "Hi there! I am kim.ai.\nI can help you with Card Ghar questions. How can I assist you today?"
	chatFallback         = "I'm not sure about that. Try asking about payment, KP points, stock, or coupons!"
)

// chatRule maps message keywords to a canned reply. First match wins.
type chatRule struct {
	keywords []string
	reply    string
}

var chatRules = []chatRule{
	{[]string{"hello", "hi", "hey"}, "Hello! Welcome to Card Ghar. Looking for a specific gift card?"},
	{[]string{"kp", "point", "reward"}, "KP (Kim Points) are our loyalty rewards!\n- 1 KP = 0.5% discount\n- Use 0 or 20 KP to earn +1 KP per order.\n- Max usage: 20 KP (10% off)."},
	{[]string{"payment", "pay", "qr"}, "We accept payments via QR code. At checkout, scan the generated QR code with your banking app to pay instantly."},
	{[]string{"coupon", "code", "promo"}, "We drop new codes during special events. Try 'KIMNEW2' or 'SAVE5' if they haven't expired!"},
	{[]string{"stock", "out", "available"}, "Our stock is real-time. If an item says 'Sold Out', we usually restock within 24-48 hours. Check back soon!"},
	{[]string{"refund", "problem", "issue", "help"}, "I'm sorry you're facing an issue. Please email our support team at support@cardghar.com with your order id."},
	{[]string{"delivery", "time", "receive"}, "Most items like gift cards are instant delivery. Some subscriptions require a manual invite, which takes 10-30 minutes."},
	{[]string{"game", "play"}, "Check out our Play & Win section! You can play Mines once a day to win 5 KP."},
}

// SupportService runs the rule-based support chat. The transcript lives in
// memory for the lifetime of the process.
type SupportService struct {
	delay  time.Duration
	idGen  func() string
	now    func() time.Time
	logger func(context.Context, string, map[string]any)

	mu       sync.Mutex
	messages []domain.ChatMessage
}

// SupportServiceDeps carries optional overrides for NewSupportService.
type SupportServiceDeps struct {
	// Delay simulates the bot typing; zero keeps the default and a
	// negative value disables it.
	Delay  time.Duration
	IDGen  func() string
	Now    func() time.Time
	Logger func(context.Context, string, map[string]any)
}

// NewSupportService constructs the service with the greeting pre-seeded.
func NewSupportService(deps SupportServiceDeps) (*SupportService, error) {
	delay := deps.Delay
	if delay == 0 {
		delay = time.Second
	}
	if delay < 0 {
		delay = 0
	}
	idGen := deps.IDGen
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	s := &SupportService{
		delay:  delay,
		idGen:  idGen,
		now:    func() time.Time { return now().UTC() },
		logger: deps.Logger,
	}
	if s.logger == nil {
		s.logger = func(context.Context, string, map[string]any) {}
	}
	s.messages = []domain.ChatMessage{{
		ID:        s.idGen(),
		Role:      chatRoleBot,
		Text:      chatGreeting,
		CreatedAt: s.now(),
	}}
	return s, nil
}

// Transcript returns all exchanged messages in order.
func (s *SupportService) Transcript(ctx context.Context) ([]domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out, nil
}

// Send records the user message and returns the bot reply after the
// typing delay.
func (s *SupportService) Send(ctx context.Context, text string) (domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ChatMessage{}, ErrChatEmptyMessage
	}
	if len(text) > maxChatMessageLength {
		return domain.ChatMessage{}, fmt.Errorf("%w: limit %d characters", ErrChatMessageTooLong, maxChatMessageLength)
	}

	s.mu.Lock()
	s.messages = append(s.messages, domain.ChatMessage{
		ID:        s.idGen(),
		Role:      chatRoleUser,
		Text:      text,
		CreatedAt: s.now(),
	})
	s.mu.Unlock()

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return domain.ChatMessage{}, ctx.Err()
		case <-timer.C:
		}
	}

	reply := domain.ChatMessage{
		ID:        s.idGen(),
		Role:      chatRoleBot,
		Text:      replyFor(text),
		CreatedAt: s.now(),
	}
	s.mu.Lock()
	s.messages = append(s.messages, reply)
	s.mu.Unlock()
	s.logger(ctx, "support_replied", map[string]any{"messageId": reply.ID})
	return reply, nil
}

func replyFor(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range chatRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.reply
			}
		}
	}
	return chatFallback
}
