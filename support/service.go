// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package support

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/danielhkuo/ballotbox/models"
)

// MaxMessageLength is the longest accepted body, in runes, after sanitizing
const MaxMessageLength = 2000

var (
	ErrEmptyMessage   = errors.New("message cannot be empty")
	ErrMessageTooLong = errors.New("message is too long")
	ErrNoRecipient    = errors.New("no support recipient configured")
)

// Store is the subset of the store the support inbox needs
type Store interface {
	InsertMessage(ctx context.Context, m models.SupportMessage) error
	ListMessages(ctx context.Context) ([]models.SupportMessage, error)
	MessagesForUser(ctx context.Context, userID string) ([]models.SupportMessage, error)
	MarkInboundRead(ctx context.Context, voterID string) ([]models.SupportMessage, error)
	MarkAdminRepliesRead(ctx context.Context, voterID string) ([]models.SupportMessage, error)
	ListProfiles(ctx context.Context, role, search string) ([]models.Profile, error)
}

type Service struct {
	store     Store
	router    Router
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

func NewService(st Store, router Router) *Service {
	return &Service{
		store:     st,
		router:    router,
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

// WithClock replaces the wall clock, for tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CleanBody strips markup and enforces length limits. The result is plain
// text: entities the sanitizer escapes are decoded again before measuring.
func (s *Service) CleanBody(body string) (string, error) {
	clean := strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(body)))
	if clean == "" {
		return "", ErrEmptyMessage
	}
	if utf8.RuneCountInString(clean) > MaxMessageLength {
		return "", ErrMessageTooLong
	}
	return clean, nil
}

// SendFromVoter stores a voter's message addressed to the routed admin
func (s *Service) SendFromVoter(ctx context.Context, voter models.Profile, body string) (models.SupportMessage, error) {
	clean, err := s.CleanBody(body)
	if err != nil {
		return models.SupportMessage{}, err
	}

	recipient := s.router.Recipient(ctx, voter.ID)
	if recipient == "" {
		return models.SupportMessage{}, ErrNoRecipient
	}

	m := models.SupportMessage{
		ID:         uuid.NewString(),
		SenderID:   voter.ID,
		SenderName: voter.FullName,
		ReceiverID: &recipient,
		Body:       clean,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.store.InsertMessage(ctx, m); err != nil {
		return models.SupportMessage{}, fmt.Errorf("send support message: %w", err)
	}
	return m, nil
}

// Reply stores an admin message addressed to voterID
func (s *Service) Reply(ctx context.Context, admin models.Profile, voterID, body string) (models.SupportMessage, error) {
	clean, err := s.CleanBody(body)
	if err != nil {
		return models.SupportMessage{}, err
	}

	m := models.SupportMessage{
		ID:          uuid.NewString(),
		SenderID:    admin.ID,
		SenderName:  admin.FullName,
		ReceiverID:  &voterID,
		Body:        clean,
		IsFromAdmin: true,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.InsertMessage(ctx, m); err != nil {
		return models.SupportMessage{}, fmt.Errorf("send support reply: %w", err)
	}
	return m, nil
}

// Threads rebuilds the admin inbox from the full message table
func (s *Service) Threads(ctx context.Context) ([]models.SupportThread, error) {
	msgs, err := s.store.ListMessages(ctx)
	if err != nil {
		return nil, err
	}

	voters, err := s.store.ListProfiles(ctx, models.RoleVoter, "")
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(voters))
	for _, v := range voters {
		names[v.ID] = v.DisplayName()
	}

	threads, dropped := BuildThreads(msgs, func(id string) string { return names[id] }, s.now())
	if dropped > 0 {
		slog.Warn("support messages without a conversation key", "count", dropped)
	}
	return threads, nil
}

// Timeline returns the voter's own conversation
func (s *Service) Timeline(ctx context.Context, voterID string) ([]models.TimelineMessage, error) {
	msgs, err := s.store.MessagesForUser(ctx, voterID)
	if err != nil {
		return nil, err
	}
	return Timeline(msgs, voterID), nil
}

// UnreadCount is the number of admin replies the voter has not read yet
func (s *Service) UnreadCount(ctx context.Context, voterID string) (int, error) {
	msgs, err := s.store.MessagesForUser(ctx, voterID)
	if err != nil {
		return 0, err
	}
	return UnreadReplies(msgs, voterID), nil
}

// MarkThreadAsRead marks everything the voter sent as read by support and
// returns the messages that changed
func (s *Service) MarkThreadAsRead(ctx context.Context, voterID string) ([]models.SupportMessage, error) {
	return s.store.MarkInboundRead(ctx, voterID)
}

// MarkMessagesAsRead marks every admin reply to the voter as read and returns
// the messages that changed
func (s *Service) MarkMessagesAsRead(ctx context.Context, voterID string) ([]models.SupportMessage, error) {
	return s.store.MarkAdminRepliesRead(ctx, voterID)
}
