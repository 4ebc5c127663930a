// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package support

import (
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/ballotbox/models"
)

// ConversationKey returns the voter a message belongs to: the receiver for
// admin messages, the sender otherwise. An admin message without a receiver
// has no key.
func ConversationKey(m models.SupportMessage) (string, bool) {
	if m.IsFromAdmin {
		if m.ReceiverID == nil || *m.ReceiverID == "" {
			return "", false
		}
		return *m.ReceiverID, true
	}
	if m.SenderID == "" {
		return "", false
	}
	return m.SenderID, true
}

// NameFunc resolves a voter id to a display name, or "" if unknown
type NameFunc func(voterID string) string

// BuildThreads groups a flat message list into one thread per voter.
//
// Messages inside a thread are oldest first; threads are ordered by their
// latest message, newest first. UnreadCount counts the voter's own unread
// messages only. Messages without a conversation key are left out and
// counted in dropped.
func BuildThreads(msgs []models.SupportMessage, names NameFunc, now time.Time) (threads []models.SupportThread, dropped int) {
	grouped := make(map[string][]models.SupportMessage)
	for _, m := range msgs {
		key, ok := ConversationKey(m)
		if !ok {
			dropped++
			continue
		}
		grouped[key] = append(grouped[key], m)
	}

	threads = make([]models.SupportThread, 0, len(grouped))
	for voterID, thread := range grouped {
		sortMessages(thread)

		last := thread[len(thread)-1]
		unread := 0
		for _, m := range thread {
			if !m.IsFromAdmin && !m.Read {
				unread++
			}
		}

		threads = append(threads, models.SupportThread{
			VoterID:         voterID,
			VoterName:       threadName(voterID, thread, names),
			Messages:        thread,
			LastMessage:     last,
			LastMessageTime: last.CreatedAt,
			LastActive:      humanize.RelTime(last.CreatedAt, now, "ago", "from now"),
			UnreadCount:     unread,
		})
	}

	sort.Slice(threads, func(i, j int) bool {
		if !threads[i].LastMessageTime.Equal(threads[j].LastMessageTime) {
			return threads[i].LastMessageTime.After(threads[j].LastMessageTime)
		}
		return threads[i].VoterID < threads[j].VoterID
	})
	return threads, dropped
}

// Timeline annotates a voter's own messages with direction and delivery
// state, oldest first
func Timeline(msgs []models.SupportMessage, callerID string) []models.TimelineMessage {
	sorted := append([]models.SupportMessage(nil), msgs...)
	sortMessages(sorted)

	out := make([]models.TimelineMessage, 0, len(sorted))
	for _, m := range sorted {
		tm := models.TimelineMessage{SupportMessage: m}
		switch {
		case m.SenderID == callerID && m.Read:
			tm.Outgoing = true
			tm.Delivery = models.DeliveryRead
		case m.SenderID == callerID:
			tm.Outgoing = true
			tm.Delivery = models.DeliverySent
		default:
			tm.Delivery = models.DeliveryReceived
		}
		out = append(out, tm)
	}
	return out
}

// UnreadReplies counts admin messages to voterID that are still unread
func UnreadReplies(msgs []models.SupportMessage, voterID string) int {
	n := 0
	for _, m := range msgs {
		if m.IsFromAdmin && !m.Read && m.ReceiverID != nil && *m.ReceiverID == voterID {
			n++
		}
	}
	return n
}

func sortMessages(msgs []models.SupportMessage) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if !msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
		}
		return msgs[i].ID < msgs[j].ID
	})
}

func threadName(voterID string, thread []models.SupportMessage, names NameFunc) string {
	if names != nil {
		if n := names(voterID); n != "" {
			return n
		}
	}
	for _, m := range thread {
		if !m.IsFromAdmin && m.SenderName != "" {
			return m.SenderName
		}
	}
	return voterID
}
